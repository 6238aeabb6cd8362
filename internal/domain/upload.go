package domain

import "io"

// PendingUpload is a validated multipart upload ready to be handed to the
// picture service. Data must be seekable so the content can be digested
// before it is persisted.
type PendingUpload struct {
	Filename    string
	SizeBytes   int64
	MimeType    string
	ImageWidth  *int
	ImageHeight *int
	Data        io.ReadSeeker
}
