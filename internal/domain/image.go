package domain

// Image is one distinct binary payload, stored once regardless of how many
// pictures reference it. Locations are content-addressed relative paths
// inside the blob store ("images/<sha256><ext>", "thumbnails/<sha256>.png").
type Image struct {
	Id                ImageId
	OriginalLocation  string
	ThumbnailLocation string // empty until the thumbnail task has run
}

// HasThumbnail reports whether the thumbnail pipeline completed for this image.
// An image without a thumbnail may still have a job in flight and must not be
// deleted.
func (i *Image) HasThumbnail() bool {
	return i.ThumbnailLocation != ""
}
