package domain

// Picture is a user-owned, named reference to an Image. Many pictures may
// point at the same image row.
type Picture struct {
	Id      PictureId
	Name    string
	ImageId ImageId
	Owner   UserId
	Image   *Image // populated when fetched with image details
}
