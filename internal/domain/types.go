package domain

type (
	Email    = string
	Password = string
	UserId   = int64

	ImageId   = int64
	PictureId = int64
	CollageId = int64
)
