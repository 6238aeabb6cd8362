package service

import (
	"context"
	"io"

	"github.com/picwall-dev/picwall/internal/domain"
)

// BlobStorage is a content-addressed blob store. Save derives the stored
// location entirely from the content digest plus the original filename's
// extension; writing byte-identical content twice returns the existing
// location without a second write.
type BlobStorage interface {
	Save(prefix, originalName string, content io.Reader) (string, error)
	Open(location string) (io.ReadCloser, error)
	Exists(location string) (bool, error)
	Delete(location string) error
}

// Tx is the set of row operations available inside one database
// transaction. AfterCommit registers a callback that runs only once the
// transaction has durably committed; scheduling async work any earlier would
// let a worker race ahead of a rollback.
type Tx interface {
	CreateImage(location string) (img *domain.Image, created bool, err error)
	GetImageForUpdate(id domain.ImageId) (*domain.Image, error)
	DeleteImage(id domain.ImageId) error
	DeletePicture(id domain.PictureId) (domain.ImageId, error)
	CountPicturesByImage(id domain.ImageId) (int, error)
	AfterCommit(fn func())
}

// TxRunner runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}
