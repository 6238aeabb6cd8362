package service

import (
	"bytes"
	"context"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/picwall-dev/picwall/internal/domain"
	internal_errors "github.com/picwall-dev/picwall/internal/errors"
	"github.com/picwall-dev/picwall/internal/hash"
	"github.com/picwall-dev/picwall/internal/storage/blob"
	"github.com/picwall-dev/picwall/internal/taskqueue"
)

// ImageService is the registry of distinct uploaded images. It owns the
// create-or-reuse decision and the thumbnail lifecycle.
type ImageService interface {
	GetOrCreate(ctx context.Context, content io.ReadSeeker, filename string) (*domain.Image, error)
	MakeThumbnailNow(ctx context.Context, id domain.ImageId) error
	DeleteTx(tx Tx, id domain.ImageId) error
}

type ImageStorage interface {
	TxRunner
	GetImage(ctx context.Context, id domain.ImageId) (*domain.Image, error)
	GetImageByLocation(ctx context.Context, location string) (*domain.Image, error)
	SetImageThumbnail(ctx context.Context, id domain.ImageId, location string) (bool, error)
}

type Images struct {
	storage       ImageStorage
	blobs         BlobStorage
	queue         taskqueue.Queue
	thumbnailSize int
	logger        *slog.Logger
}

func NewImages(storage ImageStorage, blobs BlobStorage, queue taskqueue.Queue, thumbnailSize int) *Images {
	if thumbnailSize <= 0 {
		thumbnailSize = DefaultThumbnailSize
	}
	return &Images{
		storage:       storage,
		blobs:         blobs,
		queue:         queue,
		thumbnailSize: thumbnailSize,
		logger:        slog.Default(),
	}
}

// GetOrCreate resolves uploaded content to exactly one image row. Identical
// bytes (regardless of the original filename's stem) always map to the same
// row and the same stored blob.
//
// Race strategy: original_location carries a database unique index. The blob
// write happens first and is idempotent; the insert runs conflict-tolerant
// inside a transaction and a losing racer re-fetches the winner's row. Only
// the transaction that actually created the row schedules a thumbnail task,
// and only after its commit.
func (s *Images) GetOrCreate(ctx context.Context, content io.ReadSeeker, filename string) (*domain.Image, error) {
	digest, err := hash.Sum(content)
	if err != nil {
		return nil, &internal_errors.StorageError{Op: "digest", Location: filename, Err: err}
	}
	location := blob.Location(blob.ImagesPrefix, digest, blob.Ext(filename))

	existing, err := s.storage.GetImageByLocation(ctx, location)
	if err == nil {
		// Reuse: no write, no scheduling. The thumbnail already exists or a
		// task for it is already in flight.
		return existing, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return nil, &internal_errors.StorageError{Op: "seek", Location: filename, Err: err}
	}
	stored, err := s.blobs.Save(blob.ImagesPrefix, filename, content)
	if err != nil {
		return nil, err
	}

	var img *domain.Image
	err = s.storage.InTx(ctx, func(tx Tx) error {
		created := false
		img, created, err = tx.CreateImage(stored)
		if err != nil {
			return err
		}
		if created {
			id := img.Id
			tx.AfterCommit(func() { s.scheduleThumbnail(id) })
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

// scheduleThumbnail submits the generation task, fire and forget. A failed
// enqueue is logged and left to the blob garbage collector /
// MakeThumbnailNow remediation; the upload itself already succeeded.
func (s *Images) scheduleThumbnail(id domain.ImageId) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.queue.Enqueue(ctx, taskqueue.Task{Name: taskqueue.TaskMakeThumbnail, ImageId: id}); err != nil {
		s.logger.Error("failed to schedule thumbnail task", "image_id", id, "error", err)
	}
}

// MakeThumbnailNow derives and persists the bounded preview for one image.
// Idempotent: a second call, a duplicate delivery or an out-of-order retry
// finds thumbnail_location already set and returns without regenerating.
func (s *Images) MakeThumbnailNow(ctx context.Context, id domain.ImageId) error {
	img, err := s.storage.GetImage(ctx, id)
	if err != nil {
		return err
	}
	if img.HasThumbnail() {
		return nil
	}

	original, err := s.blobs.Open(img.OriginalLocation)
	if err != nil {
		return err
	}
	defer original.Close()

	decoded, _, err := image.Decode(original)
	if err != nil {
		return &internal_errors.DecodeError{Location: img.OriginalLocation, Err: err}
	}

	encoded, err := encodeThumbnail(decoded, s.thumbnailSize)
	if err != nil {
		return &internal_errors.StorageError{Op: "encode", Location: img.OriginalLocation, Err: err}
	}

	// The thumbnail is addressed by its own digest, not the original's: two
	// different originals whose previews render identically share one blob.
	location, err := s.blobs.Save(blob.ThumbnailsPrefix, "thumbnail"+ThumbnailExtension, bytes.NewReader(encoded))
	if err != nil {
		return err
	}

	set, err := s.storage.SetImageThumbnail(ctx, id, location)
	if err != nil {
		return err
	}
	if !set {
		// A concurrent delivery won the guarded update. Its thumbnail is
		// byte-identical, so the blob we just wrote is the same path; nothing
		// to undo.
		s.logger.Debug("thumbnail already set by concurrent task", "image_id", id)
	}
	return nil
}

// DeleteTx removes an image row and, after the enclosing transaction
// commits, both of its blobs. Deleting an image whose thumbnail is absent is
// refused: a pending task could otherwise write a thumbnail for a row that
// no longer exists.
func (s *Images) DeleteTx(tx Tx, id domain.ImageId) error {
	img, err := tx.GetImageForUpdate(id)
	if err != nil {
		return err
	}
	if !img.HasThumbnail() {
		return &internal_errors.ConflictError{
			Message: "image thumbnail may still be generating, refusing deletion",
		}
	}
	if err := tx.DeleteImage(id); err != nil {
		return err
	}

	original, thumbnail := img.OriginalLocation, img.ThumbnailLocation
	tx.AfterCommit(func() {
		if err := s.blobs.Delete(original); err != nil {
			s.logger.Error("failed to delete original blob", "location", original, "error", err)
		}
		if err := s.blobs.Delete(thumbnail); err != nil {
			s.logger.Error("failed to delete thumbnail blob", "location", thumbnail, "error", err)
		}
	})
	return nil
}

func isNotFound(err error) bool {
	if e, ok := err.(*internal_errors.ErrorWithStatusCode); ok {
		return e.StatusCode == 404
	}
	return false
}
