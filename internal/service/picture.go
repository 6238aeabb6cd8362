package service

import (
	"context"

	"github.com/picwall-dev/picwall/internal/domain"
	internal_errors "github.com/picwall-dev/picwall/internal/errors"
	"github.com/picwall-dev/picwall/internal/service/utils"
)

type PictureService interface {
	Upload(ctx context.Context, actor *domain.User, name string, upload *domain.PendingUpload) (*domain.Picture, error)
	Get(ctx context.Context, id domain.PictureId) (*domain.Picture, error)
	List(ctx context.Context) ([]domain.Picture, error)
	ListCollages(ctx context.Context, id domain.PictureId) ([]domain.Collage, error)
	Delete(ctx context.Context, actor *domain.User, id domain.PictureId) error
}

type PictureStorage interface {
	TxRunner
	CreatePicture(ctx context.Context, name string, imageId domain.ImageId, owner domain.UserId) (domain.PictureId, error)
	GetPicture(ctx context.Context, id domain.PictureId) (*domain.Picture, error)
	ListPictures(ctx context.Context) ([]domain.Picture, error)
	ListCollagesByPicture(ctx context.Context, id domain.PictureId) ([]domain.Collage, error)
}

type Pictures struct {
	storage PictureStorage
	images  ImageService
}

func NewPictures(storage PictureStorage, images ImageService) *Pictures {
	return &Pictures{storage: storage, images: images}
}

// Upload registers a picture for the actor. The underlying image is created
// or reused through the registry, so two owners uploading byte-identical
// content each get their own picture row sharing one image.
func (s *Pictures) Upload(ctx context.Context, actor *domain.User, name string, upload *domain.PendingUpload) (*domain.Picture, error) {
	name, err := utils.SanitizeName(name)
	if err != nil {
		return nil, err
	}

	img, err := s.images.GetOrCreate(ctx, upload.Data, upload.Filename)
	if err != nil {
		return nil, err
	}

	id, err := s.storage.CreatePicture(ctx, name, img.Id, actor.Id)
	if err != nil {
		return nil, err
	}

	return &domain.Picture{Id: id, Name: name, ImageId: img.Id, Owner: actor.Id, Image: img}, nil
}

func (s *Pictures) Get(ctx context.Context, id domain.PictureId) (*domain.Picture, error) {
	return s.storage.GetPicture(ctx, id)
}

func (s *Pictures) List(ctx context.Context) ([]domain.Picture, error) {
	return s.storage.ListPictures(ctx)
}

func (s *Pictures) ListCollages(ctx context.Context, id domain.PictureId) ([]domain.Collage, error) {
	if _, err := s.storage.GetPicture(ctx, id); err != nil {
		return nil, err
	}
	return s.storage.ListCollagesByPicture(ctx, id)
}

// Delete removes the actor's picture and, when it was the last reference to
// its image, cascades to the image row and both stored blobs. The reference
// count check and the cascade run in one transaction so a concurrent upload
// reusing the image cannot be orphaned.
func (s *Pictures) Delete(ctx context.Context, actor *domain.User, id domain.PictureId) error {
	pic, err := s.storage.GetPicture(ctx, id)
	if err != nil {
		return err
	}
	if pic.Owner != actor.Id {
		return internal_errors.Forbidden("you do not own this picture")
	}

	return s.storage.InTx(ctx, func(tx Tx) error {
		imageId, err := tx.DeletePicture(id)
		if err != nil {
			return err
		}
		remaining, err := tx.CountPicturesByImage(imageId)
		if err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}
		return s.images.DeleteTx(tx, imageId)
	})
}
