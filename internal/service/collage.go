package service

import (
	"context"

	"github.com/picwall-dev/picwall/internal/domain"
	internal_errors "github.com/picwall-dev/picwall/internal/errors"
	"github.com/picwall-dev/picwall/internal/service/utils"
)

// AttachResult reports the outcome of an attach/detach. "Already" outcomes
// are successes, not failures: the membership set is in the requested state.
type AttachResult string

const (
	Attached        AttachResult = "Successfully attached"
	AlreadyAttached AttachResult = "Already attached"
	Detached        AttachResult = "Successfully detached"
	AlreadyDetached AttachResult = "Already detached"
)

type CollageService interface {
	Create(ctx context.Context, actor *domain.User, name string) (*domain.Collage, error)
	Get(ctx context.Context, id domain.CollageId) (*domain.Collage, error)
	List(ctx context.Context) ([]domain.Collage, error)
	ListPictures(ctx context.Context, id domain.CollageId) ([]domain.Picture, error)
	Delete(ctx context.Context, actor *domain.User, id domain.CollageId) error
	Attach(ctx context.Context, actor *domain.User, collageId domain.CollageId, pictureId domain.PictureId) (AttachResult, error)
	Detach(ctx context.Context, actor *domain.User, collageId domain.CollageId, pictureId domain.PictureId) (AttachResult, error)
}

type CollageStorage interface {
	CreateCollage(ctx context.Context, name string, owner domain.UserId) (domain.CollageId, error)
	GetCollage(ctx context.Context, id domain.CollageId) (*domain.Collage, error)
	DeleteCollage(ctx context.Context, id domain.CollageId) error
	ListCollages(ctx context.Context) ([]domain.Collage, error)
	ListPicturesByCollage(ctx context.Context, id domain.CollageId) ([]domain.Picture, error)
	AttachPicture(ctx context.Context, collageId domain.CollageId, pictureId domain.PictureId) (bool, error)
	DetachPicture(ctx context.Context, collageId domain.CollageId, pictureId domain.PictureId) (bool, error)
}

// PictureGetter is the slice of picture storage the collage service needs
// for ownership checks.
type PictureGetter interface {
	GetPicture(ctx context.Context, id domain.PictureId) (*domain.Picture, error)
}

type Collages struct {
	storage  CollageStorage
	pictures PictureGetter
}

func NewCollages(storage CollageStorage, pictures PictureGetter) *Collages {
	return &Collages{storage: storage, pictures: pictures}
}

func (s *Collages) Create(ctx context.Context, actor *domain.User, name string) (*domain.Collage, error) {
	name, err := utils.SanitizeName(name)
	if err != nil {
		return nil, err
	}
	id, err := s.storage.CreateCollage(ctx, name, actor.Id)
	if err != nil {
		return nil, err
	}
	return &domain.Collage{Id: id, Name: name, Owner: actor.Id}, nil
}

func (s *Collages) Get(ctx context.Context, id domain.CollageId) (*domain.Collage, error) {
	return s.storage.GetCollage(ctx, id)
}

func (s *Collages) List(ctx context.Context) ([]domain.Collage, error) {
	return s.storage.ListCollages(ctx)
}

func (s *Collages) ListPictures(ctx context.Context, id domain.CollageId) ([]domain.Picture, error) {
	if _, err := s.storage.GetCollage(ctx, id); err != nil {
		return nil, err
	}
	return s.storage.ListPicturesByCollage(ctx, id)
}

func (s *Collages) Delete(ctx context.Context, actor *domain.User, id domain.CollageId) error {
	collage, err := s.storage.GetCollage(ctx, id)
	if err != nil {
		return err
	}
	if collage.Owner != actor.Id {
		return internal_errors.Forbidden("you do not own this collage")
	}
	return s.storage.DeleteCollage(ctx, id)
}

// Attach adds a picture to a collage. The actor must own both sides.
// Attaching an already attached pair is reported as AlreadyAttached and
// leaves the membership set unchanged.
func (s *Collages) Attach(ctx context.Context, actor *domain.User, collageId domain.CollageId, pictureId domain.PictureId) (AttachResult, error) {
	if err := s.checkOwnership(ctx, actor, collageId, pictureId); err != nil {
		return "", err
	}
	inserted, err := s.storage.AttachPicture(ctx, collageId, pictureId)
	if err != nil {
		return "", err
	}
	if !inserted {
		return AlreadyAttached, nil
	}
	return Attached, nil
}

// Detach removes a picture from a collage, idempotently.
func (s *Collages) Detach(ctx context.Context, actor *domain.User, collageId domain.CollageId, pictureId domain.PictureId) (AttachResult, error) {
	if err := s.checkOwnership(ctx, actor, collageId, pictureId); err != nil {
		return "", err
	}
	removed, err := s.storage.DetachPicture(ctx, collageId, pictureId)
	if err != nil {
		return "", err
	}
	if !removed {
		return AlreadyDetached, nil
	}
	return Detached, nil
}

func (s *Collages) checkOwnership(ctx context.Context, actor *domain.User, collageId domain.CollageId, pictureId domain.PictureId) error {
	collage, err := s.storage.GetCollage(ctx, collageId)
	if err != nil {
		return err
	}
	if collage.Owner != actor.Id {
		return internal_errors.Forbidden("you do not own this collage")
	}

	picture, err := s.pictures.GetPicture(ctx, pictureId)
	if err != nil {
		return err
	}
	if picture.Owner != actor.Id {
		return internal_errors.Forbidden("you do not own this picture")
	}
	return nil
}
