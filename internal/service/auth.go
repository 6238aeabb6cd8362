package service

import (
	"context"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/picwall-dev/picwall/internal/domain"
	internal_errors "github.com/picwall-dev/picwall/internal/errors"
)

type AuthService interface {
	Register(ctx context.Context, email domain.Email, password domain.Password) (*domain.User, error)
	Login(ctx context.Context, email domain.Email, password domain.Password) (*domain.User, error)
}

type AuthStorage interface {
	CreateUser(ctx context.Context, email domain.Email, passHash string) (domain.UserId, error)
	GetUser(ctx context.Context, email domain.Email) (*domain.User, error)
}

type Auth struct {
	storage AuthStorage
}

func NewAuth(storage AuthStorage) *Auth {
	return &Auth{storage: storage}
}

func (s *Auth) Register(ctx context.Context, email domain.Email, password domain.Password) (*domain.User, error) {
	if len(password) < 8 {
		return nil, &internal_errors.ValidationError{Message: "password must be at least 8 characters"}
	}
	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id, err := s.storage.CreateUser(ctx, email, string(passHash))
	if err != nil {
		return nil, err
	}
	return &domain.User{Id: id, Email: email}, nil
}

func (s *Auth) Login(ctx context.Context, email domain.Email, password domain.Password) (*domain.User, error) {
	user, err := s.storage.GetUser(ctx, email)
	if err != nil {
		// Same response for unknown email and bad password.
		return nil, &internal_errors.ErrorWithStatusCode{Message: "invalid credentials", StatusCode: http.StatusUnauthorized}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "invalid credentials", StatusCode: http.StatusUnauthorized}
	}
	return user, nil
}
