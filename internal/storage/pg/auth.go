package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/picwall-dev/picwall/internal/domain"
	internal_errors "github.com/picwall-dev/picwall/internal/errors"
	"github.com/lib/pq"
)

func (s *Storage) CreateUser(ctx context.Context, email domain.Email, passHash string) (domain.UserId, error) {
	var id domain.UserId
	err := s.db.QueryRow(
		"INSERT INTO users(email, password_hash) VALUES($1, $2) RETURNING id",
		email, passHash,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return 0, &internal_errors.ErrorWithStatusCode{Message: "Email already registered", StatusCode: http.StatusConflict}
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (s *Storage) GetUser(ctx context.Context, email domain.Email) (*domain.User, error) {
	user := &domain.User{}
	err := s.db.QueryRow(
		"SELECT id, email, password_hash, (created at time zone 'utc') FROM users WHERE email = $1",
		email,
	).Scan(&user.Id, &user.Email, &user.PassHash, &user.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("user")
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}
