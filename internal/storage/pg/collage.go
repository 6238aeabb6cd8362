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

func (s *Storage) CreateCollage(ctx context.Context, name string, owner domain.UserId) (domain.CollageId, error) {
	var id domain.CollageId
	err := s.db.QueryRow(
		"INSERT INTO collages(name, owner_id) VALUES($1, $2) RETURNING id",
		name, owner,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert collage: %w", err)
	}
	return id, nil
}

func (s *Storage) GetCollage(ctx context.Context, id domain.CollageId) (*domain.Collage, error) {
	c := &domain.Collage{}
	err := s.db.QueryRow(
		"SELECT id, name, owner_id FROM collages WHERE id = $1", id,
	).Scan(&c.Id, &c.Name, &c.Owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("collage")
		}
		return nil, fmt.Errorf("failed to query collage: %w", err)
	}
	return c, nil
}

func (s *Storage) DeleteCollage(ctx context.Context, id domain.CollageId) error {
	result, err := s.db.Exec("DELETE FROM collages WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete collage: %w", err)
	}
	rowsDeleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for collage deletion: %w", err)
	}
	if rowsDeleted == 0 {
		return internal_errors.NotFound("collage")
	}
	return nil
}

func (s *Storage) ListCollages(ctx context.Context) ([]domain.Collage, error) {
	rows, err := s.db.Query("SELECT id, name, owner_id FROM collages ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query collages: %w", err)
	}
	defer rows.Close()

	collages := []domain.Collage{}
	for rows.Next() {
		var c domain.Collage
		if err := rows.Scan(&c.Id, &c.Name, &c.Owner); err != nil {
			return nil, fmt.Errorf("failed to scan collage: %w", err)
		}
		collages = append(collages, c)
	}
	return collages, rows.Err()
}

func (s *Storage) ListPicturesByCollage(ctx context.Context, id domain.CollageId) ([]domain.Picture, error) {
	if _, err := s.GetCollage(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
        SELECT p.id, p.name, p.image_id, p.owner_id,
               i.id, i.original_location, i.thumbnail_location
        FROM pictures p
        JOIN images i ON i.id = p.image_id
        JOIN collage_pictures cp ON cp.picture_id = p.id
        WHERE cp.collage_id = $1
        ORDER BY p.id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pictures for collage: %w", err)
	}
	defer rows.Close()
	return scanPictures(rows)
}

// AttachPicture adds the picture to the collage. A repeat attach is not an
// error: the insert tolerates the existing membership row and reports false.
func (s *Storage) AttachPicture(ctx context.Context, collageId domain.CollageId, pictureId domain.PictureId) (bool, error) {
	result, err := s.db.Exec(`
        INSERT INTO collage_pictures(collage_id, picture_id)
        VALUES($1, $2)
        ON CONFLICT (collage_id, picture_id) DO NOTHING`,
		collageId, pictureId,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return false, &internal_errors.ErrorWithStatusCode{Message: "Collage or picture not found", StatusCode: http.StatusNotFound}
		}
		return false, fmt.Errorf("failed to attach picture: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows for attach: %w", err)
	}
	return rowsAffected > 0, nil
}

func (s *Storage) DetachPicture(ctx context.Context, collageId domain.CollageId, pictureId domain.PictureId) (bool, error) {
	result, err := s.db.Exec(
		"DELETE FROM collage_pictures WHERE collage_id = $1 AND picture_id = $2",
		collageId, pictureId,
	)
	if err != nil {
		return false, fmt.Errorf("failed to detach picture: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows for detach: %w", err)
	}
	return rowsAffected > 0, nil
}
