package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/picwall-dev/picwall/internal/domain"
	internal_errors "github.com/picwall-dev/picwall/internal/errors"
	_ "github.com/lib/pq"
)

func (s *Storage) CreatePicture(ctx context.Context, name string, imageId domain.ImageId, owner domain.UserId) (domain.PictureId, error) {
	var id domain.PictureId
	err := s.db.QueryRow(
		"INSERT INTO pictures(name, image_id, owner_id) VALUES($1, $2, $3) RETURNING id",
		name, imageId, owner,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert picture: %w", err)
	}
	return id, nil
}

func (s *Storage) GetPicture(ctx context.Context, id domain.PictureId) (*domain.Picture, error) {
	p := &domain.Picture{Image: &domain.Image{}}
	err := s.db.QueryRow(`
        SELECT p.id, p.name, p.image_id, p.owner_id,
               i.id, i.original_location, i.thumbnail_location
        FROM pictures p
        JOIN images i ON i.id = p.image_id
        WHERE p.id = $1`,
		id,
	).Scan(&p.Id, &p.Name, &p.ImageId, &p.Owner,
		&p.Image.Id, &p.Image.OriginalLocation, &p.Image.ThumbnailLocation)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("picture")
		}
		return nil, fmt.Errorf("failed to query picture: %w", err)
	}
	return p, nil
}

func (s *Storage) ListPictures(ctx context.Context) ([]domain.Picture, error) {
	rows, err := s.db.Query(`
        SELECT p.id, p.name, p.image_id, p.owner_id,
               i.id, i.original_location, i.thumbnail_location
        FROM pictures p
        JOIN images i ON i.id = p.image_id
        ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pictures: %w", err)
	}
	defer rows.Close()
	return scanPictures(rows)
}

func (s *Storage) ListCollagesByPicture(ctx context.Context, id domain.PictureId) ([]domain.Collage, error) {
	// Listing memberships of a missing picture is a 404, not an empty list.
	if _, err := s.GetPicture(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
        SELECT c.id, c.name, c.owner_id
        FROM collages c
        JOIN collage_pictures cp ON cp.collage_id = c.id
        WHERE cp.picture_id = $1
        ORDER BY c.id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query collages for picture: %w", err)
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

// DeletePicture removes the picture row and reports which image it pointed
// at, so the caller can decide whether the image itself became unreferenced.
// Collage memberships go with the row via ON DELETE CASCADE.
func (t *Tx) DeletePicture(id domain.PictureId) (domain.ImageId, error) {
	var imageId domain.ImageId
	err := t.tx.QueryRow("DELETE FROM pictures WHERE id = $1 RETURNING image_id", id).Scan(&imageId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, internal_errors.NotFound("picture")
		}
		return 0, fmt.Errorf("failed to delete picture: %w", err)
	}
	return imageId, nil
}

func scanPictures(rows *sql.Rows) ([]domain.Picture, error) {
	pictures := []domain.Picture{}
	for rows.Next() {
		p := domain.Picture{Image: &domain.Image{}}
		if err := rows.Scan(&p.Id, &p.Name, &p.ImageId, &p.Owner,
			&p.Image.Id, &p.Image.OriginalLocation, &p.Image.ThumbnailLocation); err != nil {
			return nil, fmt.Errorf("failed to scan picture: %w", err)
		}
		pictures = append(pictures, p)
	}
	return pictures, rows.Err()
}
