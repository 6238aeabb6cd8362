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

// =========================================================================
// Transaction methods (satisfy the service.Tx interface)
// =========================================================================

// CreateImage inserts the image row for a content-addressed location, or
// returns the existing row when another request got there first. The insert
// is conflict-tolerant so a lost race never aborts the surrounding
// transaction; the loser simply re-reads the winner's row.
func (t *Tx) CreateImage(location string) (*domain.Image, bool, error) {
	img := &domain.Image{OriginalLocation: location}
	err := t.tx.QueryRow(`
        INSERT INTO images(original_location, thumbnail_location)
        VALUES($1, '')
        ON CONFLICT (original_location) DO NOTHING
        RETURNING id`,
		location,
	).Scan(&img.Id)
	if err == nil {
		return img, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to insert image: %w", err)
	}

	// Conflict path: fetch whatever the winner committed.
	existing, err := getImage(t.tx, "original_location = $1", location)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (t *Tx) GetImageForUpdate(id domain.ImageId) (*domain.Image, error) {
	img := &domain.Image{}
	err := t.tx.QueryRow(`
        SELECT id, original_location, thumbnail_location
        FROM images WHERE id = $1
        FOR UPDATE`,
		id,
	).Scan(&img.Id, &img.OriginalLocation, &img.ThumbnailLocation)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("image")
		}
		return nil, fmt.Errorf("failed to lock image: %w", err)
	}
	return img, nil
}

func (t *Tx) DeleteImage(id domain.ImageId) error {
	result, err := t.tx.Exec("DELETE FROM images WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	rowsDeleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for image deletion: %w", err)
	}
	if rowsDeleted == 0 {
		return internal_errors.NotFound("image")
	}
	return nil
}

func (t *Tx) CountPicturesByImage(id domain.ImageId) (int, error) {
	var count int
	err := t.tx.QueryRow("SELECT COUNT(*) FROM pictures WHERE image_id = $1", id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pictures for image: %w", err)
	}
	return count, nil
}

// =========================================================================
// Pool methods (satisfy the service.ImageStorage interface)
// =========================================================================

func (s *Storage) GetImage(ctx context.Context, id domain.ImageId) (*domain.Image, error) {
	return getImage(s.db, "id = $1", id)
}

func (s *Storage) GetImageByLocation(ctx context.Context, location string) (*domain.Image, error) {
	return getImage(s.db, "original_location = $1", location)
}

// SetImageThumbnail records the generated thumbnail location. The guard on
// the current value makes the write first-wins: a duplicate task delivery or
// a concurrent worker finds zero affected rows and reports false.
func (s *Storage) SetImageThumbnail(ctx context.Context, id domain.ImageId, location string) (bool, error) {
	result, err := s.db.Exec(`
        UPDATE images SET thumbnail_location = $2
        WHERE id = $1 AND thumbnail_location = ''`,
		id, location,
	)
	if err != nil {
		return false, fmt.Errorf("failed to set thumbnail location: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows for thumbnail update: %w", err)
	}
	return rowsAffected > 0, nil
}

// GetAllBlobLocations returns every blob location some image row still
// references, for orphan cleanup.
func (s *Storage) GetAllBlobLocations(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query("SELECT original_location, thumbnail_location FROM images")
	if err != nil {
		return nil, fmt.Errorf("failed to query blob locations: %w", err)
	}
	defer rows.Close()

	var locations []string
	for rows.Next() {
		var original, thumbnail string
		if err := rows.Scan(&original, &thumbnail); err != nil {
			return nil, fmt.Errorf("failed to scan blob locations: %w", err)
		}
		locations = append(locations, original)
		if thumbnail != "" {
			locations = append(locations, thumbnail)
		}
	}
	return locations, rows.Err()
}

// =========================================================================
// Internal methods (core database logic, transaction-agnostic)
// =========================================================================

func getImage(q Querier, where string, arg interface{}) (*domain.Image, error) {
	img := &domain.Image{}
	err := q.QueryRow(
		"SELECT id, original_location, thumbnail_location FROM images WHERE "+where, arg,
	).Scan(&img.Id, &img.OriginalLocation, &img.ThumbnailLocation)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("image")
		}
		return nil, fmt.Errorf("failed to query image: %w", err)
	}
	return img, nil
}
