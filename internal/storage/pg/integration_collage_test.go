package pg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_errors "github.com/picwall-dev/picwall/internal/errors"
	"github.com/picwall-dev/picwall/internal/service"
	_ "github.com/lib/pq"
)

func TestCreateAndGetCollage(t *testing.T) {
	ctx := context.Background()
	owner := mustCreateUser(t)

	id, err := storage.CreateCollage(ctx, "vacation", owner)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	got, err := storage.GetCollage(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "vacation", got.Name)
	assert.Equal(t, owner, got.Owner)

	_, err = storage.GetCollage(ctx, 999999)
	require.Error(t, err)
	e, ok := err.(*internal_errors.ErrorWithStatusCode)
	require.True(t, ok)
	assert.Equal(t, 404, e.StatusCode)
}

func TestDeleteCollage(t *testing.T) {
	ctx := context.Background()
	owner := mustCreateUser(t)
	picture := mustCreatePicture(t, "survivor", owner)

	id, err := storage.CreateCollage(ctx, "doomed", owner)
	require.NoError(t, err)
	attached, err := storage.AttachPicture(ctx, id, picture.Id)
	require.NoError(t, err)
	require.True(t, attached)

	require.NoError(t, storage.DeleteCollage(ctx, id))

	_, err = storage.GetCollage(ctx, id)
	require.Error(t, err)

	// Memberships go with the collage; the picture itself stays.
	got, err := storage.GetPicture(ctx, picture.Id)
	require.NoError(t, err)
	assert.Equal(t, picture.Id, got.Id)

	err = storage.DeleteCollage(ctx, id)
	require.Error(t, err, "deleting a missing collage should fail")
	e, ok := err.(*internal_errors.ErrorWithStatusCode)
	require.True(t, ok)
	assert.Equal(t, 404, e.StatusCode)
}

func TestAttachDetachPicture(t *testing.T) {
	ctx := context.Background()
	owner := mustCreateUser(t)
	picture := mustCreatePicture(t, "member", owner)

	collageId, err := storage.CreateCollage(ctx, "wall", owner)
	require.NoError(t, err)

	attached, err := storage.AttachPicture(ctx, collageId, picture.Id)
	require.NoError(t, err)
	assert.True(t, attached, "first attach should insert the membership")

	attached, err = storage.AttachPicture(ctx, collageId, picture.Id)
	require.NoError(t, err)
	assert.False(t, attached, "repeat attach should be a no-op")

	pictures, err := storage.ListPicturesByCollage(ctx, collageId)
	require.NoError(t, err)
	require.Len(t, pictures, 1, "membership cardinality must stay one")
	assert.Equal(t, picture.Id, pictures[0].Id)
	require.NotNil(t, pictures[0].Image)

	detached, err := storage.DetachPicture(ctx, collageId, picture.Id)
	require.NoError(t, err)
	assert.True(t, detached)

	detached, err = storage.DetachPicture(ctx, collageId, picture.Id)
	require.NoError(t, err)
	assert.False(t, detached, "repeat detach should be a no-op")

	pictures, err = storage.ListPicturesByCollage(ctx, collageId)
	require.NoError(t, err)
	assert.Empty(t, pictures)
}

func TestAttachPictureMissingRows(t *testing.T) {
	ctx := context.Background()
	owner := mustCreateUser(t)
	picture := mustCreatePicture(t, "orphan", owner)

	_, err := storage.AttachPicture(ctx, 999999, picture.Id)
	require.Error(t, err)
	e, ok := err.(*internal_errors.ErrorWithStatusCode)
	require.True(t, ok)
	assert.Equal(t, 404, e.StatusCode)

	collageId, err := storage.CreateCollage(ctx, "holey", owner)
	require.NoError(t, err)
	_, err = storage.AttachPicture(ctx, collageId, 999999)
	require.Error(t, err)
	e, ok = err.(*internal_errors.ErrorWithStatusCode)
	require.True(t, ok)
	assert.Equal(t, 404, e.StatusCode)
}

func TestListPicturesByCollageMissing(t *testing.T) {
	_, err := storage.ListPicturesByCollage(context.Background(), 999999)
	require.Error(t, err)
	e, ok := err.(*internal_errors.ErrorWithStatusCode)
	require.True(t, ok)
	assert.Equal(t, 404, e.StatusCode)
}

func TestDeletePictureCascadesMembership(t *testing.T) {
	ctx := context.Background()
	owner := mustCreateUser(t)
	picture := mustCreatePicture(t, "cascading", owner)

	collageId, err := storage.CreateCollage(ctx, "emptying", owner)
	require.NoError(t, err)
	attached, err := storage.AttachPicture(ctx, collageId, picture.Id)
	require.NoError(t, err)
	require.True(t, attached)

	err = storage.InTx(ctx, func(tx service.Tx) error {
		_, err := tx.DeletePicture(picture.Id)
		return err
	})
	require.NoError(t, err)

	pictures, err := storage.ListPicturesByCollage(ctx, collageId)
	require.NoError(t, err)
	assert.Empty(t, pictures, "membership rows should cascade away with the picture")
}
