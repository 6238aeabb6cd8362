package service

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/picwall-dev/picwall/internal/domain"
	internal_errors "github.com/picwall-dev/picwall/internal/errors"
	"github.com/picwall-dev/picwall/internal/hash"
	"github.com/picwall-dev/picwall/internal/storage/blob"
	"github.com/picwall-dev/picwall/internal/taskqueue"
)

// memStorage is an in-memory stand-in for the pg storage, including the
// transactional contract: mutations made inside InTx are rolled back when fn
// errors, and AfterCommit callbacks run only on success.
type memStorage struct {
	mu          sync.Mutex
	images      map[domain.ImageId]*domain.Image
	byLocation  map[string]domain.ImageId
	pictures    map[domain.PictureId]*domain.Picture
	nextImage   domain.ImageId
	nextPicture domain.PictureId

	failCreateImage error
	failSetThumb    error
}

func newMemStorage() *memStorage {
	return &memStorage{
		images:     make(map[domain.ImageId]*domain.Image),
		byLocation: make(map[string]domain.ImageId),
		pictures:   make(map[domain.PictureId]*domain.Picture),
	}
}

func (m *memStorage) snapshot() (map[domain.ImageId]*domain.Image, map[string]domain.ImageId, map[domain.PictureId]*domain.Picture) {
	images := make(map[domain.ImageId]*domain.Image, len(m.images))
	for k, v := range m.images {
		img := *v
		images[k] = &img
	}
	byLoc := make(map[string]domain.ImageId, len(m.byLocation))
	for k, v := range m.byLocation {
		byLoc[k] = v
	}
	pics := make(map[domain.PictureId]*domain.Picture, len(m.pictures))
	for k, v := range m.pictures {
		pic := *v
		pics[k] = &pic
	}
	return images, byLoc, pics
}

func (m *memStorage) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	images, byLoc, pics := m.snapshot()
	tx := &memTx{storage: m}
	if err := fn(tx); err != nil {
		m.images, m.byLocation, m.pictures = images, byLoc, pics
		return err
	}
	for _, cb := range tx.afterCommit {
		cb()
	}
	return nil
}

func (m *memStorage) GetImage(ctx context.Context, id domain.ImageId) (*domain.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[id]
	if !ok {
		return nil, internal_errors.NotFound("image")
	}
	cp := *img
	return &cp, nil
}

func (m *memStorage) GetImageByLocation(ctx context.Context, location string) (*domain.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byLocation[location]
	if !ok {
		return nil, internal_errors.NotFound("image")
	}
	cp := *m.images[id]
	return &cp, nil
}

func (m *memStorage) SetImageThumbnail(ctx context.Context, id domain.ImageId, location string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSetThumb != nil {
		return false, m.failSetThumb
	}
	img, ok := m.images[id]
	if !ok {
		return false, internal_errors.NotFound("image")
	}
	if img.ThumbnailLocation != "" {
		return false, nil
	}
	img.ThumbnailLocation = location
	return true, nil
}

func (m *memStorage) CreatePicture(ctx context.Context, name string, imageId domain.ImageId, owner domain.UserId) (domain.PictureId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextPicture++
	m.pictures[m.nextPicture] = &domain.Picture{Id: m.nextPicture, Name: name, ImageId: imageId, Owner: owner}
	return m.nextPicture, nil
}

func (m *memStorage) GetPicture(ctx context.Context, id domain.PictureId) (*domain.Picture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pic, ok := m.pictures[id]
	if !ok {
		return nil, internal_errors.NotFound("picture")
	}
	cp := *pic
	if img, ok := m.images[pic.ImageId]; ok {
		imgCp := *img
		cp.Image = &imgCp
	}
	return &cp, nil
}

func (m *memStorage) ListPictures(ctx context.Context) ([]domain.Picture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Picture
	for _, pic := range m.pictures {
		out = append(out, *pic)
	}
	return out, nil
}

func (m *memStorage) ListCollagesByPicture(ctx context.Context, id domain.PictureId) ([]domain.Collage, error) {
	return nil, nil
}

// memTx operates on the already-locked storage.
type memTx struct {
	storage     *memStorage
	afterCommit []func()
}

func (t *memTx) AfterCommit(fn func()) {
	t.afterCommit = append(t.afterCommit, fn)
}

func (t *memTx) CreateImage(location string) (*domain.Image, bool, error) {
	m := t.storage
	if m.failCreateImage != nil {
		return nil, false, m.failCreateImage
	}
	if id, ok := m.byLocation[location]; ok {
		cp := *m.images[id]
		return &cp, false, nil
	}
	m.nextImage++
	img := &domain.Image{Id: m.nextImage, OriginalLocation: location}
	m.images[img.Id] = img
	m.byLocation[location] = img.Id
	cp := *img
	return &cp, true, nil
}

func (t *memTx) GetImageForUpdate(id domain.ImageId) (*domain.Image, error) {
	img, ok := t.storage.images[id]
	if !ok {
		return nil, internal_errors.NotFound("image")
	}
	cp := *img
	return &cp, nil
}

func (t *memTx) DeleteImage(id domain.ImageId) error {
	img, ok := t.storage.images[id]
	if !ok {
		return internal_errors.NotFound("image")
	}
	delete(t.storage.byLocation, img.OriginalLocation)
	delete(t.storage.images, id)
	return nil
}

func (t *memTx) DeletePicture(id domain.PictureId) (domain.ImageId, error) {
	pic, ok := t.storage.pictures[id]
	if !ok {
		return 0, internal_errors.NotFound("picture")
	}
	delete(t.storage.pictures, id)
	return pic.ImageId, nil
}

func (t *memTx) CountPicturesByImage(id domain.ImageId) (int, error) {
	n := 0
	for _, pic := range t.storage.pictures {
		if pic.ImageId == id {
			n++
		}
	}
	return n, nil
}

// memBlobs is an in-memory content-addressed blob store.
type memBlobs struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	failSave error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: make(map[string][]byte)}
}

func (b *memBlobs) Save(prefix, originalName string, content io.Reader) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failSave != nil {
		return "", b.failSave
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	location := blob.Location(prefix, hash.SumBytes(data), blob.Ext(originalName))
	if _, ok := b.blobs[location]; !ok {
		b.blobs[location] = data
	}
	return location, nil
}

func (b *memBlobs) Open(location string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[location]
	if !ok {
		return nil, internal_errors.NotFound("blob " + location)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *memBlobs) Exists(location string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[location]
	return ok, nil
}

func (b *memBlobs) Delete(location string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, location)
	return nil
}

func (b *memBlobs) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blobs)
}

func (b *memBlobs) has(location string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[location]
	return ok
}

// recordingQueue captures enqueued tasks.
type recordingQueue struct {
	mu    sync.Mutex
	tasks []taskqueue.Task
}

func (q *recordingQueue) Enqueue(ctx context.Context, task taskqueue.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *recordingQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
