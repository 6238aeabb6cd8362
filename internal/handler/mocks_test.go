package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/picwall-dev/picwall/internal/config"
	"github.com/picwall-dev/picwall/internal/domain"
	internal_errors "github.com/picwall-dev/picwall/internal/errors"
	internal_jwt "github.com/picwall-dev/picwall/internal/jwt"
	"github.com/picwall-dev/picwall/internal/middleware"
	"github.com/picwall-dev/picwall/internal/service"
)

type MockAuthService struct {
	MockRegister func(ctx context.Context, email, password string) (*domain.User, error)
	MockLogin    func(ctx context.Context, email, password string) (*domain.User, error)
}

func (m *MockAuthService) Register(ctx context.Context, email domain.Email, password domain.Password) (*domain.User, error) {
	if m.MockRegister != nil {
		return m.MockRegister(ctx, email, password)
	}
	return &domain.User{Id: 1, Email: email}, nil
}

func (m *MockAuthService) Login(ctx context.Context, email domain.Email, password domain.Password) (*domain.User, error) {
	if m.MockLogin != nil {
		return m.MockLogin(ctx, email, password)
	}
	return &domain.User{Id: 1, Email: email}, nil
}

type MockPictureService struct {
	MockUpload       func(ctx context.Context, actor *domain.User, name string, upload *domain.PendingUpload) (*domain.Picture, error)
	MockGet          func(ctx context.Context, id domain.PictureId) (*domain.Picture, error)
	MockList         func(ctx context.Context) ([]domain.Picture, error)
	MockListCollages func(ctx context.Context, id domain.PictureId) ([]domain.Collage, error)
	MockDelete       func(ctx context.Context, actor *domain.User, id domain.PictureId) error
}

func (m *MockPictureService) Upload(ctx context.Context, actor *domain.User, name string, upload *domain.PendingUpload) (*domain.Picture, error) {
	if m.MockUpload != nil {
		return m.MockUpload(ctx, actor, name, upload)
	}
	return &domain.Picture{Id: 1, Name: name, Owner: actor.Id}, nil
}

func (m *MockPictureService) Get(ctx context.Context, id domain.PictureId) (*domain.Picture, error) {
	if m.MockGet != nil {
		return m.MockGet(ctx, id)
	}
	return &domain.Picture{Id: id}, nil
}

func (m *MockPictureService) List(ctx context.Context) ([]domain.Picture, error) {
	if m.MockList != nil {
		return m.MockList(ctx)
	}
	return nil, nil
}

func (m *MockPictureService) ListCollages(ctx context.Context, id domain.PictureId) ([]domain.Collage, error) {
	if m.MockListCollages != nil {
		return m.MockListCollages(ctx, id)
	}
	return nil, nil
}

func (m *MockPictureService) Delete(ctx context.Context, actor *domain.User, id domain.PictureId) error {
	if m.MockDelete != nil {
		return m.MockDelete(ctx, actor, id)
	}
	return nil
}

type MockCollageService struct {
	MockCreate       func(ctx context.Context, actor *domain.User, name string) (*domain.Collage, error)
	MockGet          func(ctx context.Context, id domain.CollageId) (*domain.Collage, error)
	MockList         func(ctx context.Context) ([]domain.Collage, error)
	MockListPictures func(ctx context.Context, id domain.CollageId) ([]domain.Picture, error)
	MockDelete       func(ctx context.Context, actor *domain.User, id domain.CollageId) error
	MockAttach       func(ctx context.Context, actor *domain.User, collageId domain.CollageId, pictureId domain.PictureId) (service.AttachResult, error)
	MockDetach       func(ctx context.Context, actor *domain.User, collageId domain.CollageId, pictureId domain.PictureId) (service.AttachResult, error)
}

func (m *MockCollageService) Create(ctx context.Context, actor *domain.User, name string) (*domain.Collage, error) {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, actor, name)
	}
	return &domain.Collage{Id: 1, Name: name, Owner: actor.Id}, nil
}

func (m *MockCollageService) Get(ctx context.Context, id domain.CollageId) (*domain.Collage, error) {
	if m.MockGet != nil {
		return m.MockGet(ctx, id)
	}
	return &domain.Collage{Id: id}, nil
}

func (m *MockCollageService) List(ctx context.Context) ([]domain.Collage, error) {
	if m.MockList != nil {
		return m.MockList(ctx)
	}
	return nil, nil
}

func (m *MockCollageService) ListPictures(ctx context.Context, id domain.CollageId) ([]domain.Picture, error) {
	if m.MockListPictures != nil {
		return m.MockListPictures(ctx, id)
	}
	return nil, nil
}

func (m *MockCollageService) Delete(ctx context.Context, actor *domain.User, id domain.CollageId) error {
	if m.MockDelete != nil {
		return m.MockDelete(ctx, actor, id)
	}
	return nil
}

func (m *MockCollageService) Attach(ctx context.Context, actor *domain.User, collageId domain.CollageId, pictureId domain.PictureId) (service.AttachResult, error) {
	if m.MockAttach != nil {
		return m.MockAttach(ctx, actor, collageId, pictureId)
	}
	return service.Attached, nil
}

func (m *MockCollageService) Detach(ctx context.Context, actor *domain.User, collageId domain.CollageId, pictureId domain.PictureId) (service.AttachResult, error) {
	if m.MockDetach != nil {
		return m.MockDetach(ctx, actor, collageId, pictureId)
	}
	return service.Detached, nil
}

type MockBlobStorage struct {
	MockOpen func(location string) (io.ReadCloser, error)
}

func (m *MockBlobStorage) Save(prefix, originalName string, content io.Reader) (string, error) {
	return "", nil
}

func (m *MockBlobStorage) Open(location string) (io.ReadCloser, error) {
	if m.MockOpen != nil {
		return m.MockOpen(location)
	}
	return nil, internal_errors.NotFound("blob")
}

func (m *MockBlobStorage) Exists(location string) (bool, error) { return false, nil }
func (m *MockBlobStorage) Delete(location string) error         { return nil }

type MockPinger struct {
	MockPing func(ctx context.Context) error
}

func (m *MockPinger) Ping(ctx context.Context) error {
	if m.MockPing != nil {
		return m.MockPing(ctx)
	}
	return nil
}

type testMocks struct {
	auth     *MockAuthService
	pictures *MockPictureService
	collages *MockCollageService
	blobs    *MockBlobStorage
	health   *MockPinger
}

func newTestHandler() (*Handler, *testMocks) {
	mocks := &testMocks{
		auth:     &MockAuthService{},
		pictures: &MockPictureService{},
		collages: &MockCollageService{},
		blobs:    &MockBlobStorage{},
		health:   &MockPinger{},
	}
	cfg := &config.Config{Public: config.Public{JwtTTLSeconds: 3600, MaxUploadBytes: 1 << 20}}
	jwtService := internal_jwt.New("testJwtKey", time.Hour)
	h := New(mocks.auth, mocks.pictures, mocks.collages, mocks.blobs, mocks.health, jwtService, cfg)
	return h, mocks
}

// testRouter mirrors the production route layout for the handlers under test.
func testRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	authRequired := middleware.Auth(h.jwt)

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Get("/media/*", h.ServeMedia)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(authRequired)
			r.Get("/pictures", h.ListPictures)
			r.Post("/pictures", h.UploadPicture)
			r.Get("/pictures/{id}", h.GetPicture)
			r.Delete("/pictures/{id}", h.DeletePicture)
			r.Get("/pictures/{id}/collages", h.ListPictureCollages)

			r.Get("/collages", h.ListCollages)
			r.Post("/collages", h.CreateCollage)
			r.Get("/collages/{id}", h.GetCollage)
			r.Delete("/collages/{id}", h.DeleteCollage)
			r.Get("/collages/{id}/pictures", h.ListCollagePictures)
			r.Put("/collages/{id}/pictures/{pictureId}", h.AttachPicture)
			r.Delete("/collages/{id}/pictures/{pictureId}", h.DetachPicture)
		})
	})
	return r
}

var testUser = &domain.User{Id: 42, Email: "tester@example.com"}

// authedRequest builds a request carrying a valid access token for testUser.
func authedRequest(t *testing.T, h *Handler, method, path string, body []byte) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	r := httptest.NewRequest(method, path, reader)
	token, err := h.jwt.NewToken(testUser)
	require.NoError(t, err)
	r.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	return r
}
