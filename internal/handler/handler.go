package handler

import (
	"context"

	"github.com/picwall-dev/picwall/internal/config"
	"github.com/picwall-dev/picwall/internal/domain"
	internal_jwt "github.com/picwall-dev/picwall/internal/jwt"
	"github.com/picwall-dev/picwall/internal/service"
)

// Pinger reports whether the database is reachable, for readiness probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	auth     service.AuthService
	pictures service.PictureService
	collages service.CollageService
	blobs    service.BlobStorage
	health   Pinger
	jwt      internal_jwt.JwtService
	cfg      *config.Config
}

func New(auth service.AuthService, pictures service.PictureService, collages service.CollageService, blobs service.BlobStorage, health Pinger, jwt internal_jwt.JwtService, cfg *config.Config) *Handler {
	return &Handler{auth, pictures, collages, blobs, health, jwt, cfg}
}

// Response shapes. Blob locations are exposed as /media/ URLs, never as
// storage paths.

type imageResponse struct {
	Original  string `json:"original"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

type pictureResponse struct {
	Id    int64          `json:"id"`
	Name  string         `json:"name"`
	Owner int64          `json:"owner"`
	Image *imageResponse `json:"image,omitempty"`
}

type collageResponse struct {
	Id    int64  `json:"id"`
	Name  string `json:"name"`
	Owner int64  `json:"owner"`
}

const mediaPrefix = "/media/"

func toImageResponse(img *domain.Image) *imageResponse {
	if img == nil {
		return nil
	}
	resp := &imageResponse{Original: mediaPrefix + img.OriginalLocation}
	if img.HasThumbnail() {
		resp.Thumbnail = mediaPrefix + img.ThumbnailLocation
	}
	return resp
}

func toPictureResponse(p *domain.Picture) pictureResponse {
	return pictureResponse{Id: p.Id, Name: p.Name, Owner: p.Owner, Image: toImageResponse(p.Image)}
}

func toCollageResponse(c *domain.Collage) collageResponse {
	return collageResponse{Id: c.Id, Name: c.Name, Owner: c.Owner}
}
