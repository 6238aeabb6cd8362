package validation

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/picwall-dev/picwall/internal/domain"
)

// AllowedImageMimes is the upload whitelist. It mirrors the formats the
// thumbnail pipeline can decode.
var AllowedImageMimes = []string{"image/png", "image/jpeg", "image/gif"}

// ValidateAndParseMultipart enforces the upload size limit and parses the
// multipart form. MaxBytesReader stops reading at the limit, so an oversized
// body never exhausts the server regardless of its declared length.
func ValidateAndParseMultipart(r *http.Request, w http.ResponseWriter, maxSize int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return fmt.Errorf("%w: failed to parse multipart form", ErrPayloadTooLarge)
	}
	return nil
}

// ValidateUpload checks the uploaded file's MIME type and extracts image
// dimensions. The returned upload keeps the file open; the caller owns it.
func ValidateUpload(fileHeader *multipart.FileHeader) (*domain.PendingUpload, error) {
	if fileHeader == nil {
		return nil, ErrMissingFile
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}

	mimeType, err := DetectMimeType(fileHeader)
	if err != nil {
		file.Close()
		return nil, err
	}

	if !allowedMime(mimeType) {
		file.Close()
		return nil, fmt.Errorf("%w: %s (file: %s)", ErrInvalidMimeType, mimeType, fileHeader.Filename)
	}

	width, height := ExtractImageDimensions(file, mimeType)

	return &domain.PendingUpload{
		Filename:    fileHeader.Filename,
		SizeBytes:   fileHeader.Size,
		MimeType:    mimeType,
		ImageWidth:  width,
		ImageHeight: height,
		Data:        file,
	}, nil
}

func DetectMimeType(fileHeader *multipart.FileHeader) (string, error) {
	mimeType := fileHeader.Header.Get("Content-Type")

	// If no Content-Type or it's generic, detect from extension
	if mimeType == "" || mimeType == "application/octet-stream" {
		ext := filepath.Ext(fileHeader.Filename)
		detectedType := mime.TypeByExtension(ext)
		if detectedType != "" {
			mimeType = detectedType
		}
	}

	if mimeType == "" {
		return "", fmt.Errorf("could not detect MIME type for file: %s", fileHeader.Filename)
	}

	// Strip parameters like "; charset=..."
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}

	return mimeType, nil
}

func ExtractImageDimensions(file multipart.File, mimeType string) (*int, *int) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, nil
	}

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		file.Seek(0, 0) // Reset file pointer
		return nil, nil
	}
	file.Seek(0, 0)

	width, height := cfg.Width, cfg.Height
	return &width, &height
}

func allowedMime(mimeType string) bool {
	for _, m := range AllowedImageMimes {
		if m == mimeType {
			return true
		}
	}
	return false
}
