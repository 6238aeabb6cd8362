// Package utils holds helpers shared by the service layer.
package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	internal_errors "github.com/picwall-dev/picwall/internal/errors"
)

const maxNameLength = 255

var namePolicy = bluemonday.StrictPolicy()

// SanitizeName strips markup from a user-supplied picture or collage name
// and enforces length bounds.
func SanitizeName(name string) (string, error) {
	cleaned := strings.TrimSpace(namePolicy.Sanitize(name))
	if cleaned == "" {
		return "", &internal_errors.ValidationError{Message: "name must not be empty"}
	}
	if len(cleaned) > maxNameLength {
		return "", &internal_errors.ValidationError{Message: "name is too long"}
	}
	return cleaned, nil
}
