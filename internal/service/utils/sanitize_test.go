package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	t.Run("plain name passes through", func(t *testing.T) {
		name, err := SanitizeName("Summer Trip 2026")
		require.NoError(t, err)
		assert.Equal(t, "Summer Trip 2026", name)
	})

	t.Run("markup is stripped", func(t *testing.T) {
		name, err := SanitizeName(`<script>alert(1)</script>Beach`)
		require.NoError(t, err)
		assert.Equal(t, "Beach", name)
	})

	t.Run("whitespace trimmed", func(t *testing.T) {
		name, err := SanitizeName("  cat  ")
		require.NoError(t, err)
		assert.Equal(t, "cat", name)
	})

	t.Run("empty after sanitizing is rejected", func(t *testing.T) {
		_, err := SanitizeName("<b></b>  ")
		assert.Error(t, err)
	})

	t.Run("overlong name is rejected", func(t *testing.T) {
		_, err := SanitizeName(strings.Repeat("x", maxNameLength+1))
		assert.Error(t, err)
	})
}
