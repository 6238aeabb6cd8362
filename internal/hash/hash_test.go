package hash

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	t.Run("known vector", func(t *testing.T) {
		digest, err := Sum(strings.NewReader("hello"))
		require.NoError(t, err)
		assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", digest)
	})

	t.Run("empty input", func(t *testing.T) {
		digest, err := Sum(bytes.NewReader(nil))
		require.NoError(t, err)
		assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", digest)
		assert.Len(t, digest, HexLength)
	})

	t.Run("same bytes same digest", func(t *testing.T) {
		payload := bytes.Repeat([]byte{0xab, 0xcd}, 1<<16)

		d1, err := Sum(bytes.NewReader(payload))
		require.NoError(t, err)
		d2, err := Sum(bytes.NewReader(payload))
		require.NoError(t, err)

		assert.Equal(t, d1, d2)
		assert.Equal(t, d1, SumBytes(payload))
	})

	t.Run("different bytes different digest", func(t *testing.T) {
		d1, err := Sum(strings.NewReader("a"))
		require.NoError(t, err)
		d2, err := Sum(strings.NewReader("b"))
		require.NoError(t, err)
		assert.NotEqual(t, d1, d2)
	})
}
