package config

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad(t *testing.T) {
	dir := t.TempDir()

	public := `
address: ":8080"
jwt_ttl_seconds: 86400
blob_backend: fs
queue_backend: memory
media_root: /var/lib/picwall/media
max_upload_bytes: 10485760
gc_interval_seconds: 3600
gc_min_blob_age_seconds: 86400
`
	private := `
jwt_key: secret
pg:
  host: localhost
  port: 5432
  user: picwall
  password: picwall
  dbname: picwall
redis:
  addr: localhost:6379
`
	require.NoError(t, os.WriteFile(path.Join(dir, "public.yaml"), []byte(public), 0644))
	require.NoError(t, os.WriteFile(path.Join(dir, "private.yaml"), []byte(private), 0644))

	cfg := MustLoad(dir)

	assert.Equal(t, ":8080", cfg.Public.Address)
	assert.Equal(t, 24*time.Hour, cfg.JwtTTL())
	assert.Equal(t, time.Hour, cfg.GCInterval())
	assert.Equal(t, "fs", cfg.Public.BlobBackend)
	assert.Equal(t, int64(10485760), cfg.Public.MaxUploadBytes)
	assert.Equal(t, "secret", cfg.Private.JwtKey)
	assert.Equal(t, 5432, cfg.Private.Pg.Port)
	assert.Equal(t, "localhost:6379", cfg.Private.Redis.Addr)
}

func TestMustLoadMissingFile(t *testing.T) {
	assert.Panics(t, func() { MustLoad(t.TempDir()) })
}
