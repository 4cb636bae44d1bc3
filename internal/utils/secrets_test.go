package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSecretFrom(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("  s3cr3t\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty"), []byte("\n"), 0o600))

	got, err := ReadSecretFrom(dir, "jwt_secret")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", got)

	_, err = ReadSecretFrom(dir, "empty")
	assert.Error(t, err)

	_, err = ReadSecretFrom(dir, "missing")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadOptionalSecret(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "redis_password"), []byte("pw"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blank"), nil, 0o600))

	got, err := ReadOptionalSecret(dir, "redis_password")
	require.NoError(t, err)
	assert.Equal(t, "pw", got)

	got, err = ReadOptionalSecret(dir, "openai_api_key")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ReadOptionalSecret(dir, "blank")
	assert.Error(t, err)
}
