package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

func TestExportCredentialsWithoutSummaries(t *testing.T) {
	c := types.DefaultConfig()
	c.Credential.StorePath = filepath.Join(t.TempDir(), "nested", "credentials.db")
	c.Credential.SecretsDir = t.TempDir()

	creds, closeFn, err := exportCredentials(c, false)
	require.NoError(t, err)
	assert.NoError(t, closeFn())

	_, ok, err := creds.Lookup(context.Background(), "openai-api-key")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = os.Stat(filepath.Dir(c.Credential.StorePath))
	assert.True(t, os.IsNotExist(err), "store must not be created without --summarize")
}

func TestExportCredentialsWithSummaries(t *testing.T) {
	c := types.DefaultConfig()
	c.Credential.StorePath = filepath.Join(t.TempDir(), "credentials.db")
	c.Credential.SecretsDir = t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(c.Credential.SecretsDir, "openai-api-key"), []byte("sk-test\n"), 0o600))

	creds, closeFn, err := exportCredentials(c, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	v, ok, err := creds.Lookup(context.Background(), "openai-api-key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sk-test", v)

	_, err = os.Stat(c.Credential.StorePath)
	assert.NoError(t, err)
}
