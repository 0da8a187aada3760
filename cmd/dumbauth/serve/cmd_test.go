package serve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrebq/dumbauth/internal/datastore"
	"github.com/andrebq/dumbauth/internal/password"
)

func TestResolvePasswordRequiresExactlyOneSource(t *testing.T) {
	_, err := resolvePassword("", "", "", "")
	assert.Error(t, err)

	_, err = resolvePassword("hunter2", "", "$argon2id$...", "")
	assert.Error(t, err)
}

func TestResolvePasswordFromFileTrimsNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password.txt")
	require.NoError(t, os.WriteFile(path, []byte("hunter2\r\n"), 0600))

	pw, err := resolvePassword("", path, "", "")
	require.NoError(t, err)
	assert.True(t, password.NewChecker().Check("hunter2", pw))
}

func TestResolvePasswordRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0600))

	_, err := resolvePassword("", path, "", "")
	assert.Error(t, err)
}

func TestResolvePasswordParsesHashAtStartup(t *testing.T) {
	phc, err := password.HashPassword("hunter2")
	require.NoError(t, err)

	pw, err := resolvePassword("", "", phc, "")
	require.NoError(t, err)
	assert.True(t, pw.IsHash())

	_, err = resolvePassword("", "", "not a hash", "")
	assert.Error(t, err)
}

func TestDatastoreOptions(t *testing.T) {
	opts, err := datastoreOptions("async", "thread")
	require.NoError(t, err)
	assert.Equal(t, datastore.ReadAsync, opts.ReadMode)
	assert.Equal(t, datastore.WriteThread, opts.WriteMode)

	_, err = datastoreOptions("bogus", "thread")
	assert.Error(t, err)
	_, err = datastoreOptions("sync", "bogus")
	assert.Error(t, err)
}
