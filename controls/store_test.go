package controls_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tr4cks/hwctl/controls"
)

func TestFileStoreExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/sys/class/test/value", []byte("1\n"), 0o644))
	store := controls.NewFileStore(fs, "/")

	assert.True(t, store.Exists("/sys/class/test/value"))
	assert.False(t, store.Exists("/sys/class/test/missing"))
}

func TestFileStoreReadFirstLine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain", "255", "255"},
		{"trailing newline", "255\n", "255"},
		{"surrounding spaces", "  42 \n", "42"},
		{"multiple lines", "performance\nignored\n", "performance"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/sys/value", []byte(tt.content), 0o644))

			got, err := controls.NewFileStore(fs, "/").Read("/sys/value")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileStoreReadMissing(t *testing.T) {
	store := controls.NewFileStore(afero.NewMemMapFs(), "/")

	_, err := store.Read("/sys/missing")
	assert.Error(t, err)
}

func TestFileStoreWriteReplacesContent(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/sys/value", []byte("255\n"), 0o644))
	store := controls.NewFileStore(fs, "/")

	require.NoError(t, store.Write("/sys/value", "7"))

	data, err := afero.ReadFile(fs, "/sys/value")
	require.NoError(t, err)
	assert.Equal(t, "7", string(data))
}

func TestFileStoreWriteDoesNotCreate(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := controls.NewFileStore(fs, "/")

	err := store.Write("/sys/missing", "1")
	assert.Error(t, err)
	assert.False(t, store.Exists("/sys/missing"))
}

func TestFileStoreRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/fake/sys/value", []byte("1"), 0o644))
	store := controls.NewFileStore(fs, "/srv/fake")

	assert.True(t, store.Exists("/sys/value"))
	require.NoError(t, store.Write("/sys/value", "0"))

	got, err := store.Read("/sys/value")
	require.NoError(t, err)
	assert.Equal(t, "0", got)
}
