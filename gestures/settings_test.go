package gestures

import (
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settingsPath = "/etc/hwctl.d/gestures.yaml"

func TestLoadDefaults(t *testing.T) {
	settings, err := Load(afero.NewMemMapFs(), settingsPath)
	require.NoError(t, err)

	assert.Equal(t, []Setting{
		{Key: KeyAmbientDisplay, Title: "Ambient display", Enabled: true},
		{Key: KeyHandWave, Title: "Hand wave", Enabled: true},
		{Key: KeyPocket, Title: "Pocket mode", Enabled: false},
	}, settings.All())
}

func TestLoadStoredValues(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "gesture_pocket: true\ngesture_hand_wave: false\nunknown_key: true\n"
	require.NoError(t, afero.WriteFile(fs, settingsPath, []byte(content), 0o644))

	settings, err := Load(fs, settingsPath)
	require.NoError(t, err)

	pocket, err := settings.Get(KeyPocket)
	require.NoError(t, err)
	assert.True(t, pocket)

	handWave, err := settings.Get(KeyHandWave)
	require.NoError(t, err)
	assert.False(t, handWave)

	ambient, err := settings.Get(KeyAmbientDisplay)
	require.NoError(t, err)
	assert.True(t, ambient)

	_, err = settings.Get("unknown_key")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestLoadInvalidYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, settingsPath, []byte("gesture_pocket: ["), 0o644))

	_, err := Load(fs, settingsPath)
	assert.Error(t, err)
}

func TestSetPersists(t *testing.T) {
	fs := afero.NewMemMapFs()
	settings, err := Load(fs, settingsPath)
	require.NoError(t, err)

	require.NoError(t, settings.Set(KeyPocket, true))
	require.NoError(t, settings.Set(KeyAmbientDisplay, false))

	reloaded, err := Load(fs, settingsPath)
	require.NoError(t, err)
	assert.Equal(t, settings.All(), reloaded.All())

	pocket, err := reloaded.Get(KeyPocket)
	require.NoError(t, err)
	assert.True(t, pocket)
}

func TestSetUnknownKey(t *testing.T) {
	fs := afero.NewMemMapFs()
	settings, err := Load(fs, settingsPath)
	require.NoError(t, err)

	assert.ErrorIs(t, settings.Set("gesture_double_tap", true), ErrUnknownKey)

	exists, err := afero.Exists(fs, settingsPath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSetRestoresValueOnWriteFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	settings, err := Load(afero.NewReadOnlyFs(base), settingsPath)
	require.NoError(t, err)

	assert.Error(t, settings.Set(KeyPocket, true))

	pocket, err := settings.Get(KeyPocket)
	require.NoError(t, err)
	assert.False(t, pocket)
}

func TestSetKeepsChangesFromOtherWriters(t *testing.T) {
	fs := afero.NewMemMapFs()
	cli, err := Load(fs, settingsPath)
	require.NoError(t, err)
	server, err := Load(fs, settingsPath)
	require.NoError(t, err)

	require.NoError(t, cli.Set(KeyPocket, true))

	pocket, err := server.Get(KeyPocket)
	require.NoError(t, err)
	assert.True(t, pocket)

	require.NoError(t, server.Set(KeyHandWave, false))

	reloaded, err := Load(fs, settingsPath)
	require.NoError(t, err)
	assert.Equal(t, []Setting{
		{Key: KeyAmbientDisplay, Title: "Ambient display", Enabled: true},
		{Key: KeyHandWave, Title: "Hand wave", Enabled: false},
		{Key: KeyPocket, Title: "Pocket mode", Enabled: true},
	}, reloaded.All())
	assert.Equal(t, reloaded.All(), cli.All())
}

func TestConcurrentSetAndAll(t *testing.T) {
	fs := afero.NewMemMapFs()
	settings, err := Load(fs, settingsPath)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(enabled bool) {
			defer wg.Done()
			assert.NoError(t, settings.Set(KeyPocket, enabled))
		}(i%2 == 0)
		go func() {
			defer wg.Done()
			assert.Len(t, settings.All(), 3)
		}()
	}
	wg.Wait()

	require.NoError(t, settings.Set(KeyPocket, true))
	reloaded, err := Load(fs, settingsPath)
	require.NoError(t, err)
	pocket, err := reloaded.Get(KeyPocket)
	require.NoError(t, err)
	assert.True(t, pocket)
}
