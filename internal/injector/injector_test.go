package injector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/tilecore/internal/config"
)

func TestInitializeApp(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "error"

	app, err := InitializeApp(cfg)
	require.NoError(t, err)
	t.Cleanup(app.Session.Close)

	assert.Same(t, cfg, app.Config)
	assert.Same(t, app.World, app.Session.World())
	assert.NotNil(t, app.Slots)
	assert.False(t, app.Slots.Persistent())
	assert.Nil(t, app.Inspector)
}

func TestInitializeAppWithInspector(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.Inspector.Enabled = true

	app, err := InitializeApp(cfg)
	require.NoError(t, err)
	t.Cleanup(app.Session.Close)

	require.NotNil(t, app.Inspector)
	assert.Zero(t, app.Inspector.Clients())
}
