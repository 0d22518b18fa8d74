package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/tilecore/internal/config"
	"github.com/zeusync/tilecore/internal/core/observability/log"
	"github.com/zeusync/tilecore/internal/core/world"
	"github.com/zeusync/tilecore/internal/inspector"
	"github.com/zeusync/tilecore/internal/savegame"
)

// App is everything the binary runs.
type App struct {
	Config    *config.Config
	Logger    *log.Logger
	World     *world.World
	Session   *world.Session
	Slots     *savegame.Slots
	Inspector *inspector.Server
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	world.SettingsFrom,
	ProvideWorld,
	ProvideSession,
	ProvideSlots,
	ProvideInspector,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg *config.Config) *log.Logger {
	return log.NewWithOptions(cfg.LogLevel(), log.Options{Development: cfg.Log.Development})
}

func ProvideWorld(settings world.Settings, logger *log.Logger) *world.World {
	return world.New(settings, logger)
}

func ProvideSession(w *world.World, logger *log.Logger) *world.Session {
	return world.NewSession(w, logger)
}

// ProvideSlots opens the save slots. When the data directory cannot be
// opened the game keeps running with in-memory slots.
func ProvideSlots(cfg *config.Config, w *world.World, logger *log.Logger) *savegame.Slots {
	data, err := savegame.Open(cfg.Save.Enabled, cfg.Save.AppName)
	if err != nil {
		logger.Warn("saving to disk disabled", log.Error(err))
	}
	return savegame.New(data, "slot-1", w.GameBus(), w.Scenes(), logger)
}

// ProvideInspector returns nil unless the inspector is enabled.
func ProvideInspector(cfg *config.Config, w *world.World, logger *log.Logger) *inspector.Server {
	if !cfg.Inspector.Enabled {
		return nil
	}
	s := inspector.New(cfg.Inspector.Addr, logger)
	s.Attach(w.GameBus())
	return s
}
