package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coltable/coltable-db/internal/app"
	"github.com/coltable/coltable-db/internal/config"
	"github.com/coltable/coltable-db/internal/retention"
	"github.com/coltable/coltable-db/internal/store"
	"github.com/coltable/coltable-db/internal/store/memory"
	"github.com/coltable/coltable-db/internal/store/pebblestore"
)

func main() {
	application, err := initialize()
	if err != nil {
		panic(err)
	}

	if err = application.Run(context.Background()); err != nil {
		panic(err)
	}
}

func initialize() (*app.App, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var backing store.Store
	switch cfg.Engine {
	case config.EngineMemory:
		backing = memory.New()
	default:
		pebbleStore, err := pebblestore.New(&pebblestore.Config{
			Dir: cfg.DataDir,
		})
		if err != nil {
			return nil, err
		}
		backing = pebbleStore
	}

	// The retention engine starts and stops the backing store itself, so it
	// is the only storage dependency the app manages.
	engine, err := retention.New(&retention.Config{
		Window:  time.Duration(cfg.RetentionMS) * time.Millisecond,
		Store:   backing,
		Workers: cfg.FlushWorkers,
	})
	if err != nil {
		return nil, err
	}

	return app.CreateApp(&app.Config{
		ServiceName: "Coltable DB",
		StopTimeout: 5 * time.Second,
	}, engine)
}
