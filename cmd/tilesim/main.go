package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/tilecore/internal/config"
	"github.com/zeusync/tilecore/internal/core/observability/log"
	"github.com/zeusync/tilecore/internal/demo"
	"github.com/zeusync/tilecore/internal/injector"
	"github.com/zeusync/tilecore/pkg/concurrent"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "tilesim:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if cfg.Scene.Default == "" {
		cfg.Scene.Default = demo.OfficeScene
	}

	app, err := injector.InitializeApp(cfg)
	if err != nil {
		return err
	}
	logger := app.Logger
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	demo.Register(app.World)
	if err := app.Session.AddSystem(demo.NewAutopilot(app.World, logger)); err != nil {
		return err
	}

	g := concurrent.NewGroup(ctx)
	g.Go(app.Session.Run)
	if app.Inspector != nil {
		g.Go(app.Inspector.Run)
	}

	if err := app.Session.Start(g.Context(), cfg.Scene.Default); err != nil {
		logger.Error("starting scene failed", log.String("scene", cfg.Scene.Default), log.Error(err))
		stop()
	}

	err = g.Wait()
	if saveErr := app.World.SaveGame(context.Background()); saveErr != nil {
		logger.Warn("saving on shutdown failed", log.Error(saveErr))
	}
	app.Slots.Close()
	app.Session.Close()
	logger.Info("tilesim stopped", log.String("session", app.Session.ID()))
	return err
}
