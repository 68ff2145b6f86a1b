// Copyright 2025 Ogen Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ogenlabs/hipus"
	"github.com/ogenlabs/hipus/httpapi"
)

func main() {
	app := &cli.App{
		Name:  "hipusd",
		Usage: "Hebrew-aware search daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cfg, err := httpapi.Load(c.String("config"))
	if err != nil {
		return err
	}
	if err := setupLogger(cfg.Logging); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var engine *hipus.Engine
	if cfg.Store.InMemory {
		slog.Info("opening in-memory store")
		engine, err = hipus.OpenMemory(ctx, cfg.EngineOptions()...)
	} else {
		slog.Info("opening store", "path", cfg.Store.Path)
		engine, err = hipus.Open(ctx, cfg.Store.Path, cfg.EngineOptions()...)
	}
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			slog.Error("closing engine", "error", err)
		}
	}()

	server := httpapi.NewServer(cfg.Server, httpapi.NewHandler(engine).Routes())
	return server.Run(ctx)
}

// setupLogger installs the default slog logger from the logging config.
func setupLogger(cfg httpapi.LoggingConfig) error {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", cfg.Level)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", cfg.Format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}
