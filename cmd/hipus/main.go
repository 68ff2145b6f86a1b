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
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ogenlabs/hipus"
	"github.com/ogenlabs/hipus/core"
	"github.com/ogenlabs/hipus/rebuild"
	"github.com/ogenlabs/hipus/search"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "hipus",
		Usage: "Hebrew-aware text search engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Index a document",
				ArgsUsage: "<text>",
				Action:    indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to the search store directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Document identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read document text from a file instead of arguments",
					},
					&cli.StringSliceFlag{
						Name:  "meta",
						Usage: "Document metadata as key=value (repeatable)",
					},
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a document from the store",
				ArgsUsage: "<id>",
				Action:    removeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to the search store directory",
						Required: true,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search indexed documents",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to the search store directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Search mode (exact, fuzzy, semantic, hybrid)",
						Value: "hybrid",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of hits to return",
						Value: search.DefaultLimit,
					},
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Number of ranked hits to skip",
					},
				},
			},
			{
				Name:      "suggest",
				Usage:     "Complete a term prefix from the indexed vocabulary",
				ArgsUsage: "<prefix>",
				Action:    suggestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to the search store directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of suggestions to return",
						Value: search.DefaultLimit,
					},
				},
			},
			{
				Name:   "rebuild",
				Usage:  "Rebuild tf-idf vectors over the whole store",
				Action: rebuildCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to the search store directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of terms to fold in each batch",
						Value: 512,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N terms",
						Value: 1000,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Print store statistics",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to the search store directory",
						Required: true,
					},
				},
			},
		},
	}
}

// openEngine opens the store named by the --db flag. Opening hydrates the
// index and builds tf-idf vectors, so every command starts from a fully
// queryable engine.
func openEngine(ctx context.Context, c *cli.Context, opts ...hipus.Option) (*hipus.Engine, error) {
	dbPath := c.String("db")
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	engine, err := hipus.Open(ctx, dbPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return engine, nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	id := c.String("id")
	text := strings.Join(c.Args().Slice(), " ")
	if file := c.String("file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		text = string(data)
	}
	if text == "" {
		return fmt.Errorf("document text is required (arguments or --file)")
	}

	metadata, err := parseMetadata(c.StringSlice("meta"))
	if err != nil {
		return err
	}

	engine, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.IndexDocument(ctx, core.DocID(id), text, metadata); err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}

	fmt.Printf("Indexed %s\n", id)
	return nil
}

func removeCommand(c *cli.Context) error {
	ctx := context.Background()

	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("document id argument is required")
	}

	engine, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.RemoveDocument(ctx, core.DocID(id)); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}

	fmt.Printf("Removed %s\n", id)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("search query is required")
	}

	engine, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	hits, err := engine.Search(ctx, query, search.Options{
		Mode:   search.Mode(c.String("mode")),
		Limit:  c.Int("limit"),
		Offset: c.Int("offset"),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(hits))
	for i, hit := range hits {
		fmt.Printf("%d: %s [%0.3f] %s\n", i, hit.DocId, hit.Score, hit.Snippet)
	}
	return nil
}

func suggestCommand(c *cli.Context) error {
	ctx := context.Background()

	prefix := c.Args().First()
	if prefix == "" {
		return fmt.Errorf("prefix argument is required")
	}

	engine, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	for _, s := range engine.Suggest(prefix, c.Int("limit")) {
		fmt.Printf("%s (%d)\n", s.Term, s.DocFrequency)
	}
	return nil
}

func rebuildCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg := &rebuild.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if cfg.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if cfg.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if cfg.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	start := time.Now()
	engine, err := openEngine(ctx, c,
		hipus.WithRebuildConfig(cfg),
		hipus.WithRebuildProgress(os.Stderr),
	)
	if err != nil {
		return err
	}
	defer engine.Close()

	// Opening runs a full synchronous vector build with the configured
	// batching and retry knobs, so the work is done once the engine is up.
	stats := engine.Stats()
	fmt.Fprintf(os.Stderr, "Rebuilt vectors for %d documents (%d terms) in %s\n",
		stats.Documents, stats.Terms, time.Since(start).Round(time.Millisecond))
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	stats := engine.Stats()
	fmt.Printf("Documents: %d\n", stats.Documents)
	fmt.Printf("Terms: %d\n", stats.Terms)
	fmt.Printf("Index generation: %d\n", stats.Generation)
	fmt.Printf("Vector generation: %d\n", stats.VectorGeneration)
	return nil
}

// parseMetadata turns repeated key=value flags into a metadata map.
func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	metadata := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata %q: expected key=value", pair)
		}
		metadata[key] = value
	}
	return metadata, nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
