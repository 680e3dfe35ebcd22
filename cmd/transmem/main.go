// Copyright 2025 Poiesic Systems
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

	"github.com/poiesic/transmem"
	"github.com/poiesic/transmem/search"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "transmem",
		Usage: "Translation memory indexing and cascade search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to TOML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Import tab-separated translation pairs into a corpus",
				Action: importCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to a TSV file (source<TAB>target[<TAB>context])",
						Required: true,
					}),
			},
			{
				Name:   "build",
				Usage:  "Build all index artifacts for a corpus",
				Action: buildCommand,
				Flags:  commonFlags(),
			},
			{
				Name:   "search",
				Usage:  "Search a corpus through the tier cascade",
				Action: searchCommand,
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:  "max-results",
						Usage: "Maximum number of results",
						Value: 5,
					},
					&cli.StringFlag{
						Name:  "project",
						Usage: "Project affinity hint for context boosting",
					},
					&cli.StringFlag{
						Name:  "file-type",
						Usage: "File-type affinity hint for context boosting",
					}),
			},
			{
				Name:   "status",
				Usage:  "Show per-artifact build state and staleness for a corpus",
				Action: statusCommand,
				Flags:  commonFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "corpus",
			Usage:    "Corpus identifier",
			Required: true,
		},
	}
}

func openEngine(c *cli.Context) (*transmem.Engine, error) {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return transmem.NewEngine(c.String("db"),
		transmem.WithAIConfig(cfg.aiConfig()),
		transmem.WithSearchConfig(cfg.searchConfig()))
}

func importCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	raws, err := readTSV(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	report, err := engine.Import(context.Background(), c.String("corpus"), raws)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "accepted:          %d\n", report.Accepted)
	fmt.Fprintf(os.Stderr, "skipped empty:     %d\n", report.SkippedEmpty)
	fmt.Fprintf(os.Stderr, "skipped oversized: %d\n", report.SkippedOversized)
	fmt.Fprintf(os.Stderr, "duplicates:        %d\n", report.Duplicates)
	return nil
}

func buildCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	status, err := engine.Build(context.Background(), c.String("corpus"))
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	printStatus(status)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("query is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := context.Background()
	corpus := c.String("corpus")

	// Artifacts live in memory, so a fresh process builds before searching.
	if _, err := engine.Build(ctx, corpus); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	result, err := engine.Search(ctx, corpus, query, search.Options{
		MaxResults: c.Int("max-results"),
		Project:    c.String("project"),
		FileType:   c.String("file-type"),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if result.BestMatch == nil && result.Context == nil {
		fmt.Println("no matches")
		return nil
	}
	if result.BestMatch != nil {
		m := result.BestMatch
		fmt.Printf("best:    '%s' -> '%s' [%0.3f] tier %d (%s)\n",
			m.MatchedSource, m.Target, m.Score, m.Tier, m.Kind)
	}
	for i, m := range result.Suggestions {
		fmt.Printf("%d: '%s' -> '%s' [%0.3f] tier %d (%s)\n",
			i+1, m.MatchedSource, m.Target, m.Score, m.Tier, m.Kind)
	}
	if result.Context != nil {
		m := result.Context
		fmt.Printf("context: '%s' -> '%s' [%0.3f] tier %d (%s)\n",
			m.MatchedSource, m.Target, m.Score, m.Tier, m.Kind)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	status, err := engine.Status(context.Background(), c.String("corpus"))
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}
	printStatus(status)
	return nil
}

func printStatus(status *transmem.CorpusStatus) {
	fmt.Printf("corpus:          %s\n", status.CorpusId)
	fmt.Printf("active version:  %d\n", status.ActiveVersion)
	fmt.Printf("entries:         %d\n", status.EntryCount)
	fmt.Printf("embedding model: %s\n", status.EmbeddingModel)
	fmt.Printf("stale:           %v\n", status.Stale)
	for _, a := range status.Artifacts {
		line := fmt.Sprintf("  %-18s %-8s entries=%d took=%s",
			a.Kind, a.Status, a.EntryCount, a.BuildDuration)
		if a.Error != "" {
			line += " error=" + a.Error
		}
		fmt.Println(line)
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
