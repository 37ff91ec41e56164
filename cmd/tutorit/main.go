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
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	tutorit "github.com/poiesic/tutorit"
	"github.com/poiesic/tutorit/ai"
	"github.com/poiesic/tutorit/artifact"
	"github.com/poiesic/tutorit/chain"
	"github.com/poiesic/tutorit/core"
	"github.com/poiesic/tutorit/index"
	"github.com/poiesic/tutorit/ingestion"
	"github.com/poiesic/tutorit/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "tutorit",
		Usage: "Retrieval-augmented assistant for special education planning",
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
				Name:      "ask",
				Usage:     "Ask a question grounded in the given documents",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: append(aiFlags(),
					&cli.StringSliceFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Document file to ingest before asking (repeatable)",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of chunks to retrieve",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk size in characters",
						Value: 1000,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Chunk overlap in characters",
						Value: 200,
					},
					&cli.BoolFlag{
						Name:  "show-sources",
						Usage: "Print retrieved source chunks after the answer",
					},
				),
			},
			{
				Name:      "iep",
				Usage:     "Generate an IEP from a student evaluation document",
				ArgsUsage: "FILE",
				Action:    iepCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:  "prompt-mode",
						Usage: "Prompt strategy (dedicated, fallback)",
						Value: "dedicated",
					},
					&cli.StringFlag{
						Name:    "archive",
						Aliases: []string{"a"},
						Usage:   "Path to BadgerDB archive directory for saving results",
					},
				),
			},
			{
				Name:   "lesson-plan",
				Usage:  "Generate a lesson plan integrating a previously archived IEP",
				Action: lessonPlanCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "archive",
						Aliases:  []string{"a"},
						Usage:    "Path to BadgerDB archive directory holding the IEP",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "iep",
						Usage:    "ID of the archived IEP to integrate",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "subject",
						Usage:    "Subject area",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "grade",
						Usage:    "Grade level",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "timeframe",
						Usage: "Plan timeframe (Daily, Weekly)",
						Value: "Weekly",
					},
					&cli.StringFlag{
						Name:  "duration",
						Usage: "Session duration",
						Value: "45 minutes per session",
					},
					&cli.StringSliceFlag{
						Name:  "day",
						Usage: "Schedule day for weekly plans (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:     "goal",
						Usage:    "Learning goal (repeatable)",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "material",
						Usage: "Available material (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "accommodation",
						Usage: "Required accommodation (repeatable)",
					},
					&cli.StringFlag{
						Name:  "prompt-mode",
						Usage: "Prompt strategy (dedicated, fallback)",
						Value: "dedicated",
					},
				),
			},
			{
				Name:   "archive-list",
				Usage:  "List documents and artifacts in an archive",
				Action: archiveListCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "archive",
						Aliases:  []string{"a"},
						Usage:    "Path to BadgerDB archive directory",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// aiFlags returns the provider flags shared by every generation command.
func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Usage: "OpenAI-compatible service host URL for both embedding and chat",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "chat-model",
			Usage: "Chat model name",
			Value: "qwen2.5:3b",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Generation timeout",
			Value: 2 * time.Minute,
		},
	}
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatModel(c.String("chat-model")),
		ai.WithTimeout(c.Duration("timeout")),
	)
}

func promptModeFromFlags(c *cli.Context) (artifact.PromptMode, error) {
	switch strings.ToLower(c.String("prompt-mode")) {
	case "dedicated":
		return artifact.ModeDedicated, nil
	case "fallback":
		return artifact.ModeFallback, nil
	default:
		return 0, fmt.Errorf("invalid prompt mode %q: must be dedicated or fallback", c.String("prompt-mode"))
	}
}

// readUploads loads file paths into in-memory uploads.
func readUploads(paths []string) ([]ingestion.Upload, error) {
	uploads := make([]ingestion.Upload, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		uploads = append(uploads, ingestion.Upload{
			Name: filepath.Base(path),
			Data: data,
		})
	}
	return uploads, nil
}

func reportBatch(result *ingestion.BatchResult) error {
	for _, item := range result.Items {
		if item.Err != nil {
			fmt.Fprintf(os.Stderr, "failed: %s: %v\n", item.Name, item.Err)
		} else {
			fmt.Fprintf(os.Stderr, "ingested: %s\n", item.Name)
		}
	}
	if result.Succeeded == 0 {
		return fmt.Errorf("no documents ingested")
	}
	return nil
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	question := strings.TrimSpace(c.Args().First())
	if question == "" {
		return fmt.Errorf("question is required")
	}
	files := c.StringSlice("file")
	if len(files) == 0 {
		return fmt.Errorf("at least one --file is required")
	}

	assistant, err := tutorit.NewAssistant(
		tutorit.WithAIConfig(aiConfigFromFlags(c)),
		tutorit.WithIndexOptions(
			index.WithChunkSize(c.Int("chunk-size")),
			index.WithChunkOverlap(c.Int("chunk-overlap")),
		),
		tutorit.WithChainOptions(chain.WithTopK(c.Int("top-k"))),
	)
	if err != nil {
		return err
	}
	defer assistant.Close()

	uploads, err := readUploads(files)
	if err != nil {
		return err
	}
	result, err := assistant.IngestFiles(ctx, uploads)
	if err != nil {
		return err
	}
	if err := reportBatch(result); err != nil {
		return err
	}

	answer, err := assistant.Ask(ctx, question)
	if err != nil {
		return err
	}

	fmt.Println(answer.Answer)
	if c.Bool("show-sources") {
		fmt.Println()
		for i, source := range answer.Sources {
			fmt.Printf("[%d] %s (score %.3f)\n", i+1, source.Source, source.Score)
		}
	}
	return nil
}

func iepCommand(c *cli.Context) error {
	ctx := context.Background()

	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("document file is required")
	}
	mode, err := promptModeFromFlags(c)
	if err != nil {
		return err
	}

	opts := []tutorit.AssistantOption{
		tutorit.WithAIConfig(aiConfigFromFlags(c)),
		tutorit.WithPromptMode(mode),
	}
	if archivePath := c.String("archive"); archivePath != "" {
		opts = append(opts, tutorit.WithArchivePath(archivePath))
	}

	assistant, err := tutorit.NewAssistant(opts...)
	if err != nil {
		return err
	}
	defer assistant.Close()

	uploads, err := readUploads([]string{path})
	if err != nil {
		return err
	}
	result, err := assistant.IngestFiles(ctx, uploads)
	if err != nil {
		return err
	}
	if err := reportBatch(result); err != nil {
		return err
	}

	iep, err := assistant.GenerateIEP(ctx, result.Items[0].DocumentID)
	if err != nil {
		return err
	}

	if c.String("archive") != "" {
		if err := assistant.Archive(ctx); err != nil {
			return fmt.Errorf("failed to archive results: %w", err)
		}
		fmt.Fprintf(os.Stderr, "archived IEP %s\n", iep.ID)
	}

	fmt.Println(iep.Content)
	return nil
}

func lessonPlanCommand(c *cli.Context) error {
	ctx := context.Background()

	mode, err := promptModeFromFlags(c)
	if err != nil {
		return err
	}

	assistant, err := tutorit.NewAssistant(
		tutorit.WithAIConfig(aiConfigFromFlags(c)),
		tutorit.WithPromptMode(mode),
		tutorit.WithArchivePath(c.String("archive")),
	)
	if err != nil {
		return err
	}
	defer assistant.Close()

	// Pull the archived session back in so the IEP reference resolves.
	if err := assistant.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore archive: %w", err)
	}

	timeframe := core.Timeframe(c.String("timeframe"))
	days := c.StringSlice("day")
	if timeframe == core.TimeframeDaily && len(days) == 0 {
		days = []string{"Daily"}
	}

	plan, err := assistant.GenerateLessonPlan(ctx, &core.LessonPlanParams{
		Subject:        c.String("subject"),
		GradeLevel:     c.String("grade"),
		Timeframe:      timeframe,
		Duration:       c.String("duration"),
		Days:           days,
		Goals:          c.StringSlice("goal"),
		Materials:      c.StringSlice("material"),
		Accommodations: c.StringSlice("accommodation"),
		SourceIEPID:    c.String("iep"),
	})
	if err != nil {
		return err
	}

	if err := assistant.Archive(ctx); err != nil {
		return fmt.Errorf("failed to archive results: %w", err)
	}
	fmt.Fprintf(os.Stderr, "archived lesson plan %s\n", plan.ID)

	fmt.Println(plan.Content)
	return nil
}

func archiveListCommand(c *cli.Context) error {
	ctx := context.Background()

	archive, err := badger.NewArchive(c.String("archive"))
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	docs, err := archive.Documents(ctx)
	if err != nil {
		return err
	}
	artifacts, err := archive.Artifacts(ctx)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		fmt.Printf("document  %s  %s (%d bytes)\n", doc.ID, doc.Metadata.Source, doc.Metadata.Size)
	}
	for _, art := range artifacts {
		switch art.Kind {
		case core.KindIEP:
			fmt.Printf("iep       %s  from %s at %s\n", art.ID, art.SourceName, art.Timestamp.Format(time.RFC3339))
		case core.KindLessonPlan:
			fmt.Printf("plan      %s  integrates %s at %s\n", art.ID, art.SourceIEPID, art.Timestamp.Format(time.RFC3339))
		}
	}
	return nil
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
