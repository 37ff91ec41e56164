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

package tutorit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/tutorit/ai"
	"github.com/poiesic/tutorit/ai/openai"
	"github.com/poiesic/tutorit/artifact"
	"github.com/poiesic/tutorit/chain"
	"github.com/poiesic/tutorit/core"
	"github.com/poiesic/tutorit/index"
	"github.com/poiesic/tutorit/ingestion"
	"github.com/poiesic/tutorit/session"
	"github.com/poiesic/tutorit/storage"
	"github.com/poiesic/tutorit/storage/badger"
)

// Assistant is the top-level entry point. It owns the session store, the
// vector index, and the generation pipelines, and coordinates the
// operations a single tutoring session needs.
type Assistant struct {
	store    *session.Store
	idx      *index.Index
	pipeline *ingestion.Pipeline
	chain    *chain.Chain
	iepGen   *artifact.IEPPipeline
	planGen  *artifact.LessonPlanPipeline
	provider ai.Provider
	archive  storage.Archive
	timeout  time.Duration
	logger   *slog.Logger
}

// AssistantOption configures an Assistant.
type AssistantOption func(*assistantOptions)

type assistantOptions struct {
	aiConfig    *ai.Config
	provider    ai.Provider
	archive     storage.Archive
	archivePath string
	promptMode  artifact.PromptMode
	indexOpts   []index.Option
	chainOpts   []chain.Option
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) AssistantOption {
	return func(o *assistantOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects an AI provider directly, bypassing the OpenAI
// client construction. Used by tests with the mock provider.
func WithProvider(provider ai.Provider) AssistantOption {
	return func(o *assistantOptions) {
		o.provider = provider
	}
}

// WithArchive injects an archive directly. Used by tests with the
// in-memory archive.
func WithArchive(archive storage.Archive) AssistantOption {
	return func(o *assistantOptions) {
		o.archive = archive
	}
}

// WithArchivePath opens a BadgerDB archive at the given path for
// Archive and Restore.
func WithArchivePath(path string) AssistantOption {
	return func(o *assistantOptions) {
		o.archivePath = path
	}
}

// WithPromptMode selects between the dedicated and fallback prompt
// strategies for artifact generation.
func WithPromptMode(mode artifact.PromptMode) AssistantOption {
	return func(o *assistantOptions) {
		o.promptMode = mode
	}
}

// WithIndexOptions forwards options to the vector index.
func WithIndexOptions(opts ...index.Option) AssistantOption {
	return func(o *assistantOptions) {
		o.indexOpts = append(o.indexOpts, opts...)
	}
}

// WithChainOptions forwards options to the retrieval chain.
func WithChainOptions(opts ...chain.Option) AssistantOption {
	return func(o *assistantOptions) {
		o.chainOpts = append(o.chainOpts, opts...)
	}
}

// NewAssistant creates a fully wired Assistant.
func NewAssistant(opts ...AssistantOption) (*Assistant, error) {
	options := &assistantOptions{
		aiConfig:   ai.DefaultConfig(),
		promptMode: artifact.ModeDedicated,
	}
	for _, opt := range opts {
		opt(options)
	}

	if err := options.aiConfig.Validate(); err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	store := session.NewStore()

	idx, err := index.NewIndex(provider.Embedder(), options.indexOpts...)
	if err != nil {
		provider.Close()
		return nil, err
	}

	pipeline, err := ingestion.NewPipeline(store, idx)
	if err != nil {
		provider.Close()
		return nil, err
	}

	ragChain, err := chain.NewChain(idx, provider.Generator(), options.chainOpts...)
	if err != nil {
		pipeline.Release()
		provider.Close()
		return nil, err
	}

	iepGen, err := artifact.NewIEPPipeline(store, provider.Generator(), options.promptMode)
	if err != nil {
		pipeline.Release()
		provider.Close()
		return nil, err
	}

	planGen, err := artifact.NewLessonPlanPipeline(store, provider.Generator(), options.promptMode)
	if err != nil {
		pipeline.Release()
		provider.Close()
		return nil, err
	}

	archive := options.archive
	if archive == nil && options.archivePath != "" {
		archive, err = badger.NewArchive(options.archivePath)
		if err != nil {
			pipeline.Release()
			provider.Close()
			return nil, err
		}
	}

	store.UpdateHealth(session.HealthUpdate{
		GeneratorReady: boolPtr(true),
		ChainReady:     boolPtr(true),
	})

	return &Assistant{
		store:    store,
		idx:      idx,
		pipeline: pipeline,
		chain:    ragChain,
		iepGen:   iepGen,
		planGen:  planGen,
		provider: provider,
		archive:  archive,
		timeout:  options.aiConfig.Timeout,
		logger:   slog.Default().With("component", "assistant"),
	}, nil
}

// Close releases the worker pool, the AI provider, and the archive.
func (a *Assistant) Close() error {
	a.pipeline.Release()

	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}

	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.logger.Error("error closing archive", "err", err)
			return err
		}
	}
	return nil
}

// Store returns the session state store.
func (a *Assistant) Store() *session.Store {
	return a.store
}

// Index returns the vector index.
func (a *Assistant) Index() *index.Index {
	return a.idx
}

// Health reports readiness of the session's subsystems.
func (a *Assistant) Health() session.Health {
	return a.store.Health()
}

// IngestFiles registers and indexes the given uploads. Per-file failures
// are reported in the batch result without aborting the batch.
func (a *Assistant) IngestFiles(ctx context.Context, uploads []ingestion.Upload) (*ingestion.BatchResult, error) {
	return a.pipeline.Ingest(ctx, uploads)
}

// Ask runs a retrieval-augmented query and records the exchange in the
// chat history and query log. A failed or cancelled run records nothing.
func (a *Assistant) Ask(ctx context.Context, query string) (*chain.Result, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := a.chain.Run(ctx, query)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	a.store.AppendMessage(core.ChatMessage{
		Role:      core.RoleUser,
		Content:   query,
		Timestamp: start.UTC(),
	})
	a.store.AppendMessage(core.ChatMessage{
		Role:      core.RoleAssistant,
		Content:   result.Answer,
		Sources:   result.Sources,
		Timestamp: time.Now().UTC(),
	})
	a.store.AppendQueryRecord(&core.QueryRecord{
		Query:     query,
		Sources:   result.Sources,
		Result:    result.Answer,
		Elapsed:   elapsed,
		Timestamp: start.UTC(),
	})

	return result, nil
}

// GenerateIEP generates an IEP artifact from a registered document.
func (a *Assistant) GenerateIEP(ctx context.Context, documentID string) (*core.Artifact, error) {
	doc := a.store.DocumentByID(documentID)
	if doc == nil {
		return nil, fmt.Errorf("%w: document %q not found in registry", core.ErrValidation, documentID)
	}
	return a.iepGen.Generate(ctx, doc)
}

// GenerateLessonPlan generates a lesson plan artifact that integrates a
// previously generated IEP.
func (a *Assistant) GenerateLessonPlan(ctx context.Context, params *core.LessonPlanParams) (*core.Artifact, error) {
	return a.planGen.Generate(ctx, params)
}

// ClearDocuments removes all documents and generated artifacts from the
// session and empties the vector index. Chat history and the query log
// are preserved.
func (a *Assistant) ClearDocuments() {
	a.idx.Clear()
	a.store.ClearDocuments()
}

// Reset returns the session to its initial empty state. The provider
// and chain stay wired, so their readiness flags are re-asserted.
func (a *Assistant) Reset() {
	a.idx.Clear()
	a.store.Reset()
	a.store.UpdateHealth(session.HealthUpdate{
		GeneratorReady: boolPtr(true),
		ChainReady:     boolPtr(true),
	})
}

// RebuildIndex re-embeds every registered document from scratch.
func (a *Assistant) RebuildIndex(ctx context.Context) error {
	return a.pipeline.Rebuild(ctx)
}

// Archive persists the session's documents and artifacts to the
// configured archive.
func (a *Assistant) Archive(ctx context.Context) error {
	if a.archive == nil {
		return ErrArchiveNotConfigured
	}
	if err := a.archive.SaveDocuments(ctx, a.store.Documents()...); err != nil {
		return err
	}
	artifacts := append(a.store.IEPs(), a.store.LessonPlans()...)
	return a.archive.SaveArtifacts(ctx, artifacts...)
}

// Restore replaces the session's documents and artifacts with the
// archive contents and rebuilds the vector index from the restored
// documents. Chat history and the query log are preserved.
func (a *Assistant) Restore(ctx context.Context) error {
	if a.archive == nil {
		return ErrArchiveNotConfigured
	}

	docs, err := a.archive.Documents(ctx)
	if err != nil {
		return err
	}
	artifacts, err := a.archive.Artifacts(ctx)
	if err != nil {
		return err
	}

	a.idx.Clear()
	a.store.ClearDocuments()
	for _, doc := range docs {
		a.store.AppendDocument(doc)
	}
	for _, art := range artifacts {
		if err := a.store.AppendArtifact(art); err != nil {
			return err
		}
	}

	if len(docs) == 0 {
		return nil
	}
	return a.pipeline.Rebuild(ctx)
}

func boolPtr(b bool) *bool {
	return &b
}
