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

package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/tutorit/core"
	"github.com/poiesic/tutorit/index"
	"github.com/poiesic/tutorit/session"
)

// Upload is one raw file submitted for ingestion.
type Upload struct {
	Name string
	Data []byte
}

// ItemResult reports the outcome for a single file in a batch.
type ItemResult struct {
	Name       string
	DocumentID string // set on success
	Err        error  // set on failure
}

// BatchResult reports per-item outcomes for one ingestion batch.
// Batch success is partial: failed items never abort their siblings.
type BatchResult struct {
	Items     []ItemResult
	Succeeded int
	Failed    int
}

// Pipeline turns raw uploads into registered documents and index entries.
//
// File extraction fans out over a worker pool; registration and index
// commits stay sequential in input order, so index-add ordering is
// deterministic and each document's add commits or rolls back as a unit.
type Pipeline struct {
	store  *session.Store
	idx    *index.Index
	loader Loader
	pool   *ants.Pool
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLoader sets a custom document loader.
// Default is the PlainTextLoader.
func WithLoader(loader Loader) Option {
	return func(p *Pipeline) error {
		if loader == nil {
			return ErrLoaderRequired
		}
		p.loader = loader
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent file extraction.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(store *session.Store, idx *index.Index, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:  store,
		idx:    idx,
		loader: NewPlainTextLoader(),
		pool:   pool,
		logger: slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// extracted is the outcome of the concurrent extraction phase for one upload.
type extracted struct {
	content string
	err     error
}

// Ingest processes a batch of uploads. Each item is persisted to scoped
// temporary storage, extracted, and on success registered as a document
// and added to the vector index. A per-item failure marks that item
// failed and the batch continues.
//
// A document whose index insertion fails is rolled back out of the
// registry, so the registry and the index never disagree about which
// documents are searchable.
func (p *Pipeline) Ingest(ctx context.Context, uploads []Upload) (*BatchResult, error) {
	result := &BatchResult{Items: make([]ItemResult, len(uploads))}
	if len(uploads) == 0 {
		return result, nil
	}

	handler, err := NewFileHandler()
	if err != nil {
		return nil, err
	}
	// Temporary storage is released on every exit path.
	defer handler.Cleanup()

	// Phase 1: persist and extract concurrently. Results land in input
	// order so error attribution stays per-file.
	outcomes := make([]extracted, len(uploads))
	var wg sync.WaitGroup
	for i, upload := range uploads {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			outcomes[i] = p.extractOne(handler, upload)
		}
		if submitErr := p.pool.Submit(task); submitErr != nil {
			// Pool saturated or released; extract inline.
			task()
		}
	}
	wg.Wait()

	// Phase 2: register and index sequentially in input order.
	for i, upload := range uploads {
		result.Items[i].Name = upload.Name

		if outcomes[i].err != nil {
			result.Items[i].Err = outcomes[i].err
			result.Failed++
			p.logger.Warn("file failed ingestion", "file", upload.Name, "err", outcomes[i].err)
			continue
		}

		docType, _ := DocumentTypeForName(upload.Name)
		doc := &core.Document{
			ID:      core.NewID(),
			Content: outcomes[i].content,
			Metadata: core.DocumentMetadata{
				Source:       upload.Name,
				DocumentType: docType,
				UploadTime:   time.Now().UTC(),
				Size:         len(outcomes[i].content),
				Extra:        map[string]string{},
			},
		}

		p.store.AppendDocument(doc)

		if addErr := p.idx.Add(ctx, doc); addErr != nil {
			// Rollback: an unsearchable document must not stay registered.
			p.store.RemoveDocument(doc.ID)
			result.Items[i].Err = fmt.Errorf("%w: indexing %q: %v", core.ErrIngestion, upload.Name, addErr)
			result.Failed++
			p.logger.Error("index add failed, document rolled back", "file", upload.Name, "err", addErr)
			continue
		}

		result.Items[i].DocumentID = doc.ID
		result.Succeeded++
		p.logger.Info("ingested document", "file", upload.Name, "id", doc.ID, "chunks", p.idx.ChunkCount(doc.ID))
	}

	if result.Succeeded > 0 {
		ready := true
		p.store.UpdateHealth(session.HealthUpdate{IndexReady: &ready})
	}

	return result, nil
}

func (p *Pipeline) extractOne(handler *FileHandler, upload Upload) extracted {
	path, err := handler.ProcessUploadedFile(upload.Name, upload.Data)
	if err != nil {
		return extracted{err: err}
	}

	content, err := p.loader.LoadDocument(path)
	if err != nil {
		return extracted{err: err}
	}
	return extracted{content: content}
}

// Rebuild clears the index and re-adds every registered document, e.g.
// after an embedding model change. Embedding calls are retried with
// exponential backoff before the rebuild is declared failed.
func (p *Pipeline) Rebuild(ctx context.Context) error {
	docs := p.store.Documents()

	p.idx.Clear()
	notReady := false
	p.store.UpdateHealth(session.HealthUpdate{IndexReady: &notReady})

	if len(docs) == 0 {
		return nil
	}

	err := RetryWithBackoff(ctx, func() error {
		p.idx.Clear()
		return p.idx.Add(ctx, docs...)
	}, 3, time.Second)
	if err != nil {
		p.logger.Error("index rebuild failed", "documents", len(docs), "err", err)
		return err
	}

	ready := true
	p.store.UpdateHealth(session.HealthUpdate{IndexReady: &ready})
	p.logger.Info("index rebuilt", "documents", len(docs), "chunks", p.idx.Len())
	return nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
