package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/tutorit/core"
	"github.com/poiesic/tutorit/storage"
)

// Archive implements storage.Archive for BadgerDB.
type Archive struct {
	backend *Backend
}

var _ storage.Archive = (*Archive)(nil)

// NewArchive opens an archive backed by a BadgerDB database at path.
// Creates the directory if it doesn't exist.
func NewArchive(path string) (storage.Archive, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &Archive{backend: backend}, nil
}

// SaveDocuments writes documents to the archive, overwriting entries
// with the same id.
func (a *Archive) SaveDocuments(ctx context.Context, docs ...*core.Document) error {
	if a.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return a.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			key := makeDocumentKey(doc.ID)
			if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// SaveArtifacts writes artifacts to the archive, overwriting entries
// with the same id.
func (a *Archive) SaveArtifacts(ctx context.Context, artifacts ...*core.Artifact) error {
	if a.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return a.backend.WithTx(func(tx *badger.Txn) error {
		for _, artifact := range artifacts {
			key := makeArtifactKey(artifact.ID)
			if err := tx.Set(key, storage.MarshalArtifact(artifact)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Documents returns every archived document.
func (a *Archive) Documents(ctx context.Context) ([]*core.Document, error) {
	if a.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var docs []*core.Document
	err := a.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var doc *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		return nil
	}, false)
	return docs, err
}

// Artifacts returns every archived artifact.
func (a *Archive) Artifacts(ctx context.Context) ([]*core.Artifact, error) {
	if a.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var artifacts []*core.Artifact
	err := a.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(artifactPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var artifact *core.Artifact
			err := iter.Item().Value(func(val []byte) error {
				var err error
				artifact, err = storage.UnmarshalArtifact(val)
				return err
			})
			if err != nil {
				return err
			}
			artifacts = append(artifacts, artifact)
		}
		return nil
	}, false)
	return artifacts, err
}

// Clear removes everything from the archive.
func (a *Archive) Clear(ctx context.Context) error {
	if a.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return a.backend.WithTx(func(tx *badger.Txn) error {
		for _, prefix := range []string{documentPrefix, artifactPrefix} {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(prefix + ":")
			opts.PrefetchValues = false
			iter := tx.NewIterator(opts)

			var keys [][]byte
			for iter.Rewind(); iter.Valid(); iter.Next() {
				keys = append(keys, iter.Item().KeyCopy(nil))
			}
			iter.Close()

			for _, key := range keys {
				if err := tx.Delete(key); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
}

// Close closes the storage backend.
func (a *Archive) Close() error {
	return a.backend.Close()
}
