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

package storage

import (
	"fmt"
	"sort"
	"time"

	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/tutorit/core"
)

// The archive encoding is MUS varints throughout: strings are a varint
// length prefix followed by raw bytes, slices and maps are a varint count
// followed by their elements, and timestamps are Unix microseconds. Map
// keys are written in sorted order so encoding is deterministic.

func sizeString(s string) int {
	return varint.Uint64.Size(uint64(len(s))) + len(s)
}

func marshalString(s string, bs []byte) int {
	n := varint.Uint64.Marshal(uint64(len(s)), bs)
	return n + copy(bs[n:], s)
}

func unmarshalString(bs []byte) (string, int, error) {
	l, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return "", n, err
	}
	if uint64(len(bs)-n) < l {
		return "", n, ErrTruncatedData
	}
	return string(bs[n : n+int(l)]), n + int(l), nil
}

func sizeStringSlice(ss []string) int {
	size := varint.Uint64.Size(uint64(len(ss)))
	for _, s := range ss {
		size += sizeString(s)
	}
	return size
}

func marshalStringSlice(ss []string, bs []byte) int {
	n := varint.Uint64.Marshal(uint64(len(ss)), bs)
	for _, s := range ss {
		n += marshalString(s, bs[n:])
	}
	return n
}

func unmarshalStringSlice(bs []byte) ([]string, int, error) {
	count, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if count == 0 {
		return nil, n, nil
	}
	ss := make([]string, 0, count)
	for i := uint64(0); i < count; i++ {
		s, sn, err := unmarshalString(bs[n:])
		n += sn
		if err != nil {
			return nil, n, err
		}
		ss = append(ss, s)
	}
	return ss, n, nil
}

func sizeStringMap(m map[string]string) int {
	size := varint.Uint64.Size(uint64(len(m)))
	for k, v := range m {
		size += sizeString(k) + sizeString(v)
	}
	return size
}

func marshalStringMap(m map[string]string, bs []byte) int {
	n := varint.Uint64.Marshal(uint64(len(m)), bs)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n += marshalString(k, bs[n:])
		n += marshalString(m[k], bs[n:])
	}
	return n
}

func unmarshalStringMap(bs []byte) (map[string]string, int, error) {
	count, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if count == 0 {
		return nil, n, nil
	}
	m := make(map[string]string, count)
	for i := uint64(0); i < count; i++ {
		k, kn, err := unmarshalString(bs[n:])
		n += kn
		if err != nil {
			return nil, n, err
		}
		v, vn, err := unmarshalString(bs[n:])
		n += vn
		if err != nil {
			return nil, n, err
		}
		m[k] = v
	}
	return m, n, nil
}

func sizeTime(t time.Time) int {
	return varint.Uint64.Size(uint64(t.UnixMicro()))
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Uint64.Marshal(uint64(t.UnixMicro()), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	us, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(int64(us)).UTC(), n, nil
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	size := sizeString(doc.ID) +
		sizeString(doc.Content) +
		sizeString(doc.Metadata.Source) +
		sizeString(doc.Metadata.DocumentType) +
		sizeTime(doc.Metadata.UploadTime) +
		varint.Uint64.Size(uint64(doc.Metadata.Size)) +
		sizeStringMap(doc.Metadata.Extra)

	bs := make([]byte, size)
	n := marshalString(doc.ID, bs)
	n += marshalString(doc.Content, bs[n:])
	n += marshalString(doc.Metadata.Source, bs[n:])
	n += marshalString(doc.Metadata.DocumentType, bs[n:])
	n += marshalTime(doc.Metadata.UploadTime, bs[n:])
	n += varint.Uint64.Marshal(uint64(doc.Metadata.Size), bs[n:])
	marshalStringMap(doc.Metadata.Extra, bs[n:])
	return bs
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(bs []byte) (*core.Document, error) {
	doc := &core.Document{}
	var (
		n, fn int
		err   error
	)
	if doc.ID, fn, err = unmarshalString(bs); err != nil {
		return nil, fmt.Errorf("%w: document id: %w", ErrSerializationFailed, err)
	}
	n += fn
	if doc.Content, fn, err = unmarshalString(bs[n:]); err != nil {
		return nil, fmt.Errorf("%w: document content: %w", ErrSerializationFailed, err)
	}
	n += fn
	if doc.Metadata.Source, fn, err = unmarshalString(bs[n:]); err != nil {
		return nil, fmt.Errorf("%w: document source: %w", ErrSerializationFailed, err)
	}
	n += fn
	if doc.Metadata.DocumentType, fn, err = unmarshalString(bs[n:]); err != nil {
		return nil, fmt.Errorf("%w: document type: %w", ErrSerializationFailed, err)
	}
	n += fn
	if doc.Metadata.UploadTime, fn, err = unmarshalTime(bs[n:]); err != nil {
		return nil, fmt.Errorf("%w: document upload time: %w", ErrSerializationFailed, err)
	}
	n += fn
	size, fn, err := varint.Uint64.Unmarshal(bs[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: document size: %w", ErrSerializationFailed, err)
	}
	doc.Metadata.Size = int(size)
	n += fn
	if doc.Metadata.Extra, _, err = unmarshalStringMap(bs[n:]); err != nil {
		return nil, fmt.Errorf("%w: document extra: %w", ErrSerializationFailed, err)
	}
	return doc, nil
}

// MarshalArtifact serializes an Artifact to bytes.
func MarshalArtifact(artifact *core.Artifact) []byte {
	size := sizeString(artifact.ID) +
		varint.Uint64.Size(uint64(artifact.Kind)) +
		sizeString(artifact.Content) +
		sizeTime(artifact.Timestamp) +
		sizeString(artifact.SourceDocumentID) +
		sizeString(artifact.SourceName) +
		sizeString(artifact.SourceIEPID) +
		sizeLessonPlanParams(artifact.Params)

	bs := make([]byte, size)
	n := marshalString(artifact.ID, bs)
	n += varint.Uint64.Marshal(uint64(artifact.Kind), bs[n:])
	n += marshalString(artifact.Content, bs[n:])
	n += marshalTime(artifact.Timestamp, bs[n:])
	n += marshalString(artifact.SourceDocumentID, bs[n:])
	n += marshalString(artifact.SourceName, bs[n:])
	n += marshalString(artifact.SourceIEPID, bs[n:])
	marshalLessonPlanParams(artifact.Params, bs[n:])
	return bs
}

// UnmarshalArtifact deserializes an Artifact from bytes.
func UnmarshalArtifact(bs []byte) (*core.Artifact, error) {
	artifact := &core.Artifact{}
	var (
		n, fn int
		err   error
	)
	if artifact.ID, fn, err = unmarshalString(bs); err != nil {
		return nil, fmt.Errorf("%w: artifact id: %w", ErrSerializationFailed, err)
	}
	n += fn
	kind, fn, err := varint.Uint64.Unmarshal(bs[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: artifact kind: %w", ErrSerializationFailed, err)
	}
	artifact.Kind = core.ArtifactKind(kind)
	n += fn
	if artifact.Content, fn, err = unmarshalString(bs[n:]); err != nil {
		return nil, fmt.Errorf("%w: artifact content: %w", ErrSerializationFailed, err)
	}
	n += fn
	if artifact.Timestamp, fn, err = unmarshalTime(bs[n:]); err != nil {
		return nil, fmt.Errorf("%w: artifact timestamp: %w", ErrSerializationFailed, err)
	}
	n += fn
	if artifact.SourceDocumentID, fn, err = unmarshalString(bs[n:]); err != nil {
		return nil, fmt.Errorf("%w: artifact source document: %w", ErrSerializationFailed, err)
	}
	n += fn
	if artifact.SourceName, fn, err = unmarshalString(bs[n:]); err != nil {
		return nil, fmt.Errorf("%w: artifact source name: %w", ErrSerializationFailed, err)
	}
	n += fn
	if artifact.SourceIEPID, fn, err = unmarshalString(bs[n:]); err != nil {
		return nil, fmt.Errorf("%w: artifact source iep: %w", ErrSerializationFailed, err)
	}
	n += fn
	if artifact.Params, _, err = unmarshalLessonPlanParams(bs[n:]); err != nil {
		return nil, fmt.Errorf("%w: artifact params: %w", ErrSerializationFailed, err)
	}
	return artifact, nil
}

func sizeLessonPlanParams(p *core.LessonPlanParams) int {
	size := varint.Uint64.Size(0) // presence flag
	if p == nil {
		return size
	}
	return size +
		sizeString(p.Subject) +
		sizeString(p.GradeLevel) +
		sizeString(string(p.Timeframe)) +
		sizeString(p.Duration) +
		sizeStringSlice(p.Days) +
		sizeStringSlice(p.Goals) +
		sizeStringSlice(p.Materials) +
		sizeStringSlice(p.Accommodations) +
		sizeString(p.SourceIEPID)
}

func marshalLessonPlanParams(p *core.LessonPlanParams, bs []byte) int {
	if p == nil {
		return varint.Uint64.Marshal(0, bs)
	}
	n := varint.Uint64.Marshal(1, bs)
	n += marshalString(p.Subject, bs[n:])
	n += marshalString(p.GradeLevel, bs[n:])
	n += marshalString(string(p.Timeframe), bs[n:])
	n += marshalString(p.Duration, bs[n:])
	n += marshalStringSlice(p.Days, bs[n:])
	n += marshalStringSlice(p.Goals, bs[n:])
	n += marshalStringSlice(p.Materials, bs[n:])
	n += marshalStringSlice(p.Accommodations, bs[n:])
	n += marshalString(p.SourceIEPID, bs[n:])
	return n
}

func unmarshalLessonPlanParams(bs []byte) (*core.LessonPlanParams, int, error) {
	present, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if present == 0 {
		return nil, n, nil
	}
	p := &core.LessonPlanParams{}
	var fn int
	if p.Subject, fn, err = unmarshalString(bs[n:]); err != nil {
		return nil, n, err
	}
	n += fn
	if p.GradeLevel, fn, err = unmarshalString(bs[n:]); err != nil {
		return nil, n, err
	}
	n += fn
	var timeframe string
	if timeframe, fn, err = unmarshalString(bs[n:]); err != nil {
		return nil, n, err
	}
	p.Timeframe = core.Timeframe(timeframe)
	n += fn
	if p.Duration, fn, err = unmarshalString(bs[n:]); err != nil {
		return nil, n, err
	}
	n += fn
	if p.Days, fn, err = unmarshalStringSlice(bs[n:]); err != nil {
		return nil, n, err
	}
	n += fn
	if p.Goals, fn, err = unmarshalStringSlice(bs[n:]); err != nil {
		return nil, n, err
	}
	n += fn
	if p.Materials, fn, err = unmarshalStringSlice(bs[n:]); err != nil {
		return nil, n, err
	}
	n += fn
	if p.Accommodations, fn, err = unmarshalStringSlice(bs[n:]); err != nil {
		return nil, n, err
	}
	n += fn
	if p.SourceIEPID, fn, err = unmarshalString(bs[n:]); err != nil {
		return nil, n, err
	}
	n += fn
	return p, n, nil
}
