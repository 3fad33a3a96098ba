// Package record persists the two CoreMem collections, memories and
// interactions, as JSON arrays under fixed keys of a storage.KV.
package record

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coremem/coremem/pkg/memory"
	"github.com/coremem/coremem/pkg/storage"
)

// Kind names one of the persisted collections.
type Kind string

const (
	Memories     Kind = "memories"
	Interactions Kind = "interactions"
)

// Key returns the storage key for the kind.
func (k Kind) Key() string {
	return "coremem_" + string(k)
}

type storeLogger interface {
	Warn(msg string, args ...any)
}

// Store reads and writes whole collections. Every save replaces the prior
// collection with a single KV write.
type Store struct {
	kv        storage.KV
	namespace string
	logger    storeLogger
}

// Option configures a Store.
type Option func(*Store)

// WithNamespace prefixes every key with ns followed by a colon.
func WithNamespace(ns string) Option {
	return func(s *Store) {
		s.namespace = ns
	}
}

// NewStore creates a record store on top of kv.
func NewStore(kv storage.KV, log storeLogger, opts ...Option) *Store {
	s := &Store{kv: kv, logger: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(kind Kind) string {
	if s.namespace == "" {
		return kind.Key()
	}
	return s.namespace + ":" + kind.Key()
}

// Load decodes the collection stored for kind. A missing key or a value that
// does not parse yields an empty slice; only backend failures are returned.
func Load[T any](ctx context.Context, s *Store, kind Kind) ([]T, error) {
	data, err := s.kv.Get(ctx, s.key(kind))
	if err != nil {
		if storage.IsNotFound(err) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	if len(data) == 0 {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		if s.logger != nil {
			s.logger.Warn("Discarding unreadable collection",
				"kind", string(kind),
				"error", &storage.SerializationError{Operation: "unmarshal", Cause: err},
			)
		}
		return []T{}, nil
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Save serializes records and overwrites the stored collection for kind.
func (s *Store) Save(ctx context.Context, kind Kind, records any) error {
	data, err := json.Marshal(records)
	if err != nil {
		return &storage.SerializationError{Operation: "marshal", Cause: err}
	}
	if string(data) == "null" {
		data = []byte("[]")
	}
	if err := s.kv.Set(ctx, s.key(kind), data); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}
	return nil
}

// LoadMemories returns the stored memories, newest first.
func (s *Store) LoadMemories(ctx context.Context) ([]memory.Memory, error) {
	return Load[memory.Memory](ctx, s, Memories)
}

// SaveMemories replaces the stored memory collection.
func (s *Store) SaveMemories(ctx context.Context, memories []memory.Memory) error {
	return s.Save(ctx, Memories, memories)
}

// LoadInteractions returns the stored interaction log, newest first.
func (s *Store) LoadInteractions(ctx context.Context) ([]memory.Interaction, error) {
	return Load[memory.Interaction](ctx, s, Interactions)
}

// SaveInteractions replaces the stored interaction log.
func (s *Store) SaveInteractions(ctx context.Context, interactions []memory.Interaction) error {
	return s.Save(ctx, Interactions, interactions)
}
