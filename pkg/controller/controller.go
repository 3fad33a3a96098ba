// Package controller coordinates the CoreMem session: it owns the in-memory
// collections and the transient search state, runs the store and search
// flows against the model clients, and mirrors every commit to the record
// store.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/coremem/coremem/pkg/memory"
)

const tracerName = "github.com/coremem/coremem/pkg/controller"

// NoMatchResponse is shown when no stored memory is relevant to a query.
const NoMatchResponse = "I couldn't find any memories related to that query."

// Event types sent to the Notifier.
const (
	EventMemoryStored    = "memory.stored"
	EventMemoryDeleted   = "memory.deleted"
	EventSearchCompleted = "search.completed"
	EventStateReset      = "state.reset"
)

// Operation names used for busy rejections.
const (
	OpStore  = "store"
	OpSearch = "search"
)

var (
	// ErrEmptyInput is returned for blank text or queries, before any model call.
	ErrEmptyInput = errors.New("input is empty")

	// ErrBusy is returned when the same kind of operation is already in flight.
	ErrBusy = errors.New("operation already in progress")

	// ErrMemoryNotFound is returned when deleting an id that is not stored.
	ErrMemoryNotFound = errors.New("memory not found")
)

// Enricher annotates memory text.
type Enricher interface {
	Enrich(ctx context.Context, text string) (memory.Annotations, error)
}

// Ranker finds the memories relevant to a query, most relevant first.
type Ranker interface {
	Search(ctx context.Context, query string, memories []memory.Memory) ([]memory.SearchResult, error)
}

// Synthesizer answers a query from memory texts.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, texts []string) (string, error)
}

// RecordStore persists both collections.
type RecordStore interface {
	LoadMemories(ctx context.Context) ([]memory.Memory, error)
	SaveMemories(ctx context.Context, memories []memory.Memory) error
	LoadInteractions(ctx context.Context) ([]memory.Interaction, error)
	SaveInteractions(ctx context.Context, interactions []memory.Interaction) error
}

// Notifier receives an event after each commit.
type Notifier interface {
	Notify(eventType string, payload any)
}

// Metrics receives collection sizes and busy rejections.
type Metrics interface {
	SetCollectionSizes(memories, interactions int)
	IncBusyRejection(operation string)
}

type controllerLogger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Deps are the collaborators of a Controller. Store, Enricher, Ranker and
// Synthesizer are required; the rest have defaults.
type Deps struct {
	Store       RecordStore
	Enricher    Enricher
	Ranker      Ranker
	Synthesizer Synthesizer
	Notifier    Notifier
	Metrics     Metrics
	Logger      controllerLogger
	Clock       func() time.Time
	NewID       func() string
}

// SearchOutcome is the visible result of the latest search.
type SearchOutcome struct {
	Results  []memory.SearchResult `json:"results"`
	Response *string               `json:"response"`
}

// Snapshot is the complete session state.
type Snapshot struct {
	Memories     []memory.Memory       `json:"memories"`
	Interactions []memory.Interaction  `json:"interactions"`
	Stats        memory.MemoryStats    `json:"stats"`
	Results      []memory.SearchResult `json:"results"`
	Response     *string               `json:"response"`
	Storing      bool                  `json:"isStoring"`
	Searching    bool                  `json:"isSearching"`
}

// Controller is safe for concurrent use. At most one store and one search run
// at a time; duplicates are rejected with ErrBusy.
type Controller struct {
	deps   Deps
	tracer trace.Tracer

	mu           sync.Mutex
	memories     []memory.Memory
	interactions []memory.Interaction
	results      []memory.SearchResult
	response     *string

	storing   atomic.Bool
	searching atomic.Bool
}

// Now is the default clock: UTC with millisecond precision and no monotonic
// reading, so a timestamp is identical before and after a JSON round trip.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// New creates a Controller with empty state. Call Open to load the stored collections.
func New(deps Deps) (*Controller, error) {
	if deps.Store == nil || deps.Enricher == nil || deps.Ranker == nil || deps.Synthesizer == nil {
		return nil, fmt.Errorf("controller: store, enricher, ranker and synthesizer are required")
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = nopLogger{}
	}
	if deps.Clock == nil {
		deps.Clock = Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}

	return &Controller{
		deps:         deps,
		tracer:       otel.Tracer(tracerName),
		memories:     []memory.Memory{},
		interactions: []memory.Interaction{},
		results:      []memory.SearchResult{},
	}, nil
}

// Open loads both collections from the record store, replacing the session state.
func (c *Controller) Open(ctx context.Context) error {
	memories, err := c.deps.Store.LoadMemories(ctx)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	interactions, err := c.deps.Store.LoadInteractions(ctx)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	c.mu.Lock()
	c.memories = memories
	c.interactions = interactions
	c.results = []memory.SearchResult{}
	c.response = nil
	c.updateGaugesLocked()
	c.mu.Unlock()

	c.deps.Logger.Info("Session state loaded", "memories", len(memories), "interactions", len(interactions))
	return nil
}

// Store enriches text and records it as the newest memory. Blank text is
// rejected; otherwise text is kept as entered. Nothing is committed unless
// both enrichment and the save succeed.
func (c *Controller) Store(ctx context.Context, text string) (memory.Memory, error) {
	if strings.TrimSpace(text) == "" {
		return memory.Memory{}, ErrEmptyInput
	}
	if !c.storing.CompareAndSwap(false, true) {
		c.deps.Metrics.IncBusyRejection(OpStore)
		return memory.Memory{}, ErrBusy
	}
	defer c.storing.Store(false)

	ctx, span := c.tracer.Start(ctx, "controller.store",
		trace.WithAttributes(attribute.Int("memory.text_length", len(text))))
	defer span.End()

	ann, err := c.deps.Enricher.Enrich(ctx, text)
	if err != nil {
		c.fail(span, "Enrichment failed", err)
		return memory.Memory{}, fmt.Errorf("enrich memory: %w", err)
	}

	m := memory.NewMemory(c.deps.NewID(), text, ann, c.deps.Clock())

	c.mu.Lock()
	updated := make([]memory.Memory, 0, len(c.memories)+1)
	updated = append(updated, m)
	updated = append(updated, c.memories...)
	if err := c.deps.Store.SaveMemories(ctx, updated); err != nil {
		c.mu.Unlock()
		c.fail(span, "Saving memories failed", err)
		return memory.Memory{}, err
	}
	c.memories = updated
	c.updateGaugesLocked()
	c.mu.Unlock()

	span.SetAttributes(attribute.String("memory.id", m.ID))
	c.deps.Logger.Info("Memory stored", "id", m.ID, "sentiment", string(m.Sentiment))
	c.deps.Notifier.Notify(EventMemoryStored, memory.CloneMemory(m))
	return memory.CloneMemory(m), nil
}

// Search ranks the stored memories against query and synthesizes an answer
// from the relevant ones. The previous results are cleared when the search
// starts; on any error they stay empty and the response stays unset. An
// interaction is logged only when at least one memory was relevant.
func (c *Controller) Search(ctx context.Context, query string) (SearchOutcome, error) {
	if strings.TrimSpace(query) == "" {
		return SearchOutcome{}, ErrEmptyInput
	}
	if !c.searching.CompareAndSwap(false, true) {
		c.deps.Metrics.IncBusyRejection(OpSearch)
		return SearchOutcome{}, ErrBusy
	}
	defer c.searching.Store(false)

	ctx, span := c.tracer.Start(ctx, "controller.search")
	defer span.End()

	c.mu.Lock()
	c.results = []memory.SearchResult{}
	c.response = nil
	snapshot := memory.CloneMemories(c.memories)
	c.mu.Unlock()

	span.SetAttributes(attribute.Int("memory.count", len(snapshot)))

	results, err := c.deps.Ranker.Search(ctx, query, snapshot)
	if err != nil {
		c.fail(span, "Relevance query failed", err)
		return SearchOutcome{}, fmt.Errorf("query memories: %w", err)
	}
	span.SetAttributes(attribute.Int("search.results", len(results)))

	if len(results) == 0 {
		response := NoMatchResponse
		c.mu.Lock()
		c.response = &response
		c.mu.Unlock()

		outcome := SearchOutcome{Results: []memory.SearchResult{}, Response: &response}
		c.deps.Notifier.Notify(EventSearchCompleted, outcome)
		return outcome, nil
	}

	answer, err := c.deps.Synthesizer.Synthesize(ctx, query, memory.Texts(results))
	if err != nil {
		c.fail(span, "Response synthesis failed", err)
		return SearchOutcome{}, fmt.Errorf("synthesize response: %w", err)
	}

	interaction := memory.Interaction{
		ID:        c.deps.NewID(),
		Query:     query,
		Response:  answer,
		Timestamp: c.deps.Clock(),
	}

	c.mu.Lock()
	updated := make([]memory.Interaction, 0, len(c.interactions)+1)
	updated = append(updated, interaction)
	updated = append(updated, c.interactions...)
	if err := c.deps.Store.SaveInteractions(ctx, updated); err != nil {
		c.mu.Unlock()
		c.fail(span, "Saving interactions failed", err)
		return SearchOutcome{}, err
	}
	c.interactions = updated
	// Memories deleted while the model calls were in flight are not shown.
	c.results = c.presentLocked(results)
	c.response = &answer
	c.updateGaugesLocked()
	outcome := SearchOutcome{Results: memory.CloneResults(c.results), Response: &answer}
	c.mu.Unlock()

	c.deps.Logger.Info("Search completed", "results", len(outcome.Results), "interaction_id", interaction.ID)
	c.deps.Notifier.Notify(EventSearchCompleted, outcome)
	return outcome, nil
}

// Delete removes the memory with id from the collection and from the
// current search results in one update.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	updated, ok := memory.RemoveMemory(c.memories, id)
	if !ok {
		c.mu.Unlock()
		return ErrMemoryNotFound
	}
	if err := c.deps.Store.SaveMemories(ctx, updated); err != nil {
		c.mu.Unlock()
		c.deps.Logger.Error("Saving memories failed", "id", id, "error", err)
		return err
	}
	c.memories = updated
	c.results = memory.RemoveResult(c.results, id)
	c.updateGaugesLocked()
	c.mu.Unlock()

	c.deps.Logger.Info("Memory deleted", "id", id)
	c.deps.Notifier.Notify(EventMemoryDeleted, map[string]string{"id": id})
	return nil
}

// Reset empties both stored collections and clears the search state. The
// session is cleared only after both saves succeed.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.deps.Store.SaveMemories(ctx, []memory.Memory{}); err != nil {
		c.deps.Logger.Error("Saving memories failed", "error", err)
		return err
	}
	if err := c.deps.Store.SaveInteractions(ctx, []memory.Interaction{}); err != nil {
		c.deps.Logger.Error("Saving interactions failed", "error", err)
		if rerr := c.deps.Store.SaveMemories(ctx, c.memories); rerr != nil {
			c.deps.Logger.Error("Restoring memories failed", "error", rerr)
		}
		return err
	}

	c.memories = []memory.Memory{}
	c.interactions = []memory.Interaction{}
	c.results = []memory.SearchResult{}
	c.response = nil
	c.updateGaugesLocked()

	c.deps.Logger.Info("Session state reset")
	c.deps.Notifier.Notify(EventStateReset, nil)
	return nil
}

// Memories returns up to limit memories, newest first. A limit of zero or
// less returns all of them.
func (c *Controller) Memories(limit int) []memory.Memory {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.memories
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return memory.CloneMemories(list)
}

// Interactions returns the interaction log, newest first.
func (c *Controller) Interactions() []memory.Interaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return memory.CloneInteractions(c.interactions)
}

// Stats recomputes the statistics of the current collection.
func (c *Controller) Stats() memory.MemoryStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return memory.ComputeStats(c.memories)
}

// Results returns the outcome of the latest search.
func (c *Controller) Results() SearchOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SearchOutcome{Results: memory.CloneResults(c.results), Response: cloneString(c.response)}
}

// Snapshot returns the complete session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Memories:     memory.CloneMemories(c.memories),
		Interactions: memory.CloneInteractions(c.interactions),
		Stats:        memory.ComputeStats(c.memories),
		Results:      memory.CloneResults(c.results),
		Response:     cloneString(c.response),
		Storing:      c.storing.Load(),
		Searching:    c.searching.Load(),
	}
}

// Storing reports whether a store is in flight.
func (c *Controller) Storing() bool { return c.storing.Load() }

// Searching reports whether a search is in flight.
func (c *Controller) Searching() bool { return c.searching.Load() }

func (c *Controller) presentLocked(results []memory.SearchResult) []memory.SearchResult {
	present := make(map[string]bool, len(c.memories))
	for _, m := range c.memories {
		present[m.ID] = true
	}
	out := make([]memory.SearchResult, 0, len(results))
	for _, r := range results {
		if present[r.Memory.ID] {
			out = append(out, r)
		}
	}
	return out
}

func (c *Controller) updateGaugesLocked() {
	c.deps.Metrics.SetCollectionSizes(len(c.memories), len(c.interactions))
}

func (c *Controller) fail(span trace.Span, msg string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.deps.Logger.Error(msg, "error", err)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, any) {}

type nopMetrics struct{}

func (nopMetrics) SetCollectionSizes(int, int) {}
func (nopMetrics) IncBusyRejection(string)     {}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
