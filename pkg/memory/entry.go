// Package memory defines the CoreMem record types and the pure routines that
// run over them: statistics aggregation and relevance reconciliation.
package memory

import (
	"encoding/json"
	"strings"
	"time"
)

// TimestampLayout is the stored timestamp form: UTC with exactly three
// fractional digits, as written by a browser's Date.toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Sentiment is the three-valued sentiment classification of a memory.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// Valid reports whether s is one of the three known classes.
func (s Sentiment) Valid() bool {
	switch s {
	case Positive, Negative, Neutral:
		return true
	default:
		return false
	}
}

// ParseSentiment normalizes s and reports whether it names a known class.
func ParseSentiment(s string) (Sentiment, bool) {
	v := Sentiment(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return Neutral, false
	}
	return v, true
}

// NamedEntity is a proper name extracted from a memory with its category.
type NamedEntity struct {
	// Name is the entity as written in the text.
	Name string `json:"name"`

	// Type is a free-form label such as Person, Location or Organization.
	Type string `json:"type"`
}

// Annotations are the semantic fields derived from a memory's text.
type Annotations struct {
	Entities       []string      `json:"entities"`
	Actions        []string      `json:"actions"`
	NamedEntities  []NamedEntity `json:"namedEntities"`
	Sentiment      Sentiment     `json:"sentiment"`
	SentimentScore float64       `json:"sentimentScore"`
	Summary        string        `json:"summary"`
}

// Memory is a single stored note together with its annotations.
type Memory struct {
	// ID is an opaque identifier, unique within the collection.
	ID string `json:"id"`

	// Text is the note body as entered by the user.
	Text string `json:"text"`

	// Entities are nouns and key subjects mentioned in the text.
	Entities []string `json:"entities"`

	// Actions are verbs or actions mentioned in the text.
	Actions []string `json:"actions"`

	// NamedEntities are people, places and organizations.
	NamedEntities []NamedEntity `json:"namedEntities"`

	// Sentiment is the overall sentiment class.
	Sentiment Sentiment `json:"sentiment"`

	// SentimentScore runs from -1 (very negative) to 1 (very positive).
	SentimentScore float64 `json:"sentimentScore"`

	// Summary is a one-sentence summary of the text.
	Summary string `json:"summary"`

	// Timestamp is the creation time. It never changes.
	Timestamp time.Time `json:"timestamp"`
}

// NewMemory assembles a Memory from its text and annotations.
func NewMemory(id, text string, ann Annotations, createdAt time.Time) Memory {
	return Memory{
		ID:             id,
		Text:           text,
		Entities:       ann.Entities,
		Actions:        ann.Actions,
		NamedEntities:  ann.NamedEntities,
		Sentiment:      ann.Sentiment,
		SentimentScore: ann.SentimentScore,
		Summary:        ann.Summary,
		Timestamp:      createdAt,
	}
}

// MarshalJSON writes the timestamp in TimestampLayout.
func (m Memory) MarshalJSON() ([]byte, error) {
	type plain Memory
	return json.Marshal(struct {
		plain
		Timestamp string `json:"timestamp"`
	}{plain(m), FormatTimestamp(m.Timestamp)})
}

// Interaction is a logged search query and the answer synthesized for it.
type Interaction struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// MarshalJSON writes the timestamp in TimestampLayout.
func (i Interaction) MarshalJSON() ([]byte, error) {
	type plain Interaction
	return json.Marshal(struct {
		plain
		Timestamp string `json:"timestamp"`
	}{plain(i), FormatTimestamp(i.Timestamp)})
}

// Judgment is an external relevance determination for one memory id.
type Judgment struct {
	// ID references a memory in the local collection.
	ID string `json:"id"`

	// Reason explains why the memory is relevant.
	Reason string `json:"reason"`

	// Score is intended to fall in [0, 1] but is not enforced.
	Score float64 `json:"score"`
}

// SearchResult joins a memory with the judgment that selected it.
type SearchResult struct {
	Memory          Memory  `json:"memory"`
	RelevanceReason string  `json:"relevanceReason"`
	RelevanceScore  float64 `json:"relevanceScore"`
}

// MemoryStats is a derived summary of a memory collection. It is never persisted.
type MemoryStats struct {
	TotalMemories int      `json:"totalMemories"`
	PositiveCount int      `json:"positiveCount"`
	NegativeCount int      `json:"negativeCount"`
	NeutralCount  int      `json:"neutralCount"`
	TopEntities   []string `json:"topEntities"`
}
