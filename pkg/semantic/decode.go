package semantic

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/coremem/coremem/pkg/memory"
)

// ErrMalformedReply marks a model reply that does not have the requested shape.
var ErrMalformedReply = errors.New("malformed model reply")

// DecodeError reports a reply that could not be decoded for an operation.
type DecodeError struct {
	Operation string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s reply: %v", e.Operation, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func malformed(op, format string, args ...any) error {
	return &DecodeError{
		Operation: op,
		Err:       fmt.Errorf("%w: %s", ErrMalformedReply, fmt.Sprintf(format, args...)),
	}
}

// decodeAnnotations turns an enrichment reply into Annotations. The reply must
// be a JSON object; each field that is missing or has the wrong type falls
// back to its default independently.
func decodeAnnotations(reply, text string) (memory.Annotations, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &fields); err != nil {
		return memory.Annotations{}, malformed("enrich", "%v", err)
	}
	if fields == nil {
		return memory.Annotations{}, malformed("enrich", "reply is not an object")
	}

	ann := memory.Annotations{
		Entities:      stringList(fields["entities"]),
		Actions:       stringList(fields["actions"]),
		NamedEntities: namedEntities(fields["namedEntities"]),
		Sentiment:     memory.Neutral,
	}

	var sentiment string
	if json.Unmarshal(fields["sentiment"], &sentiment) == nil {
		if s, ok := memory.ParseSentiment(sentiment); ok {
			ann.Sentiment = s
		}
	}

	var score float64
	if json.Unmarshal(fields["sentimentScore"], &score) == nil {
		ann.SentimentScore = score
	}

	var summary string
	_ = json.Unmarshal(fields["summary"], &summary)
	if strings.TrimSpace(summary) == "" {
		summary = prefix(text, summaryFallbackRunes)
	}
	ann.Summary = summary

	return ann, nil
}

func stringList(raw json.RawMessage) []string {
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func namedEntities(raw json.RawMessage) []memory.NamedEntity {
	var out []memory.NamedEntity
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []memory.NamedEntity{}
	}
	return out
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// decodeJudgments requires the reply to be an array of judgments. Any other
// shape aborts the search.
func decodeJudgments(reply string) ([]memory.Judgment, error) {
	trimmed := strings.TrimSpace(reply)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, malformed("rank", "reply is not an array")
	}

	var judgments []memory.Judgment
	if err := json.Unmarshal([]byte(trimmed), &judgments); err != nil {
		return nil, malformed("rank", "%v", err)
	}
	if judgments == nil {
		judgments = []memory.Judgment{}
	}
	return judgments, nil
}
