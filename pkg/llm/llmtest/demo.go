package llmtest

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"unicode"

	"github.com/coremem/coremem/pkg/llm"
)

// NewDemo returns a Fake that answers every operation with deterministic,
// well-formed replies derived from the prompt text. It lets the service run
// without model credentials.
func NewDemo() *Fake {
	f := New()
	f.model = "demo"
	f.Handle(llm.OpEnrich, demoEnrich)
	f.Handle(llm.OpRank, demoRank)
	f.Handle(llm.OpSynthesize, demoSynthesize)
	return f
}

var (
	positiveWords = wordSet("good great love loved happy glad fun enjoyed amazing wonderful excited won best nice beautiful")
	negativeWords = wordSet("bad sad angry hate hated tired lost missed awful terrible worst sick broke failed annoyed")
	stopWords     = wordSet("i me my we our you your he she it his her the a an and or but with from that this have has had was were about into over under then than they them their there what when where which while would could should today yesterday")
)

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// quoted returns the text between the first and last double quote of s.
func quoted(s string) string {
	start := strings.Index(s, `"`)
	end := strings.LastIndex(s, `"`)
	if start < 0 || end <= start {
		return s
	}
	return s[start+1 : end]
}

func reply(v any) (*llm.Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &llm.Response{Text: string(data), Model: "demo"}, nil
}

func demoEnrich(_ context.Context, req *llm.Request) (*llm.Response, error) {
	text := quoted(req.Prompt)

	entities := []string{}
	actions := []string{}
	named := []map[string]string{}
	seen := make(map[string]bool)
	score := 0

	for i, w := range words(text) {
		lower := strings.ToLower(w)
		switch {
		case positiveWords[lower]:
			score++
		case negativeWords[lower]:
			score--
		}
		if seen[lower] || stopWords[lower] {
			continue
		}
		seen[lower] = true

		switch {
		case i > 0 && unicode.IsUpper([]rune(w)[0]):
			named = append(named, map[string]string{"name": w, "type": "Unknown"})
		case strings.HasSuffix(lower, "ed") || strings.HasSuffix(lower, "ing"):
			actions = append(actions, lower)
		case len(lower) >= 4 && len(entities) < 5:
			entities = append(entities, lower)
		}
	}

	sentiment, value := "neutral", 0.0
	if score > 0 {
		sentiment, value = "positive", 0.6
	} else if score < 0 {
		sentiment, value = "negative", -0.6
	}

	summary := text
	if idx := strings.IndexAny(summary, ".!?"); idx > 0 {
		summary = summary[:idx+1]
	}
	if r := []rune(summary); len(r) > 80 {
		summary = string(r[:80])
	}

	return reply(map[string]any{
		"entities":       entities,
		"actions":        actions,
		"namedEntities":  named,
		"sentiment":      sentiment,
		"sentimentScore": value,
		"summary":        summary,
	})
}

func demoRank(_ context.Context, req *llm.Request) (*llm.Response, error) {
	lines := strings.Split(req.Prompt, "\n")
	if len(lines) == 0 {
		return reply([]any{})
	}

	queryTerms := []string{}
	for _, w := range words(quoted(lines[0])) {
		lower := strings.ToLower(w)
		if len(lower) > 2 && !stopWords[lower] {
			queryTerms = append(queryTerms, lower)
		}
	}

	type judgment struct {
		ID     string  `json:"id"`
		Reason string  `json:"reason"`
		Score  float64 `json:"score"`
	}
	judgments := []judgment{}

	for _, line := range lines[1:] {
		if !strings.HasPrefix(line, "ID: ") {
			continue
		}
		id, rest, _ := strings.Cut(strings.TrimPrefix(line, "ID: "), " | ")
		content := strings.ToLower(rest)

		var shared []string
		for _, term := range queryTerms {
			if strings.Contains(content, term) {
				shared = append(shared, term)
			}
		}
		if len(shared) == 0 {
			continue
		}
		judgments = append(judgments, judgment{
			ID:     id,
			Reason: "Mentions " + strings.Join(shared, ", ") + ".",
			Score:  float64(len(shared)) / float64(len(queryTerms)),
		})
	}

	sort.SliceStable(judgments, func(i, j int) bool {
		return judgments[i].Score > judgments[j].Score
	})
	return reply(judgments)
}

func demoSynthesize(_ context.Context, req *llm.Request) (*llm.Response, error) {
	_, memories, found := strings.Cut(req.Prompt, "Relevant memories:\n")
	if !found {
		return &llm.Response{Text: "I remember a little about that, but could you tell me more?", Model: "demo"}, nil
	}
	memories, _, _ = strings.Cut(memories, "\n\n")
	first, _, _ := strings.Cut(memories, "\n---\n")
	first = strings.TrimSpace(first)
	return &llm.Response{
		Text:  "Here is what I remember: " + first + " Is there anything else you would like to know?",
		Model: "demo",
	}, nil
}
