package semantic

import (
	"fmt"
	"strings"

	"github.com/coremem/coremem/pkg/llm"
	"github.com/coremem/coremem/pkg/memory"
)

const (
	enrichPromptFormat = `Extract semantic information from the following text: "%s"`

	rankSystem = "You match a user's personal memories against a question. " +
		"Only refer to memories by the IDs listed."

	rankInstructions = "Given the list of stored memories above, identify which ones are most relevant to the query. " +
		"Leave out memories that are not relevant."

	synthesizeSystem = "You are an AI assistant with access to the user's past memories."

	synthesizeInstructions = "Synthesize a warm, intelligent response based on these memories. " +
		"If the memories aren't quite enough, acknowledge what you know and ask for clarification."

	// FallbackResponse is used when the model returns no text.
	FallbackResponse = "I'm sorry, I couldn't process that."

	// summaryFallbackRunes is the length of the input prefix used when no summary is returned.
	summaryFallbackRunes = 50
)

var annotationSchema = llm.Object(map[string]llm.Schema{
	"entities": llm.Array(llm.String(""), "Nouns and key subjects mentioned."),
	"actions":  llm.Array(llm.String(""), "Verbs or actions mentioned."),
	"namedEntities": llm.Array(llm.Object(map[string]llm.Schema{
		"name": llm.String(""),
		"type": llm.String("Person, Location, Organization, etc."),
	}), ""),
	"sentiment":      llm.StringEnum("One of: positive, negative, neutral", "positive", "negative", "neutral"),
	"sentimentScore": llm.Number("Score from -1 (very negative) to 1 (very positive)"),
	"summary":        llm.String("A very brief 1-sentence summary of the memory."),
}, "entities", "actions", "sentiment", "sentimentScore", "summary")

var judgmentSchema = llm.Array(llm.Object(map[string]llm.Schema{
	"id":     llm.String(""),
	"reason": llm.String("Why this memory is relevant."),
	"score":  llm.Number("Relevance score from 0 to 1."),
}, "id", "reason", "score"), "")

func enrichPrompt(text string) string {
	return fmt.Sprintf(enrichPromptFormat, text)
}

// corpusLine renders one memory for the relevance prompt.
func corpusLine(m memory.Memory) string {
	return fmt.Sprintf("ID: %s | Summary: %s | Text: %s", m.ID, m.Summary, m.Text)
}

func rankPrompt(query string, memories []memory.Memory) string {
	lines := make([]string, len(memories))
	for i, m := range memories {
		lines[i] = corpusLine(m)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %q\n\nMemories:\n", query)
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n\n")
	sb.WriteString(rankInstructions)
	return sb.String()
}

func synthesizePrompt(query string, texts []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "The user is asking: %q\n\nRelevant memories:\n", query)
	sb.WriteString(strings.Join(texts, "\n---\n"))
	sb.WriteString("\n\n")
	sb.WriteString(synthesizeInstructions)
	return sb.String()
}
