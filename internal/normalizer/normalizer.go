// Package normalizer turns free-form model output into schema-valid quiz
// questions. It never fails: unusable input yields an empty slice and the
// caller decides whether that is an error.
package normalizer

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"quiz-byte/internal/domain"

	"github.com/samber/lo"
)

const (
	DefaultQuestion    = "Untitled question"
	DefaultExplanation = "No explanation provided."
)

// PlaceholderOptions fill in for missing or short option lists.
var PlaceholderOptions = [domain.OptionCount]string{"Option A", "Option B", "Option C", "Option D", "Option E"}

var (
	openingFenceRe  = regexp.MustCompile("^```[A-Za-z]*")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	thinkRe         = regexp.MustCompile(`(?s)<think>.*?</think>`)
	quoteReplacer   = strings.NewReplacer("“", `"`, "”", `"`, "‘", "'", "’", "'")
)

// Normalize extracts the JSON array from raw and repairs every element:
//
//	non-object element       dropped
//	question missing/blank   DefaultQuestion
//	options >= 5             first five (after dropping blanks and duplicates)
//	options 1..4             padded from PlaceholderOptions
//	options missing/empty    PlaceholderOptions
//	answer not an option     first option
//	explanation missing      DefaultExplanation
func Normalize(raw string) []domain.QuizQuestion {
	items, ok := extractArray(raw)
	if !ok {
		return nil
	}

	out := make([]domain.QuizQuestion, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, repair(obj))
	}
	return out
}

func extractArray(raw string) ([]any, bool) {
	// Reasoning models may emit a <think> block before the answer.
	text := strings.TrimSpace(thinkRe.ReplaceAllString(raw, ""))
	if text == "" {
		return nil, false
	}

	text = stripEnclosingFence(text)

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end <= start {
		return nil, false
	}
	text = text[start : end+1]

	text = quoteReplacer.Replace(text)
	text = trailingCommaRe.ReplaceAllString(text, "$1")

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return nil, false
	}
	items, ok := parsed.([]any)
	return items, ok
}

// stripEnclosingFence removes the fence wrapping the whole answer. Fences
// elsewhere are left alone; the bracket scan below skips surrounding prose.
func stripEnclosingFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = openingFenceRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	return strings.TrimSpace(strings.TrimSuffix(text, "```"))
}

func repair(obj map[string]any) domain.QuizQuestion {
	options := repairOptions(obj["options"])

	answer, _ := scalarString(obj["answer"])
	if !lo.Contains(options, answer) {
		answer = options[0]
	}

	return domain.QuizQuestion{
		Question:    stringOr(obj["question"], DefaultQuestion),
		Options:     options,
		Answer:      answer,
		Explanation: stringOr(obj["explanation"], DefaultExplanation),
	}
}

func repairOptions(raw any) []string {
	items, _ := raw.([]any)

	options := make([]string, 0, domain.OptionCount)
	for _, item := range items {
		s, ok := scalarString(item)
		if !ok || s == "" || lo.Contains(options, s) {
			continue
		}
		options = append(options, s)
		if len(options) == domain.OptionCount {
			return options
		}
	}

	for _, p := range PlaceholderOptions {
		if len(options) == domain.OptionCount {
			break
		}
		if !lo.Contains(options, p) {
			options = append(options, p)
		}
	}
	return options
}

// scalarString renders JSON strings, numbers and booleans as trimmed text.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func stringOr(v any, fallback string) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return strings.TrimSpace(s)
}
