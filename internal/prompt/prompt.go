// Package prompt renders the instruction templates sent to the generative model.
package prompt

import (
	"fmt"
	"strings"

	"quiz-byte/internal/domain"
)

const (
	MinQuestions     = 5
	MaxQuestions     = 30
	DefaultQuestions = 10
)

const quizTemplate = `
Return ONLY a valid JSON array like this:
[
  {
    "question": "string",
    "options": ["A","B","C","D","E"],
    "answer": "exact text of correct option",
    "explanation": "short reason"
  }
]
Rules:
- Exactly 5 distinct options per question.
- "answer" MUST be one of the options verbatim.
- Do not add any text before or after the JSON array.
- Base questions on this content (use it carefully and accurately):
"""%s"""
Generate %d multiple-choice questions.
`

// ClampQuestionCount pins n into [MinQuestions, MaxQuestions].
func ClampQuestionCount(n int) int {
	if n < MinQuestions {
		return MinQuestions
	}
	if n > MaxQuestions {
		return MaxQuestions
	}
	return n
}

// BuildQuizPrompt renders the quiz instruction for the given grounding
// context. Out-of-range counts are clamped, never rejected.
func BuildQuizPrompt(context string, n int) string {
	return fmt.Sprintf(quizTemplate, context, ClampQuestionCount(n))
}

// BuildAnswerPrompt grounds a free-form question in retrieved passages.
func BuildAnswerPrompt(question string, passages []*domain.ScoredChunk) string {
	var b strings.Builder
	b.WriteString("Answer the question using only the numbered passages below. ")
	b.WriteString("Cite passages as [n]. If the passages do not contain the answer, say so.\n\n")
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] (%s, part %d)\n%s\n\n", i+1, p.Title, p.PageOrdinal, p.Text)
	}
	fmt.Fprintf(&b, "Question: %s\nAnswer:", question)
	return b.String()
}
