package cache

import "strings"

const (
	GlobalKeyPrefix = "quizgen"

	embeddingSegment = "embedding"
)

// Key joins segments under GlobalKeyPrefix with ":". Empty segments are
// skipped so optional parts never produce "::".
func Key(segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, GlobalKeyPrefix)
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ":")
}

// EmbeddingKey addresses one cached vector. namespace identifies the
// provider and model, textHash the embedded text.
func EmbeddingKey(namespace, textHash string) string {
	return Key(embeddingSegment, namespace, textHash)
}
