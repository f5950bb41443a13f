package dto

import "time"

// GenerateQuizRequest represents the request body for quiz generation.
// Either Topic or DocID must be set; N 0 means the default count.
type GenerateQuizRequest struct {
	Topic string `json:"topic"`
	DocID string `json:"docId"`
	N     int    `json:"n"`
}

// QuizQuestionResponse represents one multiple-choice question
type QuizQuestionResponse struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// QuizResponse represents a generated quiz
type QuizResponse struct {
	OK        bool                   `json:"ok"`
	ID        string                 `json:"id"`
	Quiz      []QuizQuestionResponse `json:"quiz"`
	Count     int                    `json:"count"`
	Model     string                 `json:"model"`
	Topic     string                 `json:"topic"`
	DocID     string                 `json:"docId,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// UploadResponse represents the result of a document upload
type UploadResponse struct {
	OK            bool   `json:"ok"`
	DocID         string `json:"docId"`
	Title         string `json:"title"`
	ChunksIndexed int    `json:"chunksIndexed"`
	TextLen       int    `json:"textLen"`
}

// PingResponse reports which model answered the ping prompt
type PingResponse struct {
	OK    bool   `json:"ok"`
	Model string `json:"model"`
	Text  string `json:"text"`
}

// QuizSummary is one history entry
type QuizSummary struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	DocID     string    `json:"docId,omitempty"`
	Model     string    `json:"model"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryResponse lists recent quizzes, newest first
type HistoryResponse struct {
	OK      bool          `json:"ok"`
	Quizzes []QuizSummary `json:"quizzes"`
}

// SearchHit is one ranked passage
type SearchHit struct {
	ID          string  `json:"id"`
	DocID       string  `json:"docId"`
	Title       string  `json:"title"`
	PageOrdinal int     `json:"pageOrdinal"`
	Text        string  `json:"text"`
	Score       float64 `json:"score"`
}

// SearchResponse represents hybrid search results
type SearchResponse struct {
	OK    bool        `json:"ok"`
	Query string      `json:"query"`
	Hits  []SearchHit `json:"hits"`
}

// AskRequest represents a free-form question
type AskRequest struct {
	Prompt string `json:"prompt"`
}

// AskResponse represents a grounded answer
type AskResponse struct {
	OK      bool        `json:"ok"`
	Reply   string      `json:"reply"`
	Model   string      `json:"model"`
	Sources []SearchHit `json:"sources"`
}

// Cache states reported by the health check.
const (
	CacheUp       = "up"
	CacheDown     = "down"
	CacheDisabled = "disabled"
)

// HealthResponse represents the health check payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Cache   string `json:"cache"`
}
