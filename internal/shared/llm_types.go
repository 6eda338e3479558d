package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// ExtractionMeta holds operational metadata for an extraction run.
type ExtractionMeta struct {
	Source  string // "url" or "text"
	Usage   TokenUsage
	Latency time.Duration
	Success bool
}
