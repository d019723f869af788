package config

import (
	"strings"
	"time"
)

// DefaultErrorDetailPath extracts a FastAPI-style error message: either a plain
// "detail" string or the first validation message of a "detail" list.
const DefaultErrorDetailPath = "detail[0].msg || detail"

// BackendConfig contains configuration for the external FlowState backend API.
type BackendConfig struct {
	// BaseURL is the root URL of the FlowState backend.
	BaseURL string `env:"FLOWSTATE_API_URL" envDefault:"http://localhost:8000"`

	// Timeout bounds a single backend request. Requests are attempted once.
	Timeout time.Duration `env:"FLOWSTATE_API_TIMEOUT" envDefault:"10s"`

	// ErrorDetailPath is a JMESPath expression evaluated against JSON error bodies
	// to find the user-facing detail message.
	ErrorDetailPath string `env:"FLOWSTATE_API_ERROR_DETAIL_PATH" envDefault:"detail[0].msg || detail"`
}

// Sanitize applies guardrails to backend configuration values.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	if b.BaseURL == "" {
		b.BaseURL = "http://localhost:8000"
	}
	if b.Timeout <= 0 {
		b.Timeout = 10 * time.Second
	}
	b.ErrorDetailPath = strings.TrimSpace(b.ErrorDetailPath)
	if b.ErrorDetailPath == "" {
		b.ErrorDetailPath = DefaultErrorDetailPath
	}
}
