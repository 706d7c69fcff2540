package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joseph-ayodele/listing-docs/constants"
)

// Config for the OpenAI client.
type Config struct {
	APIKey        string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL       string        // default https://api.openai.com/v1
	Model         string        // document model, e.g. "gpt-4.1"
	SearchModel   string        // search-augmented model, e.g. "gpt-4o-search-preview"
	MaxTokens     int           // completion bound for both calls
	Temperature   float32       // document model only; search models reject it
	Timeout       time.Duration // http client timeout
	UploadPurpose string        // purpose tag sent with uploads
	Location      SearchLocation
	Retry         RetryPolicy
}

// SearchLocation is the approximate user location hint sent to the search model.
type SearchLocation struct {
	Country string
	Region  string
	City    string
}

// RetryPolicy applies to uploads and document completions only.
type RetryPolicy struct {
	MaxAttempts     int // total attempts, including the first
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1"
	}
	if cfg.SearchModel == "" {
		cfg.SearchModel = "gpt-4o-search-preview"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if cfg.UploadPurpose == "" {
		cfg.UploadPurpose = constants.UploadPurpose
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 1
	}
	if cfg.Retry.InitialInterval <= 0 {
		cfg.Retry.InitialInterval = 500 * time.Millisecond
	}
	if cfg.Retry.MaxInterval <= 0 {
		cfg.Retry.MaxInterval = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}
