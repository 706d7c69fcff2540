package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/listing-docs/internal/llm"
)

var _ llm.DocumentModel = (*Client)(nil)

// decodeError marks a 2xx response whose body could not be understood.
type decodeError struct {
	what string
	err  error
}

func (e *decodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.what, e.err) }
func (e *decodeError) Unwrap() error { return e.err }

type chatCompletion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// UploadFile stores the document in the OpenAI file store and returns its id.
func (c *Client) UploadFile(ctx context.Context, file llm.FileUpload) (string, error) {
	endpoint := c.endpoint("files")
	start := time.Now()

	var id string
	err := c.withRetry(ctx, "upload", func() error {
		raw, _, err := llm.SendMultipart(ctx, c.http, endpoint,
			map[string]string{"purpose": c.cfg.UploadPurpose}, file, c.authHeaders(), c.logger)
		if err != nil {
			return err
		}
		var out struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return &decodeError{what: "upload response", err: err}
		}
		if out.ID == "" {
			return &decodeError{what: "upload response", err: fmt.Errorf("missing file id")}
		}
		id = out.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	c.logger.Info("llm.upload.ok",
		"file_id", id,
		"name", file.Name,
		"bytes", len(file.Content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return id, nil
}

// DeleteFile removes an uploaded file. It is not retried.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	endpoint := c.endpoint("files/" + url.PathEscape(fileID))
	_, _, err := llm.SendDelete(ctx, c.http, endpoint, c.authHeaders(), c.logger)
	return err
}

// CompleteWithFile runs the document model against an uploaded file.
func (c *Client) CompleteWithFile(ctx context.Context, fileID, prompt string) (string, error) {
	body := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "file", "file": map[string]any{"file_id": fileID}},
					{"type": "text", "text": prompt},
				},
			},
		},
		"max_tokens":  c.cfg.MaxTokens,
		"temperature": c.cfg.Temperature,
	}

	var content string
	err := c.withRetry(ctx, "complete_file", func() error {
		var err error
		content, err = c.complete(ctx, body)
		return err
	})
	return content, err
}

// CompleteWithSearch runs the search-augmented model with the configured
// location hint. It is not retried.
func (c *Client) CompleteWithSearch(ctx context.Context, prompt string) (string, error) {
	approx := map[string]any{}
	if c.cfg.Location.Country != "" {
		approx["country"] = c.cfg.Location.Country
	}
	if c.cfg.Location.Region != "" {
		approx["region"] = c.cfg.Location.Region
	}
	if c.cfg.Location.City != "" {
		approx["city"] = c.cfg.Location.City
	}

	body := map[string]any{
		"model": c.cfg.SearchModel,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
		"max_tokens": c.cfg.MaxTokens,
	}
	if len(approx) > 0 {
		body["web_search_options"] = map[string]any{
			"user_location": map[string]any{
				"type":        "approximate",
				"approximate": approx,
			},
		}
	} else {
		body["web_search_options"] = map[string]any{}
	}
	return c.complete(ctx, body)
}

func (c *Client) complete(ctx context.Context, body map[string]any) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	raw, _, err := llm.SendJSON(ctx, c.http, c.endpoint("chat/completions"), body, c.authHeaders(), c.logger)
	if err != nil {
		c.logger.Error("llm.complete.http_error",
			"req_id", rid, "model", body["model"], "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var cc chatCompletion
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.complete.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
		)
		return "", &decodeError{what: "completion response", err: err}
	}
	if len(cc.Choices) == 0 {
		c.logger.Warn("llm.complete.no_choices", "req_id", rid, "model", body["model"])
		return "", nil
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.logger.Info("llm.complete.ok",
		"req_id", rid,
		"model", body["model"],
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + path
}

func (c *Client) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
}
