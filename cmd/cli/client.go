package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iho/bankcore/internal/adapter/http/dto"
	"github.com/iho/bankcore/internal/adapter/http/middleware"
)

// apiClient talks to the bankcore HTTP API on behalf of one owner.
type apiClient struct {
	baseURL        string
	owner          string
	idempotencyKey string
	http           *http.Client
}

func newAPIClient(baseURL, owner string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		owner:   owner,
		http:    &http.Client{Timeout: timeout},
	}
}

// apiError is a non-2xx answer from the server.
type apiError struct {
	Status  int
	Kind    string
	Message string
}

func (e *apiError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Kind)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// do sends body as JSON and decodes the answer into out. A non-2xx answer is
// returned as *apiError; out is still filled when the server sent a report
// alongside the error status.
func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.owner != "" {
		req.Header.Set(middleware.OwnerHeader, c.owner)
	}
	if c.idempotencyKey != "" && method == http.MethodPost {
		req.Header.Set(middleware.IdempotencyKeyHeader, c.idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		return nil
	}

	apiErr := &apiError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var errResp dto.ErrorResponse
	if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
		apiErr.Kind = errResp.Kind
		apiErr.Message = errResp.Error
		if errResp.Message != "" {
			apiErr.Message = errResp.Message
		}
	} else if out != nil {
		_ = json.Unmarshal(raw, out)
	}

	return apiErr
}
