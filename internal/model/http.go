// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultHost is the ollama server address used when none is configured.
const DefaultHost = "http://localhost:11434"

// HTTPBackend calls a local ollama server's generate endpoint. It is an
// alternative to ExecBackend for setups where the server is already
// running and per-call process startup is unwanted.
type HTTPBackend struct {
	// Host is the server base URL, e.g. "http://localhost:11434".
	Host string

	// Timeout bounds one generation request.
	Timeout time.Duration

	// Client is the HTTP client; nil uses http.DefaultClient.
	Client *http.Client
}

// generateRequest is the body for the ollama /api/generate endpoint.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the non-streaming reply from /api/generate.
type generateResponse struct {
	Response string `json:"response"`
}

// Generate posts the prompt to the server and returns the trimmed reply.
// Exceeding the timeout returns ErrTimeout.
func (b *HTTPBackend) Generate(ctx context.Context, model, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	host := b.Host
	if host == "" {
		host = DefaultHost
	}

	body, err := json.Marshal(generateRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("marshaling generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost,
		strings.TrimRight(host, "/")+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("calling generate endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generate endpoint returned %d: %s", resp.StatusCode, string(msg))
	}

	var gen generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return "", fmt.Errorf("decoding generate response: %w", err)
	}
	return strings.TrimSpace(gen.Response), nil
}
