package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"greencode-backend/internal/analyses/engine"
)

// Client talks to a GreenCode API server.
type Client struct {
	baseURL    string
	token      string
	guestID    string
	httpClient *http.Client
}

// RemoteAnalysis is a stored analysis as returned by the API.
type RemoteAnalysis struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	engine.Result
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("%s: %s (%d)", e.Code, e.Message, e.Status)
}

// NewClient returns a client for baseURL. Without a token the client
// identifies as a guest; a random guest id is generated when none is given.
func NewClient(baseURL, token, guestID string, timeout time.Duration) *Client {
	if token == "" && guestID == "" {
		guestID = uuid.NewString()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		guestID: guestID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Analyze submits code for analysis.
func (c *Client) Analyze(ctx context.Context, code, language string) (RemoteAnalysis, error) {
	payload, err := json.Marshal(map[string]string{"code": code, "language": language})
	if err != nil {
		return RemoteAnalysis{}, err
	}
	var out RemoteAnalysis
	if err := c.do(ctx, http.MethodPost, "/api/v1/analyze", bytes.NewReader(payload), &out); err != nil {
		return RemoteAnalysis{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, dest any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	} else {
		req.Header.Set("X-Guest-Id", c.guestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var parsed struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err == nil {
			apiErr.Code = parsed.Error.Code
			apiErr.Message = parsed.Error.Message
		}
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
