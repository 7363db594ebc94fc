package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-companion-core/internal/dto"
)

// IClient is the remote companion backend. Every call is a suspension point;
// callers own the failure semantics (swallow, surface, or degrade).
type IClient interface {
	// GetOrCreateSession is idempotent: two calls for the same character id
	// return the same session id.
	GetOrCreateSession(ctx context.Context, characterId string) (*dto.SessionResponse, error)
	GetSessionHistory(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error)
	SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	GetIntimacyStatus(ctx context.Context, characterId string) (*dto.IntimacyStatusResponse, error)
	GetPendingPushes(ctx context.Context) ([]dto.PendingPushDTO, error)
	GetWallet(ctx context.Context) (*dto.WalletResponse, error)
}

type httpClient struct {
	baseURL   string
	authToken string
	client    *http.Client
}

func NewClient(baseURL, authToken string, timeout time.Duration) IClient {
	return &httpClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend %s %s: status %d: %s", method, path, resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *httpClient) GetOrCreateSession(ctx context.Context, characterId string) (*dto.SessionResponse, error) {
	var out dto.SessionResponse
	body := map[string]string{"character_id": characterId}
	if err := c.do(ctx, http.MethodPost, "/v1/sessions", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) GetSessionHistory(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error) {
	var out dto.SessionHistoryResponse
	path := "/v1/sessions/" + url.PathEscape(sessionId) + "/messages"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	var out dto.SendMessageResponse
	path := "/v1/sessions/" + url.PathEscape(req.SessionId) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) GetIntimacyStatus(ctx context.Context, characterId string) (*dto.IntimacyStatusResponse, error) {
	var out dto.IntimacyStatusResponse
	path := "/v1/characters/" + url.PathEscape(characterId) + "/intimacy"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) GetPendingPushes(ctx context.Context) ([]dto.PendingPushDTO, error) {
	var out struct {
		Pushes []dto.PendingPushDTO `json:"pushes"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/pushes/pending", nil, &out); err != nil {
		return nil, err
	}
	return out.Pushes, nil
}

func (c *httpClient) GetWallet(ctx context.Context) (*dto.WalletResponse, error) {
	var out dto.WalletResponse
	if err := c.do(ctx, http.MethodGet, "/v1/wallet", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
