// Package api содержит HTTP клиент агента к облачному сервису синхронизации.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/iudanet/marketsync/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI defines interface for the cloud sync API
type ClientAPI interface {
	// Pull запрашивает изменения с ревизией строго больше sinceRev
	Pull(ctx context.Context, sinceRev int64, limit int) (*api.PullResponse, error)

	// Push отправляет пакет локальных изменений
	Push(ctx context.Context, batch api.ChangeBatch) (*api.PushResponse, error)
}

// Client представляет HTTP клиент для взаимодействия с облаком
type Client struct {
	httpClient    *http.Client
	baseURL       string
	token         string
	retryAttempts uint64
	retryDelay    time.Duration
}

// NewClient создает новый API клиент.
// token — долгоживущий JWT агента, передается в каждом запросе
func NewClient(baseURL, token string, retryAttempts int, retryDelay time.Duration) *Client {
	return &Client{
		baseURL:       baseURL,
		token:         token,
		retryAttempts: uint64(retryAttempts), //nolint:gosec // retryAttempts валидируется конфигом
		retryDelay:    retryDelay,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Pull запрашивает изменения с ревизией строго больше sinceRev
func (c *Client) Pull(ctx context.Context, sinceRev int64, limit int) (*api.PullResponse, error) {
	var resp api.PullResponse
	path := fmt.Sprintf("/sync/pull?sinceRev=%d&limit=%d", sinceRev, limit)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("pull request failed: %w", err)
	}
	return &resp, nil
}

// Push отправляет пакет локальных изменений
func (c *Client) Push(ctx context.Context, batch api.ChangeBatch) (*api.PushResponse, error) {
	var resp api.PushResponse
	if err := c.doRequest(ctx, http.MethodPost, "/sync/push", batch, &resp); err != nil {
		return nil, fmt.Errorf("push request failed: %w", err)
	}
	return &resp, nil
}

// statusError ошибка HTTP уровня с кодом ответа
type statusError struct {
	message string
	code    int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.code, e.message)
}

// doRequest выполняет HTTP запрос с повторами.
// Сетевые ошибки и 5xx повторяются с постоянным интервалом,
// 4xx — терминальные: повтор не изменит результат
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	backoff := retry.WithMaxRetries(c.retryAttempts, retry.NewConstant(c.retryDelay))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.doRequestOnce(ctx, method, path, body, result)
		if err == nil {
			return nil
		}

		var serr *statusError
		if errors.As(err, &serr) && serr.code < http.StatusInternalServerError {
			return err
		}
		return retry.RetryableError(err)
	})
}

// doRequestOnce выполняет один HTTP запрос
func (c *Client) doRequestOnce(ctx context.Context, method, path string, body, result interface{}) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := string(respBody)
		var errResp api.ErrorResponse
		if jerr := json.Unmarshal(respBody, &errResp); jerr == nil && errResp.Error != "" {
			message = errResp.Error
			if errResp.Message != "" {
				message = errResp.Message
			}
		}
		return &statusError{code: resp.StatusCode, message: message}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
