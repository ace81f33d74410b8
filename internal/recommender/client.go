// Package recommender - клиент внешнего сервиса ранжирования.
//
// Сервис получает пользователя, его вектор и пул кандидатов и возвращает
// кандидатов от лучшего к худшему.
package recommender

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnavailable - любая неудача получить ранжирование: сеть, таймаут,
// не-2xx ответ или нечитаемое тело.
var ErrUnavailable = errors.New("recommender unavailable")

type Ranker interface {
	Rank(ctx context.Context, requesterID string, vector []float64, candidateIDs []string) ([]string, error)
}

// rankRequest - имена полей, которые ждет сервис
type rankRequest struct {
	UserA      string    `json:"userA"`
	UserVector []float64 `json:"userVector"`
	Candidates []string  `json:"candidates"`
}

type Client struct {
	url     string
	timeout time.Duration
	http    *http.Client
}

// NewClient создает клиент. Каждый вызов Rank ограничен timeout и не
// повторяется.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:     url,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// Rank возвращает id кандидатов, лучшие первыми. Пустой результат не ошибка.
func (c *Client) Rank(ctx context.Context, requesterID string, vector []float64, candidateIDs []string) ([]string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if vector == nil {
		vector = []float64{}
	}
	body, err := json.Marshal(rankRequest{
		UserA:      requesterID,
		UserVector: vector,
		Candidates: candidateIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var ranked []string
	if err := json.NewDecoder(resp.Body).Decode(&ranked); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return ranked, nil
}
