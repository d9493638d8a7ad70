package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/UkralStul/apexmed-interactions/internal/domain"
)

var (
	// ErrFetchFailed - удаленный каталог ответил не 2xx или недоступен.
	ErrFetchFailed = errors.New("Erro ao buscar vídeos")
	// ErrNotConfigured - адрес каталога не задан.
	ErrNotConfigured = errors.New("video catalog url is not configured")
)

// Catalog отдает список видео.
type Catalog interface {
	Videos(ctx context.Context) ([]domain.Video, error)
}

// HTTPClient читает список видео по HTTP. Повторов нет: ошибка сразу уходит вызывающему.
type HTTPClient struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

// ClientOption настраивает HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient подменяет http.Client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(h *HTTPClient) { h.client = c }
}

// WithRateLimit ограничивает частоту запросов: не чаще одного за interval, с запасом burst.
func WithRateLimit(interval time.Duration, burst int) ClientOption {
	return func(h *HTTPClient) {
		if interval <= 0 {
			h.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst <= 0 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Every(interval), burst)
	}
}

// WithClientLogger задает логгер.
func WithClientLogger(log logrus.FieldLogger) ClientOption {
	return func(h *HTTPClient) { h.log = log }
}

func NewHTTPClient(url string, opts ...ClientOption) *HTTPClient {
	h := &HTTPClient{
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Inf, 1),
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.WithField("component", "catalog")
	return h
}

func (h *HTTPClient) Videos(ctx context.Context) ([]domain.Video, error) {
	if h.url == "" {
		return nil, ErrNotConfigured
	}
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "catalog rate limiter")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build catalog request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		h.log.WithError(err).Warn("catalog request failed")
		return nil, errors.Wrap(ErrFetchFailed, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		h.log.WithField("status", resp.StatusCode).Warn("catalog returned non-2xx status")
		return nil, errors.Wrapf(ErrFetchFailed, "status %d", resp.StatusCode)
	}

	var videos []domain.Video
	if err := json.NewDecoder(resp.Body).Decode(&videos); err != nil {
		return nil, errors.Wrap(err, "failed to decode catalog response")
	}
	h.log.WithField("count", len(videos)).Debug("catalog fetched")
	return videos, nil
}
