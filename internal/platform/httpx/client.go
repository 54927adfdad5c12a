package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout        = 15 * time.Second
	defaultMaxRetries     = 3
	defaultInitialBackoff = 500 * time.Millisecond
	maxErrorBody          = 512
)

// Options configura el Client. Los ceros toman los valores por defecto.
type Options struct {
	Timeout        time.Duration
	RatePerSec     float64
	Burst          int
	MaxRetries     uint64
	InitialBackoff time.Duration
	UserAgent      string
}

// Client es un HTTP client con rate limiting y retries (backoff exponencial con jitter).
// 429 y 5xx se reintentan; el resto de 4xx es un error permanente.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	opts    Options
}

// New crea un Client con las opciones dadas.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = defaultInitialBackoff
	}
	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.Burst),
		opts:    opts,
	}
}

// StatusError es una respuesta HTTP no exitosa.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.StatusCode)
	}
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

// GetJSON hace un GET y decodifica el body JSON en out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	body, err := c.Get(ctx, url, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Get hace un GET con rate limiting y retries y devuelve el body completo.
func (c *Client) Get(ctx context.Context, url, accept string) ([]byte, error) {
	var body []byte
	attempt := 0

	op := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(redactErr(err))
		}
		if accept != "" {
			req.Header.Set("Accept", accept)
		}
		if c.opts.UserAgent != "" {
			req.Header.Set("User-Agent", c.opts.UserAgent)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return redactErr(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			slog.Warn("rate limited by API", "attempt", attempt)
			return &StatusError{StatusCode: resp.StatusCode}
		case resp.StatusCode >= 500:
			return &StatusError{StatusCode: resp.StatusCode}
		case resp.StatusCode >= 400:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return backoff.Permanent(&StatusError{StatusCode: resp.StatusCode, Body: string(b)})
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	}

	if err := backoff.Retry(op, c.policy(ctx)); err != nil {
		return nil, fmt.Errorf("GET %s after %d attempt(s): %w", redact(url), attempt, err)
	}
	return body, nil
}

// redactErr limpia la URL que net/http guarda dentro de *url.Error.
func redactErr(err error) error {
	var ue *neturl.Error
	if errors.As(err, &ue) {
		ue.URL = redact(ue.URL)
	}
	return err
}

func (c *Client) policy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.opts.InitialBackoff
	exp.MaxElapsedTime = 0 // el tope lo pone MaxRetries
	return backoff.WithContext(backoff.WithMaxRetries(exp, c.opts.MaxRetries), ctx)
}
