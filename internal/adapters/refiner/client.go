// Package refiner implements the optional fluency-refiner port against a
// seq2seq rewrite service. Availability is probed once and cached so the
// tense stage can cheaply skip the hop when no refiner is deployed
package refiner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"prosefix/internal/core/checker"
	perr "prosefix/internal/platform/errors"
)

// Config for the refiner client
type Config struct {
	BaseURL string        // empty disables the refiner entirely
	Timeout time.Duration // per-request timeout, default 30s; model inference is slow
}

// Client talks to a rewrite service. Safe for concurrent use
type Client struct {
	cfg Config
	hc  *http.Client
	log zerolog.Logger

	probe     sync.Once
	available bool
}

// New constructs a refiner client
func New(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.Timeout},
		log: log,
	}
}

// Available implements checker.Refiner. The first call probes the service
// health endpoint; the answer is cached for the process lifetime
func (c *Client) Available() bool {
	if c.cfg.BaseURL == "" {
		return false
	}
	c.probe.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/healthz", nil)
		if err != nil {
			return
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			c.log.Warn().Err(err).Str("base_url", c.cfg.BaseURL).Msg("refiner unreachable, disabling")
			return
		}
		defer resp.Body.Close()
		c.available = resp.StatusCode == http.StatusOK
	})
	return c.available
}

type wireRequest struct {
	Text string `json:"text"`
}

type wireResponse struct {
	Text string `json:"text"`
}

// Refine implements checker.Refiner
func (c *Client) Refine(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	body, err := json.Marshal(wireRequest{Text: text})
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeJSON, "refiner request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/refine", bytes.NewReader(body))
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnavailable, "refiner request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnavailable, "refiner refine")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", perr.Unavailablef("refiner refine: status %d: %s", resp.StatusCode, string(msg))
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeJSON, "refiner response")
	}
	if strings.TrimSpace(wire.Text) == "" {
		return text, nil // never let a flaky rewrite blank the sentence
	}
	return wire.Text, nil
}

var _ checker.Refiner = (*Client)(nil)
