// Package spacyd implements the annotator port against a small spaCy HTTP
// daemon: POST /annotate with {"text": ...} returns the parsed token stream.
// One round trip per annotation call; stages re-annotate after edits, so the
// daemon should run close to the API
package spacyd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"prosefix/internal/core/annotate"
	perr "prosefix/internal/platform/errors"
)

// Config for the spacyd client
type Config struct {
	BaseURL string        // e.g. http://127.0.0.1:8090
	Model   string        // spaCy model name, default en_core_web_sm
	Timeout time.Duration // per-request timeout, default 10s
}

// Client talks to a spacyd instance. Safe for concurrent use
type Client struct {
	cfg Config
	hc  *http.Client
	log zerolog.Logger
}

// New constructs a spacyd client
func New(cfg Config, log zerolog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "en_core_web_sm"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.Timeout},
		log: log,
	}
}

type wireToken struct {
	Text       string `json:"text"`
	Whitespace string `json:"whitespace"`
	Pos        string `json:"pos"`
	Tag        string `json:"tag"`
	Lemma      string `json:"lemma"`
	Dep        string `json:"dep"`
	Head       int    `json:"head"`
	Sent       int    `json:"sent"`
	Index      int    `json:"i"`
}

type wireDoc struct {
	Tokens []wireToken `json:"tokens"`
}

// Annotate implements annotate.Annotator
func (c *Client) Annotate(ctx context.Context, text string) (annotate.Doc, error) {
	if strings.TrimSpace(text) == "" {
		return annotate.Doc{}, nil
	}

	body, err := json.Marshal(map[string]string{"text": text, "model": c.cfg.Model})
	if err != nil {
		return annotate.Doc{}, perr.Wrap(err, perr.ErrorCodeJSON, "spacyd request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/annotate", bytes.NewReader(body))
	if err != nil {
		return annotate.Doc{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "spacyd request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return annotate.Doc{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "spacyd annotate")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return annotate.Doc{}, perr.Unavailablef("spacyd annotate: status %d: %s", resp.StatusCode, string(msg))
	}

	var wire wireDoc
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return annotate.Doc{}, perr.Wrap(err, perr.ErrorCodeJSON, "spacyd response")
	}

	doc := annotate.Doc{Tokens: make([]annotate.Token, len(wire.Tokens))}
	for i, wt := range wire.Tokens {
		doc.Tokens[i] = annotate.Token{
			Text:  wt.Text,
			Ws:    wt.Whitespace,
			Pos:   wt.Pos,
			Tag:   wt.Tag,
			Lemma: wt.Lemma,
			Dep:   wt.Dep,
			Head:  wt.Head,
			Sent:  wt.Sent,
			Index: wt.Index,
		}
	}
	return doc, nil
}

// Ping verifies the daemon is up and has the model loaded
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/healthz", nil)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "spacyd ping")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "spacyd ping")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return perr.Unavailablef("spacyd ping: status %d", resp.StatusCode)
	}
	return nil
}

var _ annotate.Annotator = (*Client)(nil)
