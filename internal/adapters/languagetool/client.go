// Package languagetool implements the checker port against a LanguageTool
// HTTP server (the hosted API or a locally bootstrapped instance). Correct
// applies the first replacement of each non-overlapping match, right to left
// so earlier offsets stay valid
package languagetool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"prosefix/internal/core/checker"
	perr "prosefix/internal/platform/errors"
)

// Config for the LanguageTool client
type Config struct {
	BaseURL  string        // e.g. http://127.0.0.1:8081
	Language string        // checker locale, default en-US
	Timeout  time.Duration // per-request timeout, default 10s
}

// Client talks to a LanguageTool server. Safe for concurrent use
type Client struct {
	cfg Config
	hc  *http.Client
	log zerolog.Logger
}

// New constructs a LanguageTool client
func New(cfg Config, log zerolog.Logger) *Client {
	if cfg.Language == "" {
		cfg.Language = "en-US"
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

type wireMatch struct {
	Message string `json:"message"`
	Offset  int    `json:"offset"`
	Length  int    `json:"length"`
	Rule    struct {
		ID string `json:"id"`
	} `json:"rule"`
	Replacements []struct {
		Value string `json:"value"`
	} `json:"replacements"`
}

type wireResponse struct {
	Matches []wireMatch `json:"matches"`
}

// Check implements checker.Checker
func (c *Client) Check(ctx context.Context, text string) ([]checker.Issue, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("language", c.cfg.Language)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "languagetool request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "languagetool check")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, perr.Unavailablef("languagetool check: status %d: %s", resp.StatusCode, string(body))
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "languagetool response")
	}

	issues := make([]checker.Issue, 0, len(wire.Matches))
	for _, m := range wire.Matches {
		iss := checker.Issue{
			RuleID:  m.Rule.ID,
			Message: m.Message,
			Offset:  m.Offset,
			Length:  m.Length,
		}
		for _, r := range m.Replacements {
			iss.Replacements = append(iss.Replacements, r.Value)
		}
		issues = append(issues, iss)
	}
	return issues, nil
}

// Correct implements checker.Checker
func (c *Client) Correct(ctx context.Context, text string) (string, error) {
	issues, err := c.Check(ctx, text)
	if err != nil {
		return "", err
	}
	return Apply(text, issues), nil
}

// Apply rewrites text with the first replacement of each match. The server
// reports offset and length in characters, not bytes, so spans are resolved
// in rune space before splicing. Overlapping spans are resolved
// leftmost-first, then edits run right to left so earlier offsets stay valid
func Apply(text string, issues []checker.Issue) string {
	if len(issues) == 0 {
		return text
	}

	// byte position of every rune boundary, including the end of text
	bounds := make([]int, 0, len(text)+1)
	for i := range text {
		bounds = append(bounds, i)
	}
	bounds = append(bounds, len(text))
	runes := len(bounds) - 1

	valid := make([]checker.Issue, 0, len(issues))
	for _, iss := range issues {
		if len(iss.Replacements) == 0 || iss.Offset < 0 || iss.Length <= 0 {
			continue
		}
		if iss.Offset+iss.Length > runes {
			continue
		}
		valid = append(valid, iss)
	}
	sort.Slice(valid, func(i, j int) bool { return valid[i].Offset < valid[j].Offset })

	kept := valid[:0]
	lastEnd := 0
	for _, iss := range valid {
		if iss.Offset < lastEnd {
			continue // overlaps an earlier match
		}
		kept = append(kept, iss)
		lastEnd = iss.Offset + iss.Length
	}

	out := text
	for i := len(kept) - 1; i >= 0; i-- {
		iss := kept[i]
		start, end := bounds[iss.Offset], bounds[iss.Offset+iss.Length]
		out = out[:start] + iss.Replacements[0] + out[end:]
	}
	return out
}

// Ping verifies the server answers the languages listing
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v2/languages", nil)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "languagetool ping")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "languagetool ping")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return perr.Unavailablef("languagetool ping: status %d", resp.StatusCode)
	}
	return nil
}

var _ checker.Checker = (*Client)(nil)

// String describes the client target for logs
func (c *Client) String() string {
	return fmt.Sprintf("languagetool(%s, %s)", c.cfg.BaseURL, c.cfg.Language)
}
