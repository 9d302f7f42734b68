package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	goerrors "github.com/goliatone/go-errors"
)

const (
	DefaultBaseURL = "https://pokeapi.co/api/v2/"
	DefaultTimeout = 30 * time.Second

	// maxBodySize caps how much of a response is read.
	maxBodySize = 4 << 20
)

// Text codes attached to client errors.
const (
	TextCodeNetworkUnavailable = "NETWORK_UNAVAILABLE"
	TextCodeDecodeFailed       = "DECODE_FAILED"
)

// Config configures a Client. Zero values fall back to the defaults.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	Transport http.RoundTripper
	Logger    *log.Logger
}

// Client reads the PokeAPI catalog.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *log.Logger
}

// NewClient validates the base url and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid pokeapi base url")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	tr := cfg.Transport
	if tr == nil {
		tr = http.DefaultTransport
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: &loggingTransport{next: tr, logger: logger},
		},
		logger: logger,
	}, nil
}

// ListPokemon fetches one page of the catalog.
func (c *Client) ListPokemon(ctx context.Context, limit, offset int) (ListResponse, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var out ListResponse
	if err := c.getJSON(ctx, &url.URL{Path: "pokemon", RawQuery: q.Encode()}, &out); err != nil {
		return ListResponse{}, err
	}
	return out, nil
}

// GetPokemonDetails fetches a single creature by name or numeric id.
func (c *Client) GetPokemonDetails(ctx context.Context, nameOrID string) (DetailsResponse, error) {
	ref := &url.URL{Path: "pokemon/" + url.PathEscape(nameOrID)}

	var out DetailsResponse
	if err := c.getJSON(ctx, ref, &out); err != nil {
		return DetailsResponse{}, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, ref *url.URL, out any) error {
	target := c.baseURL.ResolveReference(ref).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "build pokeapi request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return goerrors.Wrap(ctxErr, goerrors.CategoryOperation, "pokeapi request cancelled")
		}
		return goerrors.Wrap(err, goerrors.CategoryExternal, "pokeapi unreachable").
			WithTextCode(TextCodeNetworkUnavailable).
			WithMetadata(map[string]any{"url": target})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "read pokeapi response").
			WithTextCode(TextCodeNetworkUnavailable).
			WithMetadata(map[string]any{"url": target})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		category := goerrors.HTTPStatusToCategory(resp.StatusCode)
		if resp.StatusCode >= 500 {
			category = goerrors.CategoryExternal
		}
		return goerrors.New(fmt.Sprintf("pokeapi returned status %d", resp.StatusCode), category).
			WithCode(resp.StatusCode).
			WithTextCode(goerrors.HTTPStatusToTextCode(resp.StatusCode)).
			WithMetadata(map[string]any{"url": target, "body": truncate(string(raw), 256)})
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "decode pokeapi response").
			WithTextCode(TextCodeDecodeFailed).
			WithMetadata(map[string]any{"url": target})
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// loggingTransport writes one debug line per round trip.
type loggingTransport struct {
	next   http.RoundTripper
	logger *log.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.logger.Debug("pokeapi request failed", "method", req.Method, "url", req.URL.String(), "duration", time.Since(start), "err", err)
		return nil, err
	}
	t.logger.Debug("pokeapi request", "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode, "duration", time.Since(start), "bytes", resp.ContentLength)
	return resp, nil
}
