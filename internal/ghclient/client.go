// Package ghclient implements the authenticated GitHub GraphQL request
// layer: bearer auth, token-bucket throttling, doubling-delay backoff, and
// typed operations over GitHub's Projects v2 GraphQL schema.
//
// Grounded on the teacher's internal/api/client.go (query() wrapper,
// rate.Limiter throttling, operation-by-operation typed methods) and
// internal/api/stats.go (extractOpName). The backoff driver is new code
// implementing spec.md §4.2's graphql_with_backoff, since the teacher's
// Linear client has no retry loop of its own — see DESIGN.md.
package ghclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultAPIURL = "https://api.github.com/graphql"

// Client wraps the transport with bearer auth, JSON content negotiation,
// and request throttling (spec.md §4.2).
type Client struct {
	token      string
	apiURL     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Options configures a Client.
type Options struct {
	// RequestsPerSecond throttles outbound GraphQL calls. GitHub's GraphQL
	// budget is roughly 5,000 points/hour; a conservative fixed request
	// rate (rather than point accounting) mirrors the teacher's own
	// simplification for Linear's 1,500/hour budget.
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// DefaultOptions returns conservative throttling settings.
func DefaultOptions() Options {
	return Options{RequestsPerSecond: 4, Burst: 20, Timeout: 60 * time.Second}
}

// New constructs a Client authenticated with token.
func New(token string, opts Options) *Client {
	if opts.RequestsPerSecond <= 0 {
		opts = DefaultOptions()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Client{
		token:      token,
		apiURL:     defaultAPIURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
	}
}

// SetAPIURL overrides the endpoint, for tests.
func (c *Client) SetAPIURL(url string) { c.apiURL = url }

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string   `json:"message"`
	Type    string   `json:"type"`
	Path    []string `json:"path"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors,omitempty"`
}

// GraphQLErrors carries the raw error list of a GraphQL response that
// completed (HTTP 200) but reported application-level errors.
type GraphQLErrors struct {
	Errors []graphQLError
}

func (e *GraphQLErrors) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ge := range e.Errors {
		msgs[i] = ge.Message
	}
	return fmt.Sprintf("GraphQL errors: %s", strings.Join(msgs, "; "))
}

// IsRateLimited reports whether a GraphQL error carries GitHub's
// RATE_LIMITED error code.
func IsRateLimited(err error) bool {
	var gqlErr *GraphQLErrors
	if !asGraphQLErrors(err, &gqlErr) {
		return false
	}
	for _, ge := range gqlErr.Errors {
		if ge.Type == "RATE_LIMITED" {
			return true
		}
	}
	return false
}

// IsProjectNotFound reports whether err is a NOT_FOUND error scoped to a
// projectV2 path (spec.md §4.2: swallowed at the sync engine for that
// target only).
func IsProjectNotFound(err error) bool {
	var gqlErr *GraphQLErrors
	if !asGraphQLErrors(err, &gqlErr) {
		return false
	}
	for _, ge := range gqlErr.Errors {
		if ge.Type != "NOT_FOUND" {
			continue
		}
		for _, p := range ge.Path {
			if p == "projectV2" {
				return true
			}
		}
	}
	return false
}

// NewRateLimitedError builds a synthetic RATE_LIMITED error, for tests in
// other packages that need to simulate the sync engine's abort path
// without a real GraphQL transport.
func NewRateLimitedError(message string) error {
	return &GraphQLErrors{Errors: []graphQLError{{Message: message, Type: "RATE_LIMITED"}}}
}

// NewNotFoundError builds a synthetic NOT_FOUND error scoped to path, for
// tests simulating the sync engine's per-target skip path.
func NewNotFoundError(message string, path ...string) error {
	return &GraphQLErrors{Errors: []graphQLError{{Message: message, Type: "NOT_FOUND", Path: path}}}
}

func asGraphQLErrors(err error, target **GraphQLErrors) bool {
	gqlErr, ok := err.(*GraphQLErrors)
	if !ok {
		return false
	}
	*target = gqlErr
	return true
}

// query performs one throttled GraphQL request and decodes the data field
// into result, without any retry logic (see GraphQLWithBackoff for that).
func (c *Client) query(ctx context.Context, query string, variables map[string]any, result any) error {
	opName := extractOpName(query)

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	reqBody := graphQLRequest{Query: query, Variables: variables}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request %s: %w", opName, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response %s: %w", opName, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		log.Printf("[ratelimit] %s received HTTP 429", opName)
		return &GraphQLErrors{Errors: []graphQLError{{Message: "HTTP 429", Type: "RATE_LIMITED"}}}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: API error (status %d): %s", opName, resp.StatusCode, string(respBody))
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return fmt.Errorf("parse response %s: %w", opName, err)
	}

	if len(gqlResp.Errors) > 0 {
		if rateLimited(gqlResp.Errors) {
			log.Printf("[ratelimit] %s rate limited by GitHub API", opName)
		}
		return &GraphQLErrors{Errors: gqlResp.Errors}
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(gqlResp.Data, result); err != nil {
		return fmt.Errorf("parse data %s: %w", opName, err)
	}
	return nil
}

func rateLimited(errs []graphQLError) bool {
	for _, e := range errs {
		if e.Type == "RATE_LIMITED" || strings.Contains(strings.ToUpper(e.Message), "RATE LIMIT") {
			return true
		}
	}
	return false
}

// extractOpName finds the operation name: the first word before '{' or
// '(' following "query" or "mutation".
func extractOpName(query string) string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "unknown"
	}
	for _, kw := range []string{"query ", "mutation "} {
		idx := strings.Index(trimmed, kw)
		if idx < 0 {
			continue
		}
		return firstToken(trimmed[idx+len(kw):])
	}
	return "anonymous"
}

// firstToken returns the leading identifier up to the first '{', '(',
// space, or newline.
func firstToken(s string) string {
	for i, r := range s {
		if r == '{' || r == '(' || r == ' ' || r == '\n' {
			return strings.TrimSpace(s[:i])
		}
	}
	return strings.TrimSpace(s)
}
