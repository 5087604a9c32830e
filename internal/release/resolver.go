package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	uerrors "github.com/adamancini/updraft/internal/errors"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.omenlist.xyz/version/check"
	DefaultTimeout = 30 * time.Second
)

// Error variables for specific error conditions.
var (
	ErrNetworkFailure   = fmt.Errorf("network request failed")
	ErrUnexpectedStatus = fmt.Errorf("unexpected response status")
	ErrIncomplete       = fmt.Errorf("release metadata incomplete")
)

// Info describes the latest release of a package.
type Info struct {
	Version string `json:"version" yaml:"version"`
	URL     string `json:"url" yaml:"url"`
	News    string `json:"news" yaml:"news"`
}

// Package is one entry of the installable package listing. Only Name is consumed.
type Package struct {
	Name string `json:"name"`
}

// Resolver handles release lookups against the release API.
type Resolver struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets a custom HTTP client for the resolver.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Resolver) {
		r.httpClient.Timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(r *Resolver) {
		r.userAgent = ua
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Resolver) {
		r.log = log
	}
}

// NewResolver creates a resolver for the API rooted at baseURL.
func NewResolver(baseURL string, opts ...Option) *Resolver {
	r := &Resolver{
		baseURL:   baseURL,
		userAgent: "updraft",
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListPackages returns the names of every installable package.
func (r *Resolver) ListPackages(ctx context.Context) ([]string, error) {
	var packages []Package
	if err := r.get(ctx, r.baseURL, &packages); err != nil {
		return nil, uerrors.New(uerrors.CodeResolution, "failed to list packages", err)
	}

	names := make([]string, 0, len(packages))
	for _, p := range packages {
		if p.Name == "" {
			continue
		}
		names = append(names, p.Name)
	}

	r.log.Debug().Int("count", len(names)).Msg("listed installable packages")
	return names, nil
}

// Latest returns the latest release metadata for the named package.
func (r *Resolver) Latest(ctx context.Context, name string) (*Info, error) {
	endpoint, err := url.Parse(r.baseURL)
	if err != nil {
		return nil, uerrors.New(uerrors.CodeResolution, "invalid API URL", err)
	}
	q := endpoint.Query()
	q.Set("package", name)
	endpoint.RawQuery = q.Encode()

	var info Info
	if err := r.get(ctx, endpoint.String(), &info); err != nil {
		return nil, uerrors.New(uerrors.CodeResolution, fmt.Sprintf("failed to resolve latest release of %s", name), err)
	}
	if info.Version == "" || info.URL == "" {
		return nil, uerrors.New(uerrors.CodeResolution, fmt.Sprintf("failed to resolve latest release of %s", name), ErrIncomplete)
	}

	r.log.Debug().Str("package", name).Str("version", info.Version).Str("url", info.URL).Msg("resolved latest release")
	return &info, nil
}

// get issues a single GET and decodes the JSON body into v.
func (r *Resolver) get(ctx context.Context, target string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", r.userAgent)

	r.log.Debug().Str("url", target).Msg("GET")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
