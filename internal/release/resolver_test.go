package release

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uerrors "github.com/adamancini/updraft/internal/errors"
)

func newAPI(t *testing.T, packages []Package, releases map[string]Info) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/version/check" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")

		name := r.URL.Query().Get("package")
		if name == "" {
			_ = json.NewEncoder(w).Encode(packages)
			return
		}
		info, ok := releases[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(info)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewResolver(t *testing.T) {
	r := NewResolver("http://example.invalid/version/check")

	assert.Equal(t, "http://example.invalid/version/check", r.baseURL)
	require.NotNil(t, r.httpClient)
	assert.Equal(t, DefaultTimeout, r.httpClient.Timeout)
}

func TestNewResolverWithOptions(t *testing.T) {
	client := &http.Client{}
	r := NewResolver("http://x", WithHTTPClient(client), WithTimeout(3*time.Second), WithUserAgent("test-agent"))

	assert.Same(t, client, r.httpClient)
	assert.Equal(t, 3*time.Second, client.Timeout)
	assert.Equal(t, "test-agent", r.userAgent)
}

func TestListPackages(t *testing.T) {
	server := newAPI(t, []Package{{Name: "omen"}, {Name: ""}, {Name: "omen-lite"}}, nil)

	names, err := NewResolver(server.URL + "/version/check").ListPackages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"omen", "omen-lite"}, names)
}

func TestListPackagesIgnoresExtraFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"omen","version":"1.0.0","url":"x"}]`))
	}))
	defer server.Close()

	names, err := NewResolver(server.URL).ListPackages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"omen"}, names)
}

func TestLatest(t *testing.T) {
	server := newAPI(t, nil, map[string]Info{
		"omen": {Version: "2.1.0", URL: "https://git.example.com/omen.git", News: "+Dark mode"},
	})

	info, err := NewResolver(server.URL + "/version/check").Latest(context.Background(), "omen")
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", info.Version)
	assert.Equal(t, "https://git.example.com/omen.git", info.URL)
	assert.Equal(t, "+Dark mode", info.News)
}

func TestLatestEscapesPackageName(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("package")
		_, _ = w.Write([]byte(`{"version":"1","url":"u","news":""}`))
	}))
	defer server.Close()

	_, err := NewResolver(server.URL).Latest(context.Background(), "a&b c")
	require.NoError(t, err)
	assert.Equal(t, "a&b c", gotQuery)
}

func TestLatestNonSuccessStatus(t *testing.T) {
	server := newAPI(t, nil, map[string]Info{})

	_, err := NewResolver(server.URL+"/version/check").Latest(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, uerrors.IsCode(err, uerrors.CodeResolution))
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestLatestIncompleteMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"version":"","url":"","news":""}`))
	}))
	defer server.Close()

	_, err := NewResolver(server.URL).Latest(context.Background(), "omen")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestListPackagesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewResolver(server.URL).ListPackages(context.Background())
	require.Error(t, err)
	assert.True(t, uerrors.IsCode(err, uerrors.CodeResolution))
}

func TestListPackagesMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	_, err := NewResolver(server.URL).ListPackages(context.Background())
	require.Error(t, err)
	assert.True(t, uerrors.IsCode(err, uerrors.CodeResolution))
}

func TestListPackagesTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	_, err := NewResolver(target).ListPackages(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkFailure)
	assert.True(t, uerrors.IsCode(err, uerrors.CodeResolution))
}

func TestListPackagesCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResolver(server.URL).ListPackages(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
