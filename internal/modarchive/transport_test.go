package modarchive

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billmal071/trackermeta/internal/anchors"
	"github.com/billmal071/trackermeta/internal/retry"
)

func TestCollyTransport_Fetch(t *testing.T) {
	var gotUA, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>hello</html>"))
	}))
	defer srv.Close()

	transport := NewCollyTransport("trackermeta-test", 5*time.Second)
	body, err := transport.Fetch(context.Background(), srv.URL+"/index.php", url.Values{"query": {"a b"}})
	require.NoError(t, err)

	assert.Equal(t, "<html>hello</html>", body)
	assert.Equal(t, "trackermeta-test", gotUA)
	assert.Equal(t, "a b", gotQuery)
}

func TestCollyTransport_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	transport := NewCollyTransport("trackermeta-test", 5*time.Second)
	_, err := transport.Fetch(context.Background(), srv.URL, nil)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrTransport)
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode())
	assert.Equal(t, retry.ErrorRetryable, retry.CategorizeError(err))
}

func TestCollyTransport_AnySuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNonAuthoritativeInfo)
		_, _ = w.Write([]byte("<html>mirror</html>"))
	}))
	defer srv.Close()

	body, err := NewCollyTransport("t", time.Second).Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "<html>mirror</html>", body)
}

func TestCollyTransport_NotFoundKeepsStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	body, err := NewCollyTransport("t", time.Second).Fetch(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Empty(t, body)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusNotFound, te.StatusCode())
	assert.Contains(t, err.Error(), "Not Found")
}

func TestCollyTransport_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewCollyTransport("t", time.Second).Fetch(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, retry.ErrorRateLimited, retry.CategorizeError(err))
}

func TestCollyTransport_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewCollyTransport("t", time.Second).Fetch(context.Background(), addr, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestCollyTransport_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCollyTransport("t", time.Second).Fetch(ctx, "http://127.0.0.1:1/", nil)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildURL(t *testing.T) {
	got, err := buildURL("https://modarchive.org/index.php", url.Values{
		"request": {"search"},
		"query":   {"no way"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://modarchive.org/index.php?query=no+way&request=search", got)

	got, err = buildURL("https://modarchive.org/index.php?x=1", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://modarchive.org/index.php?x=1", got)
}

// TestClient_EndToEnd drives search and detail against a local archive that
// fails the first request of every kind
func TestClient_EndToEnd(t *testing.T) {
	detail := defaultDetailPage(anchors.Default()).render()
	var requests atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		if n%2 == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		switch r.URL.Query().Get("request") {
		case "search":
			_, _ = w.Write([]byte(searchPage(321, "axelf.xm")))
		case "view_by_moduleid":
			_, _ = w.Write([]byte(detail))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(
		WithBaseURL(srv.URL+"/"),
		WithTransport(NewCollyTransport("trackermeta-test", 5*time.Second)),
		WithRetryPolicy(retry.Bounded{MaxRetries: 1, Backoff: retry.NoDelay}),
	)

	candidates, err := client.ResolveFilename(context.Background(), "axelf")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, 321, candidates[0].ID)

	info, err := client.Get(context.Background(), candidates[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 321, info.ID)
	assert.Equal(t, "axelf.xm", info.Filename)
	assert.Equal(t, candidates[0].DownloadLink(), info.DownloadLink())
	assert.Equal(t, int32(4), requests.Load())
}
