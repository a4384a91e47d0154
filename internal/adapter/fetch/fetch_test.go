package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_SendsUserAgent(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	c := New("TestAgent/1.0", 5*time.Second)
	body, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), body)
	assert.Equal(t, "TestAgent/1.0", gotAgent)
}

func TestFetch_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("moved here"))
	})

	c := New("TestAgent/1.0", 5*time.Second)
	body, err := c.Fetch(context.Background(), srv.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, []byte("moved here"), body)
}

func TestFetch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New("TestAgent/1.0", 5*time.Second)
	_, err := c.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestReadAllLimit(t *testing.T) {
	body, err := readAllLimit(strings.NewReader("abc"), 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), body)

	body, err = readAllLimit(strings.NewReader("exactly10!"), 10)
	require.NoError(t, err)
	assert.Len(t, body, 10)

	_, err = readAllLimit(strings.NewReader("elevenbytes"), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "larger than")
}

func TestFetchPage_RejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	c := New("TestAgent/1.0", 5*time.Second)
	_, err := c.FetchPage(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not html")
}

func TestFetchPage_AcceptsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	c := New("TestAgent/1.0", 5*time.Second)
	body, err := c.FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("<html></html>"), body)
}
