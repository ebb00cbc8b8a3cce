package upload

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(url string) *Client {
	c := NewClient(url + "/")
	c.backoff = 0
	return c
}

func TestIngestPostsCSV(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/history/import/alpha", r.URL.Path)
		assert.Equal(t, "text/csv", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "csv-data", string(body))
		w.Write([]byte(`{"sessions_received":2,"sessions_added":1,"sessions_replaced":1,"sets_received":9}`))
	}))
	defer ts.Close()

	res, err := newClient(ts.URL).Ingest(context.Background(), strings.NewReader("csv-data"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.SessionsAdded)
	assert.Equal(t, 1, res.SessionsReplaced)
	assert.Equal(t, 9, res.SetsReceived)
}

func TestIngestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "snapshot store", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"sessions_received":1,"sessions_added":1}`))
	}))
	defer ts.Close()

	res, err := newClient(ts.URL).Ingest(context.Background(), strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.SessionsAdded)
	assert.Equal(t, int32(3), calls.Load())
}

func TestIngestGivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := newClient(ts.URL).Ingest(context.Background(), strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, int32(3), calls.Load())
}

func TestIngestDoesNotRetryBadRequest(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"exercise without session","kind":"validation"}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	_, err := newClient(ts.URL).Ingest(context.Background(), strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int32(1), calls.Load())
}
