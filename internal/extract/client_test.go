package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icetimehq/icetime-api/pkg/config"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, minInterval time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.ExtractionConfig{
		APIKey:             "test-key",
		BaseURL:            srv.URL,
		Model:              "claude-3-sonnet-20240229",
		MaxTokens:          1000,
		MinRequestInterval: minInterval,
		RequestTimeout:     5 * time.Second,
	}, nil)
}

func TestExtractReturnsFirstTextBlock(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-3-sonnet-20240229", req["model"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": `{"ok":true}`}},
		})
	}, time.Millisecond)

	text, err := client.Extract(context.Background(), "", "extract the events")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)
}

func TestExtractSurfacesServiceError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"type": "overloaded_error", "message": "overloaded"},
		})
	}, time.Millisecond)

	_, err := client.Extract(context.Background(), "", "extract")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrExtractionService.Code))
}

func TestExtractEnforcesMinimumInterval(t *testing.T) {
	const interval = 60 * time.Millisecond

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": "ok"}},
		})
	}, interval)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Extract(context.Background(), "", "tick")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Three requests sharing one limiter need at least two full intervals.
	assert.GreaterOrEqual(t, time.Since(start), 2*interval)
}

func TestExtractRespectsContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": "ok"}},
		})
	}, time.Hour)

	// Burn the initial token so the next call must wait.
	_, err := client.Extract(context.Background(), "", "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Extract(ctx, "", "second")
	assert.Error(t, err)
}
