//go:build unit

package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookify/internal/core"
)

func geminiServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, ":generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestGeminiComplete_Success(t *testing.T) {
	srv := geminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"parts":[{"text":"A fine answer."}]},"finishReason":"STOP"}]}`)
	defer srv.Close()

	c := NewGeminiClient("test-key", srv.URL, 0, srv.Client())
	text, modelName, err := c.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "A fine answer.", text)
	assert.Equal(t, "gemini-1.5-flash", modelName)
}

func TestGeminiComplete_SendsPrompt(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient("test-key", srv.URL, 0, srv.Client())
	_, _, err := c.Complete(context.Background(), "the prompt")
	require.NoError(t, err)
	require.Len(t, got.Contents, 1)
	require.Len(t, got.Contents[0].Parts, 1)
	assert.Equal(t, "the prompt", got.Contents[0].Parts[0].Text)
}

func TestGeminiComplete_InvalidKey(t *testing.T) {
	srv := geminiServer(t, http.StatusBadRequest,
		`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`)
	defer srv.Close()

	c := NewGeminiClient("test-key", srv.URL, 2, srv.Client())
	_, _, err := c.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, core.ErrInvalidCredential)
}

func TestGeminiComplete_RateLimited(t *testing.T) {
	srv := geminiServer(t, http.StatusTooManyRequests,
		`{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)
	defer srv.Close()

	c := NewGeminiClient("test-key", srv.URL, 2, srv.Client())
	_, _, err := c.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, core.ErrRateLimited)
}

func TestGeminiComplete_SafetyBlock(t *testing.T) {
	srv := geminiServer(t, http.StatusOK,
		`{"promptFeedback":{"blockReason":"SAFETY"}}`)
	defer srv.Close()

	c := NewGeminiClient("test-key", srv.URL, 0, srv.Client())
	_, _, err := c.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, core.ErrContentBlocked)

	srv2 := geminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"parts":[]},"finishReason":"SAFETY"}]}`)
	defer srv2.Close()

	c = NewGeminiClient("test-key", srv2.URL, 0, srv2.Client())
	_, _, err = c.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, core.ErrContentBlocked)
}

func TestGeminiComplete_RetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"code":500,"message":"backend error","status":"INTERNAL"}}`))
			return
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"recovered"}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient("test-key", srv.URL, 2, srv.Client())
	text, _, err := c.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, 2, calls)
}

func TestGeminiComplete_MappedErrorsAreNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	c := NewGeminiClient("test-key", srv.URL, 5, srv.Client())
	_, _, err := c.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, core.ErrRateLimited)
	assert.Equal(t, 1, calls)
}

func TestGeminiConfigured(t *testing.T) {
	assert.False(t, NewGeminiClient("", "", 0, nil).Configured())
	assert.True(t, NewGeminiClient("k", "", 0, nil).Configured())
}
