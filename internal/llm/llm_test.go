package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsWithoutKeyAreNotConfigured(t *testing.T) {
	t.Parallel()

	_, err := NewOpenAI("", "", "")
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewGemini(context.Background(), "  ", "")
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = Unconfigured{}.Complete(context.Background(), "hi")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, classify(401, ""), ErrAuth)
	assert.ErrorIs(t, classify(0, "API key not valid"), ErrAuth)
	assert.ErrorIs(t, classify(429, ""), ErrRateLimited)
	assert.ErrorIs(t, classify(0, "Error 429: Resource has been exhausted"), ErrRateLimited)
	assert.ErrorIs(t, classify(500, "boom"), ErrTransport)
}

func TestOpenAIComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "say hi", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  hi there  "}}]}`))
	}))
	defer srv.Close()

	c, err := NewOpenAI("sk-test", srv.URL+"/v1", "test-model")
	require.NoError(t, err)
	defer c.Close()

	text, err := c.Complete(context.Background(), "say hi")
	require.NoError(t, err)
	assert.Equal(t, "hi there", text)
}

func TestOpenAICompleteErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "auth", status: http.StatusUnauthorized, body: `{"error":"bad key"}`, want: ErrAuth},
		{name: "rate limit", status: http.StatusTooManyRequests, body: `{"error":"slow down"}`, want: ErrRateLimited},
		{name: "server", status: http.StatusBadGateway, body: `{"error":"upstream"}`, want: ErrTransport},
		{name: "empty", status: http.StatusOK, body: `{"choices":[]}`, want: ErrEmptyResponse},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c, err := NewOpenAI("sk-test", srv.URL, "")
			require.NoError(t, err)
			defer c.Close()

			_, err = c.Complete(context.Background(), "x")
			require.ErrorIs(t, err, tc.want)
			assert.NotErrorIs(t, err, ErrNotConfigured)
		})
	}
}
