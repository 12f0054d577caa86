package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func newTestClient(baseURL string, timeout time.Duration) *OpenRouterClient {
	return NewOpenRouterClient("test-key", baseURL, "test-model", "https://example.test", timeout, nopLogger{})
}

func TestCompleteSuccess(t *testing.T) {
	var captured chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Nice to meet you!"}},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	reply := client.Complete(context.Background(), "you are a tutor", []Message{
		{Role: "user", Content: "hello"},
	})

	assert.Equal(t, "Nice to meet you!", reply)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "test-model", captured.Model)
}

func TestCompleteWithoutAPIKey(t *testing.T) {
	client := NewOpenRouterClient("", "http://unused", "m", "r", time.Second, nopLogger{})
	reply := client.Complete(context.Background(), "prompt", nil)
	assert.Equal(t, fallbackNoKey, reply)
}

func TestCompleteNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	reply := newTestClient(server.URL, time.Second).Complete(context.Background(), "prompt", nil)
	assert.Equal(t, fallbackAPIError, reply)
}

func TestCompleteMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	reply := newTestClient(server.URL, time.Second).Complete(context.Background(), "prompt", nil)
	assert.Equal(t, fallbackBadPayload, reply)
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	reply := newTestClient(server.URL, time.Second).Complete(context.Background(), "prompt", nil)
	assert.Equal(t, fallbackBadPayload, reply)
}

func TestCompleteTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	reply := newTestClient(server.URL, 50*time.Millisecond).Complete(context.Background(), "prompt", nil)
	assert.Equal(t, fallbackTimeout, reply)
}
