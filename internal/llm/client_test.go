package llm

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
)

func TestNewClient_DisabledWithoutKey(t *testing.T) {
	c := NewClient(Options{})
	assert.Nil(t, c)
	assert.False(t, c.Enabled())

	_, err := c.Complete(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewClient_ProviderDefaults(t *testing.T) {
	a := NewClient(Options{APIKey: "k"})
	assert.Equal(t, ProviderAnthropic, a.Provider())
	assert.Equal(t, anthropicModel, a.Model())

	o := NewClient(Options{APIKey: "k", Provider: ProviderOpenAI})
	assert.Equal(t, openAIModel, o.Model())
	assert.Equal(t, openAIURL, o.url)
}

func TestComplete_Anthropic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "be brief", req.System)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "what now?", req.Messages[0].Content)

		_, _ = w.Write([]byte(`{"content":[{"text":"{\"action\":\"rest\"}"}],"usage":{"input_tokens":3,"output_tokens":4}}`))
	}))
	defer srv.Close()

	c := NewClient(Options{APIKey: "secret", BaseURL: srv.URL})
	out, err := c.Complete(context.Background(), "be brief", "what now?")
	require.NoError(t, err)
	assert.Equal(t, `{"action":"rest"}`, out)
}

func TestComplete_OpenAICompatible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"plan\":[]}"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Options{APIKey: "secret", Provider: ProviderOpenAI, BaseURL: srv.URL})
	out, err := c.Complete(context.Background(), "json only", "plan my day")
	require.NoError(t, err)
	assert.Equal(t, `{"plan":[]}`, out)
}

func TestComplete_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Options{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "", "hi")

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
}

func TestComplete_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Options{APIKey: "k", Provider: ProviderOpenAI, BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "", "hi")
	assert.EqualError(t, err, "empty response")
}

func TestComplete_HonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(Options{APIKey: "k", BaseURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Complete(ctx, "", "hi")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestComplete_RateLimitWaitRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"text":"ok"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Options{APIKey: "k", BaseURL: srv.URL, RequestsPerMinute: 1, Burst: 1})
	_, err := c.Complete(context.Background(), "", "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.Complete(ctx, "", "second")
	assert.Error(t, err)
}
