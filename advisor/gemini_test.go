package advisor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiGenerate(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"candidates": [{
				"content": {"parts": [{"text": "Hello "}, {"text": "trader"}]},
				"groundingMetadata": {"groundingChunks": [
					{"web": {"uri": "https://a.example", "title": "A"}},
					{"retrievedContext": {}},
					{"web": {"uri": "https://b.example"}}
				]}
			}]
		}`)
	}))
	defer srv.Close()

	g := NewGemini("secret", srv.URL+"/", zerolog.New(io.Discard))
	resp, err := g.Generate(context.Background(), Request{
		Model:          "gemini-test",
		System:         "be terse",
		Parts:          []Part{Text("hi"), {InlineData: &Blob{MimeType: "image/png", Data: "AAAA"}}},
		Search:         true,
		ThinkingBudget: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello trader", resp.Text)
	assert.Equal(t, []Source{{Title: "A", URI: "https://a.example"}, {URI: "https://b.example"}}, resp.Sources)

	require.NotNil(t, got)
	assert.Contains(t, got, "systemInstruction")
	assert.Contains(t, got, "tools")
	gc := got["generationConfig"].(map[string]any)
	assert.Equal(t, map[string]any{"thinkingBudget": float64(100)}, gc["thinkingConfig"])
	assert.NotContains(t, gc, "responseMimeType")
}

func TestGeminiJSONRequest(t *testing.T) {
	t.Parallel()

	req := buildGeminiRequest(Request{Model: "m", Parts: []Part{Text("x")}, JSON: true, Schema: themeSchema})
	require.NotNil(t, req.GenerationConfig)
	assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)
	assert.Same(t, themeSchema, req.GenerationConfig.ResponseSchema)
	assert.Nil(t, req.GenerationConfig.ThinkingConfig)
	assert.Nil(t, req.SystemInstruction)
	assert.Empty(t, req.Tools)

	plain := buildGeminiRequest(Request{Model: "m"})
	assert.Nil(t, plain.GenerationConfig)
}

func TestGeminiHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGemini("k", srv.URL, zerolog.New(io.Discard))
	_, err := g.Generate(context.Background(), Request{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGeminiMissingKey(t *testing.T) {
	t.Parallel()

	g := NewGemini("", "", zerolog.New(io.Discard))
	_, err := g.Generate(context.Background(), Request{Model: "m"})
	assert.ErrorIs(t, err, ErrNoAPIKey)
	assert.Equal(t, DefaultEndpoint, g.endpoint)
}

func TestGeminiNoCandidates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	resp, err := NewGemini("k", srv.URL, zerolog.New(io.Discard)).Generate(context.Background(), Request{Model: "m"})
	require.NoError(t, err)
	assert.Empty(t, resp.Text)
	assert.Empty(t, resp.Sources)
}
