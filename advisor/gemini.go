package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultEndpoint is the public Generative Language API.
const DefaultEndpoint = "https://generativelanguage.googleapis.com"

// ErrNoAPIKey is returned by Generate when no key is configured.
var ErrNoAPIKey = errors.New("gemini api key missing")

// Gemini calls the generateContent REST method. It configures no timeout
// and never retries; callers bound requests with their context.
type Gemini struct {
	apiKey   string
	endpoint string
	client   *http.Client
	log      zerolog.Logger
}

func NewGemini(apiKey, endpoint string, log zerolog.Logger) *Gemini {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Gemini{
		apiKey:   apiKey,
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{},
		log:      log.With().Str("component", "gemini").Logger(),
	}
}

type geminiPart struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiThinking struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema         `json:"responseSchema,omitempty"`
	ThinkingConfig   *geminiThinking `json:"thinkingConfig,omitempty"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content           geminiContent `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

func buildGeminiRequest(req Request) geminiRequest {
	parts := make([]geminiPart, 0, len(req.Parts))
	for _, p := range req.Parts {
		parts = append(parts, geminiPart{Text: p.Text, InlineData: p.InlineData})
	}
	out := geminiRequest{Contents: []geminiContent{{Role: "user", Parts: parts}}}

	if req.System != "" {
		out.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	if req.Search {
		out.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	}

	var gc geminiGenerationConfig
	if req.JSON {
		gc.ResponseMimeType = "application/json"
		gc.ResponseSchema = req.Schema
	}
	if req.ThinkingBudget > 0 {
		gc.ThinkingConfig = &geminiThinking{ThinkingBudget: req.ThinkingBudget}
	}
	if gc != (geminiGenerationConfig{}) {
		out.GenerationConfig = &gc
	}
	return out
}

// Generate sends req and returns the first candidate's text and the web
// sources it was grounded on.
func (g *Gemini) Generate(ctx context.Context, req Request) (Response, error) {
	if g.apiKey == "" {
		return Response{}, ErrNoAPIKey
	}

	body, err := json.Marshal(buildGeminiRequest(req))
	if err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.endpoint, req.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	start := time.Now()
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}
	g.log.Debug().
		Str("model", req.Model).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("generateContent")

	if resp.StatusCode >= 300 {
		return Response{}, fmt.Errorf("gemini http %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var gr geminiResponse
	if err := json.Unmarshal(data, &gr); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	return gr.response(), nil
}

func (gr geminiResponse) response() Response {
	var out Response
	if len(gr.Candidates) == 0 {
		return out
	}
	c := gr.Candidates[0]

	var text strings.Builder
	for _, p := range c.Content.Parts {
		text.WriteString(p.Text)
	}
	out.Text = text.String()

	if c.GroundingMetadata != nil {
		for _, chunk := range c.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil {
				continue
			}
			out.Sources = append(out.Sources, Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
		}
	}
	return out
}
