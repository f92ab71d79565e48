// Package advisor sends journal data to a hosted generative model for trade
// critique, behavioural pattern analysis and market search.
package advisor

import "context"

// Part is one piece of prompt content: text, or inline base64 data such as a
// chart screenshot.
type Part struct {
	Text       string
	InlineData *Blob
}

// Blob is inline binary content. Data is base64 encoded.
type Blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Schema describes a structured JSON response.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

type Request struct {
	Model  string
	System string
	Parts  []Part

	// JSON asks for an application/json response shaped by Schema.
	JSON   bool
	Schema *Schema

	// Search enables web search grounding.
	Search bool

	// ThinkingBudget is left to the model when 0.
	ThinkingBudget int
}

// Source is a web page the model grounded its answer on.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

type Response struct {
	Text    string
	Sources []Source
}

// Model generates a response for a request.
type Model interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Text is shorthand for a text Part.
func Text(s string) Part { return Part{Text: s} }
