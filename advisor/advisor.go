package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradejournal/journal"
)

// Fallback texts returned in place of model output.
const (
	CritiqueUnavailable = "The AI mentor is refining its edge. Please try again in a moment."
	CritiqueEmpty       = "Analysis failed. Ensure trade notes and images provide enough context."
	SearchEmpty         = "No insights found for this query."
	SearchUnavailable   = "Unable to reach the global trading network. Please check your connection."
	DefaultSourceTitle  = "Market Source"
)

// MinNoteLength is the trimmed note length a trade must exceed to take part
// in pattern analysis.
const MinNoteLength = 5

// Models names the model used by each operation.
type Models struct {
	Critique string `yaml:"critique" json:"critique"`
	Patterns string `yaml:"patterns" json:"patterns"`
	Search   string `yaml:"search" json:"search"`
}

func DefaultModels() Models {
	return Models{
		Critique: "gemini-3-pro-preview",
		Patterns: "gemini-3-flash-preview",
		Search:   "gemini-3-flash-preview",
	}
}

// Theme is one behavioural pattern found in the journal notes.
type Theme struct {
	Theme          string  `json:"theme"`
	Description    string  `json:"description"`
	WinCount       int     `json:"winCount"`
	LossCount      int     `json:"lossCount"`
	TotalPnL       float64 `json:"totalPnL"`
	Recommendation string  `json:"recommendation"`
}

// LossRatio is losses over decided trades, or losses alone when the theme
// has no wins or losses.
func (t Theme) LossRatio() float64 {
	n := t.WinCount + t.LossCount
	if n == 0 {
		n = 1
	}
	return float64(t.LossCount) / float64(n)
}

type SearchResult struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// Advisor runs the journal's model-backed operations. Model failures are
// logged and replaced by fixed fallbacks; no operation returns an error.
type Advisor struct {
	model          Model
	models         Models
	thinkingBudget int
	log            zerolog.Logger
}

func New(model Model, models Models, thinkingBudget int, log zerolog.Logger) *Advisor {
	def := DefaultModels()
	if models.Critique == "" {
		models.Critique = def.Critique
	}
	if models.Patterns == "" {
		models.Patterns = def.Patterns
	}
	if models.Search == "" {
		models.Search = def.Search
	}
	return &Advisor{
		model:          model,
		models:         models,
		thinkingBudget: thinkingBudget,
		log:            log.With().Str("component", "advisor").Logger(),
	}
}

func (a *Advisor) failed(err error, op string) {
	if errors.Is(err, context.Canceled) {
		a.log.Debug().Str("op", op).Msg("Request superseded")
		return
	}
	a.log.Error().Err(err).Str("op", op).Msg("Model request failed")
}

// CritiqueTrade asks for a written review of one trade. Entry and exit
// screenshots are attached when they are well-formed data URLs.
func (a *Advisor) CritiqueTrade(ctx context.Context, t journal.Trade) string {
	parts := []Part{Text(critiquePrompt(t))}
	if b, ok := ParseDataURL(t.EntryImage); ok {
		parts = append(parts, Text("## Entry chart"), Part{InlineData: &b})
	}
	if b, ok := ParseDataURL(t.ExitImage); ok {
		parts = append(parts, Text("## Exit chart"), Part{InlineData: &b})
	}

	resp, err := a.model.Generate(ctx, Request{
		Model:          a.models.Critique,
		System:         critiqueSystem,
		Parts:          parts,
		ThinkingBudget: a.thinkingBudget,
	})
	if err != nil {
		a.failed(err, "critique")
		return CritiqueUnavailable
	}
	if resp.Text == "" {
		return CritiqueEmpty
	}
	return resp.Text
}

// Annotated returns the closed trades whose notes are long enough to analyse.
func Annotated(trades []journal.Trade) []journal.Trade {
	out := make([]journal.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Closed() && len(strings.TrimSpace(t.Notes)) > MinNoteLength {
			out = append(out, t)
		}
	}
	return out
}

// AnalyzePatterns looks for behavioural themes across the annotated trades.
// It does not call the model when no trade qualifies. Failures yield an
// empty result.
func (a *Advisor) AnalyzePatterns(ctx context.Context, trades []journal.Trade) []Theme {
	annotated := Annotated(trades)
	if len(annotated) == 0 {
		return []Theme{}
	}

	resp, err := a.model.Generate(ctx, Request{
		Model:  a.models.Patterns,
		System: patternsSystem,
		Parts:  []Part{Text(patternsPrompt(annotated))},
		JSON:   true,
		Schema: themeSchema,
	})
	if err != nil {
		a.failed(err, "patterns")
		return []Theme{}
	}

	text := resp.Text
	if strings.TrimSpace(text) == "" {
		text = "[]"
	}
	var themes []Theme
	if err := json.Unmarshal([]byte(text), &themes); err != nil {
		a.failed(err, "patterns")
		return []Theme{}
	}
	if themes == nil {
		themes = []Theme{}
	}
	return themes
}

// SearchMarket answers a free-text market question with web grounding.
func (a *Advisor) SearchMarket(ctx context.Context, query string) SearchResult {
	resp, err := a.model.Generate(ctx, Request{
		Model:  a.models.Search,
		System: searchSystem,
		Parts:  []Part{Text(query)},
		Search: true,
	})
	if err != nil {
		a.failed(err, "search")
		return SearchResult{Text: SearchUnavailable, Sources: []Source{}}
	}

	out := SearchResult{Text: resp.Text, Sources: make([]Source, 0, len(resp.Sources))}
	if out.Text == "" {
		out.Text = SearchEmpty
	}
	for _, s := range resp.Sources {
		if s.Title == "" {
			s.Title = DefaultSourceTitle
		}
		out.Sources = append(out.Sources, s)
	}
	return out
}

// MainLeak picks the theme costing the trader most. Walking the list, a
// theme replaces the current pick only when it has both a higher loss ratio
// and a lower total PnL. It returns nil for no themes.
func MainLeak(themes []Theme) *Theme {
	if len(themes) == 0 {
		return nil
	}
	leak := themes[0]
	for _, t := range themes[1:] {
		if t.LossRatio() > leak.LossRatio() && t.TotalPnL < leak.TotalPnL {
			leak = t
		}
	}
	return &leak
}
