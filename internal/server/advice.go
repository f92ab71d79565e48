package server

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/rustyeddy/tradejournal/advisor"
)

// advisory is one kind of model request. Only the response to the most
// recently issued request is kept; older ones are reported stale.
type advisory[T any] struct {
	tracker advisor.Tracker

	mu     sync.Mutex
	latest *T
}

func (a *advisory[T]) set(v T) {
	a.mu.Lock()
	a.latest = &v
	a.mu.Unlock()
}

func (a *advisory[T]) get() *T {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.latest
}

type critiqueResponse struct {
	TradeID string `json:"tradeId"`
	Text    string `json:"text"`
}

type patternsResponse struct {
	PortfolioID string          `json:"portfolioId"`
	Themes      []advisor.Theme `json:"themes"`
	MainLeak    *advisor.Theme  `json:"mainLeak"`
}

type staleResponse struct {
	Stale bool `json:"stale"`
}

func (s *Server) advisorReady(w http.ResponseWriter) bool {
	if s.advisor == nil {
		s.writeError(w, http.StatusServiceUnavailable, "advisor not configured")
		return false
	}
	return true
}

func (s *Server) handleCritique(w http.ResponseWriter, r *http.Request) {
	if !s.advisorReady(w) {
		return
	}
	t, err := s.repo.Trade(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeRepoError(w, err)
		return
	}

	resp, ok := advisor.Run(r.Context(), &s.critique.tracker, func(ctx context.Context) critiqueResponse {
		return critiqueResponse{TradeID: t.ID, Text: s.advisor.CritiqueTrade(ctx, t)}
	}, s.critique.set)
	if !ok {
		s.writeJSON(w, http.StatusConflict, staleResponse{Stale: true})
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	if !s.advisorReady(w) {
		return
	}
	p, trades, ok := s.portfolioTrades(w, r)
	if !ok {
		return
	}

	resp, ok := advisor.Run(r.Context(), &s.patterns.tracker, func(ctx context.Context) patternsResponse {
		themes := s.advisor.AnalyzePatterns(ctx, trades)
		return patternsResponse{PortfolioID: p.ID, Themes: themes, MainLeak: advisor.MainLeak(themes)}
	}, s.patterns.set)
	if !ok {
		s.writeJSON(w, http.StatusConflict, staleResponse{Stale: true})
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !s.advisorReady(w) {
		return
	}
	var body struct {
		Query string `json:"query"`
	}
	if err := decode(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	query := strings.TrimSpace(body.Query)
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	res, ok := advisor.Run(r.Context(), &s.search.tracker, func(ctx context.Context) advisor.SearchResult {
		return s.advisor.SearchMarket(ctx, query)
	}, s.search.set)
	if !ok {
		s.writeJSON(w, http.StatusConflict, staleResponse{Stale: true})
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// handleLatestAdvice returns the last applied response of each kind.
func (s *Server) handleLatestAdvice(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Critique *critiqueResponse     `json:"critique"`
		Patterns *patternsResponse     `json:"patterns"`
		Search   *advisor.SearchResult `json:"search"`
	}{
		Critique: s.critique.get(),
		Patterns: s.patterns.get(),
		Search:   s.search.get(),
	}
	s.writeJSON(w, http.StatusOK, resp)
}
