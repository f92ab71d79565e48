package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rustyeddy/tradejournal/calendar"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/stats"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "tradejournal",
	})
}

func (s *Server) handleListPortfolios(w http.ResponseWriter, r *http.Request) {
	accs, err := s.repo.Accounts(r.Context())
	if err != nil {
		s.writeRepoError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, accs)
}

func (s *Server) handleSavePortfolio(w http.ResponseWriter, r *http.Request) {
	var p journal.Portfolio
	if err := decode(r, &p); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	saved, err := s.repo.SaveAccount(r.Context(), p)
	if err != nil {
		s.writeRepoError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := s.repo.Account(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeRepoError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// portfolioTrades resolves the {id} portfolio and loads its trades.
func (s *Server) portfolioTrades(w http.ResponseWriter, r *http.Request) (journal.Portfolio, []journal.Trade, bool) {
	p, err := s.repo.Account(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeRepoError(w, err)
		return journal.Portfolio{}, nil, false
	}
	trades, err := s.repo.Trades(r.Context(), p.ID)
	if err != nil {
		s.writeRepoError(w, err)
		return journal.Portfolio{}, nil, false
	}
	return p, trades, true
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	var filter *journal.Result
	if v := r.URL.Query().Get("result"); v != "" && v != "All" {
		res, err := journal.ParseResult(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter = &res
	}

	_, trades, ok := s.portfolioTrades(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, journal.FilterByResult(trades, filter))
}

// handleSaveTrade stamps the trade with the portfolio in the path. An existing
// trade can be edited but never moved to another portfolio.
func (s *Server) handleSaveTrade(w http.ResponseWriter, r *http.Request) {
	var t journal.Trade
	if err := decode(r, &t); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := time.Parse(journal.DateLayout, t.Date); err != nil {
		s.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	p, err := s.repo.Account(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeRepoError(w, err)
		return
	}

	t.AccountID = p.ID

	saved, err := s.repo.SaveTrade(r.Context(), t)
	if err != nil {
		s.writeRepoError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.Trade(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeRepoError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteTrade(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReviewTrade checks a trade against the configured rules.
func (s *Server) handleReviewTrade(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.Trade(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeRepoError(w, err)
		return
	}
	p, err := s.repo.Account(r.Context(), t.AccountID)
	if err != nil {
		s.writeRepoError(w, err)
		return
	}
	trades, err := s.repo.Trades(r.Context(), p.ID)
	if err != nil {
		s.writeRepoError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats.Review(s.rules, p, trades, t))
}

type statsResponse struct {
	Portfolio   journal.Portfolio `json:"portfolio"`
	Summary     stats.Summary     `json:"summary"`
	Extended    stats.Extended    `json:"extended"`
	EquityCurve []stats.Point     `json:"equityCurve"`
	Breakdown   stats.Breakdowns  `json:"breakdown"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	p, trades, ok := s.portfolioTrades(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, statsResponse{
		Portfolio:   p,
		Summary:     stats.Summarize(trades, p.InitialBalance),
		Extended:    stats.ExtendedMetrics(trades, p.InitialBalance),
		EquityCurve: stats.EquityCurve(trades, p.InitialBalance),
		Breakdown:   stats.Breakdown(trades),
	})
}

type monthRef struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

type calendarResponse struct {
	calendar.Grid
	Total float64  `json:"total"`
	Prev  monthRef `json:"prev"`
	Next  monthRef `json:"next"`
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	year, month := now.Year(), now.Month()

	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}
	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			s.writeError(w, http.StatusBadRequest, "month must be 1-12")
			return
		}
		month = time.Month(m)
	}

	_, trades, ok := s.portfolioTrades(w, r)
	if !ok {
		return
	}

	grid := calendar.Month(year, month, trades)
	py, pm := calendar.Step(year, month, -1)
	ny, nm := calendar.Step(year, month, 1)
	s.writeJSON(w, http.StatusOK, calendarResponse{
		Grid:  grid,
		Total: grid.Total(),
		Prev:  monthRef{Year: py, Month: pm},
		Next:  monthRef{Year: ny, Month: nm},
	})
}

func (s *Server) handleGetOnboarding(w http.ResponseWriter, r *http.Request) {
	v, err := s.repo.Onboarded(r.Context())
	if err != nil {
		s.writeRepoError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"onboarded": v})
}

func (s *Server) handleSetOnboarding(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Onboarded bool `json:"onboarded"`
	}
	if err := decode(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.SetOnboarded(r.Context(), body.Onboarded); err != nil {
		s.writeRepoError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"onboarded": body.Onboarded})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}

func (s *Server) writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, journal.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, journal.ErrReparent):
		s.writeError(w, http.StatusConflict, "trade belongs to another portfolio")
		return
	case errors.Is(err, journal.ErrCorrupt):
		s.log.Error().Err(err).Msg("Refusing to overwrite corrupt data")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.Error().Err(err).Msg("Repository error")
	s.writeError(w, http.StatusInternalServerError, "internal error")
}
