package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/advisor"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/risk"
)

// scriptedModel answers by the first prompt part. A query registered in
// block waits for its context to be cancelled.
type scriptedModel struct {
	mu      sync.Mutex
	started chan string
	block   map[string]bool
	text    string
}

func (m *scriptedModel) Generate(ctx context.Context, req advisor.Request) (advisor.Response, error) {
	prompt := req.Parts[0].Text
	if m.started != nil {
		m.started <- prompt
	}
	m.mu.Lock()
	wait := m.block[prompt]
	m.mu.Unlock()
	if wait {
		<-ctx.Done()
		return advisor.Response{}, ctx.Err()
	}
	if req.JSON {
		return advisor.Response{Text: `[{"theme":"FOMO","description":"chasing","winCount":1,"lossCount":3,"totalPnL":-250,"recommendation":"wait for the retest"}]`}, nil
	}
	return advisor.Response{Text: m.text + prompt, Sources: []advisor.Source{{URI: "https://example.com"}}}, nil
}

func newTestServer(t *testing.T, m advisor.Model) (*Server, *journal.Store) {
	t.Helper()
	log := zerolog.New(io.Discard)
	store := journal.NewStore(journal.NewMemoryBlobs(), journal.JSONCodec{}, log)
	var adv *advisor.Advisor
	if m != nil {
		adv = advisor.New(m, advisor.Models{}, 0, log)
	}
	s := New(Config{
		Port:    0,
		Log:     log,
		Repo:    store,
		Advisor: adv,
		Rules:   risk.Policy{MinRR: 2},
		DevMode: true,
		Now:     func() time.Time { return time.Date(2023, time.February, 10, 9, 0, 0, 0, time.UTC) },
	})
	return s, store
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestPortfolios(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/portfolios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	accs := decodeBody[[]journal.Portfolio](t, rec)
	require.Len(t, accs, 1)
	assert.Equal(t, "default", accs[0].ID)

	rec = do(t, s, http.MethodPost, "/api/portfolios", journal.Portfolio{Name: "Funded", Currency: "eur", InitialBalance: 25000})
	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeBody[journal.Portfolio](t, rec)
	assert.Equal(t, "EUR", p.Currency)

	rec = do(t, s, http.MethodGet, "/api/portfolios/"+p.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Funded", decodeBody[journal.Portfolio](t, rec).Name)

	rec = do(t, s, http.MethodGet, "/api/portfolios/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/portfolios", journal.Portfolio{Currency: "USD"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTradeLifecycle(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/portfolios/default/trades", map[string]any{
		"date": "2023-02-06", "symbol": "eurusd", "session": "London", "side": "Long",
		"entry": 100, "stopLoss": 90, "takeProfit": 130, "result": "Win", "pnl": 300,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decodeBody[journal.Trade](t, rec)
	assert.Equal(t, "default", first.AccountID)
	assert.Equal(t, "EURUSD", first.Symbol)
	assert.InDelta(t, 3.0, first.RR, 1e-9)

	rec = do(t, s, http.MethodPost, "/api/portfolios/default/trades", map[string]any{
		"date": "2023-02-07", "symbol": "GBPUSD", "result": "Pending",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	second := decodeBody[journal.Trade](t, rec)

	rec = do(t, s, http.MethodGet, "/api/portfolios/default/trades?result=Win", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	wins := decodeBody[[]journal.Trade](t, rec)
	require.Len(t, wins, 1)
	assert.Equal(t, first.ID, wins[0].ID)

	rec = do(t, s, http.MethodGet, "/api/trades/"+first.ID+"/review", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[risk.Decision](t, rec).Allowed)

	rec = do(t, s, http.MethodGet, "/api/trades/"+second.ID+"/review", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	review := decodeBody[risk.Decision](t, rec)
	assert.False(t, review.Allowed)
	require.Len(t, review.Violations, 1)
	assert.Equal(t, "NO_STOP_OR_ENTRY", review.Violations[0].Code)

	rec = do(t, s, http.MethodDelete, "/api/trades/"+first.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/trades/"+first.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/portfolios/default/trades", nil)
	all := decodeBody[[]journal.Trade](t, rec)
	require.Len(t, all, 1)
	assert.Equal(t, second.ID, all[0].ID)
}

func TestSaveTradeValidation(t *testing.T) {
	t.Parallel()

	s, store := newTestServer(t, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"unknown side", "/api/portfolios/default/trades", map[string]any{"date": "2023-02-06", "side": "Sideways"}, http.StatusBadRequest},
		{"bad date", "/api/portfolios/default/trades", map[string]any{"date": "06/02/2023"}, http.StatusBadRequest},
		{"unknown portfolio", "/api/portfolios/ghost/trades", map[string]any{"date": "2023-02-06"}, http.StatusNotFound},
		{"bad result filter", "/api/portfolios/default/trades?result=Maybe", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodPost
			if tt.body == nil {
				method = http.MethodGet
			}
			rec := do(t, s, method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	other, err := store.SaveAccount(ctx, journal.Portfolio{Name: "Other"})
	require.NoError(t, err)
	tr, err := store.SaveTrade(ctx, journal.Trade{AccountID: other.ID, Date: "2023-02-06"})
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/api/portfolios/default/trades", map[string]any{"id": tr.ID, "date": "2023-02-06"})
	assert.Equal(t, http.StatusConflict, rec.Code, "trades are never moved between portfolios")
}

func TestSaveTradeOverCorruptData(t *testing.T) {
	t.Parallel()

	s, store := newTestServer(t, nil)
	ctx := context.Background()
	stored := []byte(`[{"id":"a","accountId":"default","side":"Sideways"}]`)
	require.NoError(t, store.Blobs().Put(ctx, journal.KeyTrades, stored))

	rec := do(t, s, http.MethodPost, "/api/portfolios/default/trades", map[string]any{"date": "2023-02-06", "symbol": "EURUSD"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "corrupt")

	got, err := store.Blobs().Get(ctx, journal.KeyTrades)
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestStatsAndCalendar(t *testing.T) {
	t.Parallel()

	s, store := newTestServer(t, nil)
	ctx := context.Background()
	for _, tr := range []journal.Trade{
		{AccountID: "default", Date: "2023-02-06", Result: journal.ResultWin, PnL: 200, Entry: 100, StopLoss: 90, TakeProfit: 120},
		{AccountID: "default", Date: "2023-02-13", Result: journal.ResultLoss, PnL: -100, Entry: 100, StopLoss: 90, TakeProfit: 110},
		{AccountID: "default", Date: "2023-02-14", Result: journal.ResultPending},
	} {
		_, err := store.SaveTrade(ctx, tr)
		require.NoError(t, err)
	}

	rec := do(t, s, http.MethodGet, "/api/portfolios/default/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeBody[statsResponse](t, rec)
	assert.InDelta(t, 50.0, st.Summary.WinRate, 1e-9)
	assert.InDelta(t, 100.0, st.Summary.NetPnL, 1e-9)
	assert.InDelta(t, 10100.0, st.Summary.Equity, 1e-9)
	require.Len(t, st.EquityCurve, 4)
	assert.Equal(t, "Initial", st.EquityCurve[0].Date)
	assert.InDelta(t, 10100.0, st.EquityCurve[3].Balance, 1e-9)
	require.NotEmpty(t, st.Breakdown.Weekday)
	assert.Equal(t, "Monday", st.Breakdown.Weekday[0].Key)
	assert.Equal(t, 2, st.Breakdown.Weekday[0].Count)

	// No year/month: the server clock says February 2023.
	rec = do(t, s, http.MethodGet, "/api/portfolios/default/calendar", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cal := decodeBody[calendarResponse](t, rec)
	assert.Equal(t, 2023, cal.Year)
	assert.Equal(t, time.February, cal.Month)
	assert.Len(t, cal.Days, 28)
	assert.Equal(t, 3, cal.Leading)
	assert.InDelta(t, 100.0, cal.Total, 1e-9)
	assert.Equal(t, monthRef{Year: 2023, Month: time.January}, cal.Prev)
	assert.Equal(t, monthRef{Year: 2023, Month: time.March}, cal.Next)

	rec = do(t, s, http.MethodGet, "/api/portfolios/default/calendar?year=2023&month=13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOnboarding(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/onboarding", nil)
	assert.JSONEq(t, `{"onboarded":false}`, rec.Body.String())

	rec = do(t, s, http.MethodPut, "/api/onboarding", map[string]bool{"onboarded": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/onboarding", nil)
	assert.JSONEq(t, `{"onboarded":true}`, rec.Body.String())
}

func TestAdviceWithoutAdvisor(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/market/search", map[string]string{"query": "gold"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPatternsAndSearch(t *testing.T) {
	t.Parallel()

	s, store := newTestServer(t, &scriptedModel{text: "answer: "})
	_, err := store.SaveTrade(context.Background(), journal.Trade{
		AccountID: "default", Date: "2023-02-06", Result: journal.ResultLoss, PnL: -50,
		Notes: "Entered early out of fear of missing the move",
	})
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/api/portfolios/default/patterns", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	pr := decodeBody[patternsResponse](t, rec)
	require.Len(t, pr.Themes, 1)
	require.NotNil(t, pr.MainLeak)
	assert.Equal(t, "FOMO", pr.MainLeak.Theme)

	rec = do(t, s, http.MethodPost, "/api/market/search", map[string]string{"query": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/market/search", map[string]string{"query": "gold outlook"})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[advisor.SearchResult](t, rec)
	assert.Equal(t, "answer: gold outlook", res.Text)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, advisor.DefaultSourceTitle, res.Sources[0].Title)

	rec = do(t, s, http.MethodGet, "/api/advice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gold outlook")
	assert.Contains(t, rec.Body.String(), "FOMO")
}

func TestSupersededSearchIsStale(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{
		started: make(chan string, 2),
		block:   map[string]bool{"first": true},
		text:    "answer: ",
	}
	s, _ := newTestServer(t, m)

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- do(t, s, http.MethodPost, "/api/market/search", map[string]string{"query": "first"})
	}()
	require.Equal(t, "first", <-m.started)

	rec := do(t, s, http.MethodPost, "/api/market/search", map[string]string{"query": "second"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "second", <-m.started)

	stale := <-first
	assert.Equal(t, http.StatusConflict, stale.Code)
	assert.JSONEq(t, `{"stale":true}`, stale.Body.String())

	rec = do(t, s, http.MethodGet, "/api/advice", nil)
	var latest struct {
		Search *advisor.SearchResult `json:"search"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	require.NotNil(t, latest.Search)
	assert.Equal(t, "answer: second", latest.Search.Text)
}
