package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"backlab/internal/backtest"
	"backlab/internal/config"
	"backlab/internal/domain"
	"backlab/internal/marketdata"
	"backlab/internal/store"
	"backlab/internal/strategy"
)

// Server serves the backlab HTTP API.
type Server struct {
	bars      store.BarStore
	datasets  store.DatasetStore
	runs      store.RunStore
	fetcher   marketdata.Fetcher
	registry  *strategy.Registry
	engine    *backtest.Engine
	optimizer *backtest.Optimizer
	defaults  config.BacktestConfig
	log       *slog.Logger

	// now is the clock used to mint dataset ids; tests override it.
	now func() time.Time
}

// NewServer wires the API handlers to their stores, fetcher, and engine.
func NewServer(
	bars store.BarStore,
	datasets store.DatasetStore,
	runs store.RunStore,
	fetcher marketdata.Fetcher,
	registry *strategy.Registry,
	defaults config.BacktestConfig,
	log *slog.Logger,
) *Server {
	if log == nil {
		log = slog.Default()
	}
	optimizer := backtest.NewOptimizer(log)
	if len(defaults.ShortPeriods) > 0 {
		optimizer.ShortPeriods = defaults.ShortPeriods
	}
	if len(defaults.LongPeriods) > 0 {
		optimizer.LongPeriods = defaults.LongPeriods
	}
	return &Server{
		bars:      bars,
		datasets:  datasets,
		runs:      runs,
		fetcher:   fetcher,
		registry:  registry,
		engine:    backtest.NewEngine(registry, log),
		optimizer: optimizer,
		defaults:  defaults,
		log:       log,
		now:       time.Now,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/datasets/{symbol}", s.handleSaveDataset)
	mux.HandleFunc("GET /api/datasets", s.handleListDatasets)
	mux.HandleFunc("GET /api/datasets/{id}", s.handleGetDataset)
	mux.HandleFunc("POST /api/backtest/{id}", s.handleBacktest)
	mux.HandleFunc("GET /api/optimize/{id}", s.handleOptimize)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// queryInt reads an integer query parameter, falling back to def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, v)
	}
	return n, nil
}

// queryFloat reads a float query parameter, falling back to def when absent.
func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, v)
	}
	return f, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{
		Status:     "ok",
		Strategies: s.registry.List(),
	})
}

func (s *Server) handleSaveDataset(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	days, err := queryInt(r, "days", 30)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if days <= 0 {
		writeError(w, http.StatusBadRequest, "days must be positive")
		return
	}

	bars, err := s.fetcher.FetchBars(r.Context(), symbol, days)
	if err != nil {
		s.log.Error("fetching bars", "symbol", symbol, "error", err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("fetching bars for %s: %v", symbol, err))
		return
	}
	if len(bars) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no data found for %s", symbol))
		return
	}

	created := s.now().UTC()
	ds := &domain.Dataset{
		ID:         strconv.FormatInt(created.UnixMilli(), 10),
		Symbol:     symbol,
		Duration:   fmt.Sprintf("%d days", days),
		BarSize:    "1 day",
		DataPoints: len(bars),
		CreatedAt:  created,
	}

	if err := s.bars.WriteBars(r.Context(), ds.ID, bars); err != nil {
		s.log.Error("writing bars", "id", ds.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to persist bars")
		return
	}
	if err := s.datasets.SaveDataset(r.Context(), ds); err != nil {
		s.log.Error("saving dataset", "id", ds.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save dataset")
		return
	}

	s.log.Info("dataset saved", "id", ds.ID, "symbol", symbol, "bars", len(bars))
	writeJSON(w, SaveDatasetResponse{
		Message:    fmt.Sprintf("saved %d bars for %s", len(bars), symbol),
		ID:         ds.ID,
		Symbol:     symbol,
		DataPoints: len(bars),
	})
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	list, err := s.datasets.ListDatasets(r.Context())
	if err != nil {
		s.log.Error("listing datasets", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list datasets")
		return
	}
	if list == nil {
		list = []domain.Dataset{}
	}
	writeJSON(w, DatasetsResponse{Count: len(list), Datasets: list})
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ds, bars, ok := s.loadDataset(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, DatasetResponse{Dataset: *ds, Data: bars})
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	p := backtest.Params{Strategy: strategy.CrossoverName}
	if v := r.URL.Query().Get("strategy"); v != "" {
		p.Strategy = v
	}
	var err error
	if p.ShortPeriod, err = queryInt(r, "short_period", 10); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.LongPeriod, err = queryInt(r, "long_period", 30); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.TrainSplit, err = queryFloat(r, "train_split", s.defaults.TrainSplit); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.InitialCapital, err = queryFloat(r, "initial_capital", s.defaults.InitialCapital); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.TrainSplit <= 0 || p.TrainSplit > 1 {
		writeError(w, http.StatusBadRequest, "train_split must be in (0, 1]")
		return
	}

	ds, bars, ok := s.loadDataset(w, r, id)
	if !ok {
		return
	}

	result, err := s.engine.Run(bars, p)
	if err != nil {
		if errors.Is(err, backtest.ErrUnknownStrategy) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("running backtest", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "backtest failed")
		return
	}

	run := &domain.Run{
		DatasetID:        ds.ID,
		Strategy:         p.Strategy,
		ShortPeriod:      p.ShortPeriod,
		LongPeriod:       p.LongPeriod,
		TrainSplit:       p.TrainSplit,
		InitialCapital:   p.InitialCapital,
		TrainReturn:      result.Summary.TrainReturn,
		ValidationReturn: result.Summary.ValidationReturn,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.runs.SaveRun(r.Context(), run); err != nil {
		// History is best effort; the result is still returned.
		s.log.Warn("saving run", "id", id, "error", err)
	}

	writeJSON(w, BacktestResponse{
		FileInfo:       fileInfoFor(ds),
		BacktestResult: result,
	})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	p := backtest.OptimizeParams{}
	var err error
	if p.TrainSplit, err = queryFloat(r, "train_split", s.defaults.TrainSplit); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.InitialCapital, err = queryFloat(r, "initial_capital", s.defaults.InitialCapital); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.TrainSplit <= 0 || p.TrainSplit > 1 {
		writeError(w, http.StatusBadRequest, "train_split must be in (0, 1]")
		return
	}

	ds, bars, ok := s.loadDataset(w, r, id)
	if !ok {
		return
	}

	result := s.optimizer.Run(bars, p)
	writeJSON(w, OptimizeResponse{
		FileInfo:           fileInfoFor(ds),
		OptimizationResult: result,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.log.Error("listing runs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []domain.Run{}
	}
	writeJSON(w, RunsResponse{Count: len(runs), Runs: runs})
}

// loadDataset resolves a dataset id to its catalog entry and bar series,
// writing the error response itself when either lookup fails.
func (s *Server) loadDataset(w http.ResponseWriter, r *http.Request, id string) (*domain.Dataset, []domain.Bar, bool) {
	ds, err := s.datasets.GetDataset(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("dataset not found: %s", id))
			return nil, nil, false
		}
		s.log.Error("loading dataset", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load dataset")
		return nil, nil, false
	}

	bars, err := s.bars.ReadBars(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("dataset payload missing: %s", id))
			return nil, nil, false
		}
		s.log.Error("reading bars", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read bars")
		return nil, nil, false
	}

	return ds, bars, true
}
