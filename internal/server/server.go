package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/copyleftdev/RAVINE/internal/config"
	"github.com/copyleftdev/RAVINE/internal/logging"
	"github.com/copyleftdev/RAVINE/internal/optimization"
	"github.com/copyleftdev/RAVINE/internal/optimization/objectives"
	"github.com/copyleftdev/RAVINE/internal/optimization/powell"
	"github.com/copyleftdev/RAVINE/internal/store"
)

// Logger defines the logging interface used by the server.
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// JobState tracks one minimization job. It is mutated only under the
// server's jobs mutex.
type JobState struct {
	ID           string
	Objective    string
	Dimensions   int
	Status       string // "pending", "running", "completed", "failed", "cancelled"
	StartTime    time.Time
	EndTime      *time.Time
	BestSolution *optimization.Solution
	Iterations   int
	Evaluations  int
	Optimizer    optimization.Optimizer
	CancelFunc   context.CancelFunc
	LastUpdated  time.Time
}

// MinimizeRequest is the payload that starts a job. Exactly one of
// Start or Bounds must be given; Bounds alone means a random start.
type MinimizeRequest struct {
	Objective     string       `json:"objective"`
	Start         []float64    `json:"start,omitempty"`
	Bounds        [][2]float64 `json:"bounds,omitempty"`
	MaxIterations int          `json:"max_iterations,omitempty"`
	Tolerance     float64      `json:"tolerance,omitempty"`
	CritLim       float64      `json:"critlim,omitempty"`
	Seed          int64        `json:"seed,omitempty"`
}

// Server implements the HTTP and JSON-RPC surface of the minimization
// service. It manages jobs, caps their concurrency, persists finished
// results, and exports metrics.
type Server struct {
	cfg     *config.Config
	logger  Logger
	results *store.Store // nil disables persistence
	metrics *Metrics     // nil disables metrics

	// Job state management
	jobs   map[string]*JobState
	jobsMu sync.RWMutex

	// Semaphore bounding concurrently running jobs
	sem chan struct{}
}

// NewServer creates a new server instance. The results store and
// metrics may be nil.
func NewServer(cfg *config.Config, logger Logger, results *store.Store, metrics *Metrics) *Server {
	workers := cfg.Optimization.WorkerCount
	if workers < 1 {
		workers = 1
	}

	return &Server{
		cfg:     cfg,
		logger:  logger,
		results: results,
		metrics: metrics,
		jobs:    make(map[string]*JobState),
		sem:     make(chan struct{}, workers),
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/minimize", s.handleMinimize)
		r.Get("/status/{id}", s.handleStatus)
		r.Delete("/minimization/{id}", s.handleCancel)
		r.Get("/objectives", s.handleObjectives)
		r.Get("/results", s.handleResults)
		r.Get("/results/{id}", s.handleResult)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// startJob validates the request and launches a job goroutine.
func (s *Server) startJob(req *MinimizeRequest) (*JobState, error) {
	obj, ok := objectives.Get(req.Objective)
	if !ok {
		return nil, fmt.Errorf("unknown objective %q, see /api/v1/objectives", req.Objective)
	}

	if len(req.Start) == 0 && len(req.Bounds) == 0 {
		return nil, fmt.Errorf("either a starting point or bounds are required")
	}
	dims := len(req.Start)
	if dims == 0 {
		dims = len(req.Bounds)
	}
	if len(req.Start) > 0 && len(req.Bounds) > 0 && len(req.Start) != len(req.Bounds) {
		return nil, fmt.Errorf("start has %d dimensions but bounds have %d", len(req.Start), len(req.Bounds))
	}

	maxIter := req.MaxIterations
	if maxIter <= 0 {
		maxIter = s.cfg.Optimization.MaxIterations
	}
	tolerance := req.Tolerance
	if tolerance <= 0 {
		tolerance = s.cfg.Optimization.Tolerance
	}

	optCfg := optimization.OptimizerConfig{
		Objective:     obj.Func,
		Start:         req.Start,
		Bounds:        req.Bounds,
		MaxIterations: maxIter,
		Tolerance:     tolerance,
		CritLim:       req.CritLim,
		RandomSeed:    req.Seed,
	}

	optimizer, err := powell.NewOptimizer(optCfg)
	if err != nil {
		return nil, fmt.Errorf("creating optimizer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	state := &JobState{
		ID:          uuid.NewString(),
		Objective:   req.Objective,
		Dimensions:  dims,
		Status:      "pending",
		StartTime:   time.Now(),
		Optimizer:   optimizer,
		CancelFunc:  cancel,
		LastUpdated: time.Now(),
	}

	s.jobsMu.Lock()
	s.jobs[state.ID] = state
	s.jobsMu.Unlock()

	go s.runJob(ctx, state)

	return state, nil
}

// runJob executes one minimization inside the worker semaphore.
func (s *Server) runJob(ctx context.Context, state *JobState) {
	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		s.finishJob(state, "cancelled", nil)
		return
	}

	s.jobsMu.Lock()
	state.Status = "running"
	state.LastUpdated = time.Now()
	s.jobsMu.Unlock()

	if s.metrics != nil {
		s.metrics.JobsRunning.Inc()
		defer s.metrics.JobsRunning.Dec()
	}

	// The optimizer was fully configured at construction
	result, err := state.Optimizer.Optimize(ctx, optimization.OptimizerConfig{})

	switch {
	case err != nil && ctx.Err() != nil:
		s.logger.Info("Job cancelled", map[string]interface{}{"job_id": state.ID})
		s.finishJob(state, "cancelled", nil)
	case err != nil:
		s.logger.Error("Job failed", map[string]interface{}{
			"job_id": state.ID,
			"error":  err.Error(),
		})
		s.finishJob(state, "failed", nil)
	default:
		s.logger.Info("Job completed", map[string]interface{}{
			"job_id":      state.ID,
			"objective":   state.Objective,
			"best_value":  result.BestSolution.Value,
			"iterations":  result.Iterations,
			"evaluations": result.Evaluations,
		})
		s.finishJob(state, "completed", result)
	}
}

// finishJob records a terminal state, updates metrics, and persists
// completed results.
func (s *Server) finishJob(state *JobState, status string, result *optimization.Result) {
	now := time.Now()

	s.jobsMu.Lock()
	// A concurrent cancel may already have marked the job; cancelled is
	// sticky.
	if state.Status != "cancelled" {
		state.Status = status
	}
	state.EndTime = &now
	state.LastUpdated = now
	if result != nil {
		state.BestSolution = result.BestSolution
		state.Iterations = result.Iterations
		state.Evaluations = result.Evaluations
	}
	s.jobsMu.Unlock()

	if s.metrics != nil {
		s.metrics.JobsTotal.WithLabelValues(status).Inc()
		s.metrics.Duration.Observe(now.Sub(state.StartTime).Seconds())
		if result != nil {
			s.metrics.Evaluations.Add(float64(result.Evaluations))
			s.metrics.Iterations.Observe(float64(result.Iterations))
		}
	}

	if s.results != nil && result != nil {
		rec := &store.Record{
			ID:             state.ID,
			Objective:      state.Objective,
			Dimensions:     state.Dimensions,
			Status:         status,
			BestValue:      result.BestSolution.Value,
			BestParameters: result.BestSolution.Parameters,
			Iterations:     result.Iterations,
			Evaluations:    result.Evaluations,
			StartedAt:      state.StartTime,
			FinishedAt:     now,
		}
		if err := s.results.Save(context.Background(), rec); err != nil {
			s.logger.Error("Failed to persist result", map[string]interface{}{
				"job_id": state.ID,
				"error":  err.Error(),
			})
		}
	}
}

// cancelJob transitions a non-terminal job to cancelled.
func (s *Server) cancelJob(id string) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	state, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("job not found")
	}

	switch state.Status {
	case "completed", "failed", "cancelled":
		return fmt.Errorf("cannot cancel job with status: %s", state.Status)
	}

	if state.CancelFunc != nil {
		state.CancelFunc()
	}

	now := time.Now()
	state.Status = "cancelled"
	state.EndTime = &now
	state.LastUpdated = now

	s.logger.Info("Job cancel requested", map[string]interface{}{"job_id": id})

	return nil
}

// jobStatus builds the status response payload for one job.
func (s *Server) jobStatus(id string) (map[string]interface{}, error) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	state, exists := s.jobs[id]
	if !exists {
		return nil, fmt.Errorf("job not found")
	}

	response := map[string]interface{}{
		"job_id":      state.ID,
		"objective":   state.Objective,
		"dimensions":  state.Dimensions,
		"status":      state.Status,
		"start_time":  state.StartTime.Format(time.RFC3339),
		"last_update": state.LastUpdated.Format(time.RFC3339),
	}

	if state.EndTime != nil {
		response["end_time"] = state.EndTime.Format(time.RFC3339)
		response["iterations"] = state.Iterations
		response["evaluations"] = state.Evaluations
	}

	if state.BestSolution != nil {
		response["best_solution"] = map[string]interface{}{
			"parameters": state.BestSolution.Parameters,
			"value":      state.BestSolution.Value,
		}
	}

	if state.Optimizer != nil {
		if history := state.Optimizer.GetHistory(); len(history) > 0 {
			historyData := make([]map[string]interface{}, len(history))
			for i, eval := range history {
				historyData[i] = map[string]interface{}{
					"iteration": eval.Iteration,
					"value":     eval.Solution.Value,
				}
			}
			response["history"] = historyData
		}
	}

	return response, nil
}

// Close cancels all running jobs.
func (s *Server) Close() error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	for _, job := range s.jobs {
		if job.CancelFunc != nil {
			job.CancelFunc()
		}
	}
	return nil
}

// handleMinimize handles POST /api/v1/minimize.
func (s *Server) handleMinimize(w http.ResponseWriter, r *http.Request) {
	var req MinimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}

	state, err := s.startJob(&req)
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		return
	}

	s.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": state.ID,
		"status": state.Status,
	})
}

// handleStatus handles GET /api/v1/status/{id}.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		s.respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "missing job ID"})
		return
	}

	response, err := s.jobStatus(id)
	if err != nil {
		s.respondJSON(w, http.StatusNotFound, map[string]interface{}{"error": err.Error()})
		return
	}

	s.respondJSON(w, http.StatusOK, response)
}

// handleCancel handles DELETE /api/v1/minimization/{id}.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		s.respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "missing job ID"})
		return
	}

	if err := s.cancelJob(id); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cancellation requested"})
}

// handleObjectives handles GET /api/v1/objectives.
func (s *Server) handleObjectives(w http.ResponseWriter, r *http.Request) {
	names := objectives.Names()
	list := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		obj, _ := objectives.Get(name)
		list = append(list, map[string]interface{}{
			"name":        obj.Name,
			"description": obj.Description,
			"minimum":     obj.Minimum,
		})
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{"objectives": list})
}

// handleResults handles GET /api/v1/results.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		s.respondJSON(w, http.StatusNotFound, map[string]interface{}{"error": "result persistence is disabled"})
		return
	}

	records, err := s.results.List(r.Context(), 50)
	if err != nil {
		s.respondJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{"results": records})
}

// handleResult handles GET /api/v1/results/{id}.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		s.respondJSON(w, http.StatusNotFound, map[string]interface{}{"error": "result persistence is disabled"})
		return
	}

	rec, err := s.results.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sql.ErrNoRows) {
			status = http.StatusNotFound
		}
		s.respondJSON(w, status, map[string]interface{}{"error": err.Error()})
		return
	}

	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}
