package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sanonone/kektorgraph/pkg/graph"
	"github.com/sanonone/kektorgraph/pkg/ingest"
	"github.com/sanonone/kektorgraph/pkg/isomorph"
	"github.com/sanonone/kektorgraph/pkg/persistence"
	"github.com/sanonone/kektorgraph/pkg/store"
)

// maxBodyBytes caps uploaded documents and request bodies.
const maxBodyBytes = 64 << 20

func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /graphs", s.handleListGraphs)
	mux.HandleFunc("POST /graphs", s.handlePutGraph)
	mux.HandleFunc("PUT /graphs/{key}", s.handlePutGraph)
	mux.HandleFunc("GET /graphs/{key}", s.handleGetGraph)
	mux.HandleFunc("DELETE /graphs/{key}", s.handleDeleteGraph)
	mux.HandleFunc("GET /graphs/{key}/info", s.handleGraphInfo)
	mux.HandleFunc("GET /graphs/{key}/bundle", s.handleGetBundle)
	mux.HandleFunc("PUT /graphs/{key}/bundle", s.handlePutBundle)
	mux.HandleFunc("POST /graphs/{key}/check", s.handleCheckGraph)
	mux.HandleFunc("POST /graphs/{key}/compact", s.handleCompactGraph)
	mux.HandleFunc("POST /graphs/{key}/induce", s.handleInduceGraph)
	mux.HandleFunc("POST /match/isomorphic", s.handleIsomorphic)
	mux.HandleFunc("POST /match/subgraph", s.handleSubgraph)
	mux.HandleFunc("GET /tasks/{id}", s.handleGetTask)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, map[string]any{"status": "ok", "graphs": s.Store.Len()})
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	keys := s.Store.NamesWithPrefix(r.URL.Query().Get("prefix"))
	out := make([]GraphSummary, 0, len(keys))
	for _, key := range keys {
		info, err := s.Store.Info(key)
		if err != nil {
			// Deleted between listing and lookup.
			continue
		}
		out = append(out, summaryOf(key, info))
	}
	s.writeHTTPResponse(w, http.StatusOK, out)
}

// handlePutGraph stores a JSON document. The key comes from the path, the
// "key" query parameter, or the document name, in that order.
func (s *Server) handlePutGraph(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		key = r.URL.Query().Get("key")
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	g, err := ingest.ReadJSON(body, graph.WithDirect(s.cfg.Store.Direct))
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.storeGraph(w, key, g, http.StatusCreated)
}

func (s *Server) storeGraph(w http.ResponseWriter, key string, g *graph.Graph, status int) {
	stored, err := s.Store.Put(key, g)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeHTTPResponse(w, status, PutGraphResponse{Key: stored, Nodes: g.NumNodes(), Edges: g.NumEdges()})
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := s.loadGraph(w, r.PathValue("key"))
	if !ok {
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, ingest.EncodeJSON(g))
}

func (s *Server) handleGetBundle(w http.ResponseWriter, r *http.Request) {
	g, ok := s.loadGraph(w, r.PathValue("key"))
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	if err := persistence.WriteBundle(w, g); err != nil {
		slog.Error("Failed to stream bundle", "key", r.PathValue("key"), "error", err)
	}
}

func (s *Server) handlePutBundle(w http.ResponseWriter, r *http.Request) {
	g, err := persistence.ReadBundle(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.storeGraph(w, r.PathValue("key"), g.WithStorage(s.cfg.Store.Direct), http.StatusCreated)
}

func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Delete(r.PathValue("key")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGraphInfo(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	g, ok := s.loadGraph(w, key)
	if !ok {
		return
	}
	slack := g.Slack()
	s.writeHTTPResponse(w, http.StatusOK, GraphDetail{
		GraphSummary:     summaryOf(key, g.Info()),
		Connections:      g.NumConnections(),
		SlackConnections: slack.Connections,
		SlackNodeUnits:   slack.NodeLabelUnits,
		SlackEdgeUnits:   slack.EdgeLabelUnits,
		OldestGeneration: g.OldestGeneration(),
		NewestGeneration: g.NewestGeneration(),
	})
}

func (s *Server) handleCheckGraph(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	g, ok := s.loadGraph(w, key)
	if !ok {
		return
	}
	resp := CheckResponse{Key: key, Consistent: true}
	if err := g.Check(); err != nil {
		resp.Consistent = false
		var v *graph.Violation
		if errors.As(err, &v) {
			resp.Kind, resp.Index, resp.Detail = string(v.Kind), v.Index, v.Detail
		} else {
			resp.Detail = err.Error()
		}
	}
	s.writeHTTPResponse(w, http.StatusOK, resp)
}

func (s *Server) handleCompactGraph(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	g, ok := s.loadGraph(w, key)
	if !ok {
		return
	}
	s.storeGraph(w, key, g.Compact(), http.StatusOK)
}

func (s *Server) handleInduceGraph(w http.ResponseWriter, r *http.Request) {
	var req InduceRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	g, ok := s.loadGraph(w, r.PathValue("key"))
	if !ok {
		return
	}
	sub, err := g.InduceSubgraph(req.Nodes, req.Edges)
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}
	// An empty key gets a fresh UUID rather than the parent's name.
	sub = sub.Rename(req.Key)
	s.storeGraph(w, req.Key, sub, http.StatusCreated)
}

func (s *Server) handleIsomorphic(w http.ResponseWriter, r *http.Request) {
	var req IsomorphicRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	if len(req.Pairs) == 0 {
		s.writeHTTPError(w, http.StatusBadRequest, "pairs must not be empty")
		return
	}
	pairs := make([]isomorph.Pair, len(req.Pairs))
	for i, p := range req.Pairs {
		a, ok := s.loadGraph(w, p.A)
		if !ok {
			return
		}
		b, ok := s.loadGraph(w, p.B)
		if !ok {
			return
		}
		pairs[i] = isomorph.Pair{A: a, B: b}
	}

	ctx, cancel := s.searchContext(r.Context())
	defer cancel()
	results, err := isomorph.MatchAll(ctx, pairs, s.cfg.Match.Workers(req.Workers), s.cfg.MatchOptions()...)
	if err != nil {
		s.writeSearchError(w, err)
		return
	}
	resp := IsomorphicResponse{Results: make([]IsomorphicResult, len(results))}
	for i, res := range results {
		resp.Results[i] = isomorphicResult(req.Pairs[i], res)
	}
	s.writeHTTPResponse(w, http.StatusOK, resp)
}

func (s *Server) handleSubgraph(w http.ResponseWriter, r *http.Request) {
	var req SubgraphRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	target, ok := s.loadGraph(w, req.Target)
	if !ok {
		return
	}
	pattern, ok := s.loadGraph(w, req.Pattern)
	if !ok {
		return
	}
	limit := s.cfg.Match.MaxEmbeddings
	if req.Limit != nil {
		if *req.Limit < 0 {
			s.writeHTTPError(w, http.StatusBadRequest, "limit must not be negative")
			return
		}
		limit = *req.Limit
	}
	opts := s.cfg.MatchOptions()
	if req.Labels {
		opts = append(opts,
			isomorph.WithNodeComparator(isomorph.NodeLabels),
			isomorph.WithEdgeComparator(isomorph.EdgeLabels))
	}
	if req.InjectiveEdges {
		opts = append(opts, isomorph.WithInjectiveEdges())
	}
	m := isomorph.NewSubgraphMatcher(target, pattern, opts...)

	if req.Async {
		task := s.taskManager.NewTask()
		go s.runSubgraphTask(task, m, limit, req)
		s.writeHTTPResponse(w, http.StatusAccepted, task.Snapshot())
		return
	}

	ctx, cancel := s.searchContext(r.Context())
	defer cancel()
	found, err := m.FindAll(ctx, limit)
	if err != nil {
		s.writeSearchError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, subgraphResponse(found, m.Stats()))
}

func (s *Server) runSubgraphTask(task *Task, m *isomorph.SubgraphMatcher, limit int, req SubgraphRequest) {
	ctx, cancel := s.searchContext(s.base)
	defer cancel()

	task.SetStatus(TaskStatusRunning)
	task.SetProgress(fmt.Sprintf("matching %s into %s", req.Pattern, req.Target))
	found, err := m.FindAll(ctx, limit)
	resp := subgraphResponse(found, m.Stats())
	if err != nil {
		slog.Warn("Background subgraph search stopped", "task", task.ID(), "error", err)
		task.SetError(err, resp)
		return
	}
	task.Complete(resp)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.taskManager.GetTask(r.PathValue("id"))
	if !ok {
		s.writeHTTPError(w, http.StatusNotFound, "task not found")
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, task.Snapshot())
}

// loadGraph fetches key from the store, writing the error response on failure.
func (s *Server) loadGraph(w http.ResponseWriter, key string) (*graph.Graph, bool) {
	g, err := s.Store.Get(key)
	if err != nil {
		s.writeStoreError(w, err)
		return nil, false
	}
	return g, true
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalidKey), errors.Is(err, graph.ErrPrecondition),
		errors.Is(err, graph.ErrRange), errors.Is(err, graph.ErrCapacity):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrClosed):
		status = http.StatusServiceUnavailable
	}
	s.writeHTTPError(w, status, err.Error())
}

func (s *Server) writeSearchError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}
	s.writeHTTPError(w, status, err.Error())
}

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}
