package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sportzvillage/svassist/internal/chatlog"
	"github.com/sportzvillage/svassist/internal/db"
	"github.com/sportzvillage/svassist/internal/search"
	"github.com/sportzvillage/svassist/internal/vectordb"
)

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	SchoolID   string `json:"school_id"`
	Collection string `json:"collection"` // empty = federated
}

type searchResponse struct {
	Results []vectordb.Hit `json:"results"`
	Count   int            `json:"count"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	var hits []vectordb.Hit
	var err error
	switch req.Collection {
	case "":
		hits = s.engine.Search(r.Context(), req.Query, req.MaxResults, req.SchoolID)
	case vectordb.CollectionTimetables:
		hits, err = s.engine.SearchTimetables(r.Context(), req.Query, req.SchoolID, "", req.MaxResults)
	case vectordb.CollectionLessons:
		hits, err = s.engine.SearchLessons(r.Context(), req.Query, req.SchoolID, req.MaxResults)
	case vectordb.CollectionProps:
		hits, err = s.engine.SearchProps(r.Context(), req.Query, req.SchoolID, req.MaxResults)
	case vectordb.CollectionDocuments:
		hits, err = s.engine.SearchDocuments(r.Context(), req.Query, "", "", req.MaxResults)
	default:
		http.Error(w, "unknown collection", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if hits == nil {
		hits = []vectordb.Hit{}
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: hits, Count: len(hits)})
}

type contextRequest struct {
	Query       string `json:"query"`
	ContextType string `json:"context_type"`
	MaxResults  int    `json:"max_results"`
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	ct := search.ContextType(req.ContextType)
	if ct == "" {
		ct = search.ContextAll
	}

	text := s.engine.RetrieveContext(r.Context(), req.Query, ct, req.MaxResults)
	writeJSON(w, http.StatusOK, map[string]string{"context": text})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		http.Error(w, "refresh not available", http.StatusServiceUnavailable)
		return
	}
	ok := s.refresher.Refresh(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

type interactionRequest struct {
	User         chatlog.UserInfo `json:"user"`
	Message      string           `json:"message"`
	Response     string           `json:"response"`
	ToolsUsed    []string         `json:"tools_used"`
	ResponseTime float64          `json:"response_time_seconds"`
	SessionID    string           `json:"session_id"`
	LLM          chatlog.LLMUsage `json:"llm_analytics"`
}

func (s *Server) handleLogInteraction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.User.UserID == "" || req.Message == "" {
		http.Error(w, "user_id and message are required", http.StatusBadRequest)
		return
	}

	sessionID, err := s.chatLog.Log(chatlog.Entry{
		User:         req.User,
		Message:      req.Message,
		Response:     req.Response,
		ToolsUsed:    req.ToolsUsed,
		ResponseTime: req.ResponseTime,
		SessionID:    req.SessionID,
		LLM:          req.LLM,
	})
	// A dual-write divergence still delivered the exchange; report
	// success with the session id and leave the repair to operators.
	if err != nil && !errors.Is(err, chatlog.ErrInconsistent) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"session_id": sessionID})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	history, err := s.chatLog.History(userID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []chatlog.Interaction{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.chatLog.Analytics(s.tiers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleLogCompletion(w http.ResponseWriter, r *http.Request) {
	if s.activity == nil {
		http.Error(w, "activity store not available", http.StatusServiceUnavailable)
		return
	}

	var c db.LessonCompletion
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if c.LessonID == "" || c.ResidentID == "" {
		http.Error(w, "lesson_id and resident_id are required", http.StatusBadRequest)
		return
	}

	if err := s.activity.LogLessonCompletion(r.Context(), c); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleRecentCompletions(w http.ResponseWriter, r *http.Request) {
	if s.activity == nil {
		http.Error(w, "activity store not available", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	completions, err := s.activity.RecentCompletions(r.Context(), q.Get("school_id"), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if completions == nil {
		completions = []db.LessonCompletion{}
	}
	writeJSON(w, http.StatusOK, completions)
}

func (s *Server) handlePropUpdate(w http.ResponseWriter, r *http.Request) {
	if s.activity == nil {
		http.Error(w, "activity store not available", http.StatusServiceUnavailable)
		return
	}

	var u db.PropUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if u.PropID == "" || u.Status == "" {
		http.Error(w, "prop_id and status are required", http.StatusBadRequest)
		return
	}

	if err := s.activity.UpdatePropStatus(r.Context(), u); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handlePropHistory(w http.ResponseWriter, r *http.Request) {
	if s.activity == nil {
		http.Error(w, "activity store not available", http.StatusServiceUnavailable)
		return
	}

	propID := chi.URLParam(r, "propID")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	updates, err := s.activity.PropHistory(r.Context(), propID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if updates == nil {
		updates = []db.PropUpdate{}
	}
	writeJSON(w, http.StatusOK, updates)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
