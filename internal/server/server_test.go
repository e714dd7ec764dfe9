package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sportzvillage/svassist/internal/chatlog"
	"github.com/sportzvillage/svassist/internal/db"
	"github.com/sportzvillage/svassist/internal/logging"
	"github.com/sportzvillage/svassist/internal/pricing"
	"github.com/sportzvillage/svassist/internal/search"
	"github.com/sportzvillage/svassist/internal/vectordb"
)

// stubStore serves canned hits for every collection.
type stubStore struct {
	hits map[string][]vectordb.Hit
}

func (s *stubStore) Ensure(string, string) error { return nil }
func (s *stubStore) Upsert(context.Context, string, []vectordb.Document) error { return nil }
func (s *stubStore) Count(string) (int, error) { return 0, nil }
func (s *stubStore) Drop(string) error { return nil }
func (s *stubStore) Reset(string) error { return nil }
func (s *stubStore) Collections() []string { return nil }
func (s *stubStore) Query(_ context.Context, collection, _ string, k int, _ map[string]string) ([]vectordb.Hit, error) {
	hits := s.hits[collection]
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

type stubRefresher struct {
	result bool
	called int
}

func (r *stubRefresher) Refresh(context.Context) bool {
	r.called++
	return r.result
}

func newTestServer(t *testing.T, store *stubStore, refresher Refresher) *Server {
	t.Helper()
	log := logging.Nop()

	chatLog, err := chatlog.New(t.TempDir(), log)
	if err != nil {
		t.Fatalf("chatlog.New: %v", err)
	}
	activity, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("db.OpenMemory: %v", err)
	}
	t.Cleanup(func() { activity.Close() })

	return New(Config{Port: 0}, search.New(store, log), refresher, chatLog, activity, pricing.DefaultTiers, log)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubStore{}, nil)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSearchEndpoint(t *testing.T) {
	store := &stubStore{hits: map[string][]vectordb.Hit{
		vectordb.CollectionTimetables: {{Collection: vectordb.CollectionTimetables, Content: "Period 1", Distance: 0.1, Score: 0.9}},
		vectordb.CollectionLessons:    {{Collection: vectordb.CollectionLessons, Content: "Relay", Distance: 0.2, Score: 0.8}},
	}}
	srv := newTestServer(t, store, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/search", searchRequest{Query: "period"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 2 || len(resp.Results) != 2 {
		t.Errorf("count = %d, results = %d", resp.Count, len(resp.Results))
	}
	if resp.Results[0].Content != "Period 1" {
		t.Errorf("best hit = %q", resp.Results[0].Content)
	}
}

func TestSearchEndpoint_Validation(t *testing.T) {
	srv := newTestServer(t, &stubStore{}, nil)

	if rec := doJSON(t, srv, http.MethodPost, "/api/search", searchRequest{}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing query: status = %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodPost, "/api/search", searchRequest{Query: "x", Collection: "bogus"}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad collection: status = %d", rec.Code)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	refresher := &stubRefresher{result: true}
	srv := newTestServer(t, &stubStore{}, refresher)

	rec := doJSON(t, srv, http.MethodPost, "/api/refresh", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !resp["success"] {
		t.Error("success = false, want true")
	}
	if refresher.called != 1 {
		t.Errorf("refresher called %d times", refresher.called)
	}
}

func TestRefreshEndpoint_ReportsFailure(t *testing.T) {
	srv := newTestServer(t, &stubStore{}, &stubRefresher{result: false})

	rec := doJSON(t, srv, http.MethodPost, "/api/refresh", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]bool
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["success"] {
		t.Error("success = true, want false")
	}
}

func TestRefreshEndpoint_Unavailable(t *testing.T) {
	srv := newTestServer(t, &stubStore{}, nil)

	if rec := doJSON(t, srv, http.MethodPost, "/api/refresh", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestInteractionsAndHistory(t *testing.T) {
	srv := newTestServer(t, &stubStore{}, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/interactions", interactionRequest{
		User:    chatlog.UserInfo{UserID: "U1", Name: "Asha", Role: "R", SchoolID: "SCH001"},
		Message: "Show me the timetable",
		LLM:     chatlog.LLMUsage{TotalTokens: 100, Model: "gpt-4"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !strings.HasPrefix(created["session_id"], "session_") {
		t.Errorf("session_id = %q", created["session_id"])
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/history/U1?limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d", rec.Code)
	}
	var history []chatlog.Interaction
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("decoding history: %v", err)
	}
	if len(history) != 1 || history[0].User.UserID != "U1" {
		t.Errorf("history = %+v", history)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/history/ghost", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("empty history status = %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty history body = %s", rec.Body.String())
	}
}

func TestInteractions_Validation(t *testing.T) {
	srv := newTestServer(t, &stubStore{}, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/interactions", interactionRequest{Message: "hi"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubStore{}, nil)

	doJSON(t, srv, http.MethodPost, "/api/interactions", interactionRequest{
		User:    chatlog.UserInfo{UserID: "U1"},
		Message: "help me",
	})

	rec := doJSON(t, srv, http.MethodGet, "/api/analytics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats chatlog.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if stats.TotalInteractions != 1 {
		t.Errorf("total_interactions = %d", stats.TotalInteractions)
	}
}

func TestActivityEndpoints(t *testing.T) {
	srv := newTestServer(t, &stubStore{}, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/activity/lessons", db.LessonCompletion{
		LessonID:   "L001",
		SchoolID:   "SCH001",
		ResidentID: "U001",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("log completion status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/activity/lessons?school_id=SCH001", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("recent completions status = %d", rec.Code)
	}
	var completions []db.LessonCompletion
	if err := json.Unmarshal(rec.Body.Bytes(), &completions); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(completions) != 1 || completions[0].LessonID != "L001" {
		t.Errorf("completions = %+v", completions)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/activity/props", db.PropUpdate{
		PropID:     "P010",
		Status:     "needs_repair",
		ResidentID: "U001",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("prop update status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/activity/props/P010", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("prop history status = %d", rec.Code)
	}
	var updates []db.PropUpdate
	if err := json.Unmarshal(rec.Body.Bytes(), &updates); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(updates) != 1 || updates[0].Status != "needs_repair" {
		t.Errorf("updates = %+v", updates)
	}
}

func TestActivityEndpoints_Validation(t *testing.T) {
	srv := newTestServer(t, &stubStore{}, nil)

	if rec := doJSON(t, srv, http.MethodPost, "/api/activity/lessons", db.LessonCompletion{}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty completion: status = %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodPost, "/api/activity/props", db.PropUpdate{}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty prop update: status = %d", rec.Code)
	}
}

func TestContextEndpoint(t *testing.T) {
	store := &stubStore{hits: map[string][]vectordb.Hit{
		vectordb.CollectionLessons: {{Collection: vectordb.CollectionLessons, Content: "Relay Races"}},
	}}
	srv := newTestServer(t, store, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/context", contextRequest{Query: "relay", ContextType: "lessons"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !strings.Contains(resp["context"], "Lesson: Relay Races") {
		t.Errorf("context = %q", resp["context"])
	}
}
