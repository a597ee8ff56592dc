// Package mockapi is an in-memory source/sink pair with scripted failure
// injection, standing in for the real endpoints in tests and demos. The
// sync core talks to it only over its HTTP contract and never assumes
// knowledge of the injection schedule.
package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"record_syncer/internal/domain"
)

// Config scripts the fixture's behavior. Zero values disable the
// corresponding failure injection.
type Config struct {
	SeedCount      int    // records seeded into the source (default 25)
	FailPage       int    // source page that returns a 500, once per reset
	RateLimitEvery int    // every Nth sink write gets a 429
	RetryAfter     string // Retry-After value sent with injected 429s
}

type Server struct {
	cfg Config

	mu          sync.Mutex
	source      []domain.Record
	sink        map[string]domain.Record
	failPending bool
	writeCalls  int
}

func New(cfg Config) *Server {
	if cfg.SeedCount == 0 {
		cfg.SeedCount = 25
	}
	s := &Server{cfg: cfg}
	s.reset()
	return s
}

func (s *Server) reset() {
	s.source = make([]domain.Record, 0, s.cfg.SeedCount)
	for i := 1; i <= s.cfg.SeedCount; i++ {
		s.source = append(s.source, domain.Record{
			ExternalID: fmt.Sprintf("item-%d", i),
			Name:       fmt.Sprintf("Item %d", i),
			Value:      i,
		})
	}
	s.sink = make(map[string]domain.Record)
	s.failPending = s.cfg.FailPage > 0
	s.writeCalls = 0
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /source/items", s.handleSourceList)
	mux.HandleFunc("POST /sink/items", s.handleSinkUpsert)
	mux.HandleFunc("GET /sink/items", s.handleSinkList)
	mux.HandleFunc("POST /admin/reset", s.handleReset)
	return mux
}

// SinkCount reports how many distinct records the sink holds.
func (s *Server) SinkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sink)
}

func (s *Server) handleSourceList(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	if page < 1 {
		page = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failPending && page == s.cfg.FailPage {
		s.failPending = false
		http.Error(w, "simulated transient failure", http.StatusInternalServerError)
		return
	}

	start := (page - 1) * limit
	end := start + limit
	if start > len(s.source) {
		start = len(s.source)
	}
	if end > len(s.source) {
		end = len(s.source)
	}

	var next *int
	if end < len(s.source) {
		n := page + 1
		next = &n
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items":     s.source[start:end],
		"next_page": next,
	})
}

func (s *Server) handleSinkUpsert(w http.ResponseWriter, r *http.Request) {
	var rec domain.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil || rec.ExternalID == "" {
		http.Error(w, "invalid payload", http.StatusUnprocessableEntity)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.writeCalls++
	if s.cfg.RateLimitEvery > 0 && s.writeCalls%s.cfg.RateLimitEvery == 0 {
		w.Header().Set("Retry-After", s.cfg.RetryAfter)
		http.Error(w, "simulated rate limit", http.StatusTooManyRequests)
		return
	}

	_, exists := s.sink[rec.ExternalID]
	s.sink[rec.ExternalID] = rec

	status := domain.StatusCreated
	if exists {
		status = domain.StatusUpdated
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status})
}

func (s *Server) handleSinkList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.Record, 0, len(s.sink))
	for _, rec := range s.sink {
		items = append(items, rec)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ExternalID < items[j].ExternalID
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(items),
		"items": items,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
