package tools

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/richard-senior/htft/internal/logger"
	"github.com/richard-senior/htft/pkg/match"
)

// MaxSessions bounds the number of datasets held at once; the oldest is
// evicted when a new one is loaded past the limit
const MaxSessions = 16

// Dataset is a parsed match file held between tool calls
type Dataset struct {
	ID      string
	Source  string
	Dialect string
	Records []match.Record
	Skipped []int
	Loaded  time.Time
}

// Sessions holds datasets keyed by a random UUID
type Sessions struct {
	mu    sync.Mutex
	byID  map[string]*Dataset
	order []string
	max   int
}

func NewSessions(max int) *Sessions {
	if max <= 0 {
		max = MaxSessions
	}
	return &Sessions{byID: make(map[string]*Dataset), max: max}
}

// Put stores a dataset under a fresh id and returns it
func (s *Sessions) Put(source string, res *match.Result) *Dataset {
	ds := &Dataset{
		ID:      uuid.NewString(),
		Source:  source,
		Dialect: res.Dialect,
		Records: res.Records,
		Skipped: res.Skipped,
		Loaded:  time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[ds.ID] = ds
	s.order = append(s.order, ds.ID)
	for len(s.order) > s.max {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.byID, oldest)
		logger.Debug("Evicted session", oldest)
	}
	return ds
}

func (s *Sessions) Get(id string) (*Dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.byID[id]
	return ds, ok
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
