// Package registry tracks in-flight generation jobs. It is the only shared
// mutable state in the service: the dispatcher creates records and each
// progress relay reads and updates exactly one of them.
package registry

import (
	"sync"

	"studio/internal/domain"
)

// Record pairs a job payload with the backend family it was dispatched to.
type Record struct {
	Model domain.Model
	Job   domain.Job
}

// Registry is a bounded concurrent map from job id to Record. Records are
// evicted when their relay reaches a terminal state; if a client never opens
// a progress subscription, the oldest record is dropped once the cap is hit.
type Registry struct {
	mu         sync.Mutex
	records    map[string]*Record
	order      []string
	maxEntries int
}

const DefaultMaxEntries = 1024

func New(maxEntries int) *Registry {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Registry{
		records:    make(map[string]*Record),
		maxEntries: maxEntries,
	}
}

// Create inserts a record for a freshly dispatched job. A job id is issued
// once by the backend; re-creating an existing id replaces the record.
func (r *Registry) Create(jobID string, model domain.Model, job domain.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[jobID]; !exists {
		if len(r.records) >= r.maxEntries {
			r.evictOldestLocked()
		}
		r.order = append(r.order, jobID)
	}
	r.records[jobID] = &Record{Model: model, Job: job}
}

// Get returns a copy of the record for jobID.
func (r *Registry) Get(jobID string) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[jobID]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Update applies fn to the record under the registry lock, making
// read-modify-write transitions such as the past_threshold flip atomic.
// It reports whether the record existed.
func (r *Registry) Update(jobID string, fn func(*domain.Job)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[jobID]
	if !ok {
		return false
	}
	fn(&rec.Job)
	return true
}

// Evict drops the record for jobID. Relays call this when they reach a
// terminal state so the registry cannot grow without bound.
func (r *Registry) Evict(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[jobID]; !ok {
		return
	}
	delete(r.records, jobID)
	r.removeFromOrderLocked(jobID)
}

// Len reports the number of live records.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *Registry) evictOldestLocked() {
	if len(r.order) == 0 {
		return
	}
	oldest := r.order[0]
	r.order = r.order[1:]
	delete(r.records, oldest)
}

func (r *Registry) removeFromOrderLocked(jobID string) {
	for i, id := range r.order {
		if id == jobID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}
