package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/adpaws/dashboard/internal/metrics"
)

// ErrWizardNotFound is returned for an unknown or expired wizard id.
var ErrWizardNotFound = errors.New("wizard not found")

// Closer is a hosted wizard instance.
type Closer interface {
	Close()
}

type hosted[T Closer] struct {
	value    T
	lastUsed time.Time
}

// Registry hosts the open instances of one kind of wizard, keyed by an
// opaque id handed to the browser.
type Registry[T Closer] struct {
	form string
	now  func() time.Time

	mu    sync.Mutex
	items map[string]*hosted[T]
}

// NewRegistry returns an empty registry. form labels the metrics.
func NewRegistry[T Closer](form string) *Registry[T] {
	return &Registry[T]{
		form:  form,
		now:   time.Now,
		items: make(map[string]*hosted[T]),
	}
}

// Add hosts v and returns its id.
func (r *Registry[T]) Add(v T) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.items[id] = &hosted[T]{value: v, lastUsed: r.now()}
	r.mu.Unlock()

	metrics.WizardOpened(r.form)
	slog.Debug("Wizard opened", "form", r.form, "wizard_id", id)
	return id
}

// Get returns the instance with id and marks it used.
func (r *Registry[T]) Get(id string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s %q", ErrWizardNotFound, r.form, id)
	}
	h.lastUsed = r.now()
	return h.value, nil
}

// Remove closes and forgets the instance with id. It reports whether id was
// hosted.
func (r *Registry[T]) Remove(id string) bool {
	r.mu.Lock()
	h, ok := r.items[id]
	delete(r.items, id)
	r.mu.Unlock()

	if !ok {
		return false
	}
	h.value.Close()
	metrics.WizardClosed(r.form)
	slog.Debug("Wizard closed", "form", r.form, "wizard_id", id)
	return true
}

// Sweep closes instances idle for longer than ttl and returns how many.
func (r *Registry[T]) Sweep(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	var stale []T
	for id, h := range r.items {
		if h.lastUsed.Before(cutoff) {
			stale = append(stale, h.value)
			delete(r.items, id)
		}
	}
	r.mu.Unlock()

	for _, v := range stale {
		v.Close()
		metrics.WizardClosed(r.form)
	}
	if len(stale) > 0 {
		slog.Info("Idle wizards closed", "form", r.form, "count", len(stale))
	}
	return len(stale)
}

// Len returns the number of hosted instances.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Sweeper is a registry seen by the idle sweep.
type Sweeper interface {
	Sweep(ttl time.Duration) int
}

// ScheduleSweeps adds a job to c that sweeps every registry on spec.
func ScheduleSweeps(c *cron.Cron, spec string, ttl time.Duration, sweepers ...Sweeper) error {
	_, err := c.AddFunc(spec, func() {
		for _, s := range sweepers {
			s.Sweep(ttl)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule wizard sweep %q: %w", spec, err)
	}
	return nil
}
