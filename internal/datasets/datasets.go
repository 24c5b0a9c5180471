package datasets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vinodismyname/leadlens/config"
	"github.com/vinodismyname/leadlens/internal/analysis"
	"github.com/vinodismyname/leadlens/internal/ingest"
)

// Dataset is a loaded, cleaned campaign held in memory under a handle.
type Dataset struct {
	ID        string
	Sources   []string
	Records   []analysis.CallRecord
	Stats     Stats
	LoadedAt  time.Time
	ExpiresAt time.Time
	mu        sync.RWMutex
	closed    bool
}

// Stats summarizes what the loader did.
type Stats struct {
	Files             int       `json:"files"`
	RowsRead          int       `json:"rows_read"`
	Records           int       `json:"records"`
	DuplicatesDropped int       `json:"duplicates_dropped"`
	UndatedRows       int       `json:"undated_rows"`
	MinDate           time.Time `json:"min_date,omitzero"`
	MaxDate           time.Time `json:"max_date,omitzero"`
}

func statsOf(r ingest.Result) Stats {
	return Stats{
		Files:             r.Files,
		RowsRead:          r.RowsRead,
		Records:           len(r.Records),
		DuplicatesDropped: r.DuplicatesDropped,
		UndatedRows:       r.UndatedRows,
		MinDate:           r.MinDate,
		MaxDate:           r.MaxDate,
	}
}

// Gate coordinates capacity for open dataset handles (backed by runtime.Controller).
type Gate interface {
	AcquireDataset(ctx context.Context) error
	ReleaseDataset()
}

// PathValidator abstracts filesystem path validation. Implementations return
// a canonical absolute path if allowed, or an error when denied.
type PathValidator interface {
	ValidateOpenPath(path string) (string, error)
}

var (
	// ErrHandleNotFound indicates an unknown or expired handle ID.
	ErrHandleNotFound = errors.New("datasets: handle not found")
	// ErrCapacity indicates no open-dataset slot could be reserved.
	ErrCapacity = errors.New("datasets: open dataset limit reached")
)

// Manager owns dataset handles with idle-TTL eviction.
type Manager struct {
	mu           sync.RWMutex
	handles      map[string]*Dataset
	ttl          time.Duration
	cleanupEvery time.Duration
	clock        func() time.Time
	gate         Gate
	validator    PathValidator
	loadOpts     ingest.Options
	stopCh       chan struct{}
	stopOnce     sync.Once
	cleanupWG    sync.WaitGroup
}

// NewManager constructs a handle manager. ttl or cleanupEvery <= 0 select the
// config defaults; gate may be nil in tests and clock defaults to time.Now.
func NewManager(ttl, cleanupEvery time.Duration, gate Gate, clock func() time.Time) *Manager {
	if ttl <= 0 {
		ttl = config.DefaultDatasetIdleTTL
	}
	if cleanupEvery <= 0 {
		cleanupEvery = config.DefaultDatasetCleanupPeriod
	}
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		handles:      make(map[string]*Dataset),
		ttl:          ttl,
		cleanupEvery: cleanupEvery,
		clock:        clock,
		gate:         gate,
		stopCh:       make(chan struct{}),
	}
}

// SetPathValidator installs the allow-list check applied by Open.
func (m *Manager) SetPathValidator(v PathValidator) { m.validator = v }

// SetLoadOptions bounds every subsequent Open.
func (m *Manager) SetLoadOptions(opts ingest.Options) { m.loadOpts = opts }

// Start launches periodic eviction of expired handles.
func (m *Manager) Start() {
	m.cleanupWG.Add(1)
	ticker := time.NewTicker(m.cleanupEvery)
	go func() {
		defer m.cleanupWG.Done()
		defer ticker.Stop()
		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.EvictExpired()
			}
		}
	}()
}

// Close stops background cleanup and drops all handles.
func (m *Manager) Close(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.stopCh) })
	done := make(chan struct{})
	go func() { m.cleanupWG.Wait(); close(done) }()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range m.handles {
		// wait out readers before dropping
		d.mu.Lock()
		d.drop()
		d.mu.Unlock()
		delete(m.handles, id)
		m.release()
	}
	return nil
}

// Open validates and loads one or more campaign files as a single dataset.
func (m *Manager) Open(ctx context.Context, paths ...string) (*Dataset, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("datasets: no paths")
	}
	if err := m.acquire(ctx); err != nil {
		return nil, err
	}
	canonical := make([]string, len(paths))
	for i, p := range paths {
		canonical[i] = p
		if m.validator == nil {
			continue
		}
		c, err := m.validator.ValidateOpenPath(p)
		if err != nil {
			m.release()
			return nil, err
		}
		canonical[i] = c
	}

	res, err := ingest.Load(ctx, m.loadOpts, canonical...)
	if err != nil {
		m.release()
		return nil, err
	}
	d := m.register(canonical, res)
	zerolog.Ctx(ctx).Info().Str("dataset_id", d.ID).Int("records", len(d.Records)).Int("files", len(paths)).Msg("dataset opened")
	return d, nil
}

// Adopt registers already-cleaned records as a managed dataset. Intended for
// tests and callers that load data themselves.
func (m *Manager) Adopt(ctx context.Context, records []analysis.CallRecord) (*Dataset, error) {
	if err := m.acquire(ctx); err != nil {
		return nil, err
	}
	res := ingest.Result{Records: records, RowsRead: len(records)}
	for _, r := range records {
		if !r.HasDate() {
			res.UndatedRows++
			continue
		}
		if res.MinDate.IsZero() || r.Date.Before(res.MinDate) {
			res.MinDate = r.Date
		}
		if r.Date.After(res.MaxDate) {
			res.MaxDate = r.Date
		}
	}
	return m.register(nil, res), nil
}

func (m *Manager) register(sources []string, res ingest.Result) *Dataset {
	now := m.clock()
	d := &Dataset{
		ID:        uuid.NewString(),
		Sources:   sources,
		Records:   res.Records,
		Stats:     statsOf(res),
		LoadedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}
	m.mu.Lock()
	m.handles[d.ID] = d
	m.mu.Unlock()
	return d
}

// Get returns the dataset when present and refreshes its TTL.
func (m *Manager) Get(id string) (*Dataset, bool) {
	m.mu.RLock()
	d, ok := m.handles[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	now := m.clock()
	d.mu.Lock()
	d.ExpiresAt = now.Add(m.ttl)
	d.mu.Unlock()
	return d, true
}

// WithRead runs fn under the dataset's shared lock. Records must not be
// mutated by fn.
func (m *Manager) WithRead(id string, fn func(*Dataset) error) error {
	d, ok := m.Get(id)
	if !ok {
		return ErrHandleNotFound
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrHandleNotFound
	}
	return fn(d)
}

// CloseHandle removes a handle by ID, releasing capacity via the gate.
func (m *Manager) CloseHandle(ctx context.Context, id string) error {
	m.mu.Lock()
	d, ok := m.handles[id]
	if ok {
		delete(m.handles, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrHandleNotFound
	}
	d.mu.Lock()
	d.drop()
	d.mu.Unlock()
	m.release()
	zerolog.Ctx(ctx).Debug().Str("dataset_id", id).Msg("dataset closed")
	return nil
}

// EvictExpired drops handles idle past their TTL.
func (m *Manager) EvictExpired() {
	now := m.clock()
	var expired []string

	m.mu.RLock()
	for id, d := range m.handles {
		if d.Expired(now) {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		m.mu.Lock()
		d, ok := m.handles[id]
		if ok {
			delete(m.handles, id)
		}
		m.mu.Unlock()
		if !ok {
			continue
		}
		d.mu.Lock()
		d.drop()
		d.mu.Unlock()
		m.release()
	}
}

// Count returns the current number of cached handles.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handles)
}

func (m *Manager) acquire(ctx context.Context) error {
	if m.gate == nil {
		return nil
	}
	if err := m.gate.AcquireDataset(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrCapacity, err)
	}
	return nil
}

func (m *Manager) release() {
	if m.gate == nil {
		return
	}
	m.gate.ReleaseDataset()
}

// Expired reports whether the dataset has reached its TTL.
func (d *Dataset) Expired(now time.Time) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return now.After(d.ExpiresAt)
}

// drop releases the records; callers hold d.mu.
func (d *Dataset) drop() {
	d.Records = nil
	d.closed = true
}
