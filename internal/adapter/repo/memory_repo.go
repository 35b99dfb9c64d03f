package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sobhihamadi/paint-by-number-microservice/internal/domain"
)

// GenerationRepositoryMemory keeps requests in process memory. Values are
// copied on the way in and out so callers never share state with the store.
type GenerationRepositoryMemory struct {
	mu    sync.RWMutex
	items map[string]*memoryEntry
	seq   int64
}

type memoryEntry struct {
	req *domain.GenerationRequest
	seq int64
}

func NewMemoryRepository() *GenerationRepositoryMemory {
	return &GenerationRepositoryMemory{items: make(map[string]*memoryEntry)}
}

func (r *GenerationRepositoryMemory) Init(ctx context.Context) error { return nil }

func (r *GenerationRepositoryMemory) Ping(ctx context.Context) error { return ctx.Err() }

func (r *GenerationRepositoryMemory) Close() {}

func (r *GenerationRepositoryMemory) Create(ctx context.Context, req *domain.GenerationRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &domain.StorageError{Op: "create", Err: err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[req.ID]; ok {
		return "", fmt.Errorf("generation request %s: %w", req.ID, domain.ErrAlreadyExists)
	}
	r.seq++
	r.items[req.ID] = &memoryEntry{req: req.Clone(), seq: r.seq}
	return req.ID, nil
}

func (r *GenerationRepositoryMemory) Get(ctx context.Context, id string) (*domain.GenerationRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StorageError{Op: "get", Err: err}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("generation request %s: %w", id, domain.ErrNotFound)
	}
	return e.req.Clone(), nil
}

func (r *GenerationRepositoryMemory) ListAll(ctx context.Context) ([]domain.GenerationRequest, error) {
	return r.filter(ctx, "list", func(*domain.GenerationRequest) bool { return true })
}

func (r *GenerationRepositoryMemory) Update(ctx context.Context, req *domain.GenerationRequest) error {
	if err := ctx.Err(); err != nil {
		return &domain.StorageError{Op: "update", Err: err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[req.ID]
	if !ok {
		return fmt.Errorf("generation request %s: %w", req.ID, domain.ErrNotFound)
	}
	// Entries are replaced, never written in place, so a clone taken by a
	// reader is always of a complete value.
	next := e.req.Clone()
	changed := req.Clone()
	next.Status = changed.Status
	next.OutputPath = changed.OutputPath
	next.ErrorMessage = changed.ErrorMessage
	next.CompletedAt = changed.CompletedAt
	r.items[req.ID] = &memoryEntry{req: next, seq: e.seq}
	return nil
}

func (r *GenerationRepositoryMemory) CountBySession(ctx context.Context, sessionID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, &domain.StorageError{Op: "count", Err: err}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.items {
		if e.req.ClientSessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func (r *GenerationRepositoryMemory) ListBySession(ctx context.Context, sessionID string) ([]domain.GenerationRequest, error) {
	return r.filter(ctx, "list by session", func(g *domain.GenerationRequest) bool { return g.ClientSessionID == sessionID })
}

func (r *GenerationRepositoryMemory) ListByStatus(ctx context.Context, status domain.GenerationStatus) ([]domain.GenerationRequest, error) {
	return r.filter(ctx, "list by status", func(g *domain.GenerationRequest) bool { return g.Status == status })
}

func (r *GenerationRepositoryMemory) filter(ctx context.Context, op string, keep func(*domain.GenerationRequest) bool) ([]domain.GenerationRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StorageError{Op: op, Err: err}
	}
	r.mu.RLock()
	matched := make([]memoryEntry, 0, len(r.items))
	for _, e := range r.items {
		if keep(e.req) {
			matched = append(matched, memoryEntry{req: e.req.Clone(), seq: e.seq})
		}
	}
	r.mu.RUnlock()

	// Newest first; insertion order breaks ties on equal timestamps.
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.req.CreatedAt.Equal(b.req.CreatedAt) {
			return a.req.CreatedAt.After(b.req.CreatedAt)
		}
		return a.seq > b.seq
	})
	out := make([]domain.GenerationRequest, 0, len(matched))
	for _, e := range matched {
		out = append(out, *e.req)
	}
	return out, nil
}

var _ domain.Store = (*GenerationRepositoryMemory)(nil)
