package domain

import "context"

// GenerationRepository persists generation requests. Every method may fail
// with an error matching ErrStorageUnavailable.
//
// Update does not validate the state machine and there is no compare-and-swap:
// a Get followed by Update can race with another writer on the same id. The
// state machine precondition is the only guard against duplicate callbacks.
type GenerationRepository interface {
	// Create stores a new request and returns its id. ErrAlreadyExists when
	// the id is taken.
	Create(ctx context.Context, req *GenerationRequest) (string, error)
	// Get returns ErrNotFound when no request has the id.
	Get(ctx context.Context, id string) (*GenerationRequest, error)
	// ListAll returns every request, newest first.
	ListAll(ctx context.Context) ([]GenerationRequest, error)
	// Update overwrites the mutable fields. ErrNotFound when the id is unknown.
	Update(ctx context.Context, req *GenerationRequest) error
	CountBySession(ctx context.Context, sessionID string) (int, error)
	// ListBySession returns the session's requests, newest first.
	ListBySession(ctx context.Context, sessionID string) ([]GenerationRequest, error)
	// ListByStatus returns requests in the given status, newest first.
	ListByStatus(ctx context.Context, status GenerationStatus) ([]GenerationRequest, error)
}

// Store is a repository handle with an explicit lifecycle.
type Store interface {
	GenerationRepository
	// Init creates the schema when missing.
	Init(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}
