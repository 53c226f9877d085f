package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Form-level error codes shown to the user when a step fails. The host maps
// them to display strings.
const (
	ErrorCodeCannotConnect = "cannot_connect"
	ErrorCodeInvalidAuth   = "invalid_auth"
	ErrorCodeUnknown       = "unknown"
)

// Entry is one stored credential set. The ID is stable across reauth; the
// title follows the account email.
type Entry struct {
	ID       string
	Title    string
	Email    string
	Password string
}

// Registry holds config entries keyed by ID. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	seq     int
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Create stores a new entry and returns it.
func (r *Registry) Create(title, email, password string) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	e := &Entry{
		ID:       fmt.Sprintf("entry-%d", r.seq),
		Title:    title,
		Email:    email,
		Password: password,
	}
	r.entries[e.ID] = e
	return e
}

// Get returns a copy of the entry, so callers cannot mutate stored state.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Update replaces the credentials of an existing entry in place.
func (r *Registry) Update(id, email, password string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return false
	}
	e.Email = email
	e.Password = password
	e.Title = email
	return true
}

// Len returns the number of stored entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Flow drives the credential setup and reauth steps against a connector and
// an entry registry, both injected by the caller.
type Flow struct {
	client  Connector
	entries *Registry
	logger  *logrus.Logger
}

func New(client Connector, entries *Registry, logger *logrus.Logger) *Flow {
	return &Flow{client: client, entries: entries, logger: logger}
}

// Result is the outcome of one flow step. ErrorCode is empty on success; on
// failure the form is re-shown with the code and Entry is nil (user step) or
// the untouched original (reauth step).
type Result struct {
	Entry     *Entry
	ErrorCode string
}

// StepUser validates fresh credentials and creates a new entry on success.
func (f *Flow) StepUser(ctx context.Context, email, password string) Result {
	if err := Validate(ctx, f.client, email, password, f.logger); err != nil {
		return Result{ErrorCode: errorCode(err)}
	}

	entry := f.entries.Create(email, email, password)
	f.logger.WithFields(logrus.Fields{
		"entry_id": entry.ID,
		"title":    entry.Title,
	}).Info("Config entry created")
	return Result{Entry: entry}
}

// StepReauth re-validates a changed password for an existing entry. On
// success the entry is updated in place; no duplicate is created. On failure
// the stored entry is left untouched and the form re-displays with the code.
func (f *Flow) StepReauth(ctx context.Context, entryID, password string) Result {
	current, ok := f.entries.Get(entryID)
	if !ok {
		return Result{ErrorCode: ErrorCodeUnknown}
	}

	if err := Validate(ctx, f.client, current.Email, password, f.logger); err != nil {
		return Result{ErrorCode: errorCode(err)}
	}

	f.entries.Update(entryID, current.Email, password)
	updated, _ := f.entries.Get(entryID)
	f.logger.WithField("entry_id", entryID).Info("Config entry reauthenticated")
	return Result{Entry: &updated}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrCannotConnect):
		return ErrorCodeCannotConnect
	case errors.Is(err, ErrInvalidAuth):
		return ErrorCodeInvalidAuth
	default:
		return ErrorCodeUnknown
	}
}
