package appointments

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"medical-booking/internal/model"
)

// StorageKey is the single key holding the whole appointment collection.
const StorageKey = "@MedicalApp:appointments"

// KV is the local persisted store. Both Redis and Postgres backends satisfy it.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// PersistenceError reports a failed read, decode or write of the collection.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("appointments: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Repository is an append-only store of appointments serialized as one JSON
// array. Appends are serialized in-process; other writers to the same key are
// not coordinated with.
type Repository struct {
	kv KV
	mu sync.Mutex
}

func NewRepository(kv KV) *Repository {
	if kv == nil {
		panic("appointments: kv store required")
	}
	return &Repository{kv: kv}
}

func (r *Repository) List(ctx context.Context) ([]model.Appointment, error) {
	return r.load(ctx)
}

// ListForPatient returns the appointments booked by one patient, in booking order.
func (r *Repository) ListForPatient(ctx context.Context, patientID string) ([]model.Appointment, error) {
	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Appointment, 0, len(all))
	for _, a := range all {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Append adds a to the end of the collection and writes it back with a single
// Set, so a failed write leaves the previous collection in place.
func (r *Repository) Append(ctx context.Context, a model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(ctx)
	if err != nil {
		return err
	}
	list = append(list, a)

	b, err := json.Marshal(list)
	if err != nil {
		return &PersistenceError{Op: "encode", Err: err}
	}
	if err := r.kv.Set(ctx, StorageKey, string(b)); err != nil {
		return &PersistenceError{Op: "write", Err: err}
	}
	return nil
}

func (r *Repository) load(ctx context.Context) ([]model.Appointment, error) {
	raw, ok, err := r.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Err: err}
	}
	list := []model.Appointment{}
	if !ok || raw == "" {
		return list, nil
	}
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, &PersistenceError{Op: "decode", Err: err}
	}
	if list == nil {
		list = []model.Appointment{}
	}
	return list, nil
}
