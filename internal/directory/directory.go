// Package directory fetches doctor accounts from the remote directory service.
package directory

import (
	"context"
	"errors"

	"medical-booking/internal/model"
)

// ErrUnavailable marks an answer served from the directory's own fallback
// instead of the live service. Accounts returned alongside it are still usable.
var ErrUnavailable = errors.New("directory unavailable")

// Directory returns every doctor account it can resolve. On failure it may
// still return partial data together with the error.
type Directory interface {
	GetAllDoctors(ctx context.Context) ([]model.Account, error)
}

// Func adapts a plain function to Directory.
type Func func(ctx context.Context) ([]model.Account, error)

func (f Func) GetAllDoctors(ctx context.Context) ([]model.Account, error) { return f(ctx) }
