package directory

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"medical-booking/internal/metrics"
	"medical-booking/internal/model"
)

type NoticeKind string

const (
	NoticeDegraded  NoticeKind = "degraded"
	NoticeLocalData NoticeKind = "local_data"
)

// User facing notice texts.
const (
	MsgDegraded  = "Carregando médicos com dados locais..."
	MsgLocalData = "Médicos carregados com dados locais (API indisponível)"
)

// Notice is a non-fatal status shown while the directory is degraded.
type Notice struct {
	Kind    NoticeKind
	Message string
}

type Status int

const (
	StatusOK Status = iota
	StatusRecovered
	StatusLocal
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRecovered:
		return "recovered"
	case StatusLocal:
		return "local"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

type Result struct {
	Accounts []model.Account
	Status   Status
}

const DefaultRetryDelay = time.Second

// Loader runs one primary attempt and at most one delayed retry.
type Loader struct {
	dir     Directory
	delay   time.Duration
	logger  zerolog.Logger
	metrics *metrics.BookingMetrics
}

func NewLoader(dir Directory, logger zerolog.Logger) *Loader {
	if dir == nil {
		panic("directory: directory required")
	}
	return &Loader{dir: dir, delay: DefaultRetryDelay, logger: logger}
}

func (l *Loader) WithDelay(d time.Duration) *Loader {
	if d > 0 {
		l.delay = d
	}
	return l
}

func (l *Loader) WithMetrics(m *metrics.BookingMetrics) *Loader {
	l.metrics = m
	return l
}

// Load never fails. Trouble is reported through notify and Result.Status;
// when both attempts fail it returns whatever the directory handed back with
// the second error, or an empty slice. If ctx ends while waiting for the
// retry, no retry is made and the status is StatusCancelled.
func (l *Loader) Load(ctx context.Context, notify func(Notice)) Result {
	accounts, err := l.dir.GetAllDoctors(ctx)
	if err == nil {
		l.metrics.ObserveDirectoryAttempt("primary", "ok")
		return Result{Accounts: nonNil(accounts), Status: StatusOK}
	}
	l.metrics.ObserveDirectoryAttempt("primary", "error")
	if ctx.Err() != nil {
		return Result{Status: StatusCancelled}
	}
	l.logger.Warn().Err(err).Dur("retry_in", l.delay).Msg("doctor directory failed, retrying")
	l.emit(notify, Notice{Kind: NoticeDegraded, Message: MsgDegraded})

	timer := time.NewTimer(l.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return Result{Status: StatusCancelled}
	case <-timer.C:
	}

	accounts, err = l.dir.GetAllDoctors(ctx)
	if err == nil {
		l.metrics.ObserveDirectoryAttempt("retry", "ok")
		return Result{Accounts: nonNil(accounts), Status: StatusRecovered}
	}
	l.metrics.ObserveDirectoryAttempt("retry", "error")
	if ctx.Err() != nil {
		return Result{Status: StatusCancelled}
	}
	l.logger.Error().Err(err).Int("accounts", len(accounts)).Msg("doctor directory retry failed, using local data")
	l.emit(notify, Notice{Kind: NoticeLocalData, Message: MsgLocalData})
	return Result{Accounts: nonNil(accounts), Status: StatusLocal}
}

func (l *Loader) emit(notify func(Notice), n Notice) {
	l.metrics.ObserveNotice(string(n.Kind))
	if notify != nil {
		notify(n)
	}
}

func nonNil(a []model.Account) []model.Account {
	if a == nil {
		return []model.Account{}
	}
	return a
}
