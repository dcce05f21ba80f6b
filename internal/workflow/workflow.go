// Package workflow drives the four-step appointment booking wizard.
package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"medical-booking/internal/directory"
	"medical-booking/internal/metrics"
	"medical-booking/internal/model"
)

type DoctorLoader interface {
	Load(ctx context.Context, notify func(directory.Notice)) directory.Result
}

type Appender interface {
	Append(ctx context.Context, a model.Appointment) error
}

// Identity provides the signed-in patient.
type Identity interface {
	Session() model.Session
}

type Config struct {
	Loader   DoctorLoader
	Repo     Appender
	Identity Identity
	Logger   zerolog.Logger
	Metrics  *metrics.BookingMetrics
	Slots    []string
	Now      func() time.Time
	// OnComplete runs after a successful submit, outside the workflow lock.
	OnComplete func(model.Appointment)
}

type fields struct {
	date   string
	time   string
	doctor *model.Doctor
}

func (f *fields) hasDate() bool   { return strings.TrimSpace(f.date) != "" }
func (f *fields) hasTime() bool   { return f.time != "" }
func (f *fields) hasDoctor() bool { return f.doctor != nil }

// Workflow is one booking session. All methods are safe for concurrent use.
type Workflow struct {
	loader     DoctorLoader
	repo       Appender
	identity   Identity
	logger     zerolog.Logger
	metrics    *metrics.BookingMetrics
	slots      []string
	now        func() time.Time
	onComplete func(model.Appointment)

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	step       Step
	f          fields
	doctors    []model.Doctor
	message    string
	notice     string
	loading    bool
	submitting bool
	completed  bool
	closed     bool
	lastID     int64
}

func New(cfg Config) *Workflow {
	if cfg.Loader == nil || cfg.Repo == nil {
		panic("workflow: loader and repository required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if len(cfg.Slots) == 0 {
		cfg.Slots = DefaultSlots
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Workflow{
		loader:     cfg.Loader,
		repo:       cfg.Repo,
		identity:   cfg.Identity,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		slots:      append([]string(nil), cfg.Slots...),
		now:        cfg.Now,
		onComplete: cfg.OnComplete,
		ctx:        ctx,
		cancel:     cancel,
		step:       StepDate,
	}
}

// Start loads the doctor list in the background. The returned channel is
// closed once the load has finished or was abandoned.
func (w *Workflow) Start() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.LoadDoctors(w.ctx)
	}()
	return done
}

// LoadDoctors fetches and maps the doctor list. Results arriving after
// Cancel are dropped.
func (w *Workflow) LoadDoctors(ctx context.Context) {
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	defer context.AfterFunc(w.ctx, stop)()

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.loading = true
	w.notice = ""
	w.mu.Unlock()

	res := w.loader.Load(ctx, func(n directory.Notice) {
		w.mu.Lock()
		defer w.mu.Unlock()
		if !w.closed {
			w.notice = n.Message
		}
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.logger.Debug().Str("status", res.Status.String()).Msg("discarding doctor list for closed workflow")
		return
	}
	w.loading = false
	if res.Status == directory.StatusCancelled {
		return
	}
	w.doctors = model.ToDoctorViewModels(res.Accounts)
	if res.Status != directory.StatusLocal {
		w.notice = ""
	}
}

func (w *Workflow) SetDate(date string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.f.date = date
	return nil
}

// SelectTime picks one of the offered slots.
func (w *Workflow) SelectTime(slot string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	for _, s := range w.slots {
		if s == slot {
			w.f.time = slot
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
}

// SelectDoctor picks a doctor from the loaded list. The workflow keeps its own
// copy, so later reloads do not change the selection.
func (w *Workflow) SelectDoctor(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	for _, d := range w.doctors {
		if d.ID == id {
			sel := d
			w.f.doctor = &sel
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownDoctor, id)
}

// Advance moves to the next step if the current step's guard holds.
func (w *Workflow) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.message = ""
	t, ok := forward[w.step]
	if !ok {
		return nil
	}
	if !t.guard(&w.f) {
		w.message = t.message
		return &ValidationError{Step: w.step, Message: t.message}
	}
	w.step = t.next
	return nil
}

// Retreat goes back one step. Entered values are kept.
func (w *Workflow) Retreat() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.message = ""
	if prev, ok := backward[w.step]; ok {
		w.step = prev
	}
	return nil
}

// JumpTo switches to any step without checking guards. Submit re-validates.
func (w *Workflow) JumpTo(s Step) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownStep, int(s))
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.message = ""
	w.step = s
	return nil
}

// Submit persists the appointment from the confirm step. On a storage failure
// every field is kept and the workflow stays on confirm so the user can retry.
func (w *Workflow) Submit(ctx context.Context) (model.Appointment, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return model.Appointment{}, ErrClosed
	}
	if w.submitting {
		w.mu.Unlock()
		return model.Appointment{}, ErrSubmitInProgress
	}
	if w.step != StepConfirm {
		w.mu.Unlock()
		return model.Appointment{}, fmt.Errorf("%w (on %s)", ErrNotOnConfirm, w.step)
	}
	w.message = ""
	if !w.f.hasDate() || !w.f.hasTime() || !w.f.hasDoctor() {
		w.message = MsgMissingFields
		w.mu.Unlock()
		w.metrics.ObserveSubmission("invalid")
		return model.Appointment{}, &ValidationError{Step: w.step, Message: MsgMissingFields}
	}

	var sess model.Session
	if w.identity != nil {
		sess = w.identity.Session()
	}
	a := model.Appointment{
		ID:          w.nextID(),
		PatientID:   sess.UserID,
		PatientName: sess.Name,
		DoctorID:    w.f.doctor.ID,
		DoctorName:  w.f.doctor.Name,
		Date:        w.f.date,
		Time:        w.f.time,
		Specialty:   w.f.doctor.Specialty,
		Status:      model.StatusPending,
	}
	w.submitting = true
	w.mu.Unlock()

	err := w.repo.Append(ctx, a)

	w.mu.Lock()
	w.submitting = false
	if err != nil {
		if !w.closed {
			w.message = MsgBookingFailed
		}
		w.mu.Unlock()
		w.metrics.ObserveSubmission("persistence_error")
		w.logger.Error().Err(err).Str("appointment_id", a.ID).Msg("booking failed")
		return model.Appointment{}, fmt.Errorf("workflow: submit: %w", err)
	}
	notify := !w.closed
	w.step = StepDate
	w.f = fields{}
	w.message = ""
	w.completed = true
	w.closed = true
	w.mu.Unlock()
	w.cancel()

	w.metrics.ObserveSubmission("ok")
	w.logger.Info().
		Str("appointment_id", a.ID).
		Str("patient_id", a.PatientID).
		Str("doctor_id", a.DoctorID).
		Msg("appointment booked")
	if notify && w.onComplete != nil {
		w.onComplete(a)
	}
	return a, nil
}

// Cancel tears the workflow down. Pending loads are abandoned.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.cancel()
}

// nextID derives the id from the clock, never repeating within a workflow.
func (w *Workflow) nextID() string {
	ms := w.now().UnixMilli()
	if ms <= w.lastID {
		ms = w.lastID + 1
	}
	w.lastID = ms
	return strconv.FormatInt(ms, 10)
}

// View is a snapshot of everything a host needs to render the wizard.
type View struct {
	Step           Step
	Title          string
	Subtitle       string
	Date           string
	Time           string
	Doctor         *model.Doctor
	Doctors        []model.Doctor
	Slots          []string
	Message        string
	Notice         string
	LoadingDoctors bool
	Submitting     bool
	Completed      bool
	Closed         bool
}

func (w *Workflow) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := View{
		Step:           w.step,
		Title:          w.step.Title(),
		Subtitle:       w.step.Subtitle(),
		Date:           w.f.date,
		Time:           w.f.time,
		Doctors:        append([]model.Doctor(nil), w.doctors...),
		Slots:          append([]string(nil), w.slots...),
		Message:        w.message,
		Notice:         w.notice,
		LoadingDoctors: w.loading,
		Submitting:     w.submitting,
		Completed:      w.completed,
		Closed:         w.closed,
	}
	if w.f.doctor != nil {
		d := *w.f.doctor
		v.Doctor = &d
	}
	return v
}
