// Package wizard drives the dashboard flow from careers URL to generated email.
//
// Step graph:
//
//	input ──submit──► jobs ──select──► email
//	  ▲                 │                │
//	  └──────back───────┘◄──────back─────┘
//
// reset returns to input from anywhere. Exactly one step is active.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"outreach-engine/internal/domain"
)

type Step string

const (
	StepInput Step = "input"
	StepJobs  Step = "jobs"
	StepEmail Step = "email"
)

var (
	ErrInvalidURL     = errors.New("please enter a valid URL")
	ErrBusy           = errors.New("a request is already in progress")
	ErrWrongStep      = errors.New("action not available in the current step")
	ErrUnknownJob     = errors.New("job is not in the current list")
	ErrNoJobs         = errors.New("no job listings found")
	ErrStale          = errors.New("response arrived after the session moved on")
	ErrExtractFailed  = errors.New("failed to extract job listings")
	ErrGenerateFailed = errors.New("failed to generate email")
)

// Extractor fetches job listings for a careers page.
type Extractor interface {
	ExtractJobs(ctx context.Context, careersURL string) ([]domain.JobListing, error)
}

// Generator writes an outreach email for one job.
type Generator interface {
	GenerateEmail(ctx context.Context, job domain.JobListing) (domain.GeneratedEmail, error)
}

// Notifier shows transient, non-blocking messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

// State is a snapshot of a wizard session. Slices and pointers are copies.
type State struct {
	ID          string                 `json:"id"`
	Step        Step                   `json:"step"`
	URL         string                 `json:"url"`
	Jobs        []domain.JobListing    `json:"jobs"`
	SelectedJob *domain.JobListing     `json:"selectedJob"`
	Email       *domain.GeneratedEmail `json:"generatedEmail"`
	Busy        bool                   `json:"busy"`
	Generation  uint64                 `json:"generation"`
}

type Wizard struct {
	id       string
	extract  Extractor
	generate Generator
	notify   Notifier
	onChange func(State)
	now      func() time.Time

	mu         sync.Mutex
	step       Step
	url        string
	jobs       []domain.JobListing
	selected   *domain.JobListing
	email      *domain.GeneratedEmail
	busy       bool
	gen        uint64
	lastActive time.Time
}

type Option func(*Wizard)

func WithNotifier(n Notifier) Option {
	return func(w *Wizard) {
		if n != nil {
			w.notify = n
		}
	}
}

// WithOnChange registers a callback invoked (outside the lock) after every
// committed transition.
func WithOnChange(fn func(State)) Option {
	return func(w *Wizard) { w.onChange = fn }
}

func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

func New(id string, ex Extractor, gen Generator, opts ...Option) *Wizard {
	w := &Wizard{
		id:       id,
		extract:  ex,
		generate: gen,
		notify:   nopNotifier{},
		now:      time.Now,
		step:     StepInput,
		jobs:     []domain.JobListing{},
	}
	for _, o := range opts {
		o(w)
	}
	w.lastActive = w.now()
	return w
}

func (w *Wizard) ID() string { return w.id }

// Submit validates careersURL, asks the backend for its job listings and
// moves to the jobs step. On any failure the session is left untouched.
func (w *Wizard) Submit(ctx context.Context, careersURL string) error {
	careersURL = strings.TrimSpace(careersURL)
	if !IsValidURL(careersURL) {
		return ErrInvalidURL
	}
	canon := CanonicalURL(careersURL)

	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.step != StepInput {
		w.mu.Unlock()
		return ErrWrongStep
	}
	w.busy = true
	gen := w.gen
	w.lastActive = w.now()
	w.mu.Unlock()

	jobs, err := w.extract.ExtractJobs(ctx, canon)

	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		log.Printf("level=info msg=\"discarding stale response\" wizard=%s op=submit gen=%d", w.id, gen)
		return ErrStale
	}
	w.busy = false
	if err != nil {
		w.mu.Unlock()
		log.Printf("level=warn msg=\"extract failed\" wizard=%s url=%q err=%v", w.id, canon, err)
		w.notify.Error("Failed to extract job listings")
		return fmt.Errorf("%w: %w", ErrExtractFailed, err)
	}
	if len(jobs) == 0 {
		w.mu.Unlock()
		w.notify.Error("No job listings found on that page")
		return ErrNoJobs
	}

	w.url = careersURL
	w.jobs = domain.CloneJobs(jobs)
	w.selected = nil
	w.email = nil
	w.step = StepJobs
	w.gen++
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify.Success(fmt.Sprintf("Found %d job listings", len(jobs)))
	w.changed(snap)
	return nil
}

// Select generates an email for the job with jobID and moves to the email step.
func (w *Wizard) Select(ctx context.Context, jobID string) error {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.step != StepJobs {
		w.mu.Unlock()
		return ErrWrongStep
	}
	job, ok := w.findJobLocked(jobID)
	if !ok {
		w.mu.Unlock()
		return ErrUnknownJob
	}
	w.busy = true
	gen := w.gen
	w.lastActive = w.now()
	w.mu.Unlock()

	email, err := w.generate.GenerateEmail(ctx, job)

	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		log.Printf("level=info msg=\"discarding stale response\" wizard=%s op=select gen=%d", w.id, gen)
		return ErrStale
	}
	w.busy = false
	if err != nil {
		w.mu.Unlock()
		log.Printf("level=warn msg=\"generate failed\" wizard=%s job=%s err=%v", w.id, jobID, err)
		w.notify.Error("Failed to generate email")
		return fmt.Errorf("%w: %w", ErrGenerateFailed, err)
	}

	sel := job.Clone()
	em := email.Clone()
	w.selected = &sel
	w.email = &em
	w.step = StepEmail
	w.gen++
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify.Success("Email generated successfully!")
	w.changed(snap)
	return nil
}

// Back moves one step towards input. Leaving the jobs step discards the job
// list. A response still in flight is ignored once it lands.
func (w *Wizard) Back() error {
	w.mu.Lock()
	switch w.step {
	case StepJobs:
		w.step = StepInput
		w.jobs = []domain.JobListing{}
		w.selected = nil
		w.email = nil
	case StepEmail:
		w.step = StepJobs
	default:
		w.mu.Unlock()
		return ErrWrongStep
	}
	w.busy = false
	w.gen++
	w.lastActive = w.now()
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.changed(snap)
	return nil
}

// Reset clears the session and returns to input from any step.
func (w *Wizard) Reset() {
	w.mu.Lock()
	w.step = StepInput
	w.url = ""
	w.jobs = []domain.JobListing{}
	w.selected = nil
	w.email = nil
	w.busy = false
	w.gen++
	w.lastActive = w.now()
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.changed(snap)
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Email returns the generated email when the session is on the email step.
func (w *Wizard) Email() (domain.GeneratedEmail, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepEmail || w.email == nil {
		return domain.GeneratedEmail{}, false
	}
	return w.email.Clone(), true
}

func (w *Wizard) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

func (w *Wizard) LastActive() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActive
}

func (w *Wizard) findJobLocked(id string) (domain.JobListing, bool) {
	for _, j := range w.jobs {
		if j.ID == id {
			return j.Clone(), true
		}
	}
	return domain.JobListing{}, false
}

func (w *Wizard) snapshotLocked() State {
	st := State{
		ID:         w.id,
		Step:       w.step,
		URL:        w.url,
		Jobs:       domain.CloneJobs(w.jobs),
		Busy:       w.busy,
		Generation: w.gen,
	}
	if w.selected != nil {
		j := w.selected.Clone()
		st.SelectedJob = &j
	}
	if w.email != nil {
		e := w.email.Clone()
		st.Email = &e
	}
	return st
}

func (w *Wizard) changed(st State) {
	if w.onChange != nil {
		w.onChange(st)
	}
}
