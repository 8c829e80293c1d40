// Package dispatch drives one report from editing to a server-confirmed
// submission: local validation, the duplicate guard, the POST itself and
// routing to the confirmation view.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"campus-gms/duplicates"
	"campus-gms/forms"
	"campus-gms/types"
)

// Phase is where a report is in its lifecycle.
type Phase int

const (
	Editing Phase = iota
	Validating
	Submitting
	Submitted
	Failed
)

func (p Phase) String() string {
	switch p {
	case Editing:
		return "editing"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

var (
	ErrDuplicateSelected = errors.New("issue already reported")
	ErrNotSignedIn       = errors.New("not signed in")
	ErrAlreadySubmitted  = errors.New("report already submitted")
	ErrInFlight          = errors.New("submission in progress")
)

// Notifier shows transient, non-blocking messages.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// Navigator moves between views.
type Navigator interface {
	ToConfirmation(params map[string]any)
	Back()
}

// Submitter posts a report and returns the server's response data.
type Submitter interface {
	SubmitIssue(ctx context.Context, sub types.IssueSubmission) (map[string]any, error)
}

// Identity supplies the "raised by" stamp.
type Identity interface {
	Reporter() (types.Reporter, bool)
}

// Deps are the collaborators of a Dispatcher.
type Deps struct {
	Form      *forms.Form
	Submitter Submitter
	Identity  Identity
	Notifier  Notifier
	Navigator Navigator
	Logger    *zap.Logger
	// OnPhase, when set, sees every phase change. It runs under the
	// dispatcher's lock and must not call back into it.
	OnPhase func(Phase)
}

// Dispatcher owns the state of one report.
type Dispatcher struct {
	d Deps

	mu        sync.Mutex
	phase     Phase
	state     forms.State
	duplicate *types.IssueView
}

// New starts a report with an empty form.
func New(d Deps) *Dispatcher {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Dispatcher{d: d, state: d.Form.Initial()}
}

// Phase returns the current phase.
func (s *Dispatcher) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// State returns the current form state.
func (s *Dispatcher) State() forms.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Dispatcher) setPhaseLocked(p Phase) {
	if s.phase == p {
		return
	}
	s.phase = p
	if s.d.OnPhase != nil {
		s.d.OnPhase(p)
	}
}

// Apply feeds an edit to the form. A failed report goes back to editing;
// a submitted one no longer changes. Moving to another location drops a
// previously picked duplicate.
func (s *Dispatcher) Apply(actions ...forms.Action) forms.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case Submitted, Submitting:
		return s.state
	case Failed:
		s.setPhaseLocked(Editing)
	}
	def := s.d.Form.Definition()
	before, hadBefore := duplicates.FingerprintFor(def, s.state)
	s.state = s.d.Form.ReduceAll(s.state, actions...)
	if s.duplicate != nil {
		after, hasAfter := duplicates.FingerprintFor(def, s.state)
		if hadBefore != hasAfter || before != after {
			s.duplicate = nil
		}
	}
	return s.state
}

// SelectDuplicate records the student's pick from the similar-issues list.
// Picking a real issue blocks the report and routes back.
func (s *Dispatcher) SelectDuplicate(c duplicates.Candidate) error {
	s.mu.Lock()
	if c.IsSentinel() {
		s.duplicate = nil
		s.mu.Unlock()
		return nil
	}
	is := *c.Issue
	s.duplicate = &is
	s.mu.Unlock()

	s.d.Logger.Info("report matches an open issue", zap.String("ticket", is.Ticket), zap.Uint("issue_id", is.ID))
	s.d.Notifier.Info(fmt.Sprintf("This has already been reported (%s). Thanks for checking!", ticketOf(is)))
	s.d.Navigator.Back()
	return ErrDuplicateSelected
}

func ticketOf(is types.IssueView) string {
	if is.Ticket != "" {
		return is.Ticket
	}
	return fmt.Sprintf("#%d", is.ID)
}

// Submit validates the form and posts it once. On success the navigator
// is sent to the confirmation view with the whole response.
func (s *Dispatcher) Submit(ctx context.Context) (map[string]any, error) {
	s.mu.Lock()
	switch s.phase {
	case Submitted:
		s.mu.Unlock()
		return nil, ErrAlreadySubmitted
	case Submitting, Validating:
		s.mu.Unlock()
		return nil, ErrInFlight
	case Failed:
		s.setPhaseLocked(Editing)
	}

	if s.duplicate != nil {
		dup := *s.duplicate
		s.mu.Unlock()
		s.d.Notifier.Info(fmt.Sprintf("This has already been reported (%s).", ticketOf(dup)))
		s.d.Navigator.Back()
		return nil, ErrDuplicateSelected
	}

	s.setPhaseLocked(Validating)
	if err := s.d.Form.Validate(s.state); err != nil {
		s.setPhaseLocked(Editing)
		s.mu.Unlock()
		s.d.Notifier.Error(validationMessage(err))
		return nil, err
	}
	who, ok := s.d.Identity.Reporter()
	if !ok {
		s.setPhaseLocked(Editing)
		s.mu.Unlock()
		s.d.Notifier.Error("Please sign in before submitting a report")
		return nil, ErrNotSignedIn
	}
	payload := s.d.Form.Payload(s.state, who)
	s.setPhaseLocked(Submitting)
	s.mu.Unlock()

	resp, err := s.d.Submitter.SubmitIssue(ctx, payload)

	s.mu.Lock()
	if err != nil {
		s.setPhaseLocked(Failed)
		s.mu.Unlock()
		s.d.Logger.Warn("submit report", zap.String("category", payload.Category), zap.Error(err))
		s.d.Notifier.Error("Could not submit your report: " + err.Error())
		return nil, fmt.Errorf("submit %s report: %w", payload.Category, err)
	}
	s.setPhaseLocked(Submitted)
	s.mu.Unlock()

	s.d.Navigator.ToConfirmation(resp)
	return resp, nil
}

func validationMessage(err error) string {
	var ve *forms.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	var parts []string
	if len(ve.Missing) > 0 {
		parts = append(parts, "Please fill in: "+strings.Join(ve.Missing, ", "))
	}
	if len(ve.Invalid) > 0 {
		parts = append(parts, "Please check: "+strings.Join(ve.Invalid, ", "))
	}
	return strings.Join(parts, ". ")
}
