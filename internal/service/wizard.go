package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

// NewWizardState returns the initial wizard: contact open, nothing completed.
func NewWizardState() models.WizardState {
	return models.WizardState{
		Open:      models.SectionContact,
		Completed: make(map[models.SectionName]bool),
	}
}

// SubmitGate tells the page whether the submit button is enabled and why not.
type SubmitGate struct {
	Enabled bool                 `json:"enabled"`
	Reason  string               `json:"reason,omitempty"`
	Pending []models.SectionName `json:"pending,omitempty"`
}

// Wizard drives the section state machine over a persisted WizardState.
type Wizard struct {
	state    *models.WizardState
	debounce time.Duration
	now      func() time.Time
}

func NewWizard(state *models.WizardState, debounce time.Duration, now func() time.Time) *Wizard {
	if state.Completed == nil {
		state.Completed = make(map[models.SectionName]bool)
	}
	if now == nil {
		now = time.Now
	}
	return &Wizard{state: state, debounce: debounce, now: now}
}

// State returns the display state of a section.
func (w *Wizard) State(s models.SectionName) models.SectionState {
	switch {
	case w.state.Open == s:
		return models.SectionActive
	case w.state.Completed[s]:
		return models.SectionCompleted
	default:
		return models.SectionLocked
	}
}

// States returns the display state of every section.
func (w *Wizard) States() map[models.SectionName]models.SectionState {
	out := make(map[models.SectionName]models.SectionState, len(models.Sections))
	for _, s := range models.Sections {
		out[s] = w.State(s)
	}
	return out
}

// Open returns the currently open section, or "" when every section is completed.
func (w *Wizard) Open() models.SectionName {
	return w.state.Open
}

// CanActivate reports whether s may be opened: it is the first section or
// its predecessor is completed.
func (w *Wizard) CanActivate(s models.SectionName) bool {
	idx := s.Index()
	if idx < 0 {
		return false
	}
	return idx == 0 || w.state.Completed[models.Sections[idx-1]]
}

// Activate opens s. A locked section is rejected and nothing changes.
func (w *Wizard) Activate(s models.SectionName) error {
	if s.Index() < 0 {
		return apperrors.NewValidationError("section", fmt.Sprintf("unknown section %q", s))
	}
	if !w.CanActivate(s) {
		return fmt.Errorf("%s: %w", s, apperrors.ErrSectionLocked)
	}
	w.state.Open = s
	return nil
}

// Complete applies a validation result for s. With no field errors the
// section is marked completed and the next unfinished section opens; it
// reports whether the section advanced. On failure the section stays open
// and loses any earlier completion.
func (w *Wizard) Complete(s models.SectionName, fieldErrors map[string]string) (bool, error) {
	if s.Index() < 0 {
		return false, apperrors.NewValidationError("section", fmt.Sprintf("unknown section %q", s))
	}
	if !w.CanActivate(s) {
		return false, fmt.Errorf("%s: %w", s, apperrors.ErrSectionLocked)
	}
	delete(w.state.PendingBlur, s)

	if len(fieldErrors) > 0 {
		delete(w.state.Completed, s)
		w.state.Open = s
		return false, nil
	}

	w.state.Completed[s] = true
	w.state.Open = w.nextOpen(s)
	return true, nil
}

func (w *Wizard) nextOpen(after models.SectionName) models.SectionName {
	idx := after.Index()
	for _, s := range models.Sections[idx+1:] {
		if !w.state.Completed[s] {
			return s
		}
	}
	for _, s := range models.Sections {
		if !w.state.Completed[s] {
			return s
		}
	}
	return ""
}

// Blur records a blur inside the open section. The section becomes due for an
// automatic completion check once the debounce delay passes with no newer blur.
func (w *Wizard) Blur(s models.SectionName) bool {
	if s != w.state.Open || s == "" {
		return false
	}
	if w.state.PendingBlur == nil {
		w.state.PendingBlur = make(map[models.SectionName]time.Time)
	}
	w.state.PendingBlur[s] = w.now()
	return true
}

// DueBlurs removes and returns the pending checks whose delay has elapsed.
// Checks for sections that are no longer open are dropped.
func (w *Wizard) DueBlurs() []models.SectionName {
	now := w.now()
	var due []models.SectionName
	for _, s := range models.Sections {
		at, ok := w.state.PendingBlur[s]
		if !ok {
			continue
		}
		if s != w.state.Open {
			delete(w.state.PendingBlur, s)
			continue
		}
		if now.Sub(at) >= w.debounce {
			delete(w.state.PendingBlur, s)
			due = append(due, s)
		}
	}
	return due
}

// AllCompleted reports the terminal state.
func (w *Wizard) AllCompleted() bool {
	for _, s := range models.Sections {
		if !w.state.Completed[s] {
			return false
		}
	}
	return true
}

func (w *Wizard) pending() []models.SectionName {
	var out []models.SectionName
	for _, s := range models.Sections {
		if !w.state.Completed[s] {
			out = append(out, s)
		}
	}
	return out
}

// Gate evaluates the submit button.
func (w *Wizard) Gate() SubmitGate {
	if w.state.Submitting {
		return SubmitGate{Reason: "submitting"}
	}
	pending := w.pending()
	if len(pending) > 0 {
		names := make([]string, len(pending))
		for i, s := range pending {
			names[i] = string(s)
		}
		return SubmitGate{Reason: "complete: " + strings.Join(names, ", "), Pending: pending}
	}
	return SubmitGate{Enabled: true}
}

// BeginSubmit sets the submitting latch.
func (w *Wizard) BeginSubmit() error {
	if !w.AllCompleted() {
		return apperrors.ErrSubmitNotReady
	}
	if w.state.Submitting {
		return apperrors.ErrAlreadySubmitting
	}
	w.state.Submitting = true
	return nil
}

// EndSubmit releases the latch after a failed order creation. A successful
// submission keeps it set.
func (w *Wizard) EndSubmit(success bool) {
	if !success {
		w.state.Submitting = false
	}
}

// Invalidate reopens s and drops its completion after one of its fields
// changed to an invalid value.
func (w *Wizard) Invalidate(s models.SectionName) {
	if s.Index() < 0 {
		return
	}
	if w.state.Open != s {
		delete(w.state.PendingBlur, w.state.Open)
	}
	delete(w.state.Completed, s)
	w.state.Open = s
}
