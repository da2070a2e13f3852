/*
Package reschedule turns pointer gestures on trip bars into optimistic
date changes with server-confirmed commit or full rollback.

PURPOSE:
  A small state machine:

    idle -> dragging -> committing -> (committed | reverted)

  While dragging, pointer movement produces a candidate date span that
  is previewed visually but never touches the canonical trip. On
  release, an unchanged candidate goes straight back to idle with no
  network call; a changed one is applied optimistically and committed
  with a single timeout-guarded server update. Success replaces the
  canonical trip wholesale, invalidates the employee's compliance
  caches and redraws only the affected trip. Any failure reverts the
  visual change completely and surfaces a transient notification — no
  partial state survives.

CONCURRENCY DISCIPLINE:
  One drag/resize session at a time: a pointer-down while a session is
  active is ignored. One outstanding commit per trip. Invariant
  violations such as a pointer-id mismatch are ignored defensively;
  this runs inside a live UI where a panic is worse than a no-op.

DESIGN:
  The change is an explicit command object (ChangeSet) with apply /
  revert operations on an injected TripView, so the machine is
  independent of whatever toolkit renders the bars. No package-level
  state; every collaborator is injected.
*/
package reschedule

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/trip-engine/calendar"
	"github.com/warp/trip-engine/compliance"
	"github.com/warp/trip-engine/trip"
)

// =============================================================================
// CONTRACTS
// =============================================================================

// Gesture selects what a drag session edits.
type Gesture int

const (
	// GestureMove shifts both endpoints by the pointer delta.
	GestureMove Gesture = iota

	// GestureResizeStart edits only the start, end held fixed.
	GestureResizeStart

	// GestureResizeEnd edits only the end, start held fixed.
	GestureResizeEnd
)

// ChangeSet is the proposed date change for one trip.
type ChangeSet struct {
	TripID        string
	ProposedStart calendar.Day
	ProposedEnd   calendar.Day
}

// TripView is the visual surface the controller drives. Preview shows
// the candidate during the drag, Apply commits it optimistically, and
// Revert restores the exact pre-drag position and size.
type TripView interface {
	Preview(cs ChangeSet)
	Apply(cs ChangeSet)
	Revert(tripID string)
}

// TripUpdater issues the server-side date update. Implemented by the
// HTTP client; the returned record is the server's authoritative
// representation of the trip.
type TripUpdater interface {
	UpdateTripDates(ctx context.Context, id string, start, end calendar.Day) (trip.RawTrip, error)
}

// Notifier surfaces a transient failure notification to the user.
type Notifier interface {
	Notify(message string)
}

// State of the controller.
type State string

const (
	StateIdle       State = "idle"
	StateDragging   State = "dragging"
	StateCommitting State = "committing"
)

// Outcome of a pointer release.
type Outcome string

const (
	// OutcomeNone: candidate unchanged, no commit attempted.
	OutcomeNone Outcome = "none"

	OutcomeCommitted Outcome = "committed"
	OutcomeReverted  Outcome = "reverted"
)

// DefaultCommitTimeout bounds a single commit request so a stalled
// backend cannot wedge the UI.
const DefaultCommitTimeout = 10 * time.Second

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the active drag session and the canonical snapshot
// the session mutates on confirmed commits.
type Controller struct {
	Updater       TripUpdater
	View          TripView
	Notifier      Notifier
	Cache         *compliance.Cache
	Log           logrus.FieldLogger
	CommitTimeout time.Duration

	// OnCommitted redraws just the affected trip after a confirmed
	// commit. Optional.
	OnCommitted func(t trip.Trip, p calendar.Placement, st compliance.TripStatus)

	mu       sync.Mutex
	snap     trip.Snapshot
	vr       calendar.VisibleRange
	state    State
	session  *session
	inflight map[string]bool
}

type session struct {
	pointerID int
	gesture   Gesture
	original  trip.Trip
	anchor    calendar.Day
	candidate ChangeSet
}

func NewController(updater TripUpdater, view TripView, notifier Notifier, cache *compliance.Cache, log logrus.FieldLogger) *Controller {
	return &Controller{
		Updater:       updater,
		View:          view,
		Notifier:      notifier,
		Cache:         cache,
		Log:           log,
		CommitTimeout: DefaultCommitTimeout,
		state:         StateIdle,
		inflight:      make(map[string]bool),
	}
}

// SetSnapshot replaces the canonical snapshot wholesale and resets the
// compliance caches. Called after every full fetch.
func (c *Controller) SetSnapshot(snap trip.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = snap
	if c.Cache != nil {
		c.Cache.Reset()
	}
}

// SetRange updates the visible range resize clamping works against.
func (c *Controller) SetRange(vr calendar.VisibleRange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vr = vr
}

// Snapshot returns the current canonical snapshot.
func (c *Controller) Snapshot() trip.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// CurrentState returns the controller state.
func (c *Controller) CurrentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// PointerDown starts a drag session on a trip handle. Ignored when a
// session is already active, when a commit is outstanding for the
// trip, or when the trip does not exist.
func (c *Controller) PointerDown(pointerID int, tripID string, g Gesture, at calendar.Day) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle || c.inflight[tripID] {
		return
	}
	t := c.snap.FindTrip(tripID)
	if t == nil {
		return
	}

	c.session = &session{
		pointerID: pointerID,
		gesture:   g,
		original:  *t,
		anchor:    at,
		candidate: ChangeSet{TripID: tripID, ProposedStart: t.Start, ProposedEnd: t.End},
	}
	c.state = StateDragging
}

// PointerMove recomputes the candidate span from the pointer position
// and previews it. A move with no active session or a mismatched
// pointer id is a silent no-op.
func (c *Controller) PointerMove(pointerID int, at calendar.Day) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateDragging || c.session == nil || c.session.pointerID != pointerID {
		return
	}

	s := c.session
	delta := calendar.DaysBetween(s.anchor, at)
	orig := s.original

	switch s.gesture {
	case GestureMove:
		s.candidate.ProposedStart = orig.Start.AddDays(delta)
		s.candidate.ProposedEnd = orig.End.AddDays(delta)

	case GestureResizeStart:
		// The edited endpoint may not cross the fixed one and may not
		// leave the visible range.
		proposed := orig.Start.AddDays(delta)
		proposed = calendar.MinDay(proposed, orig.End)
		proposed = calendar.MaxDay(proposed, c.vr.Start)
		s.candidate.ProposedStart = proposed
		s.candidate.ProposedEnd = orig.End

	case GestureResizeEnd:
		proposed := orig.End.AddDays(delta)
		proposed = calendar.MaxDay(proposed, orig.Start)
		proposed = calendar.MinDay(proposed, c.vr.End)
		s.candidate.ProposedStart = orig.Start
		s.candidate.ProposedEnd = proposed
	}

	if c.View != nil {
		c.View.Preview(s.candidate)
	}
}

// PointerUp ends the session. An unchanged candidate transitions
// straight back to idle with no network call; a changed one is
// committed optimistically and reverted in full on any failure.
func (c *Controller) PointerUp(ctx context.Context, pointerID int) Outcome {
	c.mu.Lock()

	if c.state != StateDragging || c.session == nil || c.session.pointerID != pointerID {
		c.mu.Unlock()
		return OutcomeNone
	}

	s := c.session
	unchanged := s.candidate.ProposedStart.Equal(s.original.Start) &&
		s.candidate.ProposedEnd.Equal(s.original.End)

	if unchanged {
		c.session = nil
		c.state = StateIdle
		c.mu.Unlock()
		if c.View != nil {
			c.View.Revert(s.original.ID)
		}
		return OutcomeNone
	}

	c.state = StateCommitting
	c.inflight[s.original.ID] = true
	c.mu.Unlock()

	return c.commit(ctx, s)
}

// Cancel aborts an active drag without committing, restoring the
// pre-drag visuals.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.state != StateDragging || c.session == nil {
		c.mu.Unlock()
		return
	}
	tripID := c.session.original.ID
	c.session = nil
	c.state = StateIdle
	c.mu.Unlock()

	if c.View != nil {
		c.View.Revert(tripID)
	}
}

// =============================================================================
// COMMIT / ROLLBACK
// =============================================================================

func (c *Controller) commit(ctx context.Context, s *session) Outcome {
	cs := s.candidate

	// Optimistic visual apply; the canonical trip stays untouched until
	// the server confirms.
	if c.View != nil {
		c.View.Apply(cs)
	}

	timeout := c.CommitTimeout
	if timeout <= 0 {
		timeout = DefaultCommitTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := c.Updater.UpdateTripDates(ctx, cs.TripID, cs.ProposedStart, cs.ProposedEnd)
	if err != nil {
		return c.rollback(s, err)
	}

	confirmed := trip.Normalize(raw)
	if confirmed == nil {
		return c.rollback(s, errUnusableResponse)
	}

	c.mu.Lock()
	c.snap = c.snap.WithTrip(*confirmed)
	c.session = nil
	c.state = StateIdle
	delete(c.inflight, cs.TripID)
	vr := c.vr
	trips := c.snap.EmployeeTrips(confirmed.EmployeeID)
	c.mu.Unlock()

	if c.Cache != nil {
		c.Cache.InvalidateEmployee(confirmed.EmployeeID)
	}

	if c.OnCommitted != nil {
		var st compliance.TripStatus
		if c.Cache != nil {
			st = c.Cache.StatusIndex(confirmed.EmployeeID, trips)[confirmed.ID]
		}
		c.OnCommitted(*confirmed, calendar.TripPlacement(confirmed.Start, confirmed.End, vr), st)
	}

	if c.Log != nil {
		c.Log.WithFields(logrus.Fields{
			"trip_id": confirmed.ID,
			"start":   confirmed.Start.String(),
			"end":     confirmed.End.String(),
		}).Info("trip reschedule committed")
	}
	return OutcomeCommitted
}

func (c *Controller) rollback(s *session, cause error) Outcome {
	c.mu.Lock()
	c.session = nil
	c.state = StateIdle
	delete(c.inflight, s.original.ID)
	c.mu.Unlock()

	if c.View != nil {
		c.View.Revert(s.original.ID)
	}
	if c.Notifier != nil {
		c.Notifier.Notify("Could not save the new trip dates — change undone")
	}
	if c.Log != nil {
		c.Log.WithFields(logrus.Fields{
			"trip_id": s.original.ID,
			"error":   cause.Error(),
		}).Warn("trip reschedule reverted")
	}
	return OutcomeReverted
}

type commitError string

func (e commitError) Error() string { return string(e) }

const errUnusableResponse = commitError("server returned an unusable trip record")
