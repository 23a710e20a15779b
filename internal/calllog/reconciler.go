package calllog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserResolver maps a provider assistant id to the internal user owning it.
// Implemented by the assistant service; kept as an interface so the
// reconciler stays free of cross-package model dependencies.
type UserResolver interface {
	ResolveUserByAssistant(ctx context.Context, providerAssistantID string) (userID string, ok bool, err error)
}

// Notifier pushes realtime call updates to a user's dashboard sessions.
// Notification is best-effort; reconciliation must not depend on it.
type Notifier interface {
	NotifyCallUpdate(userID string, upd CallUpdate)
}

// Reconciler converges CallLog rows toward the latest known truth under
// concurrent, out-of-order, at-least-once webhook delivery.
//
// Ordering rule: every event kind carries a rank (in-progress=1, ended=2,
// report=3). An event mutates the row only when its rank is >= the stored
// rank; the repository serializes the read-modify-write per call_id. Together
// these make redelivery idempotent and make it impossible for a late
// preliminary "ended" to overwrite an already-applied report.
type Reconciler struct {
	repo     Repository
	users    UserResolver
	notifier Notifier
	clock    func() time.Time
}

func NewReconciler(repo Repository, users UserResolver, notifier Notifier) *Reconciler {
	return &Reconciler{repo: repo, users: users, notifier: notifier, clock: time.Now}
}

// ApplyEvent applies one lifecycle event and reports what happened.
func (r *Reconciler) ApplyEvent(ctx context.Context, ev Event) (Outcome, error) {
	if ev.CallID == "" {
		return Outcome{}, ErrInvalidEvent
	}
	if ev.Kind < EventCallStarted || ev.Kind > EventCallReport {
		return Outcome{}, ErrInvalidEvent
	}

	now := r.clock().UTC()
	out := Outcome{Action: OutcomeNoop}

	err := r.repo.Reconcile(ctx, ev.CallID, func(cur *CallLog) (*CallLog, error) {
		switch ev.Kind {
		case EventCallStarted:
			if cur != nil {
				// Redelivered in-progress event; the row exists, nothing to do.
				out.Log = cur
				return nil, nil
			}
			created := r.newFromStart(ev, now)
			out = Outcome{Action: OutcomeCreated, Log: created}
			return created, nil

		case EventCallEnded:
			if cur == nil {
				// "ended" for an unseen call is dropped; the report recreates it.
				return nil, nil
			}
			if cur.EventRank > ev.Kind.Rank() {
				out.Log = cur
				return nil, nil
			}
			firstTerminal := cur.EventRank < ev.Kind.Rank()
			ended := now
			cur.EndedAt = &ended
			cur.Status = StatusCompleted
			cur.EventRank = ev.Kind.Rank()
			cur.UpdatedAt = now
			out = Outcome{Action: OutcomeUpdated, Log: cur, FirstTerminal: firstTerminal}
			return cur, nil

		case EventCallReport:
			if cur == nil {
				// A report-created row is born completed, so this is its
				// first terminal transition.
				created := r.newFromReport(ev, now)
				out = Outcome{Action: OutcomeCreated, Log: created, FirstTerminal: true}
				return created, nil
			}
			firstTerminal := cur.EventRank < EventCallEnded.Rank()
			applyReport(cur, ev, now)
			out = Outcome{Action: OutcomeUpdated, Log: cur, FirstTerminal: firstTerminal}
			return cur, nil
		}
		return nil, ErrInvalidEvent
	})
	if err != nil {
		return Outcome{}, err
	}

	if ev.Kind == EventCallReport && out.Action != OutcomeNoop {
		r.notify(ctx, ev, out.Log)
	}
	return out, nil
}

func (r *Reconciler) newFromStart(ev Event, now time.Time) *CallLog {
	startedAt := ev.CallCreatedAt
	if startedAt.IsZero() {
		startedAt = now
	}
	return &CallLog{
		ID:          uuid.NewString(),
		OrgID:       ev.OrgID,
		CallID:      ev.CallID,
		Type:        ev.CallType,
		Status:      StatusOngoing,
		StartedAt:   &startedAt,
		AssistantID: ev.AssistantID,
		Assistant:   ev.Snapshot,
		EventRank:   ev.Kind.Rank(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (r *Reconciler) newFromReport(ev Event, now time.Time) *CallLog {
	log := &CallLog{
		ID:          uuid.NewString(),
		OrgID:       ev.OrgID,
		CallID:      ev.CallID,
		Type:        ev.CallType,
		Status:      StatusCompleted,
		AssistantID: ev.AssistantID,
		Assistant:   ev.Snapshot,
		EventRank:   ev.Kind.Rank(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	log.StartedAt = ev.StartedAt
	log.EndedAt = ev.EndedAt
	log.Minutes = ev.Minutes
	log.Cost = ev.Cost
	log.CustomerNumber = ev.CustomerNumber
	return log
}

func applyReport(cur *CallLog, ev Event, now time.Time) {
	if ev.StartedAt != nil {
		cur.StartedAt = ev.StartedAt
	}
	if ev.EndedAt != nil {
		cur.EndedAt = ev.EndedAt
	}
	cur.Minutes = ev.Minutes
	cur.Cost = ev.Cost
	cur.Status = StatusCompleted
	if ev.AssistantID != "" && cur.AssistantID == "" {
		cur.AssistantID = ev.AssistantID
	}
	if ev.Snapshot != nil && cur.Assistant == nil {
		cur.Assistant = ev.Snapshot
	}
	cur.EventRank = EventCallReport.Rank()
	cur.UpdatedAt = now
}

func (r *Reconciler) notify(ctx context.Context, ev Event, log *CallLog) {
	if r.users == nil || r.notifier == nil || log == nil {
		return
	}
	assistantID := log.AssistantID
	if assistantID == "" {
		assistantID = ev.AssistantID
	}
	if assistantID == "" {
		return
	}
	userID, ok, err := r.users.ResolveUserByAssistant(ctx, assistantID)
	if err != nil || !ok {
		return
	}
	r.notifier.NotifyCallUpdate(userID, CallUpdate{
		CallID:  log.CallID,
		Status:  log.Status,
		Minutes: log.Minutes,
		Cost:    log.Cost,
	})
}
