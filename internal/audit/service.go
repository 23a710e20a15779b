package audit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to tenant users by
//   default.
// - Callers should treat audit logging as best-effort.
type Service struct {
	repo  Repository
	log   *slog.Logger
	clock func() time.Time
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.OrgID == "" {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// BillingEvent records a billing mutation. Failures are logged and swallowed;
// the billing flow already committed.
func (s *Service) BillingEvent(ctx context.Context, orgID, userID, action string, metadata map[string]any) {
	err := s.Append(ctx, Event{
		OrgID:       orgID,
		Type:        EventType(action),
		ActorUserID: userID,
		Metadata:    encodeMetadata(metadata),
	})
	if err != nil && s.log != nil {
		s.log.Warn("audit: append failed", "org_id", orgID, "action", action, "err", err)
	}
}

// LogAdminAction records a platform-admin mutation, e.g. a plan edit.
func (s *Service) LogAdminAction(ctx context.Context, orgID, actorUserID, message string, metadata map[string]any) error {
	return s.Append(ctx, Event{
		OrgID:       orgID,
		Type:        EventTypeAdminAction,
		ActorUserID: actorUserID,
		Message:     message,
		Metadata:    encodeMetadata(metadata),
	})
}

func encodeMetadata(metadata map[string]any) string {
	if len(metadata) == 0 {
		return ""
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(raw)
}
