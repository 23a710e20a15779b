package phone

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"voicedesk/internal/voiceplatform"
)

// PlatformClient is the slice of the voice platform used for numbers.
type PlatformClient interface {
	CreatePhoneNumber(ctx context.Context, req voiceplatform.PhoneNumberRequest) (voiceplatform.PhoneNumber, error)
	DeletePhoneNumber(ctx context.Context, phoneNumberID string) error
}

// Service manages the phone-number mirror.
//
// Create checks the store for a duplicate number before touching the
// provider, so a taken number fails fast without provisioning anything
// upstream.
type Service struct {
	repo     Repository
	platform PlatformClient
	clock    func() time.Time
}

func NewService(repo Repository, platform PlatformClient) *Service {
	return &Service{repo: repo, platform: platform, clock: time.Now}
}

// CreateRequest carries the provisioning parameters.
type CreateRequest struct {
	Number      string `json:"number"`
	Provider    string `json:"provider"`
	AreaCode    string `json:"area_code"`
	AssistantID string `json:"assistant_id"`
}

func (s *Service) Create(ctx context.Context, orgID, userID string, req CreateRequest) (PhoneNumber, error) {
	if req.Number == "" {
		return PhoneNumber{}, fmt.Errorf("%w: number is required", ErrInvalidArgument)
	}

	if _, ok, err := s.repo.FindByNumber(ctx, req.Number); err != nil {
		return PhoneNumber{}, err
	} else if ok {
		return PhoneNumber{}, ErrNumberTaken
	}

	remote, err := s.platform.CreatePhoneNumber(ctx, voiceplatform.PhoneNumberRequest{
		Number:      req.Number,
		Provider:    req.Provider,
		AreaCode:    req.AreaCode,
		AssistantID: req.AssistantID,
	})
	if err != nil {
		return PhoneNumber{}, err
	}

	now := s.clock().UTC()
	n := PhoneNumber{
		ID:               uuid.NewString(),
		OrgID:            orgID,
		UserID:           userID,
		ProviderNumberID: remote.ID,
		Number:           req.Number,
		Provider:         req.Provider,
		AssistantID:      req.AssistantID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return PhoneNumber{}, err
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]PhoneNumber, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	n, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.platform.DeletePhoneNumber(ctx, n.ProviderNumberID); err != nil {
		var apiErr *voiceplatform.APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
			return err
		}
	}
	return s.repo.Delete(ctx, id)
}

// AssignAssistant points a number's inbound routing at an assistant. An empty
// assistantID unassigns.
func (s *Service) AssignAssistant(ctx context.Context, userID, id, assistantID string) (PhoneNumber, error) {
	n, err := s.owned(ctx, userID, id)
	if err != nil {
		return PhoneNumber{}, err
	}
	n.AssistantID = assistantID
	n.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, n); err != nil {
		return PhoneNumber{}, err
	}
	return n, nil
}

func (s *Service) owned(ctx context.Context, userID, id string) (PhoneNumber, error) {
	if id == "" {
		return PhoneNumber{}, fmt.Errorf("%w: phone number id is required", ErrInvalidArgument)
	}
	n, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return PhoneNumber{}, err
	}
	if !ok || n.UserID != userID {
		return PhoneNumber{}, ErrNotFound
	}
	return n, nil
}
