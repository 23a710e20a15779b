package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"voicedesk/internal/voiceplatform"
)

// PlatformClient is the slice of the voice platform used by the mirror.
type PlatformClient interface {
	CreateAssistant(ctx context.Context, req voiceplatform.AssistantRequest) (voiceplatform.Assistant, error)
	UpdateAssistant(ctx context.Context, assistantID string, req voiceplatform.AssistantRequest) (voiceplatform.Assistant, error)
	DeleteAssistant(ctx context.Context, assistantID string) error
}

// Service keeps the local assistant mirror consistent with the provider.
// Every write goes to the provider first; an upstream failure leaves the
// mirror untouched.
type Service struct {
	repo     Repository
	platform PlatformClient
	clock    func() time.Time
}

func NewService(repo Repository, platform PlatformClient) *Service {
	return &Service{repo: repo, platform: platform, clock: time.Now}
}

// UpsertRequest carries the writable assistant fields.
type UpsertRequest struct {
	Name          string `json:"name"`
	FirstMessage  string `json:"first_message"`
	ModelProvider string `json:"model_provider"`
	Model         string `json:"model"`
	SystemPrompt  string `json:"system_prompt"`
	VoiceProvider string `json:"voice_provider"`
	VoiceID       string `json:"voice_id"`
}

func (r UpsertRequest) validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	return nil
}

func (r UpsertRequest) platformRequest() voiceplatform.AssistantRequest {
	req := voiceplatform.AssistantRequest{
		Name:         r.Name,
		FirstMessage: r.FirstMessage,
	}
	if r.Model != "" || r.SystemPrompt != "" {
		req.Model = &voiceplatform.AssistantModel{
			Provider: r.ModelProvider,
			Model:    r.Model,
		}
		if r.SystemPrompt != "" {
			req.Model.Messages = []voiceplatform.ModelMessage{
				{Role: "system", Content: r.SystemPrompt},
			}
		}
	}
	if r.VoiceProvider != "" || r.VoiceID != "" {
		req.Voice = &voiceplatform.AssistantVoice{
			Provider: r.VoiceProvider,
			VoiceID:  r.VoiceID,
		}
	}
	return req
}

func (s *Service) Create(ctx context.Context, orgID, userID string, req UpsertRequest) (Assistant, error) {
	if err := req.validate(); err != nil {
		return Assistant{}, err
	}

	remote, err := s.platform.CreateAssistant(ctx, req.platformRequest())
	if err != nil {
		return Assistant{}, err
	}

	now := s.clock().UTC()
	a := Assistant{
		ID:            remote.ID,
		OrgID:         orgID,
		UserID:        userID,
		Name:          req.Name,
		FirstMessage:  req.FirstMessage,
		ModelProvider: req.ModelProvider,
		Model:         req.Model,
		SystemPrompt:  req.SystemPrompt,
		VoiceProvider: req.VoiceProvider,
		VoiceID:       req.VoiceID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		return Assistant{}, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, userID, assistantID string) (Assistant, error) {
	return s.owned(ctx, userID, assistantID)
}

func (s *Service) List(ctx context.Context, userID string) ([]Assistant, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID, assistantID string, req UpsertRequest) (Assistant, error) {
	if err := req.validate(); err != nil {
		return Assistant{}, err
	}
	a, err := s.owned(ctx, userID, assistantID)
	if err != nil {
		return Assistant{}, err
	}

	if _, err := s.platform.UpdateAssistant(ctx, assistantID, req.platformRequest()); err != nil {
		return Assistant{}, err
	}

	a.Name = req.Name
	a.FirstMessage = req.FirstMessage
	a.ModelProvider = req.ModelProvider
	a.Model = req.Model
	a.SystemPrompt = req.SystemPrompt
	a.VoiceProvider = req.VoiceProvider
	a.VoiceID = req.VoiceID
	a.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return Assistant{}, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, userID, assistantID string) error {
	if _, err := s.owned(ctx, userID, assistantID); err != nil {
		return err
	}

	if err := s.platform.DeleteAssistant(ctx, assistantID); err != nil {
		// An assistant already gone upstream still gets cleaned out of the
		// mirror.
		var apiErr *voiceplatform.APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
			return err
		}
	}
	return s.repo.Delete(ctx, assistantID)
}

// ResolveUserByAssistant maps a provider assistant id to its owner. Used by
// webhook reconciliation to route realtime notifications.
func (s *Service) ResolveUserByAssistant(ctx context.Context, providerAssistantID string) (string, bool, error) {
	a, ok, err := s.repo.FindByID(ctx, providerAssistantID)
	if err != nil || !ok {
		return "", false, err
	}
	return a.UserID, true, nil
}

// owned fetches an assistant and hides it from non-owners.
func (s *Service) owned(ctx context.Context, userID, assistantID string) (Assistant, error) {
	if assistantID == "" {
		return Assistant{}, fmt.Errorf("%w: assistant id is required", ErrInvalidArgument)
	}
	a, ok, err := s.repo.FindByID(ctx, assistantID)
	if err != nil {
		return Assistant{}, err
	}
	if !ok || a.UserID != userID {
		return Assistant{}, ErrNotFound
	}
	return a, nil
}
