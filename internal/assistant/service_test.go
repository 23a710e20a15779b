package assistant

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"voicedesk/internal/voiceplatform"
)

type stubPlatform struct {
	created   []voiceplatform.AssistantRequest
	updated   map[string]voiceplatform.AssistantRequest
	deleted   []string
	nextID    string
	createErr error
	updateErr error
	deleteErr error
}

func newStubPlatform() *stubPlatform {
	return &stubPlatform{nextID: "asst_1", updated: make(map[string]voiceplatform.AssistantRequest)}
}

func (s *stubPlatform) CreateAssistant(_ context.Context, req voiceplatform.AssistantRequest) (voiceplatform.Assistant, error) {
	if s.createErr != nil {
		return voiceplatform.Assistant{}, s.createErr
	}
	s.created = append(s.created, req)
	return voiceplatform.Assistant{ID: s.nextID, Name: req.Name}, nil
}

func (s *stubPlatform) UpdateAssistant(_ context.Context, id string, req voiceplatform.AssistantRequest) (voiceplatform.Assistant, error) {
	if s.updateErr != nil {
		return voiceplatform.Assistant{}, s.updateErr
	}
	s.updated[id] = req
	return voiceplatform.Assistant{ID: id, Name: req.Name}, nil
}

func (s *stubPlatform) DeleteAssistant(_ context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func validRequest() UpsertRequest {
	return UpsertRequest{
		Name:          "Receptionist",
		FirstMessage:  "Hello, how can I help?",
		ModelProvider: "openai",
		Model:         "gpt-4o",
		SystemPrompt:  "You answer calls for a dental clinic.",
		VoiceProvider: "11labs",
		VoiceID:       "v-amelia",
	}
}

func TestCreatePersistsProviderID(t *testing.T) {
	platform := newStubPlatform()
	repo := NewMemoryRepo()
	svc := NewService(repo, platform)

	a, err := svc.Create(context.Background(), "org-1", "user-1", validRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID != "asst_1" {
		t.Fatalf("id = %q, want provider id asst_1", a.ID)
	}
	if len(platform.created) != 1 {
		t.Fatalf("provider create calls = %d", len(platform.created))
	}
	if got := platform.created[0].Model.Messages[0].Content; got != "You answer calls for a dental clinic." {
		t.Fatalf("system prompt not forwarded, got %q", got)
	}

	stored, ok, err := repo.FindByID(context.Background(), "asst_1")
	if err != nil || !ok {
		t.Fatalf("mirror row missing: ok=%v err=%v", ok, err)
	}
	if stored.UserID != "user-1" || stored.OrgID != "org-1" {
		t.Fatalf("ownership = %s/%s", stored.OrgID, stored.UserID)
	}
}

func TestCreateAbortsWhenProviderFails(t *testing.T) {
	platform := newStubPlatform()
	platform.createErr = &voiceplatform.APIError{StatusCode: http.StatusPaymentRequired, Body: "quota"}
	repo := NewMemoryRepo()
	svc := NewService(repo, platform)

	_, err := svc.Create(context.Background(), "org-1", "user-1", validRequest())
	var apiErr *voiceplatform.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if rows, _ := repo.ListByUser(context.Background(), "user-1"); len(rows) != 0 {
		t.Fatalf("mirror written despite provider failure")
	}
}

func TestCreateRejectsMissingName(t *testing.T) {
	svc := NewService(NewMemoryRepo(), newStubPlatform())
	_, err := svc.Create(context.Background(), "org-1", "user-1", UpsertRequest{})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestUpdateGoesThroughProvider(t *testing.T) {
	platform := newStubPlatform()
	svc := NewService(NewMemoryRepo(), platform)

	if _, err := svc.Create(context.Background(), "org-1", "user-1", validRequest()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := validRequest()
	req.Name = "Scheduler"
	a, err := svc.Update(context.Background(), "user-1", "asst_1", req)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if a.Name != "Scheduler" {
		t.Fatalf("name = %q", a.Name)
	}
	if _, ok := platform.updated["asst_1"]; !ok {
		t.Fatalf("provider update not called")
	}
}

func TestOwnershipHidesOtherUsersAssistants(t *testing.T) {
	svc := NewService(NewMemoryRepo(), newStubPlatform())
	if _, err := svc.Create(context.Background(), "org-1", "user-1", validRequest()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(context.Background(), "user-2", "asst_1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get as stranger: err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(context.Background(), "user-2", "asst_1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete as stranger: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteToleratesGoneUpstream(t *testing.T) {
	platform := newStubPlatform()
	repo := NewMemoryRepo()
	svc := NewService(repo, platform)

	if _, err := svc.Create(context.Background(), "org-1", "user-1", validRequest()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	platform.deleteErr = &voiceplatform.APIError{StatusCode: http.StatusNotFound, Body: "not found"}

	if err := svc.Delete(context.Background(), "user-1", "asst_1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := repo.FindByID(context.Background(), "asst_1"); ok {
		t.Fatalf("mirror row not removed")
	}
}

func TestResolveUserByAssistant(t *testing.T) {
	svc := NewService(NewMemoryRepo(), newStubPlatform())
	if _, err := svc.Create(context.Background(), "org-1", "user-1", validRequest()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	userID, ok, err := svc.ResolveUserByAssistant(context.Background(), "asst_1")
	if err != nil || !ok || userID != "user-1" {
		t.Fatalf("resolve = %q/%v/%v", userID, ok, err)
	}
	if _, ok, _ := svc.ResolveUserByAssistant(context.Background(), "asst_unknown"); ok {
		t.Fatalf("unknown assistant resolved")
	}
}
