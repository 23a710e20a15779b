package voiceplatform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"voicedesk/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.VoicePlatformConfig{BaseURL: srv.URL, APIToken: "tok"}), srv
}

func TestCreateAssistant_SendsBearerAndDecodes(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"a1","name":"Riley","orgId":"org-1"}`))
	})

	out, err := client.CreateAssistant(context.Background(), AssistantRequest{Name: "Riley"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotMethod != http.MethodPost || gotPath != "/assistant" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if out.ID != "a1" || out.Name != "Riley" {
		t.Fatalf("unexpected response: %+v", out)
	}
}

func TestClient_Non2xxSurfacesAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"message":"out of credits"}`))
	})

	_, err := client.CreateCall(context.Background(), CallRequest{AssistantID: "a1"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("expected 402 passthrough, got %d", apiErr.StatusCode)
	}
}

func TestDeleteAssistant_NoBodyIsOK(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/assistant/a1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := client.DeleteAssistant(context.Background(), "a1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
