package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGateway_PrependsSystemPromptAndReturnsContent(t *testing.T) {
	var got completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello there"}}]}`))
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "test-key", "test-model", 512)
	out, err := g.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, "be brief")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "hello there" {
		t.Fatalf("content = %q", out)
	}
	if got.Model != "test-model" || got.MaxTokens != 512 {
		t.Fatalf("request fields: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[0].Content != "be brief" {
		t.Fatalf("system prompt not prepended: %+v", got.Messages)
	}
	if got.Messages[1].Role != "user" || got.Messages[1].Content != "hi" {
		t.Fatalf("user message mangled: %+v", got.Messages)
	}
}

func TestGateway_NoSystemPromptSendsMessagesAsIs(t *testing.T) {
	var got completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "", "m", 8192)
	if _, err := g.Complete(context.Background(), []Message{{Role: "user", Content: "q"}}, ""); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
}

func TestGateway_UpstreamErrorCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "k", "m", 100)
	_, err := g.Complete(context.Background(), []Message{{Role: "user", Content: "q"}}, "")
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("want UpstreamError, got %v", err)
	}
	if ue.StatusCode != http.StatusTooManyRequests || ue.Body != "rate limited" {
		t.Fatalf("unexpected error fields: %+v", ue)
	}
}

func TestGateway_MalformedSuccessYieldsEmptyString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"unexpected":"shape"}`))
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "k", "m", 100)
	out, err := g.Complete(context.Background(), []Message{{Role: "user", Content: "q"}}, "")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "" {
		t.Fatalf("want empty content, got %q", out)
	}
}
