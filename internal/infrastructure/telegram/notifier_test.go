package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"BangerBoard/internal/ports"
)

func sampleMessage() ports.Message {
	return ports.Message{
		Subject: "APPROVAL REQUEST - New twitch submission",
		Body:    "URL: https://twitch.tv/host",
		Links: []ports.Link{
			{Label: "Approve", URL: "https://bb.test/api/submission-action?action=approve&id=1&token=t"},
			{Label: "Disapprove", URL: "https://bb.test/api/submission-action?action=disapprove&id=1&token=t"},
		},
	}
}

func TestNotifierSend(t *testing.T) {
	t.Parallel()

	var gotPath, gotChat, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotPath = r.URL.Path
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier("bot-token", "chat-1", WithAPIBase(srv.URL), WithHTTPClient(srv.Client()))
	if err := n.Send(context.Background(), sampleMessage()); err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotPath != "/botbot-token/sendMessage" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotChat != "chat-1" {
		t.Fatalf("unexpected chat %q", gotChat)
	}
	if !strings.HasPrefix(gotText, "APPROVAL REQUEST") || !strings.Contains(gotText, "Disapprove: https://bb.test/") {
		t.Fatalf("unexpected text %q", gotText)
	}
}

func TestNotifierErrors(t *testing.T) {
	t.Parallel()

	if err := NewNotifier("", "").Send(context.Background(), sampleMessage()); err == nil {
		t.Fatal("expected misconfiguration error")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewNotifier("tok", "chat", WithAPIBase(srv.URL), WithHTTPClient(srv.Client())).Send(context.Background(), sampleMessage())
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestNotifierRedactsToken(t *testing.T) {
	t.Parallel()

	n := NewNotifier("super-secret", "chat", WithAPIBase("http://127.0.0.1:1"))
	err := n.Send(context.Background(), sampleMessage())
	if err == nil {
		t.Fatal("expected connection error")
	}
	if strings.Contains(err.Error(), "super-secret") {
		t.Fatalf("token leaked into error: %v", err)
	}
}
