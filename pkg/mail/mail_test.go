package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type sendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func testClient(t *testing.T, cfg Config, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.APIURL = srv.URL
	c, err := New(&cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return c
}

func TestSend_Success(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody sendPayload

	c := testClient(t, Config{APIKey: "key-1", From: "claims@yntoyg.com", FromName: "Covenant"},
		func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_, _ = w.Write([]byte(`{"id":"email-1"}`))
		})

	err := c.Send(context.Background(), Message{
		To:      "member@example.com",
		Subject: "Your Presence is Requested - Dashboard Access",
		HTML:    "<p>hello</p>",
	})
	if err != nil {
		t.Fatalf("Send() failed: %v", err)
	}

	if gotAuth != "Bearer key-1" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/emails" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody.From != "Covenant <claims@yntoyg.com>" {
		t.Errorf("from = %q", gotBody.From)
	}
	if len(gotBody.To) != 1 || gotBody.To[0] != "member@example.com" {
		t.Errorf("to = %v", gotBody.To)
	}
	if gotBody.Subject != "Your Presence is Requested - Dashboard Access" || gotBody.HTML != "<p>hello</p>" {
		t.Errorf("body = %+v", gotBody)
	}
}

func TestSend_BareFromWithoutDisplayName(t *testing.T) {
	var gotBody sendPayload
	c := testClient(t, Config{APIKey: "key-1", From: "claims@yntoyg.com"},
		func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusOK)
		})

	if err := c.Send(context.Background(), Message{To: "member@example.com"}); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	if gotBody.From != "claims@yntoyg.com" {
		t.Errorf("from = %q", gotBody.From)
	}
}

func TestSend_ProviderRejection(t *testing.T) {
	c := testClient(t, Config{APIKey: "key-1", From: "claims@yntoyg.com"},
		func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"message":"invalid recipient"}`, http.StatusUnprocessableEntity)
		})

	if err := c.Send(context.Background(), Message{To: "nope"}); err == nil {
		t.Fatal("Send() = nil, want error on 4xx response")
	}
}

func TestNew_ConfigValidation(t *testing.T) {
	cases := []Config{
		{APIKey: "k", From: "f@x.com"},
		{APIURL: "https://api.test", From: "f@x.com"},
		{APIURL: "https://api.test", APIKey: "k"},
	}
	for _, cfg := range cases {
		if _, err := New(&cfg); err == nil {
			t.Errorf("New(%+v) = nil error, want validation failure", cfg)
		}
	}
}
