package discord

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/zulandar/processmap/internal/digest"
)

type mockWebhook struct {
	calls  int
	errs   []error
	id     string
	token  string
	params *discordgo.WebhookParams
}

func (m *mockWebhook) WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.calls++
	m.id, m.token, m.params = webhookID, token, data
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return nil, err
	}
	return &discordgo.Message{}, nil
}

func TestParseWebhookURL(t *testing.T) {
	tests := []struct {
		url       string
		wantID    string
		wantToken string
		wantErr   bool
	}{
		{"https://discord.com/api/webhooks/123/abc", "123", "abc", false},
		{"https://discordapp.com/api/webhooks/9/tok-en/", "9", "tok-en", false},
		{"https://discord.com/api/channels/1", "", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		id, token, err := parseWebhookURL(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseWebhookURL(%q) err = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if id != tt.wantID || token != tt.wantToken {
			t.Errorf("parseWebhookURL(%q) = %q, %q", tt.url, id, token)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	if got := parseHexColor("#36a64f"); got != 0x36a64f {
		t.Errorf("parseHexColor = %x", got)
	}
	if got := parseHexColor("E53935"); got != 0xe53935 {
		t.Errorf("parseHexColor = %x", got)
	}
}

func TestSend_BuildsEmbed(t *testing.T) {
	m := &mockWebhook{}
	s := &Sender{client: m, webhookID: "123", token: "abc", baseBackoff: time.Millisecond}
	msg := digest.Message{
		Title:  "Digest",
		Body:   "body",
		Color:  digest.ColorSuccess,
		Fields: []digest.Field{{Name: "Score", Value: "90", Short: true}},
	}
	if err := s.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if m.id != "123" || m.token != "abc" {
		t.Errorf("id/token = %q/%q", m.id, m.token)
	}
	if len(m.params.Embeds) != 1 {
		t.Fatalf("embeds = %d", len(m.params.Embeds))
	}
	e := m.params.Embeds[0]
	if e.Title != "Digest" || e.Color != 0x36a64f || len(e.Fields) != 1 || !e.Fields[0].Inline {
		t.Errorf("embed = %+v", e)
	}
}

func TestSend_RetriesOnRateLimit(t *testing.T) {
	rateLimited := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusTooManyRequests}}
	m := &mockWebhook{errs: []error{rateLimited, rateLimited}}
	s := &Sender{client: m, webhookID: "1", token: "t", baseBackoff: time.Millisecond}
	if err := s.Send(context.Background(), digest.Message{Title: "x"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if m.calls != 3 {
		t.Errorf("calls = %d, want 3", m.calls)
	}
}

func TestSend_OtherErrorsNotRetried(t *testing.T) {
	boom := errors.New("boom")
	m := &mockWebhook{errs: []error{boom}}
	s := &Sender{client: m, webhookID: "1", token: "t", baseBackoff: time.Millisecond}
	if err := s.Send(context.Background(), digest.Message{Title: "x"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if m.calls != 1 {
		t.Errorf("calls = %d, want 1", m.calls)
	}
}
