// Package slack delivers digests through a Slack incoming webhook.
package slack

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/zulandar/processmap/internal/digest"
)

// maxRetries is the max number of retries for rate-limited posts.
const maxRetries = 3

// postFunc matches slackapi.PostWebhookContext, enabling test mocks.
type postFunc func(ctx context.Context, url string, msg *slackapi.WebhookMessage) error

// Sender posts digests to one webhook URL.
type Sender struct {
	url  string
	post postFunc
}

// New returns a Sender for webhookURL.
func New(webhookURL string) (*Sender, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("slack: webhook url is required")
	}
	return &Sender{url: webhookURL, post: slackapi.PostWebhookContext}, nil
}

func (s *Sender) Name() string { return "slack" }

// Send posts msg as a single attachment.
func (s *Sender) Send(ctx context.Context, msg digest.Message) error {
	payload := &slackapi.WebhookMessage{
		Text:        msg.Title,
		Attachments: []slackapi.Attachment{toAttachment(msg)},
	}
	return retryOnRateLimit(ctx, func() error {
		return s.post(ctx, s.url, payload)
	})
}

func toAttachment(msg digest.Message) slackapi.Attachment {
	att := slackapi.Attachment{
		Title:    msg.Title,
		Text:     msg.Body,
		Color:    msg.Color,
		Fallback: msg.Title,
	}
	for _, f := range msg.Fields {
		att.Fields = append(att.Fields, slackapi.AttachmentField{
			Title: f.Name,
			Value: f.Value,
			Short: f.Short,
		})
	}
	return att
}

// retryOnRateLimit calls fn and retries with backoff on Slack rate limit errors.
// It respects context cancellation and the RetryAfter duration from Slack.
func retryOnRateLimit(ctx context.Context, fn func() error) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		var rle *slackapi.RateLimitedError
		if !errors.As(err, &rle) {
			return err
		}
		if attempt == maxRetries {
			return err
		}

		wait := rle.RetryAfter
		if wait <= 0 {
			wait = time.Duration(math.Pow(2, float64(attempt))) * time.Second
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil
}
