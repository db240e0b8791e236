package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/processmap/internal/activity"
	"github.com/zulandar/processmap/internal/models"
)

// streamEvent is one activity row pushed to stream clients.
type streamEvent struct {
	ID         string                `json:"id"`
	Action     string                `json:"action"`
	EntityType string                `json:"entityType"`
	EntityID   string                `json:"entityId"`
	Changes    json.RawMessage       `json:"changes"`
	User       *activity.UserSummary `json:"user,omitempty"`
	CreatedAt  time.Time             `json:"createdAt"`
}

// handleActivityStream pushes new activity rows as server-sent events.
func (s *server) handleActivityStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	writeSSE(c.Writer, "connected", map[string]string{"type": "connected"})
	c.Writer.Flush()

	ctx := c.Request.Context()
	db := s.db.WithContext(ctx)

	// Rows at exactly the cursor time may arrive across two polls; remember
	// which of them were already sent.
	cursor := time.Now()
	sentAtCursor := map[string]bool{}

	ticker := time.NewTicker(s.interval)
	heartbeat := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			writeSSE(c.Writer, "heartbeat", map[string]string{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			c.Writer.Flush()
		case <-ticker.C:
			var logs []models.ActivityLog
			if err := db.Preload("User").
				Where("created_at >= ?", cursor).
				Order("created_at ASC").
				Find(&logs).Error; err != nil {
				s.log.Warn("activity stream: poll failed", "error", err)
				continue
			}

			sent := false
			for _, l := range logs {
				if sentAtCursor[l.ID] {
					continue
				}
				if l.CreatedAt.After(cursor) {
					cursor = l.CreatedAt
					sentAtCursor = map[string]bool{}
				}
				sentAtCursor[l.ID] = true

				evt := streamEvent{
					ID:         l.ID,
					Action:     l.Action,
					EntityType: l.EntityType,
					EntityID:   l.EntityID,
					Changes:    json.RawMessage(l.Changes),
					CreatedAt:  l.CreatedAt,
				}
				if l.User != nil {
					evt.User = &activity.UserSummary{ID: l.User.ID, Name: l.User.Name, Email: l.User.Email}
				}
				writeSSE(c.Writer, "activity", evt)
				sent = true
			}
			if sent {
				c.Writer.Flush()
			}
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
