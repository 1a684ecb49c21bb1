package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/sse"
)

// EventsHandler serves the SSE stream of procurement events.
type EventsHandler struct {
	hub *sse.Hub
}

func NewEventsHandler(hub *sse.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream holds the connection open and forwards hub events.
// GET /api/v1/procurement/events
func (h *EventsHandler) Stream(c *gin.Context) {
	actor := GetActor(c)
	clientID := fmt.Sprintf("%s_%d", actor.UserID, time.Now().UnixNano())

	client := &sse.Client{
		ID:     clientID,
		UserID: actor.UserID,
		Events: make(chan sse.Event, 64),
	}

	h.hub.Register(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.Writer.WriteString("event: connected\ndata: {\"client_id\":\"" + clientID + "\"}\n\n")
	c.Writer.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()

	for {
		select {
		case <-clientGone:
			h.hub.Unregister(clientID)
			return
		case event, ok := <-client.Events:
			if !ok {
				return
			}
			c.Writer.WriteString(fmt.Sprintf("event: %s\ndata: %s\n\n", event.EventType, event.Data))
			c.Writer.Flush()
		case <-heartbeat.C:
			c.Writer.WriteString(": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}
