package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mk-2871/Proof-of-Talent/pkg/notify"
)

type EventsHandler struct {
	hub       *notify.Hub
	keepAlive time.Duration
}

func NewEventsHandler(hub *notify.Hub) *EventsHandler {
	return &EventsHandler{hub: hub, keepAlive: 15 * time.Second}
}

// Stream pushes notifications as server-sent events until the client goes
// away or the hub closes.
// @Summary Notification stream
// @Tags    events
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {string} string
// @Router  /events [get]
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	ch := h.hub.Subscribe()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer h.hub.Unsubscribe(ch)
		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()

		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}
		for {
			select {
			case n, ok := <-ch:
				if !ok {
					return
				}
				b, err := json.Marshal(n)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: notification\ndata: %s\n\n", b)
			case <-ticker.C:
				fmt.Fprint(w, ": keepalive\n\n")
			}
			// flush fails once the client disconnects
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
	return nil
}
