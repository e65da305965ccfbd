package controller

import (
	"log"

	"github.com/gofiber/websocket/v2"

	"taskhive/utils"
)

// HandleNotificationWS registers an authenticated websocket connection on
// the caller's push channel and keeps it open until the client disconnects.
// Locals are carried over from the Protected() middleware that ran before
// the upgrade.
func HandleNotificationWS(hub *utils.Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			log.Printf("websocket connection without authenticated user")
			_ = c.Close()
			return
		}

		hub.Register(userID, c)
		defer func() {
			hub.Unregister(userID, c)
			_ = c.Close()
		}()

		// Drain inbound frames; the channel is push-only. A read error
		// means the client went away.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}
}
