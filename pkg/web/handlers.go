package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-gauge/pkg/hub"
)

// handleIndex serves the dashboard page
func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(indexHTML)
}

// handleStatus returns the current reading and session progress
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.Snapshot())
}

// handleScale returns the interval table and tick overlay
func (s *Server) handleScale(c *fiber.Ctx) error {
	if s.scale == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no scale configured",
		})
	}
	return c.JSON(s.scale.Config())
}

// handleFrame returns the latest frame as a JPEG
func (s *Server) handleFrame(c *fiber.Ctx) error {
	s.mu.RLock()
	data := s.jpeg
	s.mu.RUnlock()

	if data == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "no frame yet",
		})
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Type("jpg")
	return c.Send(data)
}

// handleFramesWS pushes every published frame as a binary JPEG message
func (s *Server) handleFramesWS(c *websocket.Conn) {
	s.mu.RLock()
	data := s.jpeg
	s.mu.RUnlock()

	client := hub.NewClient(s.frameHub, c)
	if data != nil {
		client.Run(hub.NewBinaryMessage(data))
		return
	}
	client.Run()
}

// handleStatusWS pushes status events: a snapshot after every frame, the
// locked reading once, and the final snapshot when the session ends
func (s *Server) handleStatusWS(c *websocket.Conn) {
	client := hub.NewClient(s.statusHub, c)

	greeting, err := hub.NewEventMessage(hub.EventStatus, s.Snapshot())
	if err != nil {
		s.logger.Warn("encode status greeting", "error", err)
		client.Run()
		return
	}
	client.Run(greeting)
}
