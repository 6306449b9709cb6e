package control

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"ambient/internal/installation"
)

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.Status())
}

func (s *Server) handleShapes(c *fiber.Ctx) error {
	shapes := installation.Shapes()
	out := make([]ShapeInfo, 0, len(shapes))
	for i, sh := range shapes {
		out = append(out, ShapeInfo{
			Name:  sh.String(),
			Key:   strconv.Itoa(i + 1),
			Track: installation.TrackName(sh),
		})
	}
	return c.JSON(out)
}

func (s *Server) handleSelectShape(c *fiber.Ctx) error {
	sh, err := installation.ParseShape(c.Params("name"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	return s.submit(c, installation.Command{Kind: installation.CmdSelectShape, Shape: sh})
}

func (s *Server) handleMute(c *fiber.Ctx) error {
	var req MuteRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid body: " + err.Error()})
		}
	}
	return s.submit(c, installation.Command{Kind: installation.CmdToggleMute, Muted: req.Muted})
}

func (s *Server) handleUnlock(c *fiber.Ctx) error {
	return s.submit(c, installation.Command{Kind: installation.CmdUnlock})
}

// submit queues a command and answers 202, or 503 when the frame loop is behind.
func (s *Server) submit(c *fiber.Ctx, cmd installation.Command) error {
	err := s.ctrl.Submit(cmd)
	switch {
	case err == nil:
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": true})
	case errors.Is(err, installation.ErrBusy):
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: err.Error()})
	case errors.Is(err, installation.ErrInvalidShape):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
}

// handleStatusWS sends the current status, then every published change.
func (s *Server) handleStatusWS(conn *websocket.Conn) {
	first, err := json.Marshal(s.ctrl.Status())
	if err != nil {
		s.logger.Warn("status encode", "err", err)
		return
	}
	client := NewClient(s.status, conn, first)
	if client == nil {
		return
	}
	client.Run()
}

// handlePoseWS ingests tracker reports until the peer disconnects.
func (s *Server) handlePoseWS(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	var dropped int
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("pose stream closed", "err", err)
			}
			break
		}
		var msg PoseMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Debug("pose decode", "err", err)
			continue
		}
		ev, err := msg.Event()
		if err != nil {
			s.logger.Debug("pose rejected", "err", err)
			continue
		}
		if err := s.ctrl.SubmitPose(ev); err != nil {
			dropped++
		}
	}
	// The tracker is gone; release the camera instead of waiting for the pose timeout.
	if err := s.ctrl.SubmitPose(installation.NoHand); err != nil {
		dropped++
	}
	if dropped > 0 {
		s.logger.Debug("pose reports dropped", "count", dropped)
	}
}
