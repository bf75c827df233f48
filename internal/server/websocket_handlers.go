package server

import (
	"context"
	"log/slog"
	"time"

	"agora/internal/featureflags"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/samber/lo"
)

const (
	feedBuffer       = 32
	feedPingInterval = 30 * time.Second
	feedWriteTimeout = 10 * time.Second
)

// DiscussionFeedUpgrade runs the visibility check before the websocket
// handshake so a rejected caller gets a plain HTTP error.
func (s *Server) DiscussionFeedUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return models.RespondWithError(c, fiber.StatusUpgradeRequired,
			models.NewValidationError("WebSocket upgrade required"))
	}

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := middleware.UserID(c)

	if lo.Contains(s.featureFlags.Names(), featureflags.RealtimeFeed) &&
		!s.featureFlags.Enabled(featureflags.RealtimeFeed, userID) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Feed", id))
	}
	if !s.notifier.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error: "Realtime feed unavailable",
		})
	}

	if _, err := s.feedAccess(c.UserContext(), id, userID); err != nil {
		return s.respondError(c, err)
	}

	c.Locals("discussionID", id)
	return c.Next()
}

// DiscussionFeedHandler streams the events of one discussion to the client.
// @Summary Discussion event feed
// @Description WebSocket; authenticate with ?token= or the Authorization header
// @Tags realtime
// @Param id path int true "Discussion ID"
// @Param token query string false "JWT"
// @Success 101
// @Failure 403 {object} models.ErrorResponse
// @Router /ws/discussions/{id} [get]
func (s *Server) DiscussionFeedHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		observability.FeedSubscribers.Inc()
		defer observability.FeedSubscribers.Dec()

		discussionID, _ := conn.Locals("discussionID").(uint)
		userID, _ := conn.Locals("userID").(uint)
		logger := middleware.Logger.With(
			slog.Uint64("discussion_id", uint64(discussionID)),
			slog.Uint64("user_id", uint64(userID)),
		)

		ctx, cancel := context.WithCancel(s.shutdownCtx)
		defer cancel()

		out := make(chan string, feedBuffer)
		err := s.notifier.SubscribeDiscussion(ctx, discussionID, func(payload string) {
			select {
			case out <- payload:
			default:
				logger.Warn("discussion feed is full, dropping event")
			}
		})
		if err != nil {
			logger.Error("discussion feed subscribe failed", slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"subscribe failed"}`))
			return
		}
		logger.Info("discussion feed opened")

		// The client only sends control frames; a read error means it went away.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ping := time.NewTicker(feedPingInterval)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(feedWriteTimeout))
				logger.Info("discussion feed closed")
				return
			case payload := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
					logger.Debug("discussion feed write failed", slog.String("error", err.Error()))
					return
				}
			case <-ping.C:
				// Membership can change while the feed is open.
				if revoked, err := s.feedAccess(ctx, discussionID, userID); revoked {
					logger.Info("discussion feed access revoked", slog.String("reason", err.Error()))
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "access revoked"),
						time.Now().Add(feedWriteTimeout))
					return
				}
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(feedWriteTimeout)); err != nil {
					return
				}
			}
		}
	})
}

// feedAccess re-runs the visibility check for a feed subscriber. revoked is
// true only when the viewer lost access or the discussion is gone; store
// failures keep the feed open.
func (s *Server) feedAccess(ctx context.Context, discussionID, userID uint) (revoked bool, err error) {
	_, err = s.services.Discussions.GetDiscussion(ctx, discussionID, userID)
	if err == nil {
		return false, nil
	}
	revoked = models.HasCode(err, models.CodeAccessDenied) || models.HasCode(err, models.CodeNotFound)
	return revoked, err
}
