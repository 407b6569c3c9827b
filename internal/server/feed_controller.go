package server

import (
	"net/url"

	"chartlens/internal/feed"
	"chartlens/internal/logger"
	"chartlens/internal/types"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
)

// FeedController streams every finished cycle over a websocket
type FeedController struct {
	hub     *feed.Hub
	origins []string
}

func NewFeedController(hub *feed.Hub, corsOrigins []string) *FeedController {
	return &FeedController{hub: hub, origins: originPatterns(corsOrigins)}
}

func (ctrl *FeedController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/feed", ctrl.stream)
}

func (ctrl *FeedController) stream(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{OriginPatterns: ctrl.origins})
	if err != nil {
		logger.Warn(c.Request.Context(), "Feed handshake failed", "error", err)
		return
	}
	defer conn.CloseNow()

	outcomes, cancel := ctrl.hub.Subscribe()
	defer cancel()

	// the feed is one-way; CloseRead cancels ctx when the client goes away
	ctx := conn.CloseRead(c.Request.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case o, ok := <-outcomes:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			if err := wsjson.Write(ctx, conn, newOutcomeResponse(o, stateOf(o))); err != nil {
				logger.Debug(ctx, "Feed write failed", "error", err)
				return
			}
		}
	}
}

// stateOf is the state the orchestrator lands in after o.
func stateOf(o *types.Outcome) types.State {
	switch {
	case o.Failed():
		return types.StateIdle
	case o.Accepted():
		return types.StateAnalyzed
	default:
		return types.StateRejected
	}
}

// originPatterns turns CORS origins into the host patterns websocket.Accept matches.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			out = append(out, "*")
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
		}
	}
	return out
}
