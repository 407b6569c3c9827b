package server

import (
	"time"

	"chartlens/internal/display"
	"chartlens/internal/feed"
	"chartlens/internal/interfaces"
	"chartlens/internal/recorder"

	"github.com/gin-gonic/gin"
)

// ChartSource exposes the latest rendered chart config
type ChartSource interface {
	Config() (display.ChartJSConfig, bool)
}

// HistorySource exposes aggregate cycle statistics
type HistorySource interface {
	Stats(since time.Time) (recorder.Stats, error)
}

type Deps struct {
	Orchestrator   interfaces.Orchestrator
	Chart          ChartSource
	History        HistorySource
	Feed           *feed.Hub // nil disables /api/feed
	MaxUploadBytes int64
	CORSOrigins    []string
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	if len(d.CORSOrigins) > 0 {
		r.Use(corsMiddleware(d.CORSOrigins))
	}

	api := r.Group("/api")
	{
		NewHealthController().RegisterRoutes(api)
		NewCameraController(d.Orchestrator).RegisterRoutes(api)
		NewAnalysisController(d.Orchestrator, d.MaxUploadBytes).RegisterRoutes(api)
		NewChartController(d.Orchestrator, d.Chart, d.History).RegisterRoutes(api)
		if d.Feed != nil {
			NewFeedController(d.Feed, d.CORSOrigins).RegisterRoutes(api)
		}
	}
	return r
}
