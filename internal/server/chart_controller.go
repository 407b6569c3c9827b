package server

import (
	"net/http"
	"time"

	"chartlens/internal/interfaces"
	"chartlens/internal/ta"

	"github.com/gin-gonic/gin"
)

type ChartController struct {
	orch    interfaces.Orchestrator
	chart   ChartSource
	history HistorySource
}

func NewChartController(o interfaces.Orchestrator, chart ChartSource, history HistorySource) *ChartController {
	return &ChartController{orch: o, chart: chart, history: history}
}

func (ctrl *ChartController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/chart", ctrl.getChart)
	router.GET("/series", ctrl.getSeries)
	router.GET("/series/stats", ctrl.getSeriesStats)
	router.GET("/history", ctrl.getHistory)
}

func (ctrl *ChartController) getChart(c *gin.Context) {
	if ctrl.chart == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no chart renderer configured"})
		return
	}
	cfg, ok := ctrl.chart.Config()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "chart not rendered yet"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (ctrl *ChartController) getSeries(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.orch.Series())
}

func (ctrl *ChartController) getSeriesStats(c *gin.Context) {
	c.JSON(http.StatusOK, ta.Summarize(ctrl.orch.Series().Values()))
}

// getHistory accepts an optional RFC 3339 "since" query parameter.
func (ctrl *ChartController) getHistory(c *gin.Context) {
	var since time.Time
	if v := c.Query("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be RFC 3339"})
			return
		}
		since = t
	}
	if ctrl.history == nil {
		c.JSON(http.StatusOK, gin.H{"total": 0})
		return
	}
	stats, err := ctrl.history.Stats(since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
