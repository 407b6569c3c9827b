package server

import (
	"errors"
	"io"
	"net/http"

	"chartlens/internal/interfaces"
	"chartlens/internal/types"

	"github.com/gin-gonic/gin"
)

type CameraController struct {
	orch interfaces.Orchestrator
}

func NewCameraController(o interfaces.Orchestrator) *CameraController {
	return &CameraController{orch: o}
}

func (ctrl *CameraController) RegisterRoutes(router *gin.RouterGroup) {
	cam := router.Group("/camera")
	{
		cam.POST("/start", ctrl.start)
		cam.POST("/stop", ctrl.stop)
		cam.POST("/capture", ctrl.capture)
	}
}

// start accepts optional StreamConstraints; missing fields use the defaults.
func (ctrl *CameraController) start(c *gin.Context) {
	var sc types.StreamConstraints
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&sc); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid constraints: " + err.Error()})
			return
		}
	}

	snap, err := ctrl.orch.StartCamera(c.Request.Context(), sc)
	if err != nil {
		c.JSON(statusFor(err), errorResponse{Error: err.Error(), State: snap.State})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (ctrl *CameraController) stop(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.orch.StopCamera(c.Request.Context()))
}

func (ctrl *CameraController) capture(c *gin.Context) {
	out, err := ctrl.orch.CaptureStill(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), errorResponse{Error: err.Error(), State: ctrl.orch.Snapshot().State})
		return
	}
	c.JSON(http.StatusOK, newOutcomeResponse(out, ctrl.orch.Snapshot().State))
}
