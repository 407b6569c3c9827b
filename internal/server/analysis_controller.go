package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"chartlens/internal/interfaces"

	"github.com/gin-gonic/gin"
)

const uploadField = "file"

type AnalysisController struct {
	orch     interfaces.Orchestrator
	maxBytes int64
}

func NewAnalysisController(o interfaces.Orchestrator, maxBytes int64) *AnalysisController {
	return &AnalysisController{orch: o, maxBytes: maxBytes}
}

func (ctrl *AnalysisController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/state", ctrl.state)
	router.POST("/upload", ctrl.upload)
}

func (ctrl *AnalysisController) state(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.orch.Snapshot())
}

// upload runs a cycle on the first file of the "file" field. No file is a silent no-op.
func (ctrl *AnalysisController) upload(c *gin.Context) {
	var headers []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		headers = form.File[uploadField]
	}

	files := make([][]byte, 0, len(headers))
	for _, fh := range headers {
		b, err := ctrl.read(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload: " + err.Error()})
			return
		}
		files = append(files, b)
	}

	out, err := ctrl.orch.Upload(c.Request.Context(), files)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNoContent {
			c.Status(status)
			return
		}
		c.JSON(status, errorResponse{Error: err.Error(), State: ctrl.orch.Snapshot().State})
		return
	}
	c.JSON(http.StatusOK, newOutcomeResponse(out, ctrl.orch.Snapshot().State))
}

// read loads at most maxBytes+1 bytes so the decoder can reject oversized files.
func (ctrl *AnalysisController) read(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	var r io.Reader = f
	if ctrl.maxBytes > 0 {
		r = io.LimitReader(f, ctrl.maxBytes+1)
	}
	return io.ReadAll(r)
}
