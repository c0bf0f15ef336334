package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/Domenick1991/cargobooking/internal/service/optimizer"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type OptimizerUseCase interface {
	Report(ctx context.Context) (*optimizer.Report, error)
	ExportXLSX(ctx context.Context, w io.Writer) error
}

type OptimizerHandler struct {
	service OptimizerUseCase
}

func NewOptimizerHandler(service OptimizerUseCase) *OptimizerHandler {
	return &OptimizerHandler{service: service}
}

func (h *OptimizerHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.report)
	router.GET("/export", h.export)
}

func (h *OptimizerHandler) report(c *gin.Context) {
	report, err := h.service.Report(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *OptimizerHandler) export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.service.ExportXLSX(c.Request.Context(), &buf); err != nil {
		writeError(c, err)
		return
	}
	name := "capacity-report-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
