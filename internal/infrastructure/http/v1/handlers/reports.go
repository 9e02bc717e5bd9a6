package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"fueldesk/internal/core/apperror"
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/reports"
	"fueldesk/internal/infrastructure/export"
)

// ReportsHandler handles reporting endpoints.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// PeriodReport handles GET /reports/periods - the closed periods of a store
// over a range plus a live open slice per tank.
func (h *ReportsHandler) PeriodReport(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.parseRequest(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.PeriodReport(ctx, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// PeriodReportExcel handles GET /reports/periods/export - the same report as
// an xlsx download.
func (h *ReportsHandler) PeriodReportExcel(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.parseRequest(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.PeriodReport(ctx, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	workbook, err := export.PeriodReportWorkbook(report)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("period-report_%s_%s.xlsx", req.RangeFrom.String(), req.RangeTo.String())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := workbook.Write(c.Writer); err != nil {
		h.Error(c, apperror.NewInternal(err))
	}
}

func (h *ReportsHandler) parseRequest(c *gin.Context) (reports.Request, error) {
	storeID, err := id.Parse(c.Query("storeId"))
	if err != nil {
		return reports.Request{}, apperror.NewValidation("invalid storeId format")
	}

	from, err := types.ParseDate(c.Query("from"))
	if err != nil {
		return reports.Request{}, apperror.NewValidation("invalid from date")
	}

	to, err := types.ParseDate(c.Query("to"))
	if err != nil {
		return reports.Request{}, apperror.NewValidation("invalid to date")
	}

	return reports.Request{StoreID: storeID, RangeFrom: from, RangeTo: to}, nil
}
