package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clubday/services"
	"github.com/yeremiapane/clubday/utils"
)

const defaultTopItems = 10

type ReportController struct {
	Reports *services.ReportService
}

func NewReportController(svc *services.Container) *ReportController {
	return &ReportController{Reports: svc.Reports}
}

// reportRange reads ?from&to. A plain date for to covers that whole day;
// without parameters the range is today.
func reportRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 0, 1)

	if raw := c.Query("from"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			return from, to, err
		}
		from = t
		to = from.AddDate(0, 0, 1)
	}
	if raw := c.Query("to"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			return from, to, err
		}
		if len(raw) == len("2006-01-02") {
			t = t.AddDate(0, 0, 1)
		}
		to = t
	}
	return from, to, nil
}

func (rc *ReportController) load(c *gin.Context) (*services.SalesReport, bool) {
	from, to, err := reportRange(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return nil, false
	}
	top, err := strconv.Atoi(c.DefaultQuery("top", strconv.Itoa(defaultTopItems)))
	if err != nil || top <= 0 {
		top = defaultTopItems
	}
	report, err := rc.Reports.Sales(c.Request.Context(), from, to, top)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return report, true
}

// Sales -> GET /admin/reports/sales?from=&to=&top=
func (rc *ReportController) Sales(c *gin.Context) {
	report, ok := rc.load(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sales report", report)
}

// SalesPDF -> GET /admin/reports/sales.pdf
func (rc *ReportController) SalesPDF(c *gin.Context) {
	report, ok := rc.load(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := rc.Reports.WriteSalesPDF(report, &buf); err != nil {
		respondServiceError(c, err)
		return
	}
	filename := fmt.Sprintf("vendas_%s.pdf", report.From.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
