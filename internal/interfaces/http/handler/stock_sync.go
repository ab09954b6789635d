package handler

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/application/stocksync"
	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/domain/stock"
	"github.com/stocksync/backend/internal/infrastructure/logger"
)

// defaultMaxUploadSize caps a single spreadsheet upload
const defaultMaxUploadSize = 32 << 20

// StockSyncHandler handles the stock sync lifecycle HTTP requests
type StockSyncHandler struct {
	BaseHandler
	service       *stocksync.Service
	websites      integration.WebsiteRepository
	maxUploadSize int64
}

// NewStockSyncHandler creates a new StockSyncHandler
func NewStockSyncHandler(service *stocksync.Service, websites integration.WebsiteRepository, maxUploadSize int64) *StockSyncHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = defaultMaxUploadSize
	}
	return &StockSyncHandler{
		service:       service,
		websites:      websites,
		maxUploadSize: maxUploadSize,
	}
}

// ProcessFilesResponse is the result of one pipeline execution
type ProcessFilesResponse struct {
	RunID        uuid.UUID                    `json:"runId"`
	TotalRecords int                          `json:"totalRecords"`
	Records      []stock.CanonicalStockRecord `json:"records"`
	StepsRun     []string                     `json:"stepsRun"`
}

// ProcessFiles godoc: accepts the two source spreadsheets as multipart
// files ("stock_report", "item_directory"), runs the transform pipeline
// and returns the canonical records of the new run.
func (h *StockSyncHandler) ProcessFiles(c *gin.Context) {
	ctx := c.Request.Context()

	stockReport, err := h.readUpload(c, "stock_report")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	itemDirectory, err := h.readUpload(c, "item_directory")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var stepsRun []string
	run, err := h.service.ProcessFiles(ctx, stockReport, itemDirectory, func(_ int, key string) {
		stepsRun = append(stepsRun, key)
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ProcessFilesResponse{
		RunID:        run.ID,
		TotalRecords: len(run.Records),
		Records:      run.Records,
		StepsRun:     stepsRun,
	})
}

// readUpload reads one multipart file field, enforcing the size cap.
func (h *StockSyncHandler) readUpload(c *gin.Context, field string) ([]byte, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%s file is required", field)
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		return nil, fmt.Errorf("%s exceeds maximum upload size", field)
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	if int64(len(data)) > h.maxUploadSize {
		return nil, fmt.Errorf("%s exceeds maximum upload size", field)
	}
	return data, nil
}

// PreviewRequest identifies the run and target site for a reconciliation
type PreviewRequest struct {
	SiteID uuid.UUID `json:"siteId" binding:"required"`
	RunID  uuid.UUID `json:"runId" binding:"required"`
}

// GeneratePreview reconciles a run against a site's remote catalog and
// returns the pending diff. Nothing is written remotely.
func (h *StockSyncHandler) GeneratePreview(c *gin.Context) {
	ctx := c.Request.Context()

	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	preview, err := h.service.GeneratePreview(ctx, req.SiteID, req.RunID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, preview)
}

// ConfirmRequest identifies the pending preview to apply
type ConfirmRequest struct {
	SiteID    uuid.UUID `json:"siteId" binding:"required"`
	PreviewID uuid.UUID `json:"previewId" binding:"required"`
}

// ConfirmSyncResponse carries the outcome of an executed sync
type ConfirmSyncResponse struct {
	Summary *stock.SyncSummary `json:"summary"`
	Details []stock.SyncDetail `json:"details"`
}

// ConfirmSync applies a pending preview to the remote catalog. Partial
// failures still produce a summary; transport-level failures surface as
// upstream errors alongside the recorded outcome.
func (h *StockSyncHandler) ConfirmSync(c *gin.Context) {
	ctx := c.Request.Context()

	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	summary, details, err := h.service.ConfirmSync(ctx, req.SiteID, req.PreviewID)
	if err != nil {
		// Remote writes may already be applied; only fail the request when
		// there is no outcome to report.
		if summary == nil {
			h.HandleError(c, err)
			return
		}
		logger.GetGinLogger(c).Warn("sync completed but recording failed", zap.Error(err))
	}

	h.Success(c, ConfirmSyncResponse{Summary: summary, Details: details})
}

// CancelPreview discards a pending preview, returning the site to idle.
func (h *StockSyncHandler) CancelPreview(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.service.CancelPreview(req.SiteID, req.PreviewID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListSites returns the configured websites for the requesting site user.
func (h *StockSyncHandler) ListSites(c *gin.Context) {
	ctx := c.Request.Context()

	siteUser, err := getSiteUser(c)
	if err != nil {
		h.BadRequest(c, "Missing "+SiteUserHeader+" header")
		return
	}

	sites, err := h.websites.FindBySiteUser(ctx, siteUser)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]SiteResponse, 0, len(sites))
	for _, s := range sites {
		out = append(out, newSiteResponse(&s))
	}
	h.Success(c, out)
}

// SiteResponse is a website stripped of credential material.
type SiteResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Platform       string    `json:"platform"`
	BaseURL        string    `json:"baseUrl"`
	CurrencySymbol string    `json:"currencySymbol"`
}

func newSiteResponse(s *integration.Website) SiteResponse {
	return SiteResponse{
		ID:             s.ID,
		Name:           s.Name,
		Platform:       string(s.Platform),
		BaseURL:        s.BaseURL,
		CurrencySymbol: s.CurrencySymbol,
	}
}

// LatestSummary returns the most recent sync summary for the site user.
func (h *StockSyncHandler) LatestSummary(c *gin.Context) {
	ctx := c.Request.Context()

	siteUser, err := getSiteUser(c)
	if err != nil {
		h.BadRequest(c, "Missing "+SiteUserHeader+" header")
		return
	}

	summary, err := h.service.LatestSummary(ctx, siteUser)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// SummaryDetails returns the audit rows of a recorded sync.
func (h *StockSyncHandler) SummaryDetails(c *gin.Context) {
	ctx := c.Request.Context()

	summaryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid summary ID")
		return
	}

	details, err := h.service.SummaryDetails(ctx, summaryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, details)
}

// ExportRun streams a run's canonical records as CSV.
func (h *StockSyncHandler) ExportRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("runId"))
	if err != nil {
		h.BadRequest(c, "Invalid run ID")
		return
	}

	run, err := h.service.Run(runID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="stock-data.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Item Code", "Item Name", "Regular Price", "Sale Price", "Stock"})
	for _, r := range run.Records {
		_ = w.Write([]string{
			r.SKU,
			r.Name,
			strconv.FormatInt(r.RegularPrice, 10),
			strconv.FormatInt(r.SalePrice, 10),
			strconv.FormatInt(r.Stock, 10),
		})
	}
	w.Flush()
}

// RegisterRoutes registers all stock sync routes
func (h *StockSyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/stock-sync")
	{
		sync.POST("/process", h.ProcessFiles)
		sync.POST("/preview", h.GeneratePreview)
		sync.POST("/confirm", h.ConfirmSync)
		sync.POST("/cancel", h.CancelPreview)
		sync.GET("/sites", h.ListSites)
		sync.GET("/summary/latest", h.LatestSummary)
		sync.GET("/summary/:id/details", h.SummaryDetails)
		sync.GET("/export/:runId", h.ExportRun)
	}
}
