// internal/handler/printer_handler.go
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"printer-bridge/internal/fault"
	"printer-bridge/internal/model"
	"printer-bridge/internal/repository"
	"printer-bridge/internal/service"
	"printer-bridge/internal/session"
	"printer-bridge/internal/utils"
)

// PrinterService is the printer surface the handlers drive
type PrinterService interface {
	SearchPrinters(ctx context.Context, interfaces []model.InterfaceType) ([]model.FoundPrinter, error)
	SearchPrinter(ctx context.Context, interfaces []model.InterfaceType) (*model.FoundPrinter, error)
	Connect(ctx context.Context, identifier, iface string) error
	Disconnect(ctx context.Context) error
	State() (session.State, *model.ConnectionSettings)
	Print(ctx context.Context, descriptors []map[string]interface{}, charset string) (*service.PrintResult, error)
	PrintLegacy(ctx context.Context, descriptors []map[string]interface{}) (*service.PrintResult, error)
	GetStatus(ctx context.Context) (*model.Status, error)
	OpenCashDrawer(ctx context.Context) error
	ShowTextOnDisplay(ctx context.Context, req service.DisplayRequest) error
	ClearDisplay(ctx context.Context) error
	AddListener(name model.EventName) (int64, error)
	RemoveListeners(count int) (int64, error)
	ListenerCount() int64
	ListJobs(ctx context.Context, filter *repository.JobFilter) ([]*model.PrintJob, int, error)
}

// JobIDHeader carries the journal id of a print job
const JobIDHeader = "X-Print-Job-ID"

// PrinterHandler handles printer, display and listener requests
type PrinterHandler struct {
	printerService PrinterService
	logger         *utils.ServiceLogger
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(printerService PrinterService, logger *zap.Logger) *PrinterHandler {
	return &PrinterHandler{
		printerService: printerService,
		logger:         utils.NewServiceLogger(logger, "printer-handler"),
	}
}

// SearchPrinters searches the interfaces named in ?interface=usb,lan. The
// first printer found is returned unless ?all=true.
func (h *PrinterHandler) SearchPrinters(c *gin.Context) {
	interfaces, err := parseInterfaces(c.Query("interface"))
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"interface": err.Error()})
		return
	}

	if all, _ := strconv.ParseBool(c.Query("all")); all {
		printers, err := h.printerService.SearchPrinters(c.Request.Context(), interfaces)
		if err != nil {
			utils.FaultResponse(c, fault.OpSearch, err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Printer search completed", gin.H{
			"printers_found": len(printers),
			"printers":       printers,
		})
		return
	}

	printer, err := h.printerService.SearchPrinter(c.Request.Context(), interfaces)
	if err != nil {
		utils.FaultResponse(c, fault.OpSearch, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Printer found", printer)
}

// Connect opens a printer
func (h *PrinterHandler) Connect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"identifier": "identifier is required"})
		return
	}

	if err := h.printerService.Connect(c.Request.Context(), req.Identifier, req.Interface); err != nil {
		utils.FaultResponse(c, fault.OpOpen, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Printer connected", true)
}

// Disconnect releases the printer. It always reports success.
func (h *PrinterHandler) Disconnect(c *gin.Context) {
	_ = h.printerService.Disconnect(c.Request.Context())
	utils.SuccessResponse(c, http.StatusOK, "Printer disconnected", true)
}

// GetState returns the session state
func (h *PrinterHandler) GetState(c *gin.Context) {
	state, settings := h.printerService.State()
	utils.SuccessResponse(c, http.StatusOK, "Session state retrieved", gin.H{
		"state":               state.String(),
		"connection_settings": settings,
	})
}

// GetStatus queries the printer
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	status, err := h.printerService.GetStatus(c.Request.Context())
	if err != nil {
		utils.FaultResponse(c, fault.OpGetStatus, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Printer status retrieved", status)
}

// Print builds and dispatches one document
func (h *PrinterHandler) Print(c *gin.Context) {
	var req PrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"commands": "commands must be a non-empty array of objects"})
		return
	}

	result, err := h.printerService.Print(c.Request.Context(), req.Commands, req.Charset)
	setJobHeader(c, result)
	if err != nil {
		utils.FaultResponse(c, fault.OpPrint, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Printed", true)
}

// PrintLegacy dispatches append* descriptors
func (h *PrinterHandler) PrintLegacy(c *gin.Context) {
	var req LegacyPrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"commands": "commands must be a non-empty array of objects"})
		return
	}

	result, err := h.printerService.PrintLegacy(c.Request.Context(), req.Commands)
	setJobHeader(c, result)
	if err != nil {
		utils.FaultResponse(c, fault.OpPrint, err)
		return
	}

	var skipped []string
	if result != nil {
		skipped = result.Skipped
	}
	utils.SuccessResponse(c, http.StatusOK, "Printed", gin.H{
		"printed": true,
		"skipped": skipped,
	})
}

// OpenCashDrawer kicks the cash drawer
func (h *PrinterHandler) OpenCashDrawer(c *gin.Context) {
	if err := h.printerService.OpenCashDrawer(c.Request.Context()); err != nil {
		utils.FaultResponse(c, fault.OpOpenDrawer, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Cash drawer opened", true)
}

// ShowTextOnDisplay writes text to the customer display
func (h *PrinterHandler) ShowTextOnDisplay(c *gin.Context) {
	var req service.DisplayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.printerService.ShowTextOnDisplay(c.Request.Context(), req); err != nil {
		utils.FaultResponse(c, fault.OpShowText, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Text shown on display", true)
}

// ClearDisplay clears the customer display
func (h *PrinterHandler) ClearDisplay(c *gin.Context) {
	if err := h.printerService.ClearDisplay(c.Request.Context()); err != nil {
		utils.FaultResponse(c, fault.OpClearDisplay, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Display cleared", true)
}

// GetListeners returns the listener count
func (h *PrinterHandler) GetListeners(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Listener count retrieved", gin.H{
		"count":  h.printerService.ListenerCount(),
		"events": model.EventNames(),
	})
}

// AddListener registers one listener
func (h *PrinterHandler) AddListener(c *gin.Context) {
	var req AddListenerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"eventName": "eventName is required"})
		return
	}

	count, err := h.printerService.AddListener(model.EventName(req.EventName))
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"eventName": err.Error()})
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Listener added", gin.H{"count": count})
}

// RemoveListeners drops listeners
func (h *PrinterHandler) RemoveListeners(c *gin.Context) {
	var req RemoveListenersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	count, err := h.printerService.RemoveListeners(req.Count)
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"count": err.Error()})
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Listeners removed", gin.H{"count": count})
}

// ListJobs lists journaled print jobs
func (h *PrinterHandler) ListJobs(c *gin.Context) {
	filter := &repository.JobFilter{}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			utils.ValidationErrorResponse(c, map[string]string{"limit": "limit must be a positive integer"})
			return
		}
		filter.PerPage = limit
	}
	if v := c.Query("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page <= 0 {
			utils.ValidationErrorResponse(c, map[string]string{"page": "page must be a positive integer"})
			return
		}
		filter.Page = page
	}
	if v := c.Query("status"); v != "" {
		status := model.JobStatus(strings.ToUpper(v))
		filter.Status = &status
	}
	if v := c.Query("identifier"); v != "" {
		filter.Identifier = &v
	}
	if v := c.Query("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			utils.ValidationErrorResponse(c, map[string]string{"since": "since must be RFC 3339"})
			return
		}
		filter.StartDate = &since
	}

	jobs, total, err := h.printerService.ListJobs(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, service.ErrJournalDisabled) {
			utils.ErrorResponse(c, http.StatusServiceUnavailable, "Print job journal is disabled", err)
			return
		}
		h.logger.Error("Failed to list print jobs", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list print jobs", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Print jobs retrieved", gin.H{
		"total": total,
		"jobs":  jobs,
	})
}

func setJobHeader(c *gin.Context, result *service.PrintResult) {
	if result != nil && result.Job != nil {
		c.Header(JobIDHeader, result.Job.ID.String())
	}
}

// parseInterfaces reads a comma separated interface filter
func parseInterfaces(raw string) ([]model.InterfaceType, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var interfaces []model.InterfaceType
	for _, part := range strings.Split(raw, ",") {
		iface := model.ParseInterfaceType(strings.TrimSpace(part))
		if iface == model.InterfaceUnknown {
			return nil, errors.New("unknown interface: " + strings.TrimSpace(part))
		}
		interfaces = append(interfaces, iface)
	}
	return interfaces, nil
}

// ConnectRequest represents a connect request
type ConnectRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Interface  string `json:"interface"`
}

// PrintRequest represents a print request
type PrintRequest struct {
	Commands []map[string]interface{} `json:"commands" binding:"required,min=1"`
	Charset  string                   `json:"charset"`
}

// LegacyPrintRequest represents a legacy print request
type LegacyPrintRequest struct {
	Commands []map[string]interface{} `json:"commands" binding:"required,min=1"`
}

// AddListenerRequest represents an add listener request
type AddListenerRequest struct {
	EventName string `json:"eventName" binding:"required"`
}

// RemoveListenersRequest represents a remove listeners request
type RemoveListenersRequest struct {
	Count int `json:"count"`
}
