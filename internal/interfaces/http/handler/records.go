package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/erp/backoffice/internal/application/records"
	"github.com/erp/backoffice/internal/application/stats"
	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// XLSXContentType is the MIME type of exported workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RecordService is the server-side surface of one entity
type RecordService[T any] interface {
	Entity() string
	List(ctx context.Context, req records.ListRequest) (*records.ListResponse[T], error)
	Dashboard(ctx context.Context, q listview.Query, theme stats.Theme) (stats.Dashboard, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, payload map[string]any) (*T, error)
	Update(ctx context.Context, id string, payload map[string]any) (*T, error)
	Toggle(ctx context.Context, id, field string) (*T, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, q listview.Query) ([]string, [][]string, error)
}

// WorkbookWriter serializes a header and rows into a spreadsheet
type WorkbookWriter interface {
	Write(sheet string, header []string, rows [][]string) ([]byte, error)
}

// RecordHandler serves the CRUD, toggle, stats and export routes of one entity
type RecordHandler[T any] struct {
	BaseHandler
	svc      RecordService[T]
	workbook WorkbookWriter
	metrics  MutationRecorder
	guard    []gin.HandlerFunc
	now      func() time.Time
}

// NewRecordHandler creates a RecordHandler; guard runs before every route
func NewRecordHandler[T any](svc RecordService[T], workbook WorkbookWriter, metrics MutationRecorder, guard ...gin.HandlerFunc) *RecordHandler[T] {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &RecordHandler[T]{
		svc:      svc,
		workbook: workbook,
		metrics:  metrics,
		guard:    guard,
		now:      time.Now,
	}
}

// RegisterRoutes mounts the entity under /<entity>
func (h *RecordHandler[T]) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/"+h.svc.Entity(), h.guard...)
	g.GET("", h.List)
	g.GET("/stats", h.Stats)
	g.GET("/export", h.Export)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id/toggle", h.Toggle)
	g.DELETE("/:id", h.Delete)
}

func (h *RecordHandler[T]) query(c *gin.Context) (listview.Query, bool) {
	q, err := listview.ParseQuery(c.Request.URL.Query())
	if err != nil {
		h.BadRequest(c, dto.ErrCodeInvalidQuery, err.Error())
		return listview.Query{}, false
	}
	return q, true
}

// List runs search, filters, date window and grouping; format=stats adds aggregates
func (h *RecordHandler[T]) List(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}
	res, err := h.svc.List(c.Request.Context(), records.ListRequest{
		Query: q,
		Stats: c.Query("format") == "stats",
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Stats returns the dashboard of the filtered records
func (h *RecordHandler[T]) Stats(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}
	theme, err := stats.ParseTheme(c.Query("theme"))
	if err != nil {
		h.BadRequest(c, dto.ErrCodeInvalidQuery, err.Error())
		return
	}
	d, err := h.svc.Dashboard(c.Request.Context(), q, theme)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// Export downloads the filtered list as a workbook
func (h *RecordHandler[T]) Export(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}
	header, rows, err := h.svc.Export(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	data, err := h.workbook.Write(h.svc.Entity(), header, rows)
	if err != nil {
		h.HandleError(c, fmt.Errorf("write %s workbook: %w", h.svc.Entity(), err))
		return
	}
	name := fmt.Sprintf("%s-%s.xlsx", h.svc.Entity(), h.now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, XLSXContentType, data)
}

// Get returns one record
func (h *RecordHandler[T]) Get(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}

func (h *RecordHandler[T]) payload(c *gin.Context) (map[string]any, bool) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.BadRequest(c, dto.ErrCodeInvalidJSON, "Corps de requête invalide: "+err.Error())
		return nil, false
	}
	return payload, true
}

// Create inserts a record from the declared payload fields
func (h *RecordHandler[T]) Create(c *gin.Context) {
	payload, ok := h.payload(c)
	if !ok {
		return
	}
	rec, err := h.svc.Create(c.Request.Context(), payload)
	h.metrics.RecordMutation(h.svc.Entity(), "create", err)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Enregistrement créé", rec)
}

// Update merges the payload into a record
func (h *RecordHandler[T]) Update(c *gin.Context) {
	payload, ok := h.payload(c)
	if !ok {
		return
	}
	rec, err := h.svc.Update(c.Request.Context(), c.Param("id"), payload)
	h.metrics.RecordMutation(h.svc.Entity(), "update", err)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessMessage(c, "Modifications enregistrées", rec)
}

// Toggle flips a binary status; the body may name the field
func (h *RecordHandler[T]) Toggle(c *gin.Context) {
	var req dto.ToggleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, dto.ErrCodeInvalidJSON, "Corps de requête invalide: "+err.Error())
			return
		}
	}
	rec, err := h.svc.Toggle(c.Request.Context(), c.Param("id"), req.Field)
	h.metrics.RecordMutation(h.svc.Entity(), "toggle", err)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessMessage(c, "Statut mis à jour", rec)
}

// Delete removes a record
func (h *RecordHandler[T]) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	h.metrics.RecordMutation(h.svc.Entity(), "delete", err)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessMessage(c, "Enregistrement supprimé", nil)
}
