package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/erp/backoffice/internal/application/partnerimport"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PartnerImporter runs partner import sessions
type PartnerImporter interface {
	Upload(ctx context.Context, fileName string, data []byte) (*partnerimport.Session, error)
	Get(ctx context.Context, id string) (*partnerimport.Session, error)
	EditCell(ctx context.Context, id string, index int, column, value string) (partnerimport.Row, error)
	Commit(ctx context.Context, id string) (int, error)
	Template() ([]byte, error)
}

// PartnerImportHandler serves the spreadsheet import routes of partners
type PartnerImportHandler struct {
	BaseHandler
	svc       PartnerImporter
	metrics   MutationRecorder
	maxUpload int64
	guard     []gin.HandlerFunc
}

// NewPartnerImportHandler creates a PartnerImportHandler
func NewPartnerImportHandler(svc PartnerImporter, metrics MutationRecorder, maxUpload int64, guard ...gin.HandlerFunc) *PartnerImportHandler {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &PartnerImportHandler{svc: svc, metrics: metrics, maxUpload: maxUpload, guard: guard}
}

// RegisterRoutes mounts the routes under /partners/import
func (h *PartnerImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/partners/import", h.guard...)
	g.POST("", h.Upload)
	g.GET("/template", h.Template)
	g.GET("/:session", h.Get)
	g.PATCH("/:session/rows/:row", h.EditCell)
	g.POST("/:session/commit", h.Commit)
}

func sessionResponse(s *partnerimport.Session) dto.ImportSessionResponse {
	return dto.ImportSessionResponse{
		ID:          s.ID,
		FileName:    s.FileName,
		TotalRows:   len(s.Rows),
		InvalidRows: s.ErrorCount(),
		Valid:       s.Valid(),
		Rows:        s.Rows,
	}
}

// Upload parses a multipart "file" field into a new session
func (h *PartnerImportHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, dto.ErrCodeBadRequest, "Aucun fichier reçu")
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		h.BadRequest(c, dto.ErrCodeInvalidInput, "Le fichier doit être au format .xlsx")
		return
	}
	if h.maxUpload > 0 && fh.Size > h.maxUpload {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge, "Le fichier dépasse la taille maximale autorisée")
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	sess, err := h.svc.Upload(c.Request.Context(), filepath.Base(fh.Filename), data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.metrics.RecordImportRows(len(sess.Rows)-sess.ErrorCount(), sess.ErrorCount())
	h.Created(c, "", sessionResponse(sess))
}

// Get returns a session with its rows and their errors
func (h *PartnerImportHandler) Get(c *gin.Context) {
	sess, err := h.svc.Get(c.Request.Context(), c.Param("session"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sessionResponse(sess))
}

// EditCell corrects one cell; the row index is 0-based
func (h *PartnerImportHandler) EditCell(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("row"))
	if err != nil {
		h.BadRequest(c, dto.ErrCodeInvalidInput, "Numéro de ligne invalide")
		return
	}
	var req dto.EditCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, dto.ErrCodeInvalidJSON, "Corps de requête invalide: "+err.Error())
		return
	}
	row, err := h.svc.EditCell(c.Request.Context(), c.Param("session"), index, req.Column, req.Value)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// Commit inserts every row once all are valid
func (h *PartnerImportHandler) Commit(c *gin.Context) {
	id := c.Param("session")
	n, err := h.svc.Commit(c.Request.Context(), id)
	h.metrics.RecordMutation("partners", "import", err)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.log(c).Info("partners imported", zap.String("session_id", id), zap.Int("count", n))
	h.SuccessMessage(c, strconv.Itoa(n)+" partenaire(s) importé(s)", dto.ImportCommitResponse{Imported: n})
}

// Template downloads an empty workbook with the expected header
func (h *PartnerImportHandler) Template(c *gin.Context) {
	data, err := h.svc.Template()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="partenaires-modele.xlsx"`)
	c.Data(http.StatusOK, XLSXContentType, data)
}
