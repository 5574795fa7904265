package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"prison-records/internal/importer"
	"prison-records/internal/logging"
	"prison-records/internal/sheet"
	"prison-records/internal/store"
	"prison-records/internal/textgen"
	"prison-records/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 上传文件大小上限
const maxUploadBytes = 32 << 20

const aiImportFailed = "The AI failed to process the import file. Please check the file format or try again."

type ImportExportHandler struct {
	Store    store.Store
	Importer *importer.Importer
	View     *ViewSession
	Logger   *zap.Logger
}

func NewImportExportHandler(s store.Store, im *importer.Importer, v *ViewSession, logger *zap.Logger) *ImportExportHandler {
	return &ImportExportHandler{
		Store:    s,
		Importer: im,
		View:     v,
		Logger:   logging.OrNop(logger),
	}
}

// Import 导入 CSV / XLSX，mode=normal|ai
func (h *ImportExportHandler) Import(c *gin.Context) {
	mode := importer.Mode(c.DefaultQuery("mode", string(importer.ModeNormal)))
	if mode != importer.ModeNormal && mode != importer.ModeAI {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, fmt.Sprintf("Unknown import mode %q", mode))
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Please choose a file to import")
		return
	}
	if fh.Size > maxUploadBytes {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "File is too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Failed to read the file.")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Failed to read the file.")
		return
	}

	sum, err := h.Importer.ImportFile(c.Request.Context(), fh.Filename, data, mode)
	if err != nil {
		h.importError(c, fh.Filename, mode, err)
		return
	}

	res, _, err := h.View.Render(c.Request.Context(), h.Store)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load records")
		return
	}
	msg := fmt.Sprintf("Successfully imported %d prisoners.", sum.Imported)
	if mode == importer.ModeAI {
		msg = fmt.Sprintf("Successfully imported %d prisoners using AI.", sum.Imported)
	}
	util.Success(c, util.Response{
		"message": msg,
		"summary": sum,
		"view":    res,
	})
}

func (h *ImportExportHandler) importError(c *gin.Context, name string, mode importer.Mode, err error) {
	log := h.Logger.With(zap.String("file", name), zap.String("mode", string(mode)))

	var ve *importer.ValidationError
	var ce *textgen.CapabilityError
	switch {
	case errors.As(err, &ve):
		log.Warn("import validation failed", zap.Error(err))
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Import failed: "+ve.Error())
	case errors.Is(err, importer.ErrEmptyFile):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "File is empty or could not be read.")
	case errors.Is(err, importer.ErrNoValidRecords):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam,
			"AI processing did not find any valid records to import. Please ensure convict number, name, and admission date are present.")
	case errors.As(err, &ce) && ce.Op == importer.OpReadFile:
		log.Warn("import file unreadable", zap.Error(err))
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Failed to read the file.")
	case errors.As(err, &ce):
		log.Error("ai import failed", zap.Error(err))
		util.Error(c, http.StatusBadGateway, util.CodeCapability, aiImportFailed)
	default:
		log.Error("import failed", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Import failed")
	}
}

// ExportCSV 导出当前视图（全部页）为 CSV，视图为空时返回 204
func (h *ImportExportHandler) ExportCSV(c *gin.Context) {
	res, _, err := h.View.Render(c.Request.Context(), h.Store)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load records")
		return
	}
	if len(res.Matched) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sheet.CSVFileName))
	if err := sheet.WriteCSV(c.Writer, res.Matched); err != nil {
		h.Logger.Error("export csv", zap.Error(err))
	}
}

// ExportXLSX 导出当前视图为 XLSX
func (h *ImportExportHandler) ExportXLSX(c *gin.Context) {
	res, _, err := h.View.Render(c.Request.Context(), h.Store)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load records")
		return
	}
	if len(res.Matched) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sheet.XLSXFileName))
	if err := sheet.WriteXLSX(c.Writer, res.Matched); err != nil {
		h.Logger.Error("export xlsx", zap.Error(err))
	}
}
