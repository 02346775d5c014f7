package handlersheet

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/satori/uuid"

	"github.com/yusufsyaifudin/ngirim/internal/svc/attachstore"
	"github.com/yusufsyaifudin/ngirim/internal/svc/sheetsvc"
	"github.com/yusufsyaifudin/ngirim/pkg/logger"
	"github.com/yusufsyaifudin/ngirim/pkg/respbuilder"
	"github.com/yusufsyaifudin/ngirim/pkg/validator"
	"github.com/yusufsyaifudin/ngirim/transport/restapi/httptyped"
)

// uploads are held in memory up to this size, larger parts spill to disk
const maxUploadMemory = 32 << 20

type HandlerConfig struct {
	SheetService sheetsvc.Service  `validate:"required"`
	AttachStore  attachstore.Store `validate:"required"`
	UploadDir    string            `validate:"required"`
}

type Handler struct {
	Config HandlerConfig
}

func NewHandler(conf HandlerConfig) (*Handler, error) {
	err := validator.Validate(conf)
	if err != nil {
		return nil, err
	}

	if err = os.MkdirAll(conf.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create upload dir %s: %w", conf.UploadDir, err)
	}

	return &Handler{Config: conf}, nil
}

type ParseSheetResp struct {
	Recipients []httptyped.RecipientEntity `json:"recipients"`
	Total      int                         `json:"total"`
	Skipped    int                         `json:"skipped"`
}

// ParseSheet ingests one spreadsheet plus optional attachment files
// and returns the resolved recipients.
// Path         : POST /api/v1/sheets/parse
// Request Body : multipart form, field "sheet" holds the spreadsheet,
//                repeated field "attachments" holds pool files
// Response     : ParseSheetResp
func (h *Handler) ParseSheet() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		err := r.ParseMultipartForm(maxUploadMemory)
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		sheetFile, sheetHeader, err := r.FormFile("sheet")
		if err != nil {
			err = fmt.Errorf("missing sheet file: %w", err)
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		defer func() {
			if _err := sheetFile.Close(); _err != nil {
				logger.Error(ctx, "cannot close sheet upload", logger.KV("error", _err))
			}
		}()

		// keep the original extension so the row extractor can pick
		// the right reader
		sheetName := fmt.Sprintf("%s%s", uuid.NewV4().String(), filepath.Ext(sheetHeader.Filename))
		sheetPath := filepath.Join(h.Config.UploadDir, sheetName)

		dst, err := os.Create(sheetPath)
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrUnhandled, err)
			respbuilder.WriteJSON(http.StatusInternalServerError, w, r, resp)
			return
		}

		_, err = dst.ReadFrom(sheetFile)
		if _err := dst.Close(); _err != nil && err == nil {
			err = _err
		}

		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrUnhandled, err)
			respbuilder.WriteJSON(http.StatusInternalServerError, w, r, resp)
			return
		}

		defer func() {
			if _err := os.Remove(sheetPath); _err != nil {
				logger.Warn(ctx, "cannot remove uploaded sheet", logger.KV("error", _err))
			}
		}()

		if r.MultipartForm != nil {
			for _, fileHeader := range r.MultipartForm.File["attachments"] {
				file, _err := fileHeader.Open()
				if _err != nil {
					resp := respbuilder.Error(ctx, respbuilder.ErrValidation, _err)
					respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
					return
				}

				_, _err = h.Config.AttachStore.Save(ctx, attachstore.InputSave{
					Filename: fileHeader.Filename,
					Content:  file,
				})
				_ = file.Close()

				if _err != nil {
					resp := respbuilder.Error(ctx, respbuilder.ErrUnhandled, _err)
					respbuilder.WriteJSON(http.StatusInternalServerError, w, r, resp)
					return
				}
			}
		}

		parseOut, err := h.Config.SheetService.ParseSheet(ctx, sheetsvc.InputParseSheet{
			SheetPath: sheetPath,
		})
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusUnprocessableEntity, w, r, resp)
			return
		}

		recipients := make([]httptyped.RecipientEntity, 0, len(parseOut.Recipients))
		for _, recipient := range parseOut.Recipients {
			recipients = append(recipients, httptyped.RecipientEntityFromSvc(recipient))
		}

		respBody := ParseSheetResp{
			Recipients: recipients,
			Total:      parseOut.Total,
			Skipped:    parseOut.Skipped,
		}

		resp := respbuilder.Success(ctx, respBody)
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

type ListAttachmentsResp struct {
	Filenames []string `json:"filenames"`
}

// ListAttachments returns the current attachment pool.
// Path     : GET /api/v1/attachments
// Response : ListAttachmentsResp
func (h *Handler) ListAttachments() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		listOut, err := h.Config.AttachStore.List(ctx)
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrUnhandled, err)
			respbuilder.WriteJSON(http.StatusInternalServerError, w, r, resp)
			return
		}

		resp := respbuilder.Success(ctx, ListAttachmentsResp{Filenames: listOut.Filenames})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

type UploadAttachmentsResp struct {
	Saved []string `json:"saved"`
}

// UploadAttachments adds files to the pool.
// Path         : POST /api/v1/attachments
// Request Body : multipart form, repeated field "files"
// Response     : UploadAttachmentsResp
func (h *Handler) UploadAttachments() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		err := r.ParseMultipartForm(maxUploadMemory)
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		fileHeaders := r.MultipartForm.File["files"]
		if len(fileHeaders) == 0 {
			err = fmt.Errorf("no files in upload")
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		saved := make([]string, 0, len(fileHeaders))
		for _, fileHeader := range fileHeaders {
			file, _err := fileHeader.Open()
			if _err != nil {
				resp := respbuilder.Error(ctx, respbuilder.ErrValidation, _err)
				respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
				return
			}

			saveOut, _err := h.Config.AttachStore.Save(ctx, attachstore.InputSave{
				Filename: fileHeader.Filename,
				Content:  file,
			})
			_ = file.Close()

			if _err != nil {
				resp := respbuilder.Error(ctx, respbuilder.ErrUnhandled, _err)
				respbuilder.WriteJSON(http.StatusInternalServerError, w, r, resp)
				return
			}

			saved = append(saved, saveOut.Filename)
		}

		resp := respbuilder.Success(ctx, UploadAttachmentsResp{Saved: saved})
		respbuilder.WriteJSON(http.StatusCreated, w, r, resp)
	}

	return handler
}

type DeleteAttachmentResp struct {
	Success bool `json:"success"`
}

// DeleteAttachment removes one file from the pool.
// Path     : DELETE /api/v1/attachments/{filename}
// Response : DeleteAttachmentResp
func (h *Handler) DeleteAttachment() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		filename := strings.TrimSpace(chi.URLParam(r, "filename"))
		delOut, err := h.Config.AttachStore.Delete(ctx, attachstore.InputDelete{Filename: filename})
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		resp := respbuilder.Success(ctx, DeleteAttachmentResp{Success: delOut.Success})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

type ClearAttachmentsResp struct {
	Removed int `json:"removed"`
}

// ClearAttachments empties the whole pool.
// Path     : DELETE /api/v1/attachments
// Response : ClearAttachmentsResp
func (h *Handler) ClearAttachments() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		clearOut, err := h.Config.AttachStore.Clear(ctx)
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrUnhandled, err)
			respbuilder.WriteJSON(http.StatusInternalServerError, w, r, resp)
			return
		}

		resp := respbuilder.Success(ctx, ClearAttachmentsResp{Removed: clearOut.Removed})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}
