package handlertmpl

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/encoding/json"

	"github.com/yusufsyaifudin/ngirim/internal/svc/tmplrepo"
	"github.com/yusufsyaifudin/ngirim/pkg/logger"
	"github.com/yusufsyaifudin/ngirim/pkg/respbuilder"
	"github.com/yusufsyaifudin/ngirim/pkg/uid"
	"github.com/yusufsyaifudin/ngirim/pkg/validator"
	"github.com/yusufsyaifudin/ngirim/transport/restapi/httptyped"
)

type HandlerConfig struct {
	UIDGen       uid.UID       `validate:"required"`
	TemplateRepo tmplrepo.Repo `validate:"required"`
}

type Handler struct {
	Config HandlerConfig
}

func NewHandler(conf HandlerConfig) (*Handler, error) {
	err := validator.Validate(conf)
	if err != nil {
		return nil, err
	}

	return &Handler{Config: conf}, nil
}

type SaveTemplateReq struct {
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Content  string `json:"content"`
	HTMLMode bool   `json:"html_mode"`
}

type SaveTemplateResp struct {
	Template httptyped.TemplateEntity `json:"template"`
}

// SaveTemplate creates a template or, when the name already exists,
// overwrites that template's content keeping its id.
// Path         : POST /api/v1/templates
// Request Body : SaveTemplateReq
// Response     : SaveTemplateResp
func (h *Handler) SaveTemplate() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if r.Body == nil {
			err := fmt.Errorf("request body is nil")
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		defer func() {
			if _err := r.Body.Close(); _err != nil {
				logger.Error(ctx, "cannot close request body", logger.KV("error", _err))
			}
		}()

		var reqBody SaveTemplateReq
		dec := json.NewDecoder(r.Body)
		err := dec.Decode(&reqBody)
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		nextID, err := h.Config.UIDGen.NextID()
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrUnhandled, err)
			respbuilder.WriteJSON(http.StatusInternalServerError, w, r, resp)
			return
		}

		now := time.Now().UTC().UnixMicro()
		saveOut, err := h.Config.TemplateRepo.Save(ctx, tmplrepo.InputSave{
			Template: tmplrepo.Template{
				ID:        int64(nextID),
				Name:      reqBody.Name,
				Subject:   reqBody.Subject,
				Content:   reqBody.Content,
				HTMLMode:  reqBody.HTMLMode,
				CreatedAt: now,
				UpdatedAt: now,
			},
		})
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		respBody := SaveTemplateResp{
			Template: httptyped.TemplateEntityFromRepo(saveOut.Template),
		}

		resp := respbuilder.Success(ctx, respBody)
		respbuilder.WriteJSON(http.StatusCreated, w, r, resp)
	}

	return handler
}

type ListTemplatesResp struct {
	Total     int64                      `json:"total"`
	Templates []httptyped.TemplateEntity `json:"templates"`
}

// ListTemplates lists saved templates, most recently updated first.
// Path     : GET /api/v1/templates
// Response : ListTemplatesResp
func (h *Handler) ListTemplates() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		listOut, err := h.Config.TemplateRepo.List(ctx, tmplrepo.InputList{Limit: 100})
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrUnhandled, err)
			respbuilder.WriteJSON(http.StatusInternalServerError, w, r, resp)
			return
		}

		templates := make([]httptyped.TemplateEntity, 0, len(listOut.Templates))
		for _, tmpl := range listOut.Templates {
			templates = append(templates, httptyped.TemplateEntityFromRepo(tmpl))
		}

		respBody := ListTemplatesResp{
			Total:     listOut.Total,
			Templates: templates,
		}

		resp := respbuilder.Success(ctx, respBody)
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

type GetTemplateResp struct {
	Template httptyped.TemplateEntity `json:"template"`
}

// GetTemplate fetches one template.
// Path     : GET /api/v1/templates/{id}
// Response : GetTemplateResp
func (h *Handler) GetTemplate() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "id")), 10, 64)
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		getOut, err := h.Config.TemplateRepo.GetByID(ctx, tmplrepo.InputGetByID{ID: id})
		if errors.Is(err, tmplrepo.ErrNotFound) {
			resp := respbuilder.Error(ctx, respbuilder.ErrResourceNotFound, err)
			respbuilder.WriteJSON(http.StatusNotFound, w, r, resp)
			return
		}

		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrUnhandled, err)
			respbuilder.WriteJSON(http.StatusInternalServerError, w, r, resp)
			return
		}

		respBody := GetTemplateResp{
			Template: httptyped.TemplateEntityFromRepo(getOut.Template),
		}

		resp := respbuilder.Success(ctx, respBody)
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

type DelTemplateResp struct {
	Success bool `json:"success"`
}

// DelTemplate removes one template.
// Path     : DELETE /api/v1/templates/{id}
// Response : DelTemplateResp
func (h *Handler) DelTemplate() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "id")), 10, 64)
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		delOut, err := h.Config.TemplateRepo.DelByID(ctx, tmplrepo.InputDelByID{ID: id})
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrUnhandled, err)
			respbuilder.WriteJSON(http.StatusInternalServerError, w, r, resp)
			return
		}

		resp := respbuilder.Success(ctx, DelTemplateResp{Success: delOut.Success})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}
