package handlersender

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/satori/uuid"
	"github.com/segmentio/encoding/json"

	"github.com/yusufsyaifudin/ngirim/internal/svc/senderrepo"
	"github.com/yusufsyaifudin/ngirim/pkg/logger"
	"github.com/yusufsyaifudin/ngirim/pkg/respbuilder"
	"github.com/yusufsyaifudin/ngirim/pkg/validator"
	"github.com/yusufsyaifudin/ngirim/transport/restapi/httptyped"
)

type HandlerConfig struct {
	SenderRepo senderrepo.Repo `validate:"required"`
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

type SaveSenderConfigReq struct {
	Name        string `json:"name"`
	SMTPHost    string `json:"smtp_host"`
	SMTPPort    int    `json:"smtp_port"`
	SenderEmail string `json:"sender_email"`
	SenderName  string `json:"sender_name"`
	UseSSL      bool   `json:"use_ssl"`
	UseTLS      bool   `json:"use_tls"`
	HTMLMode    bool   `json:"html_mode"`
}

type SaveSenderConfigResp struct {
	SenderConfig httptyped.SenderConfigEntity `json:"sender_config"`
}

// SaveSenderConfig creates a sender config or, when the name already
// exists, overwrites that row keeping its id. User-created configs are
// never protected.
// Path         : POST /api/v1/sender-configs
// Request Body : SaveSenderConfigReq
// Response     : SaveSenderConfigResp
func (h *Handler) SaveSenderConfig() func(http.ResponseWriter, *http.Request) {
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

		var reqBody SaveSenderConfigReq
		dec := json.NewDecoder(r.Body)
		err := dec.Decode(&reqBody)
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		now := time.Now().UTC().UnixMicro()
		saveOut, err := h.Config.SenderRepo.Save(ctx, senderrepo.InputSave{
			SenderConfig: senderrepo.SenderConfig{
				ID:          uuid.NewV4().String(),
				Name:        reqBody.Name,
				SMTPHost:    reqBody.SMTPHost,
				SMTPPort:    reqBody.SMTPPort,
				SenderEmail: reqBody.SenderEmail,
				SenderName:  reqBody.SenderName,
				UseSSL:      reqBody.UseSSL,
				UseTLS:      reqBody.UseTLS,
				HTMLMode:    reqBody.HTMLMode,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
		})
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		respBody := SaveSenderConfigResp{
			SenderConfig: httptyped.SenderConfigEntityFromRepo(saveOut.SenderConfig),
		}

		resp := respbuilder.Success(ctx, respBody)
		respbuilder.WriteJSON(http.StatusCreated, w, r, resp)
	}

	return handler
}

type ListSenderConfigsResp struct {
	Total         int64                          `json:"total"`
	SenderConfigs []httptyped.SenderConfigEntity `json:"sender_configs"`
}

// ListSenderConfigs lists presets first, then user configs by name.
// Path     : GET /api/v1/sender-configs
// Response : ListSenderConfigsResp
func (h *Handler) ListSenderConfigs() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		listOut, err := h.Config.SenderRepo.List(ctx, senderrepo.InputList{Limit: 100})
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrUnhandled, err)
			respbuilder.WriteJSON(http.StatusInternalServerError, w, r, resp)
			return
		}

		configs := make([]httptyped.SenderConfigEntity, 0, len(listOut.SenderConfigs))
		for _, cfg := range listOut.SenderConfigs {
			configs = append(configs, httptyped.SenderConfigEntityFromRepo(cfg))
		}

		respBody := ListSenderConfigsResp{
			Total:         listOut.Total,
			SenderConfigs: configs,
		}

		resp := respbuilder.Success(ctx, respBody)
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

type GetSenderConfigResp struct {
	SenderConfig httptyped.SenderConfigEntity `json:"sender_config"`
}

// GetSenderConfig fetches one sender config.
// Path     : GET /api/v1/sender-configs/{id}
// Response : GetSenderConfigResp
func (h *Handler) GetSenderConfig() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		getOut, err := h.Config.SenderRepo.GetByID(ctx, senderrepo.InputGetByID{ID: id})
		if errors.Is(err, senderrepo.ErrNotFound) {
			resp := respbuilder.Error(ctx, respbuilder.ErrResourceNotFound, err)
			respbuilder.WriteJSON(http.StatusNotFound, w, r, resp)
			return
		}

		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrUnhandled, err)
			respbuilder.WriteJSON(http.StatusInternalServerError, w, r, resp)
			return
		}

		respBody := GetSenderConfigResp{
			SenderConfig: httptyped.SenderConfigEntityFromRepo(getOut.SenderConfig),
		}

		resp := respbuilder.Success(ctx, respBody)
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

type DelSenderConfigResp struct {
	Success bool `json:"success"`
}

// DelSenderConfig removes one sender config. Deleting a built-in
// preset is rejected.
// Path     : DELETE /api/v1/sender-configs/{id}
// Response : DelSenderConfigResp
func (h *Handler) DelSenderConfig() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		delOut, err := h.Config.SenderRepo.DelByID(ctx, senderrepo.InputDelByID{ID: id})
		if errors.Is(err, senderrepo.ErrProtected) {
			resp := respbuilder.Error(ctx, respbuilder.ErrProtectedResource, err)
			respbuilder.WriteJSON(http.StatusForbidden, w, r, resp)
			return
		}

		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrUnhandled, err)
			respbuilder.WriteJSON(http.StatusInternalServerError, w, r, resp)
			return
		}

		resp := respbuilder.Success(ctx, DelSenderConfigResp{Success: delOut.Success})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}
