package handlerbatch

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/encoding/json"

	"github.com/yusufsyaifudin/ngirim/internal/svc/batchsvc"
	"github.com/yusufsyaifudin/ngirim/internal/svc/sheetsvc"
	"github.com/yusufsyaifudin/ngirim/pkg/logger"
	"github.com/yusufsyaifudin/ngirim/pkg/mailclient"
	"github.com/yusufsyaifudin/ngirim/pkg/respbuilder"
	"github.com/yusufsyaifudin/ngirim/pkg/validator"
	"github.com/yusufsyaifudin/ngirim/transport/restapi/httptyped"
)

type HandlerConfig struct {
	BatchService batchsvc.Service `validate:"required"`
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

// InlineSenderReq is a sender account carried in the request body
// instead of a stored config id.
type InlineSenderReq struct {
	SMTPHost    string `json:"smtp_host"`
	SMTPPort    int    `json:"smtp_port"`
	SenderEmail string `json:"sender_email"`
	SenderName  string `json:"sender_name"`
	UseSSL      bool   `json:"use_ssl"`
	UseTLS      bool   `json:"use_tls"`
}

func inlineSenderToSvc(req *InlineSenderReq) *batchsvc.InlineSender {
	if req == nil {
		return nil
	}

	return &batchsvc.InlineSender{
		SMTPHost:    req.SMTPHost,
		SMTPPort:    req.SMTPPort,
		SenderEmail: req.SenderEmail,
		SenderName:  req.SenderName,
		UseSSL:      req.UseSSL,
		UseTLS:      req.UseTLS,
	}
}

type SendBatchReq struct {
	SenderConfigID string           `json:"sender_config_id"`
	Sender         *InlineSenderReq `json:"sender"`
	Password       string           `json:"password"`

	Subject  string `json:"subject"`
	Content  string `json:"content"`
	HTMLMode bool   `json:"html_mode"`

	Recipients        []httptyped.RecipientEntity `json:"recipients"`
	CommonAttachments []string                    `json:"common_attachments"`
}

type RecipientResultEntity struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type SendBatchResp struct {
	BatchID      string                  `json:"batch_id"`
	Total        int                     `json:"total"`
	SuccessCount int                     `json:"success_count"`
	FailedCount  int                     `json:"failed_count"`
	SkippedCount int                     `json:"skipped_count"`
	Results      []RecipientResultEntity `json:"results"`
}

// SendBatch dispatches one batch of personalized mails sequentially
// over a single SMTP connection.
// Path         : POST /api/v1/batches
// Request Body : SendBatchReq
// Response     : SendBatchResp
func (h *Handler) SendBatch() func(http.ResponseWriter, *http.Request) {
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

		var reqBody SendBatchReq
		dec := json.NewDecoder(r.Body)
		err := dec.Decode(&reqBody)
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		recipients := make([]sheetsvc.Recipient, 0, len(reqBody.Recipients))
		for _, recipient := range reqBody.Recipients {
			recipients = append(recipients, httptyped.RecipientEntityToSvc(recipient))
		}

		sendIn := batchsvc.InputSendBatch{
			SenderConfigID:    reqBody.SenderConfigID,
			Sender:            inlineSenderToSvc(reqBody.Sender),
			Password:          reqBody.Password,
			Subject:           reqBody.Subject,
			Content:           reqBody.Content,
			HTMLMode:          reqBody.HTMLMode,
			Recipients:        recipients,
			CommonAttachments: reqBody.CommonAttachments,
		}

		sendOut, err := h.Config.BatchService.SendBatch(ctx, sendIn)
		switch {
		case errors.Is(err, batchsvc.ErrEmptyRecipients):
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusUnprocessableEntity, w, r, resp)
			return

		case errors.Is(err, mailclient.ErrAuth), errors.Is(err, mailclient.ErrConnect):
			resp := respbuilder.Error(ctx, respbuilder.ErrUnhandled, err)
			respbuilder.WriteJSON(http.StatusBadGateway, w, r, resp)
			return

		case err != nil:
			resp := respbuilder.Error(ctx, respbuilder.ErrUnhandled, err)
			respbuilder.WriteJSON(http.StatusInternalServerError, w, r, resp)
			return
		}

		results := make([]RecipientResultEntity, 0, len(sendOut.Results))
		for _, result := range sendOut.Results {
			results = append(results, RecipientResultEntity{
				Email:   result.Email,
				Name:    result.Name,
				Status:  result.Status,
				Message: result.Message,
			})
		}

		respBody := SendBatchResp{
			BatchID:      sendOut.BatchID,
			Total:        sendOut.Total,
			SuccessCount: sendOut.SuccessCount,
			FailedCount:  sendOut.FailedCount,
			SkippedCount: sendOut.SkippedCount,
			Results:      results,
		}

		resp := respbuilder.Success(ctx, respBody)
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

type TestConnectionReq struct {
	SenderConfigID string           `json:"sender_config_id"`
	Sender         *InlineSenderReq `json:"sender"`
	Password       string           `json:"password"`
}

type TestConnectionResp struct {
	Success bool   `json:"success"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

// TestConnection dials and authenticates without sending any mail.
// Path         : POST /api/v1/connection-test
// Request Body : TestConnectionReq
// Response     : TestConnectionResp
func (h *Handler) TestConnection() func(http.ResponseWriter, *http.Request) {
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

		var reqBody TestConnectionReq
		dec := json.NewDecoder(r.Body)
		err := dec.Decode(&reqBody)
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		testOut, err := h.Config.BatchService.TestConnection(ctx, batchsvc.InputTestConnection{
			SenderConfigID: reqBody.SenderConfigID,
			Sender:         inlineSenderToSvc(reqBody.Sender),
			Password:       reqBody.Password,
		})
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrUnhandled, err)
			respbuilder.WriteJSON(http.StatusBadGateway, w, r, resp)
			return
		}

		respBody := TestConnectionResp{
			Success: testOut.Success,
			Host:    testOut.Host,
			Port:    testOut.Port,
		}

		resp := respbuilder.Success(ctx, respBody)
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

type BatchLogsResp struct {
	Total int64                     `json:"total"`
	Logs  []httptyped.SendLogEntity `json:"logs"`
}

// BatchLogs lists one batch's per-recipient outcomes in order.
// Path     : GET /api/v1/batches/{batch_id}/logs
// Response : BatchLogsResp
func (h *Handler) BatchLogs() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		batchID := strings.TrimSpace(chi.URLParam(r, "batch_id"))
		logsOut, err := h.Config.BatchService.BatchLogs(ctx, batchsvc.InputBatchLogs{BatchID: batchID})
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		logs := make([]httptyped.SendLogEntity, 0, len(logsOut.Logs))
		for _, l := range logsOut.Logs {
			logs = append(logs, httptyped.SendLogEntityFromRepo(l))
		}

		respBody := BatchLogsResp{
			Total: logsOut.Total,
			Logs:  logs,
		}

		resp := respbuilder.Success(ctx, respBody)
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

type BatchStatsResp struct {
	BatchID string `json:"batch_id"`
	Total   int64  `json:"total"`
	Success int64  `json:"success"`
	Failed  int64  `json:"failed"`
	Skipped int64  `json:"skipped"`
}

// BatchStats aggregates one batch's outcomes by status.
// Path     : GET /api/v1/batches/{batch_id}/stats
// Response : BatchStatsResp
func (h *Handler) BatchStats() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		batchID := strings.TrimSpace(chi.URLParam(r, "batch_id"))
		statsOut, err := h.Config.BatchService.BatchStats(ctx, batchsvc.InputBatchStats{BatchID: batchID})
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		respBody := BatchStatsResp{
			BatchID: statsOut.Stats.BatchID,
			Total:   statsOut.Stats.Total,
			Success: statsOut.Stats.Success,
			Failed:  statsOut.Stats.Failed,
			Skipped: statsOut.Stats.Skipped,
		}

		resp := respbuilder.Success(ctx, respBody)
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}
