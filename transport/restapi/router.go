package restapi

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/yusufsyaifudin/ngirim/internal/svc/attachstore"
	"github.com/yusufsyaifudin/ngirim/internal/svc/batchsvc"
	"github.com/yusufsyaifudin/ngirim/internal/svc/senderrepo"
	"github.com/yusufsyaifudin/ngirim/internal/svc/sheetsvc"
	"github.com/yusufsyaifudin/ngirim/internal/svc/tmplrepo"
	"github.com/yusufsyaifudin/ngirim/pkg/respbuilder"
	"github.com/yusufsyaifudin/ngirim/pkg/tracer"
	"github.com/yusufsyaifudin/ngirim/pkg/uid"
	"github.com/yusufsyaifudin/ngirim/pkg/validator"
	"github.com/yusufsyaifudin/ngirim/transport/restapi/handlerbatch"
	"github.com/yusufsyaifudin/ngirim/transport/restapi/handlersender"
	"github.com/yusufsyaifudin/ngirim/transport/restapi/handlersheet"
	"github.com/yusufsyaifudin/ngirim/transport/restapi/handlertmpl"
)

type Config struct {
	AppServiceName string `validate:"required"`
	AppVersion     string `validate:"required"`

	UIDGen       uid.UID           `validate:"required"`
	SheetService sheetsvc.Service  `validate:"required"`
	BatchService batchsvc.Service  `validate:"required"`
	TemplateRepo tmplrepo.Repo     `validate:"required"`
	SenderRepo   senderrepo.Repo   `validate:"required"`
	AttachStore  attachstore.Store `validate:"required"`
	UploadDir    string            `validate:"required"`
}

type DefaultHTTP struct {
	router *chi.Mux
}

func NewHTTPTransport(cfg Config) (*DefaultHTTP, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("http transport cfg error: %w", err)
	}

	// ** Sheet and attachment handler
	handlerSheet, err := handlersheet.NewHandler(handlersheet.HandlerConfig{
		SheetService: cfg.SheetService,
		AttachStore:  cfg.AttachStore,
		UploadDir:    cfg.UploadDir,
	})
	if err != nil {
		return nil, err
	}

	// ** Template handler
	handlerTmpl, err := handlertmpl.NewHandler(handlertmpl.HandlerConfig{
		UIDGen:       cfg.UIDGen,
		TemplateRepo: cfg.TemplateRepo,
	})
	if err != nil {
		return nil, err
	}

	// ** Sender config handler
	handlerSender, err := handlersender.NewHandler(handlersender.HandlerConfig{
		SenderRepo: cfg.SenderRepo,
	})
	if err != nil {
		return nil, err
	}

	// ** Batch send handler
	handlerBatch, err := handlerbatch.NewHandler(handlerbatch.HandlerConfig{
		BatchService: cfg.BatchService,
	})
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	skip := func(r *http.Request) bool {
		switch strings.TrimSpace(path.Clean(r.URL.Path)) {
		case "/health",
			"/ping":
			return true
		}

		return false
	}

	router.Use(middleware.StripSlashes)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	router.Use(func(next http.Handler) http.Handler {
		return tracer.Middleware(skip, next)
	})

	// add trace id and also log request response
	router.Use(func(next http.Handler) http.Handler {
		return requestLogger(skip, next)
	})

	router.Use(rateLimit)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fmt.Sprintf(`{"status":"ok","name":%q,"version":%q}`, cfg.AppServiceName, cfg.AppVersion)))
	})

	// Resource: sheets
	router.Route("/api/v1/sheets", func(r chi.Router) {
		r.Post("/parse", handlerSheet.ParseSheet()) // upload and resolve recipients
	})

	// Resource: attachments
	router.Route("/api/v1/attachments", func(r chi.Router) {
		r.Get("/", handlerSheet.ListAttachments())
		r.Post("/", handlerSheet.UploadAttachments())
		r.Delete("/", handlerSheet.ClearAttachments())
		r.Delete("/{filename}", handlerSheet.DeleteAttachment())
	})

	// Resource: batches
	router.Route("/api/v1/batches", func(r chi.Router) {
		r.Post("/", handlerBatch.SendBatch())
		r.Get("/{batch_id}/logs", handlerBatch.BatchLogs())
		r.Get("/{batch_id}/stats", handlerBatch.BatchStats())
	})

	router.Post("/api/v1/connection-test", handlerBatch.TestConnection())

	// Resource: templates
	router.Route("/api/v1/templates", func(r chi.Router) {
		r.Post("/", handlerTmpl.SaveTemplate())
		r.Get("/", handlerTmpl.ListTemplates())
		r.Get("/{id}", handlerTmpl.GetTemplate())
		r.Delete("/{id}", handlerTmpl.DelTemplate())
	})

	// Resource: sender configs
	router.Route("/api/v1/sender-configs", func(r chi.Router) {
		r.Post("/", handlerSender.SaveSenderConfig())
		r.Get("/", handlerSender.ListSenderConfigs())
		r.Get("/{id}", handlerSender.GetSenderConfig())
		r.Delete("/{id}", handlerSender.DelSenderConfig())
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		resp := respbuilder.Error(r.Context(), respbuilder.ErrResourceNotFound, fmt.Errorf("no route for %s", r.URL.Path))
		respbuilder.WriteJSON(http.StatusNotFound, w, r, resp)
	})

	instance := &DefaultHTTP{
		router: router,
	}

	return instance, nil
}

// Server .
func (a *DefaultHTTP) Server() http.Handler {
	return a.router
}
