package api

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/satori/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yusufsyaifudin/ngirim/config"
	"github.com/yusufsyaifudin/ngirim/container"
	"github.com/yusufsyaifudin/ngirim/internal/svc/batchsvc"
	"github.com/yusufsyaifudin/ngirim/internal/svc/senderrepo"
	"github.com/yusufsyaifudin/ngirim/internal/svc/sheetsvc"
	"github.com/yusufsyaifudin/ngirim/pkg/logger"
	"github.com/yusufsyaifudin/ngirim/pkg/mailclient"
	"github.com/yusufsyaifudin/ngirim/pkg/tracer"
	"github.com/yusufsyaifudin/ngirim/pkg/uid"
	"github.com/yusufsyaifudin/ngirim/transport/restapi"
)

const (
	appName    = "ngirim"
	appVersion = "1.0.0"
)

// Execute will create new cobra command with the config loaded from the file
// pointed by the persistent --config flag.
// Don't move apiCmd to global variable as it will easier to understand if we only
// use private variable as possible.
func Execute() *cobra.Command {
	var apiCmd = &cobra.Command{
		Use:   "api",
		Short: "Run the HTTP API server",
		Long:  "Run the HTTP API server: sheet parsing, attachment pool, template and sender config management, batch sending.",
		RunE:  Handler,
	}

	return apiCmd
}

// Handler will prepare all dependencies and then run actual HTTP server when done.
func Handler(cmd *cobra.Command, args []string) error {
	ctx := logger.Inject(cmd.Context(), logger.Tracer{
		RemoteAddr: "system",
		AppTraceID: uuid.NewV4().String(),
	})

	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("error read config flag: %w", err)
	}

	conf := &config.Config{}
	zapLog, err := config.Setup(configFile, conf)
	if err != nil {
		return err
	}

	// set global logger
	logger.SetGlobalLogger(logger.NewZap(zapLog))

	// no exporter registered, spans stay in-process
	tracer.InitTraceProvider()

	zapLog.Debug("~~ prepare dependencies")
	defaultContainer, err := container.Setup(ctx, conf)
	if err != nil {
		err = fmt.Errorf("error setup dependencies: %w", err)
		zapLog.Error(err.Error())
		return err
	}

	defer func() {
		zapLog.Debug("~~ closing dependencies")
		if _err := defaultContainer.Close(); _err != nil {
			zapLog.Error("~~ error close dependencies", zap.Error(_err))
		}
	}()

	zapLog.Debug("~ setting up repositories")
	templateRepo, err := defaultContainer.TemplateRepo()
	if err != nil {
		err = fmt.Errorf("~~ setting up template repo error: %w", err)
		zapLog.Error(err.Error())
		return err
	}

	senderRepo, err := defaultContainer.SenderRepo()
	if err != nil {
		err = fmt.Errorf("~~ setting up sender config repo error: %w", err)
		zapLog.Error(err.Error())
		return err
	}

	sendLogRepo, err := defaultContainer.SendLogRepo()
	if err != nil {
		err = fmt.Errorf("~~ setting up send log repo error: %w", err)
		zapLog.Error(err.Error())
		return err
	}

	attachStore, err := defaultContainer.AttachStore()
	if err != nil {
		err = fmt.Errorf("~~ setting up attachment store error: %w", err)
		zapLog.Error(err.Error())
		return err
	}

	zapLog.Debug("~~ seeding built-in sender presets")
	seeded, err := senderRepo.SeedPresets(ctx, senderrepo.InputSeedPresets{
		Presets: senderrepo.DefaultPresets(time.Now().UTC().UnixMicro()),
	})
	if err != nil {
		err = fmt.Errorf("~~ seeding sender presets error: %w", err)
		zapLog.Error(err.Error())
		return err
	}
	zapLog.Debug(fmt.Sprintf("~~ sender presets seeded: %d new", seeded.Inserted))

	uidGen, err := uid.NewSonyflake()
	if err != nil {
		err = fmt.Errorf("~~ setting up id generator error: %w", err)
		zapLog.Error(err.Error())
		return err
	}

	zapLog.Debug("~ setting up services")
	zapLog.Debug("~~ sheet service")
	sheetService, err := sheetsvc.New(sheetsvc.DefaultServiceConfig{
		AttachStore: attachStore,
	})
	if err != nil {
		err = fmt.Errorf("~~ setting up sheet service error: %w", err)
		zapLog.Error(err.Error())
		return err
	}

	// config overrides come first so operators can re-point a provider
	// that the built-in table would otherwise capture
	overrides := make([]batchsvc.ProviderOverride, 0, len(conf.Mailer.ProviderOverrides))
	for _, o := range conf.Mailer.ProviderOverrides {
		overrides = append(overrides, batchsvc.ProviderOverride{
			DomainSuffix: o.DomainSuffix,
			Host:         o.Host,
			Port:         o.Port,
			UseSSL:       o.UseSSL,
			UseTLS:       o.UseTLS,
		})
	}
	overrides = append(overrides, batchsvc.BuiltinOverrides()...)

	zapLog.Debug("~~ batch service")
	batchService, err := batchsvc.New(batchsvc.DefaultServiceConfig{
		SheetService:   sheetService,
		SenderRepo:     senderRepo,
		SendLogRepo:    sendLogRepo,
		AttachStore:    attachStore,
		Dialer:         mailclient.NewSMTPDialer(),
		ConnectTimeout: time.Duration(conf.Mailer.ConnectTimeoutSeconds) * time.Second,
		Overrides:      overrides,
	})
	if err != nil {
		err = fmt.Errorf("~~ setting up batch service error: %w", err)
		zapLog.Error(err.Error())
		return err
	}

	zapLog.Debug("~ prepare transport")
	zapLog.Debug("~~ http transport")
	server, err := restapi.NewHTTPTransport(restapi.Config{
		AppServiceName: appName,
		AppVersion:     appVersion,
		UIDGen:         uidGen,
		SheetService:   sheetService,
		BatchService:   batchService,
		TemplateRepo:   templateRepo,
		SenderRepo:     senderRepo,
		AttachStore:    attachStore,
		UploadDir:      conf.Dirs.Uploads,
	})
	if err != nil {
		err = fmt.Errorf("prepare http transport error: %w", err)
		zapLog.Error("~~ http transport error", zap.Error(err))
		return err
	}

	httpPort := fmt.Sprintf(":%d", conf.Transport.HTTP.Port)
	zapLog.Debug(fmt.Sprintf("~~ http transport is up on port %s", httpPort))

	httpServer := &http.Server{
		Addr:    httpPort,
		Handler: server.Server(),
	}

	var apiErrChan = make(chan error, 1)
	go func() {
		apiErrChan <- httpServer.ListenAndServe()
	}()

	// ** listen for sigterm signal
	var signalChan = make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-signalChan:
		logger.Info(ctx, "exiting http server")
		if _err := httpServer.Shutdown(ctx); _err != nil {
			logger.Error(ctx, "error shutdown", logger.KV("error", _err))
		}

	case err := <-apiErrChan:
		if err != nil {
			logger.Error(ctx, "error HTTP API", logger.KV("error", err))
			return err
		}
	}

	return nil
}
