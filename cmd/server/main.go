package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"nomorebugs-admin/internal/config"
	"nomorebugs-admin/internal/dispatch"
	"nomorebugs-admin/internal/document"
	"nomorebugs-admin/internal/http/handler"
	"nomorebugs-admin/internal/http/middleware"
	"nomorebugs-admin/internal/logger"
	"nomorebugs-admin/internal/mail"
	"nomorebugs-admin/internal/realtime"
	"nomorebugs-admin/internal/sms"
	"nomorebugs-admin/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zl := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer zl.Sync()
	log := logger.NewZapAdapter(zl)

	ctx := context.Background()

	st, closeStore := openStore(ctx, cfg, log)
	defer closeStore()
	if err := st.Migrate(ctx); err != nil {
		zl.Fatal("migrate store", zap.Error(err))
	}

	queue, slips, closeQueue := openQueue(ctx, cfg)
	defer closeQueue()

	mailer, err := newMailer(ctx, cfg, log)
	if err != nil {
		zl.Fatal("mail provider", zap.Error(err))
	}
	texter, err := newTexter(ctx, cfg, log)
	if err != nil {
		zl.Fatal("sms provider", zap.Error(err))
	}

	done := make(chan struct{})
	hub := realtime.NewHub(log)
	go hub.Run(done)

	docs := document.NewRenderer()
	ctl := dispatch.NewController(st, queue, slips, mailer, docs, log, dispatch.Config{
		Currency:        cfg.Dispatch.Currency,
		DispatchMailbox: cfg.Dispatch.Mailbox,
		SMSEnabled:      cfg.SMS.Enabled,
	}, dispatch.WithTexter(texter), dispatch.WithPublisher(hub))

	h := handler.New(handler.Deps{
		Store:    st,
		Dispatch: ctl,
		Mailer:   mailer,
		Docs:     docs,
		Tokens:   config.NewTokenManager(cfg.JWT),
		Log:      log,
		Currency: cfg.Dispatch.Currency,
	})

	app := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
		BodyLimit:     12 << 20,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE",
	}))

	h.Routes(app, hub)

	go func() {
		addr := cfg.App.Addr()
		zl.Info("server listening", zap.String("addr", addr),
			zap.String("store", cfg.StoreDriver), zap.String("queue", cfg.QueueDriver),
			zap.String("mail", cfg.Mail.Provider))
		if err := app.Listen(addr); err != nil {
			zl.Fatal("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zl.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
	close(done)
}

func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Store, func()) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using in-memory store, records are lost on restart", nil)
		return store.NewMemory(), func() {}
	}

	db, err := config.OpenMySQL(ctx, cfg.Database)
	if err != nil {
		log.WithError(err).Error("connect mysql", nil)
		os.Exit(1)
	}
	return store.NewMySQL(db, log), func() { db.Close() }
}

func openQueue(ctx context.Context, cfg *config.Config) (dispatch.JobQueue, dispatch.SlipSequence, func()) {
	if cfg.QueueDriver == config.DriverMemory {
		return dispatch.NewMemoryQueue(), dispatch.NewMemorySlipSequence(cfg.Dispatch.SlipStart), func() {}
	}

	rdb, err := config.NewRedis(ctx, cfg.Redis)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return dispatch.NewRedisQueue(rdb), dispatch.NewRedisSlipSequence(rdb, cfg.Dispatch.SlipStart),
		func() { rdb.Close() }
}

// Provider constructors, replaced in tests.
var (
	sesMailerFromRegion = mail.NewSESMailerFromRegion
	snsTexterFromRegion = sms.NewSNSTexterFromRegion
)

// newMailer builds the configured provider. A provider that cannot be set
// up is an error; the log mailer is only used when configured.
func newMailer(ctx context.Context, cfg *config.Config, log logger.Logger) (mail.Mailer, error) {
	from := mail.Sender{Name: cfg.Mail.FromName, Email: cfg.Mail.From}

	switch cfg.Mail.Provider {
	case config.MailSES:
		m, err := sesMailerFromRegion(ctx, cfg.Mail.AWSRegion, from)
		if err != nil {
			return nil, fmt.Errorf("configure ses mailer: %w", err)
		}
		return m, nil
	case config.MailSendGrid:
		return mail.NewSendGridMailerFromKey(cfg.Mail.SendGridAPIKey, from), nil
	default:
		return mail.NewLogMailer(log), nil
	}
}

func newTexter(ctx context.Context, cfg *config.Config, log logger.Logger) (sms.Texter, error) {
	if !cfg.SMS.Enabled {
		return sms.NewLogTexter(log), nil
	}
	t, err := snsTexterFromRegion(ctx, cfg.SMS.AWSRegion, cfg.SMS.SenderID)
	if err != nil {
		return nil, fmt.Errorf("configure sns texter: %w", err)
	}
	return t, nil
}
