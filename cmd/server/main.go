// Package main is the entry point for the service center API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"servicecenter/internal/config"
	"servicecenter/internal/domain/auth"
	"servicecenter/internal/domain/complaint"
	"servicecenter/internal/domain/customer"
	"servicecenter/internal/domain/dashboard"
	"servicecenter/internal/domain/employee"
	"servicecenter/internal/domain/grc"
	domainmail "servicecenter/internal/domain/mail"
	"servicecenter/internal/domain/notification"
	"servicecenter/internal/domain/parameter"
	"servicecenter/internal/domain/report"
	"servicecenter/internal/domain/stock"
	v1 "servicecenter/internal/infrastructure/http/v1"
	"servicecenter/internal/infrastructure/mail"
	"servicecenter/internal/infrastructure/numerator"
	"servicecenter/internal/infrastructure/pdf"
	"servicecenter/internal/infrastructure/storage/postgres"
	"servicecenter/internal/infrastructure/storage/postgres/auth_repo"
	"servicecenter/internal/infrastructure/storage/postgres/complaint_repo"
	"servicecenter/internal/infrastructure/storage/postgres/customer_repo"
	"servicecenter/internal/infrastructure/storage/postgres/dashboard_repo"
	"servicecenter/internal/infrastructure/storage/postgres/employee_repo"
	"servicecenter/internal/infrastructure/storage/postgres/grc_repo"
	"servicecenter/internal/infrastructure/storage/postgres/notification_repo"
	"servicecenter/internal/infrastructure/storage/postgres/parameter_repo"
	"servicecenter/internal/infrastructure/storage/postgres/stock_repo"
	"servicecenter/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting servicecenter server", "env", cfg.App.Env)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txm := postgres.NewTxManager(pool).WithStatementTimeout(cfg.Database.StatementTimeout)
	gen := numerator.New(func(ctx context.Context) numerator.Querier {
		return txm.GetQuerier(ctx)
	})

	// --- Auth ---
	jwtConfig := auth.DefaultJWTConfig(cfg.JWT.Secret)
	if cfg.JWT.TTL > 0 {
		jwtConfig.AccessTokenTTL = cfg.JWT.TTL
	}
	jwtService := auth.NewJWTService(jwtConfig)
	authService := auth.NewService(auth_repo.NewUserRepo(txm), txm, jwtService, auth.DefaultServiceConfig())

	// --- Collaborators ---
	var sender domainmail.Sender = mail.LogSender{}
	if cfg.SMTP.Host != "" {
		sender = mail.NewSMTPSender(mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		log.Warn("SMTP host not configured, pending mails are only logged")
	}

	layout := report.DefaultLayout()
	layout.StartY = cfg.Report.StartY
	layout.LineHeight = cfg.Report.LineHeight
	layout.BottomMargin = cfg.Report.BottomMargin
	renderer := pdf.New(layout, cfg.Report.TemplateDir)

	// --- Domain services ---
	defaultUser := cfg.Upload.DefaultUser
	complaintService := complaint.NewService(txm, complaint_repo.NewRepo(txm), gen,
		complaint_repo.NewFeedStore(txm), sender, complaint.Config{DefaultUploader: defaultUser})
	stockServices := make(map[string]*stock.Service, 2)
	for _, ledger := range []stock.Ledger{stock.CGCEL, stock.CGPISL} {
		stockServices[ledger.Company] = stock.NewService(txm, stock_repo.NewRepo(txm, ledger), gen,
			stock_repo.NewFeedStore(txm, ledger), stock.Config{DefaultUser: defaultUser, Ledger: ledger})
	}
	grcServices := make(map[string]*grc.Service, 2)
	for _, ledger := range []grc.Ledger{grc.CGCEL, grc.CGPISL} {
		grcServices[ledger.Company] = grc.NewService(txm, grc_repo.NewRepo(txm, ledger), gen,
			grc_repo.NewFeedStore(txm, ledger), renderer, grc.Config{DefaultUser: defaultUser, Ledger: ledger})
	}
	customerService := customer.NewService(txm, customer_repo.NewRepo(txm), gen,
		customer.Config{DefaultUser: defaultUser})
	employeeService := employee.NewService(txm, employee_repo.NewRepo(txm), authService)
	dashboardService := dashboard.NewService(txm, dashboard_repo.NewRepo(txm))
	notificationService := notification.NewService(txm, notification_repo.NewRepo(txm))
	parameterService := parameter.NewService(txm, parameter_repo.NewRepo(txm), gen)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		Database:       pool,
		JWTValidator:   jwtService,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		Development:    cfg.Log.Development,
		Auth:           authService,
		Complaints:     complaintService,
		Stock:          stockServices[stock.CGCEL.Company],
		GRC:            grcServices[grc.CGCEL.Company],
		StockCGPISL:    stockServices[stock.CGPISL.Company],
		GRCCGPISL:      grcServices[grc.CGPISL.Company],
		Customers:      customerService,
		Employees:      employeeService,
		Dashboard:      dashboardService,
		Notifications:  notificationService,
		Parameters:     parameterService,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
