package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"craft-invoice/backend/internal/app/config"
	apphttp "craft-invoice/backend/internal/app/http"
	"craft-invoice/backend/internal/app/http/handlers"
	"craft-invoice/backend/internal/domain/invoice/pdf"
	pdfgen "craft-invoice/backend/internal/domain/invoice/pdf/gofpdf"
	authsupabase "craft-invoice/backend/internal/infra/auth/supabase"
	"craft-invoice/backend/internal/infra/db/postgres"
	storagesupabase "craft-invoice/backend/internal/infra/storage/supabase"
)

func Run() {
	cfg := config.MustLoad()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "craft-invoice").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrations {
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
	}

	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer db.Close()

	loc, err := time.LoadLocation(cfg.BusinessTimezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.BusinessTimezone).Msg("bad business timezone")
	}

	store := postgres.NewInvoiceStore(db, cfg.InvoicePrefix, loc)
	verifier := authsupabase.NewVerifier(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseJWTSecret)
	storage := storagesupabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, cfg.PDFBucket)
	gen := pdfgen.New(pdf.Business{
		Name:    cfg.BusinessName,
		Phone:   cfg.BusinessPhone,
		Email:   cfg.BusinessEmail,
		Address: cfg.BusinessAddress,
	})

	h := handlers.New(store, gen, storage, loc, log)
	router := apphttp.NewRouter(cfg, log, h, verifier)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server")
	}
}
