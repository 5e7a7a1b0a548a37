package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"clinic-booking-client/internal/auth"
	"clinic-booking-client/internal/config"
	"clinic-booking-client/internal/handler"
	"clinic-booking-client/internal/middleware"
	"clinic-booking-client/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.LoadStub(".env")
	log := config.NewLogger(os.Stderr, os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	log = config.NewLogger(os.Stderr, cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.New(cfg.SlotCapacity)
	if cfg.SeedDemo {
		if err := seedDemo(ctx, st, log); err != nil {
			log.Fatal().Err(err).Msg("seed")
		}
	}

	rl := middleware.NewRateLimiter(cfg.LoginRPS, cfg.LoginBurst)
	go rl.Sweep(ctx)

	// forget idempotency keys after a day
	go func() {
		t := time.NewTicker(time.Hour)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := st.PruneLedger(time.Now().Add(-24 * time.Hour)); n > 0 {
					log.Debug().Int("keys", n).Msg("idempotency ledger pruned")
				}
			}
		}
	}()

	h := handler.New(st, auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), log)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Routes(rl),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Int("slot_capacity", st.Capacity()).Msg("stub clinic api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http")
			stop()
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// seedDemo fills st with the demo accounts. Their passwords are the
// store.Demo*Password constants and are never logged.
func seedDemo(ctx context.Context, st *store.Store, log zerolog.Logger) error {
	if err := store.SeedDemo(ctx, st, auth.HashPassword); err != nil {
		return err
	}
	log.Info().
		Int("doctors", len(st.Doctors(ctx))).
		Int("patients", len(st.Patients(ctx))).
		Msg("demo accounts seeded")
	return nil
}
