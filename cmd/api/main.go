package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/smartbotics/automate-web/internal/config"
	"github.com/smartbotics/automate-web/internal/handler"
	"github.com/smartbotics/automate-web/internal/handler/contact"
	"github.com/smartbotics/automate-web/internal/handler/widget"
	"github.com/smartbotics/automate-web/internal/logging"
	chatservice "github.com/smartbotics/automate-web/internal/service/chat"
	contactservice "github.com/smartbotics/automate-web/internal/service/contact"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Setup(cfg.Log, os.Stderr)

	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file, using system environment only")
	}

	chatSvc := chatservice.NewService(cfg.Chat.Endpoint, cfg.Chat.Timeout)
	contactClient := contactservice.NewClient(cfg.Contact.WebhookURL, cfg.Contact.Timeout)

	router := handler.NewRouter(handler.Deps{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Contact:        contact.New(contactClient),
		Widget: widget.NewWebSocketHandler(chatSvc, contactClient, widget.Config{
			Options:        cfg.Widget,
			SuccessDisplay: cfg.Contact.SuccessDisplay,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().
		Str("addr", cfg.Server.Addr).
		Str("chat_endpoint", chatSvc.Endpoint()).
		Msg("automate web backend listening")

	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		log.Info().Msg("shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "server shutdown")
		}
		return nil
	})

	return eg.Wait()
}
