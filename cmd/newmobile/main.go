package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/phenrril/newmobile/internal/app"
	"github.com/phenrril/newmobile/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogger(cfg)

	ctx := context.Background()
	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		zlog.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to create app")
	}
	if err := application.MigrateAndSeed(ctx); err != nil {
		zlog.Fatal().Err(err).Msg("failed to migrate and seed store")
	}
	handler, err := application.HTTPHandler()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to build http handler")
	}

	ln, port, err := listen(cfg.Port)
	if err != nil {
		zlog.Fatal().Err(err).Msg("no free port")
	}
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info().Str("port", port).Str("driver", cfg.StoreDriver).Msg("listening")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		zlog.Error().Err(err).Msg("shutdown")
	}
	if err := application.Close(sctx); err != nil {
		zlog.Error().Err(err).Msg("close store")
	}
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	} else {
		zlog.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

// listen tries the configured port and falls back to 8081-8090 when it is taken.
func listen(port string) (net.Listener, string, error) {
	ln, err := net.Listen("tcp", ":"+port)
	if err == nil {
		return ln, port, nil
	}
	zlog.Warn().Err(err).Str("port", port).Msg("port busy, trying fallbacks")
	for p := 8081; p <= 8090; p++ {
		alt := fmt.Sprint(p)
		if l2, err2 := net.Listen("tcp", net.JoinHostPort("", alt)); err2 == nil {
			return l2, alt, nil
		}
	}
	return nil, "", err
}
