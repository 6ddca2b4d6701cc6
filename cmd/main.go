package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/talentflow/internal/adapters/http/api"
	"github.com/okian/talentflow/internal/adapters/http/client"
	"github.com/okian/talentflow/internal/adapters/pdfreport"
	"github.com/okian/talentflow/internal/adapters/repository"
	"github.com/okian/talentflow/internal/adapters/speech"
	app "github.com/okian/talentflow/internal/app"
	"github.com/okian/talentflow/internal/config"
	"github.com/okian/talentflow/internal/console"
	"github.com/okian/talentflow/internal/domain/progress"
	"github.com/okian/talentflow/internal/domain/scoring"
	"github.com/okian/talentflow/pkg/logger"
	"github.com/okian/talentflow/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func main() {
	// stdout belongs to the candidate dialogue.
	if err := logger.InitWithWriter(os.Stderr); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	registerRuntimeCollectors()

	store := progress.New(ctx, openStore(ctx, cfg, log), progress.WithLogger(log.Named("progress")))

	backend, err := client.New(cfg.APIURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(log.Named("client")),
	)
	if err != nil {
		log.Fatal(ctx, "invalid scoring backend url", logger.String("api_url", cfg.APIURL), logger.Error(err))
	}

	opts := []app.Option{
		app.WithLogger(log.Named("journey")),
		app.WithMinAnswerLength(cfg.MinAnswerLength),
		app.WithReportDir(cfg.ReportDir),
		app.WithRenderer(pdfreport.New(pdfreport.WithLogger(log.Named("report")))),
		app.WithDecider(scoring.NewDecider(
			scoring.WithATSThreshold(cfg.ATSThreshold),
			scoring.WithInterviewThreshold(cfg.InterviewThreshold),
		)),
	}
	var consoleOpts []console.Option
	if rec := newRecognizer(ctx, cfg, log); rec != nil {
		opts = append(opts, app.WithRecognizer(rec))
		consoleOpts = append(consoleOpts, console.WithClipFeeder(rec))
	}
	journey := app.New(store, backend, opts...)
	defer func() {
		if err := journey.Close(); err != nil {
			log.Warn(context.Background(), "voice input close failed", logger.Error(err))
		}
	}()

	var srv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		api.NewServer(journey, journey).Register(ctx, mux)
		srv = newStatusServer(cfg.MetricsAddr, mux)
		go func() {
			log.Info(ctx, "starting status server", logger.String("addr", cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(ctx, "status server failed", logger.Error(errors.Join(api.ErrServe, err)))
			}
		}()
	}

	done := make(chan error, 1)
	go func() {
		done <- console.New(journey, os.Stdin, os.Stdout, append(consoleOpts, console.WithLogger(log.Named("console")))...).Run(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info(ctx, "interrupted")
	case err := <-done:
		if err != nil {
			log.Error(ctx, "console stopped", logger.Error(err))
		}
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(ctx, "status server shutdown failed", logger.Error(err))
		}
	}
	_ = logger.Sync()
}

// openStore returns the durable store, falling back to memory when the file
// cannot be opened.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) repository.Store {
	if cfg.StorePath == "" {
		return repository.NewMemoryStore()
	}
	fs, err := repository.NewFileStore(cfg.StorePath)
	if err != nil {
		metrics.RecordStorageError("open")
		log.Warn(ctx, "durable store unavailable; progress will not survive a restart",
			logger.String("path", cfg.StorePath), logger.Error(err))
		return repository.NewMemoryStore()
	}
	return fs
}

// newRecognizer builds the speech capability, or nil when voice input is not
// configured or cannot start.
func newRecognizer(ctx context.Context, cfg *config.Config, log logger.Logger) *speech.Recognizer {
	if !cfg.VoiceEnabled() {
		return nil
	}
	tr, err := speech.NewGeminiTranscriber(ctx, cfg.SpeechAPIKey,
		speech.WithModel(cfg.SpeechModel),
		speech.WithBaseURL(cfg.SpeechURL),
	)
	if err != nil {
		log.Warn(ctx, "voice input disabled", logger.Error(err))
		return nil
	}
	return speech.NewRecognizer(tr, speech.WithLogger(log.Named("speech")))
}

func newStatusServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// registerRuntimeCollectors adds Go runtime and process metrics to the
// journey registry so /healthz carries them.
func registerRuntimeCollectors() {
	reg := metrics.GetRegistry()
	_ = reg.Register(collectors.NewGoCollector())
	_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}
