package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/lexanon/lexanon/config"
	"github.com/lexanon/lexanon/pkg/auth"
	"github.com/lexanon/lexanon/pkg/models"
	"github.com/lexanon/lexanon/pkg/nlp"
	"github.com/lexanon/lexanon/pkg/server"
)

const (
	ErrNLPServiceNotSupported = "nlp.service (%s) is not supported"
	ErrNLPServerURLNotSet     = "nlp.server_url must be set when nlp.service is http"

	NLPServiceHTTP  = "http"
	NLPServiceLocal = "local"

	shutdownTimeout = 10 * time.Second
)

// run is the entrypoint for the lexanon server
func run() {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Error configuring lexanon: %s", err)
	}

	handleCLIOptions(cfg)

	log.Infof("Starting lexanon server version %s", config.VersionString)

	config.SetLogLevel(cfg)
	appState := NewAppState(cfg)

	srv := server.Create(appState)
	setupSignalHandler(srv)

	log.Infof("Listening on: %s", srv.Addr)
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// NewAppState creates an AppState struct from the config file / ENV,
// compiles the pattern set and initializes the span-labeling oracle
func NewAppState(cfg *config.Config) *models.AppState {
	appState := &models.AppState{
		Patterns: nlp.NewPatternSet(cfg.Patterns),
		Config:   cfg,
	}

	initializeOracle(appState)

	return appState
}

// handleCLIOptions handles CLI options that don't require the server to run
func handleCLIOptions(cfg *config.Config) {
	if showVersion {
		fmt.Println(config.VersionString)
		os.Exit(0)
	}
	if dumpConfig {
		fmt.Printf("%+v\n", cfg)
		os.Exit(0)
	}
	if generateKey {
		fmt.Println(auth.GenerateJWT(cfg))
		os.Exit(0)
	}
}

// initializeOracle initializes the span-labeling oracle based on the
// config file / ENV
func initializeOracle(appState *models.AppState) {
	cfg := appState.Config

	switch cfg.NLP.Service {
	case NLPServiceHTTP:
		if cfg.NLP.ServerURL == "" {
			log.Fatal(ErrNLPServerURLNotSet)
		}
		oracle := nlp.NewHTTPOracle(cfg)
		waitForOracle(oracle, cfg)
		appState.Oracle = oracle
	case NLPServiceLocal, "":
		appState.Oracle = nlp.NewLocalOracle()
	default:
		log.Fatalf(ErrNLPServiceNotSupported, cfg.NLP.Service)
	}

	log.Info("Using NLP oracle: ", appState.Oracle.Name())
}

// waitForOracle waits for the remote NLP server to become reachable. An
// unreachable server is not fatal: the extractor degrades to
// pattern-derived candidates only until the server comes back.
func waitForOracle(oracle *nlp.HTTPOracle, cfg *config.Config) {
	ctx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.NLP.TimeoutSeconds)*time.Second,
	)
	defer cancel()

	err := retry.Do(
		func() error {
			return oracle.Ping(ctx)
		},
		retry.Attempts(uint(cfg.NLP.MaxAttempts)),
		retry.Delay(time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			log.Warnf("NLP server not ready, retrying attempt #%d: %s", n, err)
		}),
	)
	if err != nil {
		log.Warnf("NLP server unreachable at startup: %s", err)
	}
}

// setupSignalHandler sets up a signal handler to shut the HTTP server down
// gracefully on termination
func setupSignalHandler(srv *http.Server) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalCh
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Errorf("Error shutting down server: %v", err)
		}
		os.Exit(0)
	}()
}
