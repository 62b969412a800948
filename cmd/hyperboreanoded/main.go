// Command hyperboreanoded runs a hyperborea server node: it answers
// the mandatory RPC operations over HTTP (and optionally WebSocket),
// keeps a routing table and message inbox, and periodically sweeps
// known servers for new ones.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperborea-go/hyperborea/config"
	"github.com/hyperborea-go/hyperborea/crypto"
	"github.com/hyperborea-go/hyperborea/health"
	"github.com/hyperborea-go/hyperborea/inbox"
	"github.com/hyperborea-go/hyperborea/internal/logger"
	"github.com/hyperborea-go/hyperborea/internal/metrics"
	"github.com/hyperborea-go/hyperborea/internal/version"
	"github.com/hyperborea-go/hyperborea/router"
	"github.com/hyperborea-go/hyperborea/server"
	"github.com/hyperborea-go/hyperborea/traversal"
	httptransport "github.com/hyperborea-go/hyperborea/transport/http"
	"github.com/hyperborea-go/hyperborea/transport/ws"
)

var (
	configPath string
	configDir  string
	envName    string
)

var rootCmd = &cobra.Command{
	Use:   "hyperboreanoded",
	Short: "hyperborea server node",
	Long: `hyperboreanoded runs a hyperborea server node.

It serves the protocol's mandatory RPC operations (info, clients,
servers, connect, lookup, send, poll) plus the optional announce
extension, and periodically sweeps known servers for new ones.`,
	Version: version.String(),
	RunE:    run,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a single config file (overrides --config-dir)")
	rootCmd.Flags().StringVar(&configDir, "config-dir", "config", "directory to resolve <environment>.yaml from")
	rootCmd.Flags().StringVar(&envName, "environment", "", "deployment environment (default: $HYPERBOREA_ENV)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := newLogger(cfg.Logging)
	log.Info("starting hyperboreanoded", logger.String("environment", cfg.Environment))

	secretKey, err := resolveSecretKey(cfg.Node.SecretKeyBase64)
	if err != nil {
		return fmt.Errorf("resolve node secret key: %w", err)
	}
	log.Info("node identity loaded", logger.String("public_key", secretKey.Public().Base64()))

	collector := metrics.NewCollector(metrics.Registry)

	rt := router.NewGlobalTableRouter(cfg.Router.Capacity, cfg.Router.TimeToIdle)
	ib := inbox.NewBasicInbox(cfg.Inbox.Capacity, cfg.Inbox.TimeToIdle, cfg.Inbox.MaxPerRecipient)

	node := server.NewNode(secretKey, rt, ib,
		server.WithLogger(log),
		server.WithMetrics(collector),
		server.WithMaxMessageBytes(cfg.Inbox.MaxMessageBytes),
	)

	healthChecker := health.NewChecker(5 * time.Second)
	healthChecker.SetLogger(log)
	healthChecker.Register("router", health.RouterCapacityCheck(
		func() int { return len(rt.ListLocal()) + len(rt.ListRemote()) },
		cfg.Router.Capacity,
		cfg.Router.Capacity*9/10,
	))

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", node.Routes())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		report := healthChecker.Report(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if report.Status == health.StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(report)
	})
	if cfg.Transport.EnableWebSocket {
		mux.Handle("/ws", ws.NewHandler(node))
		log.Info("websocket transport enabled", logger.String("path", "/ws"))
	}
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, metrics.Handler())
		go func() {
			log.Info("metrics server listening", logger.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, metricsMux); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server stopped", logger.Error(err))
			}
		}()
	}

	httpServer := &http.Server{
		Addr:              cfg.Transport.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Traversal.Enabled {
		engine := traversal.NewEngine(httptransport.NewHTTPTransport(), rt,
			traversal.WithInterval(cfg.Traversal.Interval),
			traversal.WithLogger(log),
			traversal.WithMetrics(collector),
		)
		go engine.Run(ctx)
		defer engine.Stop()
	}

	go func() {
		log.Info("rpc server listening", logger.String("address", cfg.Transport.ListenAddress))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("rpc server stopped", logger.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("rpc server shutdown error", logger.Error(err))
	}
	cancel()

	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load(config.LoaderOptions{
		ConfigDir:   configDir,
		Environment: envName,
	})
}

func newLogger(cfg config.LoggingConfig) logger.Logger {
	var level logger.Level
	switch cfg.Level {
	case "debug":
		level = logger.DebugLevel
	case "warn":
		level = logger.WarnLevel
	case "error":
		level = logger.ErrorLevel
	default:
		level = logger.InfoLevel
	}
	log := logger.NewLogger(os.Stdout, level)
	log.SetPrettyPrint(cfg.Format != "json")
	return log
}

func resolveSecretKey(base64Key string) (crypto.SecretKey, error) {
	if base64Key == "" {
		key, err := crypto.GenerateSecretKey()
		if err != nil {
			return crypto.SecretKey{}, fmt.Errorf("generate ephemeral secret key: %w", err)
		}
		return key, nil
	}
	return crypto.SecretKeyFromBase64(base64Key)
}
