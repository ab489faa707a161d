package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Conceptual-Machines/albumatlas/internal/api"
	"github.com/Conceptual-Machines/albumatlas/internal/config"
	"github.com/Conceptual-Machines/albumatlas/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the web server: the entry page, the htmx form endpoint,
the JSON recommendation API, health and metrics endpoints.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "port to listen on (default from PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recorder, err := newRecorder(ctx, cfg)
	if err != nil {
		return err
	}

	p, err := newPipeline(ctx, cfg, recorder)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("⚠️  Failed to close vector store: %v", err)
		}
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.SetupRouter(cfg, p.recommender, recorder, version),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Starting server on port %s (vector store: %s)", cfg.Port, p.store.Name())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("🛑 Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Server stopped")
	return nil
}

func newRecorder(ctx context.Context, cfg *config.Config) (*metrics.Recorder, error) {
	cloudwatch, err := metrics.NewClient(ctx, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudwatch client: %w", err)
	}
	return metrics.NewRecorder(cloudwatch, metrics.NewSentryMetrics()), nil
}
