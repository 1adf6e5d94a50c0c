package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rentcore/internal/blob"
	"rentcore/internal/core"
	"rentcore/internal/logging"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "rentcore",
		Short: "Rental property management core",
	}
	rootCmd.AddCommand(seedCmd(), serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newService() (*core.Service, *core.Metrics, *zap.Logger, error) {
	logger, err := logging.NewFromEnv()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build logger: %w", err)
	}
	store, err := core.OpenPersistentStore(core.DefaultEngine())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open store: %w", err)
	}
	metrics := core.NewMetrics()
	svc := core.NewService(store, core.WithLogger(logger), core.WithMetrics(metrics))
	return svc, metrics, logger, nil
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate the store with sample rental data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, logger, err := newService()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			result := svc.SeedSampleData(cmd.Context())
			out, _ := json.MarshalIndent(result, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if !result.Success {
				return fmt.Errorf("seed halted at step %s: %w", result.FailedStep, result.Err)
			}
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health and metrics endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, metrics, logger, err := newService()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			blobs, err := blob.Open(cmd.Context())
			if err != nil {
				return fmt.Errorf("open blob store: %w", err)
			}
			attachments := core.NewAttachmentService(svc, blobs)

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
			mux.HandleFunc("/images", imagesHandler(attachments))
			mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
				if err := svc.Store().View(r.Context(), func(core.TransactionView) error { return nil }); err != nil {
					http.Error(w, err.Error(), http.StatusServiceUnavailable)
					return
				}
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("ok"))
			})

			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", zap.String("addr", addr))
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// imagesHandler uploads images to the configured blob backend and binds them
// to domain records. POST expects entity, id, and name query parameters with
// the image bytes as the request body; GET lists blobs under a prefix.
func imagesHandler(attachments *core.AttachmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			entity := r.URL.Query().Get("entity")
			id := r.URL.Query().Get("id")
			name := r.URL.Query().Get("name")
			if id == "" || name == "" {
				http.Error(w, "id and name query parameters required", http.StatusBadRequest)
				return
			}
			contentType := r.Header.Get("Content-Type")
			var info any
			var err error
			switch entity {
			case "property":
				info, err = attachments.AttachPropertyImage(r.Context(), id, name, r.Body, contentType)
			case "unit":
				info, err = attachments.AttachUnitImage(r.Context(), id, name, r.Body, contentType)
			case "maintenance":
				info, err = attachments.AttachMaintenanceImage(r.Context(), id, name, r.Body, contentType)
			default:
				http.Error(w, "entity must be property, unit, or maintenance", http.StatusBadRequest)
				return
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(info)
		case http.MethodGet:
			infos, err := attachments.ListImages(r.Context(), r.URL.Query().Get("prefix"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(infos)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
