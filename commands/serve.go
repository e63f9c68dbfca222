package commands

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	// Register LLM providers via init()
	_ "github.com/c360studio/sparqlassist/llm/providers"

	"github.com/c360studio/sparqlassist/endpoints"
	"github.com/c360studio/sparqlassist/schema"
	"github.com/c360studio/sparqlassist/service"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve ask and validate requests over NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			nc, err := nats.Connect(cfg.NATS.URL,
				nats.Name("sparqlassist"),
				nats.MaxReconnects(-1))
			if err != nil {
				return fmt.Errorf("connect to NATS at %s: %w", cfg.NATS.URL, err)
			}
			defer nc.Close()

			var cacheOpts []schema.CacheOption
			if cfg.Schema.UseKV {
				js, err := jetstream.New(nc)
				if err != nil {
					return fmt.Errorf("jetstream: %w", err)
				}
				kv, err := schema.OpenKVBucket(ctx, js)
				if err != nil {
					return err
				}
				cacheOpts = append(cacheOpts, schema.WithKeyValue(kv))
			}

			st, err := buildStack(ctx, cfg, true, cacheOpts...)
			if err != nil {
				return err
			}

			if cfg.Endpoints.Watch {
				watcher, err := endpoints.NewWatcher(st.catalog, cfg.Endpoints.CatalogPath, nil)
				if err != nil {
					return err
				}
				if err := watcher.Start(ctx); err != nil {
					return err
				}
				defer watcher.Stop()
			}

			registry := prometheus.NewRegistry()
			svc := service.New(nc, st.assistant, st.validator, registry, nil)
			if err := svc.Start(); err != nil {
				return err
			}
			defer svc.Stop()

			httpServer := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           service.HTTPHandler(registry),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					fmt.Fprintln(cmd.ErrOrStderr(), "HTTP server error:", err)
				}
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s and %s (metrics on %s)\n",
				service.SubjectAsk, service.SubjectValidate, cfg.HTTP.Addr)

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}
}
