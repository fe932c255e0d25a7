package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitegrade/sitegrade-cli/internal/analyzer"
	"github.com/sitegrade/sitegrade-cli/internal/api"
	"github.com/sitegrade/sitegrade-cli/internal/checks"
	consts "github.com/sitegrade/sitegrade-cli/internal/shared/constants"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run sitegrade as a REST API service",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		authToken, _ := cmd.Flags().GetString("auth-token")
		shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")
		corsOrigins, _ := cmd.Flags().GetStringSlice("cors-origins")
		rateLimit, _ := cmd.Flags().GetInt("rate-limit")
		rateBurst, _ := cmd.Flags().GetInt("rate-burst")

		fetcher := analyzer.NewFetcher(time.Duration(cliConfig.Analyze.TimeoutSecs)*time.Second, cliConfig.Analyze.RatePerSec)
		engine := &analyzer.Analyzer{
			Fetcher:      fetcher,
			Checkers:     checks.Defaults(fetcher),
			Logger:       logger,
			Concurrency:  cliConfig.Analyze.Concurrency,
			CheckTimeout: 2 * fetcher.Timeout,
		}

		server := api.NewServer(api.Config{
			Analyzer:    engine,
			Catalog:     checks.Catalog(),
			Version:     Version,
			AuthToken:   authToken,
			RateLimit:   rateLimit,
			RateBurst:   rateBurst,
			CORSOrigins: corsOrigins,
			Logger:      logger.Desugar(),
		})

		// Analyze requests do live network work, so writes get far more
		// headroom than a typical API would need.
		httpServer := &http.Server{
			Addr:         addr,
			Handler:      server.Router(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("%s API server listening on %s\n", colorInfo("→"), addr)
			fmt.Printf("%s Press Ctrl+C to gracefully shutdown\n", colorInfo("→"))
			serverErrors <- httpServer.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-shutdown:
			fmt.Printf("\n%s Received signal %v, initiating graceful shutdown...\n", colorInfo("→"), sig)

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				if closeErr := httpServer.Close(); closeErr != nil {
					return fmt.Errorf("failed to gracefully shutdown server: %w (close error: %v)", err, closeErr)
				}
				return fmt.Errorf("failed to gracefully shutdown server: %w", err)
			}

			fmt.Printf("%s Server shutdown complete\n", colorInfo("✓"))
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", consts.DefaultAPIAddr, "Address for the API server")
	serveCmd.Flags().String("auth-token", "", "Optional bearer token required on API requests")
	serveCmd.Flags().Duration("shutdown-timeout", 30*time.Second, "Graceful shutdown timeout")
	serveCmd.Flags().StringSlice("cors-origins", []string{}, "Allowed CORS origins (empty = allow all)")
	serveCmd.Flags().Int("rate-limit", consts.DefaultAPIRateLimit, "Rate limit per IP (requests/second, 0 = disabled)")
	serveCmd.Flags().Int("rate-burst", consts.DefaultAPIRateBurst, "Rate limit burst size")
	rootCmd.AddCommand(serveCmd)
}
