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
	"go.uber.org/zap"

	"github.com/ziadkadry99/krishisaarathi/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the advisory HTTP API",
	Long:  `Starts the REST API: farmer registration, queries, daily recommendations, summaries and interaction history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		port := a.cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		audioDir := ""
		if a.cfg.Speech.Enabled {
			audioDir = a.cfg.Speech.AudioDir
		}

		srv := server.New(server.Config{
			Port:           port,
			AllowAll:       a.cfg.Server.AllowAllOrigins,
			RequestTimeout: time.Duration(a.cfg.Server.RequestTimeoutSeconds) * time.Second,
			AudioDir:       audioDir,
		}, a.db, server.Services{
			Profiles:     a.profiles,
			Dispatcher:   a.dispatcher,
			Interactions: a.interactions,
			Summaries:    a.summaries,
		}, a.logger)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("shutdown", zap.Error(err))
			}
		}()

		fmt.Fprintf(os.Stderr, "saarathi v%s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", a.dbPath)
		fmt.Fprintf(os.Stderr, "  Provider: %s (%s)\n", a.cfg.Provider, a.cfg.Model)
		fmt.Fprintf(os.Stderr, "  State: %s\n", a.profiles.State())

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
