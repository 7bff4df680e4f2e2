package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/switchback"
	fileadapter "github.com/aretw0/switchback/internal/adapters/file"
	redisadapter "github.com/aretw0/switchback/internal/adapters/redis"
	"github.com/aretw0/switchback/internal/cli"
	"github.com/aretw0/switchback/internal/server"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a loaded graph over HTTP",
	Long: `Loads the newest graph description for an entrypoint and exposes it as a
JSON API: graph inspection, validation of the loaded graph or a posted
body, Prometheus metrics, and run history when a Redis address is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(cmd); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("entry", "", "Entrypoint to serve")
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for run history (optional)")
	serveCmd.Flags().String("history-dir", "", "Directory with file-based run history (optional)")
	_ = serveCmd.MarkFlagRequired("entry")
}

func runServe(cmd *cobra.Command) error {
	entry, _ := cmd.Flags().GetString("entry")
	addr, _ := cmd.Flags().GetString("addr")
	redisAddr, _ := cmd.Flags().GetString("redis")
	historyDir, _ := cmd.Flags().GetString("history-dir")

	logger := appLogger(cmd)

	path, err := cli.FindLatestGraph(graphsDir(cmd), entry)
	if err != nil {
		return err
	}
	graph, err := switchback.New(switchback.WithLogger(logger)).Load(path)
	if err != nil {
		return err
	}

	opts := []server.Option{server.WithLogger(logger)}
	switch {
	case redisAddr != "":
		opts = append(opts, server.WithHistory(redisadapter.New(redisAddr, "", 0, redisadapter.WithLogger(logger))))
	case historyDir != "":
		opts = append(opts, server.WithHistory(fileadapter.New(historyDir, fileadapter.WithLogger(logger))))
	}
	handler := server.NewHandler(graph, filepath.Base(path), opts...)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	serverErrors := make(chan error, 1)
	go func() {
		fmt.Printf("Serving %s (%s) on %s\n", entry, filepath.Base(path), srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		fmt.Printf("\nShutting down (signal: %v)\n", sig)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			if err := srv.Close(); err != nil {
				return fmt.Errorf("forced close failed: %w", err)
			}
		}
	}
	return nil
}
