package main

import (
	"spot-observer/src/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler with the HTTP, WebSocket and gRPC servers",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := setupApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	srv := server.NewAPIServer(cfg, a.Dashboard, a.Logger.Named("APIServer"))
	a.Registry.Subscribe(srv.OnPublish)

	errCh := make(chan error, 2)
	grpcServer, err := startServers(a, srv, errCh)
	if err != nil {
		srv.Stop()
		return err
	}

	if err := a.Scheduler.Start(ctx); err != nil {
		grpcServer.Stop()
		srv.Stop()
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Shutting down...")
	case runErr = <-errCh:
		a.Logger.Error("Server failed: %v", runErr)
	}

	// Wait for in-flight fetches so their snapshots reach the archive.
	a.Scheduler.Stop()
	grpcServer.GracefulStop()
	if err := srv.Stop(); err != nil {
		a.Logger.Warning("API server shutdown: %v", err)
	}
	a.Logger.Info("Shutdown complete.")
	return runErr
}
