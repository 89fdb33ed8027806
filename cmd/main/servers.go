package main

import (
	"fmt"
	"net"

	"spot-observer/src/grpc_control"
	"spot-observer/src/interfaces"
	"spot-observer/src/logger"

	"google.golang.org/grpc"
)

// -----------------------------------------------------------------------------

// startServers starts the HTTP/WebSocket API and the gRPC control server.
// Serve errors are reported on errCh.
func startServers(a *app, srv interfaces.IDataExchanger, errCh chan<- error) (*grpc.Server, error) {
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	addr := fmt.Sprintf("%s:%d", a.Config.GrpcHost, a.Config.GrpcPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for gRPC on %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer()
	controlService := grpc_control.NewControlService(a.Config, a.Dashboard, a.Scheduler, logger.NewLogger(a.Config.MConfig, "ControlService"))
	grpc_control.RegisterControlServer(grpcServer, controlService)

	go func() {
		a.Logger.Info("Starting gRPC Control Server on %s", addr)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	return grpcServer, nil
}
