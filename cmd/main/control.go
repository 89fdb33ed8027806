package main

import (
	"fmt"

	"spot-observer/src/grpc_control"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the refresh state of a running instance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withControlClient(cmd, func(c *grpc_control.ControlClient) (*structpb.Struct, error) {
			return c.ListSources(cmd.Context())
		})
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh [source]",
	Short: "Force a refresh on a running instance, of one source or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withControlClient(cmd, func(c *grpc_control.ControlClient) (*structpb.Struct, error) {
			if len(args) == 1 {
				return c.RefreshSource(cmd.Context(), args[0])
			}
			return c.RefreshAll(cmd.Context())
		})
	},
}

// -----------------------------------------------------------------------------

func withControlClient(cmd *cobra.Command, call func(*grpc_control.ControlClient) (*structpb.Struct, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.GrpcHost, cfg.GrpcPort)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}
	defer conn.Close()

	out, err := call(grpc_control.NewControlClient(conn))
	if err != nil {
		return err
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(out)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
