package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/hybar/internal/hypr"
)

var socketOpts struct {
	request bool
}

var socketCmd = &cobra.Command{
	Use:   "socket",
	Short: "Print the resolved event socket path",
	Long: `Print the event socket path the client would connect to.

The path comes from client.socket_path in the config file, or from
$XDG_RUNTIME_DIR/hypr/$HYPRLAND_INSTANCE_SIGNATURE/.socket2.sock with a
fallback to /tmp/hypr. Exits non-zero when no socket can be resolved.`,
	RunE: runSocket,
}

func init() {
	rootCmd.AddCommand(socketCmd)

	socketCmd.Flags().BoolVar(&socketOpts.request, "request", false,
		"Also print the subscription request sent after connecting")
}

func runSocket(cmd *cobra.Command, args []string) error {
	resolver := hypr.EnvResolver(os.Getenv)
	if cfg.Client.SocketPath != "" {
		resolver = hypr.StaticResolver(cfg.Client.SocketPath)
	}

	path, err := resolver()
	if err != nil {
		return fmt.Errorf("failed to resolve event socket: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)

	if socketOpts.request {
		request, err := hypr.SubscriptionRequest(cfg.Client.Subscribe)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(request))
	}
	return nil
}
