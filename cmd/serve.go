package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shouni/go-storybook-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// serveCmd は、物語セッションを操作する HTTP API を起動するのだ。
var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "物語セッションの HTTP API を起動するのだ。",
	Example: "  storybook serve --addr :8080",
	RunE:    serveCommand,
}

func init() {
	serveCmd.Flags().StringVar(&opts.Addr, "addr", "", "待ち受けアドレスなのだ（空なら SERVER_ADDR か :8080）。")
}

func serveCommand(cmd *cobra.Command, args []string) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := pipeline.Serve(ctx, opts); err != nil {
		return fmt.Errorf("サーバーが異常終了したのだ: %w", err)
	}
	return nil
}
