package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootOptions 持有所有子命令共享的全局标志
type RootOptions struct {
	ServerURL string
	Token     string
	Verbose   bool
}

// NewRootCommand 创建 canvasctl 的根命令
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "canvasctl",
		Short: "Command line client for the collaborative pixel canvas",
		Long: `canvasctl talks to a canvas server: account management, canvas
administration, pixel placement and live watching of a canvas.

The bearer token is taken from --token or the CANVAS_TOKEN environment
variable (login prints one).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.Token == "" {
				opts.Token = os.Getenv("CANVAS_TOKEN")
			}
			if opts.Verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.WarnLevel)
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ServerURL, "server", "http://localhost:8080", "canvas server base URL")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "bearer token (defaults to CANVAS_TOKEN)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewCanvasCommand(opts))
	cmd.AddCommand(NewDrawCommand(opts))
	cmd.AddCommand(NewSnapshotCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
