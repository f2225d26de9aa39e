package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Evan-Lab/cloud-native/internal/client"
)

// printingReconciler 在应用远端值之前把它打印出来，其余交给内层策略。
// 利用 Store 的协调策略接缝，不需要碰 Store 本身。
type printingReconciler struct {
	out   io.Writer
	inner client.Reconciler
}

func (r printingReconciler) Merge(local, remote string) string {
	if local != remote {
		fmt.Fprintf(r.out, "pixel -> %s (was %s)\n", remote, local)
	}
	return r.inner.Merge(local, remote)
}

// NewWatchCommand 创建 watch 子命令：订阅画布广播并打印每个到达的帧
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <canvas-id>",
		Short: "Subscribe to a canvas and print accepted placements as they arrive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			canvasID := args[0]

			api := newAPIClient(rootOpts)
			var info struct {
				Width  int `json:"width"`
				Height int `json:"height"`
			}
			if err := api.doJSON("GET", "/api/canvases/"+canvasID, nil, &info); err != nil {
				return err
			}

			store := client.NewStore(canvasID, client.Config{
				Width:  info.Width,
				Height: info.Height,
			}, nil, printingReconciler{out: cmd.OutOrStdout(), inner: client.LastWriteWins{}})

			wsURL, err := websocketURL(rootOpts.ServerURL, canvasID)
			if err != nil {
				return err
			}
			channel := client.NewChannel(wsURL, rootOpts.Token, store)
			if err := channel.Connect(); err != nil {
				// 连接失败后 Channel 会按固定间隔自动重试
				fmt.Fprintf(cmd.ErrOrStderr(), "Initial connect failed (%v), retrying...\n", err)
			}
			defer channel.Disconnect()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching canvas %s (%dx%d), Ctrl-C to stop\n",
				canvasID, info.Width, info.Height)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			return nil
		},
	}
}

// websocketURL 把服务端的 HTTP 地址转成该画布的 ws endpoint
func websocketURL(serverURL, canvasID string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", serverURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server URL scheme %q", u.Scheme)
	}
	u.Path = "/ws/canvas/" + canvasID
	return u.String(), nil
}
