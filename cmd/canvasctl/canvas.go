package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCanvasCommand 创建 canvas 子命令组：create / session / info
func NewCanvasCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "canvas",
		Short: "Canvas administration (create, session control, info)",
	}
	cmd.AddCommand(newCanvasCreateCommand(rootOpts))
	cmd.AddCommand(newCanvasSessionCommand(rootOpts))
	cmd.AddCommand(newCanvasInfoCommand(rootOpts))
	return cmd
}

func newCanvasCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var width, height int

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new canvas (caller becomes its admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := newAPIClient(rootOpts)
			payload := map[string]interface{}{"name": args[0]}
			if width > 0 {
				payload["width"] = width
			}
			if height > 0 {
				payload["height"] = height
			}
			var resp struct {
				CanvasID string `json:"canvas_id"`
				Width    int    `json:"width"`
				Height   int    `json:"height"`
				Status   string `json:"status"`
			}
			if err := api.doJSON("POST", "/api/canvases", payload, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Canvas %s created (%dx%d, %s)\n",
				resp.CanvasID, resp.Width, resp.Height, resp.Status)
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "canvas width (default 100)")
	cmd.Flags().IntVar(&height, "height", 0, "canvas height (default 100)")
	return cmd
}

func newCanvasSessionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "session <canvas-id> <start|pause|reset>",
		Short: "Apply a session action to a canvas (admin only)",
		Long: `Apply a session action to a canvas. Only the canvas admin may do this.
"reset" clears the grid and re-activates the session.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := newAPIClient(rootOpts)
			var resp struct {
				Status string `json:"status"`
			}
			payload := map[string]string{"action": args[1]}
			if err := api.doJSON("POST", "/api/canvases/"+args[0]+"/session", payload, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Canvas %s is now %s\n", args[0], resp.Status)
			return nil
		},
	}
}

func newCanvasInfoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <canvas-id>",
		Short: "Show canvas metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := newAPIClient(rootOpts)
			var resp struct {
				CanvasID string `json:"canvas_id"`
				Name     string `json:"name"`
				Width    int    `json:"width"`
				Height   int    `json:"height"`
				Status   string `json:"status"`
			}
			if err := api.doJSON("GET", "/api/canvases/"+args[0], nil, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %q  %dx%d  %s\n",
				resp.CanvasID, resp.Name, resp.Width, resp.Height, resp.Status)
			return nil
		},
	}
}
