package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Evan-Lab/cloud-native/internal/client"
	"github.com/Evan-Lab/cloud-native/internal/domain"
)

// NewDrawCommand 创建 draw 子命令。
// 走完整的客户端路径：本地 Store 乐观写入 + HTTP 提交。
func NewDrawCommand(rootOpts *RootOptions) *cobra.Command {
	var erase bool

	cmd := &cobra.Command{
		Use:   "draw <canvas-id> <x> <y> [color]",
		Short: "Place a pixel on a canvas",
		Long: `Place a pixel on a canvas. Color is a palette hex value like "#EF4444";
with --erase the pixel is reset to the default color instead.`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			canvasID := args[0]
			x, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid x coordinate %q", args[1])
			}
			y, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid y coordinate %q", args[2])
			}

			api := newAPIClient(rootOpts)
			var info struct {
				Width  int    `json:"width"`
				Height int    `json:"height"`
				Status string `json:"status"`
			}
			if err := api.doJSON("GET", "/api/canvases/"+canvasID, nil, &info); err != nil {
				return err
			}

			submitter := client.NewHTTPSubmitter(rootOpts.ServerURL, rootOpts.Token, logrus.StandardLogger())
			store := client.NewStore(canvasID, client.Config{
				Width:  info.Width,
				Height: info.Height,
			}, submitter, nil)
			store.SetSessionActive(info.Status == string(domain.SessionActive))

			if erase {
				store.SetTool(client.ToolErase)
			} else if len(args) == 4 {
				color := strings.ToUpper(args[3])
				if !domain.ValidColor(color) {
					return fmt.Errorf("color %q is not in the palette", args[3])
				}
				store.SetSelectedColor(color)
			}

			if err := store.Place(cmd.Context(), x, y); err != nil {
				var cooldown *client.CooldownActiveError
				if errors.As(err, &cooldown) {
					return fmt.Errorf("cooldown active, retry in %d seconds", cooldown.RemainingTicks)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Placed (%d,%d) on canvas %s\n", x, y, canvasID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&erase, "erase", false, "erase the pixel (paint the default color)")
	return cmd
}
