package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Evan-Lab/cloud-native/internal/dto"
)

// NewSnapshotCommand 创建 snapshot 子命令
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "snapshot <canvas-id>",
		Short: "Fetch the current canvas state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := newAPIClient(rootOpts)
			var snap dto.SnapshotDTO
			if err := api.doJSON("GET", "/api/canvases/"+args[0]+"/snapshot", nil, &snap); err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Canvas %s: %dx%d, %d painted cells\n",
				args[0], snap.Width, snap.Height, len(snap.Pixels))
			for _, p := range snap.Pixels {
				fmt.Fprintf(cmd.OutOrStdout(), "  (%d,%d) %s\n", p.X, p.Y, p.Color)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw snapshot as JSON")
	return cmd
}
