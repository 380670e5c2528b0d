package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"assetpack/internal/config"
	"assetpack/internal/packaging"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var (
		targetRoot string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "import <identity-key-or-path>",
		Short: "Load a packaged asset's scene snapshot, optionally rebased onto another library root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withOrchestrator(func(cfg *config.Config, orch *packaging.Orchestrator) error {
				result, err := orch.Import(cmd.Context(), packaging.ImportRequest{
					KeyOrPath:  args[0],
					TargetRoot: targetRoot,
					OutputPath: outPath,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderStatusLine("Asset", statusOK, result.Manifest.ID+" "+result.Manifest.Name, colorize))
				fmt.Fprintln(out, renderStatusLine("Asset folder", statusInfo, result.AssetDir, colorize))
				if targetRoot != "" {
					fmt.Fprintln(out, renderStatusLine("Rebased", statusInfo, fmt.Sprintf("%d parameters", result.Rebased), colorize))
				}
				if outPath != "" {
					fmt.Fprintln(out, renderStatusLine("Snapshot", statusInfo, outPath, colorize))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&targetRoot, "target-root", "", "Rebase library references onto this library root")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the loaded snapshot here")

	return cmd
}
