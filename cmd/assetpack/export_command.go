package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"assetpack/internal/config"
	"assetpack/internal/identity"
	"assetpack/internal/packaging"
	"assetpack/internal/scenegraph"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		assetName string
		category  string
		kindFlag  string
		existing  string
		createdBy string
		outPath   string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "export <scene-snapshot>",
		Short: "Package a scene snapshot's file references into the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, existingID, err := parseAllocation(kindFlag, existing)
			if err != nil {
				return err
			}
			if createdBy == "" {
				createdBy = os.Getenv("USER")
			}

			return ctx.withOrchestrator(func(cfg *config.Config, orch *packaging.Orchestrator) error {
				codec := scenegraph.JSONSnapshot{}
				provider, err := codec.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				result, err := orch.Export(cmd.Context(), packaging.ExportRequest{
					Provider:  provider,
					AssetName: assetName,
					Category:  category,
					Kind:      kind,
					Existing:  existingID,
					CreatedBy: createdBy,
				})
				if err != nil {
					return err
				}

				// The pass rewrote the provider in place; persist the
				// rewritten scene so it references the library.
				target := outPath
				if target == "" {
					target = args[0]
				}
				if err := codec.Save(cmd.Context(), provider, target); err != nil {
					return fmt.Errorf("save rewritten snapshot: %w", err)
				}

				if asJSON {
					return writeJSON(cmd, exportView(result, target))
				}
				renderExportResult(cmd, result, target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&assetName, "name", "n", "", "Asset display name (required)")
	cmd.Flags().StringVar(&category, "category", "", "Library category (required)")
	cmd.Flags().StringVar(&kindFlag, "kind", string(identity.KindCreateNew), "Allocation kind: create_new, new_variant, new_version")
	cmd.Flags().StringVar(&existing, "existing", "", "Existing identity key for new_variant and new_version")
	cmd.Flags().StringVar(&createdBy, "created-by", "", "Recorded author of the export")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the rewritten snapshot here instead of in place")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the result as JSON")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func parseAllocation(kindFlag, existing string) (identity.Kind, *identity.AssetIdentity, error) {
	kind := identity.Kind(strings.TrimSpace(kindFlag))
	switch kind {
	case identity.KindCreateNew:
		return kind, nil, nil
	case identity.KindNewVariant, identity.KindNewVersion:
		id, err := identity.ParseKey(existing)
		if err != nil {
			return "", nil, fmt.Errorf("--existing is required for %s: %w", kind, err)
		}
		return kind, &id, nil
	default:
		return "", nil, fmt.Errorf("unknown allocation kind %q", kindFlag)
	}
}

type exportResultView struct {
	Status   string   `json:"status"`
	ID       string   `json:"id"`
	AssetDir string   `json:"asset_dir"`
	Snapshot string   `json:"snapshot"`
	Textures int      `json:"textures"`
	Geometry int      `json:"geometry_files"`
	Warnings []string `json:"warnings,omitempty"`
}

func exportView(result *packaging.Result, snapshotPath string) exportResultView {
	view := exportResultView{
		Status:   string(result.Status),
		ID:       result.Identity.Key(),
		AssetDir: result.AssetDir,
		Snapshot: snapshotPath,
		Warnings: result.Warnings,
	}
	if result.Manifest != nil {
		view.Textures = result.Manifest.Counts.Textures
		view.Geometry = result.Manifest.Counts.GeometryFiles
	}
	return view
}

func renderExportResult(cmd *cobra.Command, result *packaging.Result, snapshotPath string) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	kind := statusOK
	if result.HasWarnings() {
		kind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Export", kind, string(result.Status), colorize))
	fmt.Fprintln(out, renderStatusLine("Identity", statusInfo, result.Identity.Key(), colorize))
	fmt.Fprintln(out, renderStatusLine("Asset folder", statusInfo, result.AssetDir, colorize))
	fmt.Fprintln(out, renderStatusLine("Snapshot", statusInfo, snapshotPath, colorize))
	if result.Manifest != nil {
		counts := fmt.Sprintf("%d textures, %d geometry files", result.Manifest.Counts.Textures, result.Manifest.Counts.GeometryFiles)
		fmt.Fprintln(out, renderStatusLine("Files", statusInfo, counts, colorize))
	}
	for _, warning := range result.Warnings {
		fmt.Fprintln(out, renderStatusLine("Warning", statusWarn, warning, colorize))
	}
}
