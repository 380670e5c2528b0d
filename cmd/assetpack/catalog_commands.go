package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"assetpack/internal/catalog"
	"assetpack/internal/config"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the committed library index",
	}

	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogShowCommand(ctx))

	return catalogCmd
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var (
		category string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List committed assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				records, err := store.List(cmd.Context(), category)
				if err != nil {
					return err
				}

				if asJSON {
					return writeJSON(cmd, recordViews(records))
				}

				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No committed assets")
					return nil
				}
				headers := []string{"ID", "Name", "Category", "Created", "Library Path"}
				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						rec.Key(), rec.Name, rec.Category,
						rec.CreatedAt.Local().Format("2006-01-02 15:04"),
						rec.LibraryPath,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only list assets in this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit records as JSON")
	return cmd
}

func newCatalogShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <identity-key>",
		Short: "Show one committed asset and its manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				rec, err := store.GetByKey(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				m, err := store.Manifest(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				if asJSON {
					return writeJSON(cmd, m)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderStatusLine("Asset", statusInfo, rec.Key()+" "+rec.Name, colorize))
				fmt.Fprintln(out, renderStatusLine("Category", statusInfo, rec.Category+" / "+rec.AssetType, colorize))
				fmt.Fprintln(out, renderStatusLine("Library path", statusInfo, rec.LibraryPath, colorize))
				fmt.Fprintln(out, renderStatusLine("Created", statusInfo,
					fmt.Sprintf("%s by %s", rec.CreatedAt.Local().Format(time.RFC1123), orDash(rec.CreatedBy)), colorize))

				headers := []string{"Node", "Parameter", "Kind", "Library Path"}
				var rows [][]string
				for _, entry := range m.References.Textures {
					rows = append(rows, []string{entry.NodePath, entry.Parameter, entry.PatternKind, entry.LibraryPath})
				}
				for _, entry := range m.References.Geometry {
					rows = append(rows, []string{entry.NodePath, entry.Parameter, entry.PatternKind, entry.LibraryPath})
				}
				if len(rows) > 0 {
					fmt.Fprintln(out, renderTable(headers, rows, nil))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the manifest as JSON")
	return cmd
}

type recordView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	AssetType   string `json:"asset_type"`
	LibraryPath string `json:"library_path"`
	CreatedAt   string `json:"created_at"`
	CreatedBy   string `json:"created_by,omitempty"`
}

func recordViews(records []*catalog.AssetRecord) []recordView {
	views := make([]recordView, 0, len(records))
	for _, rec := range records {
		views = append(views, recordView{
			ID:          rec.Key(),
			Name:        rec.Name,
			Category:    rec.Category,
			AssetType:   rec.AssetType,
			LibraryPath: rec.LibraryPath,
			CreatedAt:   rec.CreatedAt.UTC().Format(time.RFC3339),
			CreatedBy:   rec.CreatedBy,
		})
	}
	return views
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
