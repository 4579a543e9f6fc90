package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// templatesCmd groups the template inspection subcommands.
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect the loaded document templates",
	Long: `Inspect the template store: list the registered document layouts or
show one layout's regions in detail.

Examples:
  wasl templates list
  wasl templates info assoc_receipt
  wasl templates list --templates ./my_templates.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// templatesListCmd represents the templates list command.
var templatesListCmd = &cobra.Command{
	Use:          "list",
	Short:        "List registered templates",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		store, err := loadTemplates(cfg)
		if err != nil {
			return fmt.Errorf("failed to load templates: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-24s %-36s %-8s %s\n", "ID", "NAME", "VERSION", "REGIONS")
		for _, id := range store.List() {
			info, err := store.Info(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-24s %-36s %-8s %d\n", info.ID, info.Name, info.Version, info.RegionCount)
		}
		return nil
	},
}

// templatesInfoCmd represents the templates info command.
var templatesInfoCmd = &cobra.Command{
	Use:          "info ID",
	Short:        "Show one template in detail",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		store, err := loadTemplates(cfg)
		if err != nil {
			return fmt.Errorf("failed to load templates: %w", err)
		}

		tpl, err := store.Get(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		name := tpl.Name
		if tpl.NameAr != "" {
			name += " / " + tpl.NameAr
		}
		fmt.Fprintf(out, "%s (v%s)\n", name, tpl.Version)
		fmt.Fprintf(out, "  id:       %s\n", tpl.ID)
		fmt.Fprintf(out, "  required: %s\n", strings.Join(tpl.RequiredFields, ", "))
		fmt.Fprintln(out, "  regions:")
		for _, r := range tpl.Regions {
			fmt.Fprintf(out, "    %-28s lang=%-8s type=%-12s [%.2f %.2f %.2f %.2f]\n",
				r.Key(), r.Language, r.Type, r.X, r.Y, r.W, r.H)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesInfoCmd)
}
