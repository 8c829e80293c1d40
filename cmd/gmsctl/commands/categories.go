package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func categoriesCmd(app *App) *cobra.Command {
	var detail bool
	cmd := &cobra.Command{
		Use:   "categories [key]",
		Short: "List report categories",
		Long:  `List the categories the server accepts. With a key, show that category's full form definition.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := app.Client.Categories(cmd.Context())
			if err != nil {
				return fmt.Errorf("load categories: %w", err)
			}
			if len(args) == 1 {
				def, err := cat.Get(args[0])
				if err != nil {
					return err
				}
				return app.printYAML(def)
			}

			app.printf("%-16s %-16s %-12s %s\n", "KEY", "ACTION ITEM", "LOCATION", "TITLE")
			for _, c := range cat.Categories {
				app.printf("%-16s %-16s %-12s %s\n", c.Key, c.ActionItem, c.Location, c.Title)
				if detail {
					app.printf("%16s domains: %s\n", "", strings.Join(c.Domains, ", "))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&detail, "domains", "d", false, "also list complaint domains")
	return cmd
}
