package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"campus-gms/types"
)

// LostFoundCommands returns the lost-and-found board commands.
func LostFoundCommands(app *App) *cobra.Command {
	lfCmd := &cobra.Command{
		Use:     "lost-found",
		Aliases: []string{"lf"},
		Short:   "Campus lost-and-found board",
	}
	lfCmd.AddCommand(lostFoundListCmd(app), lostFoundAddCmd(app), lostFoundClaimCmd(app))
	return lfCmd
}

func lostFoundListCmd(app *App) *cobra.Command {
	var kind, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List lost and found items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.signedIn(cmd.Context()); err != nil {
				return err
			}
			items, err := app.Client.LostFound(cmd.Context(), kind, status)
			if err != nil {
				return err
			}
			app.printf("%-6s %-6s %-8s %-30s %s\n", "ID", "KIND", "STATUS", "TITLE", "LOCATION")
			for _, it := range items {
				app.printf("%-6d %-6s %-8s %-30s %s\n", it.ID, it.Kind, it.Status, it.Title, it.Location)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "lost or found")
	cmd.Flags().StringVar(&status, "status", "open", "open or claimed, empty for both")
	return cmd
}

func lostFoundAddCmd(app *App) *cobra.Command {
	var in types.LostFoundCreate
	cmd := &cobra.Command{
		Use:   "add <lost|found> <title>",
		Short: "Post a lost or found item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.signedIn(cmd.Context()); err != nil {
				return err
			}
			in.Kind, in.Title = args[0], args[1]
			item, err := app.Client.CreateLostFound(cmd.Context(), in)
			if err != nil {
				return err
			}
			app.printf("Posted #%d %s\n", item.ID, item.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Description, "description", "", "what it looks like")
	cmd.Flags().StringVar(&in.Location, "location", "", "where it was lost or found")
	cmd.Flags().StringVar(&in.Contact, "contact", "", "how to reach you")
	return cmd
}

func lostFoundClaimCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <id>",
		Short: "Claim an item; the poster is notified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("item id must be a number: %q", args[0])
			}
			if _, err := app.signedIn(cmd.Context()); err != nil {
				return err
			}
			item, err := app.Client.ClaimLostFound(cmd.Context(), uint(id))
			if err != nil {
				return err
			}
			app.printf("Claimed #%d %s\n", item.ID, item.Title)
			return nil
		},
	}
}
