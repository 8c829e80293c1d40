package commands

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"campus-gms/types"
)

// IssueCommands returns the commands for following reports.
func IssueCommands(app *App) *cobra.Command {
	issuesCmd := &cobra.Command{
		Use:   "issues",
		Short: "Follow submitted reports",
	}
	issuesCmd.AddCommand(issuesMineCmd(app), issueShowCmd(app), issueStatusCmd(app))
	return issuesCmd
}

func issuesMineCmd(app *App) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List your reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.signedIn(cmd.Context()); err != nil {
				return err
			}
			list, err := app.Client.MyIssues(cmd.Context(), status)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				app.printf("No reports yet\n")
				return nil
			}
			app.printIssues(list)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only issues in this status")
	return cmd
}

func (a *App) printIssues(list []types.IssueView) {
	a.printf("%-12s %-16s %-20s %-10s %-12s %s\n", "TICKET", "ACTION ITEM", "ISSUE", "WHERE", "STATUS", "DATE")
	for _, is := range list {
		where := is.Block
		if is.Floor != "" {
			where += "/" + is.Floor
		}
		a.printf("%-12s %-16s %-20s %-10s %-12s %s\n",
			is.Ticket, is.ActionItem, is.IssueCat, where, is.Status, is.Date.Format("2006-01-02"))
	}
}

func issueShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <ticket-or-id>",
		Short: "Show one report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.signedIn(cmd.Context()); err != nil {
				return err
			}
			is, err := app.Client.Issue(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			app.printIssue(is)
			return nil
		},
	}
}

func (a *App) printIssue(is *types.IssueView) {
	a.printf("Ticket:   %s (#%d)\n", is.Ticket, is.ID)
	a.printf("Status:   %s\n", is.Status)
	a.printf("Category: %s / %s (%s)\n", is.ActionItem, is.IssueCat, is.Type)
	a.printf("Where:    block %s floor %s room %s\n", is.Block, is.Floor, is.Room)
	if is.Comments != "" {
		a.printf("Comments: %s\n", is.Comments)
	}
	for _, name := range sortedKeys(is.Ratings) {
		a.printf("Rating:   %s %d\n", name, is.Ratings[name])
	}
	for _, url := range is.Attachments {
		a.printf("Photo:    %s\n", url)
	}
	if is.RaisedBy != nil {
		a.printf("By:       %s (%s)\n", is.RaisedBy.Name, is.RaisedBy.ID)
	} else if is.Anonymous {
		a.printf("By:       anonymous\n")
	}
	a.printf("Reported: %s, updated %s\n", is.Date.Format("2006-01-02 15:04"), is.UpdatedAt.Format("2006-01-02 15:04"))
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func issueStatusCmd(app *App) *cobra.Command {
	var note, from string
	cmd := &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Move an issue along its workflow",
		Long:  `Responders move issues between open, in_progress, resolved and closed. Reporters may close a resolved issue or reopen it as in_progress.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("issue id must be a number: %q", args[0])
			}
			if _, err := app.signedIn(cmd.Context()); err != nil {
				return err
			}
			is, err := app.Client.UpdateIssueStatus(cmd.Context(), uint(id), types.StatusUpdate{Status: args[1], Note: note, From: from})
			if err != nil {
				return err
			}
			app.printf("%s is now %s\n", is.Ticket, is.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "note recorded in the issue history")
	cmd.Flags().StringVar(&from, "from", "", "fail if the issue is no longer in this status")
	return cmd
}
