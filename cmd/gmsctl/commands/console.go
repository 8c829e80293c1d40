package commands

import (
	"fmt"
	"io"
)

// console shows dispatcher messages and navigation on the terminal.
type console struct {
	out io.Writer
}

func (c console) Info(msg string) {
	fmt.Fprintln(c.out, "ℹ️ ", msg)
}

func (c console) Error(msg string) {
	fmt.Fprintln(c.out, "❌", msg)
}

func (c console) ToConfirmation(params map[string]any) {
	fmt.Fprintln(c.out, "✅ Report submitted")
	for _, key := range []string{"ticket", "status", "action_item", "issue_cat", "block", "floor", "room"} {
		if v, ok := params[key]; ok && v != nil && v != "" {
			fmt.Fprintf(c.out, "   %-12s %v\n", key+":", v)
		}
	}
}

func (c console) Back() {
	fmt.Fprintln(c.out, "↩️  Back to the category list")
}
