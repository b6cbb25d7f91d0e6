package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Messages printed for handled outcomes
const (
	MsgDone           = "Done! The output file is located at %s\n"
	MsgPeriodNotFound = "The selected period was not found in the provided link."
	MsgExtractFailed  = "An error occurred while processing the schedule."
	MsgImportFailed   = "An error occurred while adding the schedule to Notion."
	MsgImportDone     = "Schedule successfully added to Notion!"
)

// AllPeriods is the menu choice that extracts every period
const AllPeriods = "A"

var periodMenu = []struct {
	choice string
	period string
}{
	{"1", "I Semestre"},
	{"2", "II Semestre"},
	{"Y", "Annuale"},
	{AllPeriods, ""},
}

// PeriodForChoice maps a menu answer to a period name. The empty name with ok set
// means every period.
func PeriodForChoice(choice string) (period string, ok bool) {
	choice = strings.ToUpper(strings.TrimSpace(choice))
	for _, item := range periodMenu {
		if item.choice == choice {
			return item.period, true
		}
	}
	return "", false
}

func periodQuestion() string {
	var b strings.Builder
	b.WriteString("Which period do you want to extract?\n")
	for _, item := range periodMenu {
		name := item.period
		if name == "" {
			name = "All periods"
		}
		fmt.Fprintf(&b, "  %s) %s\n", item.choice, name)
	}
	b.WriteString("Type your choice: ")
	return b.String()
}

// Execute runs cmd with ctx. The commands report their own failures, so an error
// here is a usage error such as an unknown flag.
func Execute(ctx context.Context, cmd *cobra.Command) {
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
