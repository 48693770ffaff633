// cmd/tools/headline-cli/cmd_activities.go
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"headline-agent/pkg/registry"
)

var activitiesFlags struct {
	path     string
	category string
}

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List and validate the activity registry",
	Long: "activities validates the activity registry (the embedded one unless --path\n" +
		"is given) and prints one row per activity.",
	RunE: runActivities,
}

func init() {
	f := activitiesCmd.Flags()
	f.StringVar(&activitiesFlags.path, "path", "", "Registry file (default: embedded registry)")
	f.StringVar(&activitiesFlags.category, "category", "", "Only list one category (skill, worker, stage)")
}

func runActivities(cmd *cobra.Command, _ []string) error {
	var (
		reg *registry.ActivityRegistry
		err error
	)
	if activitiesFlags.path != "" {
		reg, err = registry.LoadRegistry(activitiesFlags.path)
	} else {
		reg, err = registry.Default()
	}
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	activities := reg.Activities
	if activitiesFlags.category != "" {
		activities = reg.ByCategory(activitiesFlags.category)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tTASK TYPE\tTIMEOUT\tERROR CODES")
	for _, a := range activities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Category, a.TaskType, orDash(a.Timeout), orDash(strings.Join(a.ErrorCodes, ",")))
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
