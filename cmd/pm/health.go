package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/processmap/internal/health"
	"github.com/zulandar/processmap/internal/models"
	"github.com/zulandar/processmap/internal/process"
)

func newHealthCmd() *cobra.Command {
	var (
		configPath string
		section    string
		driftOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show component health, set and computed from metrics",
		Long: `Lists every component with its stored health status next to the status
computed from its metrics. BLUE is set by hand and is never computed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealth(cmd, configPath, section, driftOnly)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Process Map config file")
	cmd.Flags().StringVar(&section, "section", "", "only components in this section ID")
	cmd.Flags().BoolVar(&driftOnly, "drift", false, "only components whose metrics disagree with the set status")
	return cmd
}

func runHealth(cmd *cobra.Command, configPath, section string, driftOnly bool) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	components, err := process.ListComponents(contextOf(cmd), gormDB, process.ComponentFilters{SectionID: section})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	statuses := make([]models.HealthStatus, len(components))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tCOMPONENT\tSET\tCOMPUTED\tMETRICS MET")
	shown := 0
	for i, c := range components {
		statuses[i] = c.HealthStatus
		readings := health.FromMetrics(c.Metrics)
		computed := health.Classify(readings)
		drift := c.HealthStatus != models.HealthBlue && computed != c.HealthStatus
		if driftOnly && !drift {
			continue
		}
		met := 0
		for _, r := range readings {
			if health.MeetsTarget(r) {
				met++
			}
		}
		sectionName := ""
		if c.Section != nil {
			sectionName = c.Section.Name
		}
		mark := ""
		if drift {
			mark = " *"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s%s\t%d/%d\n", sectionName, c.Title, c.HealthStatus, computed, mark, met, len(readings))
		shown++
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if shown == 0 {
		fmt.Fprintln(out, "No components.")
	}

	var parts []string
	breakdown := health.Breakdown(statuses)
	for _, s := range models.HealthStatuses {
		if n := breakdown[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", s, n))
		}
	}
	fmt.Fprintf(out, "\nOverall: %d/100", health.OverallScore(statuses))
	if len(parts) > 0 {
		fmt.Fprintf(out, " (%s)", strings.Join(parts, ", "))
	}
	fmt.Fprintln(out)
	return nil
}
