package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sentimentpulse/pkg/contracts/domain"
)

// SummaryReport is the JSON output of the summary command
type SummaryReport struct {
	Source       string              `json:"source"`
	Observations int                 `json:"observations"`
	Companies    int                 `json:"companies"`
	Summary      domain.Summary      `json:"summary"`
	Sectors      []domain.SectorStat `json:"sectors"`
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the top movers and sector averages",
		Long: `Load the sentiment sheet and print the same cards the dashboard shows:
the most positive and most negative companies by latest score and the
sector averages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(rootOpts, cmd)
		},
	}
}

func runSummary(opts *RootOptions, cmd *cobra.Command) error {
	e, err := opts.setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	summary, err := e.dataset.Summary(ctx)
	if err != nil {
		return err
	}
	sectors, err := e.dataset.SectorPerformance(ctx)
	if err != nil {
		return err
	}
	status := e.dataset.Status()

	report := SummaryReport{
		Source:       status.Location,
		Observations: status.Observations,
		Companies:    status.Companies,
		Summary:      summary,
		Sectors:      sectors,
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return writeSummaryText(cmd.OutOrStdout(), report)
}

func writeSummaryText(out io.Writer, report SummaryReport) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Source:\t%s\n", report.Source)
	fmt.Fprintf(tw, "Rows:\t%d (%d companies)\n", report.Observations, report.Companies)

	ranked := func(title string, entries []domain.RankedEntry) {
		fmt.Fprintf(tw, "\n%s\n", title)
		for _, e := range entries {
			fmt.Fprintf(tw, "  %s\t%s\t%+.2f\n", e.Company, e.Sector, e.Score)
		}
	}
	ranked("Top Positive", report.Summary.TopPositive)
	ranked("Top Negative", report.Summary.TopNegative)

	fmt.Fprintf(tw, "\nSectors\n")
	for _, s := range report.Sectors {
		fmt.Fprintf(tw, "  %s\t%+.2f\t%d companies\n", s.Sector, s.Mean, s.Count)
	}

	return tw.Flush()
}
