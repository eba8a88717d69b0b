package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/profugus/mctransport/datarecording"
	"github.com/profugus/mctransport/tracing"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the runs recorded in a database.",
	RunE:  report,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("db", "", "Recorded database file")
	reportCmd.Flags().Int("rounds", 0, "Also print the last N rounds")
	_ = reportCmd.MarkFlagRequired("db")
}

func report(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("db")
	lastRounds, _ := cmd.Flags().GetInt("rounds")

	reader, err := datarecording.NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.MapTable("summary", tracing.SummaryEntry{})
	reader.MapTable("flux", tracing.FluxEntry{})
	reader.MapTable("rounds", tracing.RoundEntry{})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	summaries, _, err := reader.Query(ctx, "summary",
		datarecording.QueryParams{OrderBy: "rowid"})
	if err != nil {
		return fmt.Errorf("reading summaries: %w", err)
	}

	out := cmd.OutOrStdout()

	for _, row := range summaries {
		s := row.(*tracing.SummaryEntry)

		fmt.Fprintf(out, "run %s (%s): %d histories, %d rounds, "+
			"batch %d, %.3fs\n",
			s.Run, s.Transporter, s.Histories, s.Rounds, s.BatchSize, s.Seconds)
		fmt.Fprintf(out, "  collisions %d, escapes %d, reflections %d, "+
			"crossings %d, kills %d, respawns %d, secondaries %d, dropped %d\n",
			s.Collisions, s.Escapes, s.Reflections, s.SurfaceCrossings,
			s.Kills, s.Respawns, s.Secondaries, s.DroppedBanked)

		if err := printFlux(ctx, out, reader, s.Run); err != nil {
			return err
		}

		if lastRounds > 0 {
			if err := printRounds(ctx, out, reader, s.Run, lastRounds); err != nil {
				return err
			}
		}
	}

	return nil
}

func printFlux(
	ctx context.Context,
	out io.Writer,
	reader datarecording.DataReader,
	run string,
) error {
	rows, _, err := reader.Query(ctx, "flux", datarecording.QueryParams{
		Where:   "Run = ?",
		Args:    []any{run},
		OrderBy: "Matid",
	})
	if err != nil {
		return fmt.Errorf("reading flux: %w", err)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  MATID\tFLUX\tREL ERR")
	for _, row := range rows {
		f := row.(*tracing.FluxEntry)
		fmt.Fprintf(w, "  %d\t%.6e\t%.4f\n", f.Matid, f.Mean, f.RelErr)
	}

	return w.Flush()
}

func printRounds(
	ctx context.Context,
	out io.Writer,
	reader datarecording.DataReader,
	run string,
	n int,
) error {
	rows, total, err := reader.Query(ctx, "rounds", datarecording.QueryParams{
		Where:   "Run = ?",
		Args:    []any{run},
		OrderBy: "Round DESC",
		Limit:   n,
	})
	if err != nil {
		return fmt.Errorf("reading rounds: %w", err)
	}

	fmt.Fprintf(out, "  last %d of %d rounds\n", len(rows), total)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  ROUND\tACTIVE\tCOLLISION\tBOUNDARY\tCLOSURE\tRETIRED")
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i].(*tracing.RoundEntry)
		fmt.Fprintf(w, "  %d\t%d\t%d\t%d\t%d\t%d\n",
			r.Round, r.Active, r.Collisions, r.Boundaries, r.Closures, r.Retired)
	}

	return w.Flush()
}
