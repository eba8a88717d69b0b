package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/browser"
	"github.com/profugus/mctransport/config"
	"github.com/profugus/mctransport/simulation"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a transport problem.",
	Long: "`run --config problem.ini` transports every history of the " +
		"problem and prints the flux of each material.",
	RunE: runProblem,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("config", "", "Problem file (.ini or .yaml)")
	runCmd.Flags().String("db", "", "Name of the output database")
	runCmd.Flags().Bool("no-record", false, "Do not record rounds and results")
	runCmd.Flags().Bool("monitor", false, "Serve the monitoring API")
	runCmd.Flags().Int("monitor-port", 0, "Port of the monitoring server")
	runCmd.Flags().Bool("open-browser", false,
		"Open the monitoring server in a browser")
	_ = runCmd.MarkFlagRequired("config")
}

func runProblem(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	problem, err := loadProblem(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	dbName, _ := flags.GetString("db")
	noRecord, _ := flags.GetBool("no-record")
	monitorOn, _ := flags.GetBool("monitor")
	monitorPort, _ := flags.GetInt("monitor-port")
	openBrowser, _ := flags.GetBool("open-browser")

	if noRecord && dbName != "" {
		return fmt.Errorf("--db cannot be used with --no-record")
	}

	if !monitorOn && (monitorPort != 0 || openBrowser) {
		return fmt.Errorf("--monitor-port and --open-browser need --monitor")
	}

	builder := simulation.MakeBuilder().
		WithProblem(problem).
		WithLogger(logger)

	if noRecord {
		builder = builder.WithoutRecording()
	} else if dbName != "" {
		builder = builder.WithOutputFileName(dbName)
	}

	if monitorOn {
		builder = builder.WithMonitoring().WithMonitorPort(monitorPort)
	}

	sim, err := builder.Build()
	if err != nil {
		return err
	}
	defer sim.Terminate()

	if openBrowser {
		if err := browser.OpenURL(sim.MonitorURL()); err != nil {
			logger.Warn("cannot open browser", "url", sim.MonitorURL(),
				"error", err)
		}
	}

	result := sim.Run()

	fmt.Fprintf(cmd.OutOrStdout(),
		"problem %s: %d histories in %d rounds\n",
		problem.Problem.Name, result.Summary.Histories, result.Summary.Rounds)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MATID\tFLUX\tREL ERR")
	for _, r := range result.Flux {
		fmt.Fprintf(w, "%d\t%.6e\t%.4f\n", r.Matid, r.Mean, r.RelErr)
	}

	return w.Flush()
}

func loadProblem(cmd *cobra.Command) (*config.Problem, error) {
	envFile, _ := cmd.Flags().GetString("env")
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	path, _ := cmd.Flags().GetString("config")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("problem file: %w", err)
	}

	return config.Load(path)
}
