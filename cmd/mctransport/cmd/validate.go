package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a problem file without running it.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		problem, err := loadProblem(cmd)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"problem %s is valid: %s geometry, %d materials, %d histories\n",
			problem.Problem.Name,
			problem.Geometry.Type,
			len(problem.Material),
			problem.Problem.Histories)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().String("config", "", "Problem file (.ini or .yaml)")
	_ = validateCmd.MarkFlagRequired("config")
}
