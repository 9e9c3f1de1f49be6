package main

import (
	"fmt"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/constants"
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	opts := &scanOptions{}
	var failOn string

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Fail the build when patterns reach a severity",
		Long: `Scan like analyze, then exit non-zero when findings reach the --fail-on severity.

Exit codes:
  0 - No pattern at or above --fail-on
  1 - At least one pattern at or above --fail-on
  2 - Analysis error (bad configuration, unreadable files, etc.)

Examples:
  # Fail only on critical findings
  vibescan check src/

  # Fail on warnings too
  vibescan check --fail-on warning src/

  # SARIF for code scanning uploads
  vibescan check --format sarif -o vibescan.sarif .`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, failOn, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&failOn, "fail-on", string(domain.SeverityCritical),
		"Lowest severity that fails the check: info, warning, critical")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *scanOptions, failOn string, args []string) error {
	threshold, err := domain.ParseSeverity(failOn)
	if err != nil {
		return &CheckExitError{Code: constants.ExitError, Message: fmt.Sprintf("invalid --fail-on: %v", err)}
	}

	response, err := runScan(cmd, opts, args)
	if err != nil {
		return &CheckExitError{Code: constants.ExitError, Message: err.Error()}
	}

	// An incomplete scan cannot pass
	if len(response.Errors) > 0 {
		return &CheckExitError{
			Code:    constants.ExitError,
			Message: fmt.Sprintf("%d file(s) could not be analyzed", len(response.Errors)),
		}
	}

	if count := response.Summary.CountAtLeast(threshold); count > 0 {
		return &CheckExitError{
			Code:    constants.ExitFindings,
			Message: fmt.Sprintf("%d pattern(s) at or above %s", count, threshold),
		}
	}
	return nil
}
