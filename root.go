package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ErrChecksFailed is returned when the run finished with FAIL or ERROR records.
// The report has already been written, so Execute exits without printing it.
var ErrChecksFailed = errors.New("one or more checks failed")

// NewRootCmd creates the root command for sitecheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitecheck [base-url]",
		Short: "Check the pages, navigation links and images of a website",
		Long: `sitecheck loads each configured page of a site, then checks every
navigation link (GET) and image (HEAD) on it. Each check is reported as
PASS, FAIL or ERROR, followed by a summary.

The exit code is 0 when every check passed and 1 otherwise.

Examples:
  # Check the default pages of a local static server
  sitecheck

  # Check a staging deployment
  sitecheck https://staging.example.com

  # Check two specific pages and emit JSON
  sitecheck -p "" -p pricing.html --format json https://example.com

  # Write a Markdown report to a file
  sitecheck --format markdown -o report.md`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runCheckCmd,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	addCheckFlags(cmd)

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, ErrChecksFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
