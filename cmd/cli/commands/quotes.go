package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	quotesCmd.AddCommand(expireQuotesCmd)
}

var quotesCmd = &cobra.Command{
	Use:   "quotes",
	Short: "Operate on quotes",
}

// expireQuotesCmd sweeps quotes whose validity deadline has passed.
// Expiry is normally observed lazily on read; this is an operator tool
// for tidying dashboards, not a scheduler.
var expireQuotesCmd = &cobra.Command{
	Use:   "expire",
	Short: "Mark all lapsed quotes as expired",
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, err := quoteService().ExpireQuotes(cmd.Context())
		if err != nil {
			return fmt.Errorf("expiry sweep failed: %w", err)
		}
		fmt.Printf("expired %d quote(s)\n", n)
		return nil
	},
}
