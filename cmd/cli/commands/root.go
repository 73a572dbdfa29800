package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/fixbid/fixbid/internal/config"
	"github.com/fixbid/fixbid/internal/db"
	"github.com/fixbid/fixbid/internal/db/repos"
	"github.com/fixbid/fixbid/internal/logger"
	"github.com/fixbid/fixbid/internal/services"
)

// gdb is the shared database handle, opened by PersistentPreRunE
var gdb *gorm.DB

func init() {
	RootCmd.AddCommand(jobsCmd)
	RootCmd.AddCommand(quotesCmd)
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "fixbid",
	Short: "fixbid CLI - operator tooling for the fixbid marketplace",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		logger.InitializeAndConfigure()

		opts, err := config.DBOptions()
		if err != nil {
			return err
		}
		gdb, err = db.New(opts)
		return err
	},
}

func jobRepo() *repos.JobRepository {
	return repos.NewJobRepository(gdb)
}

func quoteService() *services.QuoteService {
	return services.NewQuoteService(gdb, jobRepo(), repos.NewQuoteRepository(gdb))
}
