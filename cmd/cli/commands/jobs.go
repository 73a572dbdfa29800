package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fixbid/fixbid/internal/db/models"
)

func init() {
	jobsCmd.AddCommand(listJobsCmd)
	jobsCmd.AddCommand(getJobCmd)

	// Add flags
	listJobsCmd.Flags().IntP("limit", "l", 0, "Limit the number of jobs returned")
	listJobsCmd.Flags().StringP("status", "s", "", "Filter jobs by status")

	getJobCmd.Flags().UintP("id", "i", 0, "Job ID to fetch")
	_ = getJobCmd.MarkFlagRequired("id")
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect marketplace jobs",
}

var listJobsCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		statusStr, _ := cmd.Flags().GetString("status")

		status := models.JobStatusUnknown
		if statusStr != "" {
			var err error
			status, err = models.ParseJobStatus(statusStr)
			if err != nil {
				return err
			}
		}

		jobs, err := jobRepo().List(cmd.Context(), status, 0, models.ListOptions{Limit: limit})
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}

		out, err := json.MarshalIndent(jobs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var getJobCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a job by ID",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, _ := cmd.Flags().GetUint("id")

		job, err := jobRepo().GetByID(cmd.Context(), id)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(job, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
