package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/killallgit/textcast/internal/services/cleanup"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Inspect and maintain the episode store",
}

var storageStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show storage statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(appConfig, false)
		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}

		rows := [][]string{
			{"Episodes", fmt.Sprintf("%d / %d", stats.TotalEpisodes, stats.MaxEpisodes)},
			{"Total duration", formatDuration(stats.TotalDuration)},
			{"Total size", humanize.Bytes(uint64(stats.TotalSize))},
			{"Average duration", formatDuration(stats.AverageDuration)},
			{"Average size", humanize.Bytes(uint64(stats.AverageSize))},
			{"Downloads", humanize.Comma(int64(stats.TotalDownloads))},
		}
		if stats.Oldest != nil {
			rows = append(rows, []string{"Oldest", humanize.Time(*stats.Oldest)})
		}
		if stats.Newest != nil {
			rows = append(rows, []string{"Newest", humanize.Time(*stats.Newest)})
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
		return nil
	},
}

var storageVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare metadata against the audio directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(appConfig, false)
		report, err := store.VerifyIntegrity(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if report.Valid {
			fmt.Fprintln(out, "Storage is consistent.")
			return nil
		}
		for _, issue := range report.Issues {
			fmt.Fprintf(out, "  - %s\n", issue)
		}
		return fmt.Errorf("%d missing and %d orphaned file(s)", len(report.MissingFiles), len(report.OrphanedFiles))
	},
}

var storageCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove orphaned audio and stale scratch files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(appConfig, false)
		report, err := store.Maintenance(cmd.Context())
		if err != nil {
			return err
		}

		sweeper := cleanup.NewService(appConfig.Storage.AudioDir, appConfig.Storage.MetadataFile, appConfig.Storage.TempMaxAge, appConfig.Storage.CleanupInterval)
		scratch := sweeper.Sweep()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Removed %d orphaned audio file(s) and %d stale scratch artifact(s).\n", report.OrphansRemoved, scratch)
		for _, issue := range report.Issues {
			fmt.Fprintf(out, "  - %s\n", issue)
		}
		if !report.Valid {
			return fmt.Errorf("storage still has integrity issues")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storageCmd)
	storageCmd.AddCommand(storageStatsCmd, storageVerifyCmd, storageCleanupCmd)
}
