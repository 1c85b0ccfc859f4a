package cmd

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/killallgit/textcast/internal/models"
)

var episodesLimit int

var episodesCmd = &cobra.Command{
	Use:   "episodes",
	Short: "Inspect and manage stored episodes",
}

var episodesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List episodes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(appConfig, false)
		episodes, err := store.ListRecent(cmd.Context(), episodesLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(episodes) == 0 {
			fmt.Fprintln(out, "No episodes.")
			return nil
		}

		rows := make([][]string, 0, len(episodes))
		for _, ep := range episodes {
			rows = append(rows, []string{
				ep.ID,
				ep.Title,
				formatDuration(ep.Duration),
				humanize.Bytes(uint64(ep.FileSize)),
				humanize.Time(ep.CreatedAt),
				strconv.Itoa(ep.DownloadCount),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"ID", "Title", "Duration", "Size", "Created", "Downloads"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignRight},
		))
		return nil
	},
}

var episodesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one episode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(appConfig, false)
		ep, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printEpisode(cmd, ep)
		return nil
	},
}

var episodesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an episode and its audio file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(appConfig, false)
		deleted, err := store.Delete(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("episode %s not found", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted episode %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(episodesCmd)
	episodesCmd.AddCommand(episodesListCmd, episodesShowCmd, episodesDeleteCmd)

	episodesListCmd.Flags().IntVarP(&episodesLimit, "limit", "n", 0, "show at most this many episodes")
}

func printEpisode(cmd *cobra.Command, ep *models.Episode) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:         %s\n", ep.ID)
	fmt.Fprintf(out, "Title:      %s\n", ep.Title)
	fmt.Fprintf(out, "File:       %s\n", ep.FilePath)
	fmt.Fprintf(out, "Duration:   %s\n", formatDuration(ep.Duration))
	fmt.Fprintf(out, "Size:       %s\n", humanize.Bytes(uint64(ep.FileSize)))
	fmt.Fprintf(out, "Created:    %s (%s)\n", ep.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(ep.CreatedAt))
	fmt.Fprintf(out, "Source:     %s\n", ep.SourceType)
	if ep.SourceURL != "" {
		fmt.Fprintf(out, "Source URL: %s\n", ep.SourceURL)
	}
	fmt.Fprintf(out, "Downloads:  %d\n", ep.DownloadCount)
}
