package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/quill/internal/collections"
	"github.com/Bitlatte/quill/internal/content"
	"github.com/Bitlatte/quill/internal/stats"
)

var (
	statsJSON bool
	statsAll  bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints writing statistics for the blog",
	Long: `The stats command measures every blog post (words, characters, paragraphs
and code blocks) and prints totals, averages and a per-year breakdown. Outside
production only the current year is measured unless --all is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := content.Load(appConfig.ContentDir)
		if err != nil {
			return err
		}
		c := collections.Build(items, collections.Options{Production: appConfig.Production || statsAll})

		if statsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(c.PostStats)
		}
		return printStats(cmd.OutOrStdout(), c.PostStats)
	},
}

func printStats(out io.Writer, s stats.Stats) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if s.PostCount == 0 {
		fmt.Fprintln(w, "No posts found.")
		return w.Flush()
	}

	fmt.Fprintf(w, "Posts\t%d\n", s.PostCount)
	fmt.Fprintf(w, "First post\t%s\n", s.FirstPostDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Last post\t%s\n", s.LastPostDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Words\t%d\n", s.TotalWordCount)
	fmt.Fprintf(w, "Code blocks\t%d\n", s.TotalCodeBlockCount)
	fmt.Fprintf(w, "Days between posts\t%.2f\n", s.AvgDays)
	fmt.Fprintf(w, "Words per post\t%.2f\n", s.AvgWordCount)
	fmt.Fprintf(w, "Characters per post\t%.2f\n", s.AvgCharacterCount)
	fmt.Fprintf(w, "Paragraphs per post\t%.2f\n", s.AvgParagraphCount)
	fmt.Fprintf(w, "Code blocks per post\t%.2f\n", s.AvgCodeBlockCount)
	fmt.Fprintf(w, "Most posts in a year\t%d\n", s.HighPostCount)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Year\tPosts\tWords\tCode blocks\tDays between\tWords/post")
	for _, y := range s.Years {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.2f\t%.2f\n", y.Year, y.PostCount, y.WordCount, y.CodeBlockCount, y.AvgDays, y.AvgWordCount)
	}
	return w.Flush()
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print the statistics as JSON")
	statsCmd.Flags().BoolVar(&statsAll, "all", false, "measure every year, not only the current one")
	rootCmd.AddCommand(statsCmd)
}
