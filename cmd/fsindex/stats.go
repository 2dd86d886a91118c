package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bamsammich/fsindex/internal/store"
	"github.com/bamsammich/fsindex/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats <db>",
	Short: "Summarize a metadata database from a previous scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(args[0])
		if err != nil {
			return err
		}
		defer db.Close()

		sum, err := db.Summary(cmd.Context())
		if err != nil {
			return fmt.Errorf("summarize %s: %w", args[0], err)
		}
		printSummary(cmd.OutOrStdout(), sum)
		return nil
	},
}

func printSummary(out io.Writer, s store.Summary) {
	if root := s.Meta["root"]; root != "" {
		fmt.Fprintf(out, "Root:        %s\n", root)
	}
	if started := s.Meta["started"]; started != "" {
		fmt.Fprintf(out, "Started:     %s\n", started)
	}
	if s.Meta["interrupted"] == "true" {
		fmt.Fprintln(out, "Status:      interrupted (partial scan)")
	}
	fmt.Fprintf(out, "Records:     %s (%s dirs, %s files)\n",
		ui.FormatCount(s.Total), ui.FormatCount(s.Dirs), ui.FormatCount(s.Files))
	fmt.Fprintf(out, "Hidden:      %s\n", ui.FormatCount(s.Hidden))
	fmt.Fprintf(out, "Total size:  %s\n", ui.FormatBytes(s.Bytes))
	fmt.Fprintf(out, "Max depth:   %d\n", s.MaxDepth)

	section(out, "By depth", s.ByDepth)
	section(out, "By link type", s.ByLinkType)
	section(out, "Top extensions", s.Extensions)

	if len(s.Largest) > 0 {
		fmt.Fprintln(out, "\nLargest files")
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		for _, e := range s.Largest {
			fmt.Fprintf(tw, "  %s\t  %s\t\n", ui.FormatBytes(e.Size), e.FullPath)
		}
		tw.Flush()
	}
}

func section(out io.Writer, title string, rows []store.Count) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s\n", title)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "  %s\t%s\n", r.Key, ui.FormatCount(r.Count))
	}
	tw.Flush()
}
