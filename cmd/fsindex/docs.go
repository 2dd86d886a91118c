package main

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

type docsOpts struct {
	dir    string
	format string
	date   string
}

// docGenerators renders the whole command tree under root into dir.
var docGenerators = map[string]func(root *cobra.Command, dir string, date *time.Time) error{
	"man": func(root *cobra.Command, dir string, date *time.Time) error {
		return doc.GenManTree(root, &doc.GenManHeader{
			Title:   "FSINDEX",
			Section: "1",
			Manual:  "fsindex manual",
			Source:  "fsindex " + version,
			Date:    date,
		}, dir)
	},
	"markdown": func(root *cobra.Command, dir string, _ *time.Time) error {
		return doc.GenMarkdownTree(root, dir)
	},
	"rest": func(root *cobra.Command, dir string, _ *time.Time) error {
		return doc.GenReSTTree(root, dir)
	},
}

func docFormats() string {
	names := make([]string, 0, len(docGenerators))
	for name := range docGenerators {
		names = append(names, name)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}

var docs docsOpts

var docsCmd = &cobra.Command{
	Use:    "gen-docs",
	Short:  "Render fsindex reference pages",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return genDocs(cmd.Root(), docs)
	},
}

func init() {
	docsCmd.Flags().StringVar(&docs.dir, "dir", "docs", "output directory")
	docsCmd.Flags().StringVar(&docs.format, "format", "man", "output format ("+docFormats()+")")
	docsCmd.Flags().StringVar(&docs.date, "date", "", "man page date as YYYY-MM-DD (default: today)")
}

func genDocs(root *cobra.Command, o docsOpts) error {
	gen, ok := docGenerators[o.format]
	if !ok {
		return fmt.Errorf("unknown format %q (use %s)", o.format, docFormats())
	}

	var date *time.Time
	if o.date != "" {
		d, err := time.Parse(time.DateOnly, o.date)
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
		date = &d
	}

	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return gen(root, o.dir, date)
}
