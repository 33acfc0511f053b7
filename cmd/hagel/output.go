package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/t0bias84/hagelskott/forum"
	"github.com/t0bias84/hagelskott/health"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var validFormats = []string{FormatText, FormatJSON, FormatYAML}

// printer writes command results to stdout in the selected format.
type printer struct {
	w      io.Writer
	format string
}

// newPrinter picks text for terminals and JSON for pipes unless format is set.
func newPrinter(w io.Writer, format string) (*printer, error) {
	format = strings.ToLower(format)
	if format == "" {
		format = FormatJSON
		if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			format = FormatText
		}
	}
	if !slices.Contains(validFormats, format) {
		return nil, fmt.Errorf("invalid output format %q: must be text, json or yaml", format)
	}
	return &printer{w: w, format: format}, nil
}

// print encodes v as JSON or YAML, or calls text for the text format.
func (p *printer) print(v any, text func(w io.Writer) error) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(p.w)
	}
}

func staleNote(w io.Writer, stale bool, fetchedAt time.Time) {
	if stale {
		fmt.Fprintf(w, "\n(offline: showing cached data from %s)\n", fetchedAt.Local().Format("2006-01-02 15:04"))
	}
}

func writeCategoryTable(w io.Writer, categories []forum.Category) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTHREADS\tPOSTS")
	for _, c := range categories {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", c.ID, c.Name, c.ThreadCount, c.PostCount)
	}
	return tw.Flush()
}

// writeTree prints the forest indented by depth.
func writeTree(w io.Writer, roots []*forum.Category) error {
	type frame struct {
		node  *forum.Category
		depth int
	}
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{roots[i], 0})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fmt.Fprintf(w, "%s%s (%d threads, %d posts) [%s]\n",
			strings.Repeat("  ", f.depth), f.node.Name, f.node.ThreadCount, f.node.PostCount, f.node.ID)
		for i := len(f.node.Subcategories) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Subcategories[i], f.depth + 1})
		}
	}
	return nil
}

func writeThreadTable(w io.Writer, threads []forum.Thread) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tCATEGORY\tAUTHOR\tREPLIES\tVIEWS\tLAST ACTIVITY")
	for _, t := range threads {
		last := "-"
		if !t.LastActivity.IsZero() {
			last = t.LastActivity.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n", t.Title, t.CategoryName, t.Author, t.ReplyCount, t.ViewCount, last)
	}
	return tw.Flush()
}

func writeCategory(w io.Writer, c *forum.Category) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	parent := "-"
	if c.ParentID != nil {
		parent = c.ParentID.String()
	}
	fmt.Fprintf(tw, "ID:\t%s\n", c.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", c.Name)
	if c.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", c.Description)
	}
	fmt.Fprintf(tw, "Parent:\t%s\n", parent)
	if c.Language != "" {
		fmt.Fprintf(tw, "Language:\t%s\n", c.Language)
	}
	fmt.Fprintf(tw, "Threads:\t%d\n", c.ThreadCount)
	fmt.Fprintf(tw, "Posts:\t%d\n", c.PostCount)
	return tw.Flush()
}

func writeReport(w io.Writer, report health.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "overall\t%s\t\n", report.Status)
	for _, r := range report.Checks {
		msg := r.Message
		if r.Err != nil && r.Err.Error() != msg {
			msg += ": " + r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.Status, msg)
	}
	return tw.Flush()
}
