// Command oimdp parses OpenITI mARkdown files from the command line.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/dgallion1/oimdp/internal/export"
	"github.com/dgallion1/oimdp/internal/openiti"
	"github.com/dgallion1/oimdp/internal/parser"
)

const version = "0.1.0"

// CLI defines the command-line interface for oimdp.
type CLI struct {
	Pdftotext bool `help:"Fall back to pdftotext when native PDF extraction finds no text." default:"true" negatable:""`

	Parse   ParseCmd   `cmd:"" help:"Parse a file and write it in another format"`
	Check   CheckCmd   `cmd:"" help:"Parse a file and report what was recognized and dropped"`
	Tags    TagsCmd    `cmd:"" help:"List the mARkdown tag lexicon"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// ParseCmd converts a file.
type ParseCmd struct {
	File   string `arg:"" help:"Path to the mARkdown, HTML, PDF or DOCX file" type:"existingfile"`
	Format string `short:"f" help:"Output format (json, yaml, markdown, html, csv, docx)" default:"json" enum:"json,yaml,markdown,md,html,csv,docx"`
	Out    string `short:"o" help:"Output path; defaults to stdout" type:"path"`
	Title  string `help:"Title for formats that show one; defaults to the BookTITLE metadata field"`
}

func (c *ParseCmd) Run(ctx *kong.Context, cli *CLI) error {
	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	res, err := parseFile(c.File, cli.Pdftotext)
	if err != nil {
		return err
	}

	title := c.Title
	if title == "" {
		title = res.Tree.Title
	}

	if c.Out == "" {
		if format == export.FormatDOCX {
			return fmt.Errorf("docx output needs --out")
		}
		return export.Write(ctx.Stdout, format, res.Document, title)
	}

	f, err := os.Create(c.Out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := export.Write(f, format, res.Document, title); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stderr, "Wrote %s (%s, %d content items)\n", c.Out, format, len(res.Document.Content))
	return nil
}

// CheckCmd reports on a file without converting it.
type CheckCmd struct {
	File    string `arg:"" help:"Path to the file to check" type:"existingfile"`
	Verbose bool   `short:"v" help:"List every dropped line"`
}

func (c *CheckCmd) Run(ctx *kong.Context, cli *CLI) error {
	res, err := parseFile(c.File, cli.Pdftotext)
	if err != nil {
		return err
	}
	st := res.Document.Stats()
	w := ctx.Stdout

	fmt.Fprintf(w, "Parsed %d content items\n", st.Items)
	fmt.Fprintf(w, "  Title: %s\n", res.Tree.Title)
	fmt.Fprintf(w, "  Metadata lines: %d\n", len(res.Document.Metadata))
	fmt.Fprintf(w, "  Lines: %d\n", st.Lines)
	fmt.Fprintf(w, "  Headers: %d\n", st.Headers)
	fmt.Fprintf(w, "  Pages: %d\n", st.Pages)
	fmt.Fprintf(w, "  Named entities: %d\n", st.Entities)

	types := make([]string, 0, len(st.ByType))
	for t := range st.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(w, "    %s: %d\n", t, st.ByType[t])
	}

	fmt.Fprintf(w, "Dropped %d lines\n", len(res.Drops))
	byReason := make(map[openiti.DropReason]int)
	for _, d := range res.Drops {
		byReason[d.Reason]++
	}
	for _, r := range []openiti.DropReason{openiti.DropMalformedPage, openiti.DropUnrecognized, openiti.DropEmptyLine} {
		if n := byReason[r]; n > 0 {
			fmt.Fprintf(w, "  %s: %d\n", r, n)
		}
	}
	if c.Verbose {
		for _, d := range res.Drops {
			fmt.Fprintf(w, "  line %d (%s): %s\n", d.Line, d.Reason, d.Text)
		}
	}
	return nil
}

// TagsCmd prints the tag lexicon in match order.
type TagsCmd struct {
	Group string `short:"g" help:"Only show tags in this group"`
}

func (c *TagsCmd) Run(ctx *kong.Context) error {
	tw := tabwriter.NewWriter(ctx.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tNAME\tLITERAL")
	for _, t := range openiti.Lexicon() {
		if c.Group != "" && !strings.EqualFold(c.Group, t.Group.String()) {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%q\n", t.Group, t.Name, t.Literal)
	}
	return tw.Flush()
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *kong.Context) error {
	fmt.Fprintf(ctx.Stdout, "oimdp version %s\n", version)
	return nil
}

func parseFile(path string, pdftotext bool) (*parser.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	res, err := parser.Parse(f, filepath.Base(path), parser.Options{FallbackPdftotext: pdftotext})
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return res, nil
}

func newParser(cli *CLI, stdout, stderr io.Writer, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("oimdp"),
		kong.Description("OpenITI mARkdown parser"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(stdout, stderr),
		kong.Bind(cli),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	k, err := newParser(&cli, os.Stdout, os.Stderr)
	if err != nil {
		panic(err)
	}
	ctx, err := k.Parse(os.Args[1:])
	k.FatalIfErrorf(err)
	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}
