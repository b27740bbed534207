package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"campusdash/config"
	"campusdash/feed"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

func main() {
	if err := newPeekCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newPeekCmd(out io.Writer) *cobra.Command {
	var (
		panel   string
		noColor bool
		fixture bool
	)
	cmd := &cobra.Command{
		Use:   "peek",
		Short: "Fetch every panel once and print the series it would chart",
		Example: `  peek
  peek --panel daily-active-students
  peek --api-base-url http://localhost:5000 --no-color
  peek --fixture`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}
	flags := config.BindFlags(cmd.Flags())
	cmd.Flags().StringVar(&panel, "panel", "", "only fetch this panel")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&fixture, "fixture", false, "use the built-in fixture week instead of fetching")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if noColor {
			color.NoColor = true
		}
		cfg, err := config.NewLoader(flags).Load()
		if err != nil {
			return err
		}
		return peek(cmd.Context(), out, cfg, panel, fixture)
	}
	return cmd
}

func peek(ctx context.Context, out io.Writer, cfg *config.Config, only string, fixture bool) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ok := color.New(color.FgGreen, color.Bold)
	bad := color.New(color.FgRed, color.Bold)
	httpClient := &http.Client{}

	var failed, matched int
	for _, p := range cfg.Panels {
		if only != "" && p.Key != only {
			continue
		}
		matched++

		url, err := cfg.PanelURL(p)
		if err != nil {
			return err
		}

		start := time.Now()
		var raw feed.RawSample
		if fixture {
			url = "fixture"
			raw = feed.FixtureSample()
		} else {
			raw, err = feed.NewClient(url, httpClient, p.Timeout).Fetch(ctx)
		}
		if err == nil {
			var points []feedRow
			points, err = rows(raw, p, loc)
			if err == nil {
				ok.Fprintf(out, "✓ %s ", p.Key)
				fmt.Fprintf(out, "%d points from %s in %s\n", len(points), url, time.Since(start).Round(time.Millisecond))
				if err = renderTable(out, points); err != nil {
					return err
				}
				continue
			}
		}

		failed++
		bad.Fprintf(out, "✗ %s ", p.Key)
		fmt.Fprintf(out, "%s\n", err)
	}

	if matched == 0 {
		return fmt.Errorf("no panel named %q", only)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d panels failed", failed, matched)
	}
	return nil
}

type feedRow struct {
	key   string
	label string
	value float64
}

func rows(raw feed.RawSample, p config.PanelConfig, loc *time.Location) ([]feedRow, error) {
	points, err := feed.Transform(raw, p.ValueSource, loc)
	if err != nil {
		return nil, err
	}
	out := make([]feedRow, len(points))
	for i, point := range points {
		out[i] = feedRow{key: raw[i].Key, label: point.Label, value: point.Value}
	}
	return out, nil
}

func renderTable(w io.Writer, points []feedRow) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{PerColumn: []tw.Align{tw.AlignRight, tw.AlignLeft, tw.AlignLeft, tw.AlignRight}},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)

	data := make([][]string, 0, len(points))
	for i, p := range points {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			p.key,
			p.label,
			strconv.FormatFloat(p.value, 'f', -1, 64),
		})
	}

	table.Header("#", "Timestamp", "Label", "Value")
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
