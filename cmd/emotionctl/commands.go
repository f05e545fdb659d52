package main

import (
	"AlterMoodGo/analytics"
	"AlterMoodGo/export"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// reportOptions analyze/export/insights 共用的参数
type reportOptions struct {
	input      string
	alter      string
	period     string
	now        string
	timezone   string
	vocabulary string
}

func (o *reportOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.input, "input", "i", "-", "JSON array of emotion records, - for stdin")
	f.StringVar(&o.alter, "alter", "", "only use records of this alter")
	f.StringVarP(&o.period, "period", "p", "7d", "period: 7d, 30d, 90d, 1y, all")
	f.StringVar(&o.now, "now", "", "reference time (RFC3339), defaults to the current time")
	f.StringVar(&o.timezone, "tz", "UTC", "IANA time zone used for calendar days")
	f.StringVar(&o.vocabulary, "vocabulary", "", "YAML vocabulary file")
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "emotionctl",
		Short: "Offline emotion analytics for exported check-ins",
		Long: `emotionctl runs the emotion analytics engine over an exported JSON file.

Examples:
  emotionctl analyze -i records.json -p 30d
  emotionctl insights -i records.json --alter a1
  emotionctl export -i records.json -p 90d -o report.xlsx`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newAnalyzeCmd(), newInsightsCmd(), newExportCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print the full analytics report as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := opts.report(cmd.InOrStdin())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newInsightsCmd() *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Print pattern insights as plain text",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := opts.report(cmd.InOrStdin())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, in := range rep.Insights {
				fmt.Fprintf(out, "- %s\n", in.String())
			}
			return nil
		},
	}
	opts.bind(cmd)
	return cmd
}

func newExportCmd() *cobra.Command {
	opts := &reportOptions{}
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the analytics report to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := opts.report(cmd.InOrStdin())
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			defer f.Close()

			if err := export.WriteReport(f, opts.alter, rep); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVarP(&output, "out", "o", "report.xlsx", "output file")
	return cmd
}

// report 读取记录并生成报表
func (o *reportOptions) report(stdin io.Reader) (analytics.Report, error) {
	period, err := analytics.ParsePeriod(o.period)
	if err != nil {
		return analytics.Report{}, err
	}

	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return analytics.Report{}, fmt.Errorf("invalid time zone %q: %w", o.timezone, err)
	}

	now := time.Now()
	if o.now != "" {
		if now, err = time.Parse(time.RFC3339, o.now); err != nil {
			return analytics.Report{}, fmt.Errorf("invalid --now: %w", err)
		}
	}

	engineOpts := []analytics.Option{analytics.WithLocation(loc)}
	if o.vocabulary != "" {
		vf, err := os.Open(o.vocabulary)
		if err != nil {
			return analytics.Report{}, fmt.Errorf("failed to open vocabulary: %w", err)
		}
		defer vf.Close()
		vocab, err := analytics.LoadVocabulary(vf)
		if err != nil {
			return analytics.Report{}, err
		}
		engineOpts = append(engineOpts, analytics.WithVocabulary(vocab))
	}

	records, err := o.readRecords(stdin)
	if err != nil {
		return analytics.Report{}, err
	}

	engine := analytics.New(engineOpts...)
	w := analytics.NewWindows(now, period, loc, 30, analytics.Period30Days.Days())
	return engine.ReportFromHistory(records, w), nil
}

func (o *reportOptions) readRecords(stdin io.Reader) ([]analytics.Record, error) {
	r := stdin
	if o.input != "-" {
		f, err := os.Open(o.input)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var raws []analytics.RawRecord
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}

	if o.alter != "" {
		filtered := raws[:0]
		for _, raw := range raws {
			if raw.SubjectID == o.alter {
				filtered = append(filtered, raw)
			}
		}
		raws = filtered
	}

	return analytics.NormalizeAll(raws)
}
