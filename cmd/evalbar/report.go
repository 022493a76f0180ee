package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/evalbar/internal/codec"
	"github.com/discochess/evalbar/internal/report"
	"github.com/discochess/evalbar/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report [FILE|URL]",
	Short: "Summarize a report written by analyze",
	Long: `Read a report written by "evalbar analyze --out" and print its summary
as Markdown. The report may be a local file or an archived object
(gs://bucket/name or s3://bucket/name). Compressed reports (.zst, .gz) are
detected by extension.

Examples:
  evalbar report report.jsonl.zst
  evalbar report gs://my-bucket/reports/opera.jsonl.zst`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	records, err := loadReport(cmd, args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("report %q holds no records", args[0])
	}
	return report.Summarize(records).WriteMarkdown(cmd.OutOrStdout())
}

func loadReport(cmd *cobra.Command, src string) ([]report.Record, error) {
	loc, err := parseArchive(src)
	if err != nil {
		return nil, err
	}
	if !loc.IsRemote() {
		return report.ReadFile(loc.Path)
	}

	ctx := cmd.Context()
	st, err := openArchive(ctx, loc, "", "")
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer st.Close()
	return fetchReport(ctx, st, loc.Path)
}

// fetchReport reads the archived report name from st.
func fetchReport(ctx context.Context, st store.Store, name string) ([]report.Record, error) {
	rc, err := st.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", name, err)
	}
	defer rc.Close()
	return report.Read(rc, codec.ForPath(name, report.DefaultCodecs()...))
}
