package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/erpdeploy/internal/config"
	"github.com/imamik/erpdeploy/internal/metrics"
	"github.com/imamik/erpdeploy/internal/platform/runner"
	"github.com/imamik/erpdeploy/internal/platform/s3"
	"github.com/imamik/erpdeploy/internal/provisioning"
)

// Colors matching internal/ui/tui/styles.go palette.
var (
	reportColorGreen  = lipgloss.Color("#22c55e")
	reportColorYellow = lipgloss.Color("#eab308")
	reportColorRed    = lipgloss.Color("#ef4444")
	reportColorBlue   = lipgloss.Color("#3b82f6")
	reportColorDim    = lipgloss.Color("#6b7280")
	reportColorWhite  = lipgloss.Color("#f9fafb")
)

var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(reportColorWhite)

	reportDimStyle = lipgloss.NewStyle().
			Foreground(reportColorDim)

	reportStatusStyles = map[provisioning.StepStatus]lipgloss.Style{
		provisioning.StatusExecuted: lipgloss.NewStyle().Foreground(reportColorGreen),
		provisioning.StatusSkipped:  lipgloss.NewStyle().Foreground(reportColorDim),
		provisioning.StatusPlanned:  lipgloss.NewStyle().Foreground(reportColorBlue),
		provisioning.StatusFailed:   lipgloss.NewStyle().Foreground(reportColorRed),
	}

	reportRemedyStyle = lipgloss.NewStyle().
				Foreground(reportColorYellow)
)

// reportUploader stores a report object. Implemented by *s3.Client.
type reportUploader interface {
	UploadReport(ctx context.Context, bucket, key string, data []byte) error
}

var (
	// newReportUploader creates the S3 client for report.s3.
	newReportUploader = func(ctx context.Context, opts s3.Options) (reportUploader, error) {
		return s3.NewClient(ctx, opts)
	}

	// writeLocalFile writes the JSON report on the machine running erpdeploy.
	writeLocalFile = os.WriteFile
)

// renderReport produces a lipgloss-styled summary of a run.
func renderReport(report *provisioning.Report, domain string) string {
	var b strings.Builder

	title := fmt.Sprintf("  erpdeploy: %s (%s)", domain, report.Target)
	if report.DryRun {
		title += " [plan]"
	}
	b.WriteString("\n")
	b.WriteString(reportTitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(reportDimStyle.Render("  " + strings.Repeat("═", 40)))
	b.WriteString("\n\n")

	width := 0
	for _, r := range report.Steps {
		width = max(width, len(r.Step))
	}

	for _, r := range report.Steps {
		style, ok := reportStatusStyles[r.Status]
		if !ok {
			style = reportDimStyle
		}
		status := style.Render(fmt.Sprintf("%-8s", r.Status))
		fmt.Fprintf(&b, "  %s  %-*s  %s\n", status, width, r.Step, reportDimStyle.Render(r.Reason))
		if r.Error != "" {
			fmt.Fprintf(&b, "            %s\n", reportStatusStyles[provisioning.StatusFailed].Render(r.Error))
		}
		if r.Status == provisioning.StatusFailed && r.Remediation != "" {
			fmt.Fprintf(&b, "            %s\n", reportRemedyStyle.Render("fix: "+r.Remediation))
		}
	}

	b.WriteString("\n")
	b.WriteString(reportDimStyle.Render("  " + strings.Repeat("─", 40)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %d executed, %d skipped, %d failed", report.Executed(), report.Skipped(), report.Failed())
	if report.DryRun {
		fmt.Fprintf(&b, ", %d planned", report.Planned())
	}
	fmt.Fprintf(&b, " in %s\n", report.Duration().Round(time.Millisecond))
	if report.AbortedAt != "" {
		b.WriteString(reportStatusStyles[provisioning.StatusFailed].Render(
			fmt.Sprintf("  aborted at %s; later steps did not run", report.AbortedAt)))
		b.WriteString("\n")
	}

	return b.String()
}

// publishReport writes the report to every configured sink. Sinks are
// best effort: a failure is logged and never changes the run's outcome.
func publishReport(ctx context.Context, cfg *config.Config, r runner.Runner, report *provisioning.Report) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Printf("Warning: failed to encode report: %v", err)
		return
	}

	if path := cfg.Report.JSONFile; path != "" {
		if err := writeLocalFile(path, append(data, '\n'), 0600); err != nil {
			log.Printf("Warning: failed to write report to %s: %v", path, err)
		} else {
			log.Printf("Report written to %s", path)
		}
	}

	if report.DryRun {
		return
	}

	if path := cfg.Report.MetricsFile; path != "" {
		if err := writeMetrics(ctx, r, path, report); err != nil {
			log.Printf("Warning: failed to write metrics to %s: %v", path, err)
		}
	}

	if cfg.Report.S3.Bucket != "" {
		if err := uploadReport(ctx, cfg.Report.S3, report, data); err != nil {
			log.Printf("Warning: failed to upload report: %v", err)
		}
	}
}

// writeMetrics stores the run metrics on the target, where the
// node-exporter textfile collector picks them up.
func writeMetrics(ctx context.Context, r runner.Runner, path string, report *provisioning.Report) error {
	recorder := metrics.NewRecorder(report.Target)
	recorder.Record(report)
	data, err := recorder.Encode()
	if err != nil {
		return err
	}
	return r.WriteFile(ctx, path, data, 0644)
}

// uploadReport archives the JSON report in an S3-compatible bucket.
func uploadReport(ctx context.Context, s3cfg config.S3Config, report *provisioning.Report, data []byte) error {
	client, err := newReportUploader(ctx, s3.Options{
		Endpoint:  s3cfg.Endpoint,
		Region:    s3cfg.Region,
		AccessKey: s3cfg.AccessKey,
		SecretKey: s3cfg.SecretKey,
		PathStyle: s3cfg.PathStyle,
	})
	if err != nil {
		return err
	}

	key := s3.ReportKey(s3cfg.Prefix, report.Target, report.StartedAt)
	if err := client.UploadReport(ctx, s3cfg.Bucket, key, data); err != nil {
		return err
	}
	log.Printf("Report uploaded to s3://%s/%s", s3cfg.Bucket, key)
	return nil
}
