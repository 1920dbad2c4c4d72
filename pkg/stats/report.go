package stats

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var rule = strings.Repeat("=", 30)

// PrintSequential writes the sequential run summary.
func PrintSequential(w io.Writer, rec Record, outputDir string) {
	fmt.Fprintln(w, strings.Repeat("-", 30))
	fmt.Fprintf(w, "Sequential Processing Time: %.2f seconds\n", rec.Elapsed.Seconds())
	fmt.Fprintf(w, "Images processed: %d (failed: %d)\n", rec.Processed, rec.Failed)
	fmt.Fprintf(w, "Processed images saved to '%s'\n", outputDir)
}

// PrintSpeedupTable writes one row per pool-size trial.
func PrintSpeedupTable(w io.Writer, records []Record) {
	fmt.Fprintf(w, "\n%s\n      Speedup Table\n%s\n", rule, rule)
	fmt.Fprintf(w, "%-8s | %-10s | %-8s | %-10s\n", "Workers", "Time (s)", "Speedup", "Efficiency")
	fmt.Fprintln(w, strings.Repeat("-", 46))
	for _, r := range records {
		fmt.Fprintf(w, "%-8d | %-10.2f | %-7.2fx | %-10.2f\n", r.Workers, r.Elapsed.Seconds(), r.Speedup, r.Efficiency)
	}
	fmt.Fprintln(w, rule)
}

// PrintDistributed writes the per-node lines and the aggregate.
func PrintDistributed(w io.Writer, r *Report) {
	fmt.Fprintf(w, "\n%s\n      Distributed Simulation Summary\n%s\n", rule, rule)
	for _, rec := range r.Records {
		fmt.Fprintf(w, "%s processed %d images in %.1fs\n", rec.Context, rec.Processed, rec.Elapsed.Seconds())
	}
	fmt.Fprintf(w, "Baseline sequential time: %.2fs\n", r.Baseline.Seconds())
	fmt.Fprintf(w, "Total distributed time: %.1fs (%s of node times)\n", r.Total.Seconds(), r.CombineRule)
	fmt.Fprintf(w, "Efficiency: %.2fx over sequential\n", r.Efficiency)
	if n := len(r.Records); n > 0 {
		fmt.Fprintf(w, "Per-node efficiency: %.2f\n", r.Efficiency/float64(n))
	}
	fmt.Fprintln(w, rule)
}

// WriteText renders the report as a plain-text block.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s Results ===\n", r.Runner)
	fmt.Fprintf(&b, "Run ID: %s\n", r.RunID)
	fmt.Fprintf(&b, "Timestamp: %s\n", r.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Input directory: %s\n", r.InputDir)
	fmt.Fprintf(&b, "Output directory: %s\n", r.OutputDir)
	fmt.Fprintf(&b, "Images: %d\n", r.Images)

	for _, rec := range r.Records {
		fmt.Fprintf(&b, "%s: processed %d, failed %d, time %.2fs", rec.Context, rec.Processed, rec.Failed, rec.Elapsed.Seconds())
		if rec.Speedup > 0 {
			fmt.Fprintf(&b, ", speedup %.2fx, efficiency %.2f", rec.Speedup, rec.Efficiency)
		}
		b.WriteString("\n")
	}

	if r.Total > 0 {
		fmt.Fprintf(&b, "Baseline time: %.2fs\n", r.Baseline.Seconds())
		fmt.Fprintf(&b, "Total distributed time: %.2fs (%s)\n", r.Total.Seconds(), r.CombineRule)
		fmt.Fprintf(&b, "Efficiency: %.2fx\n", r.Efficiency)
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// AppendReport appends the report to path, creating the file and its
// directory if needed.
func AppendReport(path string, r *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open report file: %w", err)
	}

	if err := r.WriteText(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return file.Close()
}
