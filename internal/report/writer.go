package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/klauspost/compress/zstd"

	esterrors "github.com/kubeadapt/kubeadapt-estimator/internal/errors"
	"github.com/kubeadapt/kubeadapt-estimator/internal/observability"
	"github.com/kubeadapt/kubeadapt-estimator/pkg/model"
)

// Stats describes one written document.
type Stats struct {
	RawBytes        int64
	CompressedBytes int64 // equals RawBytes when compression is off
}

// Writer encodes documents as indented JSON, optionally zstd-compressed.
type Writer struct {
	level   int
	metrics *observability.Metrics
}

// NewWriter creates a Writer. level 0 disables compression; 1-4 select the
// zstd encoder level from fastest to best. metrics may be nil.
func NewWriter(level int, metrics *observability.Metrics) *Writer {
	return &Writer{level: level, metrics: metrics}
}

// Encode writes v to dst. The JSON is streamed through the encoder without
// buffering the whole document.
func (w *Writer) Encode(dst io.Writer, v any) (Stats, error) {
	out := NewCountingWriter(dst)

	var (
		zw  *zstd.Encoder
		raw *CountingWriter
		err error
	)
	if w.level > 0 {
		zw, err = zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.EncoderLevel(w.level)))
		if err != nil {
			return Stats{}, writeFailed("create zstd encoder", err)
		}
		raw = NewCountingWriter(zw)
	} else {
		raw = out
	}

	enc := json.NewEncoder(raw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		if zw != nil {
			zw.Close()
		}
		return Stats{}, writeFailed("encode document", err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return Stats{}, writeFailed("flush zstd encoder", err)
		}
	}

	stats := Stats{RawBytes: raw.Count(), CompressedBytes: out.Count()}
	if w.metrics != nil {
		w.metrics.ReportSizeBytes.WithLabelValues("raw").Set(float64(stats.RawBytes))
		w.metrics.ReportSizeBytes.WithLabelValues("compressed").Set(float64(stats.CompressedBytes))
	}
	return stats, nil
}

// WriteFile encodes v to path, or to stdout when path is "" or "-".
func (w *Writer) WriteFile(path string, v any) (Stats, error) {
	if path == "" || path == "-" {
		return w.Encode(os.Stdout, v)
	}

	f, err := os.Create(path)
	if err != nil {
		return Stats{}, writeFailed("create "+path, err)
	}
	stats, err := w.Encode(f, v)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = writeFailed("close "+path, closeErr)
	}
	return stats, err
}

func writeFailed(message string, err error) error {
	return esterrors.New(esterrors.ErrReportWriteFailed, "report", message, err)
}

// WriteText renders a savings report as an aligned plain-text table.
func WriteText(dst io.Writer, r model.SavingsReport) error {
	tw := tabwriter.NewWriter(dst, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Cluster:\t%s (%s)\n", r.ClusterName, r.ClusterID)
	fmt.Fprintf(tw, "Region:\t%s\n", r.Region)
	fmt.Fprintln(tw)

	from := make([]string, 0, len(r.Conversions))
	for k := range r.Conversions {
		from = append(from, k)
	}
	sort.Strings(from)
	if len(from) == 0 {
		fmt.Fprintln(tw, "Conversions:\tnone")
	} else {
		fmt.Fprintln(tw, "Conversions:")
		for _, k := range from {
			fmt.Fprintf(tw, "  %s\t-> %s\n", k, r.Conversions[k])
		}
	}
	fmt.Fprintln(tw)

	currency := r.Currency
	if currency == "" {
		currency = "USD"
	}
	fmt.Fprintf(tw, "\tSource\tTarget\n")
	fmt.Fprintf(tw, "Instances\t%d\t%d\n", r.Source.InstanceCount, r.Target.InstanceCount)
	fmt.Fprintf(tw, "Worker nodes\t%d\t%d\n", r.Source.WorkerNodeCount, r.Target.WorkerNodeCount)
	if r.Source.HardwareResolved && r.Target.HardwareResolved {
		fmt.Fprintf(tw, "vCPUs\t%d\t%d\n", r.Source.TotalVCPUs, r.Target.TotalVCPUs)
		fmt.Fprintf(tw, "GPUs\t%d\t%d\n", r.Source.TotalGPUs, r.Target.TotalGPUs)
	}
	fmt.Fprintf(tw, "Cost/hour (%s)\t%.4f\t%.4f\n", currency, r.SourceCost, r.TargetCost)
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Savings/hour:\t%.4f (%.2f%%)\n", r.Savings, r.SavingsPercent)

	for _, w := range r.Warnings {
		fmt.Fprintf(tw, "Warning:\t%s\n", w)
	}
	return tw.Flush()
}
