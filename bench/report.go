package bench

import (
	"fmt"
	"io"
)

// WriteLatencyTable prints the latency comparison, one row per variant.
func (r *Report) WriteLatencyTable(w io.Writer) {
	fmt.Fprintf(w, "%-24s | %-12s | %-12s | %-12s | %-12s | %-12s | %-12s\n",
		"Variant", "Mean", "Std", "Min", "P50", "P95", "Max")
	for _, rec := range r.Latencies {
		fmt.Fprintf(w, "%-24s | %-12s | %-12s | %-12s | %-12s | %-12s | %-12s\n",
			rec.Label, rec.Mean, rec.Std, rec.Min, rec.P50, rec.P95, rec.Max)
	}
}

// WriteSizeReport prints each variant's static footprint in MB.
func (r *Report) WriteSizeReport(w io.Writer) {
	for _, rec := range r.Sizes {
		fmt.Fprintf(w, "%-24s | %8.3f MB (params %d B, buffers %d B)\n",
			rec.Label, rec.TotalMB(), rec.ParamBytes, rec.BufferBytes)
	}
}
