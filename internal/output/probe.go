package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/kedare/reeltrend/internal/probe"
)

// ProbeResult is the JSON shape of a connectivity probe.
type ProbeResult struct {
	OK     bool          `json:"ok"`
	Error  string        `json:"error,omitempty"`
	Report *probe.Report `json:"report,omitempty"`
}

// DisplayProbe renders the outcome of a connectivity probe.
func DisplayProbe(report *probe.Report, probeErr error, format string) error {
	result := ProbeResult{OK: probeErr == nil, Report: report}
	if probeErr != nil {
		result.Error = probeErr.Error()
	}

	if strings.ToLower(format) == FormatJSON {
		return displayJSON(result)
	}

	w := writer()
	colorize := colorEnabled()

	if !result.OK {
		icon := "✗"
		if colorize {
			icon = text.FgRed.Sprint(icon)
		}

		fmt.Fprintf(w, "%s Connection failed: %s\n", icon, result.Error)

		return nil
	}

	icon := "✓"
	if colorize {
		icon = text.FgGreen.Sprint(icon)
	}

	fmt.Fprintf(w, "%s Connected to %s/%s in %s\n", icon, report.Database, report.Table, report.Latency.Round(time.Millisecond))
	fmt.Fprintf(w, "  Total rows: %d\n", report.Total)

	if len(report.Preview) > 0 {
		fmt.Fprintln(w, "  Preview:")
		for _, line := range report.Preview {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}

	return nil
}
