package formatter

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/penwyp/go-trace-monitor/internal/application/capture"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

var csvHeaders = []string{
	"Index", "Depth", "Type", "Title", "Category",
	"Start", "Duration", "Self", "CPU",
	"Left", "Width", "WidthWithChildren", "Collapsed",
}

// Format writes one line per materialized row. Times are in seconds.
func (f *CSVFormatter) Format(w io.Writer, snap capture.Snapshot) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeaders); err != nil {
		return err
	}
	for _, r := range snap.Rows() {
		record := []string{
			strconv.Itoa(r.Index),
			strconv.Itoa(r.Depth),
			r.Type.String(),
			strings.Repeat("  ", r.Depth) + r.Title,
			r.Category.String(),
			formatFloat(r.StartTime),
			formatFloat(r.Duration),
			formatFloat(r.SelfTime),
			formatFloat(r.CPUTime),
			formatFloat(r.Geometry.Left),
			formatFloat(r.Geometry.Width),
			formatFloat(r.Geometry.WidthWithChildren),
			strconv.FormatBool(r.Collapsed),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
