package sweep

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderChart writes an HTML page plotting success rate against signature
// count, one line per nonce bit-length.
func RenderChart(w io.Writer, report *Report) error {
	if report == nil || len(report.Cells) == 0 {
		return fmt.Errorf("empty report")
	}

	counts := signatureCounts(report)
	index := make(map[int]int, len(counts))
	for i, n := range counts {
		index[n] = i
	}

	title := fmt.Sprintf("Lattice attack success rate (%s)", report.Group)
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "digest " + report.Digest}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Signatures", Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Success rate (%)", Type: "value", Min: 0, Max: 100}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(counts)

	for _, bits := range report.BitLengths() {
		items := make([]opts.LineData, len(counts))
		for i := range items {
			// echarts treats "-" as a missing point.
			items[i] = opts.LineData{Value: "-"}
		}
		for _, c := range report.Series(bits) {
			items[index[c.Signatures]] = opts.LineData{Value: c.Rate}
		}
		line.AddSeries(fmt.Sprintf("%d bits", bits), items)
	}

	page := components.NewPage().SetPageTitle(title)
	page.AddCharts(line)
	return page.Render(w)
}

func signatureCounts(report *Report) []int {
	seen := make(map[int]bool)
	var counts []int
	for _, c := range report.Cells {
		if !seen[c.Signatures] {
			seen[c.Signatures] = true
			counts = append(counts, c.Signatures)
		}
	}
	sort.Ints(counts)
	return counts
}
