package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/rivo/tview"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/results"
)

var (
	seriesMarkers = []rune{'●', '■', '▲', '◆', '✚', '✖', '○', '□', '△', '◇', '*', '+'}
	seriesColors  = []string{"red", "green", "yellow", "blue", "magenta", "cyan", "white", "orange", "purple", "lime", "teal", "pink"}
)

const yLabelWidth = 9

// chartGrid is a log-log scatter rasterized to cells. A cell holds the index
// of the series plotted there, or -1.
type chartGrid struct {
	cells      [][]int
	minX, maxX float64
	minY, maxY float64
	series     []string
}

// plotGrid places every completed measurement of t at
// (log10 n, log10 seconds) on a width x height grid. Row 0 is the top.
func plotGrid(t *results.Table, width, height int) (chartGrid, bool) {
	type point struct {
		x, y   float64
		series int
	}
	g := chartGrid{
		minX: math.Inf(1), maxX: math.Inf(-1),
		minY: math.Inf(1), maxY: math.Inf(-1),
	}

	var points []point
	for _, alg := range t.Algorithms() {
		idx := -1
		for _, r := range t.ForAlgorithm(alg).Rows() {
			if r.Failed() || r.MedianSeconds <= 0 || r.N < 1 {
				continue
			}
			if idx < 0 {
				idx = len(g.series)
				g.series = append(g.series, alg)
			}
			p := point{x: math.Log10(float64(r.N)), y: math.Log10(r.MedianSeconds), series: idx}
			g.minX, g.maxX = math.Min(g.minX, p.x), math.Max(g.maxX, p.x)
			g.minY, g.maxY = math.Min(g.minY, p.y), math.Max(g.maxY, p.y)
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		return g, false
	}
	if g.maxX == g.minX {
		g.minX, g.maxX = g.minX-0.5, g.maxX+0.5
	}
	if g.maxY == g.minY {
		g.minY, g.maxY = g.minY-0.5, g.maxY+0.5
	}

	g.cells = make([][]int, height)
	for i := range g.cells {
		g.cells[i] = make([]int, width)
		for j := range g.cells[i] {
			g.cells[i][j] = -1
		}
	}
	for _, p := range points {
		col := int(math.Round((p.x - g.minX) / (g.maxX - g.minX) * float64(width-1)))
		row := height - 1 - int(math.Round((p.y-g.minY)/(g.maxY-g.minY)*float64(height-1)))
		g.cells[row][col] = p.series
	}
	return g, true
}

// RenderLogLog draws the completed measurements of t as a colored log-log
// scatter with one marker per algorithm and a legend underneath.
func RenderLogLog(t *results.Table, width, height int) string {
	width = max(width, 10)
	height = max(height, 5)

	g, ok := plotGrid(t, width, height)
	if !ok {
		return "[dim]No completed measurements[white]"
	}

	var b strings.Builder
	for row, cells := range g.cells {
		switch row {
		case 0:
			fmt.Fprintf(&b, "%*s │", yLabelWidth-2, secondsLabel(g.maxY))
		case height / 2:
			fmt.Fprintf(&b, "%*s │", yLabelWidth-2, secondsLabel((g.maxY+g.minY)/2))
		case height - 1:
			fmt.Fprintf(&b, "%*s │", yLabelWidth-2, secondsLabel(g.minY))
		default:
			fmt.Fprintf(&b, "%*s │", yLabelWidth-2, "")
		}
		for _, s := range cells {
			if s < 0 {
				b.WriteByte(' ')
				continue
			}
			fmt.Fprintf(&b, "[%s]%c[white]", seriesColors[s%len(seriesColors)], seriesMarkers[s%len(seriesMarkers)])
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "%*s └%s\n", yLabelWidth-2, "", strings.Repeat("─", width))
	left := fmt.Sprintf("n=%d", int(math.Round(math.Pow(10, g.minX))))
	right := fmt.Sprintf("n=%d", int(math.Round(math.Pow(10, g.maxX))))
	gap := max(width-len(left)-len(right), 1)
	fmt.Fprintf(&b, "%*s  %s%s%s\n\n", yLabelWidth-2, "", left, strings.Repeat(" ", gap), right)

	for i, name := range g.series {
		fmt.Fprintf(&b, "[%s]%c[white] %s  ", seriesColors[i%len(seriesColors)], seriesMarkers[i%len(seriesMarkers)], tview.Escape(name))
	}
	return b.String()
}

func secondsLabel(log10Seconds float64) string {
	return fmt.Sprintf("%.0es", math.Pow(10, log10Seconds))
}
