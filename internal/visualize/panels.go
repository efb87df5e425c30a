package visualize

import (
	"fmt"
	"io"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Nao-Mk2/security-log-analyzer/internal/aggregate"
)

var palette = []drawing.Color{
	drawing.ColorFromHex("e41a1c"),
	drawing.ColorFromHex("377eb8"),
	drawing.ColorFromHex("4daf4a"),
	drawing.ColorFromHex("984ea3"),
	drawing.ColorFromHex("ff7f00"),
	drawing.ColorFromHex("a65628"),
	drawing.ColorFromHex("f781bf"),
	drawing.ColorFromHex("999999"),
}

func renderBars(w io.Writer, title string, counts *aggregate.Counts, width, height int) error {
	buckets := counts.Sorted()
	bars := make([]chart.Value, 0, len(buckets))
	maxCount := 0
	for i, b := range buckets {
		c := palette[i%len(palette)]
		bars = append(bars, chart.Value{
			Label: b.Value,
			Value: float64(b.Count),
			Style: chart.Style{FillColor: c, StrokeColor: c},
		})
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	barWidth := (width - 120) / (2 * len(bars))
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 4 {
		barWidth = 4
	}
	bc := chart.BarChart{
		Title:    title,
		Width:    width,
		Height:   height,
		BarWidth: barWidth,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		YAxis: chart.YAxis{
			Name:  "Event Count",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount)},
		},
		Bars: bars,
	}
	return bc.Render(chart.PNG, w)
}

func renderPie(w io.Writer, title string, counts *aggregate.Counts, width, height int) error {
	total := float64(counts.Total())
	values := make([]chart.Value, 0, counts.Len())
	for i, b := range counts.Buckets() {
		c := palette[i%len(palette)]
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%.1f%%)", b.Value, float64(b.Count)/total*100),
			Value: float64(b.Count),
			Style: chart.Style{FillColor: c},
		})
	}
	pie := chart.PieChart{
		Title:  title,
		Width:  width,
		Height: height,
		Values: values,
	}
	return pie.Render(chart.PNG, w)
}

const (
	tableFontSize  = 15.0
	tableRowHeight = 34
	tableMargin    = 40
)

// renderTable draws a two column table of values sorted by count.
func renderTable(w io.Writer, title string, counts *aggregate.Counts, width, height int) error {
	r, err := chart.PNG(width, height)
	if err != nil {
		return err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetDPI(chart.DefaultDPI)
	r.SetFont(font)
	r.SetFontColor(drawing.ColorBlack)
	r.SetStrokeColor(drawing.ColorBlack)
	r.SetStrokeWidth(1)

	left, right := tableMargin, width-tableMargin
	mid := left + (right-left)*2/3

	r.SetFontSize(tableFontSize + 3)
	tb := r.MeasureText(title)
	r.Text(title, (width-tb.Width())/2, tableMargin)

	rows := [][2]string{{"Event Type", "Event Count"}}
	for _, b := range counts.Sorted() {
		rows = append(rows, [2]string{b.Value, strconv.Itoa(b.Count)})
	}

	top := tableMargin + 20
	maxRows := (height - top - tableMargin) / tableRowHeight
	if len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	r.SetFontSize(tableFontSize)
	for i, row := range rows {
		y := top + i*tableRowHeight
		line(r, left, y, right, y)
		textY := y + tableRowHeight - 10
		r.Text(row[0], left+10, textY)
		r.Text(row[1], mid+10, textY)
		if i == 0 {
			// Emulate a bold header by overdrawing with a one pixel offset.
			r.Text(row[0], left+11, textY)
			r.Text(row[1], mid+11, textY)
		}
	}
	bottom := top + len(rows)*tableRowHeight
	line(r, left, bottom, right, bottom)
	line(r, left, top, left, bottom)
	line(r, mid, top, mid, bottom)
	line(r, right, top, right, bottom)

	return r.Save(w)
}

func line(r chart.Renderer, x0, y0, x1, y1 int) {
	r.MoveTo(x0, y0)
	r.LineTo(x1, y1)
	r.Stroke()
}
