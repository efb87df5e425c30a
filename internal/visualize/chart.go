package visualize

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"

	"github.com/Nao-Mk2/security-log-analyzer/internal/aggregate"
	"github.com/Nao-Mk2/security-log-analyzer/internal/model"
)

// Default panel size in pixels. The artifact is a 2x2 grid of panels.
const (
	DefaultPanelWidth  = 900
	DefaultPanelHeight = 720
)

type panelKind int

const (
	kindTable panelKind = iota
	kindBars
	kindPie
)

type panel struct {
	title    string
	field    string
	fallback string
	kind     panelKind
	col   int
	row   int
}

// Grid positions: source IPs top left, event
// table top right, destination IPs bottom left, severity pie bottom right.
// Text records have no source_ip, so that panel falls back to ip_address.
var panels = []panel{
	{title: "Source IP Addresses", field: model.FieldSourceIP, fallback: model.FieldIPAddress, kind: kindBars, col: 0, row: 0},
	{title: "Event Types", field: model.FieldEventType, kind: kindTable, col: 1, row: 0},
	{title: "Destination IP Addresses", field: model.FieldDestinationIP, kind: kindBars, col: 0, row: 1},
	{title: "Severity Levels", field: model.FieldSeverity, kind: kindPie, col: 1, row: 1},
}

// Renderer draws the summary figure.
type Renderer struct {
	PanelWidth  int
	PanelHeight int
	logger      *slog.Logger
}

// New returns a Renderer with default panel sizes. Omitted panels are
// reported on logger as warnings.
func New(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{PanelWidth: DefaultPanelWidth, PanelHeight: DefaultPanelHeight, logger: logger}
}

// Render draws records with a default Renderer and writes a PNG to path.
func Render(path string, records []model.LogRecord, logger *slog.Logger) error {
	return New(logger).Render(path, records)
}

// Render draws records and writes the figure to path as PNG. Panels that
// cannot be drawn are left blank; the file is written regardless.
func (r *Renderer) Render(path string, records []model.LogRecord) error {
	img, drawn := r.Draw(records)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	r.logger.Info("wrote visualization", "path", path, "panels", len(drawn))
	return nil
}

// Draw builds the figure in memory and returns the titles of the panels
// that were drawn.
func (r *Renderer) Draw(records []model.LogRecord) (image.Image, []string) {
	w, h := r.PanelWidth, r.PanelHeight
	canvas := image.NewRGBA(image.Rect(0, 0, 2*w, 2*h))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	var drawn []string
	for _, p := range panels {
		counts, field, err := p.aggregate(records)
		if err != nil || counts.Len() == 0 {
			attrs := []any{"panel", p.title, "field", field}
			if err != nil {
				attrs = append(attrs, "reason", err)
			}
			r.logger.Warn("no valid data for visualization", attrs...)
			continue
		}
		img, err := r.drawPanel(p, counts)
		if err != nil {
			r.logger.Warn("could not draw visualization", "panel", p.title, "error", err)
			continue
		}
		origin := image.Pt(p.col*w, p.row*h)
		draw.Draw(canvas, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))}, img, img.Bounds().Min, draw.Over)
		drawn = append(drawn, p.title)
	}
	return canvas, drawn
}

// aggregate counts the panel's field, retrying with the fallback field when
// some record lacks the primary one.
func (p panel) aggregate(records []model.LogRecord) (*aggregate.Counts, string, error) {
	counts, err := aggregate.Aggregate(records, p.field)
	if err != nil && p.fallback != "" {
		if fc, ferr := aggregate.Aggregate(records, p.fallback); ferr == nil {
			return fc, p.fallback, nil
		}
	}
	return counts, p.field, err
}

func (r *Renderer) drawPanel(p panel, counts *aggregate.Counts) (image.Image, error) {
	var buf bytes.Buffer
	var err error
	switch p.kind {
	case kindBars:
		err = renderBars(&buf, p.title, counts, r.PanelWidth, r.PanelHeight)
	case kindPie:
		err = renderPie(&buf, p.title, counts, r.PanelWidth, r.PanelHeight)
	default:
		err = renderTable(&buf, p.title, counts, r.PanelWidth, r.PanelHeight)
	}
	if err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}
