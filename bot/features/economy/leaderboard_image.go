package economy

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"

	"guildgreeter/bot/common"
)

// LeaderboardRow is one line of the rendered /richest card
type LeaderboardRow struct {
	Rank     int
	Name     string
	Wallet   int64
	Bank     int64
	IsCaller bool
}

type column struct {
	header string
	x      float64
	rgb    [3]float64
}

// LeaderboardImageGenerator renders the leaderboard as a PNG card
type LeaderboardImageGenerator struct {
	width     int
	minHeight int
	padding   int
	rowHeight int
}

// NewLeaderboardImageGenerator creates a generator with the default layout
func NewLeaderboardImageGenerator() *LeaderboardImageGenerator {
	return &LeaderboardImageGenerator{
		width:     420,
		minHeight: 120,
		padding:   15,
		rowHeight: 26,
	}
}

// Generate draws rows and returns the encoded PNG
func (g *LeaderboardImageGenerator) Generate(rows []LeaderboardRow) ([]byte, error) {
	start := time.Now()
	defer func() {
		log.WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("row_count", len(rows)).
			Debug("Leaderboard image generation completed")
	}()

	pad := float64(g.padding)
	columns := []column{
		{header: "#", x: pad, rgb: [3]float64{0.85, 0.85, 0.9}},
		{header: "Member", x: pad + 30, rgb: [3]float64{1, 1, 1}},
		{header: "Wallet", x: pad + 190, rgb: [3]float64{0.85, 1, 0.85}},
		{header: "Bank", x: pad + 260, rgb: [3]float64{0.85, 0.85, 1}},
		{header: "Total", x: pad + 330, rgb: [3]float64{1, 0.92, 0.6}},
	}

	// header band, rows, bottom padding
	height := 25 + 30 + len(rows)*g.rowHeight + 15
	if height < g.minHeight {
		height = g.minHeight
	}

	dc := gg.NewContext(g.width, height)
	for y := 0; y < height; y++ {
		t := float64(y) / float64(height)
		dc.SetRGB(0.03+t*0.03, 0.03+t*0.04, 0.07+t*0.08)
		dc.DrawLine(0, float64(y), float64(g.width), float64(y))
		dc.Stroke()
	}

	face, err := loadFont(gomono.TTF, 11)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	boldFace, err := loadFont(gobold.TTF, 11)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	y := 25.0
	dc.SetRGBA(0.3, 0.3, 0.4, 0.4)
	dc.DrawRectangle(0, y-15, float64(g.width), 20)
	dc.Fill()

	dc.SetFontFace(boldFace)
	dc.SetRGB(1, 1, 1)
	for _, col := range columns {
		drawSharpText(dc, col.header, col.x, y)
	}

	dc.SetRGBA(0.6, 0.6, 0.7, 0.7)
	dc.SetLineWidth(1)
	dc.DrawLine(0, y+8, float64(g.width), y+8)
	dc.Stroke()

	dc.SetFontFace(face)
	y += 30
	for _, row := range rows {
		if highlight, ok := rowHighlight(row); ok {
			dc.SetRGBA(highlight[0], highlight[1], highlight[2], highlight[3])
			dc.DrawRectangle(0, y-16, float64(g.width), float64(g.rowHeight))
			dc.Fill()
		}

		cells := []string{
			fmt.Sprintf("%d", row.Rank),
			common.TruncateName(row.Name, 18),
			common.FormatBalanceCompact(row.Wallet),
			common.FormatBalanceCompact(row.Bank),
			common.FormatBalanceCompact(row.Wallet + row.Bank),
		}
		for idx, col := range columns {
			dc.SetRGB(col.rgb[0], col.rgb[1], col.rgb[2])
			drawSharpText(dc, cells[idx], col.x, y)
		}
		y += float64(g.rowHeight)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// rowHighlight returns the RGBA band behind a row: medals for the podium,
// blue for the caller
func rowHighlight(row LeaderboardRow) ([4]float64, bool) {
	switch {
	case row.IsCaller:
		return [4]float64{0.35, 0.4, 0.95, 0.25}, true
	case row.Rank == 1:
		return [4]float64{1, 0.84, 0, 0.12}, true
	case row.Rank == 2:
		return [4]float64{0.8, 0.8, 0.8, 0.08}, true
	case row.Rank == 3:
		return [4]float64{0.8, 0.5, 0.2, 0.06}, true
	}
	return [4]float64{}, false
}

func drawSharpText(dc *gg.Context, text string, x, y float64) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawString(text, x+0.5, y+0.5)
	dc.Pop()
	dc.DrawString(text, x, y)
}

func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, Hinting: font.HintingFull}), nil
}
