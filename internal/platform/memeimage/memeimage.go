// Package memeimage renders classic top/bottom caption memes as PNG.
package memeimage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"net/http"
	"os"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/yungbote/memequiz-backend/internal/pkg/httpx"
)

const (
	DefaultSize   = 600
	maxBackground = 8 << 20
	outlineRadius = 3
	captionMargin = 24
	minFontPoints = 22
	maxFontPoints = 64
	lineSpacing   = 1.1
)

type Renderer struct {
	font   *truetype.Font
	size   int
	client *http.Client
}

// New loads fontPath when set, else the embedded Go bold face.
func New(fontPath string, size int, client *http.Client) (*Renderer, error) {
	raw := gobold.TTF
	if strings.TrimSpace(fontPath) != "" {
		b, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		raw = b
	}
	f, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	if size <= 0 {
		size = DefaultSize
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Renderer{font: f, size: size, client: client}, nil
}

func (r *Renderer) face(points float64) font.Face {
	return truetype.NewFace(r.font, &truetype.Options{Size: points, DPI: 72, Hinting: font.HintingNone})
}

// Render draws top and bottom captions over bg (or a dark gradient when bg
// is nil) and returns PNG bytes.
func (r *Renderer) Render(top, bottom string, bg image.Image) ([]byte, error) {
	size := float64(r.size)
	dc := gg.NewContext(r.size, r.size)

	if bg != nil {
		dc.DrawImage(coverSquare(bg, r.size), 0, 0)
	} else {
		grad := gg.NewLinearGradient(0, 0, 0, size)
		grad.AddColorStop(0, color.NRGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff})
		grad.AddColorStop(1, color.NRGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff})
		dc.SetFillStyle(grad)
		dc.DrawRectangle(0, 0, size, size)
		dc.Fill()
	}

	r.caption(dc, strings.ToUpper(strings.TrimSpace(top)), true)
	r.caption(dc, strings.ToUpper(strings.TrimSpace(bottom)), false)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// caption shrinks the font until the wrapped text fits a third of the image.
func (r *Renderer) caption(dc *gg.Context, text string, atTop bool) {
	if text == "" {
		return
	}
	size := float64(r.size)
	width := size - 2*captionMargin

	var lines []string
	points := float64(maxFontPoints)
	for ; points >= minFontPoints; points -= 4 {
		dc.SetFontFace(r.face(points))
		lines = dc.WordWrap(text, width)
		h := float64(len(lines)) * points * lineSpacing
		if h <= size/3 && widest(dc, lines) <= width {
			break
		}
	}
	if points < minFontPoints {
		points = minFontPoints
		dc.SetFontFace(r.face(points))
		lines = dc.WordWrap(text, width)
	}

	lineH := points * lineSpacing
	y := captionMargin + points
	if !atTop {
		y = size - captionMargin - float64(len(lines)-1)*lineH
	}
	for _, ln := range lines {
		outlined(dc, ln, size/2, y)
		y += lineH
	}
}

func widest(dc *gg.Context, lines []string) float64 {
	var w float64
	for _, ln := range lines {
		if lw, _ := dc.MeasureString(ln); lw > w {
			w = lw
		}
	}
	return w
}

func outlined(dc *gg.Context, s string, x, y float64) {
	dc.SetColor(color.Black)
	for dy := -outlineRadius; dy <= outlineRadius; dy++ {
		for dx := -outlineRadius; dx <= outlineRadius; dx++ {
			if dx*dx+dy*dy > outlineRadius*outlineRadius {
				continue
			}
			dc.DrawStringAnchored(s, x+float64(dx), y+float64(dy), 0.5, 0)
		}
	}
	dc.SetColor(color.White)
	dc.DrawStringAnchored(s, x, y, 0.5, 0)
}

// coverSquare center-crops img to a square and scales it to size.
func coverSquare(img image.Image, size int) image.Image {
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, image.Rect(x0, y0, x0+side, y0+side), draw.Over, nil)
	return dst
}

// FetchBackground downloads and decodes a background image.
func (r *Renderer) FetchBackground(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch background: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &httpx.StatusError{StatusCode: resp.StatusCode}
	}
	img, _, err := image.Decode(io.LimitReader(resp.Body, maxBackground))
	if err != nil {
		return nil, fmt.Errorf("decode background: %w", err)
	}
	return img, nil
}
