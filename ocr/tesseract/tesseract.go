package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/wudi/pageview/ocr"
)

// Engine implements ocr.Engine with the gosseract client.
type Engine struct {
	clientFactory func() *gosseract.Client
}

// New constructs a Tesseract-backed OCR engine.
func New() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize runs OCR on one page image. Tesseract cannot be interrupted, so
// the context is checked before and after the call.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	c := e.clientFactory()
	defer c.Close()

	imgData, err := cropImage(in.Image, in.Region)
	if err != nil {
		return ocr.Result{}, err
	}
	if err := c.SetImageFromBytes(imgData); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return ocr.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	for k, v := range in.Metadata {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}

	offX, offY := 0.0, 0.0
	if in.Region != nil && !in.Region.IsEmpty() {
		offX, offY = in.Region.X, in.Region.Y
	}
	words := boxes(c, gosseract.RIL_WORD, offX, offY)
	lines := groupLines(boxes(c, gosseract.RIL_TEXTLINE, offX, offY), words)

	return ocr.Result{
		InputID:   in.ID,
		PlainText: strings.TrimSpace(text),
		Lines:     lines,
		Language:  firstLanguage(in.Languages),
	}, nil
}

func boxes(c *gosseract.Client, level gosseract.PageIteratorLevel, offX, offY float64) []ocr.TextWord {
	bb, err := c.GetBoundingBoxes(level)
	if err != nil {
		return nil
	}
	out := make([]ocr.TextWord, 0, len(bb))
	for _, b := range bb {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		out = append(out, ocr.TextWord{
			Text: word,
			Bounds: ocr.Region{
				X:      float64(b.Box.Min.X) + offX,
				Y:      float64(b.Box.Min.Y) + offY,
				Width:  float64(b.Box.Dx()),
				Height: float64(b.Box.Dy()),
			},
			Confidence: b.Confidence / 100.0,
		})
	}
	return out
}

// groupLines assigns each word to the line box containing its center. Words
// outside every line box end up in a trailing line of their own.
func groupLines(lineBoxes, words []ocr.TextWord) []ocr.TextLine {
	lines := make([]ocr.TextLine, len(lineBoxes))
	for i, lb := range lineBoxes {
		lines[i] = ocr.TextLine{Text: lb.Text, Bounds: lb.Bounds, Confidence: lb.Confidence}
	}
	var orphans []ocr.TextWord
	for _, w := range words {
		cx := w.Bounds.X + w.Bounds.Width/2
		cy := w.Bounds.Y + w.Bounds.Height/2
		placed := false
		for i := range lines {
			b := lines[i].Bounds
			if cx >= b.X && cx <= b.X+b.Width && cy >= b.Y && cy <= b.Y+b.Height {
				lines[i].Words = append(lines[i].Words, w)
				placed = true
				break
			}
		}
		if !placed {
			orphans = append(orphans, w)
		}
	}
	if len(orphans) > 0 {
		texts := make([]string, len(orphans))
		for i, w := range orphans {
			texts[i] = w.Text
		}
		lines = append(lines, ocr.TextLine{Text: strings.Join(texts, " "), Bounds: mergeBounds(orphans), Words: orphans})
	}
	return lines
}

func mergeBounds(words []ocr.TextWord) ocr.Region {
	if len(words) == 0 {
		return ocr.Region{}
	}
	minX, minY := math.MaxFloat64, math.MaxFloat64
	var maxX, maxY float64
	for _, w := range words {
		minX = math.Min(minX, w.Bounds.X)
		minY = math.Min(minY, w.Bounds.Y)
		maxX = math.Max(maxX, w.Bounds.X+w.Bounds.Width)
		maxY = math.Max(maxY, w.Bounds.Y+w.Bounds.Height)
	}
	return ocr.Region{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func firstLanguage(langs []string) string {
	if len(langs) == 0 {
		return ""
	}
	return langs[0]
}

func cropImage(data []byte, region *ocr.Region) ([]byte, error) {
	if region == nil || region.IsEmpty() {
		return data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode for region: %w", err)
	}
	rect := image.Rect(
		int(math.Round(region.X)),
		int(math.Round(region.Y)),
		int(math.Round(region.X+region.Width)),
		int(math.Round(region.Y+region.Height)),
	).Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("region outside image bounds")
	}
	subImg, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return nil, fmt.Errorf("image does not support sub-image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, subImg.SubImage(rect)); err != nil {
		return nil, fmt.Errorf("encode cropped image: %w", err)
	}
	return buf.Bytes(), nil
}
