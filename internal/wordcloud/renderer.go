// Package wordcloud renders word-frequency tables as word-cloud images. It
// wraps the psykhi/wordclouds layout engine with the bot's font catalog and
// frequency-to-size scaling.
package wordcloud

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/psykhi/wordclouds"

	"quotebot/internal/domain"
)

// Config holds the rendering parameters.
type Config struct {
	// FontDir is scanned for .ttf and .otf files at construction time.
	FontDir string

	// Size is the output image's width and height in pixels.
	Size int

	MinFontSize  int
	MaxFontSize  int
	SizeExponent float64
}

// Renderer implements ports.CloudRenderer over a catalog of fonts found on
// disk.
type Renderer struct {
	cfg     Config
	catalog map[string]string
	names   []string

	pick func(n int) int
}

// New scans cfg.FontDir and builds a Renderer. It fails when the directory
// holds no usable fonts; callers treat that as the feature being unavailable.
func New(cfg Config) (*Renderer, error) {
	entries, err := os.ReadDir(cfg.FontDir)
	if err != nil {
		return nil, fmt.Errorf("reading font directory %s: %w", cfg.FontDir, err)
	}

	catalog := make(map[string]string)
	var names []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".ttf" && ext != ".otf" {
			continue
		}

		name := strings.ToLower(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		if _, dup := catalog[name]; dup {
			continue
		}

		catalog[name] = filepath.Join(cfg.FontDir, entry.Name())
		names = append(names, name)
	}

	if len(catalog) == 0 {
		return nil, fmt.Errorf("no fonts found in %s", cfg.FontDir)
	}

	return &Renderer{
		cfg:     cfg,
		catalog: catalog,
		names:   names,
		pick:    rand.IntN,
	}, nil
}

// Fonts returns the catalog's font names.
func (r *Renderer) Fonts() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)

	return out
}

// Render lays out words into a PNG word cloud. An empty font picks a random
// catalog font; an unknown font does the same and reports the fallback.
func (r *Renderer) Render(words []domain.WordCount, font string) ([]byte, bool, error) {
	fontPath, fellBack := r.lookup(font)

	weights := make(map[string]int, len(words))
	for _, wc := range words {
		weights[wc.Word] = int(domain.FontSize(wc.Count, r.cfg.MinFontSize, r.cfg.MaxFontSize, r.cfg.SizeExponent))
	}

	cloud := wordclouds.NewWordcloud(weights,
		wordclouds.FontFile(fontPath),
		wordclouds.Height(r.cfg.Size),
		wordclouds.Width(r.cfg.Size),
		wordclouds.FontMinSize(r.cfg.MinFontSize),
		wordclouds.FontMaxSize(r.cfg.MinFontSize+r.cfg.MaxFontSize),
		wordclouds.Colors(r.palette()),
		wordclouds.BackgroundColor(color.White),
	)

	img := cloud.Draw()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, false, fmt.Errorf("encoding wordcloud image: %w", err)
	}

	return buf.Bytes(), fellBack, nil
}

// lookup resolves a requested font name to a catalog path. fellBack is set
// only when a non-empty request missed the catalog.
func (r *Renderer) lookup(font string) (string, bool) {
	if font != "" {
		name := strings.ToLower(strings.TrimSpace(font))
		name = strings.TrimSuffix(name, filepath.Ext(name))

		if path, ok := r.catalog[name]; ok {
			return path, false
		}

		return r.randomFont(), true
	}

	return r.randomFont(), false
}

func (r *Renderer) randomFont() string {
	return r.catalog[r.names[r.pick(len(r.names))]]
}

// palette returns three readable colors on a white background, spread evenly
// around the hue wheel from a random starting point.
func (r *Renderer) palette() []color.Color {
	base := float64(r.pick(360))

	out := make([]color.Color, 0, 3)
	for i := 0; i < 3; i++ {
		hue := base + float64(i)*120
		if hue >= 360 {
			hue -= 360
		}

		out = append(out, colorful.Hsl(hue, 0.65, 0.35))
	}

	return out
}
