package thumb

import (
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/fogleman/gg"
	"github.com/franz/print-shelf/internal/store"
	"github.com/franz/print-shelf/internal/util"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

// TileName is the file name of a project's browse tile inside its cache dir
const TileName = "_tile.png"

// DefaultTileSize is the edge length of browse tiles in pixels
const DefaultTileSize = 256

// tileColors are the placeholder backgrounds, picked by project name
var tileColors = []color.NRGBA{
	{0x5E, 0x81, 0xAC, 0xFF},
	{0xBF, 0x61, 0x6A, 0xFF},
	{0xA3, 0xBE, 0x8C, 0xFF},
	{0xD0, 0x87, 0x70, 0xFF},
	{0xB4, 0x8E, 0xAD, 0xFF},
	{0x88, 0xC0, 0xD0, 0xFF},
}

var (
	tileFontOnce sync.Once
	tileFont     *truetype.Font
	tileFontErr  error
)

// TilePath returns where the browse tile of p is stored
func TilePath(p *store.Project) string {
	return filepath.Join(p.Path, CacheDirName, TileName)
}

// Tile returns a square browse tile for p, creating it when missing. The
// project image is center-cropped and scaled; projects without one get a
// placeholder with their initials.
func (r *Resolver) Tile(ctx context.Context, p *store.Project, size int) (string, error) {
	if size <= 0 {
		size = DefaultTileSize
	}

	target := TilePath(p)
	if r.exists(target) {
		return target, nil
	}

	_, err, _ := r.group.Do(target, func() (interface{}, error) {
		if r.exists(target) {
			return nil, nil
		}

		var img image.Image
		placeholder := false

		if src := r.ProjectImage(ctx, p); src != "" {
			decoded, err := r.decode(src)
			if err != nil {
				util.WarnLog("Cannot decode %s: %v", src, err)
			} else {
				img = cropSquare(decoded, size)
			}
		}

		if img == nil {
			placeholder = true
			var err error
			if img, err = placeholderTile(p.Name, size); err != nil {
				return nil, err
			}
		}

		if err := r.writePNG(target, img); err != nil {
			return nil, err
		}

		r.logger.LogTile(p.ID, target, placeholder)
		return nil, nil
	})
	if err != nil {
		return "", err
	}

	return target, nil
}

func (r *Resolver) decode(path string) (image.Image, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

func (r *Resolver) writePNG(path string, img image.Image) error {
	if err := r.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	f, err := r.fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create tile: %w", err)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		r.fs.Remove(path)
		return fmt.Errorf("failed to encode tile: %w", err)
	}

	return f.Close()
}

// cropSquare center-crops img to a square and scales it to size x size
func cropSquare(img image.Image, size int) image.Image {
	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	src := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)
	return dst
}

func placeholderTile(name string, size int) (image.Image, error) {
	tileFontOnce.Do(func() {
		tileFont, tileFontErr = truetype.Parse(gobold.TTF)
	})
	if tileFontErr != nil {
		return nil, fmt.Errorf("failed to load tile font: %w", tileFontErr)
	}

	dc := gg.NewContext(size, size)
	dc.SetColor(tileColor(name))
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	dc.SetFontFace(truetype.NewFace(tileFont, &truetype.Options{
		Size:    float64(size) * 0.4,
		DPI:     72,
		Hinting: font.HintingNone,
	}))
	dc.SetColor(color.White)
	dc.DrawStringAnchored(initials(name), float64(size)/2, float64(size)/2, 0.5, 0.35)

	return dc.Image(), nil
}

func tileColor(name string) color.NRGBA {
	h := fnv.New32a()
	h.Write([]byte(name))
	return tileColors[h.Sum32()%uint32(len(tileColors))]
}

// initials returns the upper-cased first letters of the first two words
func initials(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var out []rune
	for _, w := range words {
		out = append(out, unicode.ToUpper([]rune(w)[0]))
		if len(out) == 2 {
			break
		}
	}

	if len(out) == 0 {
		return "?"
	}
	return string(out)
}
