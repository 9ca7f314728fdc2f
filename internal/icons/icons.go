// Package icons prepares marker images: decode, scale to a square, encode as WebP.
package icons

import (
	"bytes"
	"context"
	"fmt"
	"hash/crc32"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/chpetty/ccmap/internal/config"
	"github.com/chpetty/ccmap/internal/geo"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultKey is the key of the fallback icon.
const DefaultKey = "default"

// PathPrefix is where the server exposes icons.
const PathPrefix = "/icons/"

// Icon is an encoded marker image.
type Icon struct {
	Key  string
	ETag string
	Data []byte
}

// Set holds the encoded icons and the type to icon mapping.
type Set struct {
	icons map[string]Icon
	types map[string]string // location type -> icon key
}

// Load reads, scales and encodes every configured icon.
// A broken type icon is skipped so that type falls back to the default;
// a broken default icon is an error.
func Load(ctx context.Context, client *http.Client, cfg config.Icons) (*Set, error) {
	size := cfg.Size
	if size <= 0 {
		size = config.DefaultIconSize
	}

	s := &Set{
		icons: make(map[string]Icon, len(cfg.Types)+1),
		types: make(map[string]string, len(cfg.Types)),
	}

	if cfg.Default != "" {
		icon, err := build(ctx, client, DefaultKey, cfg.Default, size)
		if err != nil {
			return nil, fmt.Errorf("default icon: %w", err)
		}
		s.icons[DefaultKey] = icon
	}

	// Sorted for stable logs and deterministic key collisions
	names := make([]string, 0, len(cfg.Types))
	for name := range cfg.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		key := Slug(name)
		if key == "" || key == DefaultKey {
			log.Warn().Str("type", name).Msg("Icon type has a reserved or empty key, skipping")
			continue
		}

		if _, ok := s.icons[key]; !ok {
			icon, err := build(ctx, client, key, cfg.Types[name], size)
			if err != nil {
				log.Error().
					Err(err).
					Str("type", name).
					Str("source", cfg.Types[name]).
					Msg("Failed to load icon, type falls back to default")
				continue
			}
			s.icons[key] = icon
		}

		s.types[name] = key
	}

	log.Debug().
		Int("icons", len(s.icons)).
		Int("size", size).
		Msg("Icons prepared")

	return s, nil
}

// Resolve returns the URL path of the icon for a location type.
// Unknown types get the default icon, or "" if there is none.
func (s *Set) Resolve(locationType string) string {
	if s == nil {
		return ""
	}
	if key, ok := s.types[locationType]; ok {
		return PathPrefix + key + ".webp"
	}
	if _, ok := s.icons[DefaultKey]; ok {
		return PathPrefix + DefaultKey + ".webp"
	}
	return ""
}

// Get returns the icon stored under key.
func (s *Set) Get(key string) (Icon, bool) {
	if s == nil {
		return Icon{}, false
	}
	icon, ok := s.icons[key]
	return icon, ok
}

// Len returns the number of encoded icons.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.icons)
}

// Slug turns a type name into a URL-safe key: "Family Child Care" -> "family-child-care".
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

func build(ctx context.Context, client *http.Client, key, source string, size int) (Icon, error) {
	raw, err := read(ctx, client, source)
	if err != nil {
		return Icon{}, err
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Icon{}, fmt.Errorf("decode %s: %w", source, err)
	}

	log.Trace().
		Str("key", key).
		Str("format", format).
		Str("source", source).
		Msg("Icon decoded")

	var buf bytes.Buffer
	if err := webp.Encode(&buf, Fit(img, size), &webp.Options{Lossless: true}); err != nil {
		return Icon{}, fmt.Errorf("encode webp: %w", err)
	}

	data := buf.Bytes()
	return Icon{
		Key:  key,
		ETag: fmt.Sprintf(`"%x-%08x"`, len(data), crc32.ChecksumIEEE(data)),
		Data: data,
	}, nil
}

// Fit scales img into a transparent size x size square, keeping its aspect
// ratio and centering it.
func Fit(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))

	sb := img.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return dst
	}

	w, h := size, size
	if sb.Dx() > sb.Dy() {
		h = max(1, size*sb.Dy()/sb.Dx())
	} else if sb.Dy() > sb.Dx() {
		w = max(1, size*sb.Dx()/sb.Dy())
	}

	x0 := (size - w) / 2
	y0 := (size - h) / 2
	xdraw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+w, y0+h), img, sb, draw.Over, nil)

	return dst
}

func read(ctx context.Context, client *http.Client, source string) ([]byte, error) {
	if !geo.IsURL(source) {
		return os.ReadFile(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
