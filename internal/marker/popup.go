package marker

import (
	"bytes"
	"html"
	"text/template"

	"github.com/chpetty/ccmap/internal/config"
	"github.com/chpetty/ccmap/internal/geo"
	"github.com/chpetty/ccmap/internal/textfmt"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"
)

// Values are already escaped or formatted, so text/template is used on purpose.
var popupTemplate = template.Must(template.New("popup").Parse(
	`{{range .}}<{{.Tag}}>{{.Value}}</{{.Tag}}>
{{end}}`))

type popupLine struct {
	Tag   string
	Value string
}

// Popup renders the HTML shown when a marker is clicked.
type Popup struct {
	fields []config.PopupField
	m      *minify.M
}

// NewPopup returns a renderer for the given layout.
func NewPopup(fields []config.PopupField) *Popup {
	m := minify.New()
	m.Add("text/html", &mhtml.Minifier{
		KeepEndTags: true,
		KeepQuotes:  true,
	})

	return &Popup{fields: fields, m: m}
}

// Render returns the minified popup for f. Formatted fields are linkified
// by textfmt with escaping, the rest are escaped; missing properties give
// empty elements.
func (p *Popup) Render(f geo.Feature) string {
	lines := make([]popupLine, 0, len(p.fields))
	for _, field := range p.fields {
		tag := field.Tag
		if tag == "" {
			tag = "p"
		}

		value, ok := f.Property(field.Property)
		switch {
		case !ok:
			value = ""
		case field.Format:
			value = textfmt.FormatEscaped(value)
		default:
			value = html.EscapeString(value)
		}

		lines = append(lines, popupLine{Tag: tag, Value: value})
	}

	var buf bytes.Buffer
	if err := popupTemplate.Execute(&buf, lines); err != nil {
		log.Error().Err(err).Msg("Failed to render popup")
		return ""
	}

	out, err := p.m.String("text/html", buf.String())
	if err != nil {
		log.Warn().Err(err).Msg("Failed to minify popup, using raw HTML")
		return buf.String()
	}

	return out
}
