// Package web holds the server-rendered views and static assets, embedded
// into the binary.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin/render"
	"github.com/shopspring/decimal"
)

//go:embed templates static
var files embed.FS

const (
	layoutFile  = "templates/layout.html"
	layoutName  = "layout"
	sharedGlob  = "templates/*/form_fields.html"
	templateDir = "templates"
)

// Static serves the embedded static directory.
func Static() http.FileSystem {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Renderer is a gin render.HTMLRender that executes each view inside the
// shared layout. Views are addressed by path without extension, such as
// "listings/show".
type Renderer struct {
	views map[string]*template.Template
}

// NewRenderer parses every view once.
func NewRenderer() (*Renderer, error) {
	base, err := template.New(layoutName).Funcs(Funcs()).ParseFS(files, layoutFile, sharedGlob)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &Renderer{views: map[string]*template.Template{}}
	err = fs.WalkDir(files, templateDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || p == layoutFile || !strings.HasSuffix(p, ".html") || path.Base(p) == "form_fields.html" {
			return nil
		}

		t, err := base.Clone()
		if err != nil {
			return err
		}
		if _, err := t.ParseFS(files, p); err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(p, templateDir+"/"), ".html")
		r.views[name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.views[name]
	if !ok {
		return missingView{name: name}
	}
	return render.HTML{Template: t, Name: layoutName, Data: data}
}

type missingView struct{ name string }

func (m missingView) Render(w http.ResponseWriter) error {
	return fmt.Errorf("view %q not found", m.name)
}

func (m missingView) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

// Funcs are the helpers available to every view.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"price": FormatPrice,
		"stars": Stars,
	}
}

// FormatPrice renders a nightly price in rupees with Indian digit grouping,
// e.g. ₹1,50,000.
func FormatPrice(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().Round(2).StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if len(whole) > 3 {
		head, tail := whole[:len(whole)-3], whole[len(whole)-3:]
		for i, c := range head {
			if i > 0 && (len(head)-i)%2 == 0 {
				b.WriteByte(',')
			}
			b.WriteRune(c)
		}
		b.WriteByte(',')
		b.WriteString(tail)
	} else {
		b.WriteString(whole)
	}

	out := "₹" + b.String()
	if frac != "00" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// Stars renders a 1-5 rating as filled and empty stars.
func Stars(rating int) string {
	rating = max(0, min(rating, 5))
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}
