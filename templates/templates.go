// Package templates holds the HTML pages of the site, embedded into the binary.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"

	"github.com/cppla/yatube/utils"
)

//go:embed html
var files embed.FS

// Pages lists every page the Renderer can execute.
var Pages = []string{
	"posts/index.html",
	"posts/group_list.html",
	"posts/profile.html",
	"posts/post_detail.html",
	"posts/create_post.html",
	"posts/follow.html",
	"users/signup.html",
	"users/login.html",
	"users/logged_out.html",
	"core/404.html",
	"core/500.html",
}

var shared = []string{"html/base.html", "html/includes/*.html"}

// Renderer implements gin's render.HTMLRender with one template set per page,
// each made of the base layout, the shared includes and the page itself.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page. extra functions override the defaults.
func New(extra template.FuncMap) (*Renderer, error) {
	funcs := DefaultFuncs()
	for k, v := range extra {
		funcs[k] = v
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(Pages))}
	for _, page := range Pages {
		patterns := append(append([]string{}, shared...), "html/"+page)
		t, err := template.New("base").Funcs(funcs).ParseFS(files, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Instance satisfies render.HTMLRender.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		panic(fmt.Sprintf("template %q is not registered", name))
	}
	return render.HTML{Template: t, Name: "base", Data: data}
}

// DefaultFuncs are available in every page.
func DefaultFuncs() template.FuncMap {
	return template.FuncMap{
		"linebreaks": utils.Linebreaks,
		"date": func(t time.Time) string {
			return t.Format("2 Jan 2006")
		},
		"truncate": func(s string, n int) string {
			r := []rune(s)
			if len(r) <= n {
				return s
			}
			return strings.TrimSpace(string(r[:n])) + "…"
		},
		"media": func(rel string) string {
			return "/media/" + rel
		},
	}
}
