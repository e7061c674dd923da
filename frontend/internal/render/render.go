// Package render turns page data into HTML. Handlers depend on Renderer only, so the
// template engine behind it can change without touching them.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/openreview/openreview-web/shared/logger"
)

const (
	baseTemplate     = "base.html"
	partialsTemplate = "partials.html"
)

// Renderer is a pure function from a template name and its data to HTML.
type Renderer interface {
	Render(name string, data any) (string, error)
}

// Templates renders html/template pages. Every page is parsed together with base.html
// and partials.html.
type Templates struct {
	fsys  fs.FS
	funcs template.FuncMap

	mu  sync.RWMutex
	set map[string]*template.Template
}

// Load parses every page in fsys. extra funcs are added to, and may override, the
// built-in ones.
func Load(fsys fs.FS, extra template.FuncMap) (*Templates, error) {
	funcs := baseFuncs()
	for name, fn := range extra {
		funcs[name] = fn
	}
	t := &Templates{fsys: fsys, funcs: funcs}
	if err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

func MustLoad(fsys fs.FS, extra template.FuncMap) *Templates {
	t, err := Load(fsys, extra)
	if err != nil {
		panic(err)
	}
	return t
}

// Reload parses the pages again. On error the previous set stays in use.
func (t *Templates) Reload() error {
	set, err := parseAll(t.fsys, t.funcs)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.set = set
	t.mu.Unlock()
	return nil
}

func parseAll(fsys fs.FS, funcs template.FuncMap) (map[string]*template.Template, error) {
	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}

	set := make(map[string]*template.Template)
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || path.Ext(name) != ".html" || name == baseTemplate || name == partialsTemplate {
			continue
		}
		tmpl, err := template.New(baseTemplate).Funcs(funcs).ParseFS(fsys, baseTemplate, name, partialsTemplate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		set[name] = tmpl
	}
	return set, nil
}

func (t *Templates) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.set[name]
	return ok
}

func (t *Templates) Render(name string, data any) (string, error) {
	t.mu.RLock()
	tmpl, ok := t.set[name]
	t.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template %s not found", name)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// StartReloader re-parses the templates every interval until ctx is done. Used in
// development so edits show up without a restart.
func (t *Templates) StartReloader(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := t.Reload(); err != nil {
					logger.Log.Warn().Err(err).Msg("template reload failed")
				}
			}
		}
	}()
}

func baseFuncs() template.FuncMap {
	return template.FuncMap{
		"add":   func(a, b int) int { return a + b },
		"sub":   func(a, b int) int { return a - b },
		"dict":  dict,
		"join":  strings.Join,
		"lower": strings.ToLower,
		"year":  year,
	}
}

func dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("invalid dict call: number of arguments must be even")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = values[i+1]
	}
	return m, nil
}

// year of a millisecond timestamp as sent by the API
func year(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return time.UnixMilli(ms).UTC().Year()
}
