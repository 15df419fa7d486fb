package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/KNICEX/binance-signals/internal/service/notification"
	"github.com/KNICEX/binance-signals/pkg/decimalx"
)

var _ notification.Renderer = (*Renderer)(nil)

// Renderer fills a stored template with notification content. Output is the
// HTML subset accepted by Telegram; content values are escaped.
type Renderer struct {
	store Store
	funcs template.FuncMap

	mu     sync.Mutex
	parsed map[string]parsedTemplate
}

// parsedTemplate 模板文本变化后重新解析
type parsedTemplate struct {
	text string
	tpl  *template.Template
}

func NewRenderer(store Store) *Renderer {
	return &Renderer{
		store: store,
		funcs: template.FuncMap{
			"fixed": decimalx.Fixed,
		},
		parsed: map[string]parsedTemplate{},
	}
}

func (r *Renderer) Render(ctx context.Context, templateId string, content notification.Content) (string, error) {
	tpl, err := r.template(templateId)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, map[string]any(content)); err != nil {
		return "", fmt.Errorf("execute template %q: %w", templateId, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (r *Renderer) template(templateId string) (*template.Template, error) {
	text, err := r.store.Lookup(templateId)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.parsed[templateId]; ok && p.text == text {
		return p.tpl, nil
	}
	tpl, err := template.New(templateId).Funcs(r.funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", templateId, err)
	}
	r.parsed[templateId] = parsedTemplate{text: text, tpl: tpl}
	return tpl, nil
}
