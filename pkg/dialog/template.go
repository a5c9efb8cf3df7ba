package dialog

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/template"
)

const maxTemplateOutput = 64 * 1024

// templateCache caches parsed templates to avoid re-parsing on every call.
var templateCache sync.Map

// templateCtx is the data available in prompt and message templates.
// Amounts are pre-formatted so templates never round on their own.
type templateCtx struct {
	Stock     string
	Qty       string
	Direction string
	Price     string
	Total     string
	Priced    bool
	Text      string
}

func newTemplateCtx(order OrderState, text string) templateCtx {
	ctx := templateCtx{Text: text}
	if order.Stock != nil {
		ctx.Stock = *order.Stock
	}
	if order.Qty != nil {
		ctx.Qty = FormatQty(*order.Qty)
	}
	if order.Direction != nil {
		ctx.Direction = string(*order.Direction)
	}
	if order.Price != nil {
		ctx.Price = FormatMoney(*order.Price)
		ctx.Priced = true
	}
	if total, ok := order.Total(); ok {
		ctx.Total = FormatMoney(total)
	}
	return ctx
}

// Render evaluates a prompt or message template against an order.
// text is exposed as {{.Text}} and is usually the user's last message.
func Render(tmpl string, order OrderState, text string) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}
	return renderTemplate(tmpl, newTemplateCtx(order, text))
}

// limitWriter caps output from template.Execute.
type limitWriter struct {
	w       io.Writer
	n       int64
	written int64
}

func (lw *limitWriter) Write(p []byte) (int, error) {
	if lw.written+int64(len(p)) > lw.n {
		allowed := lw.n - lw.written
		if allowed > 0 {
			n, err := lw.w.Write(p[:allowed])
			lw.written += int64(n)
			if err != nil {
				return n, err
			}
		}
		return 0, fmt.Errorf("template output exceeds %d bytes", lw.n)
	}
	n, err := lw.w.Write(p)
	lw.written += int64(n)
	return n, err
}

func renderTemplate(tmplStr string, data templateCtx) (string, error) {
	var tmpl *template.Template
	if cached, ok := templateCache.Load(tmplStr); ok {
		tmpl = cached.(*template.Template)
	} else {
		var err error
		tmpl, err = template.New("").Option("missingkey=zero").Parse(tmplStr)
		if err != nil {
			return "", err
		}
		templateCache.Store(tmplStr, tmpl)
	}

	var buf bytes.Buffer
	lw := &limitWriter{w: &buf, n: maxTemplateOutput}
	if err := tmpl.Execute(lw, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
