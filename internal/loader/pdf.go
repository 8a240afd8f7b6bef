package loader

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"semsearch/internal/document"
)

// decodePDF yields {url, pages: [text...]}; pages without extractable text
// are left out.
func decodePDF(path string) (document.Value, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return document.Value{}, err
	}
	defer f.Close()

	pages, err := pdfPages(r)
	if err != nil {
		return document.Value{}, err
	}

	obj := document.ObjectValue()
	obj.Set("url", document.StringValue(path))
	obj.Set("pages", document.ArrayValue(pages...))
	return obj, nil
}

// pdfPages extracts page text. The pdf package reports broken object
// references by panicking, so those are turned into an error here.
func pdfPages(r *pdf.Reader) (pages []document.Value, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(normalizeText(text))
		if text == "" {
			continue
		}
		pages = append(pages, document.StringValue(text))
	}
	return pages, nil
}
