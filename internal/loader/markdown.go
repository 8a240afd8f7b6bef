package loader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"semsearch/internal/document"
)

type section struct {
	title       string
	level       int
	content     []string
	subsections []*section
}

// decodeMarkdown lifts a Markdown file into the scraper's page layout:
// {url, title, lead_text, sections: [{title, level, content, subsections}]}.
// The first level-1 heading becomes the title; text before the first other
// heading is the lead. Sections without content are dropped and their
// children attach to the nearest shallower section.
func decodeMarkdown(path string) (document.Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return document.Value{}, err
	}
	return markdownValue(path, src), nil
}

func markdownValue(path string, src []byte) document.Value {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	titled := false
	var lead []string
	var flat []*section
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			heading := strings.TrimSpace(inlineText(h, src))
			if h.Level == 1 && !titled && len(flat) == 0 {
				title, titled = heading, true
				continue
			}
			flat = append(flat, &section{title: heading, level: h.Level})
			continue
		}
		t := strings.TrimSpace(blockText(n, src))
		if t == "" {
			continue
		}
		if len(flat) == 0 {
			lead = append(lead, t)
		} else {
			cur := flat[len(flat)-1]
			cur.content = append(cur.content, t)
		}
	}

	var roots []*section
	var stack []*section
	for _, s := range flat {
		if len(s.content) == 0 {
			continue
		}
		for len(stack) > 0 && stack[len(stack)-1].level >= s.level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			parent.subsections = append(parent.subsections, s)
		} else {
			roots = append(roots, s)
		}
		stack = append(stack, s)
	}

	obj := document.ObjectValue()
	obj.Set("url", document.StringValue(path))
	obj.Set("title", document.StringValue(title))
	obj.Set("lead_text", document.StringValue(strings.Join(lead, "\n\n")))
	obj.Set("sections", sectionsValue(roots))
	return obj
}

func sectionsValue(sections []*section) document.Value {
	items := make([]document.Value, 0, len(sections))
	for _, s := range sections {
		v := document.ObjectValue()
		v.Set("title", document.StringValue(s.title))
		v.Set("level", document.NumberValue(float64(s.level)))
		v.Set("content", document.StringValue(strings.Join(s.content, "\n\n")))
		v.Set("subsections", sectionsValue(s.subsections))
		items = append(items, v)
	}
	return document.ArrayValue(items...)
}

func blockText(n ast.Node, src []byte) string {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return inlineText(n, src)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		var b strings.Builder
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(src))
		}
		return b.String()
	case *ast.List:
		var items []string
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t := strings.TrimSpace(blockText(c, src)); t != "" {
				items = append(items, "• "+t)
			}
		}
		return strings.Join(items, "\n")
	case *ast.HTMLBlock, *ast.ThematicBreak:
		return ""
	}
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := strings.TrimSpace(blockText(c, src)); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Value(src))
			if c.SoftLineBreak() || c.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
