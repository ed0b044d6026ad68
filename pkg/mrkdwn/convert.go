package mrkdwn

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Convert renders GitHub-flavored markdown as Slack mrkdwn and escapes the
// reserved characters outside protected spans.
func Convert(markdown string) string {
	return EscapeSpecials(Render(markdown))
}

// Render converts markdown to mrkdwn without the escaping pass.
func Render(markdown string) string {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	r := &renderer{source: source}
	r.blocks(doc, "")
	return strings.TrimRight(r.out.String(), "\n")
}

type renderer struct {
	source []byte
	out    strings.Builder
}

func (r *renderer) blocks(parent ast.Node, indent string) {
	first := true
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if !first {
			r.out.WriteString("\n")
		}
		first = false
		r.block(n, indent)
	}
}

func (r *renderer) block(n ast.Node, indent string) {
	switch b := n.(type) {
	case *ast.Heading:
		r.out.WriteString(indent + "*" + r.inlineText(b) + "*\n")

	case *ast.Paragraph, *ast.TextBlock:
		r.out.WriteString(indent + r.inlineText(n) + "\n")

	case *ast.FencedCodeBlock:
		lang := string(b.Language(r.source))
		r.out.WriteString(indent + "```" + lang + "\n")
		r.writeCodeLines(b, indent)
		r.out.WriteString(indent + "```\n")

	case *ast.CodeBlock:
		r.out.WriteString(indent + "```\n")
		r.writeCodeLines(b, indent)
		r.out.WriteString(indent + "```\n")

	case *ast.Blockquote:
		inner := &renderer{source: r.source}
		inner.blocks(b, "")
		for _, line := range strings.Split(strings.TrimRight(inner.out.String(), "\n"), "\n") {
			r.out.WriteString(indent + "> " + line + "\n")
		}

	case *ast.List:
		r.list(b, indent)

	case *ast.ThematicBreak:
		r.out.WriteString(indent + "---\n")

	case *east.Table:
		r.table(b, indent)

	case *ast.HTMLBlock:
		for i := 0; i < b.Lines().Len(); i++ {
			seg := b.Lines().At(i)
			r.out.WriteString(indent + string(seg.Value(r.source)))
		}

	default:
		if n.Type() == ast.TypeBlock {
			r.out.WriteString(indent + r.inlineText(n) + "\n")
		}
	}
}

func (r *renderer) writeCodeLines(n ast.Node, indent string) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		r.out.WriteString(indent + string(seg.Value(r.source)))
	}
}

func (r *renderer) list(l *ast.List, indent string) {
	number := l.Start
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "•"
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d.", number)
			number++
		}

		var lines []string
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch cb := c.(type) {
			case *ast.List:
				inner := &renderer{source: r.source}
				inner.list(cb, indent+"    ")
				lines = append(lines, strings.TrimRight(inner.out.String(), "\n"))
			default:
				lines = append(lines, indent+marker+" "+r.inlineText(c))
			}
		}
		r.out.WriteString(strings.Join(lines, "\n") + "\n")
	}
}

func (r *renderer) table(t *east.Table, indent string) {
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		header := false
		switch rr := row.(type) {
		case *east.TableHeader:
			header = true
			for c := rr.FirstChild(); c != nil; c = c.NextSibling() {
				cells = append(cells, r.inlineText(c))
			}
		case *east.TableRow:
			for c := rr.FirstChild(); c != nil; c = c.NextSibling() {
				cells = append(cells, r.inlineText(c))
			}
		}
		if header {
			for i := range cells {
				cells[i] = "*" + cells[i] + "*"
			}
		}
		r.out.WriteString(indent + strings.Join(cells, " | ") + "\n")
	}
}

// inlineText renders the inline children of a block node.
func (r *renderer) inlineText(parent ast.Node) string {
	var b strings.Builder
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		r.inline(&b, n)
	}
	return b.String()
}

func (r *renderer) inline(b *strings.Builder, n ast.Node) {
	switch i := n.(type) {
	case *ast.Text:
		b.Write(i.Segment.Value(r.source))
		if i.SoftLineBreak() || i.HardLineBreak() {
			b.WriteString("\n")
		}

	case *ast.String:
		b.Write(i.Value)

	case *ast.CodeSpan:
		b.WriteString("`")
		for c := i.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				b.Write(t.Segment.Value(r.source))
			}
		}
		b.WriteString("`")

	case *ast.Emphasis:
		marker := "_"
		if i.Level == 2 {
			marker = "*"
		}
		b.WriteString(marker)
		for c := i.FirstChild(); c != nil; c = c.NextSibling() {
			r.inline(b, c)
		}
		b.WriteString(marker)

	case *east.Strikethrough:
		b.WriteString("~")
		for c := i.FirstChild(); c != nil; c = c.NextSibling() {
			r.inline(b, c)
		}
		b.WriteString("~")

	case *ast.Link:
		var label strings.Builder
		for c := i.FirstChild(); c != nil; c = c.NextSibling() {
			r.inline(&label, c)
		}
		dest := string(i.Destination)
		if label.Len() == 0 || label.String() == dest {
			fmt.Fprintf(b, "<%s>", dest)
		} else {
			fmt.Fprintf(b, "<%s|%s>", dest, label.String())
		}

	case *ast.AutoLink:
		fmt.Fprintf(b, "<%s>", string(i.URL(r.source)))

	case *ast.Image:
		var alt strings.Builder
		for c := i.FirstChild(); c != nil; c = c.NextSibling() {
			r.inline(&alt, c)
		}
		if alt.Len() > 0 {
			fmt.Fprintf(b, "<%s|%s>", string(i.Destination), alt.String())
		} else {
			fmt.Fprintf(b, "<%s>", string(i.Destination))
		}

	case *ast.RawHTML:
		for j := 0; j < i.Segments.Len(); j++ {
			seg := i.Segments.At(j)
			b.Write(seg.Value(r.source))
		}

	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			r.inline(b, c)
		}
	}
}
