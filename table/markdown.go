package table

import (
	"html"
	"strings"
)

// Markdown writes GitHub-flavoured pipe tables.
type Markdown struct{}

var markdownEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

func (Markdown) WriteTable(sb *strings.Builder, t *Table) error {
	writeMarkdownRow(sb, t.Header)
	sb.WriteString("|")
	for range t.Header {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")
	for _, row := range t.Rows {
		writeMarkdownRow(sb, row)
	}
	return nil
}

func (Markdown) WriteWarning(sb *strings.Builder, w Warning) error {
	sb.WriteString("> **Warning:** ")
	sb.WriteString(markdownEscaper.Replace(w.String()))
	sb.WriteString("\n")
	return nil
}

func writeMarkdownRow(sb *strings.Builder, cells []string) {
	sb.WriteString("|")
	for _, cell := range cells {
		sb.WriteString(" ")
		sb.WriteString(markdownEscaper.Replace(cell))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

// HTML writes plain HTML tables using the class names Sphinx themes style.
type HTML struct{}

func (HTML) WriteTable(sb *strings.Builder, t *Table) error {
	sb.WriteString("<table class=\"docutils align-default\">\n<thead>\n<tr>")
	for _, h := range t.Header {
		sb.WriteString("<th class=\"head\">")
		sb.WriteString(html.EscapeString(h))
		sb.WriteString("</th>")
	}
	sb.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, row := range t.Rows {
		sb.WriteString("<tr>")
		for _, cell := range row {
			sb.WriteString("<td>")
			sb.WriteString(html.EscapeString(cell))
			sb.WriteString("</td>")
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</tbody>\n</table>\n")
	return nil
}

func (HTML) WriteWarning(sb *strings.Builder, w Warning) error {
	sb.WriteString("<div class=\"admonition warning\">\n<p class=\"admonition-title\">Warning</p>\n<p>")
	sb.WriteString(html.EscapeString(w.String()))
	sb.WriteString("</p>\n</div>\n")
	return nil
}
