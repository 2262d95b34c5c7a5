package document

import (
	"fmt"
	"strings"

	"github.com/kokistudios/assess/internal/report"
)

// Markdown renders documents as markdown tables, one section per subsystem.
type Markdown struct{}

// Generate implements Generator.
func (Markdown) Generate(meta Meta, layout Layout, sections []report.Section) (*Document, error) {
	if meta.Domain == "" {
		return nil, fmt.Errorf("document has no domain")
	}
	title := layout.Title
	if title == "" {
		title = meta.Domain
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escapeText(title))
	if layout.Subtitle != "" {
		fmt.Fprintf(&b, "%s\n\n", escapeText(layout.Subtitle))
	}
	for i := 0; i < layout.StartLine; i++ {
		b.WriteString("\n")
	}

	writeTable(&b, []string{"Field", "Value"}, [][]string{
		{"Domain", meta.Domain},
		{"Subsystems", fmt.Sprintf("%d", meta.Subsystems)},
		{"Components", fmt.Sprintf("%d", meta.Components)},
		{"Fields filled", fmt.Sprintf("%d/%d", meta.Filled, meta.Fields)},
	})

	for _, sec := range sections {
		fmt.Fprintf(&b, "\n## %s\n\n", escapeText(sec.Subsystem))
		rows := make([][]string, 0, len(sec.Rows))
		for _, r := range sec.Rows {
			rows = append(rows, []string{r.Component, r.Field, r.Value})
		}
		writeTable(&b, []string{"Component", "Field", "Value"}, rows)
	}

	return &Document{Meta: meta, Body: b.String()}, nil
}

func writeTable(b *strings.Builder, headers []string, rows [][]string) {
	b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = escapeCell(c)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", "<br>", "\n", "<br>")

func escapeCell(s string) string {
	return cellReplacer.Replace(s)
}

func escapeText(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ").Replace(s)
}
