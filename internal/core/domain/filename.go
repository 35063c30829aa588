package domain

import (
	"fmt"
	"strings"
)

// maxTitleRunes caps the sanitized title segment of a filename.
const maxTitleRunes = 80

// untitledPrefix names charts that carry no title of their own.
// The synthesized title is "Grafico_<1-based index>".
const untitledPrefix = "Grafico"

// forbidden holds the characters stripped from chart titles before they
// become part of a filename.
const forbidden = `\/:*?"<>|`

// SanitizeTitle strips filesystem-unsafe characters from a chart title
// and truncates it to 80 runes. An empty or all-forbidden title yields
// a synthesized name from the chart's 1-based position in its sheet.
func SanitizeTitle(title string, position int) string {
	var b strings.Builder
	for _, r := range title {
		if strings.ContainsRune(forbidden, r) {
			continue
		}
		b.WriteRune(r)
	}
	clean := strings.TrimSpace(b.String())
	if clean == "" {
		return fmt.Sprintf("%s_%d", untitledPrefix, position)
	}
	runes := []rune(clean)
	if len(runes) > maxTitleRunes {
		clean = string(runes[:maxTitleRunes])
	}
	return clean
}

// ExportFilename composes the destination name for one chart PDF:
// {store}__{sanitizedTitle}__{dateKey}.pdf.
func ExportFilename(store, sanitizedTitle, dateKey string) string {
	return fmt.Sprintf("%s__%s__%s.pdf", store, sanitizedTitle, dateKey)
}
