package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sdkprobe/sdkprobe/internal/domain"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	warningItemStyle   = lipgloss.NewStyle().Foreground(warning)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// warningOrder sorts warnings from most to least actionable.
var warningOrder = map[domain.WarningKind]int{
	domain.WarningParseFailure:   0,
	domain.WarningNoPattern:      1,
	domain.WarningLowConfidence:  2,
	domain.WarningRequiresReview: 3,
}

// RenderErrorAnalysis renders the error categorization on its own.
func RenderErrorAnalysis(e domain.ErrorAnalysis) string {
	var b strings.Builder
	renderCategories(&b, e)
	b.WriteString("\n")
	return b.String()
}

func renderCategories(b *strings.Builder, e domain.ErrorAnalysis) {
	b.WriteString("\n")
	fmt.Fprintf(b, "  %s %s\n",
		sectionHeaderStyle.Render("Error Categories"),
		dimStyle.Render(fmt.Sprintf("(%d variants)", len(e.Pool))),
	)

	cats := e.Buckets.Categories()
	if len(cats) == 0 {
		b.WriteString("    " + skipStyle.Render("no error variants categorized") + "\n")
	}
	for _, c := range cats {
		name := padRight(string(c), 20)
		conf := dimStyle.Render(fmt.Sprintf("%.2f", e.PerCategory[c]))
		fmt.Fprintf(b, "    %s %s  %s\n", warningItemStyle.Render(name), conf,
			dimStyle.Render(strings.Join(e.Buckets.Strings(c), ", ")))
	}

	if len(e.Unclassified) > 0 {
		fmt.Fprintf(b, "    %s %s\n",
			skipStyle.Render(padRight("unclassified", 20)),
			faintStyle.Render(truncate(strings.Join(e.Unclassified, ", "), 60)))
	}
	if e.MetadataImport != "" {
		fmt.Fprintf(b, "    %s %s\n", infoTagStyle.Render(padRight("metadata", 20)), dimStyle.Render(e.MetadataImport))
	}
}

func renderWarnings(b *strings.Builder, warnings []domain.Warning) {
	b.WriteString("\n")
	if len(warnings) == 0 {
		b.WriteString("  " + passStyle.Render("No warnings.") + "\n")
		return
	}

	sorted := append([]domain.Warning(nil), warnings...)
	sortWarnings(sorted)

	fmt.Fprintf(b, "  %s %s\n",
		sectionHeaderStyle.Render("Warnings"),
		dimStyle.Render(fmt.Sprintf("(%d)", len(sorted))),
	)
	for _, w := range sorted {
		subject := w.Field
		if w.Package != "" {
			subject = w.Package
		}
		tag := warnTagStyle.Render("⚠")
		if w.Kind == domain.WarningRequiresReview {
			tag = infoTagStyle.Render("·")
		}
		fmt.Fprintf(b, "    %s %s %s\n", tag, titleStyle.Render(subject), dimStyle.Render(w.Message))
	}

	b.WriteString("\n")
	b.WriteString("  " + hintStyle.Render("Fields below the threshold carry a # REVIEW comment in the YAML output."))
	b.WriteString("\n")
}

// sortWarnings is a stable insertion sort by kind.
func sortWarnings(ws []domain.Warning) {
	for i := 1; i < len(ws); i++ {
		for j := i; j > 0 && warningOrder[ws[j].Kind] < warningOrder[ws[j-1].Kind]; j-- {
			ws[j], ws[j-1] = ws[j-1], ws[j]
		}
	}
}
