// Package tui renders analysis results for the terminal with lipgloss.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sdkprobe/sdkprobe/internal/domain"
)

// ── warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	lime      = lipgloss.Color("#A3E635")
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	levelColors = map[domain.Level]lipgloss.Color{
		domain.LevelHigh:   success,
		domain.LevelMedium: warning,
		domain.LevelLow:    danger,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	fieldStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// scoredFields is the display order of the per-field confidences.
var scoredFields = []struct {
	key    string
	label  string
	weight float64
}{
	{domain.FieldCratePattern, "crate pattern", domain.WeightCratePattern},
	{domain.FieldClientType, "client type", domain.WeightClientType},
	{domain.FieldConfigCrate, "config package", domain.WeightConfigCrate},
	{domain.FieldConfigAttrs, "config attributes", domain.WeightConfigAttrs},
	{domain.FieldErrorCategorization, "error categorization", domain.WeightErrorCategorization},
}

// RenderAnalysis formats the run summary: overall confidence, per-field
// bars with the detected values, error buckets and warnings.
func RenderAnalysis(r *domain.AnalysisResult) string {
	var b strings.Builder

	// ── Header ──
	level := r.Confidence.Level
	title := headerStyle.Render("sdkprobe")
	subtitle := dimStyle.Render(fmt.Sprintf("SDK analysis · %s", r.Provider))
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(levelColor(level)).
		Render(fmt.Sprintf("%.2f  %s", r.Confidence.Overall, level))
	automation := dimStyle.Render(fmt.Sprintf("automation %d%%", r.Confidence.Automation()))

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled + "\n" + automation))
	b.WriteString("\n\n")

	// ── Fields ──
	values := fieldValues(r)
	for _, f := range scoredFields {
		renderField(&b, f.label, r.Confidence.PerField[f.key], f.weight, values[f.key])
	}

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n")

	renderCategories(&b, r.Errors.Value)
	renderWarnings(&b, r.Warnings)

	b.WriteString("\n")
	return b.String()
}

func fieldValues(r *domain.AnalysisResult) map[string]string {
	crate := string(r.CratePattern.Value.Template)
	if r.CratePattern.Value.Monolithic {
		crate = "monolithic"
	}
	config := r.ConfigPackageName()
	if config == "" {
		config = "none"
	}
	client := r.ClientType.Value.TypePath()
	if client == "" {
		client = "none"
	} else if r.ClientType.Value.Async {
		client += " (async)"
	}
	return map[string]string{
		domain.FieldCratePattern:        crate,
		domain.FieldClientType:          client,
		domain.FieldConfigCrate:         config,
		domain.FieldConfigAttrs:         attributeNames(r.Attributes),
		domain.FieldErrorCategorization: fmt.Sprintf("%d patterns", r.Errors.Value.Buckets.Len()),
	}
}

func attributeNames(attrs []domain.DetectionResult[domain.ConfigAttribute]) string {
	if len(attrs) == 0 {
		return "none"
	}
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.Value.Name
	}
	return strings.Join(names, ", ")
}

func renderField(b *strings.Builder, label string, score, weight float64, value string) {
	color := confidenceColor(score)
	scoreText := lipgloss.NewStyle().Bold(true).Foreground(color).Render(fmt.Sprintf("%.2f", score))
	bar := coloredBar(score, 20)
	w := dimStyle.Render(fmt.Sprintf("%2d%%", int(weight*100+0.5)))

	name := fieldStyle.Render(padRight(label, 22))
	fmt.Fprintf(b, "  %s %s  %s %s\n", name, bar, scoreText, w)
	if value != "" {
		fmt.Fprintf(b, "    %s\n", faintStyle.Render(truncate(value, 60)))
	}
}

// RenderHistory formats the run history for terminal output.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No analysis history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Analysis History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		date := e.Timestamp
		if len(date) > 10 {
			date = date[:10]
		}

		scoreStyled := lipgloss.NewStyle().
			Foreground(confidenceColor(e.Overall)).
			Render(fmt.Sprintf("%.2f", e.Overall))

		line := fmt.Sprintf("  %s  %s  %s  %-6s  %s",
			dimStyle.Render(date),
			faintStyle.Render(hash),
			scoreStyled,
			e.Level,
			dimStyle.Render(e.Provider),
		)

		if i > 0 {
			diff := e.Overall - entries[i-1].Overall
			if diff >= 0.005 {
				line += "  " + passStyle.Render(fmt.Sprintf("↑%.2f", diff))
			} else if diff <= -0.005 {
				line += "  " + failStyle.Render(fmt.Sprintf("↓%.2f", -diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func coloredBar(score float64, width int) string {
	filled := max(0, min(int(score*float64(width)+0.5), width))
	empty := width - filled

	color := confidenceColor(score)
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func confidenceColor(score float64) lipgloss.Color {
	switch {
	case score >= 0.8:
		return success
	case score >= 0.6:
		return lime
	case score >= 0.4:
		return warning
	default:
		return danger
	}
}

func levelColor(l domain.Level) lipgloss.Color {
	if c, ok := levelColors[l]; ok {
		return c
	}
	return fg
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func truncate(s string, width int) string {
	if len(s) > width {
		return s[:width-1] + "…"
	}
	return s
}

func truncateOrPad(s string, width int) string {
	return padRight(truncate(s, width), width)
}
