package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sdkprobe/sdkprobe/internal/domain"
)

const workspaceMaxRows = 25

// RenderWorkspace produces a terminal view of the workspace members: a
// header with the detected naming pattern and a member table.
func RenderWorkspace(s *domain.WorkspaceSummary) string {
	if s == nil || s.Workspace == nil || len(s.Workspace.Packages) == 0 {
		return "\n  " + dimStyle.Render("No workspace members found.") + "\n\n"
	}

	var b strings.Builder
	renderWorkspaceHeader(&b, s)
	renderMemberTable(&b, s.Members)
	b.WriteString("\n")
	return b.String()
}

func renderWorkspaceHeader(b *strings.Builder, s *domain.WorkspaceSummary) {
	ws := s.Workspace
	title := headerStyle.Render(fmt.Sprintf("%s workspace", ws.Kind))
	rootLine := lipgloss.NewStyle().Bold(true).Foreground(fg).Render(ws.Root)

	pattern := string(s.CratePattern.Value.Template)
	if s.CratePattern.Value.Monolithic {
		pattern = "monolithic"
	}
	if pattern == "" {
		pattern = "no pattern"
	}
	patternLine := lipgloss.NewStyle().
		Foreground(confidenceColor(s.CratePattern.Confidence)).
		Render(fmt.Sprintf("%s  (%.2f)", pattern, s.CratePattern.Confidence))

	counts := map[domain.MemberRole]int{}
	for _, m := range s.Members {
		counts[m.Role]++
	}
	stats := dimStyle.Render(fmt.Sprintf("%d members  ·  %d services  ·  %d infrastructure  ·  %d config",
		len(s.Members), counts[domain.RoleService], counts[domain.RoleInfrastructure], counts[domain.RoleConfig]))

	b.WriteString(boxStyle.Render(title + "\n\n" + rootLine + "\n" + patternLine + "\n" + stats))
	b.WriteString("\n\n")
}

func renderMemberTable(b *strings.Builder, members []domain.MemberSummary) {
	rows := append([]domain.MemberSummary(nil), members...)

	// Infrastructure first by fan-in, then services alphabetically.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Role != rows[j].Role {
			return roleRank(rows[i].Role) < roleRank(rows[j].Role)
		}
		if rows[i].DependedOnBy != rows[j].DependedOnBy {
			return rows[i].DependedOnBy > rows[j].DependedOnBy
		}
		return rows[i].ShortName < rows[j].ShortName
	})

	hdrLine := fmt.Sprintf("  %-32s %-10s %3s  %-14s  %s",
		"Package", "Version", "In", "Role", "Service")
	b.WriteString(titleStyle.Render(hdrLine) + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 68)) + "\n")

	shown := min(len(rows), workspaceMaxRows)
	for _, r := range rows[:shown] {
		name := r.ShortName
		if name == "" {
			name = "./"
		}
		token := r.Token
		if token == "" {
			token = "-"
		}
		line := fmt.Sprintf("  %s %s %3d  %s  %s",
			dimStyle.Render(truncateOrPad(name, 32)),
			faintStyle.Render(truncateOrPad(r.Package.Version, 10)),
			r.DependedOnBy,
			roleLabel(r.Role),
			dimStyle.Render(token))
		b.WriteString(line + "\n")
	}

	if remaining := len(rows) - shown; remaining > 0 {
		b.WriteString(faintStyle.Render(fmt.Sprintf("  (%d more packages)\n", remaining)))
	}
}

func roleRank(r domain.MemberRole) int {
	switch r {
	case domain.RoleConfig:
		return 0
	case domain.RoleInfrastructure:
		return 1
	default:
		return 2
	}
}

func roleLabel(role domain.MemberRole) string {
	s := padRight(string(role), 14)
	switch role {
	case domain.RoleService:
		return passStyle.Render(s)
	case domain.RoleConfig:
		return warnStyle.Render(s)
	default:
		return dimStyle.Render(s)
	}
}
