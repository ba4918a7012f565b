// Package render formats explorer results for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/draymottishaw/college-assisted-explorer/internal/derive"
	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
	"github.com/draymottishaw/college-assisted-explorer/internal/service"
)

var (
	ColorGreen  = lipgloss.Color("#4CC245")
	ColorYellow = lipgloss.Color("#FFC107")
	ColorOrange = lipgloss.Color("#FF9800")
	ColorRed    = lipgloss.Color("#F44336")
	ColorMuted  = lipgloss.Color("#9CA3AF")
	ColorTitle  = lipgloss.Color("#A78BFA")
)

// rankBandSize is the number of ranks sharing one color.
const rankBandSize = 7

// RankColor colors a result by its position: the first seven green, then
// yellow, orange and red.
func RankColor(idx int) lipgloss.Color {
	switch idx / rankBandSize {
	case 0:
		return ColorGreen
	case 1:
		return ColorYellow
	case 2:
		return ColorOrange
	default:
		return ColorRed
	}
}

// BandColor colors a value graded against its role average.
func BandColor(b metrics.Band) lipgloss.Color {
	switch b {
	case metrics.BandExcellent:
		return ColorGreen
	case metrics.BandAbove:
		return lipgloss.Color("#90EE90")
	case metrics.BandAverage:
		return ColorYellow
	case metrics.BandBelow:
		return ColorOrange
	case metrics.BandBad:
		return ColorRed
	default:
		return ColorMuted
	}
}

// Percent formats a ratio as a percentage, or "-" when missing.
func Percent(r metrics.Ratio) string {
	v, ok := r.Get()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}

// Similar writes a ranked similarity table.
func Similar(w io.Writer, res *service.SimilarResult) error {
	titleStyle := lipgloss.NewStyle().Foreground(ColorTitle).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	title := fmt.Sprintf("Shot diet similarity to %s", res.Player.Player)
	if res.CurrentOnly {
		title += " (vs drafted players)"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("population %s, %d candidates", res.Population, res.Candidates)))
	b.WriteString("\n\n")

	nameWidth := len("Player")
	for _, m := range res.Matches {
		if n := lipgloss.Width(m.Player); n > nameWidth {
			nameWidth = n
		}
	}

	for i, m := range res.Matches {
		role := "Unknown"
		if m.Role.Valid {
			role = m.Role.String
		}
		score := lipgloss.NewStyle().Foreground(RankColor(i)).Bold(i < rankBandSize).
			Render(fmt.Sprintf("%5.1f%%", m.Similarity*100))
		fmt.Fprintf(&b, "%3d. %-*s  %s  %s\n", i+1, nameWidth, m.Player, score, dimStyle.Render(role))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Profile writes a player's percentage columns with role-average bands.
func Profile(w io.Writer, p *service.Profile) error {
	titleStyle := lipgloss.NewStyle().Foreground(ColorTitle).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Player.Player))
	b.WriteString(" ")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s %s %d-%d",
		textOr(p.Player.Role, "Unknown"), textOr(p.Player.Year, "Unknown"), p.Player.FirstSeason, p.Player.LastSeason)))
	b.WriteString("\n")

	for _, m := range p.Metrics {
		value := lipgloss.NewStyle().Foreground(BandColor(m.Band)).Render(fmt.Sprintf("%7s", Percent(m.Value)))
		fmt.Fprintf(&b, "%-20s %s  %s\n", m.Column, value, dimStyle.Render("role avg "+Percent(m.RoleAvg)))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RunSummary writes one line per derivation run.
func RunSummary(w io.Writer, result *derive.Result, output string) error {
	okStyle := lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(ColorYellow)

	line := fmt.Sprintf("%s %s: %d players from %d seasons (%d-%d)",
		okStyle.Render("✓"), result.Dataset, len(result.Rows), result.Seasons, result.First, result.Last)
	if output != "" {
		line += " → " + output
	}
	if len(result.Gaps) > 0 {
		line += " " + warnStyle.Render(fmt.Sprintf("⚠ %d gaps", len(result.Gaps)))
	}

	_, err := fmt.Fprintln(w, line)
	return err
}

func textOr(t metrics.Text, fallback string) string {
	if t.Valid {
		return t.String
	}
	return fallback
}
