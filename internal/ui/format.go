// ABOUTME: Terminal UI formatting utilities
// ABOUTME: Provides human-readable output for moves, books, completeness and drills

package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/repertoire"
)

const barWidth = 20

var faint = color.New(color.Faint)

// annotationColor picks the colour a classification is shown in.
func annotationColor(t models.AnnotationType) *color.Color {
	switch t {
	case models.RepertoireMatch:
		return color.New(color.FgGreen)
	case models.RepertoireAlternative:
		return color.New(color.FgCyan)
	case models.RepertoireOpponentMove:
		return color.New(color.FgBlue)
	case models.BreaksRepertoire, models.EngineBlunder, models.EngineMistake:
		return color.New(color.FgRed)
	case models.BreaksOpponentRepertoire, models.EngineInaccuracy:
		return color.New(color.FgYellow)
	case models.NotFound:
		return color.New(color.FgMagenta)
	default:
		return faint
	}
}

// FormatAnnotation returns the coloured name of a classification.
func FormatAnnotation(t models.AnnotationType) string {
	return annotationColor(t).Sprint(t.String())
}

// FormatMove formats a SAN move in the colour of its classification.
func FormatMove(san string, t models.AnnotationType) string {
	return fmt.Sprintf("%s %s", annotationColor(t).Sprint(san), faint.Sprintf("(%s)", t))
}

// FormatMoveList numbers a SAN line the way a score sheet does.
// whiteFirst is false when the line starts with a black move.
func FormatMoveList(sans []string, whiteFirst bool) string {
	if len(sans) == 0 {
		return faint.Sprint("(no moves)")
	}

	var b strings.Builder
	moveNo := 1
	white := whiteFirst
	for i, san := range sans {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch {
		case white:
			fmt.Fprintf(&b, "%d. ", moveNo)
		case i == 0:
			fmt.Fprintf(&b, "%d... ", moveNo)
		}
		b.WriteString(san)
		if !white {
			moveNo++
		}
		white = !white
	}
	return b.String()
}

// FormatOption formats a repertoire move, marking the main move.
func FormatOption(opt repertoire.Option, main, alternative bool) string {
	switch {
	case main:
		return fmt.Sprintf("%s %s", color.GreenString(opt.DisplayNotation), faint.Sprint("(main)"))
	case alternative:
		return fmt.Sprintf("%s %s", color.CyanString(opt.DisplayNotation), faint.Sprint("(alternative)"))
	default:
		return opt.DisplayNotation
	}
}

// FormatCompleteness renders a completeness value in [0,1] as a bar and a percentage.
func FormatCompleteness(v float64) string {
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	filled := int(math.Round(v * barWidth))
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)

	c := color.New(color.FgRed)
	switch {
	case v >= 0.99:
		c = color.New(color.FgGreen)
	case v >= 0.5:
		c = color.New(color.FgYellow)
	}
	return fmt.Sprintf("[%s] %s", c.Sprint(bar), c.Sprintf("%3.0f%%", v*100))
}

// FormatBook formats a book summary line.
func FormatBook(name string, side models.Side, positions int, updated time.Time) string {
	return fmt.Sprintf("%s %s - %d positions (%s)",
		color.GreenString(name),
		faint.Sprintf("[%s]", side.Name()),
		positions,
		faint.Sprint(FormatRelativeTime(updated)))
}

// FormatDrill formats a drill log entry.
func FormatDrill(d *models.DrillRecord) string {
	if d == nil {
		return faint.Sprint("(invalid drill)")
	}
	streak := color.RedString("%+d", d.Streak)
	if d.Succeeded() {
		streak = color.GreenString("%+d", d.Streak)
	}
	return fmt.Sprintf("  %s %s %s - %s",
		d.PlayedAt.Local().Format("Jan 2, 3:04 PM"),
		streak,
		d.Outcome,
		faint.Sprint(FormatMoveList(d.Line, true)))
}

// FormatRelativeTime formats a time as relative to now.
func FormatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	// Handle future times (clock skew, bad data)
	if diff < 0 {
		return color.YellowString("in the future")
	}

	if diff < time.Minute {
		return "just now"
	}
	if diff < time.Hour {
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	}
	if diff < 24*time.Hour {
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(diff.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
