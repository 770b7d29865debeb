package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

var sparklineBlockRunes = []rune(sparklineBlocks)

// RenderSparkline draws the most recent width ratios, each in [0, 1], on a
// fixed scale: 0 is the lowest block and 1 the highest. The line is colored
// by the last value.
func RenderSparkline(ratios []float64, width int) string {
	if len(ratios) == 0 || width <= 0 {
		return ""
	}
	if len(ratios) > width {
		ratios = ratios[len(ratios)-width:]
	}

	var sb strings.Builder
	top := len(sparklineBlockRunes) - 1
	for _, v := range ratios {
		level := int(clampRatio(v)*float64(top) + 0.5)
		sb.WriteRune(sparklineBlockRunes[level])
	}

	style := lipgloss.NewStyle().Foreground(RatioColor(ratios[len(ratios)-1]))
	return style.Render(sb.String())
}

// RatioColor is green only when everything is safe, amber from half up, red below.
func RatioColor(v float64) lipgloss.Color {
	switch {
	case v >= 1:
		return ColorSuccess
	case v >= 0.5:
		return ColorWarning
	default:
		return ColorError
	}
}

func clampRatio(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
