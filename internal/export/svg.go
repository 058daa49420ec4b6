// Package export renders stored run histories as standalone SVG plots.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/vectorize/internal/driver"
)

// FitnessToSVG plots fitness against generation as a polyline.
func FitnessToSVG(history []driver.Sample, width, height int, strokeColor string) string {
	if len(history) < 2 {
		return ""
	}

	minX, maxX := float64(history[0].Generation), float64(history[len(history)-1].Generation)
	minY, maxY := history[0].Fitness, history[0].Fitness
	for _, s := range history {
		if s.Fitness < minY {
			minY = s.Fitness
		}
		if s.Fitness > maxY {
			maxY = s.Fitness
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i, s := range history {
		x := (float64(s.Generation) - minX) / rangeX * float64(width)
		y := float64(height) - (s.Fitness-minY)/rangeY*float64(height)

		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>
`)
	return sb.String()
}
