package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/sift/internal/tui/styles"
)

// SelectionBar renders the chosen items as chips on a single line
type SelectionBar struct {
	width int
}

// SetWidth updates the available width
func (b *SelectionBar) SetWidth(width int) {
	b.width = width
}

// View renders labels as chips, collapsing the tail into "+N more" when they
// do not fit.
func (b SelectionBar) View(labels []string) string {
	if len(labels) == 0 {
		return styles.DimStyle.Render("nothing selected")
	}

	var chips []string
	used := 0
	for i, label := range labels {
		chip := styles.ChipStyle.Render(styles.Truncate(label, 24))
		w := lipgloss.Width(chip) + 1

		remaining := len(labels) - i - 1
		reserve := 0
		if remaining > 0 {
			reserve = lipgloss.Width(moreChip(remaining)) + 1
		}

		if b.width > 0 && used+w+reserve > b.width {
			chips = append(chips, moreChip(len(labels)-i))
			break
		}
		chips = append(chips, chip)
		used += w
	}
	return strings.Join(chips, " ")
}

func moreChip(n int) string {
	return styles.DimChipStyle.Render(fmt.Sprintf("+%d more", n))
}
