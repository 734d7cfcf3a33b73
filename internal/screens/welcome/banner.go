package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/ui/theme"
)

const bannerArt = `
 ███╗   ███╗ █████╗ ███╗   ██╗██████╗  █████╗ ██████╗ ██╗███╗   ██╗
 ████╗ ████║██╔══██╗████╗  ██║██╔══██╗██╔══██╗██╔══██╗██║████╗  ██║
 ██╔████╔██║███████║██╔██╗ ██║██║  ██║███████║██████╔╝██║██╔██╗ ██║
 ██║╚██╔╝██║██╔══██║██║╚██╗██║██║  ██║██╔══██║██╔══██╗██║██║╚██╗██║
 ██║ ╚═╝ ██║██║  ██║██║ ╚████║██████╔╝██║  ██║██║  ██║██║██║ ╚████║
 ╚═╝     ╚═╝╚═╝  ╚═╝╚═╝  ╚═══╝╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝╚═╝  ╚═══╝`

const bannerCompact = "汉 语 · M A N D A R I N"

// RenderBanner returns the MANDARIN banner styled in the primary color.
// Uses a compact fallback for terminals narrower than 70 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 70 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
