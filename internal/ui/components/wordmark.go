package components

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

const wordmarkArt = ` ███████╗██╗     ██╗   ██╗███████╗███╗   ██╗████████╗███████╗
 ██╔════╝██║     ██║   ██║██╔════╝████╗  ██║╚══██╔══╝╚══███╔╝
 █████╗  ██║     ██║   ██║█████╗  ██╔██╗ ██║   ██║     ███╔╝
 ██╔══╝  ██║     ██║   ██║██╔══╝  ██║╚██╗██║   ██║    ███╔╝
 ██║     ███████╗╚██████╔╝███████╗██║ ╚████║   ██║   ███████╗
 ╚═╝     ╚══════╝ ╚═════╝ ╚══════╝╚═╝  ╚═══╝   ╚═╝   ╚══════╝`

// WordmarkWidth is the narrowest width the block-letter wordmark fits in.
const WordmarkWidth = 62

// Wordmark draws the app name in block letters, or spaced capitals joined
// by sep when width is below WordmarkWidth.
func Wordmark(width int, sep string, fg color.Color) string {
	style := lipgloss.NewStyle().Foreground(fg).Bold(true)
	if width < WordmarkWidth {
		name := "FLUENTZ"
		out := make([]byte, 0, len(name)*(len(sep)+1))
		for i := range len(name) {
			if i > 0 {
				out = append(out, sep...)
			}
			out = append(out, name[i])
		}
		return style.Render(string(out))
	}
	return style.Render(wordmarkArt)
}
