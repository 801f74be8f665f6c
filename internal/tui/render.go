package tui

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/niuview/internal/gallery"
	"github.com/jask/niuview/internal/imaging"
	"github.com/jask/niuview/internal/picker"
)

const (
	halfBlock       = "▀"
	thumbLabelWidth = 16
	chooserRows     = 12
)

// ---------------------------------------------------------------------------
// Viewer
// ---------------------------------------------------------------------------

// renderPixels draws img into cols x rows terminal cells. Each cell carries two
// vertically stacked pixels: the foreground paints the top one, the background
// the bottom one.
func renderPixels(img image.Image, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	fitted := imaging.Fit(img, cols, rows*2)
	b := fitted.Bounds()
	var sb strings.Builder
	for y := 0; y < b.Dy(); y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < b.Dx(); x++ {
			top := fitted.RGBAAt(x, y)
			style := lipgloss.NewStyle().Foreground(hexColor(top.R, top.G, top.B))
			if y+1 < b.Dy() {
				bottom := fitted.RGBAAt(x, y+1)
				style = style.Background(hexColor(bottom.R, bottom.G, bottom.B))
			}
			sb.WriteString(style.Render(halfBlock))
		}
	}
	return lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, sb.String())
}

func hexColor(r, g, b uint8) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}

func renderEmpty(width, height int) string {
	msg := titleStyle.Render("niuview") + "\n\n" +
		hintStyle.Render("No images yet. Press ") + helpKeyStyle.Render("a") + hintStyle.Render(" to add some.")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, msg)
}

// ---------------------------------------------------------------------------
// Thumbnail strip
// ---------------------------------------------------------------------------

func renderThumb(i int, img gallery.Image, current bool) string {
	w, h := img.Size()
	label := fmt.Sprintf("%d %s", i+1, truncate(img.Name, thumbLabelWidth))
	dims := hintStyle.Render(fmt.Sprintf("%dx%d", w, h))
	style := thumbStyle
	if current {
		style = thumbCurrentStyle
	}
	return style.Render(label + "\n" + dims)
}

// renderStrip lays out thumbnails in a window that always contains current.
func renderStrip(images []gallery.Image, current, width int, help string) string {
	var row string
	if len(images) > 0 {
		cells := make([]string, len(images))
		for i, img := range images {
			cells[i] = renderThumb(i, img, i == current)
		}
		start, end := stripWindow(cells, current, width)
		visible := cells[start:end]
		if start > 0 {
			visible = append([]string{hintStyle.Render("‹ ")}, visible...)
		}
		if end < len(cells) {
			visible = append(visible, hintStyle.Render(" ›"))
		}
		row = lipgloss.JoinHorizontal(lipgloss.Center, visible...)
	}
	body := help
	if row != "" {
		body = row + "\n" + help
	}
	return stripStyle.Width(width).Render(body)
}

// stripWindow returns the [start, end) range of cells that fits in width and
// includes current, growing to the right first.
func stripWindow(cells []string, current, width int) (int, int) {
	if len(cells) == 0 {
		return 0, 0
	}
	if current < 0 {
		current = 0
	}
	if current >= len(cells) {
		current = len(cells) - 1
	}
	budget := width - 4 // room for the scroll markers
	start, end := current, current+1
	used := lipgloss.Width(cells[current])
	for {
		grew := false
		if end < len(cells) && used+lipgloss.Width(cells[end]) <= budget {
			used += lipgloss.Width(cells[end])
			end++
			grew = true
		}
		if start > 0 && used+lipgloss.Width(cells[start-1]) <= budget {
			start--
			used += lipgloss.Width(cells[start])
			grew = true
		}
		if !grew {
			return start, end
		}
	}
}

// ---------------------------------------------------------------------------
// Modals
// ---------------------------------------------------------------------------

func renderChooser(c *picker.Chooser, width int) string {
	if c == nil {
		return ""
	}
	inner := width - 8
	if inner < 24 {
		inner = 24
	}
	selected := len(c.Selected())
	var lines []string
	title := titleStyle.Render("Add images")
	if selected > 0 {
		title += counterStyle.Render(fmt.Sprintf("  %d selected", selected))
	}
	lines = append(lines, title)

	query := strings.TrimSpace(c.Query())
	searchValue := hintStyle.Render("(type to filter)")
	if query != "" {
		searchValue = lipgloss.NewStyle().Foreground(colorText).Render(query)
	}
	lines = append(lines, helpDescStyle.Render("Filter: ")+searchValue, "")

	visible := c.Visible()
	if len(visible) == 0 {
		if c.Len() == 0 {
			lines = append(lines, warnStyle.Render("No images in the library."))
		} else {
			lines = append(lines, hintStyle.Render("Nothing matches."))
		}
	}
	start, end := listWindow(len(visible), c.Cursor(), chooserRows)
	if start > 0 {
		lines = append(lines, hintStyle.Render(fmt.Sprintf("  ↑ %d more", start)))
	}
	for i := start; i < end; i++ {
		h := visible[i]
		mark := "[ ]"
		if pos, ok := c.IsSelected(h.ID); ok {
			mark = selectedStyle.Render(fmt.Sprintf("[%d]", pos))
		}
		row := padRight(" "+mark+" "+truncate(h.Name, inner-6), inner)
		if i == c.Cursor() {
			row = lipgloss.NewStyle().Background(cursorRowBg).Bold(true).Render(row)
		}
		lines = append(lines, row)
	}
	if end < len(visible) {
		lines = append(lines, hintStyle.Render(fmt.Sprintf("  ↓ %d more", len(visible)-end)))
	}

	footer := renderHelp(chooserHelp)
	lines = append(lines, "", footer)
	return modalStyle.Render(strings.Join(lines, "\n"))
}

// listWindow returns the [start, end) slice of n rows of at most size rows
// keeping cursor visible.
func listWindow(n, cursor, size int) (int, int) {
	if n <= size {
		return 0, n
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start+size > n {
		start = n - size
	}
	return start, start + size
}

func renderAlert(text string, failed bool) string {
	style := alertStyle
	if failed {
		style = alertErrorStyle
	}
	body := text + "\n\n" + hintStyle.Render("press any key")
	return style.Render(lipgloss.NewStyle().Align(lipgloss.Center).Render(body))
}

func renderStatus(status string, pending, count, current, width int) string {
	left := status
	if pending > 0 {
		left = counterStyle.Render(fmt.Sprintf("importing (%d)…", pending)) + "  " + left
	}
	right := "0/0"
	if count > 0 {
		right = fmt.Sprintf("%d/%d", current+1, count)
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
