package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/hnreader/internal/model"
	"github.com/abelbrown/hnreader/internal/work"
)

// linesPerStory is the rendered height of one story: title line + meta line.
const linesPerStory = 2

// RenderHeader renders the category tabs. In the saved view the tabs are
// replaced by the favorites count.
func RenderHeader(current model.Category, saved bool, favorites int, width int, st Styles) string {
	var b strings.Builder
	b.WriteString(st.Header.Render("Y Hacker News"))

	if saved {
		b.WriteString(st.ActiveTab.Render(fmt.Sprintf("★ Saved (%d)", favorites)))
	} else {
		for i, cat := range model.Categories {
			label := fmt.Sprintf("%d %s", i+1, cat)
			if cat == current {
				b.WriteString(st.ActiveTab.Render(label))
			} else {
				b.WriteString(st.Tab.Render(label))
			}
		}
	}

	return lipgloss.NewStyle().MaxWidth(width).Render(b.String())
}

// RenderStories renders the story list, scrolled so cursor stays visible.
func RenderStories(stories []model.Story, isFavorite func(uint64) bool, cursor, width, height int, st Styles, now time.Time) string {
	if len(stories) == 0 {
		return st.HelpStyle.Render("No stories to display.")
	}

	visible := height / linesPerStory
	if visible < 1 {
		visible = 1
	}
	offset := calcScrollOffset(cursor, visible)

	var b strings.Builder
	for i := offset; i < len(stories) && i < offset+visible; i++ {
		b.WriteString(renderStory(model.NewStoryDisplay(stories[i]), i, i == cursor, isFavorite(stories[i].ID), width, st, now))
	}
	return b.String()
}

// calcScrollOffset returns the first index to render so cursor is on screen.
func calcScrollOffset(cursor, visible int) int {
	if cursor < visible {
		return 0
	}
	return cursor - visible + 1
}

// renderStory renders one story as a title line and a meta line.
func renderStory(d model.StoryDisplay, index int, selected, favorite bool, width int, st Styles, now time.Time) string {
	rank := st.Rank.Render(fmt.Sprintf("%d.", index+1))

	mark := "  "
	if favorite {
		mark = st.FavoriteMark.Render("★ ")
	}

	domain := ""
	if d.Domain != "" {
		domain = " (" + d.Domain + ")"
	}

	// rank(4) + space + mark(2)
	prefixWidth := 7
	titleWidth := width - prefixWidth - runewidth.StringWidth(domain)
	if titleWidth < 10 {
		titleWidth = 10
	}
	title := runewidth.Truncate(d.Title, titleWidth, "…")

	titleStyle := st.NormalItem
	if selected {
		titleStyle = st.SelectedItem
	}

	line := rank + " " + mark + titleStyle.Render(title) + st.Domain.Render(domain)

	meta := fmt.Sprintf("%d %s by %s %s | %s",
		d.Score, plural(d.Score, "point"), d.By, d.Age(now), commentsLabel(d.Story))
	metaLine := strings.Repeat(" ", prefixWidth) + st.Meta.Render(runewidth.Truncate(meta, width-prefixWidth, "…"))

	return line + "\n" + metaLine + "\n"
}

func commentsLabel(s model.Story) string {
	n := s.Comments()
	if n == 0 {
		return "discuss"
	}
	return fmt.Sprintf("%d %s", n, plural(n, "comment"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// StatusInfo is everything the status bar shows.
type StatusInfo struct {
	Loading  bool
	Spinner  string
	Category model.Category
	Saved    bool
	Count    int
	Cursor   int
	Notice   string
	LastWork *work.Item
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(info StatusInfo, width int, st Styles) string {
	var left string
	switch {
	case info.Notice != "":
		left = info.Notice
	case info.Loading && !info.Saved:
		left = info.Spinner + " Loading " + info.Category.String() + "…"
	case info.Count == 0:
		left = "0 stories"
	default:
		left = fmt.Sprintf("%d/%d", info.Cursor+1, info.Count)
	}

	right := ""
	if w := info.LastWork; w != nil {
		text := fmt.Sprintf("%s %s", w.StatusIcon(), w.Description)
		if w.Result != "" {
			text += ": " + w.Result
		}
		text += fmt.Sprintf(" (%s)", w.Duration().Round(time.Millisecond))
		if w.Status == work.StatusFailed {
			right = st.WorkFailed.Render(text)
		} else {
			right = st.WorkDone.Render(text)
		}
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 2 // bar padding
	if padding < 1 {
		padding = 1
	}
	return st.StatusBar.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

// workPanelItems caps the finished items listed in the work panel.
const workPanelItems = 5

// RenderWorkPanel lists in-flight and recently finished fetches with the
// pool counters.
func RenderWorkPanel(snap work.Snapshot, width int, st Styles) string {
	var lines []string
	lines = append(lines, st.Meta.Render("Work  "+snap.Stats.String()))

	for _, item := range snap.Active {
		lines = append(lines, workLine(item, st.NormalItem))
	}
	for _, item := range snap.Pending {
		lines = append(lines, workLine(item, st.Meta))
	}

	done := snap.Completed
	if len(done) > workPanelItems {
		done = done[:workPanelItems]
	}
	for _, item := range done {
		style := st.WorkDone
		if item.Status == work.StatusFailed {
			style = st.WorkFailed
		}
		lines = append(lines, workLine(item, style))
	}

	return lipgloss.NewStyle().MaxWidth(width).Padding(0, 1).Render(strings.Join(lines, "\n"))
}

func workLine(item work.Item, style lipgloss.Style) string {
	text := fmt.Sprintf("%s %s %s", item.StatusIcon(), item.Type.Icon(), item.Description)
	switch {
	case item.Error != nil:
		text += ": " + item.Error.Error()
	case item.Result != "":
		text += ": " + item.Result
	}
	if d := item.Duration(); d > 0 {
		text += fmt.Sprintf(" (%s)", d.Round(time.Millisecond))
	}
	return style.Render(text)
}
