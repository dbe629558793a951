package view

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/yungbote/spacekeeper-backend/internal/client/flows"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
)

const (
	cellWidth  = 12
	timeLayout = "2006-01-02 15:04"
)

func SpaceList(st Styles, spaces []*types.Space) string {
	t := &table{title: "Spaces", headers: []string{"NAME", "LAYOUT", "GRIDS", "ITEMS", "ID"}}
	for _, s := range spaces {
		t.add(
			truncate(s.Name, 32),
			fmt.Sprintf("%dx%d", s.Rows, s.Cols),
			strconv.FormatInt(s.GridCount, 10),
			strconv.FormatInt(s.ItemCount, 10),
			s.ID.String(),
		)
	}
	return t.render(st, "No spaces yet.")
}

func ItemList(st Styles, title string, items []*types.Item) string {
	t := &table{title: title, headers: []string{"NAME", "QTY", "CATEGORY", "TAGS", "REMINDER", "ID"}}
	for _, it := range items {
		t.add(
			truncate(it.Name, 32),
			strconv.Itoa(it.Quantity),
			it.Category,
			truncate(strings.Join(it.TagList(), ","), 24),
			formatTime(it.ReminderAt),
			it.ID.String(),
		)
	}
	return t.render(st, "No items found.")
}

func GridList(st Styles, grids []*types.Grid) string {
	t := &table{title: "Grids", headers: []string{"NAME", "POSITION", "SPAN", "ITEMS", "ID"}}
	for _, g := range grids {
		t.add(
			truncate(g.Name, 24),
			fmt.Sprintf("r%d c%d", g.Row, g.Col),
			fmt.Sprintf("%dx%d", g.RowSpan, g.ColSpan),
			strconv.FormatInt(g.ItemCount, 10),
			g.ID.String(),
		)
	}
	return t.render(st, "No grids in this space.")
}

func SpaceCard(st Styles, space *types.Space, grids []*types.Grid) string {
	if space == nil {
		return st.Muted.Render("No space selected.")
	}
	body := fields(st,
		"Name", space.Name,
		"Description", space.Description,
		"Layout", fmt.Sprintf("%d rows x %d cols", space.Rows, space.Cols),
		"Grids", strconv.Itoa(len(grids)),
		"Image", space.ImageURL,
		"ID", space.ID.String(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, st.Card.Render(body), GridLayout(st, space, grids))
}

func ItemCard(st Styles, item *types.Item) string {
	if item == nil {
		return st.Muted.Render("No item selected.")
	}
	grid := "unplaced"
	if item.GridID != nil {
		grid = item.GridID.String()
	}
	return st.Card.Render(fields(st,
		"Name", item.Name,
		"Description", item.Description,
		"Category", item.Category,
		"Tags", strings.Join(item.TagList(), ", "),
		"Quantity", strconv.Itoa(item.Quantity),
		"Space", item.SpaceID.String(),
		"Grid", grid,
		"Reminder", formatTime(item.ReminderAt),
		"Note", item.ReminderNote,
		"Image", item.ImageURL,
		"ID", item.ID.String(),
	))
}

// GridLayout draws the space as rows x cols cells. A grid's name and item
// count sit in its top-left cell; the rest of its cells show its name dimmed.
func GridLayout(st Styles, space *types.Space, grids []*types.Grid) string {
	if space == nil || space.Rows <= 0 || space.Cols <= 0 {
		return ""
	}
	sorted := append([]*types.Grid(nil), grids...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Row != sorted[j].Row {
			return sorted[i].Row < sorted[j].Row
		}
		return sorted[i].Col < sorted[j].Col
	})

	rows := make([]string, 0, space.Rows)
	for r := 0; r < space.Rows; r++ {
		cells := make([]string, 0, space.Cols)
		for c := 0; c < space.Cols; c++ {
			cells = append(cells, renderCell(st, sorted, r, c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCell(st Styles, grids []*types.Grid, row, col int) string {
	for _, g := range grids {
		if !g.Covers(row, col) {
			continue
		}
		name := truncate(g.Name, cellWidth)
		if row == g.Row && col == g.Col {
			return st.GridCell.Render(name + "\n" + fmt.Sprintf("%d items", g.ItemCount))
		}
		return st.GridCell.Render(st.Muted.Render(name) + "\n")
	}
	return st.EmptyCell.Render("·\n")
}

// FormSummary lists the fields a pending form will send.
func FormSummary(st Styles, title string, form map[string]string) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, form[k])
	}
	if len(pairs) == 0 {
		return st.Title.Render(title) + "\n" + st.Muted.Render("(empty)")
	}
	return st.Title.Render(title) + "\n" + fields(st, pairs...)
}

// Status summarises loading, the last message and the last edit outcome.
func Status(st Styles, loading bool, message string, es flows.EditStatus) string {
	switch {
	case loading:
		return st.Muted.Render("Loading…")
	case es.Done && es.IsSuccess:
		return st.Success.Render(fmt.Sprintf("✓ %s succeeded", es.Kind))
	case es.Done:
		return st.Error.Render(fmt.Sprintf("✗ %s failed: %s", es.Kind, es.Message))
	case message != "":
		return st.Error.Render(message)
	}
	return ""
}

func User(st Styles, u *types.User) string {
	if u == nil {
		return st.Muted.Render("Not logged in.")
	}
	return st.Card.Render(fields(st,
		"Name", strings.TrimSpace(u.FirstName+" "+u.LastName),
		"Email", u.Email,
		"Avatar", u.AvatarURL,
		"ID", u.ID.String(),
	))
}

func fields(st Styles, kv ...string) string {
	lines := make([]string, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		lines = append(lines, st.Label.Render(kv[i])+kv[i+1])
	}
	return strings.Join(lines, "\n")
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(timeLayout)
}
