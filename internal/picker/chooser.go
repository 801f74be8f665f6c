package picker

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ChooserAction is what a key press did to the chooser.
type ChooserAction int

const (
	ChooserNone ChooserAction = iota
	ChooserMoved
	ChooserToggled
	ChooserSubmitted
	ChooserCancelled
)

// ChooserResult is returned from HandleKey. Selected is only set on submit
// and is in the order the items were toggled on.
type ChooserResult struct {
	Action   ChooserAction
	Handle   Handle
	Selected []Handle
}

type scoredHandle struct {
	h     Handle
	score int
	dist  int
}

// Chooser is the multi-select state behind the picker modal: a filterable
// list with a cursor that remembers the order items were selected in.
type Chooser struct {
	items    []Handle
	filtered []Handle
	query    string
	cursor   int
	order    []string
	selected map[string]Handle
}

func NewChooser(items []Handle) *Chooser {
	c := &Chooser{selected: make(map[string]Handle)}
	c.SetItems(items)
	return c
}

func (c *Chooser) SetItems(items []Handle) {
	if c == nil {
		return
	}
	c.items = append([]Handle(nil), items...)
	c.rebuildFiltered()
}

func (c *Chooser) SetQuery(q string) {
	if c == nil {
		return
	}
	c.query = q
	c.rebuildFiltered()
}

func (c *Chooser) Query() string { return c.query }

func (c *Chooser) Cursor() int { return c.cursor }

// Visible returns the filtered items in display order.
func (c *Chooser) Visible() []Handle {
	if c == nil {
		return nil
	}
	return append([]Handle(nil), c.filtered...)
}

func (c *Chooser) Len() int { return len(c.items) }

func (c *Chooser) CursorUp() {
	if c == nil {
		return
	}
	if c.cursor > 0 {
		c.cursor--
	}
}

func (c *Chooser) CursorDown() {
	if c == nil {
		return
	}
	if c.cursor < len(c.filtered)-1 {
		c.cursor++
	}
}

// Current returns the item under the cursor.
func (c *Chooser) Current() (Handle, bool) {
	if c == nil || len(c.filtered) == 0 {
		return Handle{}, false
	}
	return c.filtered[c.cursor], true
}

// Toggle flips selection of the item under the cursor.
func (c *Chooser) Toggle() {
	h, ok := c.Current()
	if !ok {
		return
	}
	if _, on := c.selected[h.ID]; on {
		delete(c.selected, h.ID)
		for i, id := range c.order {
			if id == h.ID {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
		return
	}
	c.selected[h.ID] = h
	c.order = append(c.order, h.ID)
}

// IsSelected reports whether id is selected, and its 1-based selection position.
func (c *Chooser) IsSelected(id string) (int, bool) {
	if c == nil {
		return 0, false
	}
	if _, ok := c.selected[id]; !ok {
		return 0, false
	}
	for i, sid := range c.order {
		if sid == id {
			return i + 1, true
		}
	}
	return 0, false
}

// Selected returns the selection in the order items were toggled on.
func (c *Chooser) Selected() []Handle {
	if c == nil || len(c.order) == 0 {
		return nil
	}
	out := make([]Handle, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.selected[id])
	}
	return out
}

func (c *Chooser) HandleKey(keyName string) ChooserResult {
	if c == nil {
		return ChooserResult{Action: ChooserNone}
	}

	switch keyName {
	case "up", "ctrl+p":
		before := c.cursor
		c.CursorUp()
		if c.cursor != before {
			return ChooserResult{Action: ChooserMoved}
		}
		return ChooserResult{Action: ChooserNone}
	case "down", "ctrl+n":
		before := c.cursor
		c.CursorDown()
		if c.cursor != before {
			return ChooserResult{Action: ChooserMoved}
		}
		return ChooserResult{Action: ChooserNone}
	case "space", " ":
		h, ok := c.Current()
		if !ok {
			return ChooserResult{Action: ChooserNone}
		}
		c.Toggle()
		return ChooserResult{Action: ChooserToggled, Handle: h}
	case "enter":
		selected := c.Selected()
		if len(selected) == 0 {
			// nothing toggled: take the row under the cursor
			if h, ok := c.Current(); ok {
				selected = []Handle{h}
			}
		}
		return ChooserResult{Action: ChooserSubmitted, Selected: selected}
	case "esc":
		return ChooserResult{Action: ChooserCancelled}
	case "backspace":
		if len(c.query) > 0 {
			c.SetQuery(c.query[:len(c.query)-1])
		}
		return ChooserResult{Action: ChooserNone}
	default:
		if isPrintableASCIIKey(keyName) {
			c.SetQuery(c.query + keyName)
		}
		return ChooserResult{Action: ChooserNone}
	}
}

func (c *Chooser) rebuildFiltered() {
	q := strings.TrimSpace(c.query)
	scored := make([]scoredHandle, 0, len(c.items))
	for _, h := range c.items {
		matched, score := fuzzyMatchScore(h.Name, q)
		if !matched {
			continue
		}
		sh := scoredHandle{h: h, score: score}
		if q != "" {
			sh.dist = levenshtein.ComputeDistance(strings.ToLower(baseName(h.Name)), strings.ToLower(q))
		}
		scored = append(scored, sh)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		if scored[i].dist != scored[j].dist {
			return scored[i].dist < scored[j].dist
		}
		li := strings.ToLower(scored[i].h.Name)
		lj := strings.ToLower(scored[j].h.Name)
		if li != lj {
			return li < lj
		}
		return scored[i].h.ID < scored[j].h.ID
	})
	out := make([]Handle, 0, len(scored))
	for _, sh := range scored {
		out = append(out, sh.h)
	}
	c.filtered = out

	if c.cursor > len(c.filtered)-1 {
		c.cursor = len(c.filtered) - 1
	}
	if c.cursor < 0 {
		c.cursor = 0
	}
}

func baseName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}

func fuzzyMatchScore(label, query string) (bool, int) {
	if query == "" {
		return true, 0
	}
	labelLower := strings.ToLower(label)
	queryLower := strings.ToLower(query)

	matchIdx := make([]int, 0, len(queryLower))
	searchFrom := 0
	for i := 0; i < len(queryLower); i++ {
		ch := queryLower[i]
		found := false
		for j := searchFrom; j < len(labelLower); j++ {
			if labelLower[j] == ch {
				matchIdx = append(matchIdx, j)
				searchFrom = j + 1
				found = true
				break
			}
		}
		if !found {
			return false, 0
		}
	}

	score := len(queryLower)
	if len(matchIdx) > 0 && matchIdx[0] == 0 {
		score += 10
	}
	for i := 1; i < len(matchIdx); i++ {
		if matchIdx[i] == matchIdx[i-1]+1 {
			score += 3
		}
	}
	if strings.EqualFold(baseName(label), strings.TrimSpace(query)) {
		score += 20
	}
	return true, score
}

func isPrintableASCIIKey(keyName string) bool {
	return len(keyName) == 1 && keyName[0] >= 32 && keyName[0] < 127
}
