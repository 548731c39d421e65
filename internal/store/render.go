package store

import "fmt"

const (
	markChecked   = "☑"
	markUnchecked = "☐"
)

// Render returns one display line per item: a 1-based index, the label and
// a checkbox mark. The index follows label order and is recomputed on every
// call, so it must not be used to address items.
func (s *Store) Render() []string {
	items := s.Items()
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = RenderItem(i+1, item)
	}
	return lines
}

// RenderItem formats a single display line.
func RenderItem(index int, item Item) string {
	mark := markUnchecked
	if item.Checked {
		mark = markChecked
	}
	return fmt.Sprintf("%d. %s %s", index, item.Label, mark)
}
