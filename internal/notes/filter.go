package notes

import "strings"

// Filter narrows a listing to one view, an optional free-text search and
// an optional exact label name.
type Filter struct {
	View   View
	Search string
	Label  string
}

func (f Filter) matches(note Note) bool {
	return matchesView(note, f.View) &&
		matchesSearch(note, f.Search) &&
		matchesLabel(note, f.Label)
}

func matchesView(note Note, view View) bool {
	switch view {
	case ViewArchive:
		return note.Archived && !note.Trashed
	case ViewTrash:
		return note.Trashed
	default:
		return !note.Archived && !note.Trashed
	}
}

// matchesSearch matches a case-insensitive substring against title,
// content, checklist item text and label names. A blank query matches
// everything.
func matchesSearch(note Note, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(note.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(note.Content), query) {
		return true
	}
	for _, item := range note.ChecklistItems {
		if strings.Contains(strings.ToLower(item.Text), query) {
			return true
		}
	}
	for _, label := range note.Labels {
		if strings.Contains(strings.ToLower(label), query) {
			return true
		}
	}
	return false
}

func matchesLabel(note Note, label string) bool {
	if label == "" {
		return true
	}
	return note.HasLabel(label)
}

// partitionPinned puts pinned notes first while keeping the incoming order
// inside each partition.
func partitionPinned(items []Note) []Note {
	ordered := make([]Note, 0, len(items))
	for _, note := range items {
		if note.Pinned {
			ordered = append(ordered, note)
		}
	}
	for _, note := range items {
		if !note.Pinned {
			ordered = append(ordered, note)
		}
	}
	return ordered
}
