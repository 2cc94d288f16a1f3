// Package export renders entities to downloadable formats and parses
// uploaded files back into entity-shaped records. The JSON path round
// trips losslessly; TXT and DOC are best-effort human formats.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"organizer/internal/notes"
)

// ErrUnsupportedFormat rejects file extensions outside json/txt/doc.
var ErrUnsupportedFormat = errors.New("export: unsupported file format")

// blockSeparator divides notes inside the plain-text format.
var blockSeparator = strings.Repeat("=", 60)

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	whitespaceRun        = regexp.MustCompile(`\s+`)
	htmlTag              = regexp.MustCompile(`<[^>]+>`)
	brTag                = regexp.MustCompile(`(?i)<br\s*/?>`)
)

// SanitizeFilename strips characters that are invalid in filenames and
// collapses whitespace to underscores.
func SanitizeFilename(name string) string {
	cleaned := invalidFilenameChars.ReplaceAllString(name, "")
	cleaned = whitespaceRun.ReplaceAllString(cleaned, "_")
	cleaned = strings.Trim(cleaned, "_")
	if len(cleaned) > 100 {
		cleaned = cleaned[:100]
	}
	if cleaned == "" {
		return "Note"
	}
	return cleaned
}

// FilenameDate formats a timestamp as YYYY-MM-DD_HHMM for filenames.
func FilenameDate(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02_1504")
}

// NotesJSON renders notes as indented JSON. Importing the output
// reproduces equivalent notes, id reassignment aside.
func NotesJSON(items []notes.Note) ([]byte, error) {
	return json.MarshalIndent(items, "", "  ")
}

// NoteTXT renders one note as a plain-text block.
func NoteTXT(note notes.Note) string {
	labels := "none"
	if len(note.Labels) > 0 {
		labels = strings.Join(note.Labels, ", ")
	}
	content := note.Content
	if note.Type == notes.TypeChecklist {
		lines := make([]string, 0, len(note.ChecklistItems))
		for _, item := range note.ChecklistItems {
			mark := "[ ]"
			if item.Checked {
				mark = "[x]"
			}
			lines = append(lines, fmt.Sprintf("%s %s", mark, item.Text))
		}
		content = strings.Join(lines, "\n")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", note.Title)
	fmt.Fprintf(&b, "Labels: %s\n", labels)
	fmt.Fprintf(&b, "Pinned: %s\n", yesNo(note.Pinned))
	fmt.Fprintf(&b, "Archived: %s\n", yesNo(note.Archived))
	fmt.Fprintf(&b, "Trashed: %s\n", yesNo(note.Trashed))
	b.WriteString("\n")
	b.WriteString(content)
	return b.String()
}

// NotesTXT renders notes as separator-delimited plain-text blocks that
// ImportNotes can parse back.
func NotesTXT(items []notes.Note) string {
	blocks := make([]string, 0, len(items))
	for _, note := range items {
		blocks = append(blocks, NoteTXT(note))
	}
	return strings.Join(blocks, "\n"+blockSeparator+"\n") + "\n"
}

// NoteDoc renders one note as a Word-compatible HTML document. Text
// bodies run through goldmark so markdown formatting survives into the
// document; checklist bodies render as checkbox lines.
func NoteDoc(note notes.Note) (string, error) {
	title := note.Title
	if title == "" {
		title = "Untitled Note"
	}

	var body string
	if note.Type == notes.TypeChecklist {
		var b strings.Builder
		for _, item := range note.ChecklistItems {
			mark := "&#9744;"
			style := ""
			if item.Checked {
				mark = "&#9745;"
				style = ` style="text-decoration: line-through; color: #888;"`
			}
			fmt.Fprintf(&b, "<p%s>%s %s</p>\n", style, mark, html.EscapeString(item.Text))
		}
		if b.Len() == 0 {
			b.WriteString("<p>&nbsp;</p>\n")
		}
		body = b.String()
	} else {
		var rendered bytes.Buffer
		if err := goldmark.Convert([]byte(note.Content), &rendered); err != nil {
			return "", fmt.Errorf("export: render note body: %w", err)
		}
		body = rendered.String()
	}

	labelsLine := ""
	if len(note.Labels) > 0 {
		labelsLine = fmt.Sprintf(`<p class="labels">%s</p>`,
			html.EscapeString(strings.Join(note.Labels, ", ")))
	}

	created := time.UnixMilli(note.CreatedAtMs).Format("Jan 2, 2006 3:04 PM")
	updated := time.UnixMilli(note.UpdatedAtMs).Format("Jan 2, 2006 3:04 PM")
	dates := "Created: " + created
	if updated != created {
		dates += " | Updated: " + updated
	}

	doc := fmt.Sprintf(`<!DOCTYPE html>
<html xmlns:o="urn:schemas-microsoft-com:office:office"
      xmlns:w="urn:schemas-microsoft-com:office:word"
      xmlns="http://www.w3.org/TR/REC-html40">
<head>
  <meta charset="UTF-8">
  <meta name=ProgId content=Word.Document>
  <style>
    body { font-family: Calibri, Arial, sans-serif; font-size: 12pt; margin: 2cm; color: #1e293b; }
    h1 { font-size: 20pt; font-weight: bold; margin-bottom: 4pt; color: #0f172a; }
    .labels { font-size: 9pt; color: #64748b; margin-bottom: 4pt; }
    .dates { font-size: 9pt; color: #94a3b8; margin-bottom: 16pt; border-bottom: 1px solid #e2e8f0; padding-bottom: 8pt; }
    p { margin: 0 0 6pt 0; line-height: 1.5; }
  </style>
</head>
<body>
  <h1>%s</h1>
  %s
  <p class="dates">%s</p>
%s</body>
</html>`, html.EscapeString(title), labelsLine, html.EscapeString(dates), body)

	return doc, nil
}

// ImportNotes parses an uploaded file into notes ready for insertion.
// Ids are cleared so the store assigns fresh ones. The extension decides
// the parser; anything outside json/txt/doc/docx is rejected.
func ImportNotes(filename string, data []byte) ([]notes.Note, error) {
	ext := strings.ToLower(strings.TrimPrefix(strings.ToLower(filenameExt(filename)), "."))
	switch ext {
	case "json":
		return parseJSONNotes(data)
	case "txt":
		return parseTXTNotes(data), nil
	case "doc", "docx":
		return parseDocNotes(data), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func parseJSONNotes(data []byte) ([]notes.Note, error) {
	var items []notes.Note
	if err := json.Unmarshal(data, &items); err != nil {
		var single notes.Note
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("export: parse json notes: %w", err)
		}
		items = []notes.Note{single}
	}
	for i := range items {
		items[i].ID = 0
		if items[i].Type == "" {
			items[i].Type = notes.TypeText
		}
		if items[i].Color == "" {
			items[i].Color = "default"
		}
	}
	return items, nil
}

func parseTXTNotes(data []byte) []notes.Note {
	blocks := make([]string, 0)
	for _, block := range strings.Split(string(data), blockSeparator) {
		block = strings.TrimSpace(block)
		if block != "" {
			blocks = append(blocks, block)
		}
	}

	if len(blocks) == 0 || !strings.HasPrefix(blocks[0], "Title:") {
		// Fallback: the whole file becomes a single note body.
		return []notes.Note{{
			Type:    notes.TypeText,
			Title:   "Imported Note",
			Content: strings.TrimSpace(string(data)),
			Color:   "default",
		}}
	}

	items := make([]notes.Note, 0, len(blocks))
	for _, block := range blocks {
		lines := strings.Split(block, "\n")
		field := func(prefix string) string {
			for _, line := range lines {
				if strings.HasPrefix(line, prefix) {
					return strings.TrimSpace(strings.TrimPrefix(line, prefix))
				}
			}
			return ""
		}
		content := ""
		for i, line := range lines {
			if line == "" {
				content = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
				break
			}
		}
		var labelNames []string
		if raw := field("Labels:"); raw != "" && raw != "none" {
			for _, name := range strings.Split(raw, ",") {
				labelNames = append(labelNames, strings.TrimSpace(name))
			}
		}
		items = append(items, notes.Note{
			Type:     notes.TypeText,
			Title:    field("Title:"),
			Content:  content,
			Labels:   labelNames,
			Pinned:   field("Pinned:") == "Yes",
			Archived: field("Archived:") == "Yes",
			Trashed:  field("Trashed:") == "Yes",
			Color:    "default",
		})
	}
	return items
}

func parseDocNotes(data []byte) []notes.Note {
	text := brTag.ReplaceAllString(string(data), "\n")
	text = htmlTag.ReplaceAllString(text, "")
	return []notes.Note{{
		Type:    notes.TypeText,
		Title:   "Imported Note",
		Content: strings.TrimSpace(html.UnescapeString(text)),
		Color:   "default",
	}}
}

func yesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

func filenameExt(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return filename[idx:]
}
