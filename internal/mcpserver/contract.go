package mcpserver

import "fmt"

// noteFormatTemplate describes how notes are laid out on disk. It is
// filled with the live notes root and primary extension.
const noteFormatTemplate = `# Notebook Note Format

## Where notes live

- Notes directory: ` + "`%[1]s`" + `
- A file is a note when it lives under the notes directory (directly or in a
  sub-folder, symlinks included) and ends with one of: %[3]s.
- New notes get the primary extension ` + "`%[2]s`" + `.

## Titles and file names

- A note titled ` + "`Groceries`" + ` lives at ` + "`<notes directory>/Groceries%[2]s`" + `.
- Leading and trailing spaces are trimmed from titles. Slashes, backslashes
  and NUL characters are replaced by ` + "`-`" + `, so new notes are always created
  directly in the notes directory.
- Use the ` + "`note_path_for_title`" + ` tool to compute a path, and ` + "`open_note`" + `
  to create an empty note for a title.

## Content

` + "```" + `markdown
---
title: Weekly plan        # optional; otherwise the first "# heading", then the file name
tags: [planning]          # optional YAML list; inline #tags are also picked up
---

# Weekly plan

Link other notes by title with [[Groceries]] or [[Trip plan|the trip]].
` + "```" + `

## Housekeeping

- Empty notes are deleted when their editor closes.
- Modified notes are saved automatically when the editor loses focus
  (when autosave is enabled).
`

func noteFormat(root, primary string, exts []string) string {
	list := ""
	for i, e := range exts {
		if i > 0 {
			list += ", "
		}
		list += "`" + e + "`"
	}
	return fmt.Sprintf(noteFormatTemplate, root, primary, list)
}
