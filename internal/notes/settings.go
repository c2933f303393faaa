package notes

// StaticSettings is a fixed Settings value.
type StaticSettings struct {
	Directory  string
	Extensions []string
}

// NotesDirectory implements Settings.
func (s StaticSettings) NotesDirectory() string { return s.Directory }

// NoteExtensions implements Settings.
func (s StaticSettings) NoteExtensions() []string { return s.Extensions }
