package notes

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func newResolver(dir string, exts ...string) *Resolver {
	return NewResolver(StaticSettings{Directory: dir, Extensions: exts})
}

func mustIsNote(t *testing.T, r *Resolver, path string) bool {
	t.Helper()
	ok, err := r.IsNote(path)
	if err != nil {
		t.Fatalf("IsNote(%q): %v", path, err)
	}
	return ok
}

func TestPrimaryExtension(t *testing.T) {
	cases := []struct {
		exts []string
		want string
	}{
		{[]string{".md", ".markdown"}, ".md"},
		{[]string{".markdown"}, ".markdown"},
		{[]string{}, ".md"},
		{nil, ".md"},
	}
	for _, c := range cases {
		if got := newResolver("/notes", c.exts...).PrimaryExtension(); got != c.want {
			t.Errorf("PrimaryExtension(%v) = %q, want %q", c.exts, got, c.want)
		}
	}
}

func TestNotesRoot_Normalized(t *testing.T) {
	dir := t.TempDir()
	cases := []string{
		dir + string(filepath.Separator),
		filepath.Join(dir, "sub", ".."),
		dir + string(filepath.Separator) + ".",
	}
	for _, in := range cases {
		if got := newResolver(in).NotesRoot(); got != dir {
			t.Errorf("NotesRoot(%q) = %q, want %q", in, got, dir)
		}
	}
}

func TestNotesRoot_HomeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if got := newResolver("~/notes").NotesRoot(); got != filepath.Join(home, "notes") {
		t.Errorf("NotesRoot = %q, want %q", got, filepath.Join(home, "notes"))
	}
}

func TestNotePathForTitle_Blank(t *testing.T) {
	r := newResolver("/notes", ".md")
	for _, title := range []string{"", " ", "\t\n  "} {
		if p, ok := r.NotePathForTitle(title); ok || p != "" {
			t.Errorf("NotePathForTitle(%q) = %q, %v; want \"\", false", title, p, ok)
		}
	}
}

func TestNotePathForTitle(t *testing.T) {
	root := t.TempDir()
	r := newResolver(root, ".markdown", ".md")

	cases := []struct {
		title string
		file  string
	}{
		{"Groceries", "Groceries.markdown"},
		{"  meeting notes  ", "meeting notes.markdown"},
		{"a/b", "a-b.markdown"},
		{"../escape", "..-escape.markdown"},
		{`c:\x`, "c:-x.markdown"},
		{"..", "...markdown"},
	}
	for _, c := range cases {
		p, ok := r.NotePathForTitle(c.title)
		if !ok {
			t.Fatalf("NotePathForTitle(%q) reported blank", c.title)
		}
		if filepath.Dir(p) != root {
			t.Errorf("NotePathForTitle(%q) = %q, not directly under %q", c.title, p, root)
		}
		if filepath.Base(p) != c.file {
			t.Errorf("NotePathForTitle(%q) file = %q, want %q", c.title, filepath.Base(p), c.file)
		}
	}
}

func TestNotePathForTitle_DoesNotTouchDisk(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")
	p, ok := newResolver(root).NotePathForTitle("x")
	if !ok || p != filepath.Join(root, "x.md") {
		t.Fatalf("got %q, %v", p, ok)
	}
	if _, err := os.Stat(root); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("root should not have been created: %v", err)
	}
}

func TestIsNote_EmptyPath(t *testing.T) {
	if mustIsNote(t, newResolver(t.TempDir()), "") {
		t.Error("empty path should not be a note")
	}
}

func TestIsNote_ExtensionRejectedBeforeIO(t *testing.T) {
	r := newResolver("/notes", ".md", ".markdown")
	r.realPath = func(p string) (string, error) {
		t.Fatalf("unexpected real path lookup for %q", p)
		return "", nil
	}
	for _, p := range []string{"/notes/a.txt", "/notes/a", "/notes/a.MD", "/elsewhere/b.org"} {
		if mustIsNote(t, r, p) {
			t.Errorf("IsNote(%q) = true, want false", p)
		}
	}
}

func TestIsNote_LexicalMatchWithoutFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "not-created")
	r := newResolver(root, ".md", ".markdown")
	for _, p := range []string{
		filepath.Join(root, "a.md"),
		filepath.Join(root, "deep", "b.markdown"),
		filepath.Join(root, "x", "..", "c.md"),
	} {
		if !mustIsNote(t, r, p) {
			t.Errorf("IsNote(%q) = false, want true", p)
		}
	}
}

func TestIsNote_EmptyExtensionsUseDefault(t *testing.T) {
	root := t.TempDir()
	r := newResolver(root)
	if !mustIsNote(t, r, filepath.Join(root, "a.md")) {
		t.Error("default extension should be recognised")
	}
	if mustIsNote(t, r, filepath.Join(root, "a.markdown")) {
		t.Error("unconfigured extension should be rejected")
	}
}

func TestIsNote_SiblingPrefixIsNotInside(t *testing.T) {
	base := t.TempDir()
	r := newResolver(filepath.Join(base, "notes"), ".md")
	if mustIsNote(t, r, filepath.Join(base, "notes-archive", "a.md")) {
		t.Error("sibling directory sharing a name prefix must not match")
	}
}

func TestIsNote_RelativePath(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	r := newResolver(root, ".md")
	if !mustIsNote(t, r, "today.md") {
		t.Error("relative path inside root should be a note")
	}
	if !mustIsNote(t, r, filepath.Join("sub", "..", "today.md")) {
		t.Error("relative path with traversal inside root should be a note")
	}
}

func TestIsNote_NonexistentParent(t *testing.T) {
	root := t.TempDir()
	r := newResolver(root, ".md")
	p := filepath.Join(t.TempDir(), "no", "such", "dir", "a.md")
	ok, err := r.IsNote(p)
	if err != nil {
		t.Fatalf("IsNote: %v", err)
	}
	if ok {
		t.Error("nonexistent path outside root should not be a note")
	}
}

func TestIsNote_MissingRootAndCandidate(t *testing.T) {
	base := t.TempDir()
	r := newResolver(filepath.Join(base, "gone"), ".md")
	ok, err := r.IsNote(filepath.Join(base, "other", "a.md"))
	if err != nil || ok {
		t.Errorf("IsNote = %v, %v; want false, nil", ok, err)
	}
}

func TestIsNote_AncestorIsFile(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "plain")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := newResolver(filepath.Join(base, "notes"), ".md")
	ok, err := r.IsNote(filepath.Join(file, "a.md"))
	if err != nil || ok {
		t.Errorf("IsNote = %v, %v; want false, nil", ok, err)
	}
}

// symlinkFixture builds a real notes directory D, a symlink R pointing at
// it, a note D/note.md and a link R/note-link.md to that note.
func symlinkFixture(t *testing.T) (realDir, linkDir string) {
	t.Helper()
	base := t.TempDir()
	realDir = filepath.Join(base, "notebook")
	linkDir = filepath.Join(base, "note book")
	if err := os.Mkdir(realDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(realDir, linkDir); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	note := filepath.Join(realDir, "note.md")
	if err := os.WriteFile(note, []byte("dummy"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(note, filepath.Join(linkDir, "note-link.md")); err != nil {
		t.Fatal(err)
	}
	return realDir, linkDir
}

func TestIsNote_Symlinks(t *testing.T) {
	realDir, linkDir := symlinkFixture(t)

	candidates := []string{
		filepath.Join(linkDir, "note.md"),
		filepath.Join(realDir, "note.md"),
		filepath.Join(linkDir, "note-link.md"),
		filepath.Join(realDir, "note-link.md"),
	}
	for _, root := range []string{realDir, linkDir} {
		r := newResolver(root, ".md", ".markdown")
		for _, c := range candidates {
			if !mustIsNote(t, r, c) {
				t.Errorf("root %q: IsNote(%q) = false, want true", root, c)
			}
		}
	}
}

func TestIsNote_SymlinkFromOutsideRoot(t *testing.T) {
	realDir, linkDir := symlinkFixture(t)
	outside := t.TempDir()
	link := filepath.Join(outside, "shortcut.md")
	if err := os.Symlink(filepath.Join(realDir, "note.md"), link); err != nil {
		t.Fatal(err)
	}
	stray := filepath.Join(outside, "stray.md")
	if err := os.WriteFile(stray, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	for _, root := range []string{realDir, linkDir} {
		r := newResolver(root, ".md")
		if !mustIsNote(t, r, link) {
			t.Errorf("root %q: link into notes should be a note", root)
		}
		if mustIsNote(t, r, stray) {
			t.Errorf("root %q: file outside notes should not be a note", root)
		}
	}
}

func TestIsNote_PermissionErrorPropagates(t *testing.T) {
	denied := &fs.PathError{Op: "lstat", Path: "/locked", Err: syscall.EACCES}
	r := newResolver("/notes", ".md")
	r.realPath = func(string) (string, error) { return "", denied }

	ok, err := r.IsNote("/elsewhere/a.md")
	if ok {
		t.Error("expected false on error")
	}
	if err != denied {
		t.Fatalf("err = %v, want the original error unmodified", err)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("err should satisfy fs.ErrPermission: %v", err)
	}
}

func TestIsNote_PermissionErrorOnCandidate(t *testing.T) {
	r := newResolver("/notes", ".md")
	r.realPath = func(p string) (string, error) {
		if p == "/notes" {
			return "", &fs.PathError{Op: "lstat", Path: p, Err: syscall.ENOENT}
		}
		return "", &fs.PathError{Op: "lstat", Path: p, Err: syscall.EACCES}
	}
	if _, err := r.IsNote("/elsewhere/a.md"); !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("err = %v, want permission error", err)
	}
}

func TestIsNote_PermissionDeniedOnDisk(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}
	base := t.TempDir()
	locked := filepath.Join(base, "locked")
	if err := os.Mkdir(locked, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(base, "target"), filepath.Join(locked, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	r := newResolver(filepath.Join(base, "notes"), ".md")
	_, err := r.IsNote(filepath.Join(locked, "link", "a.md"))
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("err = %v, want permission error", err)
	}
}

func TestSanitizeTitle(t *testing.T) {
	cases := map[string]string{
		"  plain ":  "plain",
		"a/b/c":     "a-b-c",
		"nul\x00in": "nul-in",
		"":          "",
	}
	for in, want := range cases {
		if got := SanitizeTitle(in); got != want {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", in, got, want)
		}
	}
}
