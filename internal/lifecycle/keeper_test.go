package lifecycle

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/starford/notebook/internal/notes"
)

type fakeBuffer struct {
	uri      string
	modified bool
	empty    bool
	saveErr  error
	saves    int
}

func (b *fakeBuffer) URI() string      { return b.uri }
func (b *fakeBuffer) IsModified() bool { return b.modified }
func (b *fakeBuffer) IsEmpty() bool    { return b.empty }
func (b *fakeBuffer) Save() error {
	b.saves++
	return b.saveErr
}

type autosave bool

func (a autosave) AutosaveEnabled() bool { return bool(a) }

type brokenClassifier struct{}

func (brokenClassifier) IsNote(string) (bool, error) {
	return false, &fs.PathError{Op: "lstat", Path: "/x", Err: syscall.EACCES}
}

func testKeeper(t *testing.T, enabled bool) (*Keeper, string, *Recorder) {
	t.Helper()
	root := t.TempDir()
	resolver := notes.NewResolver(notes.StaticSettings{Directory: root, Extensions: []string{".md"}})
	rec := &Recorder{}
	k := NewKeeper(resolver, autosave(enabled), rec, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	return k, root, rec
}

func TestAutosave_SavesModifiedNote(t *testing.T) {
	k, root, _ := testKeeper(t, true)
	buf := &fakeBuffer{uri: filepath.Join(root, "a.md"), modified: true}
	saved, err := k.Autosave(buf)
	if err != nil || !saved || buf.saves != 1 {
		t.Fatalf("Autosave = %v, %v; saves = %d", saved, err, buf.saves)
	}
}

func TestAutosave_Skips(t *testing.T) {
	k, root, _ := testKeeper(t, true)
	off, _, _ := testKeeper(t, false)

	cases := []struct {
		name string
		k    *Keeper
		buf  *fakeBuffer
	}{
		{"disabled", off, &fakeBuffer{uri: filepath.Join(root, "a.md"), modified: true}},
		{"no uri", k, &fakeBuffer{modified: true}},
		{"unmodified", k, &fakeBuffer{uri: filepath.Join(root, "a.md")}},
		{"not a note", k, &fakeBuffer{uri: filepath.Join(root, "a.txt"), modified: true}},
		{"outside root", k, &fakeBuffer{uri: filepath.Join(t.TempDir(), "a.md"), modified: true}},
	}
	for _, c := range cases {
		saved, err := c.k.Autosave(c.buf)
		if err != nil || saved || c.buf.saves != 0 {
			t.Errorf("%s: Autosave = %v, %v; saves = %d", c.name, saved, err, c.buf.saves)
		}
	}
	if saved, err := k.Autosave(nil); saved || err != nil {
		t.Errorf("nil buffer: %v, %v", saved, err)
	}
}

func TestAutosave_SaveError(t *testing.T) {
	k, root, _ := testKeeper(t, true)
	boom := errors.New("disk full")
	buf := &fakeBuffer{uri: filepath.Join(root, "a.md"), modified: true, saveErr: boom}
	if _, err := k.Autosave(buf); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped save error", err)
	}
}

func TestAutosave_ClassifyErrorTreatedAsNotNote(t *testing.T) {
	_, root, rec := testKeeper(t, true)
	k := NewKeeper(brokenClassifier{}, autosave(true), rec, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	buf := &fakeBuffer{uri: filepath.Join(root, "a.md"), modified: true}
	if saved, err := k.Autosave(buf); saved || err != nil {
		t.Errorf("Autosave = %v, %v", saved, err)
	}
}

func TestAutodelete_RemovesEmptyNote(t *testing.T) {
	k, root, rec := testKeeper(t, true)
	p := filepath.Join(root, "empty.md")
	_ = os.WriteFile(p, nil, 0o644)

	if !k.Autodelete(&fakeBuffer{uri: p, empty: true}) {
		t.Fatal("Autodelete should report deletion")
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Error("file should be gone")
	}
	got := rec.Drain()
	if len(got) != 1 || got[0].Level != "info" || !strings.Contains(got[0].Text, `"empty.md"`) {
		t.Errorf("notifications = %+v", got)
	}
}

func TestAutodelete_MissingFileCountsAsDeleted(t *testing.T) {
	k, root, _ := testKeeper(t, true)
	if !k.Autodelete(&fakeBuffer{uri: filepath.Join(root, "never-saved.md"), empty: true}) {
		t.Error("missing file should count as deleted")
	}
}

func TestAutodelete_FailureNotifies(t *testing.T) {
	k, root, rec := testKeeper(t, true)
	k.remove = func(string) error {
		return &fs.PathError{Op: "remove", Path: "x", Err: syscall.EACCES}
	}
	if k.Autodelete(&fakeBuffer{uri: filepath.Join(root, "locked.md"), empty: true}) {
		t.Fatal("failed delete should report false")
	}
	got := rec.Drain()
	if len(got) != 2 || got[1].Level != "error" || got[1].Detail == "" {
		t.Errorf("notifications = %+v", got)
	}
}

func TestAutodelete_Skips(t *testing.T) {
	k, root, rec := testKeeper(t, true)
	p := filepath.Join(root, "full.md")
	_ = os.WriteFile(p, []byte("text"), 0o644)

	for _, buf := range []*fakeBuffer{
		{uri: p},
		{uri: filepath.Join(root, "x.txt"), empty: true},
		{empty: true},
	} {
		if k.Autodelete(buf) {
			t.Errorf("Autodelete(%+v) = true", buf)
		}
	}
	if k.Autodelete(nil) {
		t.Error("nil buffer should not be deleted")
	}
	if _, err := os.Stat(p); err != nil {
		t.Error("non-empty note must survive")
	}
	if n := rec.Drain(); len(n) != 0 {
		t.Errorf("unexpected notifications: %+v", n)
	}
}

func TestWillDestroy(t *testing.T) {
	k, root, _ := testKeeper(t, true)

	empty := filepath.Join(root, "empty.md")
	_ = os.WriteFile(empty, nil, 0o644)
	emptyBuf := &fakeBuffer{uri: empty, empty: true, modified: true}
	if err := k.WillDestroy(emptyBuf); err != nil {
		t.Fatal(err)
	}
	if emptyBuf.saves != 0 {
		t.Error("deleted note should not be saved")
	}

	full := &fakeBuffer{uri: filepath.Join(root, "full.md"), modified: true}
	if err := k.WillDestroy(full); err != nil {
		t.Fatal(err)
	}
	if full.saves != 1 {
		t.Error("non-empty note should be autosaved")
	}
}

func TestAutosaveAll(t *testing.T) {
	k, root, _ := testKeeper(t, true)
	boom := errors.New("nope")
	a := &fakeBuffer{uri: filepath.Join(root, "a.md"), modified: true}
	b := &fakeBuffer{uri: filepath.Join(root, "b.md"), modified: true, saveErr: boom}
	c := &fakeBuffer{uri: filepath.Join(root, "c.txt"), modified: true}

	err := k.AutosaveAll([]Buffer{a, b, c})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want joined save error", err)
	}
	if a.saves != 1 || b.saves != 1 || c.saves != 0 {
		t.Errorf("saves a=%d b=%d c=%d", a.saves, b.saves, c.saves)
	}

	off, _, _ := testKeeper(t, false)
	if err := off.AutosaveAll([]Buffer{a}); err != nil || a.saves != 1 {
		t.Error("disabled autosave should not save")
	}
}

func TestBlur(t *testing.T) {
	k, root, _ := testKeeper(t, true)
	buf := &fakeBuffer{uri: filepath.Join(root, "a.md"), modified: true}
	if err := k.Blur(buf); err != nil || buf.saves != 1 {
		t.Errorf("Blur = %v; saves = %d", err, buf.saves)
	}
}

func TestSnapshot_SaveThroughKeeper(t *testing.T) {
	k, root, _ := testKeeper(t, true)
	snap := &Snapshot{Path: filepath.Join(root, "sub", "snap.md"), Text: "hello", Modified: true}

	if err := k.AutosaveAll(Buffers([]*Snapshot{snap, nil})); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(snap.Path)
	if err != nil || string(data) != "hello" {
		t.Fatalf("read = %q, %v", data, err)
	}
	if snap.Modified {
		t.Error("saved snapshot should be unmodified")
	}
}
