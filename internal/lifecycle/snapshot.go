package lifecycle

import "github.com/starford/notebook/internal/storage"

// Snapshot is a Buffer captured by a remote host: the host sends the text
// and modified flag, and Save writes the text to disk.
type Snapshot struct {
	Path     string `json:"path"`
	Text     string `json:"text"`
	Modified bool   `json:"modified"`
}

// URI implements Buffer.
func (s *Snapshot) URI() string { return s.Path }

// IsModified implements Buffer.
func (s *Snapshot) IsModified() bool { return s.Modified }

// IsEmpty implements Buffer.
func (s *Snapshot) IsEmpty() bool { return s.Text == "" }

// Save implements Buffer.
func (s *Snapshot) Save() error {
	if err := storage.WriteFileAtomic(s.Path, []byte(s.Text)); err != nil {
		return err
	}
	s.Modified = false
	return nil
}

// Buffers converts snapshots to the Buffer interface.
func Buffers(snaps []*Snapshot) []Buffer {
	out := make([]Buffer, 0, len(snaps))
	for _, s := range snaps {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}
