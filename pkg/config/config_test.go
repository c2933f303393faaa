package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type sample struct {
	Name  string   `yaml:"name"`
	Items []string `yaml:"items"`
}

func (s *sample) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("NOTEBOOK_TEST_NAME", "from-env")
	path := filepath.Join(t.TempDir(), "c.yaml")
	writeFile(t, path, "name: ${NOTEBOOK_TEST_NAME}\nitems: [a, b]\n")

	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "from-env" || len(s.Items) != 2 {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	writeFile(t, path, "items: [a]\n")
	var s sample
	if err := Load(path, &s); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadIfExists_Missing(t *testing.T) {
	s := sample{Name: "default"}
	found, err := LoadIfExists(filepath.Join(t.TempDir(), "nope.yaml"), &s)
	if err != nil || found {
		t.Fatalf("LoadIfExists = %v, %v", found, err)
	}
	if s.Name != "default" {
		t.Errorf("target changed: %+v", s)
	}
}

func TestLoadIfExists_MissingInvalidDefaults(t *testing.T) {
	var s sample
	if _, err := LoadIfExists(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Fatal("invalid defaults should fail validation")
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	writeFile(t, path, "name: first\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var names []string
	var errs []error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, path,
			func() *sample { return &sample{} },
			func(s *sample) {
				mu.Lock()
				names = append(names, s.Name)
				mu.Unlock()
			},
			func(err error) {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			})
	}()
	time.Sleep(100 * time.Millisecond)

	writeFile(t, path, "items: [x]\n")
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(errs) > 0
	}, "invalid file should be reported")

	writeFile(t, path, "name: second\n")
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(names) > 0 && names[len(names)-1] == "second"
	}, "valid change should be applied")

	cancel()
	<-done
}

func waitFor(t *testing.T, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal(msg)
}
