package assets

import (
	"archive/zip"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/etcalpha/internal/config"
)

func writeAsset(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.apk")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
		io.WriteString(w, content)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finish archive: %v", err)
	}
	f.Close()
	return path
}

func TestFetchFromDir(t *testing.T) {
	src := t.TempDir()
	writeAsset(t, src, "good_uncompressed_mip_0.pkm", "level0")

	m := NewManager()
	if err := m.AddDir(src); err != nil {
		t.Fatalf("failed to add dir: %v", err)
	}

	res := filepath.Join(t.TempDir(), "resources")
	path, err := m.Fetch(res, "good_uncompressed_mip_0.pkm")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if path != filepath.Join(res, "good_uncompressed_mip_0.pkm") {
		t.Errorf("unexpected path %s", path)
	}
	if got := readFile(t, path); got != "level0" {
		t.Errorf("expected content 'level0', got %q", got)
	}

	// No temporary files are left next to the asset.
	entries, _ := os.ReadDir(res)
	if len(entries) != 1 {
		t.Errorf("expected 1 file in resource dir, got %d", len(entries))
	}
}

func TestFetchKeepsLocalFile(t *testing.T) {
	src := t.TempDir()
	writeAsset(t, src, "a.vert", "packaged")

	res := t.TempDir()
	writeAsset(t, res, "a.vert", "local edit")

	m := NewManager()
	m.AddSource(DirSource(src))

	path, err := m.Fetch(res, "a.vert")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got := readFile(t, path); got != "local edit" {
		t.Errorf("local file overwritten: %q", got)
	}
}

func TestFetchPriority(t *testing.T) {
	low, high := t.TempDir(), t.TempDir()
	writeAsset(t, low, "a.frag", "low")
	writeAsset(t, low, "b.frag", "only low")
	writeAsset(t, high, "a.frag", "high")

	m := NewManager()
	m.AddSource(DirSource(low))
	m.AddSource(DirSource(high))

	res := t.TempDir()
	pa, err := m.Fetch(res, "a.frag")
	if err != nil {
		t.Fatalf("fetch a failed: %v", err)
	}
	pb, err := m.Fetch(res, "b.frag")
	if err != nil {
		t.Fatalf("fetch b failed: %v", err)
	}

	if got := readFile(t, pa); got != "high" {
		t.Errorf("expected last added source to win, got %q", got)
	}
	if got := readFile(t, pb); got != "only low" {
		t.Errorf("expected fallback to earlier source, got %q", got)
	}
}

func TestFetchNotFound(t *testing.T) {
	m := NewManager()
	m.AddSource(DirSource(t.TempDir()))

	_, err := m.Fetch(t.TempDir(), "missing.pkm")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestFetchCache(t *testing.T) {
	src := t.TempDir()
	writeAsset(t, src, "a.pgm", "alpha")

	m := NewManager()
	m.AddSource(DirSource(src))
	res := t.TempDir()

	for i := 0; i < 3; i++ {
		if _, err := m.Fetch(res, "a.pgm"); err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
	}

	hits, misses := m.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("expected 2 hits and 1 miss, got %d and %d", hits, misses)
	}
}

func TestZipSource(t *testing.T) {
	path := writeZip(t, map[string]string{
		"assets/good_uncompressed_mip_0_alpha.pgm": "apk alpha",
		"root.txt":                                 "at root",
		"AndroidManifest.xml":                      "<manifest/>",
		"assets/nested/level.pkm":                  "nested",
	})

	z, err := OpenZip(path)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer z.Close()

	if z.Len() != 4 {
		t.Errorf("expected 4 files, got %d", z.Len())
	}

	tests := map[string]string{
		"good_uncompressed_mip_0_alpha.pgm": "apk alpha",
		"root.txt":                          "at root",
		"nested/level.pkm":                  "nested",
	}
	for name, want := range tests {
		rc, err := z.Open(name)
		if err != nil {
			t.Errorf("open %s: %v", name, err)
			continue
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		if string(data) != want {
			t.Errorf("%s: expected %q, got %q", name, want, data)
		}
	}

	if _, err := z.Open("missing.pkm"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
	if !strings.HasPrefix(z.String(), "zip:") {
		t.Errorf("unexpected source name %s", z)
	}
}

func TestManagerArchive(t *testing.T) {
	path := writeZip(t, map[string]string{"assets/a.vert": "from apk"})

	m := NewManager()
	if err := m.AddArchive(path); err != nil {
		t.Fatalf("failed to add archive: %v", err)
	}
	defer m.Close()

	p, err := m.Fetch(t.TempDir(), "a.vert")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got := readFile(t, p); got != "from apk" {
		t.Errorf("expected 'from apk', got %q", got)
	}
}

func TestManagerAddErrors(t *testing.T) {
	m := NewManager()

	if err := m.AddArchive(filepath.Join(t.TempDir(), "none.apk")); err == nil {
		t.Error("expected error adding a missing archive")
	}
	if err := m.AddDir(filepath.Join(t.TempDir(), "none")); err == nil {
		t.Error("expected error adding a missing directory")
	}

	file := filepath.Join(t.TempDir(), "file")
	os.WriteFile(file, nil, 0644)
	if err := m.AddDir(file); err == nil {
		t.Error("expected error adding a regular file as directory")
	}
}

func TestBuiltinShaders(t *testing.T) {
	src := Builtin()
	for _, name := range []string{"ETCUncompressedAlpha_dualtex.vert", "ETCUncompressedAlpha_dualtex.frag"} {
		rc, err := src.Open(name)
		if err != nil {
			t.Fatalf("builtin %s: %v", name, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		if !strings.HasPrefix(string(data), "#version 100") {
			t.Errorf("%s: expected a GLSL ES 1.00 shader", name)
		}
	}

	frag, _ := src.Open("ETCUncompressedAlpha_dualtex.frag")
	data, _ := io.ReadAll(frag)
	frag.Close()
	for _, want := range []string{"u_s2dTexture", "u_s2dAlpha"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("fragment shader does not use %s", want)
		}
	}
}

func TestCache(t *testing.T) {
	c := NewCache()

	if _, ok := c.Get("key"); ok {
		t.Error("expected miss on empty cache")
	}

	c.Set("key", "dir:/tmp")
	origin, ok := c.Get("key")
	if !ok || origin != "dir:/tmp" {
		t.Errorf("expected hit with origin, got %q %v", origin, ok)
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d and %d", hits, misses)
	}

	c.Clear()
	hits, misses = c.Stats()
	if hits != 0 || misses != 0 {
		t.Errorf("expected stats reset, got %d and %d", hits, misses)
	}
	if _, ok := c.Get("key"); ok {
		t.Error("expected miss after clear")
	}
}

func TestNewManagerFromConfig(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "ETCUncompressedAlpha_dualtex.frag", "override")

	cfg := config.Default().Sample
	cfg.AssetDir = dir
	m, err := NewManagerFromConfig(cfg)
	if err != nil {
		t.Fatalf("failed to build manager: %v", err)
	}
	defer m.Close()

	res := t.TempDir()
	frag, err := m.Fetch(res, "ETCUncompressedAlpha_dualtex.frag")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got := readFile(t, frag); got != "override" {
		t.Errorf("expected asset dir to override builtin, got %q", got)
	}

	vert, err := m.Fetch(res, "ETCUncompressedAlpha_dualtex.vert")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got := readFile(t, vert); !strings.HasPrefix(got, "#version 100") {
		t.Errorf("expected builtin vertex shader, got %q", got)
	}
}

func TestNewManagerFromConfigMissingSources(t *testing.T) {
	cfg := config.Default().Sample
	cfg.AssetDir = filepath.Join(t.TempDir(), "absent")

	m, err := NewManagerFromConfig(cfg)
	if err != nil {
		t.Fatalf("missing asset dir should be skipped: %v", err)
	}
	m.Close()

	cfg.AssetArchive = filepath.Join(t.TempDir(), "absent.apk")
	if _, err := NewManagerFromConfig(cfg); err == nil {
		t.Error("expected error for a missing archive")
	}
}
