package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 800 || cfg.Window.Height != 600 {
		t.Errorf("expected 800x600, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}

	s := cfg.Sample
	if s.TexturePrefix != "good_uncompressed_mip_" {
		t.Errorf("unexpected texture prefix %s", s.TexturePrefix)
	}
	if s.ImageExt != ".pkm" || s.AlphaExt != "_alpha.pgm" {
		t.Errorf("unexpected extensions %s / %s", s.ImageExt, s.AlphaExt)
	}
	if s.MipLevels != 9 {
		t.Errorf("expected 9 mip levels, got %d", s.MipLevels)
	}
	if s.VertexShader != "ETCUncompressedAlpha_dualtex.vert" || s.FragmentShader != "ETCUncompressedAlpha_dualtex.frag" {
		t.Errorf("unexpected shaders %s / %s", s.VertexShader, s.FragmentShader)
	}
	if s.ClearColor != [4]float32{0.125, 0.25, 0.5, 1.0} {
		t.Errorf("unexpected clear color %v", s.ClearColor)
	}
	if !s.ETCFallback {
		t.Error("expected ETC fallback to be enabled by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

sample:
  resource_dir: "/data/local/etcalpha"
  texture_prefix: "logo_mip_"
  mip_levels: 4
  clear_color: [0, 0, 0, 1]
  etc_fallback: false

logging:
  level: "debug"
  log_file: "sample.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Sample.ResourceDir != "/data/local/etcalpha" {
		t.Errorf("unexpected resource dir %s", cfg.Sample.ResourceDir)
	}
	if cfg.Sample.TexturePrefix != "logo_mip_" {
		t.Errorf("unexpected prefix %s", cfg.Sample.TexturePrefix)
	}
	if cfg.Sample.MipLevels != 4 {
		t.Errorf("expected 4 mip levels, got %d", cfg.Sample.MipLevels)
	}
	if cfg.Sample.ClearColor != [4]float32{0, 0, 0, 1} {
		t.Errorf("unexpected clear color %v", cfg.Sample.ClearColor)
	}
	if cfg.Sample.ETCFallback {
		t.Error("expected etc_fallback to be false")
	}
	// Untouched keys keep their defaults.
	if cfg.Sample.AlphaExt != "_alpha.pgm" {
		t.Errorf("expected default alpha ext, got %s", cfg.Sample.AlphaExt)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "sample.log" {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadFromFileTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	tomlContent := `
[window]
width = 1024
vsync = false

[sample]
image_ext = ".etc"
watch_shaders = true
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1024 {
		t.Errorf("expected width 1024, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 600 {
		t.Errorf("expected default height 600, got %d", cfg.Window.Height)
	}
	if cfg.Window.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Sample.ImageExt != ".etc" {
		t.Errorf("expected image ext .etc, got %s", cfg.Sample.ImageExt)
	}
	if !cfg.Sample.WatchShaders {
		t.Error("expected watch_shaders to be true")
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	files := map[string]string{
		"invalid.yaml": "window:\n  width: not a number\n  invalid syntax here\n",
		"invalid.toml": "[window\nwidth = ",
	}

	for name, content := range files {
		configPath := filepath.Join(tmpDir, name)
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg := Default()
		if err := loadFromFile(cfg, configPath); err == nil {
			t.Errorf("%s: expected error, got nil", name)
		}
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty resource dir", func(c *Config) { c.Sample.ResourceDir = "" }},
		{"empty prefix", func(c *Config) { c.Sample.TexturePrefix = "" }},
		{"empty shader", func(c *Config) { c.Sample.FragmentShader = "" }},
		{"negative mip levels", func(c *Config) { c.Sample.MipLevels = -1 }},
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.toml")
	if err := os.WriteFile(configPath, []byte("[window]\nwidth = 640\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.toml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "assets directory",
			setup: func() { *flagAssets = "/opt/sample/assets" },
			verify: func(cfg *Config) {
				if cfg.Sample.AssetDir != "/opt/sample/assets" || cfg.Sample.AssetArchive != "" {
					t.Errorf("unexpected asset sources %q / %q", cfg.Sample.AssetDir, cfg.Sample.AssetArchive)
				}
			},
			teardown: func() { *flagAssets = "" },
		},
		{
			name:  "assets archive",
			setup: func() { *flagAssets = "build/sample.APK" },
			verify: func(cfg *Config) {
				if cfg.Sample.AssetArchive != "build/sample.APK" {
					t.Errorf("expected archive, got %q", cfg.Sample.AssetArchive)
				}
			},
			teardown: func() { *flagAssets = "" },
		},
		{
			name: "resources and watch",
			setup: func() {
				*flagResources = "/tmp/res"
				*flagWatch = true
			},
			verify: func(cfg *Config) {
				if cfg.Sample.ResourceDir != "/tmp/res" || !cfg.Sample.WatchShaders {
					t.Errorf("unexpected sample config %+v", cfg.Sample)
				}
			},
			teardown: func() {
				*flagResources = ""
				*flagWatch = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Flag beats file, file beats default.
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			cfg := Default()
			cfg.Sample.MipLevels = 5
			cfg.Window.Title = "saved"
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("failed to save: %v", err)
			}

			loaded := &Config{}
			if err := loadFromFile(loaded, path); err != nil {
				t.Fatalf("failed to load saved config: %v", err)
			}
			if loaded.Sample.MipLevels != 5 || loaded.Window.Title != "saved" {
				t.Errorf("unexpected loaded config %+v", loaded)
			}
			if loaded.Sample.ClearColor != cfg.Sample.ClearColor {
				t.Errorf("clear color lost: %v", loaded.Sample.ClearColor)
			}
		})
	}
}
