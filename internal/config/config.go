// Package config handles sample configuration loading and management.
package config

// Config holds all sample settings.
type Config struct {
	Window  WindowConfig  `yaml:"window" toml:"window"`
	Sample  SampleConfig  `yaml:"sample" toml:"sample"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// WindowConfig holds display settings for the desktop host.
type WindowConfig struct {
	Title      string `yaml:"title" toml:"title"`
	Width      int    `yaml:"width" toml:"width"`
	Height     int    `yaml:"height" toml:"height"`
	Fullscreen bool   `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool   `yaml:"vsync" toml:"vsync"`
}

// SampleConfig names the assets and rendering options of the sample.
type SampleConfig struct {
	// ResourceDir is where assets are materialized and loaded from.
	ResourceDir string `yaml:"resource_dir" toml:"resource_dir"`
	// AssetDir is a directory holding the packaged assets.
	AssetDir string `yaml:"asset_dir" toml:"asset_dir"`
	// AssetArchive is an optional zip/APK holding the packaged assets.
	AssetArchive string `yaml:"asset_archive" toml:"asset_archive"`

	TexturePrefix  string `yaml:"texture_prefix" toml:"texture_prefix"`
	ImageExt       string `yaml:"image_ext" toml:"image_ext"`
	AlphaExt       string `yaml:"alpha_ext" toml:"alpha_ext"`
	MipLevels      int    `yaml:"mip_levels" toml:"mip_levels"`
	VertexShader   string `yaml:"vertex_shader" toml:"vertex_shader"`
	FragmentShader string `yaml:"fragment_shader" toml:"fragment_shader"`

	ClearColor [4]float32 `yaml:"clear_color" toml:"clear_color"`
	// ETCFallback decodes ETC1 on the CPU when the GPU lacks support.
	ETCFallback bool `yaml:"etc_fallback" toml:"etc_fallback"`
	// WatchShaders recompiles the program when shader files change.
	WatchShaders bool `yaml:"watch_shaders" toml:"watch_shaders"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with the values the sample ships with.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "ETC1 Uncompressed Alpha",
			Width:      800,
			Height:     600,
			Fullscreen: false,
			VSync:      true,
		},
		Sample: SampleConfig{
			ResourceDir:    "resources",
			AssetDir:       "assets",
			TexturePrefix:  "good_uncompressed_mip_",
			ImageExt:       ".pkm",
			AlphaExt:       "_alpha.pgm",
			MipLevels:      9,
			VertexShader:   "ETCUncompressedAlpha_dualtex.vert",
			FragmentShader: "ETCUncompressedAlpha_dualtex.frag",
			ClearColor:     [4]float32{0.125, 0.25, 0.5, 1.0},
			ETCFallback:    true,
			WatchShaders:   false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
