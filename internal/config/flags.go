package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagResources  = flag.String("resources", "", "Directory assets are materialized into")
	flagAssets     = flag.String("assets", "", "Directory or .zip/.apk holding packaged assets")
	flagWatch      = flag.Bool("watch", false, "Reload shaders when their files change")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagResources != "" {
		cfg.Sample.ResourceDir = *flagResources
	}
	if *flagAssets != "" {
		if isArchive(*flagAssets) {
			cfg.Sample.AssetArchive = *flagAssets
		} else {
			cfg.Sample.AssetDir = *flagAssets
		}
	}
	if *flagWatch {
		cfg.Sample.WatchShaders = true
	}
}
