package config

// BrowserConfig defines how Chrome is launched and what each session looks like
type BrowserConfig struct {
	ChromePath     string   `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	// UserDataDir is the parent directory of the per-audit Chrome profiles
	UserDataDir    string   `json:"user_data_dir,omitempty" yaml:"user_data_dir,omitempty"`
	Headless       bool     `json:"headless" yaml:"headless"`
	NoSandbox      bool     `json:"no_sandbox" yaml:"no_sandbox"`
	ViewportWidth  int      `json:"viewport_width,omitempty" yaml:"viewport_width,omitempty" validate:"min=100"`
	ViewportHeight int      `json:"viewport_height,omitempty" yaml:"viewport_height,omitempty" validate:"min=100"`
	UserAgent      string   `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	ExtraFlags     []string `json:"extra_flags,omitempty" yaml:"extra_flags,omitempty" validate:"dive,required"`
}

// NewDefaultBrowserConfig creates default browser configuration
func NewDefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:       DefaultBrowserHeadless,
		ViewportWidth:  DefaultBrowserViewportWidth,
		ViewportHeight: DefaultBrowserViewportHeight,
		UserAgent:      DefaultBrowserUserAgent,
	}
}
