package config

import "github.com/1broseidon/komorebi/internal/animation"

// Default returns the built-in configuration used when no config file
// is present, mirroring the teacher's builtin.go fallback defaults.
func Default() *Config {
	return &Config{
		General: GeneralDocument{
			FocusFollowsMouse:                 "none",
			CrossMonitorMoveBehaviour:         "insert",
			UnmanagedWindowOperationBehaviour: "op",
			ResizeDelta:                       50,
		},
		Border: BorderDocument{
			Enabled:         true,
			Thickness:       4,
			FocusedColor:    "#6699CC",
			UnfocusedColor:  "#444444",
			MonocleColor:    "#CC9966",
			AnimationMS:     150,
			AnimationEasing: string(animation.EaseOutQuad),
		},
		Stackbar: StackbarDocument{
			Enabled:      false,
			TabWidth:     140,
			TabGap:       2,
			Height:       20,
			FocusedColor: "#6699CC",
			TabColor:     "#333333",
		},
		Transparency: TransparencyDocument{
			Enabled:          false,
			FocusedOpacity:   1.0,
			UnfocusedOpacity: 0.8,
		},
	}
}
