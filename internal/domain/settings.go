package domain

// HubSettings holds per-installation user preferences. Persisted as a
// single JSON blob under a fixed key in the settings store.
type HubSettings struct {
	DefaultQuality     string `json:"defaultQuality"`
	DefaultSize        string `json:"defaultSize"`
	DefaultFormat      string `json:"defaultFormat"`
	DefaultBackground  string `json:"defaultBackground"`
	DefaultCompression int    `json:"defaultCompression"`
	AutoSave           bool   `json:"autoSave"`
	HistoryLimit       int    `json:"historyLimit"`
}

// DefaultSettings returns the settings applied before any user update.
func DefaultSettings() HubSettings {
	return HubSettings{
		DefaultQuality:     "high",
		DefaultSize:        "1024x1024",
		DefaultFormat:      "png",
		DefaultBackground:  "auto",
		DefaultCompression: 85,
		AutoSave:           true,
		HistoryLimit:       50,
	}
}

// Normalize fills gaps in a partially populated settings blob and
// discards out-of-range values.
func (s HubSettings) Normalize() HubSettings {
	def := DefaultSettings()
	if s.DefaultQuality == "" || !allowedQualities[s.DefaultQuality] {
		s.DefaultQuality = def.DefaultQuality
	}
	if s.DefaultSize == "" || !allowedSizes[s.DefaultSize] {
		s.DefaultSize = def.DefaultSize
	}
	if s.DefaultFormat == "" || !allowedFormats[s.DefaultFormat] {
		s.DefaultFormat = def.DefaultFormat
	}
	if s.DefaultBackground == "" || !allowedBackgrounds[s.DefaultBackground] {
		s.DefaultBackground = def.DefaultBackground
	}
	if s.DefaultCompression <= 0 || s.DefaultCompression > 100 {
		s.DefaultCompression = def.DefaultCompression
	}
	if s.HistoryLimit <= 0 {
		s.HistoryLimit = def.HistoryLimit
	}
	return s
}
