package systems

import (
	"encoding/json"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/quasilyte/gdata"
)

// SavedSettings represents the viewer settings stored on disk
type SavedSettings struct {
	MouseLook   bool  `json:"mouseLook"`
	ShowMinimap bool  `json:"showMinimap"`
	Fullscreen  bool  `json:"fullscreen"`
	LastSeed    int64 `json:"lastSeed"`
}

const settingsKey = "settings"

var gdataManager *gdata.Manager

// settings is the live copy, written back by SaveCurrentSettings.
var settings = SavedSettings{ShowMinimap: true}

// InitPersistence opens the gdata store for appName.
func InitPersistence(appName string) error {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return err
	}
	gdataManager = m
	return nil
}

// LoadSettings loads settings from disk. Missing or unreadable data leaves
// the defaults in place.
func LoadSettings() (*SavedSettings, error) {
	if gdataManager == nil {
		return nil, nil
	}

	data, err := gdataManager.LoadItem(settingsKey)
	if err != nil {
		log.Printf("Warning: Could not load settings: %v", err)
		return nil, nil
	}
	if len(data) == 0 {
		// No saved settings yet, use defaults
		return nil, nil
	}

	var s SavedSettings
	if err := json.Unmarshal(data, &s); err != nil {
		log.Printf("Warning: Could not parse saved settings: %v", err)
		return nil, err
	}
	return &s, nil
}

// SaveSettings saves settings to disk
func SaveSettings(s *SavedSettings) error {
	if gdataManager == nil {
		return nil
	}

	data, err := json.Marshal(s)
	if err != nil {
		log.Printf("Warning: Could not serialize settings: %v", err)
		return err
	}

	if err := gdataManager.SaveItem(settingsKey, data); err != nil {
		log.Printf("Warning: Could not save settings: %v", err)
		return err
	}
	return nil
}

// SaveCurrentSettings writes the live settings back.
func SaveCurrentSettings() {
	s := settings
	_ = SaveSettings(&s)
}

// ApplySavedSettings makes saved the live settings and applies the window mode.
// Used during startup before a scene is created.
func ApplySavedSettings(saved *SavedSettings) {
	if saved == nil {
		return
	}
	settings = *saved
	ebiten.SetFullscreen(saved.Fullscreen)
}

// CurrentSettings returns a copy of the live settings.
func CurrentSettings() SavedSettings {
	return settings
}

// RememberSeed stores the seed of the locally generated maze.
func RememberSeed(seed int64) {
	settings.LastSeed = seed
	SaveCurrentSettings()
}
