package devices

import (
	"fmt"
	"strings"
)

// Resolution is a known panel screen size. HA's registry does not expose
// resolutions, so they come from this static model table.
type Resolution struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Model       string `json:"model"`
	Description string `json:"description,omitempty"`
}

// Catalog maps model keys to screen resolutions.
var Catalog = map[string]Resolution{
	// Lanbon series
	"lanbon_l8":    {480, 320, "Lanbon L8", "Lanbon L8 3-gang switch"},
	"lanbon_l8_hd": {800, 480, "Lanbon L8 HD", "Lanbon L8 HD high-resolution"},

	// WT32-SC01 series
	"wt32_sc01":      {320, 480, "WT32-SC01", "WT32-SC01 3.5\" display"},
	"wt32_sc01_plus": {480, 320, "WT32-SC01 Plus", "WT32-SC01 Plus 3.5\" display"},

	// ESP32 boards
	"esp32_2432s028r": {240, 320, "ESP32-2432S028R", "ESP32-2432S028R 2.8\" display (Cheap Yellow Display)"},
	"esp32_3248s035c": {480, 320, "ESP32-3248S035C", "ESP32-3248S035C 3.5\" display"},
	"esp32_4827s043":  {480, 272, "ESP32-4827S043", "ESP32-4827S043 4.3\" display"},
	"esp32_8048s070":  {800, 480, "ESP32-8048S070", "ESP32-8048S070 7\" display"},

	// Other devices
	"freetouchdeck":   {480, 320, "FreeTouchDeck", "FreeTouchDeck ESP32 touchscreen"},
	"m5stack_core2":   {320, 240, "M5Stack Core2", "M5Stack Core2 2\" display"},
	"lilygo_t_display": {135, 240, "LILYGO T-Display", "LILYGO T-Display 1.14\" TFT"},

	// Generic size presets
	"small_portrait":   {240, 320, "Small Portrait", "Generic small portrait (240x320)"},
	"medium_portrait":  {320, 480, "Medium Portrait", "Generic medium portrait (320x480)"},
	"large_portrait":   {480, 800, "Large Portrait", "Generic large portrait (480x800)"},
	"small_landscape":  {320, 240, "Small Landscape", "Generic small landscape (320x240)"},
	"medium_landscape": {480, 320, "Medium Landscape", "Generic medium landscape (480x320)"},
	"large_landscape":  {800, 480, "Large Landscape", "Generic large landscape (800x480)"},
}

// GetResolution looks up a model key, case-insensitive.
func GetResolution(modelKey string) (Resolution, bool) {
	res, ok := Catalog[strings.ToLower(modelKey)]
	return res, ok
}

// MatchModel guesses a catalog key from a registry model string by
// stripping separators, e.g. "WT32-SC01" matches "wt32_sc01". The longest
// matching key wins, so "WT32-SC01 Plus" resolves to the Plus variant and
// not its shorter prefix.
func MatchModel(model string) (string, bool) {
	squash := func(s string) string {
		return strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	}
	m := squash(model)
	if m == "" {
		return "", false
	}
	var best string
	bestLen := 0
	for key := range Catalog {
		sk := squash(key)
		if !strings.Contains(m, sk) {
			continue
		}
		if len(sk) > bestLen || (len(sk) == bestLen && key < best) {
			best, bestLen = key, len(sk)
		}
	}
	return best, best != ""
}

// ValidateCoordinates checks one bounding box against a screen size.
// Returns ok and a human-readable reason when not.
func ValidateCoordinates(x, y, width, height, deviceWidth, deviceHeight int) (bool, string) {
	if x < 0 || y < 0 {
		return false, fmt.Sprintf("coordinates cannot be negative: x=%d, y=%d", x, y)
	}
	if x+width > deviceWidth {
		return false, fmt.Sprintf("object extends beyond screen width: %d > %d", x+width, deviceWidth)
	}
	if y+height > deviceHeight {
		return false, fmt.Sprintf("object extends beyond screen height: %d > %d", y+height, deviceHeight)
	}
	return true, ""
}
