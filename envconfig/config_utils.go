// config_utils.go - Utility-Funktionen und Export fuer Konfiguration
//
// Dieses Modul enthaelt:
// - BoolWithDefault/Bool: Boolean-Getter mit Default-Wert
// - String: String-Getter
// - Uint: Integer-Getter mit Default-Wert
// - EnvVar: Struktur fuer Environment-Variablen-Info
// - AsMap: Gibt alle Konfigurationen als Map zurueck
// - Values: Gibt alle Konfigurationswerte als String-Map zurueck
package envconfig

import (
	"fmt"
	"log/slog"
	"strconv"
)

// =============================================================================
// Boolean-Getter
// =============================================================================

// BoolWithDefault gibt eine Funktion zurueck, die einen Bool mit Default-Wert liest
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool gibt eine Funktion zurueck, die einen Bool liest (Default: false)
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// =============================================================================
// String-Getter
// =============================================================================

// String gibt eine Funktion zurueck, die einen String liest
func String(s string) func() string {
	return func() string {
		return Var(s)
	}
}

// =============================================================================
// Integer-Getter
// =============================================================================

// Uint gibt eine Funktion zurueck, die einen uint mit Default-Wert liest.
// 0 gilt als ungueltig, da alle Zaehler in sarcolor positiv sein muessen.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil || n == 0 {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// =============================================================================
// Export-Strukturen und -Funktionen
// =============================================================================

// EnvVar repraesentiert eine Environment-Variable mit Metadaten
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap gibt alle Konfigurationen als Map zurueck
// Enthaelt Namen, aktuelle Werte und Beschreibungen
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"SARCOLOR_DEBUG":           {"SARCOLOR_DEBUG", LogLevel(), "Show additional debug information (e.g. SARCOLOR_DEBUG=1)"},
		"SARCOLOR_HOST":            {"SARCOLOR_HOST", Host(), "IP Address for the sarcolor server (default 127.0.0.1:11500)"},
		"SARCOLOR_ORIGINS":         {"SARCOLOR_ORIGINS", AllowedOrigins(), "A comma separated list of allowed origins"},
		"SARCOLOR_MODELS":          {"SARCOLOR_MODELS", Models(), "The path to the model manifest"},
		"SARCOLOR_BUCKET":          {"SARCOLOR_BUCKET", Bucket(), "Root directory of the object store"},
		"SARCOLOR_PUBLIC_URL":      {"SARCOLOR_PUBLIC_URL", PublicURL(), "Base URL for uploaded objects (default <host>/files)"},
		"SARCOLOR_DB":              {"SARCOLOR_DB", DB(), "The path to the request history database"},
		"SARCOLOR_NOHISTORY":       {"SARCOLOR_NOHISTORY", NoHistory(), "Do not record requests in the history database"},
		"SARCOLOR_BLOCK_SIZE":      {"SARCOLOR_BLOCK_SIZE", BlockSize(), "Tile edge length in pixels (default 128)"},
		"SARCOLOR_TILE_THRESHOLD":  {"SARCOLOR_TILE_THRESHOLD", TileThreshold(), "Largest edge processed as a whole image (default 512)"},
		"SARCOLOR_NUM_PARALLEL":    {"SARCOLOR_NUM_PARALLEL", NumParallel(), "Maximum number of parallel colorize requests"},
		"SARCOLOR_MAX_QUEUE":       {"SARCOLOR_MAX_QUEUE", MaxQueue(), "Maximum number of queued requests"},
		"SARCOLOR_REQUEST_TIMEOUT": {"SARCOLOR_REQUEST_TIMEOUT", RequestTimeout(), "How long a colorize request may take (default \"2m\")"},
		"SARCOLOR_ONNX_LIBRARY":    {"SARCOLOR_ONNX_LIBRARY", OnnxLibrary(), "Path to the onnxruntime shared library"},
	}
}

// Values gibt alle Konfigurationswerte als String-Map zurueck
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
