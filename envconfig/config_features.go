// config_features.go - Pipeline-Policy und Parallelitaet
//
// Dieses Modul enthaelt:
// - Kachel-Policy (Blockgroesse, Schwelle fuer den Ganzbild-Pfad)
// - Parallelitaets- und Queue-Einstellungen des Servers
// - ONNX Runtime Pfad
package envconfig

// =============================================================================
// Kachel-Policy
// =============================================================================

var (
	// BlockSize ist die Kantenlaenge einer Kachel; Zielgroessen sind Vielfache davon
	// Konfigurierbar via SARCOLOR_BLOCK_SIZE
	BlockSize = Uint("SARCOLOR_BLOCK_SIZE", 128)

	// TileThreshold ist die maximale Kantenlaenge fuer den Ganzbild-Pfad
	// Konfigurierbar via SARCOLOR_TILE_THRESHOLD
	TileThreshold = Uint("SARCOLOR_TILE_THRESHOLD", 512)
)

// =============================================================================
// Parallelitaets- und Queue-Einstellungen
// =============================================================================

var (
	// NumParallel setzt die Anzahl gleichzeitig laufender Colorize-Requests
	// Konfigurierbar via SARCOLOR_NUM_PARALLEL
	NumParallel = Uint("SARCOLOR_NUM_PARALLEL", 1)

	// MaxQueue setzt die maximale Anzahl wartender Requests
	// Konfigurierbar via SARCOLOR_MAX_QUEUE
	MaxQueue = Uint("SARCOLOR_MAX_QUEUE", 64)
)

// =============================================================================
// Backends
// =============================================================================

var (
	// OnnxLibrary ist der Pfad zur onnxruntime Shared Library
	OnnxLibrary = String("SARCOLOR_ONNX_LIBRARY")

	// NoHistory deaktiviert die Request-History
	NoHistory = Bool("SARCOLOR_NOHISTORY")
)
