// config.go - Haupt-Konfigurationsfunktionen fuer sarcolor
//
// Dieses Modul enthaelt:
// - Host: Gibt Scheme und Host zurueck (SARCOLOR_HOST)
// - AllowedOrigins: Gibt erlaubte Origins zurueck (SARCOLOR_ORIGINS)
// - Models: Gibt den Pfad zum Modell-Manifest zurueck (SARCOLOR_MODELS)
// - Bucket: Gibt das Wurzelverzeichnis des Object Stores zurueck (SARCOLOR_BUCKET)
// - PublicURL: Basis-URL fuer hochgeladene Objekte (SARCOLOR_PUBLIC_URL)
// - RequestTimeout: Timeout pro Colorize-Request (SARCOLOR_REQUEST_TIMEOUT)
// - LogLevel: Gibt Log-Level zurueck (SARCOLOR_DEBUG)
//
// Weitere Konfigurationen sind ausgelagert:
// - config_features.go: Pipeline-Policy und Parallelitaet
// - config_utils.go: Utility-Funktionen und AsMap/Values
package envconfig

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Host gibt Scheme und Host zurueck
// Konfigurierbar via SARCOLOR_HOST
// Default: http://127.0.0.1:11500
func Host() *url.URL {
	defaultPort := "11500"

	s := strings.TrimSpace(Var("SARCOLOR_HOST"))
	scheme, hostport, ok := strings.Cut(s, "://")
	switch {
	case !ok:
		scheme, hostport = "http", s
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		slog.Warn("invalid port, using default", "port", port, "default", defaultPort)
		port = defaultPort
	}

	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, port),
		Path:   path,
	}
}

// AllowedOrigins gibt erlaubte Origins zurueck
// Konfigurierbar via SARCOLOR_ORIGINS (komma-separiert)
// Enthaelt Standard-Origins fuer localhost (Next.js Frontend laeuft lokal auf :3000)
func AllowedOrigins() (origins []string) {
	if s := Var("SARCOLOR_ORIGINS"); s != "" {
		origins = strings.Split(s, ",")
	}

	for _, origin := range []string{"localhost", "127.0.0.1", "0.0.0.0"} {
		origins = append(origins,
			fmt.Sprintf("http://%s", origin),
			fmt.Sprintf("https://%s", origin),
			fmt.Sprintf("http://%s", net.JoinHostPort(origin, "*")),
			fmt.Sprintf("https://%s", net.JoinHostPort(origin, "*")),
		)
	}

	return origins
}

// Home gibt das Arbeitsverzeichnis von sarcolor zurueck ($HOME/.sarcolor)
func Home() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "sarcolor")
	}
	return filepath.Join(home, ".sarcolor")
}

// Models gibt den Pfad zum Modell-Manifest zurueck
// Konfigurierbar via SARCOLOR_MODELS
// Default: $HOME/.sarcolor/models/manifest.yaml
func Models() string {
	if s := Var("SARCOLOR_MODELS"); s != "" {
		return s
	}
	return filepath.Join(Home(), "models", "manifest.yaml")
}

// Bucket gibt das Wurzelverzeichnis des lokalen Object Stores zurueck
// Konfigurierbar via SARCOLOR_BUCKET
// Default: $HOME/.sarcolor/bucket
func Bucket() string {
	if s := Var("SARCOLOR_BUCKET"); s != "" {
		return s
	}
	return filepath.Join(Home(), "bucket")
}

// PublicURL gibt die Basis-URL zurueck, unter der Bucket-Objekte erreichbar sind
// Konfigurierbar via SARCOLOR_PUBLIC_URL
// Default: <Host>/files
func PublicURL() *url.URL {
	if s := Var("SARCOLOR_PUBLIC_URL"); s != "" {
		if u, err := url.Parse(s); err == nil && u.Scheme != "" {
			return u
		}
		slog.Warn("invalid public url, using default", "value", s)
	}
	return Host().JoinPath("files")
}

// DB gibt den Pfad zur History-Datenbank zurueck
// Konfigurierbar via SARCOLOR_DB
// Default: $HOME/.sarcolor/history.sqlite
func DB() string {
	if s := Var("SARCOLOR_DB"); s != "" {
		return s
	}
	return filepath.Join(Home(), "history.sqlite")
}

// RequestTimeout gibt das Timeout fuer einen Colorize-Request zurueck
// Konfigurierbar via SARCOLOR_REQUEST_TIMEOUT
// 0 oder negative Werte = unendlich
// Default: 2 Minuten
func RequestTimeout() (timeout time.Duration) {
	timeout = 2 * time.Minute
	if s := Var("SARCOLOR_REQUEST_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			timeout = d
		} else if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			timeout = time.Duration(n) * time.Second
		}
	}

	if timeout <= 0 {
		return time.Duration(math.MaxInt64)
	}

	return timeout
}

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via SARCOLOR_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("SARCOLOR_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
