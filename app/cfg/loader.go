package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/lysyi3m/mensa-feed/app/mensa"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Server configuration
	Host string `long:"host" env:"HOST" default:"127.0.0.1" description:"HTTP server bind address"`
	Port string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`

	// Upstream configuration
	UpstreamURL string `long:"upstream-url" env:"UPSTREAM_URL" description:"Menu page URL template, %s is replaced by the canteen id"`
	UserAgent   string `long:"user-agent" env:"USER_AGENT" default:"Mensa Feed/1.0" description:"User agent string for HTTP requests"`
	Timeout     int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"0" description:"Upstream fetch timeout in seconds (0 disables it)"`

	// Canteen and schema configuration
	CanteensDir string `long:"canteens-dir" env:"CANTEENS_DIR" description:"Directory containing canteen metadata files (optional)"`
	SchemaFile  string `long:"schema-file" env:"SCHEMA_FILE" description:"OpenMensa XSD used for validation (defaults to the embedded v2 schema)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Berlin)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	Dump     string `long:"dump" description:"Print the feed of the given canteen to stdout and exit"`
}

func Load() (*Cfg, error) {
	return parse(nil)
}

func parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.Timeout < 0 {
		return nil, fmt.Errorf("fetch timeout must not be negative, got %d", raw.Timeout)
	}

	cfg := &Cfg{
		Host:        raw.Host,
		Port:        raw.Port,
		UpstreamURL: cmp.Or(raw.UpstreamURL, mensa.DefaultUpstreamURL),
		UserAgent:   raw.UserAgent,
		Timeout:     time.Duration(raw.Timeout) * time.Second,
		CanteensDir: raw.CanteensDir,
		SchemaFile:  raw.SchemaFile,
		Timezone:    raw.Timezone,
		Debug:       raw.Debug,
		Dump:        raw.Dump,
		Version:     GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

func applyTimezone(timezone string) error {
	if timezone == "" {
		return nil
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}
	time.Local = loc
	return nil
}
