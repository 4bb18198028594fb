package cfg

import "time"

type Cfg struct {
	// Server configuration
	Host string
	Port string

	// Upstream configuration
	UpstreamURL string
	UserAgent   string
	Timeout     time.Duration

	// Canteen and schema configuration
	CanteensDir string
	SchemaFile  string

	// Application metadata
	Timezone string
	Debug    bool
	Dump     string
	Version  string
}
