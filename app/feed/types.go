package feed

import (
	"github.com/lysyi3m/mensa-feed/app/openmensa"
)

// DefaultCanteens are the canteens served without any configuration.
var DefaultCanteens = []string{"westerberg", "mschlossg", "mhaste", "mvechta"}

// Canteen configuration, read from <id>.yml in the canteens directory:
//
//	name: Mensa Westerberg
//	address: Westerberg, Osnabrück
//	city: Osnabrück
type Canteen struct {
	ID   string                `yaml:"-"`
	Info openmensa.CanteenInfo `yaml:",inline"`
}
