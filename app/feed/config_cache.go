package feed

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// ErrNotServed is returned for metadata files naming a canteen outside
// DefaultCanteens.
var ErrNotServed = errors.New("canteen is not served")

type CanteenCache struct {
	canteensDir string
	cache       map[string]*Canteen
	mu          sync.RWMutex
}

func NewCanteenCache(canteensDir string) *CanteenCache {
	cache := make(map[string]*Canteen, len(DefaultCanteens))
	for _, id := range DefaultCanteens {
		cache[id] = &Canteen{ID: id}
	}

	return &CanteenCache{
		canteensDir: canteensDir,
		cache:       cache,
	}
}

// Run loads every <id>.yml in the canteens directory. A missing or unset
// directory leaves the built-in canteens without metadata. Files for other
// ids are skipped; they never add a canteen.
func (cc *CanteenCache) Run() error {
	if cc.canteensDir == "" {
		return nil
	}
	if _, err := os.Stat(cc.canteensDir); os.IsNotExist(err) {
		slog.Warn("Canteens directory not found", "dir", cc.canteensDir)
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.canteensDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		fileName := filepath.Base(file)
		canteenID := fileName[:len(fileName)-4]

		canteen, err := cc.LoadCanteen(canteenID)
		if errors.Is(err, ErrNotServed) {
			slog.Warn("Skipping metadata for unserved canteen", "canteen", canteenID, "file", file)
			continue
		}
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Canteen loaded", "canteen", canteen.ID, "name", canteen.Info.Name)
	}

	return nil
}

func (cc *CanteenCache) LoadCanteen(canteenID string) (*Canteen, error) {
	if !lo.Contains(DefaultCanteens, canteenID) {
		return nil, fmt.Errorf("%w: %q", ErrNotServed, canteenID)
	}

	configFile := filepath.Join(cc.canteensDir, canteenID+".yml")
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var canteen Canteen
	if err := yaml.Unmarshal(data, &canteen); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	canteen.ID = canteenID

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[canteen.ID] = &canteen

	return &canteen, nil
}

func (cc *CanteenCache) GetCanteen(canteenID string) (*Canteen, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	canteen, ok := cc.cache[canteenID]
	return canteen, ok
}

// GetIDs returns the served canteens in their fixed order.
func (cc *CanteenCache) GetIDs() []string {
	return slices.Clone(DefaultCanteens)
}

func (cc *CanteenCache) GetCanteenCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}
