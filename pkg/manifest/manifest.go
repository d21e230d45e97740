package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ErrDefinitionNotFound is returned when a table has no entry for a hash.
var ErrDefinitionNotFound = errors.New("definition not found")

// Manifest is the merged, read-only manifest published after startup.
// It is built once by Assemble and never modified afterwards.
type Manifest struct {
	language   string
	version    string
	tables     Tables
	settings   *CommonSettings
	statistics Statistics
}

// AssembleOptions carries everything besides the stored tables that goes
// into a Manifest.
type AssembleOptions struct {
	Language   string
	Settings   *CommonSettings
	Statistics Statistics
	Overrides  *Overrides
	Logger     *zap.Logger
}

// Assemble merges locale overrides into stored and wraps the result. stored
// itself is left untouched.
func Assemble(stored *Stored, opts AssembleOptions) *Manifest {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	overrides := opts.Overrides
	if overrides == nil {
		overrides = NewOverrides(logger)
	}
	lang := ResolveLanguage(opts.Language)

	tables := overrides.Apply(stored.Tables, lang)
	applyAdjustments(tables)

	statistics := opts.Statistics
	if statistics == nil {
		statistics = Statistics{}
	}

	return &Manifest{
		language:   lang,
		version:    stored.Version,
		tables:     tables,
		settings:   opts.Settings,
		statistics: statistics,
	}
}

func (m *Manifest) Language() string { return m.language }

func (m *Manifest) Version() string { return m.version }

// Settings returns the service settings captured at startup, or nil when the
// settings call did not succeed.
func (m *Manifest) Settings() *CommonSettings {
	if m.settings == nil {
		return nil
	}
	s := CommonSettings{Systems: make(map[string]SystemStatus, len(m.settings.Systems))}
	for k, v := range m.settings.Systems {
		s.Systems[k] = v
	}
	return &s
}

// Statistic returns one usage statistic.
func (m *Manifest) Statistic(key string) (any, bool) {
	v, ok := m.statistics[key]
	return v, ok
}

// Tables lists the tables present, sorted by name.
func (m *Manifest) Tables() []TableName {
	return m.tables.Names()
}

// Has reports whether the table is present.
func (m *Manifest) Has(name TableName) bool {
	_, ok := m.tables[name]
	return ok
}

// Len returns the number of definitions in a table.
func (m *Manifest) Len(name TableName) int {
	return len(m.tables[name])
}

// Get returns the raw definition for hash. Callers must treat the returned
// map as read-only.
func (m *Manifest) Get(name TableName, hash string) (map[string]any, bool) {
	return object(m.tables[name][hash])
}

// Each calls fn for every definition in a table in hash order until fn
// returns false.
func (m *Manifest) Each(name TableName, fn func(hash string, def map[string]any) bool) {
	table := m.tables[name]
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		def, ok := object(table[k])
		if !ok {
			continue
		}
		if !fn(k, def) {
			return
		}
	}
}

// Decode unmarshals a definition into v.
func (m *Manifest) Decode(name TableName, hash string, v any) error {
	raw, ok := m.tables[name][hash]
	if !ok {
		return fmt.Errorf("%s %s: %w", name, hash, ErrDefinitionNotFound)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", name, hash, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s %s: %w", name, hash, err)
	}
	return nil
}

// Item returns a typed inventory item definition.
func (m *Manifest) Item(hash string) (ItemDefinition, error) {
	var item ItemDefinition
	err := m.Decode(TableInventoryItem, hash, &item)
	item.Key = hash
	return item, err
}

// Lore returns a typed lore entry.
func (m *Manifest) Lore(hash string) (LoreDefinition, error) {
	var lore LoreDefinition
	err := m.Decode(TableLore, hash, &lore)
	lore.Key = hash
	return lore, err
}

// Destination returns a typed destination definition.
func (m *Manifest) Destination(hash string) (DestinationDefinition, error) {
	var dest DestinationDefinition
	err := m.Decode(TableDestination, hash, &dest)
	dest.Key = hash
	return dest, err
}

// SearchItems returns up to limit items whose name contains query,
// case-insensitively. A hash matches exactly.
func (m *Manifest) SearchItems(query string, limit int) []ItemDefinition {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	if item, err := m.Item(query); err == nil {
		return []ItemDefinition{item}
	}

	var results []ItemDefinition
	m.Each(TableInventoryItem, func(hash string, def map[string]any) bool {
		display, _ := object(def["displayProperties"])
		name, _ := display["name"].(string)
		if name == "" || !strings.Contains(strings.ToLower(name), query) {
			return true
		}
		item, err := m.Item(hash)
		if err != nil {
			return true
		}
		results = append(results, item)
		return limit <= 0 || len(results) < limit
	})
	return results
}

// DisplayProperties is the common naming block of most definitions.
type DisplayProperties struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// ItemDefinition is the subset of an inventory item used by this tool.
type ItemDefinition struct {
	Key                 string            `json:"-"`
	Hash                Hash              `json:"hash"`
	DisplayProperties   DisplayProperties `json:"displayProperties"`
	ItemTypeDisplayName string            `json:"itemTypeDisplayName"`
	FlavorText          string            `json:"flavorText"`
	LoreHash            Hash              `json:"loreHash"`
	Inventory           struct {
		TierTypeName string `json:"tierTypeName"`
	} `json:"inventory"`
	Objectives struct {
		ObjectiveHashes []Hash `json:"objectiveHashes"`
	} `json:"objectives"`
}

// LoreDefinition is a lore book entry.
type LoreDefinition struct {
	Key               string `json:"-"`
	DisplayProperties struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"displayProperties"`
	Subtitle string `json:"subtitle"`
}

// DestinationDefinition is a playable destination.
type DestinationDefinition struct {
	Key               string            `json:"-"`
	DisplayProperties DisplayProperties `json:"displayProperties"`
	PlaceHash         Hash              `json:"placeHash"`
	Bubbles           []struct {
		Hash              Hash              `json:"hash"`
		DisplayProperties DisplayProperties `json:"displayProperties"`
	} `json:"bubbles"`
}

// Hash is a definition reference. The API encodes hashes as JSON numbers;
// synthetic entries use strings.
type Hash string

func (h *Hash) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*h = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*h = Hash(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	*h = Hash(n.String())
	return nil
}
