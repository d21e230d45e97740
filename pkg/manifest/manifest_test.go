package manifest

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedFixture() *Stored {
	return &Stored{
		Version: "/content/en/world_v1.json",
		Tables: Tables{
			TableInventoryItem: Table{
				"2412366792": map[string]any{
					"hash":              float64(2412366792),
					"displayProperties": map[string]any{"name": "Enigmatic Blueprint", "icon": "/bp.png"},
					"objectives":        map[string]any{"objectiveHashes": []any{float64(1), float64(2)}},
				},
				"1363886209": map[string]any{
					"hash":                float64(1363886209),
					"displayProperties":   map[string]any{"name": "Gjallarhorn"},
					"itemTypeDisplayName": "Rocket Launcher",
					"inventory":           map[string]any{"tierTypeName": "Exotic"},
				},
			},
			TableVendor: Table{
				"2398407866": map[string]any{
					"locations": []any{
						map[string]any{"destinationHash": float64(1)},
						map[string]any{"destinationHash": float64(2)},
					},
				},
			},
			TableDestination: Table{
				"1993421442": map[string]any{"displayProperties": map[string]any{"name": "Mercury"}},
			},
			TableCollectible: Table{
				"259147459": map[string]any{"displayProperties": map[string]any{"name": "Fields of Glass"}},
			},
			TableLore: Table{
				"77": map[string]any{
					"displayProperties": map[string]any{"name": "Unveiling", "description": "In the beginning..."},
					"subtitle":          "Book",
				},
			},
		},
	}
}

func assembleFixture(t *testing.T) (*Stored, *Manifest) {
	t.Helper()
	stored := storedFixture()
	m := Assemble(stored, AssembleOptions{
		Language:   "en",
		Settings:   &CommonSettings{Systems: map[string]SystemStatus{"D2Profiles": {Enabled: true}}},
		Statistics: Statistics{"members": float64(42)},
		Overrides:  NewOverridesFS(fstest.MapFS{}, nil),
	})
	require.NotNil(t, m)
	return stored, m
}

func TestAssemble_Metadata(t *testing.T) {
	_, m := assembleFixture(t)

	assert.Equal(t, "en", m.Language())
	assert.Equal(t, "/content/en/world_v1.json", m.Version())
	assert.True(t, m.Settings().Enabled("D2Profiles"))

	members, ok := m.Statistic("members")
	assert.True(t, ok)
	assert.Equal(t, float64(42), members)
}

func TestAssemble_SettingsCopyIsIndependent(t *testing.T) {
	_, m := assembleFixture(t)

	s := m.Settings()
	s.Systems["D2Profiles"] = SystemStatus{Enabled: false}

	assert.True(t, m.Settings().Enabled("D2Profiles"))
}

func TestAssemble_BlueprintQuest(t *testing.T) {
	stored, m := assembleFixture(t)

	quest, err := m.Item("2412366792_enigmatic_blueprint")
	require.NoError(t, err)
	assert.Equal(t, Hash("2412366792_enigmatic_blueprint"), quest.Hash)
	assert.Equal(t, "Enigmatic Blueprint", quest.DisplayProperties.Name)
	assert.Equal(t, []Hash{"1", "2"}, quest.Objectives.ObjectiveHashes)

	_, inStored := stored.Tables[TableInventoryItem]["2412366792_enigmatic_blueprint"]
	assert.False(t, inStored)
}

func TestAssemble_VendorRelocated(t *testing.T) {
	stored, m := assembleFixture(t)

	vendor, ok := m.Get(TableVendor, "2398407866")
	require.True(t, ok)
	locations := vendor["locations"].([]any)
	assert.Equal(t, float64(1993421442), locations[0].(map[string]any)["destinationHash"])
	assert.Equal(t, float64(2), locations[1].(map[string]any)["destinationHash"])

	orig := stored.Tables[TableVendor]["2398407866"].(map[string]any)["locations"].([]any)
	assert.Equal(t, float64(1), orig[0].(map[string]any)["destinationHash"])
}

func TestAssemble_MercuryRenamed(t *testing.T) {
	stored, m := assembleFixture(t)

	dest, err := m.Destination("1993421442")
	require.NoError(t, err)
	assert.Equal(t, "Fields of Glass", dest.DisplayProperties.Name)

	orig := stored.Tables[TableDestination]["1993421442"].(map[string]any)["displayProperties"].(map[string]any)
	assert.Equal(t, "Mercury", orig["name"])
}

func TestManifest_Lookups(t *testing.T) {
	_, m := assembleFixture(t)

	item, err := m.Item("1363886209")
	require.NoError(t, err)
	assert.Equal(t, Hash("1363886209"), item.Hash)
	assert.Equal(t, "Exotic", item.Inventory.TierTypeName)

	lore, err := m.Lore("77")
	require.NoError(t, err)
	assert.Equal(t, "Unveiling", lore.DisplayProperties.Name)
	assert.Equal(t, "Book", lore.Subtitle)

	_, err = m.Item("missing")
	assert.True(t, errors.Is(err, ErrDefinitionNotFound))

	assert.True(t, m.Has(TableLore))
	assert.False(t, m.Has(TableRecord))
	assert.Equal(t, 3, m.Len(TableInventoryItem))
}

func TestManifest_SearchItems(t *testing.T) {
	_, m := assembleFixture(t)

	results := m.SearchItems("gjallar", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "Gjallarhorn", results[0].DisplayProperties.Name)

	byHash := m.SearchItems("1363886209", 10)
	require.Len(t, byHash, 1)

	limited := m.SearchItems("i", 1)
	assert.Len(t, limited, 1)

	assert.Empty(t, m.SearchItems("  ", 10))
}

func TestManifest_EachStops(t *testing.T) {
	_, m := assembleFixture(t)

	var seen []string
	m.Each(TableInventoryItem, func(hash string, _ map[string]any) bool {
		seen = append(seen, hash)
		return false
	})
	assert.Equal(t, []string{"1363886209"}, seen)
}

func TestIndex_VersionAndPaths(t *testing.T) {
	idx := &Index{
		JSONWorldContentPaths: map[string]string{"en": "/en/world.json", "de": ""},
		JSONWorldComponentContentPaths: map[string]map[string]string{
			"en": {"DestinyLoreDefinition": "/en/lore.json"},
		},
	}

	v, ok := idx.VersionFor("en")
	assert.True(t, ok)
	assert.Equal(t, "/en/world.json", v)

	_, ok = idx.VersionFor("de")
	assert.False(t, ok)

	assert.Equal(t, "/en/lore.json", idx.PathsFor("en")[TableLore])
	assert.Equal(t, []string{"de", "en"}, idx.Languages())

	var nilIndex *Index
	_, ok = nilIndex.VersionFor("en")
	assert.False(t, ok)
}
