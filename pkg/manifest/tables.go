package manifest

import "sort"

// TableName identifies one category of definitions within the manifest.
type TableName string

const (
	TableActivity         TableName = "DestinyActivityDefinition"
	TableActivityModifier TableName = "DestinyActivityModifierDefinition"
	TableActivityMode     TableName = "DestinyActivityModeDefinition"
	TableChecklist        TableName = "DestinyChecklistDefinition"
	TableClass            TableName = "DestinyClassDefinition"
	TableCollectible      TableName = "DestinyCollectibleDefinition"
	TableDestination      TableName = "DestinyDestinationDefinition"
	TableFaction          TableName = "DestinyFactionDefinition"
	TableInventoryItem    TableName = "DestinyInventoryItemDefinition"
	TableLore             TableName = "DestinyLoreDefinition"
	TableObjective        TableName = "DestinyObjectiveDefinition"
	TablePlace            TableName = "DestinyPlaceDefinition"
	TablePresentationNode TableName = "DestinyPresentationNodeDefinition"
	TableProgression      TableName = "DestinyProgressionDefinition"
	TableRace             TableName = "DestinyRaceDefinition"
	TableRecord           TableName = "DestinyRecordDefinition"
	TableSeason           TableName = "DestinySeasonDefinition"
	TableSocketType       TableName = "DestinySocketTypeDefinition"
	TableStat             TableName = "DestinyStatDefinition"
	TableVendor           TableName = "DestinyVendorDefinition"
	TableHistoricalStats  TableName = "DestinyHistoricalStatsDefinition"
	TableClanBanner       TableName = "DestinyClanBannerDefinition"
	TableBraytech         TableName = "BraytechDefinition"
	TableBraytechMaps     TableName = "BraytechMapsDefinition"
)

// RequiredTables are downloaded individually from the paths listed in the
// manifest index. The historical stats table comes from its own endpoint.
var RequiredTables = []TableName{
	TableActivity,
	TableActivityModifier,
	TableActivityMode,
	TableChecklist,
	TableClass,
	TableCollectible,
	TableDestination,
	TableFaction,
	TableInventoryItem,
	TableLore,
	TableObjective,
	TablePlace,
	TablePresentationNode,
	TableProgression,
	TableRace,
	TableRecord,
	TableSeason,
	TableSocketType,
	TableStat,
	TableVendor,
}

// Table holds decoded definitions keyed by hash.
type Table map[string]any

// Tables maps a table name to its contents.
type Tables map[TableName]Table

// Names returns the table names in lexical order.
func (t Tables) Names() []TableName {
	names := make([]TableName, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Stored is the locally cached table set and the version it was downloaded for.
type Stored struct {
	Version string
	Tables  Tables
}
