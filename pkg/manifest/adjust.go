package manifest

const (
	blueprintItemHash     = "2412366792"
	blueprintQuestHash    = "2412366792_enigmatic_blueprint"
	vanceVendorHash       = "2398407866"
	mercuryDestination    = 1993421442
	mercuryDestinationKey = "1993421442"
	fieldsOfGlassHash     = "259147459"
)

type adjustment func(Tables)

// adjustments patch known gaps in the downloaded definitions. They run after
// the locale overrides and only replace the entries they touch.
var adjustments = []adjustment{
	addBlueprintQuest,
	relocateVance,
	renameMercury,
}

func applyAdjustments(tables Tables) {
	for _, adjust := range adjustments {
		adjust(tables)
	}
}

// addBlueprintQuest derives a standalone quest entry from the blueprint item
// so its objectives can be listed without the item's other steps.
func addBlueprintQuest(tables Tables) {
	items := tables[TableInventoryItem]
	item, ok := object(items[blueprintItemHash])
	if !ok {
		return
	}

	display := map[string]any{}
	if dp, ok := object(item["displayProperties"]); ok {
		display = copyObject(dp)
	}
	var objectiveHashes any
	if objectives, ok := object(item["objectives"]); ok {
		objectiveHashes = objectives["objectiveHashes"]
	}

	patched := make(Table, len(items)+1)
	for k, v := range items {
		patched[k] = v
	}
	patched[blueprintQuestHash] = map[string]any{
		"displayProperties": display,
		"objectives":        map[string]any{"objectiveHashes": objectiveHashes},
		"hash":              blueprintQuestHash,
	}
	tables[TableInventoryItem] = patched
}

// relocateVance points the vendor's first location at Mercury.
func relocateVance(tables Tables) {
	vendors := tables[TableVendor]
	vendor, ok := object(vendors[vanceVendorHash])
	if !ok {
		return
	}
	locations, ok := vendor["locations"].([]any)
	if !ok || len(locations) == 0 {
		return
	}
	first, ok := object(locations[0])
	if !ok {
		return
	}

	location := copyObject(first)
	location["destinationHash"] = float64(mercuryDestination)
	relocated := append([]any{location}, locations[1:]...)

	patchedVendor := copyObject(vendor)
	patchedVendor["locations"] = relocated
	tables[TableVendor] = withEntry(vendors, vanceVendorHash, patchedVendor)
}

// renameMercury uses the Fields of Glass collectible name for the Mercury
// destination.
func renameMercury(tables Tables) {
	destinations := tables[TableDestination]
	destination, ok := object(destinations[mercuryDestinationKey])
	if !ok {
		return
	}
	display, ok := object(destination["displayProperties"])
	if !ok {
		return
	}
	collectible, ok := object(tables[TableCollectible][fieldsOfGlassHash])
	if !ok {
		return
	}
	collectibleDisplay, ok := object(collectible["displayProperties"])
	if !ok {
		return
	}
	name, _ := collectibleDisplay["name"].(string)
	if name == "" {
		return
	}

	patchedDisplay := copyObject(display)
	patchedDisplay["name"] = name
	patched := copyObject(destination)
	patched["displayProperties"] = patchedDisplay
	tables[TableDestination] = withEntry(destinations, mercuryDestinationKey, patched)
}

func withEntry(table Table, key string, value any) Table {
	out := make(Table, len(table))
	for k, v := range table {
		out[k] = v
	}
	out[key] = value
	return out
}
