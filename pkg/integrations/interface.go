package integrations

// LoreEntry is one lore text ready to be written out.
type LoreEntry struct {
	Hash     string
	Title    string
	Subtitle string
	Body     string
}

type Exporter interface {
	Export(title, lang string, entries []LoreEntry) (string, error)
}
