package manifest

import "sort"

// Index is the remote manifest descriptor.
type Index struct {
	Version                        string                       `json:"version"`
	JSONWorldContentPaths          map[string]string            `json:"jsonWorldContentPaths"`
	JSONWorldComponentContentPaths map[string]map[string]string `json:"jsonWorldComponentContentPaths"`
}

// VersionFor returns the version token for a language. The world content
// path changes with every manifest release, so it doubles as the token.
func (i *Index) VersionFor(lang string) (string, bool) {
	if i == nil {
		return "", false
	}
	v, ok := i.JSONWorldContentPaths[lang]
	return v, ok && v != ""
}

// PathsFor returns the per-table download paths for a language.
func (i *Index) PathsFor(lang string) map[TableName]string {
	if i == nil {
		return nil
	}
	raw := i.JSONWorldComponentContentPaths[lang]
	paths := make(map[TableName]string, len(raw))
	for name, path := range raw {
		paths[TableName(name)] = path
	}
	return paths
}

// Languages lists the languages the index publishes content for.
func (i *Index) Languages() []string {
	if i == nil {
		return nil
	}
	langs := make([]string, 0, len(i.JSONWorldContentPaths))
	for lang := range i.JSONWorldContentPaths {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// SystemStatus reports whether a remote subsystem is enabled.
type SystemStatus struct {
	Enabled bool `json:"enabled"`
}

// CommonSettings is the service-settings payload of the game API.
type CommonSettings struct {
	Systems map[string]SystemStatus `json:"systems"`
}

// Enabled reports whether the named system is switched on.
func (s *CommonSettings) Enabled(system string) bool {
	if s == nil {
		return false
	}
	return s.Systems[system].Enabled
}

// Statistics holds usage statistics from the statistics service.
type Statistics map[string]any
