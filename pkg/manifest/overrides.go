package manifest

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"go.uber.org/zap"
)

//go:embed overrides/*/*.json
var overrideFS embed.FS

type overrideOp int

const (
	opReplace overrideOp = iota
	opLayer
	opMerge
	opAssign
)

type overrideSource int

const (
	// sourceLanguage reads the active language's dataset.
	sourceLanguage overrideSource = iota
	// sourceEnglish always reads the en dataset.
	sourceEnglish
)

type overrideRule struct {
	table  TableName
	op     overrideOp
	source overrideSource
	// fallback selects the en dataset when the language has none of its own.
	fallback bool
}

var overrideRules = []overrideRule{
	{table: TableBraytech, op: opReplace, source: sourceLanguage, fallback: true},
	{table: TableBraytechMaps, op: opLayer},
	{table: TableClanBanner, op: opReplace, source: sourceEnglish},
	{table: TableActivity, op: opMerge, source: sourceEnglish},
	{table: TableDestination, op: opMerge, source: sourceLanguage, fallback: true},
	{table: TableHistoricalStats, op: opMerge, source: sourceEnglish},
	{table: TableInventoryItem, op: opMerge, source: sourceLanguage},
	{table: TableActivityModifier, op: opAssign, source: sourceLanguage, fallback: true},
}

// Overrides reads hand-maintained override tables from a filesystem laid out
// as <locale>/<TableName>.json.
type Overrides struct {
	fsys   fs.FS
	logger *zap.Logger
}

// NewOverrides returns the override set embedded in the binary.
func NewOverrides(logger *zap.Logger) *Overrides {
	sub, _ := fs.Sub(overrideFS, "overrides")
	return NewOverridesFS(sub, logger)
}

// NewOverridesFS reads overrides from fsys.
func NewOverridesFS(fsys fs.FS, logger *zap.Logger) *Overrides {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Overrides{fsys: fsys, logger: logger}
}

// Apply returns a copy of tables with the override rules for lang applied.
// It never fails: unreadable datasets are logged and skipped.
func (o *Overrides) Apply(tables Tables, lang string) Tables {
	out := make(Tables, len(tables)+3)
	for name, table := range tables {
		out[name] = table
	}

	for _, rule := range overrideRules {
		switch rule.op {
		case opLayer:
			base, _ := o.dataset(DefaultLanguage, rule.table)
			if lang != DefaultLanguage {
				if local, ok := o.dataset(lang, rule.table); ok {
					base = MergeTable(base, local)
				}
			}
			if base != nil {
				out[rule.table] = base
			}
			continue
		}

		data, ok := o.lookup(rule, lang)
		if !ok {
			continue
		}
		switch rule.op {
		case opReplace:
			out[rule.table] = data
		case opMerge:
			out[rule.table] = MergeTable(out[rule.table], data)
		case opAssign:
			out[rule.table] = AssignTable(out[rule.table], data)
		}
	}
	return out
}

func (o *Overrides) lookup(rule overrideRule, lang string) (Table, bool) {
	if rule.source == sourceEnglish {
		return o.dataset(DefaultLanguage, rule.table)
	}
	if data, ok := o.dataset(lang, rule.table); ok {
		return data, true
	}
	if rule.fallback && lang != DefaultLanguage {
		return o.dataset(DefaultLanguage, rule.table)
	}
	return nil, false
}

func (o *Overrides) dataset(lang string, table TableName) (Table, bool) {
	name := path.Join(lang, string(table)+".json")
	raw, err := fs.ReadFile(o.fsys, name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			o.logger.Warn("read override dataset", zap.String("file", name), zap.Error(err))
		}
		return nil, false
	}
	var data Table
	if err := json.Unmarshal(raw, &data); err != nil {
		o.logger.Warn("decode override dataset", zap.String("file", name), zap.Error(fmt.Errorf("%s: %w", name, err)))
		return nil, false
	}
	return data, true
}
