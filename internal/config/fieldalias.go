package config

import (
	"strings"

	"github.com/devaiflow/daf/internal/tracker"
)

// FieldAlias is the canonical description a friendly name resolves to.
type FieldAlias struct {
	FieldID       string   `mapstructure:"fieldId"`
	Type          string   `mapstructure:"type"`
	AllowedValues []string `mapstructure:"allowedValues"`
}

// FieldAliasMap maps a display alias (e.g. "sprint", "points") to the
// tracker field it names.
type FieldAliasMap map[string]FieldAlias

// RefreshFieldAliases rebuilds the alias map from a freshly-fetched
// FieldCatalog: every field's own id is always an alias for itself, and its
// DisplayName (lowercased, spaces collapsed to underscores) is an alias
// when it differs from the id. overrides — a layer's configured
// tracker.customFields name->id map — take precedence over both, letting an
// admin pin a memorable alias (e.g. "points") to a customfield_NNNNN id the
// catalog would otherwise only expose under its raw display name.
//
// The cache itself is the FieldCatalog persisted by
// tracker.SaveBackendCatalog; aliasing is a pure projection over it,
// recomputed whenever the caller re-fetches and calls this again.
func RefreshFieldAliases(catalog *tracker.FieldCatalog, overrides map[string]string) FieldAliasMap {
	aliases := make(FieldAliasMap, len(catalog.Fields))
	for _, f := range catalog.Fields {
		aliases[f.FieldID] = FieldAlias{FieldID: f.FieldID, Type: f.Type, AllowedValues: f.AllowedValues}
		if alias := normalizeAlias(f.DisplayName); alias != "" && alias != f.FieldID {
			aliases[alias] = FieldAlias{FieldID: f.FieldID, Type: f.Type, AllowedValues: f.AllowedValues}
		}
	}
	for alias, fieldID := range overrides {
		spec := catalog.Lookup(fieldID)
		if spec == nil {
			continue
		}
		aliases[normalizeAlias(alias)] = FieldAlias{FieldID: spec.FieldID, Type: spec.Type, AllowedValues: spec.AllowedValues}
	}
	return aliases
}

// Resolve looks up alias, falling back to treating it as a raw field id if
// no alias entry matches.
func (m FieldAliasMap) Resolve(alias string) (FieldAlias, bool) {
	if a, ok := m[normalizeAlias(alias)]; ok {
		return a, true
	}
	a, ok := m[alias]
	return a, ok
}

func normalizeAlias(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
