package sessionmgr

import (
	"context"

	"github.com/devaiflow/daf/internal/config"
	"github.com/devaiflow/daf/internal/safety"
	"github.com/devaiflow/daf/internal/tracker"
)

// ConfigShow returns the fully-merged configuration view. Read-only.
func (m *Manager) ConfigShow() (*config.Config, error) {
	if err := m.checkSafety(safety.OpConfigShow); err != nil {
		return nil, err
	}
	return m.Cfg, nil
}

// RefreshFieldAliasesParams is the input to RefreshFieldAliases.
type RefreshFieldAliasesParams struct {
	Root    string
	Backend string
	Project string
	Kind    string
	IssueKey string // set for an editable-fields refresh instead of creatable
}

// RefreshFieldAliases re-fetches the tracker's creatable or editable field
// catalog, rebuilds the alias map from it plus the configured customFields
// overrides, and persists the refreshed catalog so later runs don't need
// the network.
func (m *Manager) RefreshFieldAliases(ctx context.Context, p RefreshFieldAliasesParams) (config.FieldAliasMap, error) {
	if err := m.checkSafety(safety.OpConfigRefresh); err != nil {
		return nil, err
	}

	var catalog *tracker.FieldCatalog
	var err error
	if p.IssueKey != "" {
		catalog, err = m.Tracker.GetEditableFields(ctx, p.IssueKey)
	} else {
		catalog, err = m.Tracker.GetCreatableFields(ctx, p.Project, p.Kind)
	}
	if err != nil {
		return nil, err
	}

	var overrides map[string]string
	if m.Cfg != nil {
		overrides = m.Cfg.Tracker.CustomFields
	}
	aliases := config.RefreshFieldAliases(catalog, overrides)

	if err := tracker.SaveBackendCatalog(p.Root, p.Backend, catalog); err != nil {
		return nil, err
	}
	return aliases, nil
}
