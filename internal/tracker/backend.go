package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devaiflow/daf/internal/jsonutil"
	"github.com/devaiflow/daf/internal/paths"
)

// LoadBackendCatalog reads a previously-cached field catalog from
// backends/<backend>.json under root, so `config refresh-fields` is the
// only operation that needs to hit the network.
func LoadBackendCatalog(root, backend string) (*FieldCatalog, error) {
	data, err := os.ReadFile(paths.BackendConfigPath(root, backend))
	if err != nil {
		return nil, fmt.Errorf("read backend catalog %s: %w", backend, err)
	}
	var catalog FieldCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse backend catalog %s: %w", backend, err)
	}
	return &catalog, nil
}

// SaveBackendCatalog writes catalog to backends/<backend>.json under
// root, creating the directory if needed.
func SaveBackendCatalog(root, backend string, catalog *FieldCatalog) error {
	path := paths.BackendConfigPath(root, backend)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create backends dir: %w", err)
	}
	catalog.Backend = backend
	data, err := jsonutil.MarshalIndentWithNewline(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backend catalog %s: %w", backend, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write backend catalog %s: %w", backend, err)
	}
	return nil
}
