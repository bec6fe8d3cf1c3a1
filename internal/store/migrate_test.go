package store

import "testing"

func TestApplyMigrations_AlreadyCurrent(t *testing.T) {
	t.Parallel()

	doc := map[string]any{"name": "feat-x", "schema_version": float64(CurrentSchemaVersion)}
	got, err := applyMigrations(doc, CurrentSchemaVersion)
	if err != nil {
		t.Fatalf("applyMigrations() error = %v", err)
	}
	if got["schema_version"] != CurrentSchemaVersion {
		t.Errorf("schema_version = %v, want %d", got["schema_version"], CurrentSchemaVersion)
	}
	if got["name"] != "feat-x" {
		t.Errorf("name = %v, want feat-x (migration must not touch unrelated fields)", got["name"])
	}
}

func TestApplyMigrations_UnknownOlderVersion(t *testing.T) {
	t.Parallel()

	doc := map[string]any{"name": "feat-x", "schema_version": float64(0)}
	_, err := applyMigrations(doc, 0)
	if CurrentSchemaVersion == 0 {
		t.Skip("no migration gap to exercise")
	}
	if err == nil {
		t.Fatal("applyMigrations() error = nil, want error for a version with no registered migrator")
	}
}

func TestApplyMigrations_RegisteredMigratorRuns(t *testing.T) {
	// Does not run t.Parallel(): temporarily mutates the package-level
	// migrators map.
	original := migrators
	defer func() { migrators = original }()

	migrators = map[int]migrator{
		0: func(doc map[string]any) (map[string]any, error) {
			doc["migrated_from_zero"] = true
			return doc, nil
		},
	}

	doc := map[string]any{"schema_version": float64(0)}
	got, err := applyMigrations(doc, 0)
	if err != nil {
		t.Fatalf("applyMigrations() error = %v", err)
	}
	if got["migrated_from_zero"] != true {
		t.Error("registered migrator did not run")
	}
	if got["schema_version"] != CurrentSchemaVersion {
		t.Errorf("schema_version = %v, want %d", got["schema_version"], CurrentSchemaVersion)
	}
}
