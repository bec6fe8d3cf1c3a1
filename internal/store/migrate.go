package store

import "fmt"

// CurrentSchemaVersion is the schema version every Save() writes. Loaded
// documents carrying an older version are migrated up to it before being
// unmarshaled into a Session.
const CurrentSchemaVersion = 1

// migrator transforms a document from one schema version to the next. Pure
// function over the decoded JSON, not the typed Session — migrators must
// keep working even after Session's Go type changes shape.
type migrator func(map[string]any) (map[string]any, error)

// migrators is keyed by source version: migrators[v] migrates a document
// from v to v+1. Empty today — CurrentSchemaVersion is the only version
// that has ever been written to disk — but applyMigrations already walks
// the chain so adding entry 1 here is enough to carry version-2 documents.
var migrators = map[int]migrator{}

// applyMigrations runs the migrator chain from a document's stored version
// up to CurrentSchemaVersion, in order. Each migrator must be idempotent
// and leave a document whose declared version is exactly one higher.
func applyMigrations(doc map[string]any, from int) (map[string]any, error) {
	version := from
	for version < CurrentSchemaVersion {
		m, ok := migrators[version]
		if !ok {
			return nil, fmt.Errorf("no migrator registered from schema version %d", version)
		}
		migrated, err := m(doc)
		if err != nil {
			return nil, fmt.Errorf("migrating from schema version %d: %w", version, err)
		}
		doc = migrated
		version++
	}
	doc["schema_version"] = CurrentSchemaVersion
	return doc, nil
}
