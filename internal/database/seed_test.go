package database

import (
	"testing"
)

func TestSeedIdempotent(t *testing.T) {
	db, err := Connect(testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed only writes into an empty database. Other test packages may
	// share it, so it is not cleared first.
	if err := Seed(db); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var tmplCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM templates").Scan(&tmplCount); err != nil {
		t.Fatalf("count templates: %v", err)
	}
	if tmplCount < 1 {
		t.Errorf("expected at least 1 template, got %d", tmplCount)
	}

	var demoBlocks int
	err = db.QueryRow(`
		SELECT COUNT(*) FROM template_blocks b
		JOIN templates t ON t.id = b.template_id
		WHERE t.display_name = $1
	`, DemoTemplateName).Scan(&demoBlocks)
	if err != nil {
		t.Fatalf("count demo blocks: %v", err)
	}
	if demoBlocks != 0 && demoBlocks != 3 {
		t.Errorf("demo template has %d blocks, want 3", demoBlocks)
	}
}
