package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRequestsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_requests.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no requests migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE request_type AS ENUM",
		"CREATE TYPE request_status AS ENUM ('pending', 'approved', 'rejected')",
		"CREATE TABLE IF NOT EXISTS requests",
		"FOREIGN KEY (sender_id) REFERENCES users(id) ON DELETE CASCADE",
		"CHECK (duration_days IS NULL OR duration_days > 0)",
		"ON requests(product_id)",
		"WHERE status = 'pending' AND type IN ('NEW_PRODUCT', 'PRODUCT_APPROVAL')",
		"DROP TABLE IF EXISTS requests",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestProductsMigrationContainsModerationColumns(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_products.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no products migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE product_status AS ENUM ('pending', 'approved', 'rejected')",
		"status product_status NOT NULL DEFAULT 'pending'",
		"rejection_reason TEXT",
		"FOREIGN KEY (store_id) REFERENCES stores(id) ON DELETE CASCADE",
		"CHECK (price >= 0)",
		"DROP TABLE IF EXISTS products",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
