package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const migrationsDir = "migrations"

func TestMigrationsDirValidates(t *testing.T) {
	if err := ValidateDir(migrationsDir); err != nil {
		t.Fatalf("migration validation failed: %v", err)
	}
}

func TestInitMigrationCreatesCheckoutTables(t *testing.T) {
	sql := readMigration(t, "20260610120000_init_checkout_schema.sql")

	for _, table := range []string{
		"profiles",
		"shipping_methods",
		"payment_gateways",
		"orders",
		"order_items",
		"payment_transactions",
	} {
		if !strings.Contains(sql, "CREATE TABLE "+table) {
			t.Fatalf("init migration missing table %q", table)
		}
		if !strings.Contains(sql, "DROP TABLE IF EXISTS "+table) {
			t.Fatalf("init migration missing down for table %q", table)
		}
	}

	if !strings.Contains(sql, "uq_orders_order_number") {
		t.Fatal("orders must enforce unique order numbers")
	}
	if !strings.Contains(sql, "idx_orders_checkout_batch") {
		t.Fatal("orders must be queryable by checkout batch")
	}
	if !strings.Contains(sql, "numeric(12,2)") {
		t.Fatal("money columns must be numeric(12,2)")
	}
}

func TestSeedMigrationCoversEveryGateway(t *testing.T) {
	sql := readMigration(t, "20260612143000_seed_shipping_and_gateways.sql")

	for _, gateway := range []string{"paynow", "iveri", "paypal", "stripe", "cash", "manual"} {
		if !strings.Contains(sql, "'"+gateway+"'") {
			t.Fatalf("seed migration missing gateway %q", gateway)
		}
	}
	if strings.Contains(sql, "Store Pickup") {
		t.Fatal("pickup is synthetic and must not be seeded as a stored method")
	}
}

func TestCreateSQLMigrationTemplate(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Loyalty Points!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_loyalty_points.sql") {
		t.Fatalf("unexpected filename %q", path)
	}

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}

func readMigration(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(migrationsDir, name))
	if err != nil {
		t.Fatalf("read migration %s: %v", name, err)
	}
	return string(b)
}
