package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCatalogMigration(t *testing.T) {
	assertContains(t, readMigration(t, "create_catalog_tables"), []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CHECK (stock >= 0)",
		"REFERENCES categories(id) ON DELETE RESTRICT",
		"CREATE TABLE IF NOT EXISTS product_tags",
		"CREATE TABLE IF NOT EXISTS product_images",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_product_images_product_position",
	})
}

func TestPricingMigration(t *testing.T) {
	assertContains(t, readMigration(t, "create_pricing_tables"), []string{
		"num_nonnulls(product_id, category_id, tag_id) = 1",
		"product_id  uuid REFERENCES products(id) ON DELETE CASCADE",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_coupons_code",
		"min_order_amount numeric(12,2)",
	})
}

func TestOrdersMigration(t *testing.T) {
	assertContains(t, readMigration(t, "create_orders_tables"), []string{
		"CREATE TYPE order_status AS ENUM ('pending', 'paid', 'processing', 'shipped', 'delivered', 'cancelled')",
		"coupon_id          uuid REFERENCES coupons(id) ON DELETE SET NULL",
		"product_id        uuid REFERENCES products(id) ON DELETE SET NULL",
		"order_id          uuid NOT NULL REFERENCES orders(id) ON DELETE CASCADE",
		"total_amount       numeric(14,4) NOT NULL",
		"currency           text NOT NULL DEFAULT 'EGP'",
	})
}

func TestUsersMigration(t *testing.T) {
	assertContains(t, readMigration(t, "create_users_table"), []string{
		"CREATE TYPE user_role AS ENUM ('admin', 'operator')",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_name",
	})
}
