package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed demo catalog if the DB is empty (idempotent; safe on every start)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  sku TEXT,
  price NUMERIC NOT NULL CHECK (price >= 0),
  currency TEXT NOT NULL DEFAULT 'EUR',
  in_stock INTEGER,              -- product-level fallback; NULL = not stated
  images_json TEXT,
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(LOWER(name));

-- Variants (size / scent-profile configurations with their own stock)
CREATE TABLE IF NOT EXISTS variants(
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  type TEXT NOT NULL CHECK (type IN ('size','scent-profile')),
  value TEXT NOT NULL,
  sku TEXT NOT NULL,
  price NUMERIC,
  currency TEXT,
  stock_quantity INTEGER,        -- NULL = unknown, treated as out of stock
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_variants_product ON variants(product_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_variants_sku ON variants(sku);

-- Wishlists (session-scoped)
CREATE TABLE IF NOT EXISTS wishlists(
  id TEXT PRIMARY KEY,
  session_id TEXT UNIQUE NOT NULL,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS wishlist_items(
  wishlist_id TEXT NOT NULL REFERENCES wishlists(id) ON DELETE CASCADE,
  product_id  TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  created_at  TEXT,
  PRIMARY KEY (wishlist_id, product_id)
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo products/variants")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO products(id,name,description,sku,price,currency,in_stock,images_json) VALUES
	  ('amber-noir','Amber Noir','Amber and oud scented candle','CAN-AMB',34.00,'EUR',NULL,'["products/amber-noir/main.jpg"]'),
	  ('fiori-di-sicilia','Fiori di Sicilia','Citrus blossom scented candle','CAN-FDS',38.00,'EUR',NULL,'["products/fiori-di-sicilia/main.jpg"]'),
	  ('velluto-spray','Velluto Room Spray','Velvet musk room spray','SPR-VEL',22.00,'EUR',1,'["products/velluto-spray/main.jpg"]')`)

	tx.MustExec(`INSERT INTO variants(id,product_id,type,value,sku,price,currency,stock_quantity) VALUES
	  ('amber-noir-180','amber-noir','size','180g','CAN-AMB-180',NULL,NULL,12),
	  ('amber-noir-320','amber-noir','size','320g','CAN-AMB-320',44.00,'EUR',3),
	  ('fiori-citrus','fiori-di-sicilia','scent-profile','Citrus','CAN-FDS-CIT',NULL,NULL,8),
	  ('fiori-floral','fiori-di-sicilia','scent-profile','Floral','CAN-FDS-FLO',NULL,NULL,0)`)

	return tx.Commit()
}
