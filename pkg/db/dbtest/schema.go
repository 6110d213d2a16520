package dbtest

// Sqlite renditions of the goose migrations. Enum columns become text and
// the multi-column discount CHECK is left to the service layer.

const CatalogDDL = `
CREATE TABLE categories (
  id text PRIMARY KEY,
  name text NOT NULL,
  description text NOT NULL DEFAULT '',
  image_url text,
  is_active boolean NOT NULL DEFAULT 1,
  created_at datetime,
  updated_at datetime
);
CREATE TABLE tags (
  id text PRIMARY KEY,
  name text NOT NULL,
  description text NOT NULL DEFAULT '',
  is_active boolean NOT NULL DEFAULT 1,
  created_at datetime,
  updated_at datetime
);
CREATE TABLE products (
  id text PRIMARY KEY,
  name text NOT NULL,
  description text NOT NULL DEFAULT '',
  price numeric NOT NULL,
  previous_price numeric,
  stock integer NOT NULL CHECK (stock >= 0),
  image_url text NOT NULL DEFAULT '',
  category_id text REFERENCES categories(id) ON DELETE RESTRICT,
  is_active boolean NOT NULL DEFAULT 1,
  created_at datetime,
  updated_at datetime
);
CREATE TABLE product_tags (
  product_id text NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  tag_id text NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
  PRIMARY KEY (product_id, tag_id)
);
CREATE TABLE product_images (
  id text PRIMARY KEY,
  product_id text NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  url text NOT NULL,
  position integer NOT NULL DEFAULT 0,
  created_at datetime
);`

const PricingDDL = `
CREATE TABLE discounts (
  id text PRIMARY KEY,
  percentage numeric NOT NULL,
  is_active boolean NOT NULL DEFAULT 1,
  start_date datetime NOT NULL,
  end_date datetime NOT NULL,
  product_id text REFERENCES products(id) ON DELETE CASCADE,
  category_id text REFERENCES categories(id) ON DELETE CASCADE,
  tag_id text REFERENCES tags(id) ON DELETE CASCADE,
  created_at datetime,
  updated_at datetime
);
CREATE TABLE coupons (
  id text PRIMARY KEY,
  code text NOT NULL UNIQUE,
  description text NOT NULL DEFAULT '',
  percentage numeric NOT NULL,
  min_order_amount numeric,
  is_active boolean NOT NULL DEFAULT 1,
  start_date datetime NOT NULL,
  end_date datetime NOT NULL,
  created_at datetime,
  updated_at datetime
);`

const OrdersDDL = `
CREATE TABLE orders (
  id text PRIMARY KEY,
  first_name text NOT NULL,
  last_name text NOT NULL,
  address text NOT NULL,
  mobile_number text NOT NULL,
  another_mobile text,
  another_address text,
  customer_email text,
  total_amount numeric NOT NULL,
  currency text NOT NULL,
  status text NOT NULL,
  coupon_id text REFERENCES coupons(id) ON DELETE SET NULL,
  coupon_code text,
  coupon_percentage numeric,
  coupon_description text,
  created_at datetime,
  updated_at datetime
);
CREATE TABLE order_items (
  id text PRIMARY KEY,
  order_id text NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id text REFERENCES products(id) ON DELETE SET NULL,
  quantity integer NOT NULL,
  price_at_purchase numeric NOT NULL,
  product_name text NOT NULL,
  product_image_url text NOT NULL DEFAULT '',
  product_category text,
  discount_applied numeric NOT NULL DEFAULT 0,
  discount_id text,
  created_at datetime
);`

const UsersDDL = `
CREATE TABLE users (
  id text PRIMARY KEY,
  name text NOT NULL UNIQUE,
  email text NOT NULL UNIQUE,
  password_hash text NOT NULL,
  role text NOT NULL,
  created_at datetime,
  updated_at datetime
);`

// FullSchema applies every table in dependency order.
var FullSchema = []string{CatalogDDL, PricingDDL, OrdersDDL, UsersDDL}
