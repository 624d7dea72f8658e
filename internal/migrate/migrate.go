package migrate

import (
	"context"

	"github.com/trunghai04/webmoi-sub001/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto для gen_random_uuid()
	CreateChecks           bool // CHECK-constraint для целостности
	CreateIndexes          bool // индексы и UNIQUE
	CreateFKsViaSQL        bool // FK через SQL (поверх GORM-constraint)
	CreateUpdatedAtTrigger bool // триггер обновления updated_at
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
	}
}

type step struct {
	name string
	sql  string
}

func exec(db *gorm.DB, log *zap.Logger, steps []step) error {
	for _, s := range steps {
		if err := db.Exec(s.sql).Error; err != nil {
			log.Error("Шаг миграции завершился ошибкой", zap.String("step", s.name), zap.Error(err))
			return err
		}
	}
	return nil
}

var checkSteps = []step{
	{"chk_products_stock_non_negative", `
ALTER TABLE products DROP CONSTRAINT IF EXISTS chk_products_stock_non_negative;
ALTER TABLE products ADD CONSTRAINT chk_products_stock_non_negative CHECK (stock >= 0);`},
	{"chk_products_price_non_negative", `
ALTER TABLE products DROP CONSTRAINT IF EXISTS chk_products_price_non_negative;
ALTER TABLE products ADD CONSTRAINT chk_products_price_non_negative CHECK (price >= 0);`},
	{"chk_cart_items_quantity_gt_zero", `
ALTER TABLE cart_items DROP CONSTRAINT IF EXISTS chk_cart_items_quantity_gt_zero;
ALTER TABLE cart_items ADD CONSTRAINT chk_cart_items_quantity_gt_zero CHECK (quantity > 0);`},
	{"chk_orders_status_allowed", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_status_allowed;
ALTER TABLE orders ADD CONSTRAINT chk_orders_status_allowed
  CHECK (status IN ('processing','shipping','delivered','cancelled'));`},
	{"chk_orders_payment_method_allowed", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_payment_method_allowed;
ALTER TABLE orders ADD CONSTRAINT chk_orders_payment_method_allowed
  CHECK (payment_method IN ('cod','card','bank'));`},
	{"chk_orders_shipping_method_allowed", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_shipping_method_allowed;
ALTER TABLE orders ADD CONSTRAINT chk_orders_shipping_method_allowed
  CHECK (shipping_method IN ('standard','express'));`},
	{"chk_orders_amounts_non_negative", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_amounts_non_negative;
ALTER TABLE orders ADD CONSTRAINT chk_orders_amounts_non_negative
  CHECK (subtotal >= 0 AND shipping_fee >= 0 AND tax >= 0 AND total >= 0);`},
	{"chk_orders_total_sum", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_total_sum;
ALTER TABLE orders ADD CONSTRAINT chk_orders_total_sum
  CHECK (total = subtotal + shipping_fee + tax);`},
	{"chk_order_items_quantity_gt_zero", `
ALTER TABLE order_items DROP CONSTRAINT IF EXISTS chk_order_items_quantity_gt_zero;
ALTER TABLE order_items ADD CONSTRAINT chk_order_items_quantity_gt_zero CHECK (quantity > 0);`},
	{"chk_order_items_line_total", `
ALTER TABLE order_items DROP CONSTRAINT IF EXISTS chk_order_items_line_total;
ALTER TABLE order_items ADD CONSTRAINT chk_order_items_line_total
  CHECK (unit_price >= 0 AND line_total = unit_price * quantity);`},
}

var indexSteps = []step{
	{"ux_orders_order_number", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_order_number ON orders (order_number);`},
	{"ux_order_items_order_product", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_order_items_order_product ON order_items (order_id, product_id);`},
	{"ux_cart_items_user_product", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_cart_items_user_product ON cart_items (user_id, product_id);`},
	{"ix_orders_user_created", `
CREATE INDEX IF NOT EXISTS ix_orders_user_created ON orders (user_id, created_at DESC);`},
	{"ix_orders_status_created", `
CREATE INDEX IF NOT EXISTS ix_orders_status_created ON orders (status, created_at DESC);`},
}

var fkSteps = []step{
	{"fk_order_items_order", `
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS fk_order_items_order,
  ADD CONSTRAINT fk_order_items_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;`},
	{"fk_cart_items_product", `
ALTER TABLE cart_items
  DROP CONSTRAINT IF EXISTS fk_cart_items_product,
  ADD CONSTRAINT fk_cart_items_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE;`},
}

const updatedAtTrigger = `
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_products_updated ON products;
CREATE TRIGGER trg_products_updated BEFORE UPDATE ON products
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_cart_items_updated ON cart_items;
CREATE TRIGGER trg_cart_items_updated BEFORE UPDATE ON cart_items
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_orders_updated ON orders;
CREATE TRIGGER trg_orders_updated BEFORE UPDATE ON orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`

func MigrateStoreDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы данных магазина")
	db = db.WithContext(ctx)

	if opt.CreateExtensions {
		log.Info("Создание расширений PostgreSQL")
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("Не удалось включить расширение pgcrypto", zap.Error(err))
			return err
		}
	}

	log.Info("Создание таблиц products, cart_items, orders, order_items")
	if err := db.AutoMigrate(&models.Product{}, &models.CartItem{}, &models.Order{}, &models.OrderItem{}); err != nil {
		log.Error("Не удалось создать таблицы", zap.Error(err))
		return err
	}

	if opt.CreateUpdatedAtTrigger {
		log.Info("Создание триггеров updated_at")
		if err := db.Exec(updatedAtTrigger).Error; err != nil {
			log.Error("Не удалось создать триггеры updated_at", zap.Error(err))
			return err
		}
	}

	if opt.CreateChecks {
		log.Info("Создание CHECK-ограничений")
		if err := exec(db, log, checkSteps); err != nil {
			return err
		}
	}

	if opt.CreateIndexes {
		log.Info("Создание индексов")
		if err := exec(db, log, indexSteps); err != nil {
			return err
		}
	}

	if opt.CreateFKsViaSQL {
		log.Info("Создание внешних ключей")
		if err := exec(db, log, fkSteps); err != nil {
			return err
		}
	}

	log.Info("Миграция базы данных магазина успешно завершена")
	return nil
}
