package database

// Menu queries
const (
	ListMenuSQL = `
		SELECT id, name, description, price, category, image, available, updated_at
		FROM menu
		ORDER BY id ASC`

	UpsertMenuItemSQL = `
		INSERT INTO menu (id, name, description, price, category, image, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			image = EXCLUDED.image,
			available = EXCLUDED.available`

	SetMenuAvailabilitySQL = `
		UPDATE menu SET available = $1, updated_at = $2
		WHERE id = $3`
)

// Order queries
const (
	ListOrdersSQL = `
		SELECT id, order_number, items, total, payment_method, status, created_at, updated_at
		FROM orders
		ORDER BY created_at ASC NULLS LAST, order_number ASC`

	GetOrderSQL = `
		SELECT id, order_number, items, total, payment_method, status, created_at, updated_at
		FROM orders WHERE id = $1`

	InsertOrderSQL = `
		INSERT INTO orders (order_number, items, total, payment_method, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $1, updated_at = $2
		WHERE id = $3`

	DeleteOrdersSQL = `
		DELETE FROM orders WHERE id = ANY($1)`
)
