package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const orderColumns = `
id::text, owner_id::text, subtotal, shipping_fee, total, status,
shipping_address, recipient_name, recipient_mobile, payment_method,
COALESCE(idempotency_key, ''), created_at
`

func (r *postgresRepo) Create(ctx context.Context, o *domain.Order, clearCartOwnerID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var key *string
	if o.IdempotencyKey != "" {
		key = &o.IdempotencyKey
	}
	err = tx.QueryRow(ctx, `
INSERT INTO orders (id, owner_id, subtotal, shipping_fee, total, status,
                    shipping_address, recipient_name, recipient_mobile,
                    payment_method, idempotency_key)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING created_at
`, o.ID, o.OwnerID, o.Subtotal, o.ShippingFee, o.Total, o.Status,
		o.ShippingAddress, o.Recipient.Name, o.Recipient.Mobile,
		o.PaymentMethod, key).Scan(&o.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "idempotency") {
			return ErrDuplicateIdempotencyKey
		}
		return err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_items (order_id, product_id, quantity, price)
VALUES ($1, $2, $3, $4)
`, o.ID, it.ProductID, it.Quantity, it.Price); err != nil {
			return err
		}
	}

	if clearCartOwnerID != "" {
		if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE owner_id = $1`, clearCartOwnerID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.fetchOne(ctx, fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns), id)
}

func (r *postgresRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	return r.fetchOne(ctx, fmt.Sprintf(`SELECT %s FROM orders WHERE idempotency_key = $1`, orderColumns), key)
}

func (r *postgresRepo) fetchOne(ctx context.Context, q string, arg any) (*domain.Order, error) {
	var o domain.Order
	if err := scanOrder(r.pool.QueryRow(ctx, q, arg), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadItems(ctx, []*domain.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	q := fmt.Sprintf(`
SELECT %s FROM orders
WHERE owner_id = $1
ORDER BY created_at DESC
`, orderColumns)
	return r.fetchMany(ctx, q, ownerID)
}

func (r *postgresRepo) List(ctx context.Context, f Filter, p Page) ([]domain.Order, error) {
	where, args := buildWhere(f)

	col := p.SortCol
	if col == "" {
		col = "created_at"
	}
	dir := "ASC"
	if p.SortDesc {
		dir = "DESC"
	}

	limit := p.Limit
	if limit <= 0 {
		limit = 10
	}
	page := p.Number
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	q := fmt.Sprintf(`
SELECT %s FROM orders
%s
ORDER BY %s %s
LIMIT $%d OFFSET $%d
`, orderColumns, where, col, dir, len(args)-1, len(args))

	return r.fetchMany(ctx, q, args...)
}

func (r *postgresRepo) Count(ctx context.Context, f Filter) (int64, error) {
	where, args := buildWhere(f)
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Aggregate mirrors the list predicate but folds everything in one scan, so
// counts and revenue come from a single consistent snapshot.
func (r *postgresRepo) Aggregate(ctx context.Context, f Filter) (*Stats, error) {
	where, args := buildWhere(f)
	q := `
SELECT COUNT(*),
       COALESCE(SUM(total) FILTER (WHERE status = 'completed'), 0),
       COUNT(*) FILTER (WHERE status = 'pending'),
       COUNT(*) FILTER (WHERE status = 'shipping'),
       COUNT(*) FILTER (WHERE status = 'completed'),
       COUNT(*) FILTER (WHERE status = 'cancelled')
FROM orders ` + where

	var s Stats
	if err := r.pool.QueryRow(ctx, q, args...).Scan(
		&s.TotalOrders,
		&s.TotalRevenue,
		&s.Pending,
		&s.Shipping,
		&s.Completed,
		&s.Cancelled,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) error {
	const q = `
UPDATE orders
SET status = $3
WHERE id = $1 AND status = $2
`
	cmd, err := r.pool.Exec(ctx, q, id, from, to)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInvalidStatusTransition
	}
	return nil
}

func buildWhere(f Filter) (string, []any) {
	var clauses []string
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.OwnerIDs != nil {
		args = append(args, f.OwnerIDs)
		clauses = append(clauses, fmt.Sprintf("owner_id::text = ANY($%d)", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func (r *postgresRepo) fetchMany(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*domain.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.loadItems(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *postgresRepo) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err := r.pool.Query(ctx, `
SELECT order_id::text, product_id::text, quantity, price
FROM order_items
WHERE order_id::text = ANY($1)
`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return err
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

func scanOrder(row pgx.Row, o *domain.Order) error {
	return row.Scan(
		&o.ID,
		&o.OwnerID,
		&o.Subtotal,
		&o.ShippingFee,
		&o.Total,
		&o.Status,
		&o.ShippingAddress,
		&o.Recipient.Name,
		&o.Recipient.Mobile,
		&o.PaymentMethod,
		&o.IdempotencyKey,
		&o.CreatedAt,
	)
}
