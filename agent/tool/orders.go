package tool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
	contractx "github.com/storelane/shopassist/agent/contract"
)

const (
	orderStatusMissingArgs = "Please provide either a customer name or an order ID."
	orderStatusNotFound    = "No order found matching the provided information."
)

// Order is one row of the external orders table. The engine only ever reads
// it; seeding is a separate step.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	OrderID      int64  `bun:"order_id,pk,autoincrement" json:"order_id"`
	CustomerName string `bun:"customer_name" json:"customer_name"`
	ProductName  string `bun:"product_name" json:"product_name"`
	Status       string `bun:"status" json:"status"`
}

func (o Order) Line() string {
	return fmt.Sprintf("Order ID: %d, Customer: %s, Product: %s, Status: %s",
		o.OrderID, o.CustomerName, o.ProductName, o.Status)
}

type OrdersConfig struct {
	DSN string `envconfig:"DSN" split_words:"true" default:"file:orders.db?cache=shared"`
}

// OrderLookup is the read-only order store boundary.
type OrderLookup interface {
	ByID(ctx context.Context, orderID int64) ([]Order, error)
	ByCustomer(ctx context.Context, customerName string) ([]Order, error)
}

// OrderStore reads the orders table through bun. Postgres DSNs get the
// pgdriver backend; everything else is treated as a SQLite file/DSN.
type OrderStore struct {
	db *bun.DB
}

var _ OrderLookup = (*OrderStore)(nil)

func OpenOrderDB(dsn string) (*bun.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("orders dsn is required")
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite order db: %w", err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func NewOrderStore(db *bun.DB) (*OrderStore, error) {
	if db == nil {
		return nil, errors.New("order db is required")
	}
	return &OrderStore{db: db}, nil
}

func (s *OrderStore) ByID(ctx context.Context, orderID int64) ([]Order, error) {
	var orders []Order
	if err := s.db.NewSelect().
		Model(&orders).
		Where("order_id = ?", orderID).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select order by id: %w", err)
	}
	return orders, nil
}

func (s *OrderStore) ByCustomer(ctx context.Context, customerName string) ([]Order, error) {
	var orders []Order
	if err := s.db.NewSelect().
		Model(&orders).
		Where("customer_name = ?", customerName).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select orders by customer: %w", err)
	}
	return orders, nil
}

// lookupOrderStatus resolves the order-status capability: order id takes
// precedence over customer name; neither supplied yields the fixed prompt;
// no match yields the fixed not-found message. DB failures become
// descriptive error-variant results.
func lookupOrderStatus(ctx context.Context, store OrderLookup, args map[string]any) contractx.LookupResult {
	orderID, hasID := intArg(args, "order_id")
	customerName, hasName := stringArg(args, "customer_name")

	if !hasID && !hasName {
		return contractx.LookupResult{Tool: ToolOrderStatus, Error: orderStatusMissingArgs}
	}

	var (
		orders []Order
		err    error
	)
	if hasID {
		orders, err = store.ByID(ctx, orderID)
	} else {
		orders, err = store.ByCustomer(ctx, customerName)
	}
	if err != nil {
		return contractx.LookupResult{
			Tool:  ToolOrderStatus,
			Error: "The order database is currently unavailable.",
		}
	}

	if len(orders) == 0 {
		return contractx.LookupResult{Tool: ToolOrderStatus, Error: orderStatusNotFound}
	}

	lines := make([]string, 0, len(orders))
	for _, o := range orders {
		lines = append(lines, o.Line())
	}
	return contractx.LookupResult{
		Tool:    ToolOrderStatus,
		Payload: strings.Join(lines, "\n"),
		Data:    orders,
	}
}

// Model-produced arguments arrive as JSON values: numbers decode to
// float64, and some models quote integers.
func intArg(args map[string]any, key string) (int64, bool) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func stringArg(args map[string]any, key string) (string, bool) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}
