// Command seedorders creates the orders table and loads the sample rows the
// chat assistant answers order-tracking questions from. Safe to re-run: the
// table is recreated from scratch.
package main

import (
	"context"

	"github.com/rs/zerolog/log"
	toolx "github.com/storelane/shopassist/agent/tool"
	configx "github.com/storelane/shopassist/pkg/config"
	_ "github.com/storelane/shopassist/pkg/logger/autoload"
)

var sampleOrders = []toolx.Order{
	{CustomerName: "Ali", ProductName: "Nike Air Force 1 Mid '07", Status: "Shipped"},
	{CustomerName: "Sara", ProductName: "Adidas Ultraboost 22", Status: "Processing"},
	{CustomerName: "John", ProductName: "Puma Running Shoes", Status: "Delivered"},
	{CustomerName: "Emma", ProductName: "Reebok Classic Leather", Status: "Cancelled"},
}

func main() {
	ctx := context.Background()

	cfg := configx.MustNew[toolx.OrdersConfig]("ORDERS")
	db, err := toolx.OpenOrderDB(cfg.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open order db")
	}
	defer db.Close()

	if _, err := db.NewDropTable().
		Model((*toolx.Order)(nil)).
		IfExists().
		Exec(ctx); err != nil {
		log.Fatal().Err(err).Msg("drop orders table")
	}

	if _, err := db.NewCreateTable().
		Model((*toolx.Order)(nil)).
		Exec(ctx); err != nil {
		log.Fatal().Err(err).Msg("create orders table")
	}

	orders := sampleOrders
	if _, err := db.NewInsert().
		Model(&orders).
		Exec(ctx); err != nil {
		log.Fatal().Err(err).Msg("insert sample orders")
	}

	log.Info().
		Str("dsn", cfg.DSN).
		Int("orders", len(orders)).
		Msg("orders table seeded")
}
