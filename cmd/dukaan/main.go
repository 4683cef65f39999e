package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dukaan/internal/assistant"
	"github.com/smallbiznis/dukaan/internal/clock"
	"github.com/smallbiznis/dukaan/internal/config"
	"github.com/smallbiznis/dukaan/internal/customer"
	"github.com/smallbiznis/dukaan/internal/inventory"
	"github.com/smallbiznis/dukaan/internal/invoice"
	"github.com/smallbiznis/dukaan/internal/logger"
	"github.com/smallbiznis/dukaan/internal/migration"
	"github.com/smallbiznis/dukaan/internal/notification"
	"github.com/smallbiznis/dukaan/internal/numbering"
	"github.com/smallbiznis/dukaan/internal/observability"
	"github.com/smallbiznis/dukaan/internal/order"
	"github.com/smallbiznis/dukaan/internal/scheduler"
	"github.com/smallbiznis/dukaan/internal/server"
	"github.com/smallbiznis/dukaan/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		notification.Module,

		// Functional domains
		numbering.Module,
		customer.Module,
		inventory.Module,
		order.Module,
		invoice.Module,
		assistant.Module,
		scheduler.Module,

		// HTTP surface
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
