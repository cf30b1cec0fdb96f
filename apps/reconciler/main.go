package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/globaledutech/payments/internal/clock"
	"github.com/globaledutech/payments/internal/config"
	"github.com/globaledutech/payments/internal/gateway"
	"github.com/globaledutech/payments/internal/logger"
	"github.com/globaledutech/payments/internal/migration"
	"github.com/globaledutech/payments/internal/payment"
	"github.com/globaledutech/payments/internal/reconciler"
	"github.com/globaledutech/payments/pkg/db"
	"go.uber.org/fx"
)

// Headless reconciler: runs the polling loop without the HTTP API.
func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		gateway.Module,
		migration.Module,

		payment.Module,
		reconciler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
