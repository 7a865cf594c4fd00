package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dealdesk/internal/clock"
	"github.com/smallbiznis/dealdesk/internal/config"
	"github.com/smallbiznis/dealdesk/internal/lead"
	"github.com/smallbiznis/dealdesk/internal/lock"
	"github.com/smallbiznis/dealdesk/internal/migration"
	"github.com/smallbiznis/dealdesk/internal/observability"
	"github.com/smallbiznis/dealdesk/internal/product"
	"github.com/smallbiznis/dealdesk/internal/proposal"
	"github.com/smallbiznis/dealdesk/internal/server"
	"github.com/smallbiznis/dealdesk/internal/tax"
	"github.com/smallbiznis/dealdesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		lock.Module,

		// Domains
		lead.Module,
		product.Module,
		tax.Module,
		proposal.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
