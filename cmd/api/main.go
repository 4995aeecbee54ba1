package main

import (
	"github.com/IAmRubenNavarro/doula-life/internal/clock"
	"github.com/IAmRubenNavarro/doula-life/internal/migration"
	"github.com/IAmRubenNavarro/doula-life/internal/observability"
	"github.com/IAmRubenNavarro/doula-life/internal/server"
	"github.com/IAmRubenNavarro/doula-life/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
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
