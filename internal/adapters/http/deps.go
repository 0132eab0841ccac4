package http

import (
	natsadapter "github.com/dhifafaz/tactical-monitor/internal/adapters/nats"
	"github.com/dhifafaz/tactical-monitor/internal/adapters/postgres"
	"github.com/dhifafaz/tactical-monitor/internal/adapters/valkey"
	"github.com/dhifafaz/tactical-monitor/internal/core/usecases"
	"github.com/dhifafaz/tactical-monitor/internal/tracking"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Offenders *usecases.OffenderService
	Devices   *usecases.DeviceService
	POIs      *usecases.POIService
	Alerts    *usecases.AlertService
	Stats     *usecases.StatsService
	Registry  *tracking.Registry
	Listener  *tracking.Listener
	NATS      *natsadapter.Publisher
	DB        *postgres.DB
	Cache     *valkey.Cache
}
