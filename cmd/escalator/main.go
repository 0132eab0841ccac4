package main

import (
	"context"
	"log"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/dhifafaz/tactical-monitor/internal/adapters/postgres"
	"github.com/dhifafaz/tactical-monitor/internal/pkg/config"
	"github.com/dhifafaz/tactical-monitor/internal/pkg/logging"
	"github.com/dhifafaz/tactical-monitor/internal/workflows"
)

func main() {
	cfg, err := config.Load("tacmon-escalator")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("info", "json")

	db, err := postgres.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.EscalationWorkflow)
	w.RegisterActivity(&workflows.EscalationActivities{
		Alerts:    postgres.NewAlertRepo(db),
		Offenders: postgres.NewOffenderRepo(db),
		// Notifier stays nil until a pager integration lands; pages are
		// logged instead.
	})

	log.Println("escalator worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
