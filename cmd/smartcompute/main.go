package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/smartcompute/monitoring-system/internal/api"
	"github.com/smartcompute/monitoring-system/internal/backup"
	"github.com/smartcompute/monitoring-system/internal/core/ports"
	"github.com/smartcompute/monitoring-system/internal/core/service"
	"github.com/smartcompute/monitoring-system/internal/infrastructure/config"
	mongodb "github.com/smartcompute/monitoring-system/internal/infrastructure/db/mongo"
	redisdb "github.com/smartcompute/monitoring-system/internal/infrastructure/db/redis"
	"github.com/smartcompute/monitoring-system/internal/infrastructure/queue"
	mcpserver "github.com/smartcompute/monitoring-system/internal/mcp"
	"github.com/smartcompute/monitoring-system/pkg/logger"
)

// scalingInterval is how often the orchestrator re-evaluates worker pool load.
const scalingInterval = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:   "smartcompute",
	Short: "SmartCompute security monitoring system",
	Long: `SmartCompute ingests security events from sensors, folds them into
incidents through a deterministic triage pipeline, and exposes the incident
store over HTTP and the Model Context Protocol.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the event triage pipeline",
	RunE:  runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the Model Context Protocol interface on stdio",
	RunE:  runMCP,
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Backup and restore the operational data",
}

var backupRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Produce an encrypted backup and replicate it to every region",
	RunE:  runBackup,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [backup-id]",
	Short: "Verify and restore a backup into the operational store",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

func main() {
	backupCmd.AddCommand(backupRunCmd, backupRestoreCmd)
	rootCmd.AddCommand(serveCmd, mcpCmd, backupCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads configuration, initialises logging, and connects the stores.
func bootstrap(ctx context.Context) (*config.Config, zerolog.Logger, *appDeps, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	_, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, log, nil, err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		return nil, log, nil, err
	}

	bizCtx := cfg.Triage.BusinessContext()

	incidentRepo := mongodb.NewIncidentRepository(db)
	eventRepo := mongodb.NewEventRepository(db)
	catalog := mongodb.NewBackupCatalog(db)
	dedup := redisdb.NewDedupChecker(rdb)

	triage := service.NewTriageService(incidentRepo, eventRepo, dedup, bizCtx, log)
	incidents := service.NewIncidentService(incidentRepo, log)
	orch := service.NewOrchestrator(service.OrchestratorConfig{
		AutoContainScore: cfg.Triage.AutoContainScore,
		EscalateScore:    cfg.Triage.EscalateScore,
	}, bizCtx, log)

	return cfg, log, &appDeps{
		db:           db,
		rdb:          rdb,
		incidentRepo: incidentRepo,
		catalog:      catalog,
		triage:       triage,
		incidents:    incidents,
		orch:         orch,
	}, nil
}

type appDeps struct {
	db           *mongo.Database
	rdb          *redis.Client
	incidentRepo *mongodb.IncidentRepository
	catalog      *mongodb.BackupCatalog
	triage       ports.TriageService
	incidents    *service.IncidentService
	orch         *service.Orchestrator
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, deps, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	if err := deps.incidentRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	dispatcher := queue.NewDispatcher(cfg.Triage.Workers, deps.triage, log)
	dispatcher.Start(ctx)

	// Periodic worker-pool load evaluation. Decisions are advisory; the pool
	// size is fixed per process, so scale actions surface through logs and
	// metrics for the operator.
	go func() {
		ticker := time.NewTicker(scalingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				decision := deps.orch.Scaling(dispatcher.Depths())
				log.Debug().Str("action", string(decision.Action)).Str("reason", decision.Reason).Msg("scaling evaluation")
			}
		}
	}()

	e := api.NewRouter(cfg, api.Deps{
		DB:           deps.db,
		Redis:        deps.rdb,
		Dispatcher:   dispatcher,
		IncidentRepo: deps.incidentRepo,
		Orchestrator: deps.orch,
		Catalog:      deps.catalog,
		Log:          log,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("http server starting")
	if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, deps, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	server := mcpserver.NewServer(mcpserver.Deps{
		BizCtx:       cfg.Triage.BusinessContext(),
		Orchestrator: deps.orch,
		Triage:       deps.triage,
		Incidents:    deps.incidents,
		Catalog:      deps.catalog,
		Log:          log,
	})
	return server.Run(ctx)
}

func runBackup(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, deps, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg, deps, log)
	if err != nil {
		return err
	}

	rec, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("backup %s finished: status=%s size=%d sha256=%s\n",
		rec.BackupID, rec.Status, rec.SizeBytes, rec.SHA256)
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, deps, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg, deps, log)
	if err != nil {
		return err
	}

	if err := engine.Restore(ctx, args[0]); err != nil {
		return err
	}

	fmt.Printf("restore of %s complete\n", args[0])
	return nil
}

func newEngine(cfg *config.Config, deps *appDeps, log zerolog.Logger) (*backup.Engine, error) {
	exporter := mongodb.NewCollectionExporter(deps.db)
	return backup.NewEngine(backup.Config{
		Dir:        cfg.Backup.Dir,
		Regions:    cfg.Backup.Regions,
		KeyHex:     cfg.Backup.KeyHex,
		MaxRetries: cfg.Backup.MaxRetries,
	}, exporter, exporter, deps.catalog, log)
}
