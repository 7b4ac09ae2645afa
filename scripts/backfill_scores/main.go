// Command backfill_scores rescores stored waitlist applications against the
// current scoring configuration. Run it after deploying a configuration
// change when the API's background rescore queue is not available, for
// example during a maintenance window.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/teebox-golf/teebox-api/internal/models"
	"github.com/teebox-golf/teebox-api/internal/repository"
	"github.com/teebox-golf/teebox-api/internal/service"
	"github.com/teebox-golf/teebox-api/pkg/config"
	"github.com/teebox-golf/teebox-api/pkg/database"
	"github.com/teebox-golf/teebox-api/pkg/logger"
)

func main() {
	var (
		dryRun  bool
		timeout time.Duration
	)
	flag.BoolVar(&dryRun, "dry-run", false, "score and report without writing")
	flag.DurationVar(&timeout, "timeout", 10*time.Minute, "overall run deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	appRepo := repository.NewApplicationRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)

	var configSvc *service.ScoringConfigService
	if cfg.Scoring.URL != "" {
		source := repository.NewScoringConfigSource(cfg.Scoring.URL, cfg.Scoring.FetchTimeout)
		configSvc = service.NewScoringConfigService(source, cfg.Scoring.CacheTTL, logr)
	} else {
		configSvc = service.NewScoringConfigService(nil, cfg.Scoring.CacheTTL, logr)
	}
	scoringSvc := service.NewScoringService(configSvc, logr)

	activeCfg, activeSource := configSvc.Current(ctx)
	fmt.Printf("scoring config: version=%s source=%s threshold=%d\n",
		activeCfg.Version, activeSource, activeCfg.AutoApproveThreshold)

	if dryRun {
		report(ctx, appRepo, profileRepo, equipmentRepo, scoringSvc, cfg.Rescore.BatchSize)
		return
	}

	waitlistSvc := service.NewWaitlistService(
		appRepo, profileRepo, equipmentRepo, nil, nil,
		scoringSvc, configSvc, nil,
		cfg.Waitlist.BetaCap, cfg.Waitlist.SignalLookupTimeout, cfg.Rescore.BatchSize, logr)

	count, err := waitlistSvc.RescoreAll(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rescore failed after %d applications: %v\n", count, err)
		os.Exit(1)
	}
	fmt.Printf("rescored %d pending applications\n", count)
}

// report prints would-be score changes without touching the store.
func report(ctx context.Context, apps *repository.ApplicationRepository, profiles *repository.ProfileRepository, equipment *repository.EquipmentRepository, scorer *service.ScoringService, batchSize int) {
	if batchSize <= 0 {
		batchSize = 200
	}
	changed := 0
	total := 0
	for offset := 0; ; offset += batchSize {
		batch, err := apps.ListPending(ctx, batchSize, offset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list pending: %v\n", err)
			os.Exit(1)
		}
		for i := range batch {
			app := &batch[i]
			total++
			profileSig, equipmentSig := signals(ctx, profiles, equipment, app.Email)
			breakdown := scorer.Score(ctx, app.Answers(), profileSig, equipmentSig)
			if breakdown.CappedTotal != app.Score {
				changed++
				fmt.Printf("%s: %d -> %d\n", app.Email, app.Score, breakdown.CappedTotal)
			}
		}
		if len(batch) < batchSize {
			break
		}
	}
	fmt.Printf("dry run: %d of %d pending applications would change\n", changed, total)
}

func signals(ctx context.Context, profiles *repository.ProfileRepository, equipment *repository.EquipmentRepository, email string) (*models.ProfileSignal, *models.EquipmentSignal) {
	profile, err := profiles.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil
	}
	signal := profile.Signal()
	engagement, err := equipment.EngagementByUserID(ctx, profile.UserID)
	if err != nil {
		engagement = nil
	}
	return &signal, engagement
}
