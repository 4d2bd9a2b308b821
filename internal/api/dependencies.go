package api

import (
	"fmt"
	"log"
	"os"

	"prepflow/possync/internal/auth"
	"prepflow/possync/internal/common"
	"prepflow/possync/internal/db"
	"prepflow/possync/internal/db/repositories"
	"prepflow/possync/internal/metrics"
	"prepflow/possync/internal/providers"
	"prepflow/possync/internal/sync"
)

type Repositories struct {
	Config  *repositories.SyncConfigRepo
	Mapping *repositories.EntityMappingRepo
	Log     *repositories.SyncLogRepo
	Catalog *repositories.CatalogRepo
	Stats   *repositories.SyncStatsRepo
}

type Services struct {
	Cache        common.CacheInterface
	Leases       common.LeaseManager
	Square       *providers.SquareProvider
	Orchestrator *sync.Orchestrator
	Tokens       *auth.TokenService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Metrics  *metrics.MetricsRegistry
}

// InitDependencies wires repositories and services. With USE_REDIS=true the
// cache and the sync lease live in Redis so multiple instances can share
// them; otherwise both stay in-process.
func InitDependencies(metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	repos := &Repositories{
		Config:  repositories.NewSyncConfigRepo(db.PgDB),
		Mapping: repositories.NewEntityMappingRepo(db.PgDB),
		Log:     repositories.NewSyncLogRepo(db.PgDB),
		Catalog: repositories.NewCatalogRepo(db.PgDB),
		Stats:   repositories.NewSyncStatsRepo(db.DB),
	}

	var cacheSvc common.CacheInterface
	var leases common.LeaseManager

	if os.Getenv("USE_REDIS") == "true" {
		redisClient := common.NewRedisClient()

		redisCache, err := common.NewRedisCacheService(redisClient)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis cache: %w", err)
		}
		cacheSvc = redisCache
		leases = common.NewRedisLeaseManager(redisClient)
		log.Printf("[Dependencies] Using Redis cache and lease manager")
	} else {
		cacheSvc = common.NewCacheService(60, 600)
		leases = common.NewLocalLeaseManager()
		log.Printf("[Dependencies] Using in-memory cache and lease manager")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	square := providers.NewSquareProvider(repositories.NewConfigTokenSource(repos.Config))

	orchestrator := sync.NewOrchestrator(
		db.PgDB,
		square,
		repos.Config,
		repos.Mapping,
		repos.Log,
		repos.Catalog,
		leases,
		cacheSvc,
		metricsReg,
	)

	services := &Services{
		Cache:        cacheSvc,
		Leases:       leases,
		Square:       square,
		Orchestrator: orchestrator,
		Tokens:       auth.NewTokenService([]byte(jwtSecret)),
	}

	return &Dependencies{
		Repo:     repos,
		Services: services,
		Metrics:  metricsReg,
	}, nil
}
