// File: cmd/server/providers.go
package main

import (
	"log"

	"tourguide_backend/internal/auth"
	"tourguide_backend/internal/config"
	"tourguide_backend/internal/guide"
	"tourguide_backend/internal/notification"
	"tourguide_backend/internal/platform/database"
	"tourguide_backend/internal/request"
	"tourguide_backend/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func provideBlocklist(cfg *config.Config) auth.TokenBlocklistService {
	return auth.NewInMemoryBlocklistService(auth.InMemoryBlocklistConfig{
		DefaultExpiration: cfg.AccessTokenTTL,
		CleanupInterval:   cfg.AccessTokenTTL,
	})
}

// The trip request repository is the single source of trip data. These
// providers expose the narrow slices of it that the guide and notification
// packages depend on.
func provideTripStatsProvider(repo request.Repository) guide.TripStatsProvider {
	return repo
}

func provideRequestCriteriaProvider(repo request.Repository) guide.RequestCriteriaProvider {
	return repo
}

func provideRequestInfoProvider(repo request.Repository) notification.RequestInfoProvider {
	return repo
}

func provideUserDirectory(repo user.Repository) notification.UserDirectory {
	return repo
}

func provideCleanup(logger *zap.Logger, db *gorm.DB) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}
