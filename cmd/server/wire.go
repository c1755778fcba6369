// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"tourguide_backend/internal/app"
	"tourguide_backend/internal/auth"
	"tourguide_backend/internal/config"
	"tourguide_backend/internal/destination"
	"tourguide_backend/internal/guide"
	"tourguide_backend/internal/jobs"
	"tourguide_backend/internal/notification"
	"tourguide_backend/internal/platform/database"
	platformElasticsearch "tourguide_backend/internal/platform/elasticsearch"
	"tourguide_backend/internal/platform/logger"
	"tourguide_backend/internal/request"
	"tourguide_backend/internal/shared"
	"tourguide_backend/internal/user"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		database.NewGORM,
		platformElasticsearch.NewClient,

		// Auth
		auth.NewJWTService,
		provideBlocklist,

		// Core User Services
		user.NewGORMRepository,
		user.NewService,
		wire.Bind(new(shared.Service), new(*user.ServiceImplementation)),
		wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
		auth.NewHandler,

		// Destinations
		destination.NewGORMRepository,
		destination.NewService,
		wire.Bind(new(destination.Service), new(*destination.ServiceImplementation)),
		destination.NewHandler,

		// Trip Requests
		request.NewGORMRepository,
		request.NewService,
		request.NewHandler,

		// Guides. The request repository doubles as the trip data source
		// for guide stats, matching, and notification enrichment.
		guide.NewGORMRepository,
		guide.NewService,
		guide.NewHandler,
		provideTripStatsProvider,
		provideRequestCriteriaProvider,

		// Notifications
		notification.NewGORMRepository,
		notification.NewService,
		notification.NewHandler,
		provideRequestInfoProvider,
		provideUserDirectory,

		// Jobs
		jobs.NewNotificationExpiryJob,

		// Application Layer
		app.NewServer,
		provideCleanup,
	)
	return nil, nil, nil
}
