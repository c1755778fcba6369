// File: cmd/server/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tourguide_backend/internal/config"
	"tourguide_backend/internal/destination"
	"tourguide_backend/internal/destination/esutil"
	"tourguide_backend/internal/notification"
	"tourguide_backend/internal/platform/database"
	platformElasticsearch "tourguide_backend/internal/platform/elasticsearch"
	"tourguide_backend/internal/platform/logger"
	"tourguide_backend/internal/request"
	"tourguide_backend/internal/user"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

func main() {
	syncDestinationsCmd := flag.NewFlagSet("sync-destinations", flag.ExitOnError)
	batchSize := syncDestinationsCmd.Int("batch-size", 100, "Batch size for syncing destinations")
	esRefresh := syncDestinationsCmd.String("es-refresh", "false", "Elasticsearch refresh policy (true, false, wait_for)")

	if len(os.Args) > 1 && os.Args[1] == "sync-destinations" {
		syncDestinationsCmd.Parse(os.Args[2:])

		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("FATAL: Failed to load configuration for sync: %v", err)
		}
		appLogger, err := logger.New(cfg)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize logger for sync: %v", err)
		}
		db, err := database.NewGORM(cfg)
		if err != nil {
			appLogger.Fatal("FATAL: Failed to initialize database for sync", zap.Error(err))
		}
		sqlDB, _ := db.DB()
		defer sqlDB.Close()

		esClient, err := platformElasticsearch.NewClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("FATAL: Failed to initialize Elasticsearch client for sync", zap.Error(err))
		}
		if !esClient.Enabled() {
			appLogger.Fatal("FATAL: Elasticsearch is not configured, ensure ELASTICSEARCH_URL is set.")
		}

		// Ensure index exists before syncing
		if err := platformElasticsearch.CreateDestinationsIndexIfNotExists(esClient, appLogger); err != nil {
			appLogger.Fatal("FATAL: Failed to create/verify Elasticsearch index before sync", zap.Error(err))
		}

		destinationRepo := destination.NewGORMRepository(db)

		err = runDestinationSync(destinationRepo, esClient, appLogger, *batchSize, *esRefresh)
		if err != nil {
			appLogger.Fatal("FATAL: Destination synchronization failed", zap.Error(err))
		}
		appLogger.Info("Destination synchronization completed successfully.")
		return
	}

	startServer()
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	if err := database.AutoMigrate(server.DB,
		&user.User{},
		&destination.Destination{},
		&request.TripRequest{},
		&notification.Notification{},
	); err != nil {
		server.AppLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	if server.ESClient.Enabled() {
		if err := platformElasticsearch.CreateDestinationsIndexIfNotExists(server.ESClient, server.AppLogger); err != nil {
			server.AppLogger.Error("Failed to create Elasticsearch destinations index. Search will fall back to the database.", zap.Error(err))
		}
	} else {
		server.AppLogger.Info("Elasticsearch client not configured, skipping index creation.")
	}

	go func() {
		if err := server.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}

// runDestinationSync performs the batch synchronization of destinations to Elasticsearch.
func runDestinationSync(
	destinationRepo destination.Repository,
	esClient *platformElasticsearch.ESClientWrapper,
	logger *zap.Logger,
	batchSize int,
	esRefresh string,
) error {
	logger.Info("Starting destination synchronization to Elasticsearch...",
		zap.Int("batchSize", batchSize),
		zap.String("esRefreshPolicy", esRefresh),
	)

	offset := 0
	totalSynced := 0
	totalFailed := 0
	batchNumber := 1

	for {
		logger.Info("Fetching batch of destinations...", zap.Int("batchNumber", batchNumber), zap.Int("offset", offset), zap.Int("limit", batchSize))
		destinations, err := destinationRepo.FindAllForSync(context.Background(), offset, batchSize)
		if err != nil {
			logger.Error("Failed to fetch batch of destinations", zap.Error(err), zap.Int("batchNumber", batchNumber))
			return fmt.Errorf("failed to fetch batch %d: %w", batchNumber, err)
		}

		if len(destinations) == 0 {
			logger.Info("No more destinations to sync.")
			break
		}

		var bulkRequestBody strings.Builder
		currentBatchIDs := make([]string, 0, len(destinations))

		for i := range destinations {
			d := &destinations[i]
			currentBatchIDs = append(currentBatchIDs, d.ID.String())
			docJSON, errDoc := esutil.DestinationToElasticsearchDoc(d)
			if errDoc != nil {
				logger.Error("Failed to convert destination to Elasticsearch document",
					zap.String("destinationID", d.ID.String()),
					zap.Error(errDoc),
				)
				totalFailed++
				continue
			}

			action := fmt.Sprintf(`{ "index" : { "_index" : "%s", "_id" : "%s" } }%s`, platformElasticsearch.DestinationsIndexName, d.ID.String(), "\n")
			bulkRequestBody.WriteString(action)
			bulkRequestBody.WriteString(docJSON)
			bulkRequestBody.WriteString("\n")
		}

		if bulkRequestBody.Len() == 0 {
			logger.Info("No documents to index in current batch, possibly due to conversion errors.", zap.Int("batchNumber", batchNumber))
			offset += len(destinations)
			batchNumber++
			continue
		}

		logger.Info("Sending bulk request to Elasticsearch for batch", zap.Int("batchNumber", batchNumber), zap.Int("documentCount", len(currentBatchIDs)))

		req := esapi.BulkRequest{
			Body:    strings.NewReader(bulkRequestBody.String()),
			Refresh: esRefresh,
		}

		res, errBulk := req.Do(context.Background(), esClient.Client)
		if errBulk != nil {
			logger.Error("Failed to send bulk request to Elasticsearch", zap.Error(errBulk), zap.Int("batchNumber", batchNumber))
			totalFailed += len(currentBatchIDs)
			offset += len(destinations)
			batchNumber++
			continue
		}

		batchSynced, batchFailed := parseBulkResponse(res, currentBatchIDs, logger)
		res.Body.Close()

		totalSynced += batchSynced
		totalFailed += batchFailed
		logger.Info("Batch processed.",
			zap.Int("batchNumber", batchNumber),
			zap.Int("syncedInBatch", batchSynced),
			zap.Int("failedInBatch", batchFailed),
		)

		offset += len(destinations)
		batchNumber++
	}

	logger.Info("Destination synchronization process finished.",
		zap.Int("totalDestinationsSyncedSuccessfully", totalSynced),
		zap.Int("totalDestinationsFailed", totalFailed),
	)
	if totalFailed > 0 {
		return fmt.Errorf("%d destinations failed to sync", totalFailed)
	}
	return nil
}

// parseBulkResponse inspects a bulk API response for item-level failures.
// Elasticsearch can return 200 for a bulk request while individual items fail,
// so both paths decode the items array.
func parseBulkResponse(res *esapi.Response, batchIDs []string, logger *zap.Logger) (synced, failed int) {
	if res.IsError() {
		logger.Error("Elasticsearch bulk request returned an error", zap.String("status", res.Status()))
		var raw map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
			logger.Error("Failed to parse Elasticsearch bulk error response body", zap.Error(err))
			return 0, len(batchIDs)
		}
		hasErrors, ok := raw["errors"].(bool)
		if !ok || !hasErrors {
			logger.Warn("Elasticsearch bulk request failed but no item-level errors found in response")
			return 0, len(batchIDs)
		}
		items, _ := raw["items"].([]interface{})
		for i, item := range items {
			itemMap, _ := item.(map[string]interface{})
			indexMap, _ := itemMap["index"].(map[string]interface{})

			destinationID := "unknown"
			if i < len(batchIDs) {
				destinationID = batchIDs[i]
			}

			if errorVal, ok := indexMap["error"]; ok {
				logger.Error("Failed to index document in bulk batch",
					zap.String("destinationID", destinationID),
					zap.Any("error", errorVal),
					zap.Int("batchItemIndex", i),
				)
				failed++
			} else {
				synced++
			}
		}
		return synced, failed
	}

	var bulkResponse struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string                 `json:"_id"`
				Status int                    `json:"status"`
				Error  map[string]interface{} `json:"error,omitempty"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResponse); err != nil {
		logger.Error("Failed to parse Elasticsearch bulk response body", zap.Error(err))
		return 0, len(batchIDs)
	}
	for _, item := range bulkResponse.Items {
		if item.Index.Error != nil {
			logger.Error("Failed to index document in bulk batch (item-level)",
				zap.String("destinationID", item.Index.ID),
				zap.Any("error", item.Index.Error),
				zap.Int("status", item.Index.Status),
			)
			failed++
		} else {
			synced++
		}
	}
	return synced, failed
}
