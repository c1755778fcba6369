// File: internal/platform/elasticsearch/index.go
package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const DestinationsIndexName = "destinations"

// defineDestinationsMapping returns the JSON string for the destinations index mapping.
func defineDestinationsMapping() (string, error) {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"name":        map[string]interface{}{"type": "text", "fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}}},
				"slug":        map[string]interface{}{"type": "keyword"},
				"description": map[string]interface{}{"type": "text"},
				"category":    map[string]interface{}{"type": "keyword"},
				"difficulty":  map[string]interface{}{"type": "keyword"},
				"location":    map[string]interface{}{"type": "text"},
				"best_season": map[string]interface{}{"type": "keyword"},
				"highlights":  map[string]interface{}{"type": "text"},
				"rating":      map[string]interface{}{"type": "double"},
				"is_active":   map[string]interface{}{"type": "boolean"},
				"created_at":  map[string]interface{}{"type": "date"},
				"updated_at":  map[string]interface{}{"type": "date"},
			},
		},
	}
	mappingBytes, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling destinations mapping to JSON: %w", err)
	}
	return string(mappingBytes), nil
}

// CreateDestinationsIndexIfNotExists creates the destinations index with the
// defined mapping if it does not already exist. A wrapper without a client is
// a no-op.
func CreateDestinationsIndexIfNotExists(client *ESClientWrapper, logger *zap.Logger) error {
	if !client.Enabled() {
		return nil
	}

	ctx := context.Background()
	log := logger.Named("elasticsearch_index_setup")

	req := esapi.IndicesExistsRequest{
		Index: []string{DestinationsIndexName},
	}
	res, err := req.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error checking if destinations index exists", zap.Error(err))
		return fmt.Errorf("error checking if destinations index exists: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Info("Destinations index already exists", zap.String("index_name", DestinationsIndexName))
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Error("Error checking if destinations index exists, unexpected status",
			zap.String("status", res.Status()),
			zap.String("index_name", DestinationsIndexName),
		)
		return fmt.Errorf("error checking if destinations index exists: status %s", res.Status())
	}

	mappingJSON, err := defineDestinationsMapping()
	if err != nil {
		log.Error("Failed to define destinations mapping", zap.Error(err))
		return err
	}

	createReq := esapi.IndicesCreateRequest{
		Index: DestinationsIndexName,
		Body:  strings.NewReader(mappingJSON),
	}
	createRes, err := createReq.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error creating destinations index", zap.Error(err), zap.String("index_name", DestinationsIndexName))
		return fmt.Errorf("error creating destinations index %s: %w", DestinationsIndexName, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		var errorBody map[string]interface{}
		if err := json.NewDecoder(createRes.Body).Decode(&errorBody); err != nil {
			log.Error("Failed to parse destinations index creation error response body", zap.Error(err), zap.String("status", createRes.Status()))
		} else {
			log.Error("Failed to create destinations index",
				zap.String("status", createRes.Status()),
				zap.Any("error_details", errorBody),
				zap.String("index_name", DestinationsIndexName),
			)
		}
		return fmt.Errorf("failed to create destinations index %s: status %s", DestinationsIndexName, createRes.Status())
	}

	log.Info("Destinations index created successfully", zap.String("index_name", DestinationsIndexName))
	return nil
}
