// File: internal/destination/search.go
package destination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	platformES "tourguide_backend/internal/platform/elasticsearch"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ToElasticsearchDoc converts a destination to its Elasticsearch document
// representation.
func ToElasticsearchDoc(d *Destination) (string, error) {
	if d == nil {
		return "", errors.New("destination cannot be nil")
	}

	doc := map[string]interface{}{
		"name":        d.Name,
		"slug":        d.Slug,
		"description": d.Description,
		"category":    d.Category,
		"difficulty":  d.Difficulty,
		"best_season": []string(d.BestSeason),
		"highlights":  []string(d.Highlights),
		"rating":      d.Rating,
		"is_active":   d.IsActive,
		"created_at":  d.CreatedAt,
		"updated_at":  d.UpdatedAt,
	}

	if d.Location != nil {
		doc["location"] = *d.Location
	} else {
		doc["location"] = nil
	}

	docBytes, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("error marshalling destination to JSON for ES: %w", err)
	}
	return string(docBytes), nil
}

// indexDocument upserts a destination document. Errors are returned so the
// caller can decide whether they are fatal; a disabled client is a no-op.
func indexDocument(ctx context.Context, es *platformES.ESClientWrapper, d *Destination, logger *zap.Logger) error {
	if !es.Enabled() {
		return nil
	}

	docJSON, err := ToElasticsearchDoc(d)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      platformES.DestinationsIndexName,
		DocumentID: d.ID.String(),
		Body:       strings.NewReader(docJSON),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, es.Client)
	if err != nil {
		return fmt.Errorf("failed to index destination %s: %w", d.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		logger.Error("Elasticsearch index request failed",
			zap.String("destinationID", d.ID.String()),
			zap.String("status", res.Status()))
		return fmt.Errorf("failed to index destination %s: status %s", d.ID, res.Status())
	}
	return nil
}

// deleteDocument removes a destination document. Missing documents are not an
// error.
func deleteDocument(ctx context.Context, es *platformES.ESClientWrapper, id uuid.UUID, logger *zap.Logger) error {
	if !es.Enabled() {
		return nil
	}

	req := esapi.DeleteRequest{
		Index:      platformES.DestinationsIndexName,
		DocumentID: id.String(),
	}
	res, err := req.Do(ctx, es.Client)
	if err != nil {
		return fmt.Errorf("failed to delete destination %s from index: %w", id, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		logger.Error("Elasticsearch delete request failed",
			zap.String("destinationID", id.String()),
			zap.String("status", res.Status()))
		return fmt.Errorf("failed to delete destination %s from index: status %s", id, res.Status())
	}
	return nil
}

// searchIDs runs a multi_match query over name and description and returns
// the matching destination IDs in relevance order.
func searchIDs(ctx context.Context, es *platformES.ESClientWrapper, search string, limit int) ([]uuid.UUID, error) {
	query := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  search,
						"fields": []string{"name^2", "description"},
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"is_active": true},
				},
			},
		},
		"_source": false,
	}

	var body strings.Builder
	if err := json.NewEncoder(&body).Encode(query); err != nil {
		return nil, fmt.Errorf("failed to encode search query: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(platformES.DestinationsIndexName),
		es.Search.WithBody(strings.NewReader(body.String())),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search failed: status %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
