// File: internal/destination/esutil/util.go
package esutil

import (
	"tourguide_backend/internal/destination"
)

// DestinationToElasticsearchDoc converts a destination.Destination to its
// Elasticsearch document representation. Used by the sync-destinations
// subcommand for bulk reindexing.
func DestinationToElasticsearchDoc(d *destination.Destination) (string, error) {
	return destination.ToElasticsearchDoc(d)
}
