// Package search owns the Elasticsearch read models: index definitions,
// document builders, and full-text queries. The search sync worker keeps
// the indexes aligned with Postgres via the outbox table.
package search

import (
	es "github.com/elastic/go-elasticsearch/v8"

	"hackathon-platform/config"
)

func Connect() (*es.Client, error) {
	return es.NewClient(es.Config{
		Addresses: []string{config.Get().ElasticURL},
	})
}
