package search

import (
	"bytes"
	"context"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"
)

const (
	IdxUsers       = "users_v1"
	IdxHackathons  = "hackathons_v1"
	IdxSubmissions = "submissions_v1"
)

// EnsureIndexes creates the indexes with strict mappings when missing.
func EnsureIndexes(ctx context.Context, c *es.Client) error {
	mapping := `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"username":{"type":"keyword"},"display_name":{"type":"text"},"skills":{"type":"keyword"},
		"college":{"type":"text"},"updated_at":{"type":"date"}
	}}}`
	if err := ensure(ctx, c, IdxUsers, mapping); err != nil {
		return err
	}

	mapping = `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"name":{"type":"text"},"description":{"type":"text"},"location":{"type":"keyword"},
		"status":{"type":"keyword"},"tracks":{"type":"keyword"},
		"start_time":{"type":"date"},"end_time":{"type":"date"},"updated_at":{"type":"date"}
	}}}`
	if err := ensure(ctx, c, IdxHackathons, mapping); err != nil {
		return err
	}

	mapping = `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"title":{"type":"text"},"description":{"type":"text"},
		"hackathon_id":{"type":"keyword"},"team_id":{"type":"keyword"},"updated_at":{"type":"date"}
	}}}`
	return ensure(ctx, c, IdxSubmissions, mapping)
}

func ensure(ctx context.Context, c *es.Client, index, body string) error {
	exists, err := c.Indices.Exists([]string{index})
	if err == nil && exists.StatusCode == 200 {
		return nil
	}
	res, err := c.Indices.Create(index,
		c.Indices.Create.WithBody(bytes.NewBufferString(body)),
		c.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()
	return nil
}
