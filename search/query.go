package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"
)

// Hit is one search result: the document ID plus the raw source.
type Hit struct {
	ID     string          `json:"id"`
	Score  float64         `json:"score"`
	Source json.RawMessage `json:"source"`
}

// Query runs a multi-field match against one index and returns the hits.
func Query(ctx context.Context, c *es.Client, index, q string, limit int) ([]Hit, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	var fields string
	switch index {
	case IdxUsers:
		fields = `["username","display_name","college","skills"]`
	case IdxHackathons:
		fields = `["name","description","location","tracks"]`
	case IdxSubmissions:
		fields = `["title","description"]`
	default:
		return nil, fmt.Errorf("unknown index %q", index)
	}

	body := fmt.Sprintf(`{"size":%d,"query":{"multi_match":{"query":%s,"fields":%s,"fuzziness":"AUTO"}}}`,
		limit, mustJSON(q), fields)

	res, err := c.Search(
		c.Search.WithContext(ctx),
		c.Search.WithIndex(index),
		c.Search.WithBody(strings.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", index, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string          `json:"_id"`
				Score  float64         `json:"_score"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]Hit, len(parsed.Hits.Hits))
	for i, h := range parsed.Hits.Hits {
		hits[i] = Hit{ID: h.ID, Score: h.Score, Source: h.Source}
	}
	return hits, nil
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
