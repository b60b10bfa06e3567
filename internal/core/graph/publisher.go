// Package graph mirrors the card dataset and its embeddings into Memgraph
// so crews and cards can be explored with Cypher.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/cardmatch/internal/core/index"
	"github.com/agenthands/cardmatch/internal/core/model"
	"github.com/agenthands/cardmatch/internal/driver"
	"github.com/agenthands/cardmatch/internal/logger"
)

const defaultBatchSize = 500

type Publisher struct {
	Driver    driver.GraphDriver
	Logger    *logger.Logger
	BatchSize int
	// Prune deletes cards and crews a sync did not write.
	Prune bool

	NewID func() string
	Now   func() time.Time
}

func NewPublisher(d driver.GraphDriver, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{
		Driver:    d,
		Logger:    log,
		BatchSize: defaultBatchSize,
		NewID:     uuid.NewString,
		Now:       time.Now,
	}
}

type SyncReport struct {
	SyncID string `json:"sync_id"`
	Cards  int64  `json:"cards"`
	Links  int64  `json:"links"`
	Pruned int64  `json:"pruned"`
}

// Publish writes every card with its cached embedding and its crew
// memberships. Cards without a cache entry are written without an
// embedding.
func (p *Publisher) Publish(ctx context.Context, cards []model.Card, cache *index.Cache) (SyncReport, error) {
	report := SyncReport{SyncID: p.NewID()}

	if err := p.Driver.BuildIndices(ctx); err != nil {
		return report, fmt.Errorf("failed to build indices: %w", err)
	}

	syncedAt := p.Now().UTC().Format(time.RFC3339)
	batch := p.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}

	for start := 0; start < len(cards); start += batch {
		end := min(start+batch, len(cards))

		rows := make([]map[string]any, 0, end-start)
		var links []map[string]any
		for i := start; i < end; i++ {
			rows = append(rows, cardParams(&cards[i], cache))
			for _, name := range cards[i].CrewNames() {
				if name == "" {
					continue
				}
				links = append(links, map[string]any{"slug": cards[i].Slug, "crew": name})
			}
		}

		res, err := p.Driver.ExecuteQuery(ctx, driver.UpsertCardsQuery, map[string]any{
			"cards":     rows,
			"sync_id":   report.SyncID,
			"synced_at": syncedAt,
		})
		if err != nil {
			return report, fmt.Errorf("failed to upsert cards: %w", err)
		}
		report.Cards += countOf(res)

		if len(links) == 0 {
			continue
		}
		res, err = p.Driver.ExecuteQuery(ctx, driver.LinkCrewsQuery, map[string]any{"links": links})
		if err != nil {
			return report, fmt.Errorf("failed to link crews: %w", err)
		}
		report.Links += countOf(res)
	}

	if p.Prune {
		res, err := p.Driver.ExecuteQuery(ctx, driver.PruneCardsQuery, map[string]any{"sync_id": report.SyncID})
		if err != nil {
			return report, fmt.Errorf("failed to prune cards: %w", err)
		}
		report.Pruned = countOf(res)
		if _, err := p.Driver.ExecuteQuery(ctx, driver.PruneCrewsQuery, nil); err != nil {
			return report, fmt.Errorf("failed to prune crews: %w", err)
		}
	}

	p.Logger.Info("graph sync finished",
		"sync_id", report.SyncID, "cards", report.Cards, "links", report.Links, "pruned", report.Pruned)
	return report, nil
}

type Crewmate struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	Crew string `json:"crew"`
}

// Crewmates lists other cards sharing a crew with slug.
func (p *Publisher) Crewmates(ctx context.Context, slug string, limit int) ([]Crewmate, error) {
	if limit <= 0 {
		limit = 20
	}
	res, err := p.Driver.ExecuteQuery(ctx, driver.CrewmatesQuery, map[string]any{
		"slug":  slug,
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query crewmates: %w", err)
	}

	mates := make([]Crewmate, 0, len(res.Records))
	for _, rec := range res.Records {
		mates = append(mates, Crewmate{
			Slug: stringOf(rec, "slug"),
			Name: stringOf(rec, "name"),
			Crew: stringOf(rec, "crew"),
		})
	}
	return mates, nil
}

func cardParams(c *model.Card, cache *index.Cache) map[string]any {
	var embedding []float64
	if cache != nil {
		if vec, ok := cache.Get(c.Slug); ok {
			embedding = make([]float64, len(vec))
			for i, v := range vec {
				embedding[i] = float64(v)
			}
		}
	}

	return map[string]any{
		"slug":          c.Slug,
		"name":          c.Name,
		"effect":        c.Effect,
		"type":          c.Type,
		"power":         intOrNil(c.Power),
		"cost":          intOrNil(c.Cost),
		"rare":          c.Rare,
		"api_url":       c.APIURL,
		"illustrations": c.IllustrationLinks(),
		"embedding":     embedding,
	}
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func countOf(res neo4j.EagerResult) int64 {
	if len(res.Records) == 0 {
		return 0
	}
	v, ok := res.Records[0].Get("count")
	if !ok {
		return 0
	}
	n, _ := v.(int64)
	return n
}

func stringOf(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
