package driver

var IndexQueries = []string{
	"CREATE INDEX ON :Card(slug);",
	"CREATE INDEX ON :Card(sync_id);",
	"CREATE INDEX ON :Crew(name);",
}

const (
	// UpsertCardsQuery expects $cards as a list of maps with the keys set
	// below, plus $sync_id and $synced_at for the whole batch.
	UpsertCardsQuery = `
		UNWIND $cards AS c
		MERGE (n:Card {slug: c.slug})
		SET n.name = c.name,
			n.effect = c.effect,
			n.type = c.type,
			n.power = c.power,
			n.cost = c.cost,
			n.rare = c.rare,
			n.api_url = c.api_url,
			n.illustrations = c.illustrations,
			n.embedding = c.embedding,
			n.sync_id = $sync_id,
			n.synced_at = $synced_at
		RETURN count(n) AS count
	`

	LinkCrewsQuery = `
		UNWIND $links AS l
		MATCH (card:Card {slug: l.slug})
		MERGE (crew:Crew {name: l.crew})
		MERGE (card)-[:MEMBER_OF]->(crew)
		RETURN count(*) AS count
	`

	// PruneCardsQuery removes cards that were not touched by the sync
	// identified by $sync_id, then crews left without members.
	PruneCardsQuery = `
		MATCH (n:Card)
		WHERE n.sync_id <> $sync_id
		DETACH DELETE n
		RETURN count(*) AS count
	`

	PruneCrewsQuery = `
		MATCH (crew:Crew)
		WHERE NOT (crew)<-[:MEMBER_OF]-(:Card)
		DETACH DELETE crew
		RETURN count(*) AS count
	`

	CrewmatesQuery = `
		MATCH (c:Card {slug: $slug})-[:MEMBER_OF]->(crew:Crew)<-[:MEMBER_OF]-(o:Card)
		WHERE o.slug <> $slug
		RETURN DISTINCT o.slug AS slug, o.name AS name, crew.name AS crew
		ORDER BY slug, crew
		LIMIT $limit
	`
)
