package storage

import "sort"

const (
	saveComicQuery = `
		MERGE (c:Comic {title: $title})
		SET c.grade = $grade, c.est_value = $est_value, c.year = $year, c.key_notes = $key_notes,
			c.issue = $issue, c.value = $value,
			c.ungraded = $ungraded, c.grade_6_0 = $grade_6_0, c.grade_8_0 = $grade_8_0, c.status = $status
		MERGE (s:Series {name: $series})
		MERGE (c)-[:IN_SERIES]->(s)
	`
	linkEventQuery = `
		MATCH (c:Comic {title: $title})
		MERGE (e:Event {name: $event})
		MERGE (c)-[:PART_OF]->(e)
	`
	linkCreatorQuery = `
		MATCH (c:Comic {title: $title})
		MERGE (p:Creator {name: $creator})
		MERGE (c)-[:CREATED_BY]->(p)
	`
)

var neo4jQueries = map[string]string{
	// всего комиксов
	"total_comics": `
			MATCH (c:Comic)
			RETURN COUNT(c) AS total_comics
		`,
	// серии по количеству выпусков и суммарной стоимости
	"top_series": `
			MATCH (c:Comic)-[:IN_SERIES]->(s:Series)
			RETURN s.name AS series, COUNT(c) AS comics, SUM(coalesce(c.value, 0)) AS total_value
			ORDER BY comics DESC
			LIMIT 5
		`,
	// топ 5 самых дорогих комиксов по цене без грейда
	"most_valuable": `
			MATCH (c:Comic)
			WHERE c.ungraded IS NOT NULL
			RETURN c.title AS title, c.ungraded AS ungraded, c.grade_8_0 AS grade_8_0
			ORDER BY ungraded DESC
			LIMIT 5
		`,
	// авторы с наибольшим числом комиксов
	"top_creators": `
		MATCH (c:Comic)-[:CREATED_BY]->(p:Creator)
		RETURN p.name AS creator, COUNT(c) AS comics
		ORDER BY comics DESC
		LIMIT 5
	`,
	// события с наибольшим числом комиксов
	"top_events": `
		MATCH (c:Comic)-[:PART_OF]->(e:Event)
		RETURN e.name AS event, COUNT(c) AS comics
		ORDER BY comics DESC
		LIMIT 5
	`,
	// комиксы без цены
	"unpriced": `
		MATCH (c:Comic)
		WHERE c.ungraded IS NULL
		RETURN c.title AS title, c.status AS status
		ORDER BY title
	`,
}

// QueryNames returns the names of the predefined queries.
func QueryNames() []string {
	names := make([]string, 0, len(neo4jQueries))
	for name := range neo4jQueries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func HasQuery(name string) bool {
	_, ok := neo4jQueries[name]
	return ok
}
