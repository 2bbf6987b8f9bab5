package storage

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ZetoOfficial/comic-prices/internal/models"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"
)

type Neo4jStorage struct {
	Driver neo4j.DriverWithContext
}

func NewNeo4jStorage(uri, username, password string) (*Neo4jStorage, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("connect to driver: %w", err)
	}
	return &Neo4jStorage{Driver: driver}, nil
}

func (s *Neo4jStorage) Close(ctx context.Context) error {
	return s.Driver.Close(ctx)
}

// SaveComics сохраняет комиксы и их связи с сериями, событиями и авторами.
func (s *Neo4jStorage) SaveComics(ctx context.Context, records []models.Record) error {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer func(session neo4j.SessionWithContext, ctx context.Context) {
		err := session.Close(ctx)
		if err != nil {
			logrus.Warnf("close session: %v", err)
		}
	}(session, ctx)

	for _, r := range records {
		_, err := session.Run(ctx, saveComicQuery, comicParams(r))
		if err != nil {
			logrus.Errorf("save comic %q: %v", r.Comic.Title, err)
			return fmt.Errorf("save comic %q: %w", r.Comic.Title, err)
		}

		if r.Comic.Event != "" {
			_, err = session.Run(ctx, linkEventQuery, map[string]any{
				"title": r.Comic.Title,
				"event": r.Comic.Event,
			})
			if err != nil {
				return fmt.Errorf("link event %q: %w", r.Comic.Title, err)
			}
		}

		for _, creator := range SplitCreators(r.Comic.Creator) {
			_, err = session.Run(ctx, linkCreatorQuery, map[string]any{
				"title":   r.Comic.Title,
				"creator": creator,
			})
			if err != nil {
				return fmt.Errorf("link creator %q to %q: %w", creator, r.Comic.Title, err)
			}
		}
	}

	logrus.Infof("Сохранено комиксов в Neo4j: %d", len(records))
	return nil
}

func comicParams(r models.Record) map[string]any {
	params := map[string]any{
		"title":     r.Comic.Title,
		"series":    r.Series,
		"grade":     r.Comic.Grade,
		"est_value": r.Comic.EstValue,
		"year":      r.Year,
		"key_notes": r.Comic.KeyNotes,
		"issue":     nil,
		"value":     nil,
		"ungraded":  nil,
		"grade_6_0": nil,
		"grade_8_0": nil,
		"status":    nil,
	}
	if r.Issue != nil {
		params["issue"] = int64(*r.Issue)
	}
	if r.Value != nil {
		params["value"] = *r.Value
	}
	if pd := r.Comic.PriceData; pd != nil {
		if pd.Ungraded != nil {
			params["ungraded"] = *pd.Ungraded
		}
		if pd.Grade60 != nil {
			params["grade_6_0"] = *pd.Grade60
		}
		if pd.Grade80 != nil {
			params["grade_8_0"] = *pd.Grade80
		}
		params["status"] = string(pd.Status)
	}
	return params
}

var creatorSep = regexp.MustCompile(`\s*(?:,|&|\band\b)\s*`)

// SplitCreators splits "Stan Lee & Steve Ditko" into separate names.
func SplitCreators(s string) []string {
	var out []string
	for _, name := range creatorSep.Split(s, -1) {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func (s *Neo4jStorage) RunQuery(ctx context.Context, queryName string) ([]map[string]interface{}, error) {
	query, exists := neo4jQueries[queryName]
	if !exists {
		return nil, fmt.Errorf("query %s not found", queryName)
	}

	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer func(session neo4j.SessionWithContext, ctx context.Context) {
		err := session.Close(ctx)
		if err != nil {
			logrus.Warnf("close session: %v", err)
		}
	}(session, ctx)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	var results []map[string]any
	for result.Next(ctx) {
		record := result.Record()
		recordMap := make(map[string]interface{})
		for _, key := range record.Keys {
			value, _ := record.Get(key)
			recordMap[key] = value
		}
		results = append(results, recordMap)
	}

	if err = result.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

func (s *Neo4jStorage) Ping(ctx context.Context) error {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer func() {
		if err := session.Close(ctx); err != nil {
			logrus.Warnf("close session: %v", err)
		}
	}()

	result, err := session.Run(ctx, "RETURN 1", nil)
	if err != nil {
		return fmt.Errorf("ping query failed: %w", err)
	}

	if result.Next(ctx) {
		return nil
	}
	if err = result.Err(); err != nil {
		return fmt.Errorf("ping query error: %w", err)
	}
	return fmt.Errorf("ping query did not return any results")
}
