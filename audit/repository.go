package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/tokengate/logging"
)

const defaultQueryLimit = 100

var ErrQueryUnsupported = errors.New("decision queries require elasticsearch")

type Repository interface {
	LogDecision(ctx context.Context, log DecisionLog) error
	QueryDecisions(ctx context.Context, q Query) ([]DecisionLog, error)
}

type ElasticsearchRepository struct {
	esClient *elasticsearch.Client
	index    string
}

// NewElasticsearchRepository creates a new repository with a given Elasticsearch client URL.
func NewElasticsearchRepository(esURL, index string) (*ElasticsearchRepository, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}
	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ElasticsearchRepository{esClient: esClient, index: index}, nil
}

// LogDecision indexes a decision under its decision id, so a replayed
// event overwrites rather than duplicates.
func (r *ElasticsearchRepository) LogDecision(ctx context.Context, log DecisionLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: log.DecisionID,
		Body:       bytes.NewReader(data),
	}

	res, err := req.Do(ctx, r.esClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing decision: %s", res.String())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source DecisionLog `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func buildQuery(q Query) map[string]interface{} {
	var must []interface{}
	if !q.From.IsZero() || !q.To.IsZero() {
		window := map[string]interface{}{}
		if !q.From.IsZero() {
			window["gte"] = q.From.Format(time.RFC3339)
		}
		if !q.To.IsZero() {
			window["lte"] = q.To.Format(time.RFC3339)
		}
		must = append(must, map[string]interface{}{"range": map[string]interface{}{"timestamp": window}})
	}
	if q.Signer != "" {
		must = append(must, map[string]interface{}{"match": map[string]interface{}{"signer": q.Signer}})
	}
	if q.Operation != "" {
		must = append(must, map[string]interface{}{"match": map[string]interface{}{"operation": q.Operation}})
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if len(must) > 0 {
		query = map[string]interface{}{"bool": map[string]interface{}{"must": must}}
	}
	return map[string]interface{}{
		"size":  limit,
		"sort":  []interface{}{map[string]interface{}{"timestamp": "desc"}},
		"query": query,
	}
}

// QueryDecisions searches stored decisions, newest first.
func (r *ElasticsearchRepository) QueryDecisions(ctx context.Context, q Query) ([]DecisionLog, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildQuery(q)); err != nil {
		return nil, err
	}

	res, err := r.esClient.Search(
		r.esClient.Search.WithContext(ctx),
		r.esClient.Search.WithIndex(r.index),
		r.esClient.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching decisions: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	logs := make([]DecisionLog, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		logs = append(logs, hit.Source)
	}
	return logs, nil
}

// LogRepository writes decisions to the structured log when no
// Elasticsearch cluster is configured.
type LogRepository struct{}

func NewLogRepository() *LogRepository {
	return &LogRepository{}
}

func (r *LogRepository) LogDecision(ctx context.Context, log DecisionLog) error {
	logger.Info("Authorization decision",
		zap.String("decision_id", log.DecisionID),
		zap.String("request_id", log.RequestID),
		zap.String("operation", log.Operation),
		zap.String("signer", log.Signer),
		zap.Bool("access_granted", log.AccessGranted),
		zap.String("stage", log.Stage),
		zap.String("code", log.Code),
		zap.String("tier", log.Tier),
		zap.String("client_ip", log.ClientIP))
	return nil
}

func (r *LogRepository) QueryDecisions(ctx context.Context, q Query) ([]DecisionLog, error) {
	return nil, ErrQueryUnsupported
}
