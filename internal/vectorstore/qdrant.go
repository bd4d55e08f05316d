package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
)

// DefaultSearchLimit bounds searches that do not specify a limit.
const DefaultSearchLimit = 10

// QdrantStore implements Store on a Qdrant instance over gRPC.
type QdrantStore struct {
	client *qdrant.Client
}

// QdrantConfig holds connection parameters for a Qdrant instance.
type QdrantConfig struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// NewQdrantStore connects to Qdrant with the given config.
func NewQdrantStore(cfg QdrantConfig) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant; %w", err)
	}
	return &QdrantStore{client: client}, nil
}

// Close releases the underlying gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// EnsureCollection creates the collection with cosine distance if it does
// not already exist.
func (s *QdrantStore) EnsureCollection(ctx context.Context, name string, dimensions int) error {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection %q; %w", name, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %q; %w", name, err)
	}
	return nil
}

// Upsert writes records as points, replacing existing points with the same
// IDs.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(records))
	for i, r := range records {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(r.ID),
			Vectors: qdrant.NewVectors(r.Embedding...),
			Payload: qdrant.NewValueMap(recordPayload(r)),
		}
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points into %q; %w", len(points), collection, err)
	}
	return nil
}

// Search returns the nearest records, best first.
func (s *QdrantStore) Search(ctx context.Context, collection string, vector []float32, params SearchParams) ([]ScoredRecord, error) {
	limit := uint64(params.Limit)
	if limit == 0 {
		limit = DefaultSearchLimit
	}

	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if params.MinScore > 0 {
		threshold := params.MinScore
		query.ScoreThreshold = &threshold
	}
	if len(params.Filter) > 0 {
		query.Filter = buildFilter(params.Filter)
	}

	hits, err := s.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q; %w", collection, err)
	}

	out := make([]ScoredRecord, 0, len(hits))
	for _, hit := range hits {
		rec := recordFromPayload(hit.GetPayload())
		rec.ID = hit.GetId().GetUuid()
		out = append(out, ScoredRecord{Record: rec, Score: hit.GetScore()})
	}
	return out, nil
}

// ListCollections returns the names of all collections.
func (s *QdrantStore) ListCollections(ctx context.Context) ([]string, error) {
	names, err := s.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections; %w", err)
	}
	return names, nil
}

// recordPayload flattens a record into the Qdrant point payload.
func recordPayload(r Record) map[string]any {
	payload := map[string]any{
		"document_id":      r.DocumentID,
		"execution_id":     r.ExecutionID,
		"index":            r.Index,
		"file_name":        r.FileName,
		"text":             r.Text,
		"artifact_kind":    r.ArtifactKind,
		"partition_number": int64(r.PartitionNumber),
		"section_number":   int64(r.SectionNumber),
		"created_at":       r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if r.Title != "" {
		payload["title"] = r.Title
	}
	if len(r.TitleHierarchy) > 0 {
		hierarchy := make([]any, len(r.TitleHierarchy))
		for i, t := range r.TitleHierarchy {
			hierarchy[i] = t
		}
		payload["title_hierarchy"] = hierarchy
	}
	for k, v := range r.Tags {
		payload["tag_"+k] = v
	}
	return payload
}

// recordFromPayload reconstructs a record from a point payload.
func recordFromPayload(payload map[string]*qdrant.Value) Record {
	r := Record{
		DocumentID:      payload["document_id"].GetStringValue(),
		ExecutionID:     payload["execution_id"].GetStringValue(),
		Index:           payload["index"].GetStringValue(),
		FileName:        payload["file_name"].GetStringValue(),
		Text:            payload["text"].GetStringValue(),
		ArtifactKind:    payload["artifact_kind"].GetStringValue(),
		PartitionNumber: int(payload["partition_number"].GetIntegerValue()),
		SectionNumber:   int(payload["section_number"].GetIntegerValue()),
		Title:           payload["title"].GetStringValue(),
	}
	if ts := payload["created_at"].GetStringValue(); ts != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			r.CreatedAt = parsed
		}
	}
	if list := payload["title_hierarchy"].GetListValue(); list != nil {
		for _, v := range list.GetValues() {
			r.TitleHierarchy = append(r.TitleHierarchy, v.GetStringValue())
		}
	}
	for k, v := range payload {
		if len(k) > 4 && k[:4] == "tag_" {
			if r.Tags == nil {
				r.Tags = make(map[string]string)
			}
			r.Tags[k[4:]] = v.GetStringValue()
		}
	}
	return r
}

// buildFilter translates equality filters into a Qdrant must clause.
func buildFilter(f Filter) *qdrant.Filter {
	var must []*qdrant.Condition
	for field, value := range f {
		switch v := value.(type) {
		case string:
			must = append(must, qdrant.NewMatch(field, v))
		case bool:
			must = append(must, qdrant.NewMatchBool(field, v))
		case int:
			must = append(must, qdrant.NewMatchInt(field, int64(v)))
		case int64:
			must = append(must, qdrant.NewMatchInt(field, v))
		case float64:
			// Qdrant matches integers only; truncate like a JSON decode.
			must = append(must, qdrant.NewMatchInt(field, int64(v)))
		default:
			must = append(must, qdrant.NewMatch(field, fmt.Sprintf("%v", v)))
		}
	}
	return &qdrant.Filter{Must: must}
}

var _ Store = (*QdrantStore)(nil)
