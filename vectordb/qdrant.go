package vectordb

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rfpcruncher/engine/config"
	"github.com/rfpcruncher/engine/schema"
)

// QdrantProvider stores documentation chunks in a qdrant collection
// over the gRPC API.
type QdrantProvider struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// NewQdrantProvider connects to qdrant at the configured gRPC address.
func NewQdrantProvider(cfg config.VectorDBConfig) (*QdrantProvider, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant: dial %s: %w", addr, err)
	}
	return &QdrantProvider{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  cfg.Collection,
	}, nil
}

func (p *QdrantProvider) GetProviderType() string { return "qdrant" }

// Init creates the collection with cosine distance if it does not exist.
func (p *QdrantProvider) Init(ctx context.Context, dimensions int) error {
	list, err := p.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("qdrant: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == p.collection {
			return nil
		}
	}

	_, err = p.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: p.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dimensions),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: create collection %s: %w", p.collection, err)
	}
	return nil
}

func (p *QdrantProvider) AddDocs(ctx context.Context, docs []schema.Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(docs))
	for i, doc := range docs {
		payload := make(map[string]*pb.Value, len(doc.Metadata)+1)
		payload["content"] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: doc.Content}}
		for k, v := range doc.Metadata {
			payload[k] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: v}}
		}

		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: doc.ID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: doc.Vector},
				},
			},
			Payload: payload,
		}
	}

	wait := true
	_, err := p.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: p.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert %d points: %w", len(docs), err)
	}
	return nil
}

func (p *QdrantProvider) SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error) {
	topK := 10
	var threshold float64
	if opts != nil {
		if opts.TopK > 0 {
			topK = opts.TopK
		}
		threshold = opts.Threshold
	}

	req := &pb.SearchPoints{
		CollectionName: p.collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	}
	if opts != nil && len(opts.Filters) > 0 {
		must := make([]*pb.Condition, 0, len(opts.Filters))
		for k, v := range opts.Filters {
			must = append(must, fieldMatch(k, v))
		}
		req.Filter = &pb.Filter{Must: must}
	}

	resp, err := p.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("qdrant: search: %w", err)
	}

	out := make([]schema.SearchResult, 0, len(resp.GetResult()))
	for _, r := range resp.GetResult() {
		score := float64(r.GetScore())
		if score < threshold {
			continue
		}

		doc := schema.Document{
			ID:       r.GetId().GetUuid(),
			Metadata: make(map[string]string),
		}
		for k, v := range r.GetPayload() {
			s := v.GetStringValue()
			if k == "content" {
				doc.Content = s
				continue
			}
			doc.Metadata[k] = s
		}
		out = append(out, schema.SearchResult{Document: doc, Score: score})
	}
	return out, nil
}

func (p *QdrantProvider) DeleteBySource(ctx context.Context, source string) error {
	wait := true
	_, err := p.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: p.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{
					Must: []*pb.Condition{
						fieldMatch("source_file", source),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: delete by source %s: %w", source, err)
	}
	return nil
}

func (p *QdrantProvider) Close() error {
	return p.conn.Close()
}

func fieldMatch(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}
