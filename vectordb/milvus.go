package vectordb

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/rfpcruncher/engine/config"
	"github.com/rfpcruncher/engine/schema"
)

const (
	milvusFieldID         = "id"
	milvusFieldContent    = "content"
	milvusFieldSource     = "source_file"
	milvusFieldChunkIndex = "chunk_index"
	milvusFieldVector     = "vector"

	milvusMaxIDLength      = 128
	milvusMaxContentLength = 8192
	milvusMaxSourceLength  = 512
)

// MilvusProvider stores documentation chunks in a milvus collection.
type MilvusProvider struct {
	c          client.Client
	collection string
	dimensions int
}

// NewMilvusProvider connects to milvus using the configured address.
func NewMilvusProvider(cfg config.VectorDBConfig) (*MilvusProvider, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	c, err := client.NewClient(context.Background(), client.Config{
		Address:  addr,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("milvus: connect %s: %w", addr, err)
	}
	return &MilvusProvider{c: c, collection: cfg.Collection}, nil
}

func (p *MilvusProvider) GetProviderType() string { return "milvus" }

// Init creates the collection and HNSW index if they do not exist,
// then loads the collection for search.
func (p *MilvusProvider) Init(ctx context.Context, dimensions int) error {
	p.dimensions = dimensions

	has, err := p.c.HasCollection(ctx, p.collection)
	if err != nil {
		return fmt.Errorf("milvus: check collection %s: %w", p.collection, err)
	}
	if !has {
		sch := entity.NewSchema().
			WithName(p.collection).
			WithField(entity.NewField().
				WithName(milvusFieldID).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(milvusMaxIDLength).
				WithIsPrimaryKey(true)).
			WithField(entity.NewField().
				WithName(milvusFieldContent).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(milvusMaxContentLength)).
			WithField(entity.NewField().
				WithName(milvusFieldSource).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(milvusMaxSourceLength)).
			WithField(entity.NewField().
				WithName(milvusFieldChunkIndex).
				WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().
				WithName(milvusFieldVector).
				WithDataType(entity.FieldTypeFloatVector).
				WithDim(int64(dimensions)))

		if err := p.c.CreateCollection(ctx, sch, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("milvus: create collection %s: %w", p.collection, err)
		}

		idx, err := entity.NewIndexHNSW(entity.COSINE, 8, 200)
		if err != nil {
			return fmt.Errorf("milvus: build index definition: %w", err)
		}
		if err := p.c.CreateIndex(ctx, p.collection, milvusFieldVector, idx, false); err != nil {
			return fmt.Errorf("milvus: create index on %s: %w", p.collection, err)
		}
	}

	if err := p.c.LoadCollection(ctx, p.collection, false); err != nil {
		return fmt.Errorf("milvus: load collection %s: %w", p.collection, err)
	}
	return nil
}

func (p *MilvusProvider) AddDocs(ctx context.Context, docs []schema.Document) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]string, len(docs))
	contents := make([]string, len(docs))
	sources := make([]string, len(docs))
	chunkIdx := make([]int64, len(docs))
	vectors := make([][]float32, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
		contents[i] = doc.Content
		sources[i] = doc.Metadata[milvusFieldSource]
		chunkIdx[i] = parseChunkIndex(doc.Metadata[milvusFieldChunkIndex])
		vectors[i] = doc.Vector
	}

	dim := p.dimensions
	if dim == 0 && len(vectors) > 0 {
		dim = len(vectors[0])
	}

	_, err := p.c.Upsert(ctx, p.collection, "",
		entity.NewColumnVarChar(milvusFieldID, ids),
		entity.NewColumnVarChar(milvusFieldContent, contents),
		entity.NewColumnVarChar(milvusFieldSource, sources),
		entity.NewColumnInt64(milvusFieldChunkIndex, chunkIdx),
		entity.NewColumnFloatVector(milvusFieldVector, dim, vectors),
	)
	if err != nil {
		return fmt.Errorf("milvus: upsert %d docs: %w", len(docs), err)
	}
	return nil
}

func (p *MilvusProvider) SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error) {
	topK := 10
	var threshold float64
	if opts != nil {
		if opts.TopK > 0 {
			topK = opts.TopK
		}
		threshold = opts.Threshold
	}

	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("milvus: build search params: %w", err)
	}

	res, err := p.c.Search(ctx, p.collection, nil, "",
		[]string{milvusFieldContent, milvusFieldSource, milvusFieldChunkIndex},
		[]entity.Vector{entity.FloatVector(vector)},
		milvusFieldVector, entity.COSINE, topK, sp)
	if err != nil {
		return nil, fmt.Errorf("milvus: search %s: %w", p.collection, err)
	}
	if len(res) == 0 {
		return nil, nil
	}

	rs := res[0]
	out := make([]schema.SearchResult, 0, rs.ResultCount)
	for i := 0; i < rs.ResultCount; i++ {
		score := float64(rs.Scores[i])
		if score < threshold {
			continue
		}

		doc := schema.Document{Metadata: make(map[string]string)}
		if rs.IDs != nil {
			if id, err := rs.IDs.GetAsString(i); err == nil {
				doc.ID = id
			}
		}
		if col := rs.Fields.GetColumn(milvusFieldContent); col != nil {
			if v, err := col.GetAsString(i); err == nil {
				doc.Content = v
			}
		}
		if col := rs.Fields.GetColumn(milvusFieldSource); col != nil {
			if v, err := col.GetAsString(i); err == nil {
				doc.Metadata[milvusFieldSource] = v
			}
		}
		if col := rs.Fields.GetColumn(milvusFieldChunkIndex); col != nil {
			if v, err := col.GetAsInt64(i); err == nil {
				doc.Metadata[milvusFieldChunkIndex] = fmt.Sprintf("%d", v)
			}
		}
		out = append(out, schema.SearchResult{Document: doc, Score: score})
	}
	return out, nil
}

func (p *MilvusProvider) DeleteBySource(ctx context.Context, source string) error {
	expr := fmt.Sprintf("%s == %q", milvusFieldSource, source)
	if err := p.c.Delete(ctx, p.collection, "", expr); err != nil {
		return fmt.Errorf("milvus: delete by source %s: %w", source, err)
	}
	return nil
}

func (p *MilvusProvider) Close() error {
	return p.c.Close()
}

func parseChunkIndex(s string) int64 {
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int64(r-'0')
	}
	return n
}
