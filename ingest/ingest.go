package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/rfpcruncher/engine/common/logger"
	"github.com/rfpcruncher/engine/embedding"
	"github.com/rfpcruncher/engine/metrics"
	"github.com/rfpcruncher/engine/schema"
	"github.com/rfpcruncher/engine/vectordb"
)

// idNamespace makes chunk ids deterministic per source file and index,
// so re-ingesting a document upserts instead of duplicating.
var idNamespace = uuid.MustParse("7c9e6d1a-4b2f-4f3a-9c1d-2e8b5a6f0d43")

// Ingestor turns PDF documentation into embedded chunks in the vector store.
type Ingestor struct {
	Embed     embedding.Provider
	Store     vectordb.VectorStoreProvider
	ChunkSize int
}

// IngestPDF extracts the text of a PDF, splits it into chunks, embeds each
// chunk and upserts the batch. Existing chunks of the same source file are
// removed first so a re-ingest never leaves stale chunks behind. Returns
// the number of chunks written.
func (in *Ingestor) IngestPDF(ctx context.Context, path string) (int, error) {
	source := filepath.Base(path)
	logger.Infof("ingest: extracting text from %s", source)

	text, err := ExtractPDFText(path)
	if err != nil {
		return 0, fmt.Errorf("ingest: extract %s: %w", source, err)
	}
	chunks := SplitText(text, in.ChunkSize)
	if len(chunks) == 0 {
		logger.Warnf("ingest: %s produced no chunks", source)
		return 0, nil
	}

	docs := make([]schema.Document, 0, len(chunks))
	for j, chunk := range chunks {
		vec, err := in.Embed.GetEmbedding(ctx, chunk)
		if err != nil {
			return 0, fmt.Errorf("ingest: embed chunk %d of %s: %w", j, source, err)
		}
		docs = append(docs, schema.Document{
			ID:      ChunkID(source, j),
			Content: chunk,
			Vector:  vec,
			Metadata: map[string]string{
				"source_file": source,
				"chunk_index": strconv.Itoa(j),
			},
		})
	}

	if err := in.Store.DeleteBySource(ctx, source); err != nil {
		return 0, fmt.Errorf("ingest: clear previous chunks of %s: %w", source, err)
	}
	if err := in.Store.AddDocs(ctx, docs); err != nil {
		return 0, fmt.Errorf("ingest: store chunks of %s: %w", source, err)
	}

	metrics.AddIngestedChunks(source, len(docs))
	logger.Infof("ingest: stored %d chunks from %s", len(docs), source)
	return len(docs), nil
}

// ChunkID derives a stable id from the source file name and chunk index.
func ChunkID(source string, index int) string {
	return uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("%s_%d", source, index))).String()
}

// ExtractPDFText reads the plain text of every page of a PDF.
func ExtractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}
