package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationSectionsInOrder(t *testing.T) {
	b := &Builder{}
	p := b.Generation("What is SSO?", "Technical", []string{"chunk one", "chunk two"})

	idxGlobal := strings.Index(p, "product specialist")
	idxLabel := strings.Index(p, labelInstructions["Technical"])
	idxQuery := strings.Index(p, "Query: What is SSO?")
	idxContext := strings.Index(p, "chunk one")
	idxClosing := strings.Index(p, closingDirective)

	require.True(t, idxGlobal >= 0)
	require.True(t, idxLabel > idxGlobal)
	require.True(t, idxQuery > idxLabel)
	require.True(t, idxContext > idxQuery)
	require.True(t, idxClosing > idxContext)
}

func TestGenerationJoinsChunksWithSeparator(t *testing.T) {
	b := &Builder{}
	p := b.Generation("q", "Technical", []string{"alpha", "beta", "gamma"})
	assert.Contains(t, p, "alpha"+ContextSeparator+"beta"+ContextSeparator+"gamma")
}

func TestGenerationUnknownLabelOmitted(t *testing.T) {
	b := &Builder{}
	withLabel := b.Generation("q", "Technical", []string{"c"})
	without := b.Generation("q", "NoSuchLabel", []string{"c"})

	assert.Contains(t, withLabel, labelInstructions["Technical"])
	assert.NotContains(t, without, labelInstructions["Technical"])
	assert.NotContains(t, without, labelInstructions["Functional"])
}

func TestGenerationIsPure(t *testing.T) {
	b := &Builder{}
	p1 := b.Generation("q", "Functional", []string{"a", "b"})
	p2 := b.Generation("q", "Functional", []string{"a", "b"})
	assert.Equal(t, p1, p2)
}

func TestEnrichmentEndsWithDelimiter(t *testing.T) {
	b := &Builder{}
	p := b.Enrichment("the query", "the cached answer")

	assert.Contains(t, p, "Original Answer:\nthe cached answer")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(p), EnrichmentDelimiter))
}

func TestVerificationMentionsProtocol(t *testing.T) {
	b := &Builder{}
	p := b.Verification("the question", "the answer", []string{"doc chunk"})

	assert.Contains(t, p, "doc chunk")
	assert.Contains(t, p, "the question")
	assert.Contains(t, p, "the answer")
	assert.Contains(t, p, `"correct"`)
	assert.Contains(t, p, `"incorrect"`)
	assert.Contains(t, p, `"uncertain"`)
}

func TestContextBudgetTruncates(t *testing.T) {
	b := &Builder{MaxContextTokens: 8}
	long := strings.Repeat("documentation chunk with many words ", 50)
	p := b.Generation("q", "", []string{long})

	assert.Less(t, len(p), len(long))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("a question"))
	assert.Error(t, Validate("   "))
}
