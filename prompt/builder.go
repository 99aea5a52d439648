package prompt

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/rfpcruncher/engine/common/logger"
)

// ContextSeparator joins retrieved chunks inside the prompt. It is a
// visible part of the prompt contract, not an implementation detail.
const ContextSeparator = "\n\n---\n\n"

// EnrichmentDelimiter marks where the model's enriched text starts.
// CLI backends echo the prompt, so output is split on the last occurrence.
const EnrichmentDelimiter = "Enriched Answer:"

const globalInstruction = `You are a professional assistant representing the platform vendor, responding to a customer's product query.
The response should directly explain the features and capabilities of the platform in a structured, professional tone.
The answer must address the query as if it is coming directly from a product specialist.
All responses should follow this structure:
1. Highlight specific platform features or technical capabilities that address the query.
2. Provide detailed insights into how the feature is implemented (e.g., frameworks, technologies used, compatibility).
Limit the response to 75 words, avoid repeating information, and ensure clarity and professionalism.
Make the response comprehensive by addressing all the components asked in the query.
Tailor the response to the query asked. If the context does not explicitly confirm a feature or functionality, avoid assuming or mentioning it in the response.`

const closingDirective = `Based strictly on the above context, provide a professional, accurate response. Do not assume or infer any functionality not explicitly mentioned.`

// labelInstructions holds the per-label prompt fragments. An unknown
// label contributes nothing to the prompt.
var labelInstructions = map[string]string{
	"Technical": "Deliver a clear and concise response tailored to the query, highlighting relevant platform features. " +
		"Provide insights into how these capabilities address the customer's technical requirements.",
	"Functional": "Highlight the platform's functional capabilities relevant to the query, including workflows, configuration options and user-facing behavior. " +
		"Provide insights into how these features support the customer's business processes.",
}

// Labels returns the known category labels.
func Labels() []string {
	return []string{"Technical", "Functional"}
}

// Builder assembles generation, enrichment and verification prompts.
// It is pure: identical inputs yield identical prompts. MaxContextTokens
// bounds the context block; zero disables truncation.
type Builder struct {
	MaxContextTokens int

	encOnce sync.Once
	enc     *tiktoken.Tiktoken
}

// Generation builds the prompt for answering a query over retrieved chunks.
func (b *Builder) Generation(query, label string, chunks []string) string {
	contextText := b.fitToBudget(strings.Join(chunks, ContextSeparator))

	var sb strings.Builder
	sb.WriteString(globalInstruction)
	sb.WriteString("\n\n")
	if frag, ok := labelInstructions[label]; ok {
		sb.WriteString(frag)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Query: ")
	sb.WriteString(query)
	sb.WriteString("\n\nContext:\n")
	sb.WriteString(contextText)
	sb.WriteString("\n\n")
	sb.WriteString(closingDirective)
	return sb.String()
}

// Enrichment builds the prompt that refines a cached answer. The model is
// expected to continue after EnrichmentDelimiter.
func (b *Builder) Enrichment(query, baseAnswer string) string {
	var sb strings.Builder
	sb.WriteString(globalInstruction)
	sb.WriteString("\n\nQuery: ")
	sb.WriteString(query)
	sb.WriteString("\n\nOriginal Answer:\n")
	sb.WriteString(baseAnswer)
	sb.WriteString("\n\n")
	sb.WriteString(EnrichmentDelimiter)
	sb.WriteString("\n")
	return sb.String()
}

// Verification builds the one-word verification prompt.
func (b *Builder) Verification(question, answer string, chunks []string) string {
	contextText := b.fitToBudget(strings.Join(chunks, ContextSeparator))

	var sb strings.Builder
	sb.WriteString("You are a strict reviewer checking a generated answer against product documentation.\n\n")
	sb.WriteString("Context:\n")
	sb.WriteString(contextText)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\nBased on the context above, determine if the following answer is correct:\n\nAnswer:\n")
	sb.WriteString(answer)
	sb.WriteString("\n\n")
	sb.WriteString(`Reply with only one word: "correct" if the answer matches the context and answers the question correctly, "incorrect" if the answer contradicts the context and does not answer the question correctly, or "uncertain" if there is not enough information in the context to verify the answer.`)
	return sb.String()
}

// fitToBudget truncates text to MaxContextTokens using the cl100k_base
// encoding. If the encoder cannot be built the text passes through.
func (b *Builder) fitToBudget(text string) string {
	if b.MaxContextTokens <= 0 || text == "" {
		return text
	}

	b.encOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			logger.Warnf("prompt: tokenizer unavailable, context budget disabled: %v", err)
			return
		}
		b.enc = enc
	})
	if b.enc == nil {
		return text
	}

	ids := b.enc.Encode(text, nil, nil)
	if len(ids) <= b.MaxContextTokens {
		return text
	}
	truncated := b.enc.Decode(ids[:b.MaxContextTokens])
	logger.Debugf("prompt: context truncated from %d to %d tokens", len(ids), b.MaxContextTokens)
	return truncated
}

// Validate rejects prompts the backend cannot take, used by batch intake.
func Validate(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("prompt: empty query")
	}
	return nil
}
