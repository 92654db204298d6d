package rag

import (
	"fmt"
	"strings"

	"github.com/askdocs/askdocs/internal/users"
)

// BuildPrompt assembles the instruction prompt for the model from the
// user's question, the retrieved chunks, and the user's location.
func BuildPrompt(query string, chunks []RetrievedChunk, loc users.Location) string {
	locationContext := ""
	if loc.Country != "" {
		if loc.State != "" {
			locationContext = fmt.Sprintf("\nUser location: %s, %s", loc.State, loc.Country)
		} else {
			locationContext = fmt.Sprintf("\nUser location: %s", loc.Country)
		}
	}

	if len(chunks) == 0 {
		return fmt.Sprintf(`You are AskDocs, a document Q&A assistant.%s

The user asked: %q

No relevant information was found in the user's uploaded documents. Let the user know politely that their documents don't seem to contain information related to their question. Suggest they upload relevant documents or rephrase their question.`, locationContext, query)
	}

	sources := make([]string, len(chunks))
	for i, chunk := range chunks {
		sources[i] = fmt.Sprintf("[Source %d: %s, chunk %d]\n%s", i+1, chunk.DocumentName, chunk.ChunkIndex, chunk.Content)
	}
	sourcesBlock := strings.Join(sources, "\n\n")

	return fmt.Sprintf(`You are AskDocs, a document Q&A assistant. You have access to the user's uploaded documents (provided as numbered sources below) and Google Search for current information.%s

RULES:
1. Answer the user's question primarily from the provided document sources.
2. When the question touches on legal, regulatory, financial, or compliance matters — use Google Search to find current laws and regulations applicable to the user's location.
3. Clearly distinguish between what the DOCUMENT says and what CURRENT LAW/REGULATION says.
4. Cite every claim from documents using the format [Source N] where N matches the source number.
5. Format web references as [Web: source name].
6. If document content conflicts with current regulations, flag it explicitly.
7. If the sources don't contain enough information to fully answer, say so honestly.
8. Always include a brief disclaimer when providing legal or financial context: "This is informational only, not legal/financial advice."
9. Keep answers clear and concise. Use short paragraphs.

DOCUMENT SOURCES:
%s

USER QUESTION: %s`, locationContext, sourcesBlock, query)
}
