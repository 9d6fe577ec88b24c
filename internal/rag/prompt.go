package rag

import (
	"fmt"
	"strings"
)

// NoAnswerSentence is what the model is told to reply when the PDF context
// does not contain the answer.
const NoAnswerSentence = "I don't have enough information to answer this question based on the uploaded PDF."

const markdownGuide = `Format your response using markdown:
- Use **bold** for important terms or key points
- Use headings (## Heading) to organize different sections
- Use --- to separate major sections (horizontal rule)
- Use bullet points (-) for lists
- Keep paragraphs concise and well-structured`

var (
	PDFSystemPrompt = "You are a helpful assistant that answers questions based on the provided context from a PDF document.\n" +
		"Answer the question using only the information from the context. If the answer is not in the context, say \"" +
		NoAnswerSentence + "\"\n\n" + markdownGuide + "\n\nBe concise and accurate."

	WebSystemPrompt = "You are a helpful assistant that answers questions based on web search results.\n" +
		"Use the search results provided to answer the user's question. Cite sources when relevant.\n\n" +
		markdownGuide + "\n\nBe concise and accurate."

	WebFallbackSystemPrompt = "You are a helpful assistant. The web search did not return results, but try to provide " +
		"a helpful answer based on your knowledge. If you cannot provide accurate information, let the user know.\n\n" +
		markdownGuide
)

// WebResult is the subset of a search hit used to build a prompt.
type WebResult struct {
	Title string
	Body  string
	URL   string
}

// BuildPDFPrompt returns the system and user prompts for a PDF question.
// The retrieved chunks are joined best first.
func BuildPDFPrompt(hits []ScoredChunk, question string) (system, user string) {
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = h.Content
	}
	return PDFSystemPrompt, fmt.Sprintf("Context from PDF:\n%s\n\nQuestion: %s\n\nAnswer:", strings.Join(parts, "\n\n"), question)
}

// BuildWebPrompt returns the system and user prompts for a web question.
// Without results the fallback prompt asks the model to answer from its own knowledge.
func BuildWebPrompt(results []WebResult, question string) (system, user string) {
	if len(results) == 0 {
		return WebFallbackSystemPrompt, fmt.Sprintf(
			"Question: %s\n\nPlease provide a helpful answer. Note that web search results were not available.", question)
	}

	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("Result %d:\nTitle: %s\nContent: %s\nURL: %s", i+1, r.Title, r.Body, r.URL)
	}
	return WebSystemPrompt, fmt.Sprintf("Web Search Results:\n%s\n\nQuestion: %s\n\nAnswer:", strings.Join(parts, "\n\n"), question)
}
