package usecase

import (
	"fmt"
	"strings"
)

// truncate cuts text to at most limit runes.
func truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func documentBlock(text string, limit int) string {
	return "Document Content:\n```\n" + truncate(text, limit) + "...\n```"
}

func buildClassificationPrompt(candidates []string, fallback, text string, limit int) string {
	return fmt.Sprintf(
		"Classify the following document content into one of these specific types: %s, "+
			"or '%s' if it doesn't clearly fit any of the specific categories.\n\n"+
			"Guidelines:\n"+
			"- Choose a specific type only if the document clearly matches that category\n"+
			"- Use '%s' for documents like letters, memos, presentations, manuals, forms, or any general business documents\n"+
			"- Provide high confidence (0.8+) for clear matches, medium confidence (0.5-0.7) for likely matches, "+
			"and lower confidence (0.3-0.5) for uncertain classifications\n\n"+
			"Provide your answer as a JSON object with 'type' and 'confidence' (0.0 to 1.0).\n\n%s",
		strings.Join(candidates, ", "), fallback, fallback, documentBlock(text, limit),
	)
}

func buildExtractionPrompt(docType string, fields []string, text string, limit int) string {
	return fmt.Sprintf(
		"Extract the following key information from the %s document content provided: %s. "+
			"Provide your answer as a JSON object. For each field, provide the extracted value. "+
			"If a field is not found, include it with a null value. %s",
		docType, strings.Join(fields, ", "), documentBlock(text, limit),
	)
}

func buildDiscoveryPrompt(text string, limit int) string {
	return "Analyze this document and identify the 3-5 most important pieces of information " +
		"that should be extracted as metadata. Consider things like: titles, authors, dates, " +
		"key topics, purposes, important names, deadlines, or other significant details.\n\n" +
		"Respond with a JSON object containing:\n" +
		"1. 'suggested_fields': a list of field names that would be most valuable to extract\n" +
		"2. 'document_summary': a brief 1-2 sentence summary of what this document is about\n\n" +
		documentBlock(text, limit)
}

func buildContextualExtractionPrompt(fields []string, summary, text string, limit int) string {
	return fmt.Sprintf(
		"Extract the following information from this document: %s.\n\n"+
			"Provide your answer as a JSON object. For each field, provide the extracted value. "+
			"If a field is not found or not applicable, include it with a null value.\n\n"+
			"Additional context: %s\n\n%s",
		strings.Join(fields, ", "), summary, documentBlock(text, limit),
	)
}
