package main

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/tmc/langchaingo/llms"
)

// getAvailableTokensFor calculates how many tokens are left for the value
// of key by rendering the template with that value empty and counting tokens.
// It returns -1 when no limit is configured.
func getAvailableTokensFor(tmpl *template.Template, data map[string]interface{}, key string) (int, error) {
	if tokenLimit <= 0 {
		return -1, nil
	}

	templateData := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		templateData[k] = v
	}
	templateData[key] = ""

	var promptBuffer bytes.Buffer
	if err := tmpl.Execute(&promptBuffer, templateData); err != nil {
		return 0, fmt.Errorf("error executing template: %v", err)
	}

	promptTokens := getTokenCount(promptBuffer.String())
	log.Debugf("Prompt template uses %d tokens", promptTokens)

	// Safety margin
	promptTokens += 10

	availableTokens := tokenLimit - promptTokens
	if availableTokens < 0 {
		return 0, fmt.Errorf("prompt template exceeds token limit")
	}
	return availableTokens, nil
}

func getTokenCount(content string) int {
	return llms.CountTokens(llmModel, content)
}

// truncateContentByTokens truncates content so that its token count does not exceed availableTokens.
// It binary searches over runes for the longest prefix within the limit.
// A negative availableTokens returns content unchanged.
func truncateContentByTokens(content string, availableTokens int) (string, error) {
	if availableTokens < 0 || tokenLimit <= 0 {
		return content, nil
	}
	if getTokenCount(content) <= availableTokens {
		return content, nil
	}

	runes := []rune(content)
	low, high, validCut := 0, len(runes), 0
	for low <= high {
		mid := (low + high) / 2
		if getTokenCount(string(runes[:mid])) <= availableTokens {
			validCut = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	truncated := string(runes[:validCut])
	if getTokenCount(truncated) > availableTokens {
		return "", fmt.Errorf("truncated content still exceeds the available token limit")
	}
	log.Debugf("Truncated content from %d to %d runes", len(runes), validCut)
	return truncated, nil
}
