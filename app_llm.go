package main

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

var unsafeTopicChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// topicPromptData builds the data the topic template is executed with.
func topicPromptData(subjectCode, syllabus, question string) map[string]interface{} {
	return map[string]interface{}{
		"SubjectCode": subjectCode,
		"Syllabus":    syllabus,
		"Content":     question,
	}
}

// getSuggestedTopics asks the LLM which major syllabus topics a question
// covers. An empty result means no topic applies.
func (app *App) getSuggestedTopics(ctx context.Context, subjectCode, syllabus, question string) ([]string, error) {
	templateMutex.RLock()
	defer templateMutex.RUnlock()

	data := topicPromptData(subjectCode, "", question)
	available, err := getAvailableTokensFor(topicTemplate, data, "Syllabus")
	if err != nil {
		return nil, fmt.Errorf("error calculating available tokens: %w", err)
	}
	truncated, err := truncateContentByTokens(syllabus, available)
	if err != nil {
		return nil, fmt.Errorf("error truncating syllabus: %w", err)
	}
	data["Syllabus"] = truncated

	var promptBuffer bytes.Buffer
	if err := topicTemplate.Execute(&promptBuffer, data); err != nil {
		return nil, fmt.Errorf("error executing topic template: %v", err)
	}
	prompt := promptBuffer.String()
	log.Debugf("Topic prompt: %s", prompt)

	completion, err := app.LLM.GenerateContent(ctx, []llms.MessageContent{
		{
			Parts: []llms.ContentPart{
				llms.TextContent{
					Text: prompt,
				},
			},
			Role: llms.ChatMessageTypeHuman,
		},
	}, llms.WithTemperature(0.2))
	if err != nil {
		return nil, fmt.Errorf("error getting response from LLM: %v", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}
	return parseTopics(completion.Choices[0].Content), nil
}

// parseTopics splits a comma-separated topic answer into folder-safe
// names. "None" yields no topics.
func parseTopics(response string) []string {
	response = strings.TrimSpace(strings.Trim(strings.TrimSpace(response), "\"'`"))
	if response == "" || strings.EqualFold(response, "none") {
		return nil
	}

	seen := map[string]bool{}
	var topics []string
	for _, t := range strings.Split(response, ",") {
		t = strings.TrimSpace(unsafeTopicChars.ReplaceAllString(t, ""))
		if t == "" || strings.EqualFold(t, "none") || seen[t] {
			continue
		}
		seen[t] = true
		topics = append(topics, t)
	}
	return topics
}
