package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	original := logLevel
	t.Cleanup(func() {
		logLevel = original
		initLogger()
	})

	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"", logrus.InfoLevel},
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
	}
	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			logLevel = tc.level
			initLogger()
			assert.Equal(t, tc.want, log.GetLevel())
		})
	}
}

func TestEnvParsing(t *testing.T) {
	t.Setenv("QB_TEST_INT", "1500")
	t.Setenv("QB_TEST_BAD", "lots")
	t.Setenv("QB_TEST_FLOAT", "2.5")

	assert.Equal(t, 1500, envInt("QB_TEST_INT", 0))
	assert.Equal(t, 7, envInt("QB_TEST_BAD", 7))
	assert.Equal(t, 7, envInt("QB_TEST_UNSET", 7))
	assert.Equal(t, 2.5, envFloat("QB_TEST_FLOAT", 0))
	assert.Equal(t, 1.0, envFloat("QB_TEST_BAD", 1))
	assert.Equal(t, "fallback", envOrDefault("QB_TEST_UNSET", "fallback"))
	assert.Equal(t, "1500", envOrDefault("QB_TEST_INT", "fallback"))
}

func TestLoadTemplates(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	original := topicTemplate
	t.Cleanup(func() { topicTemplate = original })

	require.NoError(t, loadTemplates())
	data, err := os.ReadFile(filepath.Join("prompts", "topic_prompt.tmpl"))
	require.NoError(t, err)
	assert.Equal(t, defaultTopicTemplate, string(data))

	custom := "Subject {{.SubjectCode | upper}}: {{.Content}}"
	require.NoError(t, os.WriteFile(filepath.Join("prompts", "topic_prompt.tmpl"), []byte(custom), 0644))
	require.NoError(t, loadTemplates())
	assert.Equal(t, "topic", topicTemplate.Name())

	require.NoError(t, os.WriteFile(filepath.Join("prompts", "topic_prompt.tmpl"), []byte("{{.Content"), 0644))
	assert.Error(t, loadTemplates())
}

func TestCreateLLMErrors(t *testing.T) {
	saved := []*string{&llmProvider, &llmModel, &openaiAPIKey, &openaiBaseURL, &googleAIAPIKey}
	values := make([]string, len(saved))
	for i, p := range saved {
		values[i] = *p
	}
	t.Cleanup(func() {
		for i, p := range saved {
			*p = values[i]
		}
	})

	tests := []struct {
		name     string
		provider string
		model    string
		openai   string
	}{
		{"missing model", "openai", "", "key"},
		{"openai without key or base URL", "openai", "gpt-4o-mini", ""},
		{"googleai without key", "googleai", "gemini-2.5-flash", ""},
		{"unknown provider", "tongyi", "qwen", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			llmProvider, llmModel, openaiAPIKey = tc.provider, tc.model, tc.openai
			openaiBaseURL, googleAIAPIKey = "", ""
			_, err := createLLM(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestCreateLLMWrapsProvider(t *testing.T) {
	savedProvider, savedModel, savedKey, savedURL := llmProvider, llmModel, openaiAPIKey, openaiBaseURL
	t.Cleanup(func() {
		llmProvider, llmModel, openaiAPIKey, openaiBaseURL = savedProvider, savedModel, savedKey, savedURL
	})

	llmProvider, llmModel, openaiAPIKey, openaiBaseURL = "openai", "local-model", "", "http://127.0.0.1:1234/v1"
	model, err := createLLM(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &RateLimitedLLM{}, model)
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	err := run(context.Background(), "frobnicate", nil)
	assert.Error(t, err)
}
