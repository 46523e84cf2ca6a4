package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codedoctor/codedoctor/pkg/config"
	"github.com/codedoctor/codedoctor/pkg/logger"
	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are an automated senior code reviewer. You evaluate code changes
and respond with a single JSON object, no markdown fencing and no prose, matching:
{
  "scores": {
    "correctness": 0-10,
    "security": 0-10,
    "maintainability": 0-10,
    "clarity": 0-10,
    "production_readiness": 0-10
  },
  "justification": {
    "correctness": "...",
    "security": "...",
    "maintainability": "...",
    "clarity": "...",
    "production_readiness": "..."
  },
  "overall_summary": "..."
}`

const defaultEvaluationPrompt = `Review the code changes for correctness, security,
maintainability, clarity and production readiness. Be specific and reference the
changed lines where possible.`

const promptBody = `{user_evaluation_prompt}

Code changes to review:
{code_changes}`

const maxGenerateAttempts = 3

// OpenAIService generates code reviews through the OpenAI chat API
type OpenAIService struct {
	client *openai.Client
	model  string
}

func NewOpenAIService() *OpenAIService {
	cfg := config.AppConfig.OpenAI
	return &OpenAIService{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
	}
}

// Model returns the configured model name, recorded as evaluation metadata
func (s *OpenAIService) Model() string {
	return s.model
}

// GenerateReview sends the compiled evaluation prompt and the code
// changes to the model and returns the decoded JSON response as a
// loose key-value tree. The result is never trusted directly; callers
// pass it through the normalizer. Failed attempts are retried up to
// three times.
func (s *OpenAIService) GenerateReview(ctx context.Context, evaluationPrompt, codeChanges string) (map[string]interface{}, error) {
	userPrompt := buildUserPrompt(evaluationPrompt, codeChanges)

	var lastErr error
	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		result, err := s.requestReview(ctx, userPrompt)
		if err == nil {
			return result, nil
		}

		lastErr = err
		logger.WithError(err).Warnf("Review generation attempt %d/%d failed", attempt, maxGenerateAttempts)

		if ctx.Err() != nil {
			break
		}
	}

	return nil, lastErr
}

func (s *OpenAIService) requestReview(ctx context.Context, userPrompt string) (map[string]interface{}, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	text := stripMarkdownFencing(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, fmt.Errorf("chat completion returned empty content")
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("failed to parse review response as JSON: %w", err)
	}

	return result, nil
}

func buildUserPrompt(evaluationPrompt, codeChanges string) string {
	if evaluationPrompt == "" {
		evaluationPrompt = defaultEvaluationPrompt
	}

	body := strings.ReplaceAll(promptBody, "{user_evaluation_prompt}", evaluationPrompt)
	return strings.ReplaceAll(body, "{code_changes}", codeChanges)
}

// stripMarkdownFencing removes a ``` fence when a model wraps its JSON
// despite the instructions
func stripMarkdownFencing(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.SplitN(text, "\n", 2)
	if len(lines) > 1 {
		text = lines[1]
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
