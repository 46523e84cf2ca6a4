package services

import (
	"regexp"
	"strings"
)

// PromptService compiles agent prompt templates. Placeholders use the
// form {identifier} and are replaced literally; placeholders with no
// supplied value stay in the output untouched.
type PromptService struct{}

func NewPromptService() *PromptService {
	return &PromptService{}
}

var variablePattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// ExtractVariables returns the deduplicated placeholder tokens found
// in a template, each in the form "{name}". The dashboard uses this to
// surface editable slots.
func (s *PromptService) ExtractVariables(template string) []string {
	matches := variablePattern.FindAllStringSubmatch(template, -1)

	seen := make(map[string]bool)
	var variables []string
	for _, match := range matches {
		token := "{" + match[1] + "}"
		if !seen[token] {
			seen[token] = true
			variables = append(variables, token)
		}
	}

	return variables
}

// ReplaceVariables substitutes each supplied variable across all of
// its occurrences in the template.
func (s *PromptService) ReplaceVariables(template string, variables map[string]string) string {
	result := template
	for key, value := range variables {
		result = strings.ReplaceAll(result, "{"+key+"}", value)
	}
	return result
}

// DefaultVariableValues builds the fixed variable set the webhook path
// supplies per file, regardless of what the template declares.
func (s *PromptService) DefaultVariableValues(codeChunk, fileType, context string) map[string]string {
	if fileType == "" {
		fileType = "unknown"
	}

	return map[string]string{
		"code_chunk": codeChunk,
		"file_type":  fileType,
		"context":    context,
	}
}
