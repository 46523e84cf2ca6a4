package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaceVariables(t *testing.T) {
	service := NewPromptService()

	testCases := []struct {
		name        string
		template    string
		variables   map[string]string
		expected    string
		description string
	}{
		{
			name:     "All placeholders replaced",
			template: "Review {code_chunk} written in {file_type}",
			variables: map[string]string{
				"code_chunk": "diff body",
				"file_type":  "go",
			},
			expected:    "Review diff body written in go",
			description: "Every supplied variable should be substituted",
		},
		{
			name:     "Unknown placeholder left verbatim",
			template: "Check {code_chunk} against {style_guide}",
			variables: map[string]string{
				"code_chunk": "diff body",
			},
			expected:    "Check diff body against {style_guide}",
			description: "Placeholders without a supplied value should stay in the output",
		},
		{
			name:     "Repeated placeholder replaced everywhere",
			template: "{file_type} file, really {file_type}",
			variables: map[string]string{
				"file_type": "ts",
			},
			expected:    "ts file, really ts",
			description: "All occurrences of a placeholder should be substituted",
		},
		{
			name:        "Empty variable map leaves template untouched",
			template:    "Review {code_chunk}",
			variables:   map[string]string{},
			expected:    "Review {code_chunk}",
			description: "Without variables the template should pass through",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := service.ReplaceVariables(tc.template, tc.variables)
			assert.Equal(t, tc.expected, result, tc.description)
		})
	}
}

func TestExtractVariables(t *testing.T) {
	service := NewPromptService()

	testCases := []struct {
		name     string
		template string
		expected []string
	}{
		{
			name:     "Distinct placeholders in order",
			template: "Review {code_chunk} in {file_type} with {context}",
			expected: []string{"{code_chunk}", "{file_type}", "{context}"},
		},
		{
			name:     "Duplicates collapsed",
			template: "{code_chunk} then {code_chunk} again",
			expected: []string{"{code_chunk}"},
		},
		{
			name:     "No placeholders",
			template: "Plain instructions only",
			expected: nil,
		},
		{
			name:     "Braces without identifier ignored",
			template: "JSON literal {} and {123} are not placeholders",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, service.ExtractVariables(tc.template))
		})
	}
}

func TestDefaultVariableValues(t *testing.T) {
	service := NewPromptService()

	variables := service.DefaultVariableValues("patch body", "go", "Repository: acme/widgets, PR: #7")
	assert.Equal(t, "patch body", variables["code_chunk"])
	assert.Equal(t, "go", variables["file_type"])
	assert.Equal(t, "Repository: acme/widgets, PR: #7", variables["context"])

	// Files without an extension report an explicit unknown type.
	variables = service.DefaultVariableValues("patch body", "", "ctx")
	assert.Equal(t, "unknown", variables["file_type"])
}
