package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const categorizeYAML = `
type: categorize
objective: Clasificar posts de un blog personal
persona: Eres un bibliotecario meticuloso
instructions: |
  Asigna una categoría al texto. Las categorías permitidas son: %CATEGORIES%.
output_format: |
  Responde con JSON: {"category": "...", "reason": "..."}
categories:
  - tecnología
  - cultura
  - otros
params:
  temperature: 0.2
  max_tokens: 256
`

func TestParse(t *testing.T) {
	t.Run("substitutes vocabulary placeholders", func(t *testing.T) {
		tmpl, err := Parse([]byte(categorizeYAML))
		require.NoError(t, err)

		assert.Equal(t, TypeCategorize, tmpl.Type)
		assert.Contains(t, tmpl.Instructions, "tecnología, cultura, otros")
		assert.NotContains(t, tmpl.Instructions, "%CATEGORIES%")
		assert.Equal(t, 0.2, tmpl.Params.Temperature)
		assert.Equal(t, 256, tmpl.Params.MaxTokens)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := Parse([]byte("type: summarize\nobjective: x\npersona: y\ninstructions: z\noutput_format: w\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported type")
	})

	t.Run("rejects categorize without categories", func(t *testing.T) {
		doc := strings.Replace(categorizeYAML, "categories:\n  - tecnología\n  - cultura\n  - otros\n", "", 1)
		_, err := Parse([]byte(doc))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "categories")
	})

	t.Run("rejects missing required field", func(t *testing.T) {
		doc := strings.Replace(categorizeYAML, "persona: Eres un bibliotecario meticuloso\n", "", 1)
		_, err := Parse([]byte(doc))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "persona")
	})

	t.Run("label requires subjects", func(t *testing.T) {
		_, err := Parse([]byte("type: label\nobjective: x\npersona: y\ninstructions: z\noutput_format: w\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "subjects")
	})

	t.Run("curate requires tags", func(t *testing.T) {
		_, err := Parse([]byte("type: curate\nobjective: x\npersona: y\ninstructions: z\noutput_format: w\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tags")
	})
}

func TestRender(t *testing.T) {
	tmpl, err := Parse([]byte(categorizeYAML))
	require.NoError(t, err)

	rendered := tmpl.Render("Hoy aprendí Go")

	// Components are wrapped in named tag blocks, input last.
	assert.Contains(t, rendered, "<objective>\nClasificar posts de un blog personal\n</objective>")
	assert.Contains(t, rendered, "<persona>")
	assert.Contains(t, rendered, "<instructions>")
	assert.Contains(t, rendered, "<output_format>")
	assert.True(t, strings.HasSuffix(rendered, "<input>\nHoy aprendí Go\n</input>"))

	// No example in this template, so no empty block.
	assert.NotContains(t, rendered, "<example>")
}

func TestVocabulary(t *testing.T) {
	tmpl, err := Parse([]byte(categorizeYAML))
	require.NoError(t, err)

	assert.True(t, tmpl.ValidCategory("tecnología"))
	assert.True(t, tmpl.ValidCategory("otros"))
	assert.False(t, tmpl.ValidCategory("deportes"))
	assert.False(t, tmpl.ValidCategory(""))
	assert.False(t, tmpl.ValidSubject("tecnología"))
}
