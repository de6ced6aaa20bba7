package rag

import (
	"strings"

	"github.com/kbot-ai/cli/internal/ollama"
)

// BuildMessages assembles the chat messages for one turn: the system prompt,
// an optional knowledge-base block from retrieved snippets, the user's prior
// history (alternating user/assistant entries, oldest first) and finally the
// current question.
func BuildMessages(systemPrompt string, snippets []Snippet, history []string, userMessage string) []ollama.Message {
	messages := []ollama.Message{
		{Role: "system", Content: systemPrompt},
	}

	if block := knowledgeBlock(snippets); block != "" {
		messages = append(messages, ollama.Message{Role: "system", Content: block})
	}

	for i, entry := range history {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		messages = append(messages, ollama.Message{Role: role, Content: entry})
	}

	messages = append(messages, ollama.Message{Role: "user", Content: userMessage})
	return messages
}

// knowledgeBlock formats retrieved snippets into a single context message.
// With no snippets it returns the empty string.
func knowledgeBlock(snippets []Snippet) string {
	if len(snippets) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Knowledge base context:\n")
	for _, s := range snippets {
		b.WriteString("\n")
		b.WriteString(s.Text)
		b.WriteString("\n")
	}
	return b.String()
}
