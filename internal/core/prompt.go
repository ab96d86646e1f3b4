package core

import "strings"

const (
	systemInstruction = "You are a database performance expert. Analyze ALL queries in the provided database logs.\n\n" +
		"For each query, provide:\n" +
		"- Performance assessment (duration_ms, calls, rows)\n" +
		"- Specific optimization recommendations\n" +
		"- Index suggestions\n" +
		"- Priority level (Critical/High/Medium/Low)\n\n" +
		"Be concise but comprehensive. Cover every query in the logs."

	logsSeparator = "\n\nDatabase Logs:\n"
)

// BuildPrompt assembles the provider prompt: the system instruction, the
// caller's history verbatim and in order, then the new user turn with any
// uploaded logs appended.
func BuildPrompt(req ChatRequest) []Message {
	prompt := make([]Message, 0, len(req.History)+2)
	prompt = append(prompt, Message{Role: RoleSystem, Content: systemInstruction})

	for _, msg := range req.History {
		prompt = append(prompt, Message{Role: msg.Role, Content: msg.Content})
	}

	return append(prompt, Message{Role: RoleUser, Content: userTurn(req)})
}

func userTurn(req ChatRequest) string {
	if req.FileData == "" {
		return req.Message
	}
	var b strings.Builder
	b.Grow(len(req.Message) + len(logsSeparator) + len(req.FileData))
	b.WriteString(req.Message)
	b.WriteString(logsSeparator)
	b.WriteString(req.FileData)
	return b.String()
}
