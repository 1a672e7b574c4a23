package domain

import "time"

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// ToolCall records one tool invocation an assistant message requested, with
// the call id the model assigned. Tool-result messages reference it back via
// ToolCallID.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one entry of a chat transcript. Assistant messages keep their
// requested tool calls so a replayed transcript pairs every tool result with
// the assistant message that asked for it.
type Message struct {
	Role       MessageRole `json:"role"`
	Content    string      `json:"content"`
	ToolCalls  []ToolCall  `json:"toolCalls,omitempty"`
	ToolName   string      `json:"toolName,omitempty"`
	ToolCallID string      `json:"toolCallId,omitempty"`
}

// Chat is a persisted transcript. Saving replaces the whole message list
// for the chat id; there is no incremental diffing.
type Chat struct {
	ID        string
	UserID    string
	Messages  []Message
	CreatedAt time.Time
}
