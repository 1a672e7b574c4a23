package tools

// Status tags a tool outcome. Empty result sets are NoResults, not errors,
// so the conversation can continue gracefully when nothing matches.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusNoResults Status = "no_results"
	StatusError     Status = "error"
)

// ToolResult is the closed outcome type every handler returns. Handlers
// never let an error escape to the orchestrator: a failed tool call must
// not abort the conversation turn, the model needs structured data to
// narrate.
type ToolResult struct {
	Status  Status `json:"status"`
	Payload any    `json:"payload,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func Success(payload any) ToolResult {
	return ToolResult{Status: StatusSuccess, Payload: payload}
}

func NoResults(message string) ToolResult {
	return ToolResult{Status: StatusNoResults, Message: message}
}

func Error(code, message string) ToolResult {
	return ToolResult{Status: StatusError, Code: code, Message: message}
}
