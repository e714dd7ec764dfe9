package chatlog

// UserInfo identifies the user side of an interaction.
type UserInfo struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	SchoolID string `json:"school_id"`
}

// LLMUsage carries the model-call metadata for one exchange. Token
// counts come from the caller's tokenizer; the logger only aggregates
// them.
type LLMUsage struct {
	Prompt           string  `json:"llm_prompt"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	Model            string  `json:"model_used"`
	Temperature      float64 `json:"temperature"`
}

// Entry is what callers hand to Log: one user↔assistant exchange.
type Entry struct {
	User         UserInfo
	Message      string
	Response     string
	ToolsUsed    []string
	ResponseTime float64 // seconds
	SessionID    string  // generated when empty
	LLM          LLMUsage
}

// Exchange is the message/response half of a stored interaction.
type Exchange struct {
	Message             string   `json:"message"`
	MessageLength       int      `json:"message_length"`
	Response            string   `json:"response"`
	ResponseLength      int      `json:"response_length"`
	ToolsUsed           []string `json:"tools_used"`
	ResponseTimeSeconds float64  `json:"response_time_seconds"`
}

// Metadata is derived classification stored with each interaction.
type Metadata struct {
	MessageType          string `json:"message_type"`
	ContainsSchoolData   bool   `json:"contains_school_data"`
	ContainsResidentData bool   `json:"contains_resident_data"`
	IsQuestion           bool   `json:"is_question"`
}

// Interaction is one immutable record in the structured log.
type Interaction struct {
	Timestamp    string   `json:"timestamp"`
	SessionID    string   `json:"session_id"`
	User         UserInfo `json:"user"`
	Exchange     Exchange `json:"interaction"`
	LLMAnalytics LLMUsage `json:"llm_analytics"`
	Metadata     Metadata `json:"metadata"`
}
