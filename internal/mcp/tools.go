package mcp

import "github.com/mark3labs/mcp-go/mcp"

// semanticSearchTool defines the semantic_search MCP tool.
var semanticSearchTool = mcp.NewTool("semantic_search",
	mcp.WithDescription("Search timetables, lessons and props semantically. Returns the best matches across all program data."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("max_results",
		mcp.Description("Maximum number of results to return (default 5)"),
	),
	mcp.WithString("school_id",
		mcp.Description("Restrict results to one school"),
	),
)

// getRelevantContextTool defines the get_relevant_context MCP tool.
var getRelevantContextTool = mcp.NewTool("get_relevant_context",
	mcp.WithDescription("Retrieve relevant program data as a text block suitable for prompt context."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language description of the needed context"),
	),
	mcp.WithString("context_type",
		mcp.Description("Restrict context to one category"),
		mcp.Enum("all", "timetables", "lessons", "props", "documents"),
	),
	mcp.WithNumber("max_results",
		mcp.Description("Results per category (default 5)"),
	),
)

// refreshCacheTool defines the refresh_cache MCP tool.
var refreshCacheTool = mcp.NewTool("refresh_cache",
	mcp.WithDescription("Rebuild the search cache from the source data tables. Use after timetables, lessons or props change."),
)

// logInteractionTool defines the log_interaction MCP tool.
var logInteractionTool = mcp.NewTool("log_interaction",
	mcp.WithDescription("Record one user/assistant exchange in the chat logs."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("ID of the user who sent the message"),
	),
	mcp.WithString("username",
		mcp.Description("Display name of the user"),
	),
	mcp.WithString("role",
		mcp.Description("User's role code (HO, RM, DM, DL, R, PRINCIPAL)"),
	),
	mcp.WithString("school_id",
		mcp.Description("School the user belongs to"),
	),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("The user's message"),
	),
	mcp.WithString("response",
		mcp.Description("The assistant's response"),
	),
	mcp.WithString("session_id",
		mcp.Description("Session to attribute the exchange to (generated when omitted)"),
	),
	mcp.WithArray("tools_used",
		mcp.Description("Names of the tools invoked while answering"),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithNumber("response_time",
		mcp.Description("Seconds taken to produce the response"),
	),
	mcp.WithString("llm_prompt",
		mcp.Description("Prompt sent to the language model"),
	),
	mcp.WithNumber("prompt_tokens",
		mcp.Description("Prompt token count reported by the caller's tokenizer"),
	),
	mcp.WithNumber("completion_tokens",
		mcp.Description("Completion token count reported by the caller's tokenizer"),
	),
	mcp.WithNumber("total_tokens",
		mcp.Description("Total token count for the exchange"),
	),
	mcp.WithString("model",
		mcp.Description("Language model that produced the response"),
	),
	mcp.WithNumber("temperature",
		mcp.Description("Sampling temperature used for the response"),
	),
)

// getChatAnalyticsTool defines the get_chat_analytics MCP tool.
var getChatAnalyticsTool = mcp.NewTool("get_chat_analytics",
	mcp.WithDescription("Aggregate chat log analytics: interaction counts, message types, token usage and estimated costs."),
)
