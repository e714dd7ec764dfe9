package chatlog

import (
	"math"
	"testing"

	"github.com/sportzvillage/svassist/internal/pricing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"Generate the monthly report", TypeRequest},
		{"show me the timetable", TypeRequest},
		{"Is the field free today?", TypeQuestion},
		{"update prop P010 status", TypeAction},
		{"log lesson completion", TypeAction},
		{"help me get started", TypeHelp},
		{"what happens next", TypeHelp},
		{"thanks", TypeGeneral},
		// Request keywords win over the trailing question mark.
		{"can you generate a report?", TypeRequest},
		// Question mark wins over action keywords.
		{"did the update work?", TypeQuestion},
	}
	for _, tt := range tests {
		if got := Classify(tt.message); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestAnalytics_Empty(t *testing.T) {
	l, _ := newTestLogger(t)

	stats, err := l.Analytics(nil)
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if stats.TotalInteractions != 0 || stats.UniqueUsers != 0 {
		t.Errorf("empty log produced totals: %+v", stats)
	}
}

func TestAnalytics_Aggregates(t *testing.T) {
	l, _ := newTestLogger(t)

	entries := []Entry{
		{
			User:    UserInfo{UserID: "U1", Role: "R", SchoolID: "SCH001"},
			Message: "Show me the timetable",
			LLM:     LLMUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150, Model: "gpt-4", Temperature: 0.7},
		},
		{
			User:    UserInfo{UserID: "U1", Role: "R", SchoolID: "SCH001"},
			Message: "Is period three free?",
			LLM:     LLMUsage{PromptTokens: 200, CompletionTokens: 100, TotalTokens: 300, Model: "gpt-4", Temperature: 0.3},
		},
		{
			User:    UserInfo{UserID: "U2", Role: "DM", SchoolID: "SCH002"},
			Message: "update prop P010",
			LLM:     LLMUsage{PromptTokens: 50, CompletionTokens: 25, TotalTokens: 75, Model: "gpt-3.5-turbo"},
		},
	}
	for _, e := range entries {
		if _, err := l.Log(e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	stats, err := l.Analytics(pricing.DefaultTiers)
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}

	if stats.TotalInteractions != 3 {
		t.Errorf("total_interactions = %d, want 3", stats.TotalInteractions)
	}
	if stats.UniqueUsers != 2 {
		t.Errorf("unique_users = %d, want 2", stats.UniqueUsers)
	}

	typeSum := 0
	for _, n := range stats.MessageTypes {
		typeSum += n
	}
	if typeSum != 3 {
		t.Errorf("message type histogram sums to %d, want 3", typeSum)
	}
	if stats.MessageTypes[TypeRequest] != 1 || stats.MessageTypes[TypeQuestion] != 1 || stats.MessageTypes[TypeAction] != 1 {
		t.Errorf("message_types = %v", stats.MessageTypes)
	}

	if stats.Roles["R"] != 2 || stats.Roles["DM"] != 1 {
		t.Errorf("roles = %v", stats.Roles)
	}
	if stats.Schools["SCH001"] != 2 || stats.Schools["SCH002"] != 1 {
		t.Errorf("schools = %v", stats.Schools)
	}

	if stats.LLM.TotalPromptTokens != 350 {
		t.Errorf("total_prompt_tokens = %d, want 350", stats.LLM.TotalPromptTokens)
	}
	if stats.LLM.TotalCompletionTokens != 175 {
		t.Errorf("total_completion_tokens = %d, want 175", stats.LLM.TotalCompletionTokens)
	}
	if stats.LLM.TotalTokens != 525 {
		t.Errorf("total_tokens = %d, want 525", stats.LLM.TotalTokens)
	}
	if stats.LLM.ModelsUsed["gpt-4"] != 2 || stats.LLM.ModelsUsed["gpt-3.5-turbo"] != 1 {
		t.Errorf("models_used = %v", stats.LLM.ModelsUsed)
	}

	// Temperature averages only over interactions that set one.
	if got := stats.LLM.AverageTemperature; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("average_temperature = %v, want 0.5", got)
	}

	if got := stats.LLM.TokensPerInteraction; math.Abs(got-175) > 1e-9 {
		t.Errorf("tokens_per_interaction = %v, want 175", got)
	}

	// gpt-4: 350/1000*0.03 + 175/1000*0.06 = 0.0105 + 0.0105 = 0.021
	if got := stats.LLM.EstimatedCosts["gpt-4"]; math.Abs(got-0.021) > 1e-9 {
		t.Errorf("gpt-4 cost = %v, want 0.021", got)
	}
	// gpt-3.5-turbo: 350/1000*0.0015 + 175/1000*0.002 = 0.000525 + 0.00035 = 0.000875 -> 0.0009
	if got := stats.LLM.EstimatedCosts["gpt-3.5-turbo"]; math.Abs(got-0.0009) > 1e-9 {
		t.Errorf("gpt-3.5-turbo cost = %v, want 0.0009", got)
	}

	if stats.DateRange.Earliest == "" || stats.DateRange.Latest < stats.DateRange.Earliest {
		t.Errorf("date_range = %+v", stats.DateRange)
	}
}

func TestAnalytics_ConfiguredTiers(t *testing.T) {
	l, _ := newTestLogger(t)
	if _, err := l.Log(Entry{
		User:    UserInfo{UserID: "U1"},
		Message: "hi",
		LLM:     LLMUsage{PromptTokens: 1000, CompletionTokens: 1000},
	}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	stats, err := l.Analytics([]pricing.Tier{
		{Name: "custom", InputPer1K: 1, OutputPer1K: 2},
	})
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if len(stats.LLM.EstimatedCosts) != 1 {
		t.Fatalf("estimated_costs = %v, want only the configured tier", stats.LLM.EstimatedCosts)
	}
	if got := stats.LLM.EstimatedCosts["custom"]; math.Abs(got-3) > 1e-9 {
		t.Errorf("custom cost = %v, want 3", got)
	}
}
