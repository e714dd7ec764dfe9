package chatlog

import (
	"math"
	"strings"

	"github.com/sportzvillage/svassist/internal/pricing"
)

// Message types produced by Classify.
const (
	TypeRequest  = "request"
	TypeQuestion = "question"
	TypeAction   = "action"
	TypeHelp     = "help"
	TypeGeneral  = "general"
)

// Classify buckets a message by simple keyword rules, first match wins:
// request keywords, then question mark suffix, then action keywords,
// then help keywords, else general.
func Classify(message string) string {
	lower := strings.ToLower(message)

	if containsAny(lower, "report", "generate", "show me") {
		return TypeRequest
	}
	if strings.HasSuffix(strings.TrimSpace(lower), "?") {
		return TypeQuestion
	}
	if containsAny(lower, "update", "log", "complete") {
		return TypeAction
	}
	if containsAny(lower, "help", "how", "what") {
		return TypeHelp
	}
	return TypeGeneral
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// LLMStats aggregates the model-call side of the log.
type LLMStats struct {
	TotalPromptTokens     int                `json:"total_prompt_tokens"`
	TotalCompletionTokens int                `json:"total_completion_tokens"`
	TotalTokens           int                `json:"total_tokens_used"`
	ModelsUsed            map[string]int     `json:"models_used"`
	AverageTemperature    float64            `json:"average_temperature"`
	EstimatedCosts        map[string]float64 `json:"estimated_costs"`
	TokensPerInteraction  float64            `json:"tokens_per_interaction"`
}

// DateRange bounds the analyzed interactions.
type DateRange struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

// Stats is the aggregate analytics report.
type Stats struct {
	TotalInteractions int            `json:"total_interactions"`
	UniqueUsers       int            `json:"unique_users"`
	MessageTypes      map[string]int `json:"message_types"`
	Roles             map[string]int `json:"roles"`
	Schools           map[string]int `json:"schools"`
	LLM               LLMStats       `json:"llm_analytics"`
	DateRange         DateRange      `json:"date_range"`
}

// Analytics aggregates the whole structured log. Cost estimates are
// computed for each supplied pricing tier; passing none uses
// pricing.DefaultTiers.
func (l *Logger) Analytics(tiers []pricing.Tier) (*Stats, error) {
	logs, err := l.All("", "")
	if err != nil {
		return nil, err
	}
	if len(tiers) == 0 {
		tiers = pricing.DefaultTiers
	}

	stats := &Stats{
		MessageTypes: map[string]int{},
		Roles:        map[string]int{},
		Schools:      map[string]int{},
		LLM: LLMStats{
			ModelsUsed:     map[string]int{},
			EstimatedCosts: map[string]float64{},
		},
	}
	if len(logs) == 0 {
		return stats, nil
	}

	users := map[string]bool{}
	var tempSum float64
	var tempCount int

	for _, in := range logs {
		users[in.User.UserID] = true
		stats.MessageTypes[in.Metadata.MessageType]++
		stats.Roles[in.User.Role]++
		if in.User.SchoolID != "" {
			stats.Schools[in.User.SchoolID]++
		}

		stats.LLM.TotalPromptTokens += in.LLMAnalytics.PromptTokens
		stats.LLM.TotalCompletionTokens += in.LLMAnalytics.CompletionTokens
		stats.LLM.TotalTokens += in.LLMAnalytics.TotalTokens
		if in.LLMAnalytics.Model != "" {
			stats.LLM.ModelsUsed[in.LLMAnalytics.Model]++
		}
		if in.LLMAnalytics.Temperature > 0 {
			tempSum += in.LLMAnalytics.Temperature
			tempCount++
		}

		if stats.DateRange.Earliest == "" || in.Timestamp < stats.DateRange.Earliest {
			stats.DateRange.Earliest = in.Timestamp
		}
		if in.Timestamp > stats.DateRange.Latest {
			stats.DateRange.Latest = in.Timestamp
		}
	}

	stats.TotalInteractions = len(logs)
	stats.UniqueUsers = len(users)
	if tempCount > 0 {
		stats.LLM.AverageTemperature = round2(tempSum / float64(tempCount))
	}
	stats.LLM.TokensPerInteraction = round1(float64(stats.LLM.TotalTokens) / float64(len(logs)))

	for _, tier := range tiers {
		stats.LLM.EstimatedCosts[tier.Name] = round4(
			tier.Estimate(stats.LLM.TotalPromptTokens, stats.LLM.TotalCompletionTokens))
	}

	return stats, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
