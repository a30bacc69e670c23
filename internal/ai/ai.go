// Package ai contains rule-based heuristics for task planning. The
// suggestions are computed from keyword matches, word counts and fixed
// thresholds; there is no model and no state.
package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/teamtodo-dev/teamtodo/internal/types"
)

type Suggestion struct {
	SuggestedDueDate time.Time `json:"suggestedDueDate"`
	Confidence       float64   `json:"confidence"`
	Reasoning        string    `json:"reasoning"`
}

type Analysis struct {
	Complexity     string   `json:"complexity"`
	EstimatedHours int      `json:"estimatedHours"`
	Factors        []string `json:"factors"`
}

// SuggestDueDate proposes a due date a number of days from now, derived from
// title keywords, description length, priority and team workload.
func SuggestDueDate(title, description, priority string, teamWorkload int) Suggestion {
	finalDays := SuggestDays(title, description, priority, teamWorkload)

	return Suggestion{
		SuggestedDueDate: time.Now().AddDate(0, 0, finalDays),
		Confidence:       Confidence(title, description, priority),
		Reasoning:        Reasoning(title, description, priority, finalDays),
	}
}

// SuggestDays computes the number of days until the suggested due date.
// Always at least 1.
func SuggestDays(title, description, priority string, teamWorkload int) int {
	baseDays := calculateBaseDays(title, description, priority)
	workloadAdjustment := calculateWorkloadAdjustment(teamWorkload)

	finalDays := baseDays + workloadAdjustment
	if finalDays < 1 {
		finalDays = 1
	}

	return finalDays
}

// Confidence scores how reliable the suggestion is, clamped to [0.3, 0.95].
func Confidence(title, description, priority string) float64 {
	confidence := 0.7

	if len(title) > 10 && len(description) > 20 {
		confidence += 0.1
	}

	if priority == types.PriorityUrgent || priority == types.PriorityHigh {
		confidence += 0.1
	}

	if len(title) < 5 || description == "" {
		confidence -= 0.2
	}

	if confidence > 0.95 {
		confidence = 0.95
	}
	if confidence < 0.3 {
		confidence = 0.3
	}

	return confidence
}

// Reasoning assembles a human-readable explanation from the same keyword and
// priority rules that produced the suggestion.
func Reasoning(title, description, priority string, finalDays int) string {
	var reasons []string

	titleLower := strings.ToLower(title)
	switch {
	case strings.Contains(titleLower, "setup") || strings.Contains(titleLower, "initialize"):
		reasons = append(reasons, "Setup tasks typically require 1-2 days for configuration")
	case strings.Contains(titleLower, "implement") || strings.Contains(titleLower, "develop"):
		reasons = append(reasons, "Development tasks usually need 3-7 days depending on complexity")
	case strings.Contains(titleLower, "design"):
		reasons = append(reasons, "Design tasks often require 2-5 days for iterations")
	case strings.Contains(titleLower, "test"):
		reasons = append(reasons, "Testing tasks generally take 1-3 days")
	}

	switch priority {
	case types.PriorityUrgent:
		reasons = append(reasons, "Urgent priority suggests expedited timeline")
	case types.PriorityHigh:
		reasons = append(reasons, "High priority requires focused attention and shorter timeline")
	case types.PriorityLow:
		reasons = append(reasons, "Low priority allows for more flexible scheduling")
	}

	if len(description) > 50 {
		reasons = append(reasons, "Detailed description indicates higher complexity")
	}

	reasons = append(reasons, fmt.Sprintf("Final suggestion: %d days", finalDays))

	return strings.Join(reasons, ". ") + "."
}

func calculateBaseDays(title, description, priority string) int {
	baseDays := 3

	titleLower := strings.ToLower(title)
	switch {
	case strings.Contains(titleLower, "setup") || strings.Contains(titleLower, "initialize"):
		baseDays = 2
	case strings.Contains(titleLower, "implement") || strings.Contains(titleLower, "develop"):
		baseDays = 5
	case strings.Contains(titleLower, "design") || strings.Contains(titleLower, "create"):
		baseDays = 4
	case strings.Contains(titleLower, "test") || strings.Contains(titleLower, "debug"):
		baseDays = 2
	case strings.Contains(titleLower, "document") || strings.Contains(titleLower, "write"):
		baseDays = 3
	}

	if description != "" {
		wordCount := len(strings.Split(description, " "))
		if wordCount > 50 {
			baseDays += 2
		} else if wordCount > 20 {
			baseDays += 1
		}
	}

	switch priority {
	case types.PriorityUrgent:
		baseDays -= 2
	case types.PriorityHigh:
		baseDays -= 1
	case types.PriorityLow:
		baseDays += 2
	}

	if baseDays < 1 {
		baseDays = 1
	}

	return baseDays
}

func calculateWorkloadAdjustment(teamWorkload int) int {
	switch {
	case teamWorkload > 80:
		return 3
	case teamWorkload > 60:
		return 2
	case teamWorkload > 40:
		return 1
	}
	return 0
}

// AnalyzeTask estimates complexity and effort from the title and description.
func AnalyzeTask(title, description string) Analysis {
	complexity := "medium"
	estimatedHours := 8
	var factors []string

	titleLower := strings.ToLower(title)
	if strings.Contains(titleLower, "simple") || strings.Contains(titleLower, "quick") ||
		strings.Contains(titleLower, "update") || strings.Contains(titleLower, "fix") {
		complexity = "low"
		estimatedHours = 3
		factors = append(factors, "Task title suggests simple implementation")
	} else if strings.Contains(titleLower, "complex") || strings.Contains(titleLower, "advanced") ||
		strings.Contains(titleLower, "implement") || strings.Contains(titleLower, "system") {
		complexity = "high"
		estimatedHours = 20
		factors = append(factors, "Task title indicates complex requirements")
	}

	if description != "" {
		wordCount := len(strings.Split(description, " "))
		if wordCount > 100 {
			complexity = "high"
			estimatedHours += 8
			factors = append(factors, "Detailed description suggests high complexity")
		} else if wordCount < 20 && complexity == "medium" {
			// Title keywords take precedence over a brief description
			complexity = "low"
			estimatedHours -= 4
			if estimatedHours < 2 {
				estimatedHours = 2
			}
			factors = append(factors, "Brief description suggests straightforward task")
		}
	}

	return Analysis{
		Complexity:     complexity,
		EstimatedHours: estimatedHours,
		Factors:        factors,
	}
}
