package orchestrator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aescanero/debatehub/pkg/domain"
	"go.uber.org/zap"
)

const (
	critiqueParseError = "Failed to parse critique"
	refinementSkipped  = "Refinement skipped due to missing critique."
)

// businessWorkflow generates ideas, critiques and refines each one and lets a
// judge rank them
type businessWorkflow struct {
	topic    string
	numIdeas int
	plan     domain.StepPlan
	ideas    []domain.BusinessIdea
	log      transcript
	logger   *zap.Logger
}

func newBusinessWorkflow(req domain.BusinessRequest, logger *zap.Logger) (*businessWorkflow, error) {
	plan, err := domain.NewBusinessPlan(domain.BusinessRoles{
		Generator: req.GeneratorLLM,
		Critic:    req.CriticLLM,
		Refiner:   req.RefinerLLM,
		Judge:     req.JudgeLLM,
	}, req.NumIdeas)
	if err != nil {
		return nil, err
	}

	return &businessWorkflow{
		topic:    req.Topic,
		numIdeas: req.NumIdeas,
		plan:     plan,
		logger:   logger,
	}, nil
}

func (w *businessWorkflow) Kind() domain.WorkflowKind { return domain.WorkflowBusiness }
func (w *businessWorkflow) Topic() string             { return w.topic }
func (w *businessWorkflow) Plan() domain.StepPlan     { return w.plan }

func (w *businessWorkflow) Prompt(step domain.StepDescriptor) (string, bool) {
	switch step.Kind {
	case domain.StepKindGenerating:
		return w.generatePrompt(), true

	case domain.StepKindCritiquing:
		idea, ok := w.idea(step.Round)
		if !ok {
			return "", false
		}
		return w.critiquePrompt(idea), true

	case domain.StepKindRefining:
		idea, ok := w.idea(step.Round)
		if !ok || !hasCritique(idea) {
			return "", false
		}
		return w.refinePrompt(idea), true

	case domain.StepKindRanking:
		if len(w.ideas) == 0 {
			return "", false
		}
		return w.rankPrompt(), true
	}
	return "", false
}

func (w *businessWorkflow) Record(step domain.StepDescriptor, output string) {
	switch step.Kind {
	case domain.StepKindGenerating:
		w.ideas = w.parseIdeas(output)

	case domain.StepKindCritiquing:
		if idea, ok := w.idea(step.Round); ok {
			w.applyCritique(idea, output)
		}

	case domain.StepKindRefining:
		idea, ok := w.idea(step.Round)
		if !ok {
			return
		}
		if !hasCritique(idea) {
			idea.Refinement = refinementSkipped
			w.logger.Warn("skipping refinement due to missing critique",
				zap.Int("idea", step.Round))
			return
		}
		idea.Refinement = output

	case domain.StepKindRanking:
		w.applyRanking(output)

	default:
		return
	}
	if output != "" {
		w.log.add(step, output)
	}
}

func (w *businessWorkflow) Message(step domain.StepDescriptor) string {
	switch step.Kind {
	case domain.StepKindStarting:
		return fmt.Sprintf("Generating %d business ideas on: %s", w.numIdeas, w.topic)
	case domain.StepKindGenerating:
		return fmt.Sprintf("Generated %d business ideas using %s", len(w.ideas), step.Provider)
	case domain.StepKindCritiquing:
		return fmt.Sprintf("Critiqued idea %d/%d using %s", step.Round, w.numIdeas, step.Provider)
	case domain.StepKindRefining:
		return fmt.Sprintf("Refined idea %d/%d using %s", step.Round, w.numIdeas, step.Provider)
	case domain.StepKindRanking:
		return fmt.Sprintf("Ranked business ideas using %s", step.Provider)
	case domain.StepKindCompleted:
		return "Business idea generation completed successfully!"
	}
	return ""
}

func (w *businessWorkflow) Transcript() []domain.TranscriptEntry {
	return w.log.snapshot()
}

func (w *businessWorkflow) Result() *domain.Result {
	ideas := make([]domain.BusinessIdea, len(w.ideas))
	copy(ideas, w.ideas)

	return &domain.Result{
		Kind:       domain.WorkflowBusiness,
		Topic:      w.topic,
		Transcript: w.log.snapshot(),
		Business:   &domain.BusinessResult{Ideas: ideas},
	}
}

// idea returns the 1-based idea n. The generator may return fewer ideas than
// requested; steps for missing ideas are skipped.
func (w *businessWorkflow) idea(n int) (*domain.BusinessIdea, bool) {
	if n < 1 || n > len(w.ideas) {
		return nil, false
	}
	return &w.ideas[n-1], true
}

func (w *businessWorkflow) generatePrompt() string {
	return fmt.Sprintf(`Generate %d innovative business ideas related to: %s

For each idea, provide a catchy title, a detailed description of the business
concept, the target market and potential monetization strategies.

Format your response as a valid JSON array with objects containing these fields:
[
  {
    "title": "Business Idea Title",
    "description": "Detailed description of the business concept...",
    "target_market": "Description of the target market...",
    "monetization": "Explanation of monetization strategies..."
  }
]

Be creative, practical, and ensure each idea is distinct from the others.`, w.numIdeas, w.topic)
}

func (w *businessWorkflow) critiquePrompt(idea *domain.BusinessIdea) string {
	return fmt.Sprintf(`Critically evaluate the following business idea related to: %s

BUSINESS IDEA:
Title: %s
Description: %s
Target Market: %s
Monetization: %s

Format your critique as a valid JSON object:
{
  "feasibility": { "score": 7, "explanation": "..." },
  "market_potential": { "score": 8, "explanation": "..." },
  "technical_complexity": { "score": 6, "explanation": "..." },
  "monetization_viability": { "score": 7, "explanation": "..." },
  "competitive_landscape": ["Competitor 1", "Competitor 2", "Competitor 3"],
  "overall_score": 7.5,
  "key_strengths": ["Strength 1", "Strength 2"],
  "key_weaknesses": ["Weakness 1", "Weakness 2"],
  "improvement_suggestions": ["Suggestion 1", "Suggestion 2"]
}`, w.topic, idea.Title, idea.Description, idea.TargetMarket, idea.Monetization)
}

func (w *businessWorkflow) refinePrompt(idea *domain.BusinessIdea) string {
	return fmt.Sprintf(`Refine the following business idea related to: %s

ORIGINAL BUSINESS IDEA:
Title: %s
Description: %s
Target Market: %s
Monetization: %s

CRITIQUE SUMMARY:
Weaknesses: %s
Improvement Suggestions: %s

Provide a refined version of this business idea that addresses the weaknesses
and incorporates the improvement suggestions. Keep the same basic concept but
enhance it. Include a refined title, an improved description, a more focused
target market, enhanced monetization strategies and a brief explanation of how
the refinement addresses the critique.

Format your response in plain text, not as JSON.`,
		w.topic, idea.Title, idea.Description, idea.TargetMarket, idea.Monetization,
		strings.Join(stringList(idea.Critique["key_weaknesses"]), ", "),
		strings.Join(stringList(idea.Critique["improvement_suggestions"]), ", "))
}

type ideaSummary struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	TargetMarket  string   `json:"target_market"`
	Monetization  string   `json:"monetization"`
	CritiqueScore float64  `json:"critique_score"`
	KeyStrengths  []string `json:"key_strengths"`
	KeyWeaknesses []string `json:"key_weaknesses"`
	HasRefinement bool     `json:"has_refinement"`
}

func (w *businessWorkflow) rankPrompt() string {
	summaries := make([]ideaSummary, len(w.ideas))
	for i, idea := range w.ideas {
		summaries[i] = ideaSummary{
			ID:            i,
			Title:         idea.Title,
			Description:   idea.Description,
			TargetMarket:  idea.TargetMarket,
			Monetization:  idea.Monetization,
			CritiqueScore: idea.Score,
			KeyStrengths:  stringList(idea.Critique["key_strengths"]),
			KeyWeaknesses: stringList(idea.Critique["key_weaknesses"]),
			HasRefinement: idea.Refinement != "" && idea.Refinement != refinementSkipped,
		}
	}
	data, _ := json.MarshalIndent(summaries, "", "  ")

	return fmt.Sprintf(`Rank the following business ideas related to: %s

BUSINESS IDEAS:
%s

Analyze each idea on overall business viability, market potential, innovation,
execution feasibility and competitive advantage. For each idea (referenced by
ID), provide a final score (1-10) and a brief explanation for the ranking.

Format your response as a valid JSON array:
[
  {
    "id": 0,
    "final_score": 8.5,
    "explanation": "This idea ranks highly because..."
  }
]

Sort the ideas from highest to lowest score in your response.`, w.topic, data)
}

type generatedIdea struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	TargetMarket string `json:"target_market"`
	Monetization string `json:"monetization"`
}

// parseIdeas extracts the idea array from the generator output. Output that
// cannot be parsed yields placeholder ideas so the session can continue.
func (w *businessWorkflow) parseIdeas(output string) []domain.BusinessIdea {
	var parsed []generatedIdea
	if err := json.Unmarshal([]byte(extractJSON(output, '[', ']')), &parsed); err != nil || len(parsed) == 0 {
		w.logger.Warn("failed to parse generated ideas, using placeholders",
			zap.Error(err))
		ideas := make([]domain.BusinessIdea, w.numIdeas)
		for i := range ideas {
			ideas[i] = domain.BusinessIdea{
				Title:        fmt.Sprintf("Business Idea %d", i+1),
				Description:  "Could not parse idea details from LLM response.",
				TargetMarket: "Unknown",
				Monetization: "Unknown",
			}
		}
		return ideas
	}

	if len(parsed) > w.numIdeas {
		parsed = parsed[:w.numIdeas]
	}
	ideas := make([]domain.BusinessIdea, len(parsed))
	for i, p := range parsed {
		title := p.Title
		if title == "" {
			title = "Untitled Idea"
		}
		ideas[i] = domain.BusinessIdea{
			Title:        title,
			Description:  p.Description,
			TargetMarket: p.TargetMarket,
			Monetization: p.Monetization,
		}
	}
	return ideas
}

func (w *businessWorkflow) applyCritique(idea *domain.BusinessIdea, output string) {
	var critique map[string]any
	if err := json.Unmarshal([]byte(extractJSON(output, '{', '}')), &critique); err != nil || critique == nil {
		w.logger.Warn("failed to parse critique",
			zap.String("idea", idea.Title),
			zap.Error(err))
		idea.Critique = map[string]any{"error": critiqueParseError}
		return
	}
	idea.Critique = critique
	idea.Score = toFloat(critique["overall_score"])
}

type ranking struct {
	ID          *int     `json:"id"`
	FinalScore  *float64 `json:"final_score"`
	Explanation *string  `json:"explanation"`
}

// applyRanking updates scores from the judge output and sorts the ideas by
// score, highest first. Unparseable output keeps the current order.
func (w *businessWorkflow) applyRanking(output string) {
	var rankings []ranking
	if err := json.Unmarshal([]byte(extractJSON(output, '[', ']')), &rankings); err != nil {
		w.logger.Warn("failed to parse ranking, keeping critique order", zap.Error(err))
		return
	}

	for _, r := range rankings {
		if r.ID == nil || *r.ID < 0 || *r.ID >= len(w.ideas) {
			continue
		}
		idea := &w.ideas[*r.ID]
		if r.FinalScore != nil {
			idea.Score = *r.FinalScore
		}
		if r.Explanation != nil {
			if idea.Critique == nil {
				idea.Critique = make(map[string]any)
			}
			idea.Critique["ranking_explanation"] = *r.Explanation
		}
	}

	sort.SliceStable(w.ideas, func(i, j int) bool {
		return w.ideas[i].Score > w.ideas[j].Score
	})
}

func hasCritique(idea *domain.BusinessIdea) bool {
	if len(idea.Critique) == 0 {
		return false
	}
	_, failed := idea.Critique["error"]
	return !failed
}

// extractJSON returns the outermost open..close span of s, or s itself when
// there is none. Model output often wraps JSON in prose or code fences.
func extractJSON(s string, open, close byte) string {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}
