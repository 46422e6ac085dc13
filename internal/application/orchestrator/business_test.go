package orchestrator

import (
	"context"
	"strings"
	"testing"

	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/aescanero/debatehub/pkg/ports"
	"go.uber.org/zap"
)

func newTestBusiness(t *testing.T, ideas int) *businessWorkflow {
	t.Helper()
	wf, err := newBusinessWorkflow(domain.BusinessRequest{
		Topic:        "urban farming",
		GeneratorLLM: "ChatGPT",
		CriticLLM:    "Claude",
		RefinerLLM:   "ChatGPT",
		JudgeLLM:     "Gemini",
		NumIdeas:     ideas,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("newBusinessWorkflow failed: %v", err)
	}
	return wf
}

func stepNamed(t *testing.T, wf *businessWorkflow, name string) domain.StepDescriptor {
	t.Helper()
	i := wf.Plan().IndexOf(name)
	if i < 0 {
		t.Fatalf("step %s not in plan %v", name, wf.Plan().Names())
	}
	return wf.Plan().Step(i)
}

func TestBusinessPlan(t *testing.T) {
	wf := newTestBusiness(t, 2)

	want := []string{"starting", "generating", "critiquing_1", "critiquing_2", "refining_1", "refining_2", "ranking", "completed"}
	got := wf.Plan().Names()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected plan %v, got %v", want, got)
	}
}

func TestBusinessWorkflow_ParseIdeasWithProse(t *testing.T) {
	wf := newTestBusiness(t, 2)

	output := "Here are some ideas:\n```json\n" +
		`[{"title":"Rooftop Greens","description":"d1","target_market":"restaurants","monetization":"subscription"},` +
		`{"description":"d2"},{"title":"Extra","description":"d3"}]` + "\n```"
	wf.Record(stepNamed(t, wf, "generating"), output)

	if len(wf.ideas) != 2 {
		t.Fatalf("expected ideas truncated to 2, got %d", len(wf.ideas))
	}
	if wf.ideas[0].Title != "Rooftop Greens" || wf.ideas[0].TargetMarket != "restaurants" {
		t.Errorf("unexpected first idea %+v", wf.ideas[0])
	}
	if wf.ideas[1].Title != "Untitled Idea" {
		t.Errorf("expected untitled fallback, got %q", wf.ideas[1].Title)
	}
}

func TestBusinessWorkflow_UnparseableIdeasUsePlaceholders(t *testing.T) {
	wf := newTestBusiness(t, 3)
	wf.Record(stepNamed(t, wf, "generating"), "I cannot produce JSON today")

	if len(wf.ideas) != 3 {
		t.Fatalf("expected 3 placeholder ideas, got %d", len(wf.ideas))
	}
	for i, idea := range wf.ideas {
		if !strings.HasPrefix(idea.Title, "Business Idea ") || idea.TargetMarket != "Unknown" {
			t.Errorf("idea %d is not a placeholder: %+v", i, idea)
		}
	}
}

func TestBusinessWorkflow_FailedCritiqueSkipsRefinement(t *testing.T) {
	wf := newTestBusiness(t, 1)
	wf.Record(stepNamed(t, wf, "generating"), `[{"title":"A"}]`)

	critique := stepNamed(t, wf, "critiquing_1")
	if _, call := wf.Prompt(critique); !call {
		t.Fatal("expected a critique call")
	}
	wf.Record(critique, "not json")
	if wf.ideas[0].Critique["error"] != critiqueParseError {
		t.Errorf("expected critique parse error, got %v", wf.ideas[0].Critique)
	}

	refine := stepNamed(t, wf, "refining_1")
	if _, call := wf.Prompt(refine); call {
		t.Error("refinement must be skipped without a critique")
	}
	wf.Record(refine, "")
	if wf.ideas[0].Refinement != refinementSkipped {
		t.Errorf("expected skipped refinement, got %q", wf.ideas[0].Refinement)
	}
}

func TestBusinessWorkflow_CritiqueFeedsRefinePrompt(t *testing.T) {
	wf := newTestBusiness(t, 1)
	wf.Record(stepNamed(t, wf, "generating"), `[{"title":"A"}]`)
	wf.Record(stepNamed(t, wf, "critiquing_1"),
		`{"overall_score": 6.5, "key_weaknesses": ["slow"], "improvement_suggestions": ["go faster"]}`)

	if wf.ideas[0].Score != 6.5 {
		t.Errorf("expected score 6.5, got %v", wf.ideas[0].Score)
	}

	prompt, call := wf.Prompt(stepNamed(t, wf, "refining_1"))
	if !call {
		t.Fatal("expected a refinement call")
	}
	if !strings.Contains(prompt, "Weaknesses: slow") || !strings.Contains(prompt, "Improvement Suggestions: go faster") {
		t.Errorf("refine prompt misses critique summary: %q", prompt)
	}
}

func TestBusinessWorkflow_RankingSortsByScore(t *testing.T) {
	wf := newTestBusiness(t, 3)
	wf.Record(stepNamed(t, wf, "generating"), `[{"title":"A"},{"title":"B"},{"title":"C"}]`)

	wf.Record(stepNamed(t, wf, "ranking"), `[
		{"id": 0, "final_score": 4, "explanation": "weak"},
		{"id": 2, "final_score": 9, "explanation": "strong"},
		{"id": 1, "final_score": 7},
		{"id": 7, "final_score": 10}
	]`)

	titles := []string{wf.ideas[0].Title, wf.ideas[1].Title, wf.ideas[2].Title}
	if strings.Join(titles, "") != "CBA" {
		t.Errorf("expected order C, B, A, got %v", titles)
	}
	if wf.ideas[0].Critique["ranking_explanation"] != "strong" {
		t.Errorf("expected ranking explanation on C, got %v", wf.ideas[0].Critique)
	}
}

func TestBusinessWorkflow_BadRankingKeepsOrder(t *testing.T) {
	wf := newTestBusiness(t, 2)
	wf.Record(stepNamed(t, wf, "generating"), `[{"title":"A"},{"title":"B"}]`)
	wf.Record(stepNamed(t, wf, "ranking"), "no idea")

	if wf.ideas[0].Title != "A" || wf.ideas[1].Title != "B" {
		t.Errorf("expected original order, got %s, %s", wf.ideas[0].Title, wf.ideas[1].Title)
	}
}

func TestManager_BusinessSession(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.executor.respond = func(ctx context.Context, req ports.StepRequest) (string, error) {
		switch req.Step.Kind {
		case domain.StepKindGenerating:
			return `[{"title":"Alpha"},{"title":"Beta"}]`, nil
		case domain.StepKindCritiquing:
			return `{"overall_score": 5, "key_weaknesses": ["w"], "improvement_suggestions": ["s"]}`, nil
		case domain.StepKindRefining:
			return "refined idea", nil
		case domain.StepKindRanking:
			return `[{"id": 1, "final_score": 9}, {"id": 0, "final_score": 3}]`, nil
		}
		return "", nil
	}

	id, err := env.manager.CreateBusiness(domain.BusinessRequest{Topic: "urban farming", NumIdeas: 2})
	if err != nil {
		t.Fatalf("CreateBusiness failed: %v", err)
	}

	snap := env.wait(t, id)
	if snap.Outcome != domain.OutcomeSucceeded {
		t.Fatalf("expected success, got %s (%s)", snap.Outcome, snap.Error)
	}
	if events := env.history(t, id); len(events) != 8 {
		t.Errorf("expected 8 events, got %d", len(events))
	}

	result, err := env.manager.Result(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	ideas := result.Business.Ideas
	if len(ideas) != 2 || ideas[0].Title != "Beta" || ideas[0].Score != 9 {
		t.Errorf("unexpected ranked ideas %+v", ideas)
	}
	if ideas[1].Refinement != "refined idea" {
		t.Errorf("expected refinement, got %q", ideas[1].Refinement)
	}
}
