package review

import (
	"errors"
	"testing"
)

var allStages = []Stage{
	StagePendingReview,
	StageReviewScheduled,
	StageFeedbackProvided,
	StageUnderApproval,
	StageReviewApproved,
	StageReviewRejected,
}

var allowedEdges = map[Stage][]Stage{
	StagePendingReview:    {StageReviewScheduled},
	StageReviewScheduled:  {StageFeedbackProvided},
	StageFeedbackProvided: {StageUnderApproval},
	StageUnderApproval:    {StageReviewApproved, StageReviewRejected},
	StageReviewRejected:   {StageFeedbackProvided},
	StageReviewApproved:   {},
}

func TestCanTransition_Exhaustive(t *testing.T) {
	t.Parallel()

	for _, from := range allStages {
		for _, to := range allStages {
			expected := false
			for _, allowed := range allowedEdges[from] {
				if allowed == to {
					expected = true
				}
			}

			if got := CanTransition(from, to); got != expected {
				t.Errorf("CanTransition(%s, %s) = %v, expected %v", from, to, got, expected)
			}
		}
	}
}

func TestCanTransition_SelfTransitionsIllegal(t *testing.T) {
	t.Parallel()

	for _, stage := range allStages {
		if CanTransition(stage, stage) {
			t.Errorf("CanTransition(%s, %s) = true, self transitions must be illegal", stage, stage)
		}
	}
}

func TestCanTransition_ApprovedIsTerminal(t *testing.T) {
	t.Parallel()

	for _, to := range allStages {
		if CanTransition(StageReviewApproved, to) {
			t.Errorf("CanTransition(review_approved, %s) = true, review_approved must be terminal", to)
		}
	}
}

func TestCanTransition_UnknownStage(t *testing.T) {
	t.Parallel()

	if CanTransition(Stage("archived"), StagePendingReview) {
		t.Error("unknown current stage must not allow any transition")
	}
	if CanTransition(StagePendingReview, Stage("archived")) {
		t.Error("unknown requested stage must not be allowed")
	}
}

func TestParseStage(t *testing.T) {
	t.Parallel()

	for _, stage := range allStages {
		parsed, err := ParseStage(string(stage))
		if err != nil {
			t.Fatalf("ParseStage(%s) returned error: %v", stage, err)
		}
		if parsed != stage {
			t.Fatalf("ParseStage(%s) = %s", stage, parsed)
		}
	}

	for _, raw := range []string{"", "approved", "PENDING_REVIEW", "pending review"} {
		if _, err := ParseStage(raw); !errors.Is(err, ErrUnknownStage) {
			t.Errorf("ParseStage(%q) expected ErrUnknownStage, got %v", raw, err)
		}
	}
}
