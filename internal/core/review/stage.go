package review

// Stage は人事評価の進行段階を表します。
type Stage string

const (
	StagePendingReview    Stage = "pending_review"
	StageReviewScheduled  Stage = "review_scheduled"
	StageFeedbackProvided Stage = "feedback_provided"
	StageUnderApproval    Stage = "under_approval"
	StageReviewApproved   Stage = "review_approved"
	StageReviewRejected   Stage = "review_rejected"
)

// ParseStage は文字列をステージへ変換します。未知の値は ErrUnknownStage を返します。
func ParseStage(raw string) (Stage, error) {
	switch Stage(raw) {
	case StagePendingReview:
		return StagePendingReview, nil
	case StageReviewScheduled:
		return StageReviewScheduled, nil
	case StageFeedbackProvided:
		return StageFeedbackProvided, nil
	case StageUnderApproval:
		return StageUnderApproval, nil
	case StageReviewApproved:
		return StageReviewApproved, nil
	case StageReviewRejected:
		return StageReviewRejected, nil
	default:
		return "", ErrUnknownStage
	}
}

// CanTransition は current から requested への遷移が遷移表で許可されているかを返します。
// 同一ステージへの遷移は常に不正です。review_approved は終端で、遷移先を持ちません。
// review_rejected から under_approval へ直接戻る辺は存在せず、必ず
// feedback_provided を経由して再承認に進みます。
func CanTransition(current, requested Stage) bool {
	switch current {
	case StagePendingReview:
		return requested == StageReviewScheduled
	case StageReviewScheduled:
		return requested == StageFeedbackProvided
	case StageFeedbackProvided:
		return requested == StageUnderApproval
	case StageUnderApproval:
		return requested == StageReviewApproved || requested == StageReviewRejected
	case StageReviewRejected:
		return requested == StageFeedbackProvided
	case StageReviewApproved:
		return false
	default:
		return false
	}
}
