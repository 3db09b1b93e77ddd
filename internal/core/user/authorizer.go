package user

import "github.com/ogurasousui/hr-rest-clean-arch/internal/core/review"

// ReviewAuthorizer はロールに基づく人事評価の認可判断です。
// admin と manager のみがステージ遷移・作成・更新・削除と全件閲覧を行えます。
// employee は自身の評価であっても遷移を呼び出せません。
type ReviewAuthorizer struct{}

// NewReviewAuthorizer は ReviewAuthorizer を生成します。
func NewReviewAuthorizer() ReviewAuthorizer {
	return ReviewAuthorizer{}
}

// CanChangeStage はステージ遷移操作の呼び出し可否を返します。
func (ReviewAuthorizer) CanChangeStage(actor review.Actor) bool {
	return Role(actor.Role).IsAdminOrManager()
}

// CanManageReviews は評価の作成・更新・削除の可否を返します。
func (ReviewAuthorizer) CanManageReviews(actor review.Actor) bool {
	return Role(actor.Role).IsAdminOrManager()
}

// CanViewAllReviews は全社員の評価を閲覧できるかを返します。
func (ReviewAuthorizer) CanViewAllReviews(actor review.Actor) bool {
	return Role(actor.Role).IsAdminOrManager()
}
