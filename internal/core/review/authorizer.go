package review

// Actor は評価操作の呼び出し元を表します。ロールの解釈は Authorizer の実装に委ねます。
type Actor struct {
	UserID     string
	Role       string
	EmployeeID string
}

// Authorizer は呼び出し元ロールに基づく認可判断を提供します。
// 判断が否定の場合、ステージ遷移は遷移表の評価に到達する前に拒否されます。
type Authorizer interface {
	// CanChangeStage はステージ遷移操作の呼び出し可否を返します。
	CanChangeStage(actor Actor) bool
	// CanManageReviews は評価の作成・更新・削除の可否を返します。
	CanManageReviews(actor Actor) bool
	// CanViewAllReviews は全社員の評価を閲覧できるかを返します。
	// 否定の場合、一覧は呼び出し元自身の社員レコードに限定されます。
	CanViewAllReviews(actor Actor) bool
}

// denyAllAuthorizer は Authorizer 未設定時のフェイルクローズ実装です。
type denyAllAuthorizer struct{}

func (denyAllAuthorizer) CanChangeStage(Actor) bool    { return false }
func (denyAllAuthorizer) CanManageReviews(Actor) bool  { return false }
func (denyAllAuthorizer) CanViewAllReviews(Actor) bool { return false }
