package session

import (
	"errors"
	"strings"

	"osusume/internal/core"
)

// UserMessage converts an action error into the text shown to the
// user. Validation errors list their field messages; everything else
// maps through the error taxonomy. No error is fatal to the process.
func UserMessage(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return strings.Join(verr.Messages(), "\n")
	}

	switch {
	case errors.Is(err, ErrUsernameTaken):
		return "このユーザー名は既に使用されています"
	case errors.Is(err, core.ErrTokenExpired):
		return "セッションの有効期限が切れました。もう一度お試しください。"
	case errors.Is(err, core.ErrSessionExpired):
		return "ログインの有効期限が切れました。再度ログインしてください。"
	case errors.Is(err, core.ErrForbidden):
		return "この操作を行う権限がありません。"
	case errors.Is(err, core.ErrNotFound):
		return "お探しのコンテンツは見つかりませんでした。"
	case errors.Is(err, core.ErrUnprocessable):
		return "入力内容を確認してください。"
	case errors.Is(err, core.ErrNotAuthenticated):
		return "ログインが必要です。"
	case errors.Is(err, core.ErrCancelled):
		return "キャンセルしました。"
	default:
		return "エラーが発生しました。時間をおいて再度お試しください。"
	}
}
