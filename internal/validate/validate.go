// Package validate holds the client-side form validation rules. All
// functions are pure; the server remains the final validator, these are
// a best-effort pre-filter run before any network call.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// Field length limits.
const (
	usernameMinLen = 3
	usernameMaxLen = 20
	passwordMinLen = 8
	passwordMaxLen = 72

	loginUsernameMaxLen = 50
	loginPasswordMaxLen = 100

	titleMaxLen       = 50
	descriptionMaxLen = 300
	recommendMaxLen   = 50
	commentMaxLen     = 200
)

var reservedUsernames = []string{
	"admin", "administrator", "root", "system", "api", "www", "mail", "support", "help",
}

var (
	usernameCharset = regexp.MustCompile(`^[a-zA-Z0-9_.-]*$`)
	usernameStart   = regexp.MustCompile(`^[a-zA-Z0-9]`)
	usernameRepeat  = regexp.MustCompile(`[_.-]{2,}`)

	passwordUpper   = regexp.MustCompile(`[A-Z]`)
	passwordLower   = regexp.MustCompile(`[a-z]`)
	passwordDigit   = regexp.MustCompile(`\d`)
	passwordSpecial = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// Result is the outcome of validating a single field.
type Result struct {
	Errors []string
	Valid  bool
}

// FieldErrors maps a form field name to its ordered error messages.
type FieldErrors map[string][]string

// FormResult is the outcome of validating a whole form.
type FormResult struct {
	Errors FieldErrors
	Valid  bool
}

func formResult(errs FieldErrors) FormResult {
	valid := lo.EveryBy(lo.Values(errs), func(msgs []string) bool {
		return len(msgs) == 0
	})
	return FormResult{Errors: errs, Valid: valid}
}

// Username validates a registration username. An empty input
// short-circuits to the single required-field error.
func Username(username string) Result {
	if username == "" {
		return Result{Errors: []string{"ユーザー名は必須です"}}
	}

	var errs []string

	length := utf8.RuneCountInString(username)
	if length < usernameMinLen {
		errs = append(errs, "3文字以上で入力してください")
	}
	if length > usernameMaxLen {
		errs = append(errs, "20文字以下で入力してください")
	}

	if !usernameCharset.MatchString(username) {
		errs = append(errs, "半角英数字と_-.のみ使用可能です")
	}

	if !usernameStart.MatchString(username) {
		errs = append(errs, "英字または数字で始まる必要があります")
	}

	if usernameRepeat.MatchString(username) {
		errs = append(errs, "記号を連続して使用することはできません")
	}

	if lo.Contains(reservedUsernames, strings.ToLower(username)) {
		errs = append(errs, fmt.Sprintf("\"%s\" は予約語のため使用できません", username))
	}

	return Result{Errors: errs, Valid: len(errs) == 0}
}

// Password validates a registration password. The username is used for
// the similarity check and may be empty.
func Password(password, username string) Result {
	if password == "" {
		return Result{Errors: []string{"パスワードは必須です"}}
	}

	var errs []string

	length := utf8.RuneCountInString(password)
	if length < passwordMinLen {
		errs = append(errs, "8文字以上で入力してください")
	}
	if length > passwordMaxLen {
		errs = append(errs, "72文字以下で入力してください")
	}

	charTypes := lo.CountBy([]bool{
		passwordUpper.MatchString(password),
		passwordLower.MatchString(password),
		passwordDigit.MatchString(password),
		passwordSpecial.MatchString(password),
	}, func(ok bool) bool { return ok })

	if charTypes < 3 {
		errs = append(errs, "英大文字、英小文字、数字、記号（!@#$%^&*(),.?\":{}|<>）のうち3種類以上を含む必要があります")
	}

	if username != "" && strings.Contains(strings.ToLower(password), strings.ToLower(username)) {
		errs = append(errs, "ユーザー名と類似するパスワードは使用できません")
	}

	return Result{Errors: errs, Valid: len(errs) == 0}
}

// ConfirmPassword checks the confirmation field against the password.
func ConfirmPassword(password, confirm string) Result {
	if confirm == "" {
		return Result{Errors: []string{"パスワード確認は必須です"}}
	}

	var errs []string
	if password != confirm {
		errs = append(errs, "パスワードが一致しません")
	}

	return Result{Errors: errs, Valid: len(errs) == 0}
}

// LoginInput validates login credentials. Deliberately looser than the
// registration rules: only required checks and DoS-guard length caps,
// so old accounts that predate a rule change can still log in.
func LoginInput(username, password string) FormResult {
	errs := FieldErrors{
		"username": {},
		"password": {},
	}

	if strings.TrimSpace(username) == "" {
		errs["username"] = append(errs["username"], "ユーザー名を入力してください")
	}
	if password == "" {
		errs["password"] = append(errs["password"], "パスワードを入力してください")
	}

	if utf8.RuneCountInString(username) > loginUsernameMaxLen {
		errs["username"] = append(errs["username"], "ユーザー名が長すぎます")
	}
	if utf8.RuneCountInString(password) > loginPasswordMaxLen {
		errs["password"] = append(errs["password"], "パスワードが長すぎます")
	}

	return formResult(errs)
}

// PostForm holds the raw post form inputs.
type PostForm struct {
	Category    string
	Title       string
	Description string
	Recommend1  string
	Recommend2  string
	Recommend3  string
}

// PostFormInput validates the post creation/edit form.
func PostFormInput(f PostForm) FormResult {
	errs := FieldErrors{
		"category":    {},
		"title":       {},
		"description": {},
		"recommend1":  {},
		"recommend2":  {},
		"recommend3":  {},
	}

	if f.Category == "" {
		errs["category"] = append(errs["category"], "カテゴリを選択してください")
	}

	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = append(errs["title"], "タイトルを入力してください")
	} else if n := utf8.RuneCountInString(f.Title); n < 1 || n > titleMaxLen {
		errs["title"] = append(errs["title"], "タイトルは1文字以上50文字以下で入力してください")
	}

	// Description is optional, only bounded when present.
	if desc := strings.TrimSpace(f.Description); utf8.RuneCountInString(desc) > descriptionMaxLen {
		errs["description"] = append(errs["description"], "説明は300文字以下で入力してください")
	}

	recommends := []struct {
		field    string
		value    string
		required string
	}{
		{"recommend1", f.Recommend1, "1位のおすすめを入力してください"},
		{"recommend2", f.Recommend2, "2位のおすすめを入力してください"},
		{"recommend3", f.Recommend3, "3位のおすすめを入力してください"},
	}

	for _, r := range recommends {
		if strings.TrimSpace(r.value) == "" {
			errs[r.field] = append(errs[r.field], r.required)
		} else if n := utf8.RuneCountInString(r.value); n < 1 || n > recommendMaxLen {
			errs[r.field] = append(errs[r.field], "おすすめは1文字以上50文字以下で入力してください")
		}
	}

	return formResult(errs)
}

// CommentInput validates the comment form.
func CommentInput(content string) FormResult {
	errs := FieldErrors{
		"comment": {},
	}

	if strings.TrimSpace(content) == "" {
		errs["comment"] = append(errs["comment"], "コメントを入力してください")
	}
	if utf8.RuneCountInString(content) > commentMaxLen {
		errs["comment"] = append(errs["comment"], "コメントは200文字以下で入力してください")
	}

	return formResult(errs)
}
