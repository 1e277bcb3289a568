package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Username string
	Password string
}

// handlerがCookieに詰める
type LoginOutput struct {
	Token     string
	ExpiresAt time.Time
}

// ユーザー名またはパスワードが違う
var ErrInvalidCredentials = errors.New("invalid credentials")

// 管理者は設定ファイルの1アカウントのみ
type LoginUsecase struct {
	username     string
	passwordHash string
	verifier     PasswordVerifier
	issuer       AccessTokenIssuer
	clock        Clock
}

// DI
func NewLoginUsecase(
	username string,
	passwordHash string,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
) *LoginUsecase {
	return &LoginUsecase{
		username:     username,
		passwordHash: passwordHash,
		verifier:     verifier,
		issuer:       issuer,
		clock:        clock,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return LoginOutput{}, ErrInvalidCredentials
	}

	//ユーザー名とパスワードは両方照合してから判定
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(u.username)) == 1
	passOK := u.verifier.Verify(in.Password, u.passwordHash)
	if !userOK || !passOK {
		return LoginOutput{}, ErrInvalidCredentials
	}

	token, exp, err := u.issuer.Issue(u.username, RoleAdmin, u.clock.Now())
	if err != nil {
		return LoginOutput{}, err
	}
	return LoginOutput{Token: token, ExpiresAt: exp}, nil
}
