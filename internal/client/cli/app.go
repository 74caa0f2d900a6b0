// Package cli implements the interactive login client: it walks the
// two-phase authentication against the identity server and prints the
// resulting session token.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/lostgates/identity/internal/client/api"
	"github.com/lostgates/identity/internal/common"
)

// AuthClient is the server-side contract the app needs.
type AuthClient interface {
	Login(ctx context.Context, username, password string) (*api.LoginResult, error)
	CompleteTwoFactorLogin(ctx context.Context, temporaryToken, code string) (*api.TokenPair, error)
}

// App drives the interactive login flow.
type App struct {
	client AuthClient
	in     *bufio.Reader
	out    io.Writer
}

func NewApp(client AuthClient, in io.Reader, out io.Writer) *App {
	return &App{client: client, in: bufio.NewReader(in), out: out}
}

// Run prompts for credentials, performs both login phases, and prints the
// session token. Password bytes are wiped after use.
func (a *App) Run(ctx context.Context) error {
	username, err := GetSimpleText(a.in, "Username", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	res, err := a.client.Login(ctx, username, string(password))
	common.WipeByteArray(password)
	if err != nil {
		return err
	}

	if res.RequiresSetup {
		fmt.Fprintln(a.out, "Two-factor authentication is not set up for this account.")
		fmt.Fprintln(a.out, "Finish enrollment first, then log in again.")
		return errors.New("two-factor enrollment required")
	}

	code, err := GetSimpleText(a.in, "Enter the 6-digit code from your authenticator app", a.out)
	if err != nil {
		return err
	}

	tokens, err := a.client.CompleteTwoFactorLogin(ctx, res.TemporaryToken, code)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Login successful.")
	fmt.Fprintf(a.out, "Access token: %s\n", tokens.AccessToken)
	fmt.Fprintf(a.out, "Refresh token: %s\n", tokens.RefreshToken)
	return nil
}
