package mtproto

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/samber/oops"
	"golang.org/x/term"
)

// Terminal asks for the login code and the 2FA password on the controlling
// terminal. It is only used on the first start, before a session exists.
type Terminal struct {
	phone   string
	in      *bufio.Reader
	out     io.Writer
	stdinfd int
}

var _ auth.UserAuthenticator = (*Terminal)(nil)

func NewTerminal(phone string) *Terminal {
	return &Terminal{
		phone:   phone,
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		stdinfd: int(os.Stdin.Fd()),
	}
}

// Interactive reports whether a user can answer the prompts.
func (t *Terminal) Interactive() bool {
	return t.phone != "" && term.IsTerminal(t.stdinfd)
}

func (t *Terminal) Phone(_ context.Context) (string, error) {
	return t.phone, nil
}

func (t *Terminal) Password(_ context.Context) (string, error) {
	fmt.Fprint(t.out, "Enter 2FA password: ")
	pwd, err := term.ReadPassword(t.stdinfd)
	if err != nil {
		return "", oops.With("context", "failed to read password").Wrap(err)
	}
	fmt.Fprintln(t.out)
	return string(pwd), nil
}

func (t *Terminal) AcceptTermsOfService(_ context.Context, tos tg.HelpTermsOfService) error {
	fmt.Fprintf(t.out, "Accepting Terms of Service: %s\n", tos.Text)
	return nil
}

func (t *Terminal) Code(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	fmt.Fprint(t.out, "Enter code: ")
	code, err := t.in.ReadString('\n')
	if err != nil {
		return "", oops.With("context", "failed to read code").Wrap(err)
	}
	return strings.TrimSpace(code), nil
}

func (t *Terminal) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, oops.Errorf("sign up is not supported, register the account with an official client")
}
