package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/offcampus/rollcall/internal/client/remote"
	"github.com/offcampus/rollcall/internal/common"
	"github.com/offcampus/rollcall/internal/cryptox"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for credentials and creates the account, locally first
// so the device works offline from the start. The authority copy is
// best-effort: when the server is unreachable the account still exists
// locally and the user can register remotely later.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	displayName, err := getSimpleText(a.reader, "Enter display name", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer cryptox.WipeByteArray(password)

	account, err := a.auth.SignUp(ctx, userName, string(password), displayName)
	if err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	if err := a.authority.Register(ctx, userName, string(password)); err != nil {
		if errors.Is(err, remote.ErrUnavailable) {
			log.Printf("Authority unreachable, account created locally only")
		} else {
			log.Printf("Authority registration failed: %s", err.Error())
		}
	}

	a.account = account
	fmt.Println("Success!")
	return nil
}

// Login prompts for credentials and tries to authenticate.
//
// Local login decides success: the device must work with no connectivity at
// all. An authority login is then attempted for sync tokens; its outcome
// only sets the connectivity mode.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer cryptox.WipeByteArray(password)

	account, err := a.auth.Login(ctx, userName, string(password))
	if err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	if err := a.authorityLogin(ctx, userName, string(password)); err != nil {
		log.Printf("Authority unreachable, continuing offline: %s", err.Error())
		a.setMode(ModeOffline)
	} else {
		a.setMode(ModeOnline)
		a.scheduler.Kick()
	}

	a.account = account
	log.Printf("Login successful")
	return nil
}

// authorityLogin obtains sync tokens for an account that already passed
// local login. An account created while the authority was unreachable does
// not exist remotely yet, so a credentials rejection is retried as a
// registration with the same credentials.
func (a *App) authorityLogin(ctx context.Context, userName, password string) error {
	err := a.authority.Login(ctx, userName, password)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrorInvalidCredentials) {
		return err
	}

	log.Printf("Account unknown to authority, registering it now")
	if rerr := a.authority.Register(ctx, userName, password); rerr != nil {
		return rerr
	}
	return nil
}

// Logout drops the in-memory account. Local data stays: pending records
// must survive logout to reach the authority eventually.
func (a *App) Logout(ctx context.Context) error {
	a.account = nil
	return nil
}
