package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/sealbox/internal/client/api"
	"github.com/dmitrijs2005/sealbox/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for a username and password and attempts to
// create a new account via the AuthService.
//
// On success it prints "Success!" and returns nil. The password byte slice
// is securely wiped before returning. Any I/O or service error is returned
// unchanged.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, userName, password); err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Login prompts the user for credentials and tries to authenticate.
//
// The method first attempts an online login. If the server is unavailable
// (errors.Is(err, api.ErrUnavailable)), it falls back to offline login
// against the local cache. On success it sets a.masterKey and updates
// connectivity Mode:
//   - ModeOnline if online login succeeds,
//   - ModeOffline if offline login succeeds,
//   - ModeDisabled if the server is unreachable and offline login fails.
//
// A plain authentication failure (wrong password while online) leaves the
// Mode untouched. The password is securely wiped before returning. Login
// reports failures to the user itself and returns nil for them; inspect
// App.Mode and isLoggedIn for the outcome.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	masterKey, err := a.authService.OnlineLogin(ctx, userName, password)

	switch {
	case err == nil:
		log.Printf("Login successful")
		a.setMode(ModeOnline)

	case errors.Is(err, api.ErrUnavailable):
		log.Printf("Server unavailable, trying offline login...")
		masterKey, err = a.authService.OfflineLogin(ctx, userName, password)
		if err != nil {
			log.Printf("Offline login unsuccessful: %s", err.Error())
			a.setMode(ModeDisabled)
			return nil
		}
		log.Printf("Offline login successful")
		a.setMode(ModeOffline)

	default:
		log.Printf("Login unsuccessful: %s", err.Error())
		return nil
	}

	a.masterKey = masterKey
	a.userName = userName
	return nil
}

// Logout clears locally cached offline data, wipes the in-memory masterKey,
// and forgets the user name. It returns any error from the AuthService
// cleanup.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.ClearOfflineData(ctx); err != nil {
		return err
	}
	common.WipeByteArray(a.masterKey)
	a.masterKey = nil
	a.userName = ""
	return nil
}
