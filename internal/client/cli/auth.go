package cli

import (
	"context"
	"fmt"
	"log"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the sign-up fields and creates an account via the
// external identity provider. The account still needs confirmation; the
// provider sends a 6-digit code to the given email.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}

	phone, err := getSimpleText(a.reader, "Enter phone (e.g. +12125550101)", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if _, err := a.client.SignUp(ctx, email, string(password), name, phone); err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	fmt.Println("Account created. Check your email for the confirmation code, then run 'confirm'.")
	return nil
}

// Confirm prompts for the emailed 6-digit code and confirms the account.
func (a *App) Confirm(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	code, err := getSimpleText(a.reader, "Enter confirmation code", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.client.ConfirmSignUp(ctx, email, code); err != nil {
		log.Printf("Confirmation unsuccessful: %s", err.Error())
		return err
	}

	fmt.Println("Account confirmed. You can log in now.")
	return nil
}

// Resend requests a fresh confirmation code for an unconfirmed account.
func (a *App) Resend(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.client.ResendCode(ctx, email); err != nil {
		log.Printf("Resend unsuccessful: %s", err.Error())
		return err
	}

	fmt.Println("Confirmation code sent.")
	return nil
}

// Login prompts for credentials and authenticates against the backend.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.client.SignIn(ctx, email, string(password)); err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	session, err := a.client.Session()
	if err != nil {
		return err
	}
	fmt.Printf("Welcome, %s!\n", session.Name)
	return nil
}

// Logout revokes the refresh token server-side and drops the session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.client.SignOut(ctx); err != nil {
		log.Printf("Logout unsuccessful: %s", err.Error())
		return err
	}
	fmt.Println("Logged out.")
	return nil
}
