package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/sealbox/internal/client/models"
)

// addEntry is a small workflow helper that:
//  1. prompts for the common "envelope" fields (title, metadata) and the
//     concrete entry payload via addEntryDetails,
//  2. delegates the final persist/sync to vaultService.Add.
//
// On any failure the error is logged and returned unchanged.
func (a *App) addEntry(ctx context.Context, addEntryDetails func(context.Context) (models.TypedEntry, error)) error {
	item, err := a.inputEnvelope(ctx, a.reader, addEntryDetails)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if err := a.vaultService.Add(ctx, item, a.masterKey); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println("Saved.")
	return nil
}

// AddNote collects a note body and persists it as a new entry.
func (a *App) AddNote(ctx context.Context) error {
	return a.addEntry(ctx, a.addNoteDetails)
}

// AddCreditCard collects credit-card fields and persists them as a new entry.
func (a *App) AddCreditCard(ctx context.Context) error {
	return a.addEntry(ctx, a.addCreditCardDetails)
}

// AddLogin collects login credentials and persists them as a new entry.
func (a *App) AddLogin(ctx context.Context) error {
	return a.addEntry(ctx, a.addLoginDetails)
}

// addNoteDetails prompts for a multi-line note text and returns a typed payload.
func (a *App) addNoteDetails(ctx context.Context) (models.TypedEntry, error) {
	text, err := GetMultiline(a.reader, "Enter note text (double Enter to finish):", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return nil, err
	}
	return &models.Note{Text: text}, nil
}

// addCreditCardDetails prompts for card details and returns a typed payload.
func (a *App) addCreditCardDetails(ctx context.Context) (models.TypedEntry, error) {
	number, err := getSimpleText(a.reader, "Enter card number", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return nil, err
	}
	expiration, err := getSimpleText(a.reader, "Enter expiration", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return nil, err
	}
	cvv, err := getSimpleText(a.reader, "Enter CVV", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return nil, err
	}
	holder, err := getSimpleText(a.reader, "Enter holder", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return nil, err
	}
	return &models.CreditCard{Number: number, Expiration: expiration, CVV: cvv, Holder: holder}, nil
}

// addLoginDetails prompts for login credentials and returns a typed payload.
func (a *App) addLoginDetails(ctx context.Context) (models.TypedEntry, error) {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return nil, err
	}
	password, err := getSimpleText(a.reader, "Enter password", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return nil, err
	}
	url, err := getSimpleText(a.reader, "Enter URL", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return nil, err
	}
	return &models.Login{Username: username, Password: password, URL: url}, nil
}

// inputEnvelope gathers the common envelope data (title, metadata) and obtains
// a typed payload via 'rest'. The entry ID is left empty; the vault service
// assigns one on Add.
func (a *App) inputEnvelope(
	ctx context.Context,
	r *bufio.Reader,
	rest func(ctx context.Context) (models.TypedEntry, error),
) (models.Envelope, error) {
	var zero models.Envelope

	title, err := getSimpleText(r, "Enter title", os.Stdout)
	if err != nil {
		return zero, fmt.Errorf("get title: %w", err)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return zero, fmt.Errorf("title is required")
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	payload, err := rest(ctx)
	if err != nil {
		return zero, err
	}

	md, err := GetMetadata(r)
	if err != nil {
		return zero, err
	}
	metadata, err := models.MetadataFromString(md)
	if err != nil {
		return zero, err
	}

	return models.Wrap("", payload.GetType(), title, metadata, payload)
}

// List prints a short textual representation for each stored entry.
// Decryption uses the in-memory master key.
func (a *App) List(ctx context.Context) error {
	s, err := a.vaultService.List(ctx, a.masterKey)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	for _, item := range s {
		fmt.Println(item)
	}
	return nil
}

// Sync refreshes the local vault copy from the server.
func (a *App) Sync(ctx context.Context) error {
	if err := a.vaultService.Sync(ctx); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println("Synced.")
	return nil
}

// Delete removes an entry by its identifier, prompting the user for the ID.
func (a *App) Delete(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter record id to delete", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.vaultService.DeleteByID(ctx, id, a.masterKey); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	return nil
}

// Show fetches and displays a single entry by ID: the title, the typed
// fields, and the envelope metadata as "name: value" lines.
func (a *App) Show(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter record id to show", os.Stdout)
	if err != nil {
		return err
	}

	envelope, err := a.vaultService.Get(ctx, id, a.masterKey)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	log.Println(envelope.Title)

	x, err := envelope.Unwrap()
	if err != nil {
		return err
	}

	switch item := x.(type) {
	case models.Note:
		log.Printf("Note: %s", item.Text)

	case models.CreditCard:
		log.Printf("Number: %s", item.Number)
		log.Printf("Expiration: %s", item.Expiration)
		log.Printf("CVV: %s", item.CVV)
		log.Printf("Holder: %s", item.Holder)

	case models.Login:
		log.Printf("Username: %s", item.Username)
		log.Printf("Password: %s", item.Password)
		log.Printf("URL: %s", item.URL)
	}

	for _, md := range envelope.Metadata {
		log.Printf("%s: %s", md.Name, md.Value)
	}
	return nil
}
