// Package models defines vault entry types and their fields.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sealbox/internal/common"
)

// EntryType classifies an entry kind.
type EntryType string

const (
	EntryTypeLogin      EntryType = "login"
	EntryTypeNote       EntryType = "note"
	EntryTypeCreditCard EntryType = "credit_card"
)

var ErrIncorrectMetadata = errors.New("metadata item must be name=value")

// Metadata is a simple key/value pair attached to an entry.
type Metadata struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MetadataFromString parses "name=value" lines collected from the user.
func MetadataFromString(s []string) ([]Metadata, error) {
	data := make([]Metadata, len(s))
	for n, item := range s {
		parts := strings.Split(item, "=")
		if len(parts) != 2 {
			return nil, ErrIncorrectMetadata
		}
		data[n] = Metadata{Name: parts[0], Value: parts[1]}
	}
	return data, nil
}

// Overview is the listing form of an entry: enough to find it, nothing
// sensitive.
type Overview struct {
	ID    string    `json:"id"`
	Type  EntryType `json:"type"`
	Title string    `json:"title"`
}

func (o Overview) String() string {
	return fmt.Sprintf("%s  [%s]  %s", o.ID, o.Type, o.Title)
}

// Envelope is the stored form of one vault entry. Details holds the typed
// payload as raw JSON; Type says how to decode it. The whole entry list is
// what the vault codec encrypts.
type Envelope struct {
	ID       string          `json:"id"`
	Type     EntryType       `json:"type"`
	Title    string          `json:"title"`
	Metadata []Metadata      `json:"metadata,omitempty"`
	Details  json.RawMessage `json:"details"`
}

// Wrap builds an Envelope around a typed payload.
func Wrap[T any](id string, t EntryType, title string, md []Metadata, v T) (Envelope, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{ID: id, Type: t, Title: title, Metadata: md, Details: b}, nil
}

// Unwrap decodes Details according to Type. Unknown types and payloads that
// do not decode into the declared shape are rejected with
// common.ErrInvalidInput; there is no untyped fallback.
func (e Envelope) Unwrap() (any, error) {
	switch e.Type {
	case EntryTypeLogin:
		var v Login
		if err := e.decodeDetails(&v); err != nil {
			return nil, err
		}
		return v, nil
	case EntryTypeNote:
		var v Note
		if err := e.decodeDetails(&v); err != nil {
			return nil, err
		}
		return v, nil
	case EntryTypeCreditCard:
		var v CreditCard
		if err := e.decodeDetails(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: unknown entry type %q", common.ErrInvalidInput, e.Type)
	}
}

func (e Envelope) decodeDetails(v any) error {
	if err := json.Unmarshal(e.Details, v); err != nil {
		return fmt.Errorf("%w: malformed %s details: %s", common.ErrInvalidInput, e.Type, err)
	}
	return nil
}

func (e Envelope) Overview() Overview {
	return Overview{ID: e.ID, Type: e.Type, Title: e.Title}
}

// TypedEntry is implemented by all concrete entry payloads.
type TypedEntry interface {
	GetType() EntryType
}

// Login stores credentials.
type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url"`
}

func (x Login) GetType() EntryType { return EntryTypeLogin }

// Note stores free-form text.
type Note struct {
	Text string `json:"text"`
}

func (x Note) GetType() EntryType { return EntryTypeNote }

// CreditCard stores payment card details.
type CreditCard struct {
	Number     string `json:"number"`
	Expiration string `json:"expiration"`
	CVV        string `json:"cvv"`
	Holder     string `json:"holder"`
}

func (x CreditCard) GetType() EntryType { return EntryTypeCreditCard }
