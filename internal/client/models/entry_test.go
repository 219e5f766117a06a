package models

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sealbox/internal/common"
)

func TestMetadataFromString_OK(t *testing.T) {
	in := []string{"a=1", "b=two", "name = value"}
	md, err := MetadataFromString(in)
	require.NoError(t, err)
	require.Len(t, md, 3)
	require.Equal(t, "a", md[0].Name)
	require.Equal(t, "1", md[0].Value)
	require.Equal(t, "b", md[1].Name)
	require.Equal(t, "two", md[1].Value)
	require.Equal(t, "name ", md[2].Name)
	require.Equal(t, " value", md[2].Value)
}

func TestMetadataFromString_ErrorOnMalformed(t *testing.T) {
	_, err := MetadataFromString([]string{"justname", "x=y", "a=b=c"})
	require.ErrorIs(t, err, ErrIncorrectMetadata)
}

func TestWrapUnwrap_Login(t *testing.T) {
	src := Login{Username: "u", Password: "p", URL: "https://ex"}
	env, err := Wrap("id-1", EntryTypeLogin, "title", []Metadata{{Name: "k", Value: "v"}}, src)
	require.NoError(t, err)

	out, err := env.Unwrap()
	require.NoError(t, err)

	got, ok := out.(Login)
	require.True(t, ok)
	require.Equal(t, src, got)
	require.Equal(t, Overview{ID: "id-1", Type: EntryTypeLogin, Title: "title"}, env.Overview())
}

func TestWrapUnwrap_Note(t *testing.T) {
	src := Note{Text: "hello"}
	env, err := Wrap("id-2", EntryTypeNote, "t", nil, src)
	require.NoError(t, err)

	out, err := env.Unwrap()
	require.NoError(t, err)
	got, ok := out.(Note)
	require.True(t, ok)
	require.Equal(t, src, got)
}

func TestWrapUnwrap_CreditCard(t *testing.T) {
	src := CreditCard{Number: "4111", Expiration: "12/25", CVV: "123", Holder: "John"}
	env, err := Wrap("id-3", EntryTypeCreditCard, "cc", nil, src)
	require.NoError(t, err)

	out, err := env.Unwrap()
	require.NoError(t, err)
	got, ok := out.(CreditCard)
	require.True(t, ok)
	require.Equal(t, src, got)
}

func TestUnwrap_UnknownTypeRejected(t *testing.T) {
	env := Envelope{
		Type:    EntryType("wallet"),
		Title:   "x",
		Details: []byte(`{"a":1}`),
	}
	_, err := env.Unwrap()
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestUnwrap_MalformedDetailsRejected(t *testing.T) {
	env := Envelope{
		Type:    EntryTypeLogin,
		Title:   "x",
		Details: []byte(`{"username": 42}`),
	}
	_, err := env.Unwrap()
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestOverviewString(t *testing.T) {
	o := Overview{ID: "id-1", Type: EntryTypeNote, Title: "groceries"}
	require.Equal(t, "id-1  [note]  groceries", o.String())
}
