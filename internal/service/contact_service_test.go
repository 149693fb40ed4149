package service

import (
	"context"
	"testing"

	"github.com/wedding-dream/messaging-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestContactCreate(t *testing.T) {
	contacts := &fakeContactRepo{}
	listings := &fakeListingRepo{existing: map[int64]bool{7: true}}
	svc := NewContactService(contacts, listings)

	c, err := svc.Create(context.Background(), 7, " Anna ", "anna@example.com", "Is the venue free in June?")
	require.NoError(t, err)
	require.Equal(t, "Anna", c.Name)
	require.NotZero(t, c.ID)
	require.Len(t, contacts.created, 1)
}

func TestContactCreateUnknownListing(t *testing.T) {
	svc := NewContactService(&fakeContactRepo{}, &fakeListingRepo{existing: map[int64]bool{}})

	_, err := svc.Create(context.Background(), 404, "Anna", "anna@example.com", "hi")
	require.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestContactCreateValidation(t *testing.T) {
	svc := NewContactService(&fakeContactRepo{}, &fakeListingRepo{existing: map[int64]bool{7: true}})
	ctx := context.Background()

	cases := []struct {
		name, contact, message string
	}{
		{"", "anna@example.com", "hi"},
		{"Anna", "", "hi"},
		{"Anna", "anna@example.com", "   "},
	}
	for _, tc := range cases {
		_, err := svc.Create(ctx, 7, tc.name, tc.contact, tc.message)
		require.ErrorIs(t, err, ErrContactInvalid)
	}
}
