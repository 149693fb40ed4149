package service

import (
	"context"
	"sync"
	"testing"

	"github.com/wedding-dream/messaging-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func newThreadFixture() (*ThreadService, *fakeThreadRepo, *fakeListingRepo) {
	threads := newFakeThreadRepo()
	listings := &fakeListingRepo{existing: map[int64]bool{7: true}}
	return NewThreadService(threads, listings), threads, listings
}

func TestStartCreatesOnceThenReuses(t *testing.T) {
	svc, _, _ := newThreadFixture()
	ctx := context.Background()
	listing := int64(7)

	first, created, err := svc.Start(ctx, &listing, nil, 1)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.Start(ctx, &listing, nil, 1)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID, "same (listing, initiator) pair resolves to one thread")
}

func TestStartUnknownListing(t *testing.T) {
	svc, _, _ := newThreadFixture()
	listing := int64(404)

	_, _, err := svc.Start(context.Background(), &listing, nil, 1)
	require.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestStartGeneralInquiryWithoutListing(t *testing.T) {
	svc, _, _ := newThreadFixture()

	thread, created, err := svc.Start(context.Background(), nil, nil, 1)
	require.NoError(t, err)
	require.True(t, created)
	require.Nil(t, thread.ListingID)
}

func TestStartAddsCounterpart(t *testing.T) {
	svc, threads, _ := newThreadFixture()
	ctx := context.Background()
	listing, counterpart := int64(7), int64(2)

	thread, _, err := svc.Start(ctx, &listing, &counterpart, 1)
	require.NoError(t, err)

	ok, err := threads.IsParticipant(ctx, thread.ID, 2)
	require.NoError(t, err)
	require.True(t, ok, "listing counterpart joins the thread at start")
}

func TestStartConcurrentSameInitiator(t *testing.T) {
	svc, threads, _ := newThreadFixture()
	listing := int64(7)

	var wg sync.WaitGroup
	ids := make([]string, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			th, _, err := svc.Start(context.Background(), &listing, nil, 1)
			require.NoError(t, err)
			ids[i] = th.ID
		}(i)
	}
	wg.Wait()

	require.Equal(t, ids[0], ids[1], "two tabs must not create two threads")
	require.Len(t, threads.threads, 1)
}

func TestMarkReadIdempotent(t *testing.T) {
	svc, threads, _ := newThreadFixture()
	ctx := context.Background()
	thread := threads.addThread(nil, 1, 2)
	threads.participants[thread.ID][2].UnreadCount = 5

	require.NoError(t, svc.MarkRead(ctx, thread.ID, 2))
	require.Equal(t, int64(0), threads.unread(thread.ID, 2))

	require.NoError(t, svc.MarkRead(ctx, thread.ID, 2))
	require.Equal(t, int64(0), threads.unread(thread.ID, 2))
}

func TestMarkReadDeniedForOutsider(t *testing.T) {
	svc, threads, _ := newThreadFixture()
	thread := threads.addThread(nil, 1)

	err := svc.MarkRead(context.Background(), thread.ID, 99)
	require.ErrorIs(t, err, domain.ErrThreadNotFound)
}

func TestDetailForParticipantAndOutsider(t *testing.T) {
	svc, threads, _ := newThreadFixture()
	ctx := context.Background()
	thread := threads.addThread(nil, 1, 2)
	threads.participants[thread.ID][1].UnreadCount = 3

	got, unread, err := svc.Detail(ctx, thread.ID, 1)
	require.NoError(t, err)
	require.Equal(t, thread.ID, got.ID)
	require.Equal(t, int64(3), unread)

	_, _, err = svc.Detail(ctx, thread.ID, 99)
	require.ErrorIs(t, err, domain.ErrThreadNotFound)
}

func TestAuthorizeRejectsMalformedThreadID(t *testing.T) {
	svc, _, _ := newThreadFixture()

	err := svc.Authorize(context.Background(), "not-a-uuid", 1)
	require.ErrorIs(t, err, domain.ErrThreadNotFound)
}
