package service

import (
	"context"
	"sync"
	"time"

	"github.com/wedding-dream/messaging-service/internal/domain"
	"github.com/wedding-dream/messaging-service/internal/postgres"

	"github.com/google/uuid"
)

type fakeThreadRepo struct {
	mu           sync.Mutex
	threads      map[string]*domain.Thread
	participants map[string]map[int64]*domain.ThreadParticipant

	incrementErr error
}

func newFakeThreadRepo() *fakeThreadRepo {
	return &fakeThreadRepo{
		threads:      make(map[string]*domain.Thread),
		participants: make(map[string]map[int64]*domain.ThreadParticipant),
	}
}

func (r *fakeThreadRepo) addThread(listingID *int64, userIDs ...int64) *domain.Thread {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addThreadLocked(listingID, userIDs...)
}

func (r *fakeThreadRepo) addThreadLocked(listingID *int64, userIDs ...int64) *domain.Thread {
	t := &domain.Thread{
		ID:          uuid.NewString(),
		ListingID:   listingID,
		LastUpdated: time.Now(),
		CreatedAt:   time.Now(),
	}
	r.threads[t.ID] = t
	r.participants[t.ID] = make(map[int64]*domain.ThreadParticipant)
	for _, uid := range userIDs {
		r.participants[t.ID][uid] = &domain.ThreadParticipant{ThreadID: t.ID, UserID: uid}
	}
	return t
}

func (r *fakeThreadRepo) unread(threadID string, userID int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.participants[threadID][userID]; ok {
		return p.UnreadCount
	}
	return 0
}

func (r *fakeThreadRepo) GetOrCreate(_ context.Context, listingID *int64, userID int64) (*domain.Thread, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.threads {
		sameListing := (t.ListingID == nil && listingID == nil) ||
			(t.ListingID != nil && listingID != nil && *t.ListingID == *listingID)
		if sameListing {
			if _, ok := r.participants[id][userID]; ok {
				return t, false, nil
			}
		}
	}
	return r.addThreadLocked(listingID, userID), true, nil
}

func (r *fakeThreadRepo) Get(_ context.Context, id string) (*domain.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.threads[id]; ok {
		return t, nil
	}
	return nil, domain.ErrThreadNotFound
}

func (r *fakeThreadRepo) AddParticipant(_ context.Context, threadID string, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.participants[threadID][userID]; !ok {
		r.participants[threadID][userID] = &domain.ThreadParticipant{ThreadID: threadID, UserID: userID}
	}
	return nil
}

func (r *fakeThreadRepo) IsParticipant(_ context.Context, threadID string, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.participants[threadID][userID]
	return ok, nil
}

func (r *fakeThreadRepo) ListForUser(_ context.Context, userID int64) ([]postgres.ThreadListRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []postgres.ThreadListRow
	for id, parts := range r.participants {
		if p, ok := parts[userID]; ok {
			out = append(out, postgres.ThreadListRow{Thread: *r.threads[id], UnreadCount: p.UnreadCount})
		}
	}
	return out, nil
}

func (r *fakeThreadRepo) IncrementUnreadForOthers(_ context.Context, threadID string, senderID int64) error {
	if r.incrementErr != nil {
		return r.incrementErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for uid, p := range r.participants[threadID] {
		if uid != senderID {
			p.UnreadCount++
		}
	}
	if t, ok := r.threads[threadID]; ok {
		t.LastUpdated = time.Now()
	}
	return nil
}

func (r *fakeThreadRepo) MarkRead(_ context.Context, threadID string, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.participants[threadID][userID]; ok {
		p.UnreadCount = 0
		now := time.Now()
		p.LastReadAt = &now
	}
	return nil
}

func (r *fakeThreadRepo) UnreadFor(_ context.Context, threadID string, userID int64) (int64, error) {
	return r.unread(threadID, userID), nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	byThread map[string][]domain.Message

	appendErr error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{byThread: make(map[string][]domain.Message)}
}

func (r *fakeMessageRepo) Append(_ context.Context, threadID string, senderID int64, text string) (*domain.Message, error) {
	if r.appendErr != nil {
		return nil, r.appendErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m := domain.Message{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	r.byThread[threadID] = append(r.byThread[threadID], m)
	return &m, nil
}

func (r *fakeMessageRepo) List(_ context.Context, threadID string, limit, offset int) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.byThread[threadID]
	if offset >= len(msgs) {
		return nil, nil
	}
	end := offset + limit
	if end > len(msgs) {
		end = len(msgs)
	}
	out := make([]domain.Message, end-offset)
	copy(out, msgs[offset:end])
	return out, nil
}

func (r *fakeMessageRepo) Count(_ context.Context, threadID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byThread[threadID])), nil
}

type fakeListingRepo struct {
	existing map[int64]bool
}

func (r *fakeListingRepo) Exists(_ context.Context, id int64) (bool, error) {
	return r.existing[id], nil
}

type fakeContactRepo struct {
	created []*domain.ContactRequest
}

func (r *fakeContactRepo) Create(_ context.Context, c *domain.ContactRequest) error {
	c.ID = int64(len(r.created) + 1)
	c.CreatedAt = time.Now()
	r.created = append(r.created, c)
	return nil
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []*domain.Message
}

func (b *recordingBroadcaster) Broadcast(_ string, msg *domain.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, msg)
}

func (b *recordingBroadcaster) all() []*domain.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*domain.Message(nil), b.events...)
}
