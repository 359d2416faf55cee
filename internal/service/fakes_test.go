package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/prohmpiriya/explore-events/internal/domain"
	"github.com/prohmpiriya/explore-events/internal/stats"
	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *Config {
	return &Config{AppName: "ewm-main-service", Now: func() time.Time { return testNow }}
}

// memStore is an in-memory backing store shared by the fake repositories
type memStore struct {
	mu         sync.Mutex
	eventLock  sync.Mutex
	nextID     int64
	users      map[int64]domain.UserShort
	categories map[int64]domain.Category
	events     map[int64]domain.Event
	requests   map[int64]domain.ParticipationRequest
	votes      map[[2]int64]domain.VoteValue

	statusWrites int
}

func newMemStore() *memStore {
	return &memStore{
		nextID:     100,
		users:      map[int64]domain.UserShort{},
		categories: map[int64]domain.Category{},
		events:     map[int64]domain.Event{},
		requests:   map[int64]domain.ParticipationRequest{},
		votes:      map[[2]int64]domain.VoteValue{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addUser(id int64, name string) domain.UserShort {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := domain.UserShort{ID: id, Name: name}
	s.users[id] = u
	return u
}

func (s *memStore) addCategory(id int64, name string) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := domain.Category{ID: id, Name: name}
	s.categories[id] = c
	return c
}

// addEvent stores e as is, assigning an id when it has none
func (s *memStore) addEvent(e domain.Event) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		e.ID = s.id()
	}
	s.events[e.ID] = e
	return e.ID
}

func (s *memStore) addRequest(r domain.ParticipationRequest) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.id()
	}
	s.requests[r.ID] = r
	return r.ID
}

func (s *memStore) request(id int64) domain.ParticipationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[id]
}

func (s *memStore) event(id int64) domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadEvent(s.events[id])
}

// loadEvent returns a copy of e with ConfirmedRequests computed. Callers hold mu.
func (s *memStore) loadEvent(e domain.Event) domain.Event {
	e.ConfirmedRequests = 0
	for _, r := range s.requests {
		if r.EventID == e.ID && r.Status == domain.RequestStatusConfirmed {
			e.ConfirmedRequests++
		}
	}
	return e
}

type fakeUsers struct{ *memStore }

func (f fakeUsers) GetByID(_ context.Context, id int64) (*domain.UserShort, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrUserNotFound, id)
	}
	return &u, nil
}

type fakeCategories struct{ *memStore }

func (f fakeCategories) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrCategoryNotFound, id)
	}
	return &c, nil
}

type fakeEvents struct{ *memStore }

func (f fakeEvents) Create(_ context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = f.id()
	f.events[e.ID] = *e
	return nil
}

func (f fakeEvents) GetByID(_ context.Context, id int64) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrEventNotFound, id)
	}
	e = f.loadEvent(e)
	return &e, nil
}

func (f fakeEvents) GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*domain.Event, error) {
	e, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Initiator.ID != initiatorID {
		return nil, fmt.Errorf("%w: %d", domain.ErrEventNotFound, id)
	}
	return e, nil
}

func (f fakeEvents) Update(_ context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[e.ID]; !ok {
		return domain.ErrEventNotFound
	}
	f.events[e.ID] = *e
	return nil
}

func (f fakeEvents) ListByInitiator(ctx context.Context, initiatorID int64, page domain.Page) ([]*domain.Event, error) {
	return f.Search(ctx, domain.EventSearch{Users: []int64{initiatorID}}, &page)
}

// Search supports the user, state, category and date filters
func (f fakeEvents) Search(_ context.Context, filter domain.EventSearch, page *domain.Page) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.Event
	for _, stored := range f.events {
		e := f.loadEvent(stored)
		if len(filter.Users) > 0 && !slices.Contains(filter.Users, e.Initiator.ID) {
			continue
		}
		if len(filter.States) > 0 && !slices.Contains(filter.States, e.State) {
			continue
		}
		if len(filter.Categories) > 0 && !slices.Contains(filter.Categories, e.Category.ID) {
			continue
		}
		if filter.RangeStart != nil && !e.EventDate.After(*filter.RangeStart) {
			continue
		}
		if filter.RangeEnd != nil && !e.EventDate.Before(*filter.RangeEnd) {
			continue
		}
		if filter.OnlyAvailable && e.IsFull() {
			continue
		}
		out = append(out, &e)
	}

	slices.SortFunc(out, func(a, b *domain.Event) int {
		if filter.Sort == domain.SortEventDate && !a.EventDate.Equal(b.EventDate) {
			return a.EventDate.Compare(b.EventDate)
		}
		return int(a.ID - b.ID)
	})

	if page != nil {
		start, end := page.Slice(len(out))
		out = out[start:end]
	}
	return out, nil
}

type fakeRequests struct{ *memStore }

func (f fakeRequests) Create(_ context.Context, r *domain.ParticipationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.requests {
		if existing.RequesterID == r.RequesterID && existing.EventID == r.EventID {
			return domain.ErrDuplicateRequest
		}
	}
	r.ID = f.id()
	f.requests[r.ID] = *r
	return nil
}

func (f fakeRequests) GetByID(_ context.Context, id int64) (*domain.ParticipationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrRequestNotFound, id)
	}
	return &r, nil
}

func (f fakeRequests) UpdateStatus(_ context.Context, id int64, status domain.RequestStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return domain.ErrRequestNotFound
	}
	r.Status = status
	f.requests[id] = r
	f.statusWrites++
	return nil
}

func (f fakeRequests) UpdateStatuses(_ context.Context, eventID int64, ids []int64, status domain.RequestStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		r, ok := f.requests[id]
		if !ok || r.EventID != eventID {
			return domain.ErrRequestNotFound
		}
		r.Status = status
		f.requests[id] = r
	}
	f.statusWrites++
	return nil
}

func (f fakeRequests) list(match func(domain.ParticipationRequest) bool) []domain.ParticipationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.ParticipationRequest{}
	for _, r := range f.requests {
		if match(r) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b domain.ParticipationRequest) int { return int(a.ID - b.ID) })
	return out
}

func (f fakeRequests) ListByRequester(_ context.Context, requesterID int64) ([]domain.ParticipationRequest, error) {
	return f.list(func(r domain.ParticipationRequest) bool { return r.RequesterID == requesterID }), nil
}

func (f fakeRequests) ListByEvent(_ context.Context, eventID int64) ([]domain.ParticipationRequest, error) {
	return f.list(func(r domain.ParticipationRequest) bool { return r.EventID == eventID }), nil
}

func (f fakeRequests) ListByEventAndIDs(_ context.Context, eventID int64, ids []int64) ([]domain.ParticipationRequest, error) {
	return f.list(func(r domain.ParticipationRequest) bool {
		return r.EventID == eventID && slices.Contains(ids, r.ID)
	}), nil
}

func (f fakeRequests) ExistsWithStatus(_ context.Context, requesterID, eventID int64, status domain.RequestStatus) (bool, error) {
	found := f.list(func(r domain.ParticipationRequest) bool {
		return r.RequesterID == requesterID && r.EventID == eventID && r.Status == status
	})
	return len(found) > 0, nil
}

type fakeRatings struct{ *memStore }

func (f fakeRatings) Add(_ context.Context, v domain.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int64{v.RaterID, v.EventID}
	if _, ok := f.votes[key]; ok {
		return domain.ErrDuplicateVote
	}
	f.votes[key] = v.Value
	return nil
}

func (f fakeRatings) Delete(_ context.Context, v domain.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int64{v.RaterID, v.EventID}
	if value, ok := f.votes[key]; !ok || value != v.Value {
		return domain.ErrVoteNotFound
	}
	delete(f.votes, key)
	return nil
}

func (f fakeRatings) SumForEvent(ctx context.Context, eventID int64) (int64, error) {
	sums, err := f.SumForEvents(ctx, []int64{eventID})
	return sums[eventID], err
}

func (f fakeRatings) SumForEvents(_ context.Context, eventIDs []int64) (map[int64]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sums := map[int64]int64{}
	for key, value := range f.votes {
		if slices.Contains(eventIDs, key[1]) {
			sums[key[1]] += int64(value)
		}
	}
	return sums, nil
}

// fakeTransactor serializes event-locked work with one store-wide mutex
type fakeTransactor struct{ *memStore }

func (f fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f fakeTransactor) WithinEventLock(ctx context.Context, eventID int64, fn func(ctx context.Context) error) error {
	f.eventLock.Lock()
	defer f.eventLock.Unlock()

	f.mu.Lock()
	_, ok := f.events[eventID]
	f.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrEventNotFound, eventID)
	}
	return fn(ctx)
}

// MockStatsGateway is a mock implementation of the statistics collector
type MockStatsGateway struct {
	mock.Mock
}

func (m *MockStatsGateway) RecordHit(ctx context.Context, hit stats.Hit) error {
	args := m.Called(ctx, hit)
	return args.Error(0)
}

func (m *MockStatsGateway) Views(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]stats.ViewStats, error) {
	args := m.Called(ctx, start, end, uris, unique)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stats.ViewStats), args.Error(1)
}

func (m *MockStatsGateway) gateway() stats.Gateway {
	return stats.Gateway{HitRecorder: m, ViewCounter: m}
}

// noViews makes every view-count query return no stats
func (m *MockStatsGateway) noViews() *mock.Call {
	return m.On("Views", mock.Anything, mock.Anything, mock.Anything, mock.Anything, true).
		Return([]stats.ViewStats{}, nil)
}

// testEvent returns a published event owned by initiator, one week ahead
func testEvent(initiator domain.UserShort, category domain.Category, limit int, moderation bool) domain.Event {
	published := testNow.Add(-time.Hour)
	return domain.Event{
		Title:             "Jazz night",
		Annotation:        "An evening of live jazz in the park",
		Description:       "Bring a blanket",
		Category:          category,
		Initiator:         initiator,
		Location:          domain.Location{Lat: 55.75, Lon: 37.61},
		ParticipantLimit:  limit,
		RequestModeration: moderation,
		State:             domain.EventStatePublished,
		CreatedOn:         testNow.Add(-24 * time.Hour),
		PublishedOn:       &published,
		EventDate:         testNow.Add(7 * 24 * time.Hour),
	}
}
