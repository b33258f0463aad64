package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/room-booking/internal/domain"
	"github.com/spec-kit/room-booking/internal/repository"
)

// memReservations mirrors the Postgres store, including the partial unique
// index on (room_id, start_time) for confirmed rows.
type memReservations struct {
	mu     sync.Mutex
	rows   map[string]*domain.Reservation
	nextID int
	// beforeInsert, when set, runs at the start of every Insert.
	beforeInsert func()
	// afterFind, when set, runs once FindByID has copied the row out.
	afterFind func(id string)
}

func newMemReservations() *memReservations {
	return &memReservations{rows: map[string]*domain.Reservation{}}
}

func (m *memReservations) seed(res domain.Reservation) *domain.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if res.ID == "" {
		m.nextID++
		res.ID = "seed-" + strconv.Itoa(m.nextID)
	}
	if res.Status == "" {
		res.Status = domain.ReservationStatusConfirmed
	}
	if res.EndTime.IsZero() {
		res.EndTime = res.StartTime.Add(time.Hour)
	}
	if res.TotalHours.IsZero() {
		res.TotalHours = decimal.NewFromInt(1)
	}
	cp := res
	m.rows[cp.ID] = &cp
	return &cp
}

func (m *memReservations) slotTakenLocked(res *domain.Reservation) bool {
	if res.Status != domain.ReservationStatusConfirmed {
		return false
	}
	for _, row := range m.rows {
		if row.ID != res.ID && row.Status == domain.ReservationStatusConfirmed &&
			row.RoomID == res.RoomID && row.StartTime.Equal(res.StartTime) {
			return true
		}
	}
	return false
}

func (m *memReservations) Insert(_ context.Context, res *domain.Reservation) error {
	if m.beforeInsert != nil {
		m.beforeInsert()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slotTakenLocked(res) {
		return repository.ErrSlotTaken
	}
	m.nextID++
	res.ID = "res-" + strconv.Itoa(m.nextID)
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt
	cp := *res
	m.rows[res.ID] = &cp
	return nil
}

func (m *memReservations) Update(_ context.Context, res *domain.Reservation, expected domain.ReservationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[res.ID]; !ok || row.Status != expected {
		return pgx.ErrNoRows
	}
	if m.slotTakenLocked(res) {
		return repository.ErrSlotTaken
	}
	res.UpdatedAt = time.Now()
	cp := *res
	m.rows[res.ID] = &cp
	return nil
}

func (m *memReservations) UpdateStatus(_ context.Context, id string, from, to domain.ReservationStatus) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.Status != from {
		return nil, pgx.ErrNoRows
	}
	row.Status = to
	row.UpdatedAt = time.Now()
	cp := *row
	return &cp, nil
}

func (m *memReservations) FindByID(_ context.Context, id string) (*domain.Reservation, error) {
	m.mu.Lock()
	row, ok := m.rows[id]
	if !ok {
		m.mu.Unlock()
		return nil, pgx.ErrNoRows
	}
	cp := *row
	m.mu.Unlock()
	if m.afterFind != nil {
		m.afterFind(id)
	}
	return &cp, nil
}

func (m *memReservations) filter(keep func(*domain.Reservation) bool) []domain.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []domain.Reservation{}
	for _, row := range m.rows {
		if keep(row) {
			result = append(result, *row)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result
}

func (m *memReservations) FindByUser(_ context.Context, userID string) ([]domain.Reservation, error) {
	return m.filter(func(r *domain.Reservation) bool { return r.UserID == userID }), nil
}

func (m *memReservations) FindAll(_ context.Context, f repository.ReservationFilter) ([]domain.Reservation, error) {
	return m.filter(func(r *domain.Reservation) bool {
		return (f.UserID == nil || *f.UserID == r.UserID) && (f.RoomID == nil || *f.RoomID == r.RoomID)
	}), nil
}

func (m *memReservations) FindOverlapping(_ context.Context, roomID string, start, end time.Time, status domain.ReservationStatus) ([]domain.Reservation, error) {
	return m.filter(func(r *domain.Reservation) bool {
		return r.RoomID == roomID && r.Status == status && r.Overlaps(start, end)
	}), nil
}

func (m *memReservations) FindAdjacent(_ context.Context, userID string, start, end time.Time, status domain.ReservationStatus) ([]domain.Reservation, error) {
	return m.filter(func(r *domain.Reservation) bool {
		return r.UserID == userID && r.Status == status && r.Adjacent(start, end)
	}), nil
}

func (m *memReservations) SumHoursInWindow(_ context.Context, userID string, from, to time.Time, status domain.ReservationStatus) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, r := range m.filter(func(r *domain.Reservation) bool {
		return r.UserID == userID && r.Status == status && !r.StartTime.Before(from) && r.StartTime.Before(to)
	}) {
		total = total.Add(r.TotalHours)
	}
	return total, nil
}

type memRooms struct {
	mu    sync.Mutex
	rooms map[string]*domain.Room
}

func newMemRooms(rooms ...domain.Room) *memRooms {
	m := &memRooms{rooms: map[string]*domain.Room{}}
	for i := range rooms {
		r := rooms[i]
		m.rooms[r.ID] = &r
	}
	return m
}

func (m *memRooms) Create(_ context.Context, room *domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room.ID = "room-" + strconv.Itoa(len(m.rooms)+1)
	cp := *room
	m.rooms[room.ID] = &cp
	return nil
}

func (m *memRooms) Update(_ context.Context, room *domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[room.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *room
	m.rooms[room.ID] = &cp
	return nil
}

func (m *memRooms) GetByID(_ context.Context, id string) (*domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *room
	return &cp, nil
}

func (m *memRooms) GetActiveByID(ctx context.Context, id string) (*domain.Room, error) {
	room, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, pgx.ErrNoRows
	}
	return room, nil
}

func (m *memRooms) ListActive(context.Context) ([]domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []domain.Room{}
	for _, room := range m.rooms {
		if room.IsActive {
			result = append(result, *room)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *memRooms) ListAvailable(ctx context.Context, _, _ time.Time) ([]domain.Room, error) {
	return m.ListActive(ctx)
}

func (m *memRooms) Deactivate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok || !room.IsActive {
		return pgx.ErrNoRows
	}
	room.IsActive = false
	return nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUsers(users ...domain.User) *memUsers {
	m := &memUsers{users: map[string]*domain.User{}}
	for i := range users {
		u := users[i]
		m.users[u.ID] = &u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = "user-" + strconv.Itoa(len(m.users)+1)
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *user
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memUserTypes struct {
	types []domain.UserType
}

func (m *memUserTypes) List(context.Context) ([]domain.UserType, error) {
	return append([]domain.UserType{}, m.types...), nil
}

func (m *memUserTypes) GetByID(_ context.Context, id string) (*domain.UserType, error) {
	for i := range m.types {
		if m.types[i].ID == id {
			cp := m.types[i]
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memConfigs struct {
	mu      sync.Mutex
	entries map[string]domain.SystemConfig
	gets    int
}

func newMemConfigs() *memConfigs {
	return &memConfigs{entries: map[string]domain.SystemConfig{}}
}

func (m *memConfigs) Get(_ context.Context, key string) (*domain.SystemConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	cfg, ok := m.entries[key]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &cfg, nil
}

func (m *memConfigs) Upsert(_ context.Context, cfg *domain.SystemConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg.ID = "cfg-" + cfg.Key
	m.entries[cfg.Key] = *cfg
	return nil
}

func (m *memConfigs) List(context.Context) ([]domain.SystemConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []domain.SystemConfig{}
	for _, cfg := range m.entries {
		result = append(result, cfg)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

// fixedClock is a TimezoneProvider pinned to one instant.
type fixedClock struct {
	now time.Time
}

func (f fixedClock) GetSystemTimezone(context.Context) (string, error) {
	return f.now.Location().String(), nil
}

func (f fixedClock) NowInSystemTimezone(context.Context) (time.Time, error) {
	return f.now, nil
}
