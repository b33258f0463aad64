package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/room-booking/internal/api/http/handlers"
	"github.com/spec-kit/room-booking/internal/auth"
	"github.com/spec-kit/room-booking/internal/config"
	"github.com/spec-kit/room-booking/internal/domain"
	"github.com/spec-kit/room-booking/internal/events"
	"github.com/spec-kit/room-booking/internal/observability"
	"github.com/spec-kit/room-booking/internal/repository"
	"github.com/spec-kit/room-booking/internal/service"
)

type store struct {
	mu           sync.Mutex
	users        map[string]*domain.User
	userTypes    map[string]*domain.UserType
	rooms        map[string]*domain.Room
	reservations map[string]*domain.Reservation
	configs      map[string]*domain.SystemConfig
	listFilter   repository.ReservationFilter
}

func newStore() *store {
	return &store{
		users:        map[string]*domain.User{},
		userTypes:    map[string]*domain.UserType{},
		rooms:        map[string]*domain.Room{},
		reservations: map[string]*domain.Reservation{},
		configs:      map[string]*domain.SystemConfig{},
	}
}

type userStore struct{ *store }

func (s userStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s userStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (s userStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type userTypeStore struct{ *store }

func (s userTypeStore) List(context.Context) ([]domain.UserType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.UserType, 0, len(s.userTypes))
	for _, ut := range s.userTypes {
		out = append(out, *ut)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeeklyHoursLimit < out[j].WeeklyHoursLimit })
	return out, nil
}

func (s userTypeStore) GetByID(_ context.Context, id string) (*domain.UserType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ut, ok := s.userTypes[id]; ok {
		cp := *ut
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

type roomStore struct{ *store }

func (s roomStore) Create(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room.ID = uuid.NewString()
	room.IsActive = true
	cp := *room
	s.rooms[room.ID] = &cp
	return nil
}

func (s roomStore) Update(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *room
	s.rooms[room.ID] = &cp
	return nil
}

func (s roomStore) GetByID(_ context.Context, id string) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (s roomStore) GetActiveByID(ctx context.Context, id string) (*domain.Room, error) {
	room, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, pgx.ErrNoRows
	}
	return room, nil
}

func (s roomStore) ListActive(context.Context) ([]domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Room{}
	for _, r := range s.rooms {
		if r.IsActive {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s roomStore) ListAvailable(ctx context.Context, start, end time.Time) ([]domain.Room, error) {
	rooms, _ := s.ListActive(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Room{}
	for _, room := range rooms {
		free := true
		for _, res := range s.reservations {
			if res.RoomID == room.ID && res.Status == domain.ReservationStatusConfirmed && res.Overlaps(start, end) {
				free = false
			}
		}
		if free {
			out = append(out, room)
		}
	}
	return out, nil
}

func (s roomStore) Deactivate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return pgx.ErrNoRows
	}
	r.IsActive = false
	return nil
}

type reservationStore struct{ *store }

func (s reservationStore) Insert(_ context.Context, res *domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.reservations {
		if other.RoomID == res.RoomID && other.StartTime.Equal(res.StartTime) && other.Status == domain.ReservationStatusConfirmed {
			return repository.ErrSlotTaken
		}
	}
	res.ID = uuid.NewString()
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt
	cp := *res
	s.reservations[res.ID] = &cp
	return nil
}

func (s reservationStore) Update(_ context.Context, res *domain.Reservation, expected domain.ReservationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.reservations[res.ID]; !ok || current.Status != expected {
		return pgx.ErrNoRows
	}
	cp := *res
	s.reservations[res.ID] = &cp
	return nil
}

func (s reservationStore) UpdateStatus(_ context.Context, id string, from, to domain.ReservationStatus) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations[id]
	if !ok || res.Status != from {
		return nil, pgx.ErrNoRows
	}
	res.Status = to
	cp := *res
	return &cp, nil
}

func (s reservationStore) FindByID(_ context.Context, id string) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res, ok := s.reservations[id]; ok {
		cp := *res
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (s reservationStore) collect(match func(*domain.Reservation) bool) []domain.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Reservation{}
	for _, res := range s.reservations {
		if match(res) {
			out = append(out, *res)
		}
	}
	return out
}

func (s reservationStore) FindByUser(_ context.Context, userID string) ([]domain.Reservation, error) {
	return s.collect(func(r *domain.Reservation) bool { return r.UserID == userID }), nil
}

func (s reservationStore) FindAll(_ context.Context, filter repository.ReservationFilter) ([]domain.Reservation, error) {
	s.mu.Lock()
	s.listFilter = filter
	s.mu.Unlock()
	out := s.collect(func(*domain.Reservation) bool { return true })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s reservationStore) FindOverlapping(_ context.Context, roomID string, start, end time.Time, status domain.ReservationStatus) ([]domain.Reservation, error) {
	return s.collect(func(r *domain.Reservation) bool {
		return r.RoomID == roomID && r.Status == status && r.Overlaps(start, end)
	}), nil
}

func (s reservationStore) FindAdjacent(_ context.Context, userID string, start, end time.Time, status domain.ReservationStatus) ([]domain.Reservation, error) {
	return s.collect(func(r *domain.Reservation) bool {
		return r.UserID == userID && r.Status == status && r.Adjacent(start, end)
	}), nil
}

func (s reservationStore) SumHoursInWindow(_ context.Context, userID string, from, to time.Time, status domain.ReservationStatus) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, r := range s.collect(func(r *domain.Reservation) bool {
		return r.UserID == userID && r.Status == status && !r.StartTime.Before(from) && r.StartTime.Before(to)
	}) {
		total = total.Add(r.TotalHours)
	}
	return total, nil
}

type configStore struct{ *store }

func (s configStore) Get(_ context.Context, key string) (*domain.SystemConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg, ok := s.configs[key]; ok {
		cp := *cfg
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (s configStore) Upsert(_ context.Context, cfg *domain.SystemConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg.UpdatedAt = time.Now()
	cp := *cfg
	s.configs[cfg.Key] = &cp
	return nil
}

func (s configStore) List(context.Context) ([]domain.SystemConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.SystemConfig{}
	for _, cfg := range s.configs {
		out = append(out, *cfg)
	}
	return out, nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type harness struct {
	app    *fiber.App
	store  *store
	tokens *auth.TokenManager
	basic  string
}

func newHarness(t *testing.T, redisErr error) *harness {
	t.Helper()
	st := newStore()
	basicID := uuid.NewString()
	st.userTypes[basicID] = &domain.UserType{ID: basicID, Name: "basic", WeeklyHoursLimit: 2}

	cfg := config.Config{
		Auth:    config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4},
		Booking: config.BookingConfig{DefaultTimezone: "UTC", WeekStart: time.Monday},
	}
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	users := userStore{st}
	userTypes := userTypeStore{st}
	rooms := roomStore{st}

	timezone := service.NewTimezoneService(configStore{st}, nil, cfg.Booking, logger)
	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: users, UserTypeRepo: userTypes})
	reservations := service.NewReservationService(service.ReservationDependencies{
		ReservationRepo: reservationStore{st},
		RoomRepo:        rooms,
		UserRepo:        users,
		Timezone:        timezone,
		Dispatcher:      events.NewInMemoryDispatcher(logger),
		Metrics:         metrics,
		Logger:          logger,
		WeekStart:       time.Monday,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("room-booking", "test", map[string]handlers.Pinger{
			"postgres": stubPinger{},
			"redis":    stubPinger{err: redisErr},
		}),
		Users:          handlers.NewUsersHandler(authService, service.NewUserService(userTypes), reservations),
		Rooms:          handlers.NewRoomsHandler(service.NewRoomService(rooms, logger)),
		Reservations:   handlers.NewReservationsHandler(reservations),
		SystemConfig:   handlers.NewSystemConfigHandler(timezone),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users),
		Metrics:        metrics,
	})
	return &harness{app: app, store: st, tokens: authService.TokenManager(), basic: basicID}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (h *harness) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (h *harness) seedAdmin(t *testing.T) string {
	t.Helper()
	admin := &domain.User{ID: uuid.NewString(), Email: "admin@office.test", Role: domain.RoleAdmin, IsActive: true}
	h.store.users[admin.ID] = admin
	token, _, err := h.tokens.GenerateToken(admin)
	require.NoError(t, err)
	return token
}

func (h *harness) register(t *testing.T, email string) string {
	t.Helper()
	status, env := h.do(t, nethttp.MethodPost, "/auth/register", "", map[string]any{
		"email":        email,
		"password":     "s3cretpass",
		"first_name":   "Ana",
		"last_name":    "Lopez",
		"user_type_id": h.basic,
	})
	require.Equal(t, nethttp.StatusCreated, status)
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	return session.Token
}

func futureSlot(hours int) string {
	base := time.Now().UTC().Truncate(time.Hour).AddDate(0, 0, 7)
	return base.Add(time.Duration(hours) * time.Hour).Format(time.RFC3339)
}

func TestHealthRoutes(t *testing.T) {
	t.Run("Should report readiness when every dependency answers", func(t *testing.T) {
		h := newHarness(t, nil)
		status, _ := h.do(t, nethttp.MethodGet, "/health/ready", "", nil)
		assert.Equal(t, nethttp.StatusOK, status)
	})
	t.Run("Should report 503 when a dependency is down", func(t *testing.T) {
		h := newHarness(t, errors.New("connection refused"))
		status, env := h.do(t, nethttp.MethodGet, "/health/ready", "", nil)
		assert.Equal(t, nethttp.StatusServiceUnavailable, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "DEPENDENCY_UNAVAILABLE", env.Error.Code)
		assert.Equal(t, "connection refused", env.Error.Details["redis"])
	})
	t.Run("Should expose prometheus metrics", func(t *testing.T) {
		h := newHarness(t, nil)
		req := httptest.NewRequest(nethttp.MethodGet, "/metrics", nil)
		resp, err := h.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	})
}

func TestAuthRoutes(t *testing.T) {
	h := newHarness(t, nil)

	t.Run("Should register and log in", func(t *testing.T) {
		token := h.register(t, "Ana@Office.test")
		assert.NotEmpty(t, token)

		status, env := h.do(t, nethttp.MethodPost, "/auth/login", "", map[string]any{
			"email": "ana@office.test", "password": "s3cretpass",
		})
		require.Equal(t, nethttp.StatusOK, status)
		var resp struct {
			User struct {
				Email string `json:"email"`
				Role  string `json:"role"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "ana@office.test", resp.User.Email)
		assert.Equal(t, "user", resp.User.Role)
	})

	t.Run("Should reject duplicate emails with 409", func(t *testing.T) {
		status, env := h.do(t, nethttp.MethodPost, "/auth/register", "", map[string]any{
			"email": "ana@office.test", "password": "s3cretpass", "first_name": "A", "last_name": "B",
		})
		assert.Equal(t, nethttp.StatusConflict, status)
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})

	t.Run("Should report field-level validation failures", func(t *testing.T) {
		status, env := h.do(t, nethttp.MethodPost, "/auth/register", "", map[string]any{
			"email": "not-an-email", "password": "short", "first_name": "A", "last_name": "B",
		})
		assert.Equal(t, nethttp.StatusBadRequest, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
		assert.Equal(t, "email", env.Error.Details["email"])
		assert.Equal(t, "min=8", env.Error.Details["password"])
	})

	t.Run("Should reject bad credentials", func(t *testing.T) {
		status, env := h.do(t, nethttp.MethodPost, "/auth/login", "", map[string]any{
			"email": "ana@office.test", "password": "wrong-password",
		})
		assert.Equal(t, nethttp.StatusUnauthorized, status)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	})

	t.Run("Should require a token on protected routes", func(t *testing.T) {
		status, env := h.do(t, nethttp.MethodGet, "/reservations/mine", "", nil)
		assert.Equal(t, nethttp.StatusUnauthorized, status)
		require.NotNil(t, env.Error)
	})

	t.Run("Should render unknown routes in the error envelope", func(t *testing.T) {
		admin := h.seedAdmin(t)
		status, env := h.do(t, nethttp.MethodGet, "/nowhere", admin, nil)
		assert.Equal(t, nethttp.StatusNotFound, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})
}

func TestReservationRoutes(t *testing.T) {
	h := newHarness(t, nil)
	admin := h.seedAdmin(t)
	user := h.register(t, "bruno@office.test")
	other := h.register(t, "carla@office.test")

	status, env := h.do(t, nethttp.MethodPost, "/rooms", admin, map[string]any{
		"name": "Sala Ejecutiva", "capacity": 8, "equipment": []string{"tv"}, "hourly_rate": "25.50",
	})
	require.Equal(t, nethttp.StatusCreated, status)
	var room struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &room))

	var bookingID string

	t.Run("Should forbid non-admins from managing rooms", func(t *testing.T) {
		status, env := h.do(t, nethttp.MethodPost, "/rooms", user, map[string]any{"name": "x", "capacity": 1})
		assert.Equal(t, nethttp.StatusForbidden, status)
		assert.Equal(t, "FORBIDDEN", env.Error.Code)
	})

	t.Run("Should book a free slot", func(t *testing.T) {
		status, env := h.do(t, nethttp.MethodPost, "/reservations", user, map[string]any{
			"room_id": room.ID, "start_time": futureSlot(10), "purpose": "standup",
		})
		require.Equal(t, nethttp.StatusCreated, status)
		var res struct {
			ID         string `json:"id"`
			Status     string `json:"status"`
			TotalHours string `json:"total_hours"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &res))
		assert.Equal(t, "confirmed", res.Status)
		assert.Equal(t, "1", res.TotalHours)
		bookingID = res.ID
	})

	t.Run("Should report a taken slot as ROOM_CONFLICT", func(t *testing.T) {
		status, env := h.do(t, nethttp.MethodPost, "/reservations", other, map[string]any{
			"room_id": room.ID, "start_time": futureSlot(10),
		})
		assert.Equal(t, nethttp.StatusConflict, status)
		assert.Equal(t, "ROOM_CONFLICT", env.Error.Code)
		assert.Equal(t, bookingID, env.Error.Details["conflicting_reservation_id"])
	})

	t.Run("Should reject misaligned starts", func(t *testing.T) {
		start := time.Now().UTC().Truncate(time.Hour).AddDate(0, 0, 7).Add(13*time.Hour + 30*time.Minute)
		status, env := h.do(t, nethttp.MethodPost, "/reservations", other, map[string]any{
			"room_id": room.ID, "start_time": start.Format(time.RFC3339),
		})
		assert.Equal(t, nethttp.StatusBadRequest, status)
		assert.Equal(t, "SLOT_NOT_ALIGNED", env.Error.Code)
	})

	t.Run("Should reject durations other than one hour", func(t *testing.T) {
		status, env := h.do(t, nethttp.MethodPost, "/reservations", other, map[string]any{
			"room_id": room.ID, "start_time": futureSlot(15), "duration_hours": 2,
		})
		assert.Equal(t, nethttp.StatusBadRequest, status)
		assert.Equal(t, "UNSUPPORTED_DURATION", env.Error.Code)
	})

	t.Run("Should show the booking among my reservations", func(t *testing.T) {
		status, env := h.do(t, nethttp.MethodGet, "/reservations/mine", user, nil)
		require.Equal(t, nethttp.StatusOK, status)
		var items []struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &items))
		require.Len(t, items, 1)
		assert.Equal(t, bookingID, items[0].ID)
	})

	t.Run("Should hide other users bookings", func(t *testing.T) {
		status, _ := h.do(t, nethttp.MethodGet, "/reservations/"+bookingID, other, nil)
		assert.Equal(t, nethttp.StatusForbidden, status)
	})

	t.Run("Should treat malformed ids as missing", func(t *testing.T) {
		status, env := h.do(t, nethttp.MethodGet, "/reservations/not-a-uuid", user, nil)
		assert.Equal(t, nethttp.StatusNotFound, status)
		assert.Equal(t, "RESERVATION_NOT_FOUND", env.Error.Code)
	})

	t.Run("Should restrict the full listing to admins", func(t *testing.T) {
		status, _ := h.do(t, nethttp.MethodGet, "/reservations", user, nil)
		assert.Equal(t, nethttp.StatusForbidden, status)
		status, _ = h.do(t, nethttp.MethodGet, "/reservations?status=confirmed&limit=10", admin, nil)
		assert.Equal(t, nethttp.StatusOK, status)
		status, env := h.do(t, nethttp.MethodGet, "/reservations?status=pending", admin, nil)
		assert.Equal(t, nethttp.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	})

	t.Run("Should list every reservation when no limit is given", func(t *testing.T) {
		status, env := h.do(t, nethttp.MethodGet, "/reservations", admin, nil)
		require.Equal(t, nethttp.StatusOK, status)
		var items []json.RawMessage
		require.NoError(t, json.Unmarshal(env.Data, &items))
		assert.Len(t, items, len(h.store.reservations))
		assert.Zero(t, h.store.listFilter.Limit)

		status, _ = h.do(t, nethttp.MethodGet, "/reservations?limit=1000", admin, nil)
		require.Equal(t, nethttp.StatusOK, status)
		assert.Equal(t, 200, h.store.listFilter.Limit)
	})

	t.Run("Should report weekly usage", func(t *testing.T) {
		status, env := h.do(t, nethttp.MethodGet, "/users/me/weekly-usage", user, nil)
		require.Equal(t, nethttp.StatusOK, status)
		var usage struct {
			Limit int `json:"limit"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &usage))
		assert.Equal(t, 2, usage.Limit)
	})

	t.Run("Should exclude booked rooms from availability", func(t *testing.T) {
		path := "/rooms/available?start_time=" + futureSlot(10) + "&end_time=" + futureSlot(11)
		status, env := h.do(t, nethttp.MethodGet, path, user, nil)
		require.Equal(t, nethttp.StatusOK, status)
		var rooms []json.RawMessage
		require.NoError(t, json.Unmarshal(env.Data, &rooms))
		assert.Empty(t, rooms)
	})

	t.Run("Should cancel idempotently", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			status, env := h.do(t, nethttp.MethodPatch, "/reservations/"+bookingID+"/cancel", user, nil)
			require.Equal(t, nethttp.StatusOK, status)
			var res struct {
				Status string `json:"status"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &res))
			assert.Equal(t, "cancelled", res.Status)
		}
	})

	t.Run("Should free the slot after cancelling", func(t *testing.T) {
		status, _ := h.do(t, nethttp.MethodPost, "/reservations", other, map[string]any{
			"room_id": room.ID, "start_time": futureSlot(10),
		})
		assert.Equal(t, nethttp.StatusCreated, status)
	})
}

func TestSystemConfigRoutes(t *testing.T) {
	h := newHarness(t, nil)
	admin := h.seedAdmin(t)
	user := h.register(t, "dana@office.test")

	t.Run("Should default to the configured timezone", func(t *testing.T) {
		status, env := h.do(t, nethttp.MethodGet, "/system-config/timezone", user, nil)
		require.Equal(t, nethttp.StatusOK, status)
		var tz struct {
			Timezone string `json:"timezone"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &tz))
		assert.Equal(t, "UTC", tz.Timezone)
	})

	t.Run("Should let admins change the timezone", func(t *testing.T) {
		status, _ := h.do(t, nethttp.MethodPost, "/system-config/timezone", admin, map[string]any{"timezone": "America/Mexico_City"})
		require.Equal(t, nethttp.StatusOK, status)
		_, env := h.do(t, nethttp.MethodGet, "/system-config/timezone", user, nil)
		var tz struct {
			Timezone string `json:"timezone"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &tz))
		assert.Equal(t, "America/Mexico_City", tz.Timezone)
	})

	t.Run("Should reject unknown zones", func(t *testing.T) {
		status, env := h.do(t, nethttp.MethodPost, "/system-config/timezone", admin, map[string]any{"timezone": "Mars/Olympus"})
		assert.Equal(t, nethttp.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	})

	t.Run("Should forbid regular users", func(t *testing.T) {
		status, _ := h.do(t, nethttp.MethodPost, "/system-config", user, map[string]any{"key": "k", "value": "v"})
		assert.Equal(t, nethttp.StatusForbidden, status)
	})
}
