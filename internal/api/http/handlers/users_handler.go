package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/room-booking/internal/api/dto"
	"github.com/spec-kit/room-booking/internal/domain"
	"github.com/spec-kit/room-booking/internal/service"
)

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	auth         *service.AuthService
	users        *service.UserService
	reservations *service.ReservationService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, userService *service.UserService, reservationService *service.ReservationService) *UsersHandler {
	return &UsersHandler{auth: authService, users: userService, reservations: reservationService}
}

// Register handles POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	session, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		UserTypeID: req.UserTypeID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": authResponse(session)})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(session)})
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(principal.User)})
}

// WeeklyUsage handles GET /users/me/weekly-usage.
func (h *UsersHandler) WeeklyUsage(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	usage, err := h.reservations.GetWeeklyUsage(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.WeeklyUsageResponse{
		UserID:    usage.UserID,
		Limit:     usage.Limit,
		Used:      usage.Used,
		Remaining: usage.Remaining,
		WeekStart: usage.WeekStart,
		WeekEnd:   usage.WeekEnd,
	}})
}

// ListUserTypes handles GET /user-types.
func (h *UsersHandler) ListUserTypes(c *fiber.Ctx) error {
	types, err := h.users.ListUserTypes(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.UserTypeResponse, 0, len(types))
	for i := range types {
		items = append(items, dto.NewUserTypeResponse(&types[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func authResponse(session *service.Session) dto.AuthResponse {
	var user domain.User
	if session.User != nil {
		user = *session.User
	}
	return dto.AuthResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      dto.NewUserResponse(&user),
	}
}
