package api

import (
	"context"
	"github.com/labstack/echo/v4"
	"kusina-service/internal/auth"
	"kusina-service/internal/entity"
	"kusina-service/internal/service"
	"net/http"
)

type UserService interface {
	Register(ctx context.Context, in service.RegisterInput) (*entity.User, error)
	Login(ctx context.Context, in service.LoginInput) (*service.Session, error)
	Profile(ctx context.Context, p auth.Principal) (*entity.User, error)
	UpdateProfile(ctx context.Context, p auth.Principal, in service.UpdateProfileInput) (*entity.User, error)
}

type CustomerService interface {
	List(ctx context.Context, p auth.Principal) ([]entity.User, error)
	Get(ctx context.Context, p auth.Principal, id string) (*entity.CustomerDetail, error)
}

type SettingsService interface {
	Get(ctx context.Context, p auth.Principal) (*entity.Settings, error)
	Save(ctx context.Context, p auth.Principal, settings entity.Settings) (*entity.Settings, error)
}

type UserHandler struct {
	userService UserService
}

func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Register(c echo.Context) error {
	var in service.RegisterInput
	if err := c.Bind(&in); err != nil {
		return badRequest("invalid request payload")
	}

	user, err := h.userService.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Login(c echo.Context) error {
	var in service.LoginInput
	if err := c.Bind(&in); err != nil {
		return badRequest("invalid request payload")
	}

	session, err := h.userService.Login(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

func (h *UserHandler) Profile(c echo.Context) error {
	user, err := h.userService.Profile(c.Request().Context(), auth.PrincipalFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var in service.UpdateProfileInput
	if err := c.Bind(&in); err != nil {
		return badRequest("invalid request payload")
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), auth.PrincipalFrom(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

type CustomerHandler struct {
	customerService CustomerService
}

func NewCustomerHandler(customerService CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func (h *CustomerHandler) List(c echo.Context) error {
	customers, err := h.customerService.List(c.Request().Context(), auth.PrincipalFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customers)
}

func (h *CustomerHandler) Get(c echo.Context) error {
	detail, err := h.customerService.Get(c.Request().Context(), auth.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}

type SettingsHandler struct {
	settingsService SettingsService
}

func NewSettingsHandler(settingsService SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) Get(c echo.Context) error {
	settings, err := h.settingsService.Get(c.Request().Context(), auth.PrincipalFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) Save(c echo.Context) error {
	var settings entity.Settings
	if err := c.Bind(&settings); err != nil {
		return badRequest("invalid request payload")
	}

	saved, err := h.settingsService.Save(c.Request().Context(), auth.PrincipalFrom(c), settings)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saved)
}
