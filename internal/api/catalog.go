package api

import (
	"context"
	"github.com/labstack/echo/v4"
	"kusina-service/internal/auth"
	"kusina-service/internal/entity"
	"net/http"
)

type ProductService interface {
	List(ctx context.Context, category entity.Category, search string) ([]entity.Product, error)
	AdminList(ctx context.Context, p auth.Principal) ([]entity.Product, error)
	Get(ctx context.Context, p auth.Principal, id string) (*entity.Product, error)
	Create(ctx context.Context, p auth.Principal, product entity.Product) (*entity.Product, error)
	Update(ctx context.Context, p auth.Principal, id string, product entity.Product) (*entity.Product, error)
	Delete(ctx context.Context, p auth.Principal, id string) error
}

type ProductHandler struct {
	productService ProductService
}

func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List serves the public menu.
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.productService.List(c.Request().Context(), entity.Category(c.QueryParam("category")), c.QueryParam("search"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) AdminList(c echo.Context) error {
	products, err := h.productService.AdminList(c.Request().Context(), auth.PrincipalFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.productService.Get(c.Request().Context(), auth.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Create(c echo.Context) error {
	var product entity.Product
	if err := c.Bind(&product); err != nil {
		return badRequest("invalid request payload")
	}

	created, err := h.productService.Create(c.Request().Context(), auth.PrincipalFrom(c), product)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *ProductHandler) Update(c echo.Context) error {
	var product entity.Product
	if err := c.Bind(&product); err != nil {
		return badRequest("invalid request payload")
	}

	updated, err := h.productService.Update(c.Request().Context(), auth.PrincipalFrom(c), c.Param("id"), product)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.productService.Delete(c.Request().Context(), auth.PrincipalFrom(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Product deleted"})
}
