package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gemora/gemora/internal/models"
	"github.com/gemora/gemora/internal/mykafka"
	"github.com/gemora/gemora/internal/service"
	"github.com/gemora/gemora/pkg/logging"
)

type OrderHTTP struct {
	Svc      *service.OrderService
	Producer *mykafka.Producer
}

// CreateOrder initiates a payment; the body of a successful response is the
// gateway redirect URL.
func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_create")

	var req service.OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.CreateOrder(ctx, req)
	if err != nil {
		return c.NoContent(http.StatusInternalServerError)
	}
	if !res.Success {
		return c.NoContent(http.StatusInternalServerError)
	}

	return c.String(http.StatusOK, *res.Data)
}

func (h *OrderHTTP) SaveOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_save")

	var order models.Order
	if err := c.Bind(&order); err != nil {
		l.Warn("save_order_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	saved, err := h.Svc.SaveOrder(ctx, &order)
	if err != nil {
		l.Error("save_order_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publishCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(publishCtx, "order_events", fmt.Sprint(saved.ID), map[string]any{
		"type":    "order_saved",
		"orderID": saved.ID,
		"userID":  saved.UserID,
		"total":   saved.Total,
	}); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}

	return c.JSON(http.StatusOK, saved)
}

func (h *OrderHTTP) GetAllOrders(c echo.Context) error {
	orders, err := h.Svc.GetAllOrders(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrdersByUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	orders, err := h.Svc.GetOrdersByUserID(c.Request().Context(), uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, orders)
}
