package service

import (
	"context"
	"errors"
	"time"

	"github.com/gemora/gemora/internal/models"
	"github.com/gemora/gemora/internal/payu"
	"github.com/gemora/gemora/internal/repo"
	"github.com/gemora/gemora/pkg/logging"
)

// PaymentGateway is what OrderService needs from the payment side: submit an
// order, get back the customer redirect URL.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, order payu.OrderRequest) (string, error)
}

type PaymentConfig struct {
	ContinueURL   string
	CustomerIP    string
	MerchantPosID string
	CurrencyCode  string
}

type OrderService struct {
	Repo    *repo.GormRepo
	Gateway PaymentGateway
	Payment PaymentConfig
}

type OrderCreateRequest struct {
	Description string `json:"description"`
	TotalAmount string `json:"totalAmount"`
}

type OrderCreateResponse struct {
	Data    *string `json:"data"`
	Success bool    `json:"success"`
}

// CreateOrder initiates a payment with the gateway. A non-redirect gateway
// answer is a business failure (Success=false), not an error; transport and
// parse failures propagate to the caller.
func (s *OrderService) CreateOrder(ctx context.Context, req OrderCreateRequest) (*OrderCreateResponse, error) {
	l := logging.FromContext(ctx).With("svc", "order.create_order")

	gatewayReq := payu.OrderRequest{
		ContinueURL:   s.Payment.ContinueURL,
		CustomerIP:    s.Payment.CustomerIP,
		MerchantPosID: s.Payment.MerchantPosID,
		Description:   req.Description,
		CurrencyCode:  s.Payment.CurrencyCode,
		TotalAmount:   req.TotalAmount,
	}

	redirectURL, err := s.Gateway.CreateOrder(ctx, gatewayReq)
	if err != nil {
		if errors.Is(err, payu.ErrNotRedirect) {
			l.Warn("create_order_rejected", "reason", "non_redirect_status", "error", err)
			return &OrderCreateResponse{Data: nil, Success: false}, nil
		}
		l.Error("create_order_failed", "status", 500, "error", err)
		return nil, err
	}

	l.Info("create_order_success")
	return &OrderCreateResponse{Data: &redirectURL, Success: true}, nil
}

// SaveOrder persists a confirmed order. The client calls this after payment
// completes; no link to a prior payment initiation is enforced.
func (s *OrderService) SaveOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.CreatedAt == 0 {
		order.CreatedAt = time.Now().Unix()
	}
	if order.Status == "" {
		order.Status = "CONFIRMED"
	}
	return s.Repo.SaveOrder(ctx, order)
}

func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx)
}

func (s *OrderService) GetOrdersByUserID(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.Repo.ListOrdersByUser(ctx, userID)
}
