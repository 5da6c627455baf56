package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/freshmart/storefront/internal/order/domain"
	productdomain "github.com/freshmart/storefront/internal/product/domain"
	"github.com/freshmart/storefront/internal/storage"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Repo     domain.Repository
	Products productdomain.Repository
}

type Service struct {
	log      *zap.Logger
	repo     domain.Repository
	products productdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("order.service"),
		repo:     p.Repo,
		products: p.Products,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Order, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, domain.ErrMissingUser
	}
	if len(req.Products) == 0 {
		return nil, domain.ErrNoProducts
	}

	catalog, err := s.products.All(ctx)
	if err != nil {
		return nil, err
	}
	priceByID := make(map[string]float64, len(catalog))
	for _, p := range catalog {
		priceByID[p.ID] = p.Price
	}

	var total float64
	lines := make([]domain.LineItem, 0, len(req.Products))
	for _, item := range req.Products {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		// Unknown product IDs snapshot at price 0 rather than failing
		// the whole order.
		price := priceByID[item.ProductID]
		total += price * float64(quantity)
		lines = append(lines, domain.LineItem{
			ProductID: item.ProductID,
			Quantity:  quantity,
			Price:     price,
		})
	}

	order := domain.Order{
		UserID:      userID,
		Products:    lines,
		TotalAmount: round2(total),
		Status:      domain.StatusPending,
	}

	created, err := s.repo.Insert(ctx, order)
	if err != nil {
		return nil, err
	}
	s.log.Info("order placed",
		zap.String("order_id", created.ID),
		zap.String("user_id", created.UserID),
		zap.Float64("total", created.TotalAmount),
	)
	return &created, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.repo.All(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	return &order, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Order, error) {
	if req.Status != nil && !domain.ValidStatus(*req.Status) {
		return nil, domain.ErrInvalidStatus
	}
	if req.UserID != nil && strings.TrimSpace(*req.UserID) == "" {
		return nil, domain.ErrMissingUser
	}

	updated, err := s.repo.Update(ctx, id, func(o *domain.Order) {
		if req.Status != nil {
			o.Status = *req.Status
		}
		if req.UserID != nil {
			o.UserID = strings.TrimSpace(*req.UserID)
		}
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
