package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/freshmart/storefront/internal/product/domain"
	"github.com/freshmart/storefront/internal/storage"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Predefined fresh-market categories merged into the catalog-derived set.
var predefinedCategories = []string{"Fruits", "Vegetables", "Organic", "Seasonal", "Exotic"}

type Params struct {
	fx.In

	Log     *zap.Logger
	Repo    domain.Repository
	Trigger domain.ValidationTrigger `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	repo    domain.Repository
	trigger domain.ValidationTrigger
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("product.service"),
		repo:    p.Repo,
		trigger: p.Trigger,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Product, error) {
	var rules []string
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		rules = append(rules, "Product name must be at least 2 characters long")
	}
	description := strings.TrimSpace(req.Description)
	if len(description) < 10 {
		rules = append(rules, "Product description must be at least 10 characters long")
	}
	if req.Price <= 0 {
		rules = append(rules, "Product price must be greater than 0")
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		rules = append(rules, "Product category is required")
	}
	if req.Stock == nil || *req.Stock < 0 {
		rules = append(rules, "Product stock must be 0 or greater")
	}
	if len(rules) > 0 {
		return nil, &domain.Violations{Rules: rules}
	}

	if err := s.checkDuplicateName(ctx, name, ""); err != nil {
		return nil, err
	}

	p := domain.Product{
		Name:        name,
		Description: description,
		Price:       req.Price,
		Category:    category,
		Stock:       *req.Stock,
		ImageURL:    strings.TrimSpace(req.ImageURL),
	}
	// Listings without an image have nothing to validate.
	if p.ImageURL == "" {
		p.ValidationStatus = domain.StatusApproved
	} else {
		p.ValidationStatus = domain.StatusPending
	}

	created, err := s.repo.Insert(ctx, p)
	if err != nil {
		return nil, err
	}

	s.requestValidation(&created)
	return &created, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Product, error) {
	var rules []string
	if req.Name != nil && len(strings.TrimSpace(*req.Name)) < 2 {
		rules = append(rules, "Product name must be at least 2 characters long")
	}
	if req.Description != nil && len(strings.TrimSpace(*req.Description)) < 10 {
		rules = append(rules, "Product description must be at least 10 characters long")
	}
	if req.Price != nil && *req.Price <= 0 {
		rules = append(rules, "Product price must be greater than 0")
	}
	if req.Category != nil && strings.TrimSpace(*req.Category) == "" {
		rules = append(rules, "Product category is required")
	}
	if req.Stock != nil && *req.Stock < 0 {
		rules = append(rules, "Product stock must be 0 or greater")
	}
	if len(rules) > 0 {
		return nil, &domain.Violations{Rules: rules}
	}

	if _, found, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	} else if !found {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		if err := s.checkDuplicateName(ctx, strings.TrimSpace(*req.Name), id); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, func(p *domain.Product) {
		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			p.Description = strings.TrimSpace(*req.Description)
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.Category != nil {
			p.Category = strings.TrimSpace(*req.Category)
		}
		if req.Stock != nil {
			p.Stock = *req.Stock
		}
		if req.ImageURL != nil {
			p.ImageURL = strings.TrimSpace(*req.ImageURL)
		}
		// Every edit goes back through validation.
		p.ValidationStatus = domain.StatusPending
		p.ValidationResult = nil
	})
	if err != nil {
		return nil, err
	}

	s.requestValidation(&updated)
	return &updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *Service) Delete(ctx context.Context, id string) (*domain.Product, error) {
	p, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResult, error) {
	products, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	total := len(products)

	filtered := products
	if category := strings.TrimSpace(req.Category); category != "" {
		filtered = filterProducts(filtered, func(p domain.Product) bool {
			return strings.EqualFold(p.Category, category)
		})
	}
	if search := strings.ToLower(strings.TrimSpace(req.Search)); search != "" {
		filtered = filterProducts(filtered, func(p domain.Product) bool {
			return strings.Contains(strings.ToLower(p.Name), search) ||
				strings.Contains(strings.ToLower(p.Description), search)
		})
	}
	if req.MinPrice != nil {
		filtered = filterProducts(filtered, func(p domain.Product) bool { return p.Price >= *req.MinPrice })
	}
	if req.MaxPrice != nil {
		filtered = filterProducts(filtered, func(p domain.Product) bool { return p.Price <= *req.MaxPrice })
	}

	sortProducts(filtered, req.SortBy)

	return &domain.ListResult{Products: filtered, Count: len(filtered), Total: total}, nil
}

func (s *Service) Approved(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	return filterProducts(products, func(p domain.Product) bool {
		return p.ValidationStatus == domain.StatusApproved
	}), nil
}

func (s *Service) Categories(ctx context.Context) (*domain.CategorySummary, error) {
	products, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	unique := make(map[string]bool)
	for _, c := range predefinedCategories {
		unique[c] = true
	}
	for _, p := range products {
		if p.Category != "" {
			unique[p.Category] = true
		}
	}

	categories := make([]string, 0, len(unique))
	for c := range unique {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	stats := make([]domain.CategoryStat, 0, len(categories))
	for _, c := range categories {
		var count int
		var sum float64
		for _, p := range products {
			if p.Category == c {
				count++
				sum += p.Price
			}
		}
		stat := domain.CategoryStat{Name: c, ProductCount: count}
		if count > 0 {
			stat.AveragePrice = round2(sum / float64(count))
		}
		stats = append(stats, stat)
	}

	return &domain.CategorySummary{
		Categories: categories,
		Statistics: stats,
		Total:      len(categories),
	}, nil
}

func (s *Service) Search(ctx context.Context, query string) ([]domain.Product, error) {
	products, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []domain.Product{}, nil
	}

	// Name matches rank ahead of description and category matches.
	var byName, byRest []domain.Product
	for _, p := range products {
		switch {
		case strings.Contains(strings.ToLower(p.Name), q):
			byName = append(byName, p)
		case strings.Contains(strings.ToLower(p.Description), q),
			strings.Contains(strings.ToLower(p.Category), q):
			byRest = append(byRest, p)
		}
	}
	return append(byName, byRest...), nil
}

func (s *Service) ApproveLegacy(ctx context.Context) (*domain.ApproveLegacyResult, error) {
	products, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	updated := 0
	for i := range products {
		if products[i].ValidationStatus != "" {
			continue
		}
		products[i].ValidationStatus = domain.StatusApproved
		products[i].ValidationResult = &domain.ValidationResult{
			Score:            100,
			Issues:           []string{},
			ImageDescription: "Product image verified",
			Reasoning:        "Legacy product - auto-approved",
		}
		updated++
	}

	if updated > 0 {
		if err := s.repo.Replace(ctx, products); err != nil {
			return nil, err
		}
	}

	return &domain.ApproveLegacyResult{TotalProducts: len(products), UpdatedCount: updated}, nil
}

func (s *Service) ValidationState(ctx context.Context, id string) (*domain.ValidationState, error) {
	p, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}

	status := p.ValidationStatus
	if status == "" {
		status = domain.StatusPending
	}
	return &domain.ValidationState{
		ID:               p.ID,
		ValidationStatus: status,
		ValidationResult: p.ValidationResult,
	}, nil
}

func (s *Service) OverrideValidation(ctx context.Context, id, action string) (*domain.Product, error) {
	var status domain.Status
	switch action {
	case "approve":
		status = domain.StatusApproved
	case "reject":
		status = domain.StatusRejected
	default:
		return nil, domain.ErrInvalidAction
	}

	updated, err := s.repo.Update(ctx, id, func(p *domain.Product) {
		p.ValidationStatus = status
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// Revalidate resets a product to pending and queues a fresh validation run.
// Products without an image are approved directly.
func (s *Service) Revalidate(ctx context.Context, id string) (*domain.Product, error) {
	updated, err := s.repo.Update(ctx, id, func(p *domain.Product) {
		if p.ImageURL == "" {
			p.ValidationStatus = domain.StatusApproved
		} else {
			p.ValidationStatus = domain.StatusPending
		}
		p.ValidationResult = nil
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	s.requestValidation(&updated)
	return &updated, nil
}

func (s *Service) checkDuplicateName(ctx context.Context, name, excludeID string) error {
	products, err := s.repo.All(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		if p.ID != excludeID && strings.EqualFold(p.Name, name) {
			return domain.ErrDuplicateName
		}
	}
	return nil
}

func (s *Service) requestValidation(p *domain.Product) {
	if p.ImageURL == "" || s.trigger == nil {
		return
	}
	if !s.trigger.Enqueue(p.ID) {
		s.log.Warn("validation request not accepted",
			zap.String("product_id", p.ID),
		)
	}
}

func filterProducts(products []domain.Product, keep func(domain.Product) bool) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func sortProducts(products []domain.Product, sortBy string) {
	switch sortBy {
	case "name":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	case "price-asc":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case "price-desc":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case "stock-asc":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Stock < products[j].Stock })
	case "stock-desc":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Stock > products[j].Stock })
	case "date-asc":
		sort.SliceStable(products, func(i, j int) bool { return products[i].CreatedAt.Before(products[j].CreatedAt) })
	case "date-desc":
		sort.SliceStable(products, func(i, j int) bool { return products[i].CreatedAt.After(products[j].CreatedAt) })
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
