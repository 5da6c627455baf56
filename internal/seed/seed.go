// Package seed bootstraps the storefront with sample catalog data.
package seed

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/freshmart/storefront/internal/config"
	productdomain "github.com/freshmart/storefront/internal/product/domain"
	userdomain "github.com/freshmart/storefront/internal/user/domain"
)

// Result reports what a seeding run inserted.
type Result struct {
	ProductsSeeded int `json:"productsSeeded"`
	UsersSeeded    int `json:"usersSeeded"`
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Products productdomain.Repository
	Users    userdomain.Repository
}

type Seeder struct {
	log      *zap.Logger
	products productdomain.Repository
	users    userdomain.Repository
}

func New(p Params) *Seeder {
	return &Seeder{
		log:      p.Log.Named("seed"),
		products: p.Products,
		users:    p.Users,
	}
}

// EnsureDefaults seeds sample data only into empty collections.
func (s *Seeder) EnsureDefaults(ctx context.Context) (Result, error) {
	var result Result

	products, err := s.products.All(ctx)
	if err != nil {
		return result, err
	}
	if len(products) == 0 {
		n, err := s.seedProducts(ctx)
		if err != nil {
			return result, err
		}
		result.ProductsSeeded = n
	}

	users, err := s.users.All(ctx)
	if err != nil {
		return result, err
	}
	if len(users) == 0 {
		n, err := s.seedUsers(ctx)
		if err != nil {
			return result, err
		}
		result.UsersSeeded = n
	}

	if result.ProductsSeeded > 0 || result.UsersSeeded > 0 {
		s.log.Info("seeded sample data",
			zap.Int("products", result.ProductsSeeded),
			zap.Int("users", result.UsersSeeded),
		)
	}
	return result, nil
}

// Reseed replaces the product catalog with the sample set and tops up users.
func (s *Seeder) Reseed(ctx context.Context) (Result, error) {
	var result Result

	if err := s.products.Replace(ctx, nil); err != nil {
		return result, err
	}
	n, err := s.seedProducts(ctx)
	if err != nil {
		return result, err
	}
	result.ProductsSeeded = n

	users, err := s.users.All(ctx)
	if err != nil {
		return result, err
	}
	if len(users) == 0 {
		n, err := s.seedUsers(ctx)
		if err != nil {
			return result, err
		}
		result.UsersSeeded = n
	}

	s.log.Info("reseeded sample data",
		zap.Int("products", result.ProductsSeeded),
		zap.Int("users", result.UsersSeeded),
	)
	return result, nil
}

func (s *Seeder) seedProducts(ctx context.Context) (int, error) {
	count := 0
	for _, product := range sampleProducts() {
		if _, err := s.products.Insert(ctx, product); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (s *Seeder) seedUsers(ctx context.Context) (int, error) {
	count := 0
	for _, user := range sampleUsers() {
		if _, err := s.users.Insert(ctx, user); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func sampleProducts() []productdomain.Product {
	return []productdomain.Product{
		{
			Name:             "Fuji Apple",
			Description:      "Crisp and sweet apples from local orchards",
			Price:            3.99,
			Category:         "Fruits",
			Stock:            120,
			ValidationStatus: productdomain.StatusApproved,
		},
		{
			Name:             "Organic Baby Spinach",
			Description:      "Tender organic spinach leaves, washed and ready to eat",
			Price:            4.49,
			Category:         "Organic",
			Stock:            60,
			ValidationStatus: productdomain.StatusApproved,
		},
		{
			Name:             "Heirloom Tomatoes",
			Description:      "Mixed heirloom tomatoes picked at peak ripeness",
			Price:            5.99,
			Category:         "Vegetables",
			Stock:            45,
			ValidationStatus: productdomain.StatusApproved,
		},
		{
			Name:             "Dragon Fruit",
			Description:      "Vivid pink dragon fruit with mild, refreshing flesh",
			Price:            7.50,
			Category:         "Exotic",
			Stock:            25,
			ValidationStatus: productdomain.StatusApproved,
		},
		{
			Name:             "Butternut Squash",
			Description:      "Sweet autumn squash, perfect for roasting and soups",
			Price:            2.99,
			Category:         "Seasonal",
			Stock:            80,
			ValidationStatus: productdomain.StatusApproved,
		},
	}
}

func sampleUsers() []userdomain.User {
	return []userdomain.User{
		{
			Username: "admin",
			Email:    "admin@freshmart.local",
			FullName: "Store Admin",
			Role:     userdomain.RoleAdmin,
		},
		{
			Username: "user_001",
			Email:    "customer@freshmart.local",
			FullName: "Sample Customer",
			Role:     userdomain.RoleUser,
		},
	}
}

var Module = fx.Module("seed",
	fx.Provide(New),
	fx.Invoke(runOnStart),
)

func runOnStart(lc fx.Lifecycle, cfg config.Config, seeder *Seeder) {
	if !cfg.SeedOnEmpty {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_, err := seeder.EnsureDefaults(ctx)
			return err
		},
	})
}
