// Package validation runs the background listing checks that gate products
// into the storefront.
package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	aidomain "github.com/freshmart/storefront/internal/ai/domain"
	"github.com/freshmart/storefront/internal/notify"
	productdomain "github.com/freshmart/storefront/internal/product/domain"
)

// ModelGateway is the slice of the AI registry the worker needs. Ready
// reports whether both vision and text capability are currently available.
type ModelGateway interface {
	FetchImage(ctx context.Context, imageURL string) (aidomain.Image, error)
	DescribeImage(ctx context.Context, img aidomain.Image, prompt string) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
	Ready() bool
}

// Config tunes the worker. Zero values fall back to production defaults.
type Config struct {
	QueueSize   int
	MaxAttempts int
	BaseBackoff time.Duration
	CallTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = time.Second
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 90 * time.Second
	}
	return c
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Gateway  ModelGateway
	Products productdomain.Repository
	Hub      *notify.Hub
	Config   Config `optional:"true"`
}

// Worker validates queued products one at a time.
type Worker struct {
	log      *zap.Logger
	gateway  ModelGateway
	products productdomain.Repository
	hub      *notify.Hub
	cfg      Config

	queue chan string
}

func NewWorker(p Params) *Worker {
	cfg := p.Config.withDefaults()
	return &Worker{
		log:      p.Log.Named("validation"),
		gateway:  p.Gateway,
		products: p.Products,
		hub:      p.Hub,
		cfg:      cfg,
		queue:    make(chan string, cfg.QueueSize),
	}
}

// Enqueue schedules a product for validation. Returns false when no provider
// covers vision and text or when the queue is full, leaving the product
// pending for a later sweep.
func (w *Worker) Enqueue(productID string) bool {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return false
	}
	if !w.gateway.Ready() {
		w.log.Debug("validation skipped, no capable provider",
			zap.String("product_id", productID))
		return false
	}
	select {
	case w.queue <- productID:
		return true
	default:
		w.log.Warn("validation queue full", zap.String("product_id", productID))
		return false
	}
}

// EnqueueSweep queues every product that still needs validation and returns
// how many were scheduled. Products without an image are approved in place.
func (w *Worker) EnqueueSweep(ctx context.Context) (int, error) {
	products, err := w.products.All(ctx)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, product := range products {
		switch product.ValidationStatus {
		case productdomain.StatusApproved, productdomain.StatusRejected:
			continue
		}
		if strings.TrimSpace(product.ImageURL) == "" {
			if _, err := w.products.Update(ctx, product.ID, func(p *productdomain.Product) {
				p.ValidationStatus = productdomain.StatusApproved
			}); err != nil {
				w.log.Warn("approve imageless product failed",
					zap.String("product_id", product.ID), zap.Error(err))
			}
			continue
		}
		if w.Enqueue(product.ID) {
			queued++
		}
	}
	return queued, nil
}

// RunForever drains the queue until ctx is cancelled.
func (w *Worker) RunForever(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case productID := <-w.queue:
			w.RunOne(ctx, productID)
		}
	}
}

// RunOne validates a single product, retrying transient failures with
// exponential backoff before marking the listing failed.
func (w *Worker) RunOne(ctx context.Context, productID string) {
	var lastErr error
	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		err := w.validate(ctx, productID)
		if err == nil {
			return
		}
		lastErr = err

		w.log.Warn("validation attempt failed",
			zap.String("product_id", productID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt == w.cfg.MaxAttempts {
			break
		}
		backoff := w.cfg.BaseBackoff << (attempt - 1)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}

	w.markFailed(ctx, productID, lastErr)
}

type verdict struct {
	IsValid   bool     `json:"isValid"`
	Score     int      `json:"score"`
	Issues    []string `json:"issues"`
	Reasoning string   `json:"reasoning"`
}

func (w *Worker) validate(parentCtx context.Context, productID string) error {
	ctx, cancel := context.WithTimeout(parentCtx, w.cfg.CallTimeout)
	defer cancel()

	product, ok, err := w.products.Get(ctx, productID)
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}
	if !ok {
		// Deleted while queued.
		return nil
	}
	if strings.TrimSpace(product.ImageURL) == "" {
		_, err := w.products.Update(ctx, productID, func(p *productdomain.Product) {
			p.ValidationStatus = productdomain.StatusApproved
		})
		return err
	}

	img, err := w.gateway.FetchImage(ctx, product.ImageURL)
	if err != nil {
		return fmt.Errorf("fetch image: %w", err)
	}

	description, err := w.gateway.DescribeImage(ctx, img, describePrompt)
	if err != nil {
		return fmt.Errorf("describe image: %w", err)
	}

	reply, err := w.gateway.GenerateText(ctx, scorePrompt(product, description))
	if err != nil {
		return fmt.Errorf("score listing: %w", err)
	}

	var v verdict
	if err := json.Unmarshal([]byte(aidomain.CleanModelJSON(reply)), &v); err != nil {
		return fmt.Errorf("parse verdict: %w", err)
	}
	if v.Issues == nil {
		v.Issues = []string{}
	}

	status := productdomain.StatusRejected
	if v.IsValid {
		status = productdomain.StatusApproved
	}
	result := &productdomain.ValidationResult{
		Score:            v.Score,
		Issues:           v.Issues,
		ImageDescription: description,
		Reasoning:        v.Reasoning,
	}

	if _, err := w.products.Update(ctx, productID, func(p *productdomain.Product) {
		p.ValidationStatus = status
		p.ValidationResult = result
	}); err != nil {
		return fmt.Errorf("store verdict: %w", err)
	}

	w.log.Info("product validated",
		zap.String("product_id", productID),
		zap.String("status", string(status)),
		zap.Int("score", v.Score),
	)
	if status == productdomain.StatusApproved {
		w.hub.Publish(notify.LevelSuccess, fmt.Sprintf("%s approved (score %d)", product.Name, v.Score))
	} else {
		w.hub.Publish(notify.LevelWarning, fmt.Sprintf("%s rejected (score %d)", product.Name, v.Score))
	}
	return nil
}

func (w *Worker) markFailed(ctx context.Context, productID string, cause error) {
	product, err := w.products.Update(ctx, productID, func(p *productdomain.Product) {
		p.ValidationStatus = productdomain.StatusFailed
	})
	if err != nil {
		w.log.Warn("mark validation failed",
			zap.String("product_id", productID), zap.Error(err))
		return
	}

	w.log.Error("validation gave up",
		zap.String("product_id", productID),
		zap.Int("attempts", w.cfg.MaxAttempts),
		zap.Error(cause),
	)
	w.hub.Publish(notify.LevelError, fmt.Sprintf("Validation failed for %s", product.Name))
}

const describePrompt = "Describe this product image in one or two sentences. " +
	"Focus on what the item is, its condition, and anything unusual."

func scorePrompt(product productdomain.Product, imageDescription string) string {
	var b strings.Builder
	b.WriteString("You review listings for a fresh grocery storefront.\n")
	b.WriteString("Product listing:\n")
	fmt.Fprintf(&b, "- Name: %s\n", product.Name)
	fmt.Fprintf(&b, "- Description: %s\n", product.Description)
	fmt.Fprintf(&b, "- Category: %s\n", product.Category)
	fmt.Fprintf(&b, "- Price: %.2f\n", product.Price)
	fmt.Fprintf(&b, "Image description: %s\n\n", imageDescription)
	b.WriteString("Decide whether the image matches the listing and the listing is appropriate for a grocery store.\n")
	b.WriteString("Respond with ONLY a JSON object, no markdown, shaped as:\n")
	b.WriteString(`{"isValid": true, "score": 0, "issues": ["..."], "reasoning": "..."}` + "\n")
	b.WriteString("score is 0-100 listing quality. issues lists concrete problems, empty when none.")
	return b.String()
}
