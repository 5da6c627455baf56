package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"

	aidomain "github.com/freshmart/storefront/internal/ai/domain"
	"github.com/freshmart/storefront/internal/chat/domain"
	"github.com/freshmart/storefront/internal/clock"
	"github.com/freshmart/storefront/internal/notify"
	orderdomain "github.com/freshmart/storefront/internal/order/domain"
	productdomain "github.com/freshmart/storefront/internal/product/domain"
)

// TextGateway is the slice of the AI registry chat needs.
type TextGateway interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Gateway  TextGateway
	Products productdomain.Service
	Orders   orderdomain.Service
	Hub      *notify.Hub
	Clk      clock.Clock
}

type Service struct {
	log      *zap.Logger
	gateway  TextGateway
	products productdomain.Service
	orders   orderdomain.Service
	hub      *notify.Hub
	clk      clock.Clock

	mu       sync.Mutex
	sessions map[string][]domain.Message
	entropy  *ulid.MonotonicEntropy
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("chat"),
		gateway:  p.Gateway,
		products: p.Products,
		orders:   p.Orders,
		hub:      p.Hub,
		clk:      p.Clk,
		sessions: make(map[string][]domain.Message),
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// Send runs one chat turn: record the user message, extract an order request
// against the approved catalog, place the order when products were found, and
// always close the turn with an assistant message.
func (s *Service) Send(ctx context.Context, req domain.Request) (*domain.Result, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = s.newID()
	}
	s.append(sessionID, domain.RoleUser, text)

	catalog, err := s.products.Approved(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	reply, err := s.gateway.GenerateText(ctx, extractionPrompt(catalog, text))
	if err != nil {
		s.append(sessionID, domain.RoleAssistant,
			"Sorry, I could not process that right now. Please try again in a moment.")
		return nil, fmt.Errorf("extract order: %w", err)
	}

	extraction := s.parseExtraction(reply, catalog)
	if extraction.UserID == "" {
		extraction.UserID = strings.TrimSpace(req.UserID)
	}
	if extraction.UserID == "" {
		extraction.UserID = domain.DefaultUserID
	}

	result := &domain.Result{SessionID: sessionID, Extraction: extraction}

	if len(extraction.Products) == 0 {
		s.append(sessionID, domain.RoleAssistant, guidanceMessage(catalog))
	} else {
		order, err := s.placeOrder(ctx, extraction)
		if err != nil {
			s.log.Warn("chat order failed", zap.Error(err))
			s.append(sessionID, domain.RoleAssistant,
				"I understood your order but could not place it. Please try again.")
			return nil, fmt.Errorf("place order: %w", err)
		}
		result.OrderID = order.ID
		s.append(sessionID, domain.RoleAssistant, confirmationMessage(order, catalog))
		s.hub.Publish(notify.LevelSuccess, fmt.Sprintf("Order %s placed from chat", order.ID))
	}

	result.Messages, _ = s.Transcript(ctx, sessionID)
	return result, nil
}

// Transcript returns a copy of the session's messages.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]domain.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages, ok := s.sessions[sessionID]
	return append([]domain.Message(nil), messages...), ok
}

func (s *Service) placeOrder(ctx context.Context, extraction domain.Extraction) (*orderdomain.Order, error) {
	lines := make([]orderdomain.LineInput, 0, len(extraction.Products))
	for _, line := range extraction.Products {
		lines = append(lines, orderdomain.LineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	return s.orders.Create(ctx, orderdomain.CreateRequest{
		UserID:   extraction.UserID,
		Products: lines,
	})
}

// parseExtraction decodes the model reply, dropping products that are not in
// the approved catalog. Any parse failure degrades to an empty extraction.
func (s *Service) parseExtraction(reply string, catalog []productdomain.Product) domain.Extraction {
	empty := domain.Extraction{Products: []domain.ExtractedLine{}}

	var parsed domain.Extraction
	if err := json.Unmarshal([]byte(aidomain.CleanModelJSON(reply)), &parsed); err != nil {
		s.log.Warn("unparseable extraction", zap.String("reply", reply), zap.Error(err))
		return empty
	}

	known := make(map[string]struct{}, len(catalog))
	for _, product := range catalog {
		known[product.ID] = struct{}{}
	}

	lines := make([]domain.ExtractedLine, 0, len(parsed.Products))
	for _, line := range parsed.Products {
		if _, ok := known[line.ProductID]; !ok {
			continue
		}
		if line.Quantity <= 0 {
			line.Quantity = 1
		}
		lines = append(lines, line)
	}

	return domain.Extraction{Products: lines, UserID: strings.TrimSpace(parsed.UserID)}
}

func (s *Service) append(sessionID, role, content string) {
	now := s.clk.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], domain.Message{
		ID:        ulid.MustNew(ulid.Timestamp(now), s.entropy).String(),
		Role:      role,
		Content:   content,
		CreatedAt: now,
	})
}

func (s *Service) newID() string {
	return ulid.MustNew(ulid.Timestamp(s.clk.Now()), s.entropy).String()
}

func extractionPrompt(catalog []productdomain.Product, message string) string {
	var b strings.Builder
	b.WriteString("You take grocery orders over chat. Available products:\n")
	for _, product := range catalog {
		fmt.Fprintf(&b, "- id: %s | name: %s | price: %.2f\n", product.ID, product.Name, product.Price)
	}
	b.WriteString("\nCustomer message:\n")
	b.WriteString(message)
	b.WriteString("\n\nExtract the order as JSON. Use ONLY product ids from the list above.\n")
	b.WriteString("Respond with ONLY a JSON object, no markdown, shaped as:\n")
	b.WriteString(`{"products": [{"productId": "...", "quantity": 1}], "userId": ""}` + "\n")
	b.WriteString("When the message orders nothing from the list, respond with an empty products array.")
	return b.String()
}

func guidanceMessage(catalog []productdomain.Product) string {
	names := make([]string, 0, 5)
	for _, product := range catalog {
		names = append(names, product.Name)
		if len(names) == 5 {
			break
		}
	}
	if len(names) == 0 {
		return "I could not find any products in your message, and the catalog is currently empty."
	}
	return fmt.Sprintf(
		"I could not find any products from our catalog in your message. You could try: %s.",
		strings.Join(names, ", "))
}

func confirmationMessage(order *orderdomain.Order, catalog []productdomain.Product) string {
	names := make(map[string]string, len(catalog))
	for _, product := range catalog {
		names[product.ID] = product.Name
	}

	var b strings.Builder
	b.WriteString("Your order has been placed!\n")
	for _, line := range order.Products {
		name := names[line.ProductID]
		if name == "" {
			name = line.ProductID
		}
		fmt.Fprintf(&b, "- %d x %s ($%.2f each)\n", line.Quantity, name, line.Price)
	}
	fmt.Fprintf(&b, "Total: $%.2f (order %s)", order.TotalAmount, order.ID)
	return b.String()
}
