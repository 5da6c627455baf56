package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	aidomain "github.com/freshmart/storefront/internal/ai/domain"
	productdomain "github.com/freshmart/storefront/internal/product/domain"
)

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		Category string `form:"category"`
		Search   string `form:"search"`
		MinPrice string `form:"minPrice"`
		MaxPrice string `form:"maxPrice"`
		SortBy   string `form:"sortBy"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	minPrice, err := parseOptionalFloat(query.MinPrice)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	maxPrice, err := parseOptionalFloat(query.MaxPrice)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.productSvc.List(c.Request.Context(), productdomain.ListRequest{
		Category: strings.TrimSpace(query.Category),
		Search:   strings.TrimSpace(query.Search),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		SortBy:   strings.TrimSpace(query.SortBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Products,
		"count":   result.Count,
		"total":   result.Total,
	})
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req productdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	product, err := s.productSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": product})
}

func (s *Server) GetProduct(c *gin.Context) {
	product, err := s.productSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req productdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	product, err := s.productSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	product, err := s.productSvc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product deleted successfully",
		"data":    product,
	})
}

func (s *Server) ApprovedProducts(c *gin.Context) {
	products, err := s.productSvc.Approved(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
		"count":   len(products),
	})
}

func (s *Server) ProductCategories(c *gin.Context) {
	summary, err := s.productSvc.Categories(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}

func (s *Server) SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	products, err := s.productSvc.Search(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
		"count":   len(products),
	})
}

func (s *Server) ApproveLegacyProducts(c *gin.Context) {
	result, err := s.productSvc.ApproveLegacy(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

func (s *Server) ProductValidation(c *gin.Context) {
	state, err := s.productSvc.ValidationState(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": state})
}

func (s *Server) OverrideProductValidation(c *gin.Context) {
	var req struct {
		Action string `json:"action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	product, err := s.productSvc.OverrideValidation(c.Request.Context(), c.Param("id"), strings.TrimSpace(req.Action))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

func (s *Server) RevalidateProduct(c *gin.Context) {
	product, err := s.productSvc.Revalidate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

func (s *Server) ValidateAllProducts(c *gin.Context) {
	queued, err := s.worker.EnqueueSweep(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"queued": queued},
	})
}

func (s *Server) GenerateProductContent(c *gin.Context) {
	var req struct {
		ImageURL string `json:"imageUrl"`
		Name     string `json:"name"`
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	imageURL := strings.TrimSpace(req.ImageURL)
	name := strings.TrimSpace(req.Name)
	if imageURL == "" && name == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	ctx := c.Request.Context()

	if imageURL == "" {
		description, err := s.aiRegistry.GenerateText(ctx, descriptionPrompt(name, strings.TrimSpace(req.Category)))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"description": strings.TrimSpace(description)},
		})
		return
	}

	img, err := s.aiRegistry.FetchImage(ctx, imageURL)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	imageDescription, err := s.aiRegistry.DescribeImage(ctx, img, "Describe the grocery product in this photo in one or two sentences. Mention the produce type, color, and condition.")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	categories := []string{"Fruits", "Vegetables", "Organic", "Seasonal", "Exotic"}
	if summary, err := s.productSvc.Categories(ctx); err == nil && len(summary.Categories) > 0 {
		categories = summary.Categories
	}

	reply, err := s.aiRegistry.GenerateText(ctx, listingPrompt(imageDescription, categories))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var content struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := json.Unmarshal([]byte(aidomain.CleanModelJSON(reply)), &content); err != nil {
		AbortWithError(c, aidomain.ErrEmptyResponse)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"name":             strings.TrimSpace(content.Name),
			"description":      strings.TrimSpace(content.Description),
			"category":         strings.TrimSpace(content.Category),
			"imageDescription": strings.TrimSpace(imageDescription),
		},
	})
}

func descriptionPrompt(name, category string) string {
	var b strings.Builder
	b.WriteString("Write a short, appetizing product description for a grocery storefront.\n")
	b.WriteString("Product name: " + name + "\n")
	if category != "" {
		b.WriteString("Category: " + category + "\n")
	}
	b.WriteString("Two sentences at most. Plain text, no markdown.")
	return b.String()
}

func listingPrompt(imageDescription string, categories []string) string {
	var b strings.Builder
	b.WriteString("You are filling in a grocery storefront listing from a product photo.\n")
	b.WriteString("Photo description: " + imageDescription + "\n")
	b.WriteString("Pick the category from this list: " + strings.Join(categories, ", ") + "\n")
	b.WriteString(`Respond with only a JSON object: {"name": "...", "description": "...", "category": "..."}. `)
	b.WriteString("The description is at most two appetizing sentences.")
	return b.String()
}

func parseOptionalFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
