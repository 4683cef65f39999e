package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	inventorydomain "github.com/smallbiznis/dukaan/internal/inventory/domain"
	"github.com/smallbiznis/dukaan/pkg/db/pagination"
)

func (s *Server) createProduct(c *gin.Context) {
	var req inventorydomain.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.inventorySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) listProducts(c *gin.Context) {
	var query struct {
		pagination.Pagination
		SKU      string `form:"sku"`
		Name     string `form:"name"`
		LowStock bool   `form:"low_stock"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.inventorySvc.List(c.Request.Context(), inventorydomain.ListProductRequest{
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
		SKU:       strings.TrimSpace(query.SKU),
		Name:      strings.TrimSpace(query.Name),
		LowStock:  query.LowStock,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getProduct(c *gin.Context) {
	resp, err := s.inventorySvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) setStockLevel(c *gin.Context) {
	var req inventorydomain.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ProductID = c.Param("id")

	resp, err := s.inventorySvc.SetLevel(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) adjustStock(c *gin.Context) {
	var req inventorydomain.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ProductID = c.Param("id")

	resp, err := s.inventorySvc.Adjust(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
