package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/irozhkov/library-server/internal/api/http/middleware"
	"github.com/irozhkov/library-server/internal/logger"
	"github.com/irozhkov/library-server/internal/model"
	"github.com/irozhkov/library-server/internal/service"
)

// BookHandler handles catalog requests.
type BookHandler struct {
	catalog *service.Catalog
	logger  *logger.Logger
}

// NewBookHandler creates a new BookHandler instance.
func NewBookHandler(catalog *service.Catalog, logger *logger.Logger) *BookHandler {
	return &BookHandler{catalog: catalog, logger: logger}
}

type bookRequest struct {
	Book struct {
		Title       string `json:"title"`
		Author      string `json:"author"`
		Genre       string `json:"genre"`
		ISBN        string `json:"isbn"`
		TotalCopies int    `json:"total_copies"`
		Description string `json:"description"`
	} `json:"book" binding:"required"`
}

func (r bookRequest) attrs() service.BookAttrs {
	return service.BookAttrs{
		Title:       r.Book.Title,
		Author:      r.Book.Author,
		Genre:       r.Book.Genre,
		ISBN:        r.Book.ISBN,
		TotalCopies: r.Book.TotalCopies,
		Description: r.Book.Description,
	}
}

// List returns the catalog filtered by the query parameters.
func (h *BookHandler) List(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	filter := model.BookFilter{
		Query:  c.Query("q"),
		Title:  c.Query("title"),
		Author: c.Query("author"),
		Genre:  c.Query("genre"),
	}

	books, err := h.catalog.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookResponses(books))
}

// Get returns a single book.
func (h *BookHandler) Get(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, model.ErrNotFound)
		return
	}

	book, err := h.catalog.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookResponse(book))
}

// Create adds a book to the catalog.
func (h *BookHandler) Create(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	book, err := h.catalog.Create(c.Request.Context(), actor, req.attrs())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newBookResponse(book))
}

// Update replaces a book's attributes.
func (h *BookHandler) Update(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, model.ErrNotFound)
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	book, err := h.catalog.Update(c.Request.Context(), actor, id, req.attrs())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookResponse(book))
}

// Delete removes a book without active borrowings.
func (h *BookHandler) Delete(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, model.ErrNotFound)
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
