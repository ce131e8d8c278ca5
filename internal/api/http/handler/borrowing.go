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

// BorrowingHandler handles loan requests.
type BorrowingHandler struct {
	lending *service.Lending
	logger  *logger.Logger
}

// NewBorrowingHandler creates a new BorrowingHandler instance.
func NewBorrowingHandler(lending *service.Lending, logger *logger.Logger) *BorrowingHandler {
	return &BorrowingHandler{lending: lending, logger: logger}
}

type borrowRequest struct {
	Borrowing struct {
		BookID uuid.UUID `json:"book_id" binding:"required"`
	} `json:"borrowing" binding:"required"`
}

// List returns every loan for librarians, own loans for members.
func (h *BorrowingHandler) List(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	borrowings, err := h.lending.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBorrowingResponses(borrowings))
}

// Get returns a single loan; members may only read their own.
func (h *BorrowingHandler) Get(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, model.ErrNotFound)
		return
	}

	borrowing, err := h.lending.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBorrowingResponse(borrowing))
}

// Create borrows a book for the acting member.
func (h *BorrowingHandler) Create(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req borrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	borrowing, err := h.lending.Borrow(c.Request.Context(), actor, req.Borrowing.BookID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newBorrowingResponse(borrowing))
}

// Return marks a loan returned.
func (h *BorrowingHandler) Return(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, model.ErrNotFound)
		return
	}

	borrowing, err := h.lending.Return(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBorrowingResponse(borrowing))
}
