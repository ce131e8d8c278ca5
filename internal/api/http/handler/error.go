package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/irozhkov/library-server/internal/model"
)

// errorResponse is the wire shape for every failure.
type errorResponse struct {
	Errors []string `json:"errors"`
}

// respondError maps domain errors to HTTP statuses. Validation failures,
// double returns and delete conflicts all render as unprocessable
// content with the full message list.
func respondError(c *gin.Context, err error) {
	var ve *model.ValidationError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Errors: ve.Messages})
	case errors.Is(err, model.ErrAlreadyReturned):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Errors: []string{"Borrowing already marked as returned"}})
	case errors.Is(err, model.ErrConflict):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Errors: []string{"Cannot delete book with active borrowings"}})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Errors: []string{"Not found"}})
	case errors.Is(err, model.ErrForbidden):
		c.JSON(http.StatusForbidden, errorResponse{Errors: []string{"Forbidden"}})
	case errors.Is(err, model.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorResponse{Errors: []string{"Invalid email or password"}})
	case errors.Is(err, model.ErrTokenExpired), errors.Is(err, model.ErrTokenMalformed):
		c.JSON(http.StatusUnauthorized, errorResponse{Errors: []string{"Unauthorized"}})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Errors: []string{"Internal server error"}})
	}
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Errors: []string{err.Error()}})
}
