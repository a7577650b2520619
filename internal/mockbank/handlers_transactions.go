package mockbank

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sebaswvv/MazeBank/internal/validate"
	"github.com/sebaswvv/MazeBank/models"
)

func (s *Server) createTransaction(c *gin.Context) {
	var req models.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			respondWithValidationError(c, verr)
			return
		}
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := s.store.Transfer(currentUserID(c), req)
	if errors.Is(err, errNotFound) {
		respondWithError(c, http.StatusNotFound, "Account not found")
		return
	}
	if err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, tx)
}
