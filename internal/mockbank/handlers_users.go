package mockbank

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sebaswvv/MazeBank/internal/validate"
	"github.com/sebaswvv/MazeBank/models"
)

func (s *Server) getUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, ok := s.store.User(id)
	if !ok {
		respondWithError(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) patchUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var patch models.UserPatchRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(patch); err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			respondWithValidationError(c, verr)
			return
		}
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, ok := s.store.PatchUser(id, patch)
	if !ok {
		respondWithError(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) getUserAccounts(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, exists := s.store.User(id); !exists {
		respondWithError(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, s.store.AccountsOfUser(id))
}

func (s *Server) getUserTransactions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	page, size, asc := paging(c)
	c.JSON(http.StatusOK, s.store.TransactionsOfUser(id, page, size, asc))
}
