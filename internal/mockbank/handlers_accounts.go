package mockbank

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sebaswvv/MazeBank/internal/validate"
	"github.com/sebaswvv/MazeBank/models"
)

func (s *Server) getAccount(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	account, ok := s.store.Account(id)
	if !ok {
		respondWithError(c, http.StatusNotFound, "Account not found")
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *Server) patchAccount(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var patch models.AccountPatchRequest
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

	account, ok := s.store.PatchAccount(id, patch)
	if !ok {
		respondWithError(c, http.StatusNotFound, "Account not found")
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *Server) enableAccount(c *gin.Context) {
	s.setActive(c, true)
}

func (s *Server) disableAccount(c *gin.Context) {
	s.setActive(c, false)
}

func (s *Server) setActive(c *gin.Context, active bool) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	account, ok := s.store.SetActive(id, active)
	if !ok {
		respondWithError(c, http.StatusNotFound, "Account not found")
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *Server) searchAccounts(c *gin.Context) {
	query := c.Param("query")
	if query == "" {
		respondWithError(c, http.StatusBadRequest, "Query is required")
		return
	}
	c.JSON(http.StatusOK, s.store.Search(query))
}

func (s *Server) deposit(c *gin.Context) {
	s.atmOperation(c, http.StatusCreated, s.store.Deposit)
}

func (s *Server) withdraw(c *gin.Context) {
	s.atmOperation(c, http.StatusOK, s.store.Withdraw)
}

func (s *Server) atmOperation(c *gin.Context, successStatus int, move func(accountID, userID int64, amount float64) (*models.Transaction, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.AtmRequest
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

	tx, err := move(id, currentUserID(c), req.Amount)
	if errors.Is(err, errNotFound) {
		respondWithError(c, http.StatusNotFound, "Account not found")
		return
	}
	if err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(successStatus, tx)
}

func (s *Server) getAccountTransactions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	page, size, asc := paging(c)
	c.JSON(http.StatusOK, s.store.TransactionsOfAccount(id, page, size, asc))
}
