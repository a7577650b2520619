package mockbank

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sebaswvv/MazeBank/internal/validate"
	"github.com/sebaswvv/MazeBank/models"
)

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
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

	user, ok := s.store.Authenticate(req.Email, req.Password)
	if !ok {
		respondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.SignToken(user.ID)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	c.JSON(http.StatusOK, models.AuthResponse{AuthenticationToken: token})
}

func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
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

	user, err := s.store.CreateUser(models.User{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		PhoneNumber:      req.PhoneNumber,
		BSN:              req.BSN,
		Role:             models.RoleCustomer,
		TransactionLimit: 1000,
		DayLimit:         2500,
	}, req.Password)
	if err != nil {
		respondWithError(c, http.StatusConflict, err.Error())
		return
	}

	token, err := s.SignToken(user.ID)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	c.JSON(http.StatusCreated, models.AuthResponse{AuthenticationToken: token})
}
