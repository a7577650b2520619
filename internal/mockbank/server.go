// Package mockbank is an in-process double of the MazeBank API. It backs
// local development (cmd/mockbank) and the integration tests: the client is
// exercised against real HTTP semantics without a database.
package mockbank

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sebaswvv/MazeBank/internal/validate"
	"github.com/sebaswvv/MazeBank/models"
)

// Claims is the token payload the mock bank signs. The userId claim is what
// the client derives its session identity from.
type Claims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

// Server wires the mock bank's routes onto a gin engine.
type Server struct {
	store  *Store
	secret []byte
	engine *gin.Engine
}

func NewServer(store *Store, secret string) *Server {
	s := &Server{store: store, secret: []byte(secret)}

	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/auth/login", s.login)
	router.POST("/auth/register", s.register)

	authed := router.Group("/", s.authMiddleware())
	{
		authed.GET("/users/:id", s.getUser)
		authed.PATCH("/users/:id", s.patchUser)
		authed.GET("/users/:id/accounts", s.getUserAccounts)
		authed.GET("/users/:id/transactions", s.getUserTransactions)

		authed.GET("/accounts/:id", s.getAccount)
		authed.PATCH("/accounts/:id", s.patchAccount)
		authed.PUT("/accounts/:id/enable", s.enableAccount)
		authed.PUT("/accounts/:id/disable", s.disableAccount)
		authed.GET("/accounts/search/:query", s.searchAccounts)
		authed.POST("/accounts/:id/deposit", s.deposit)
		authed.POST("/accounts/:id/withdraw", s.withdraw)
		authed.GET("/accounts/:id/transactions", s.getAccountTransactions)

		authed.POST("/transactions", s.createTransaction)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine = router
	return s
}

// Handler exposes the engine for httptest and for cmd/mockbank.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the server on addr.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// SignToken issues an HS256 token for userID, valid for 24 hours.
func (s *Server) SignToken(userID int64) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondWithError(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondWithError(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (any, error) {
			return s.secret, nil
		})
		if err != nil || !token.Valid {
			respondWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("userId", claims.UserID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	v, ok := c.Get("userId")
	if !ok {
		return 0
	}
	return v.(int64)
}

func respondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"message": message})
}

func respondWithValidationError(c *gin.Context, verr *validate.Error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"message": "Validation failed",
		"details": verr.Fields,
	})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func paging(c *gin.Context) (page, size int, asc bool) {
	page, _ = strconv.Atoi(c.DefaultQuery("pageNumber", "0"))
	size, _ = strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	asc = c.DefaultQuery("sort", "desc") == "asc"
	return page, size, asc
}

// Seed populates the store with a known customer and accounts; used by
// cmd/mockbank and the integration tests.
func (s *Server) Seed() (userID int64, checkingID int64, savingsID int64, err error) {
	u, err := s.store.CreateUser(models.User{
		FirstName:        "Daan",
		LastName:         "Jansen",
		Email:            "daan@mazebank.nl",
		PhoneNumber:      "0612345678",
		BSN:              123456789,
		Role:             models.RoleCustomer,
		TransactionLimit: 500,
		DayLimit:         1000,
	}, "password123")
	if err != nil {
		return 0, 0, 0, err
	}

	checking := s.store.CreateAccount(u.ID, models.AccountTypeChecking, "NL01INHO0000000001", -100)
	savings := s.store.CreateAccount(u.ID, models.AccountTypeSavings, "NL01INHO0000000002", 0)
	return u.ID, checking.ID, savings.ID, nil
}
