package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fintrack/models"
	"fintrack/pkg/openai"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

func setupRoutes(r *gin.Engine) {
	r.POST("/register", registerHandler)
	r.POST("/login", loginHandler)
	r.POST("/token/refresh", refreshHandler)
	r.POST("/token/revoke", revokeRefreshHandler)
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.POST("/expenses", createExpenseHandler)
	authGroup.GET("/expenses", listExpensesHandler)
	authGroup.GET("/expenses/total", totalExpensesHandler)
	authGroup.DELETE("/expenses/:id", deleteExpenseHandler)
	authGroup.POST("/incomes", createIncomeHandler)
	authGroup.GET("/incomes", listIncomesHandler)
	authGroup.GET("/incomes/total", totalIncomesHandler)
	authGroup.DELETE("/incomes/:id", deleteIncomeHandler)
	authGroup.GET("/transactions", listTransactionsHandler)
	authGroup.POST("/chatbot", chatbotHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)
		c.Set("username", username)
		c.Next()
	}
}

func meHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username})
}

// getUserFromContext fetches the currently authenticated user using the username set by jwtAuthMiddleware
func getUserFromContext(c *gin.Context) (*models.User, bool) {
	unameVal, _ := c.Get("username")
	if unameVal == nil {
		return nil, false
	}
	uname := unameVal.(string)
	var user models.User
	if err := db.Where("username = ?", uname).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func registerHandler(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fieldErrors(err))
		return
	}
	user, err := RegisterUser(req.Username, req.Password, req.Email)
	if err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			c.JSON(http.StatusBadRequest, gin.H{"username": "a user with that username already exists"})
			return
		}
		slog.Error("register failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	c.JSON(http.StatusCreated, serializeUser(user))
}

func loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fieldErrors(err))
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			// identical body for unknown username and wrong password
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		slog.Error("login failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred during login"})
		return
	}
	access, err := issueAccessToken(user)
	if err != nil {
		slog.Error("failed to generate token", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred during login"})
		return
	}
	refresh, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		slog.Error("failed to create refresh token", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred during login"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access, "refresh": refresh, "message": "Login successful"})
}

func issueAccessToken(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(cfg.AccessTokenTTL).Unix(),
	})
	return token.SignedString(jwtSecret)
}

// createAndStoreRefreshToken generates a random refresh token, stores its hash with expiry and returns the raw token string
func createAndStoreRefreshToken(userID uint) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	// hash for storage
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	rt := models.RefreshToken{UserID: userID, TokenHash: th, ExpiresAt: time.Now().Add(cfg.RefreshTokenTTL)}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

// helper to find refresh token record by raw token string
func findRefreshTokenByRaw(token string) (*models.RefreshToken, error) {
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	var rt models.RefreshToken
	if err := db.Where("token_hash = ?", th).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func refreshHandler(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fieldErrors(err))
		return
	}
	rt, err := findRefreshTokenByRaw(req.Refresh)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	var user models.User
	if err := db.First(&user, rt.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	access, err := issueAccessToken(user)
	if err != nil {
		slog.Error("failed to generate token", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	// rotate: revoke the used token and hand out a new one
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		slog.Error("failed to rotate refresh token", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access, "refresh": newRT})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func revokeRefreshHandler(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fieldErrors(err))
		return
	}
	rt, err := findRefreshTokenByRaw(req.Refresh)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	rt.Revoked = true
	if err := db.Save(rt).Error; err != nil {
		slog.Error("failed to revoke token", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

// createExpenseHandler creates an Expense owned by the authenticated user.
// Validation failures are 400 with a field map; persistence faults are 500.
func createExpenseHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fieldErrors(err))
		return
	}
	date, errs := req.validate()
	if errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return
	}
	exp := models.Expense{UserID: user.ID, Amount: req.Amount, Date: date, Category: req.Category, Description: req.Description}
	if err := db.Create(&exp).Error; err != nil {
		slog.Error("expense create failed", "user", user.ID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, serializeExpense(exp))
}

func createIncomeHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fieldErrors(err))
		return
	}
	date, errs := req.validate()
	if errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return
	}
	inc := models.Income{UserID: user.ID, Amount: req.Amount, Date: date, Category: req.Category, Description: req.Description}
	if err := db.Create(&inc).Error; err != nil {
		slog.Error("income create failed", "user", user.ID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, serializeIncome(inc))
}

// listExpensesHandler returns the caller's expenses, newest date first, in
// fixed-size pages.
func listExpensesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	page, limit, offset := pageParam(c)
	var count int64
	if err := db.Model(&models.Expense{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	var items []models.Expense
	if err := db.Where("user_id = ?", user.ID).Order("date desc, id desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, paginate(c, count, page, serializeExpenses(items)))
}

func listIncomesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	page, limit, offset := pageParam(c)
	var count int64
	if err := db.Model(&models.Income{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	var items []models.Income
	if err := db.Where("user_id = ?", user.ID).Order("date desc, id desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, paginate(c, count, page, serializeIncomes(items)))
}

// listTransactionsHandler returns both full lists unpaginated under two keys.
func listTransactionsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var expenses []models.Expense
	if err := db.Where("user_id = ?", user.ID).Order("date desc, id desc").Find(&expenses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	var incomes []models.Income
	if err := db.Where("user_id = ?", user.ID).Order("date desc, id desc").Find(&incomes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": serializeExpenses(expenses), "incomes": serializeIncomes(incomes)})
}

// deleteExpenseHandler deletes by (id, owner). Another user's id is
// indistinguishable from a nonexistent one.
func deleteExpenseHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	res := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).Delete(&models.Expense{})
	if res.Error != nil {
		slog.Error("expense delete failed", "user", user.ID, "err", res.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func deleteIncomeHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	res := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).Delete(&models.Income{})
	if res.Error != nil {
		slog.Error("income delete failed", "user", user.ID, "err", res.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// sumAmount sums a record kind for one user. A user with no records gets 0,
// not NULL.
func sumAmount(model interface{}, userID uint) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	row := db.Model(model).Where("user_id = ?", userID).Select("SUM(amount)").Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func totalExpensesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	total, err := sumAmount(&models.Expense{}, user.ID)
	if err != nil {
		slog.Error("expense total failed", "user", user.ID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_expenses": total})
}

func totalIncomesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	total, err := sumAmount(&models.Income{}, user.ID)
	if err != nil {
		slog.Error("income total failed", "user", user.ID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_incomes": total})
}

// chatbotHandler forwards the caller's full record history plus a free-text
// query to the completion service and returns the first choice's text.
func chatbotHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req chatQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.String(http.StatusBadRequest, "missing query field")
		return
	}
	var expenses []models.Expense
	if err := db.Where("user_id = ?", user.ID).Order("date desc, id desc").Find(&expenses).Error; err != nil {
		slog.Error("chatbot expense query failed", "user", user.ID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	var incomes []models.Income
	if err := db.Where("user_id = ?", user.ID).Order("date desc, id desc").Find(&incomes).Error; err != nil {
		slog.Error("chatbot income query failed", "user", user.ID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	answer, err := aiClient.Complete(c.Request.Context(), buildChatMessages(req.Query, expenses, incomes))
	if err != nil {
		// detail stays server-side only
		slog.Error("completion call failed", "user", user.ID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "completion service error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": answer})
}

// buildChatMessages flattens every record into one natural-language line after
// a fixed system instruction and the user's query.
func buildChatMessages(query string, expenses []models.Expense, incomes []models.Income) []openai.Message {
	messages := []openai.Message{
		{Role: "system", Content: "You are a helpful assistant."},
		{Role: "user", Content: query},
	}
	for _, e := range expenses {
		messages = append(messages, openai.Message{Role: "user", Content: fmt.Sprintf("My expense is %s on %s", e.Amount, e.Date.Format("2006-01-02"))})
	}
	for _, i := range incomes {
		messages = append(messages, openai.Message{Role: "user", Content: fmt.Sprintf("My income is %s on %s", i.Amount, i.Date.Format("2006-01-02"))})
	}
	return messages
}
