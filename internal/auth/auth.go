// Package auth is the access gate: credential handling, the session
// lifecycle, and the middleware that resolves a session to a user for
// every protected route.
package auth

import (
	"errors"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/shopkit/storefront/internal/models"
	"github.com/shopkit/storefront/internal/store"
)

// Session value keys.
const (
	SessionUserID    = "userId"
	SessionUserEmail = "userEmail"
	SessionUserRole  = "userRole"
)

const userContextKey = "currentUser"

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

type Service struct {
	users store.UserStore
}

func New(users store.UserStore) *Service {
	return &Service{users: users}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func userBody(u *models.User) gin.H {
	return gin.H{"id": u.ID, "email": u.Email, "role": u.Role}
}

// POST /api/auth/register
func (s *Service) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": []string{"Request body must be valid JSON"}})
		return
	}

	var details []string
	if !emailPattern.MatchString(req.Email) {
		details = append(details, "Valid email is required")
	}
	if len(req.Password) < 6 {
		details = append(details, "Password is required and must be at least 6 characters long")
	}
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": details})
		return
	}

	ctx := c.Request.Context()
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists", "message": "Email is already registered"})
		return
	} else if errors.Is(err, store.ErrUnavailable) {
		unavailable(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Email:     req.Email,
		Password:  string(hash),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists", "message": "Email is already registered"})
		case errors.Is(err, store.ErrUnavailable):
			unavailable(c, err)
		default:
			log.Printf("register: create user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	s.establishSession(c, user)
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": userBody(user)})
}

// POST /api/auth/login
func (s *Service) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": []string{"Request body must be valid JSON"}})
		return
	}

	var details []string
	if !emailPattern.MatchString(req.Email) {
		details = append(details, "Valid email is required")
	}
	if req.Password == "" {
		details = append(details, "Password is required")
	}
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": details})
		return
	}

	user, err := s.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			unavailable(c, err)
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials", "message": "Email or password is incorrect"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials", "message": "Email or password is incorrect"})
		return
	}

	s.establishSession(c, user)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": userBody(user)})
}

// POST /api/auth/logout
func (s *Service) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed", "message": "Could not destroy session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// GET /api/auth/profile
func (s *Service) Profile(c *gin.Context) {
	user := CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
	}})
}

func (s *Service) establishSession(c *gin.Context, user *models.User) {
	sess := sessions.Default(c)
	sess.Set(SessionUserID, user.ID.Hex())
	sess.Set(SessionUserEmail, user.Email)
	sess.Set(SessionUserRole, user.Role)
	if err := sess.Save(); err != nil {
		// A session store failure does not undo a successful register/login.
		log.Printf("Warning: could not save session for %s: %v", user.Email, err)
	}
}

// RequireAuth resolves the session to a user and puts it on the gin
// context. A session whose user no longer exists is proactively cleared.
func (s *Service) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		idHex, ok := sess.Get(SessionUserID).(string)
		if !ok || idHex == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Please login to access this resource",
			})
			return
		}

		id, err := primitive.ObjectIDFromHex(idHex)
		if err != nil {
			sess.Clear()
			_ = sess.Save()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid session",
				"message": "User not found. Please login again",
			})
			return
		}

		user, err := s.users.Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrUnavailable) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"error":   "Database unavailable",
					"message": "The data store is not reachable. Please try again later.",
				})
				return
			}
			sess.Clear()
			_ = sess.Save()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid session",
				"message": "User not found. Please login again",
			})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireAdmin composes after RequireAuth and checks the role only.
func (s *Service) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "Access denied",
				"message": "Admin access required",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user RequireAuth attached to the context, or
// nil when the request never passed the gate.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userContextKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

func unavailable(c *gin.Context, err error) {
	log.Printf("auth: store unavailable: %v", err)
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error":   "Database unavailable",
		"message": "The data store is not reachable. Please try again later.",
	})
}
