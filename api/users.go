package api

import (
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/service/auth"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	auth        auth.AuthUseCase
	bookings    booking.BookingUseCase
	requireAuth gin.HandlerFunc
	log         *zap.Logger
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	AdminSecret string `json:"admin_secret"`
}

// Login accepts a JSON body or an OAuth2-style password form.
type loginRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func NewUserHandler(authService auth.AuthUseCase, bookings booking.BookingUseCase, requireAuth gin.HandlerFunc, log *zap.Logger) *UserHandler {
	return &UserHandler{auth: authService, bookings: bookings, requireAuth: requireAuth, log: log}
}

func (h *UserHandler) Register(router *gin.RouterGroup) {
	router.POST("/register", h.register)
	router.POST("/login", h.login)
	router.GET("/me", h.requireAuth, h.me)
}

func (h *UserHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, validationError("%v", err))
		return
	}

	user, err := h.auth.Register(c.Request.Context(), auth.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		AdminSecret: req.AdminSecret,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(user))
}

func (h *UserHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, h.log, validationError("%v", err))
		return
	}
	email := req.Username
	if email == "" {
		email = req.Email
	}
	if email == "" || req.Password == "" {
		writeError(c, h.log, validationError("username and password are required"))
		return
	}

	token, err := h.auth.Login(c.Request.Context(), email, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (h *UserHandler) me(c *gin.Context) {
	principal := principalFrom(c)

	user, err := h.auth.Me(c.Request.Context(), principal)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	list, err := h.bookings.ListForUser(c.Request.Context(), principal)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, meResponse{userResponse: toUserResponse(user), Bookings: toBookingResponses(list)})
}
