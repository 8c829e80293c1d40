package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-gms/middleware"
	"campus-gms/services"
	"campus-gms/types"
)

func (h *handler) registerAuthRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	limited := middleware.AuthRateLimitMiddleware(h.RateLimiter, h.Logger)
	router.POST("/signup", limited, h.signUp)
	router.POST("/signin", limited, h.signIn)
	router.POST("/refresh", h.refresh)
	router.POST("/signout", h.signOut)
	router.POST("/signout-all", auth, h.signOutAll)
	router.GET("/me", auth, h.me)
}

func deviceInfo(c *gin.Context) services.DeviceInfo {
	return services.DeviceInfo{
		DeviceID:  c.GetHeader("X-Device-ID"),
		UserAgent: c.GetHeader("User-Agent"),
		IPAddress: c.ClientIP(),
	}
}

// signUp handles student registration
func (h *handler) signUp(c *gin.Context) {
	var req types.SignUpRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Auth.SignUp(req, deviceInfo(c))
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusCreated, "Account created successfully", res)
}

// signIn handles student authentication
func (h *handler) signIn(c *gin.Context) {
	var req types.SignInRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Auth.SignIn(req, deviceInfo(c))
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	h.Logger.Info("✅ Signed in", zap.Uint("user_id", res.User.ID), zap.String("ip", c.ClientIP()))
	respond(c, http.StatusOK, "Signed in successfully", res)
}

func (h *handler) refresh(c *gin.Context) {
	var req types.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Auth.Refresh(req.RefreshToken)
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Token refreshed successfully", res)
}

func (h *handler) signOut(c *gin.Context) {
	var req types.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Auth.SignOut(req.RefreshToken); err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Signed out successfully", nil)
}

func (h *handler) signOutAll(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.JWT.RevokeAllUserTokens(user.ID); err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Signed out of all devices", nil)
}

func (h *handler) me(c *gin.Context) {
	respond(c, http.StatusOK, "Account retrieved successfully", middleware.CurrentUser(c).ToAccount())
}
