package api

import (
	"net/http"

	"hisaab/middleware"
	"hisaab/service"

	"github.com/gin-gonic/gin"
)

// 认证接口提示
const (
	MsgRegistered     = "User registered successfully"
	MsgDemoRegistered = "Registration successful"
	MsgLoggedIn       = "Login successful"
	MsgProfileUpdated = "Profile updated successfully"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	auth service.Authenticator
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(auth service.Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50" example:"Asha"`
	Email    string `json:"email" binding:"required,email" example:"asha@example.com"`
	Password string `json:"password" binding:"required,min=6,max=72" example:"secret123"`
}

var registerMessages = messageTable{
	"name.required":     service.MsgNameRequired,
	"name.min":          service.MsgNameTooShort,
	"name.max":          service.MsgNameTooLong,
	"name.type":         service.MsgNameRequired,
	"email.required":    service.MsgEmailInvalid,
	"email.email":       service.MsgEmailInvalid,
	"email.type":        service.MsgEmailInvalid,
	"password.required": service.MsgPasswordTooShort,
	"password.min":      service.MsgPasswordTooShort,
	"password.max":      service.MsgPasswordTooLong,
	"password.type":     service.MsgPasswordTooShort,
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"asha@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

var loginMessages = messageTable{
	"email.required":    service.MsgEmailInvalid,
	"email.email":       service.MsgEmailInvalid,
	"email.type":        service.MsgEmailInvalid,
	"password.required": service.MsgPasswordRequired,
	"password.type":     service.MsgPasswordRequired,
}

// UpdateProfileRequest 资料更新请求，省略的字段不修改
type UpdateProfileRequest struct {
	Name   *string `json:"name" example:"Asha Rao"`
	Avatar *string `json:"avatar" example:"https://example.com/avatar.png"`
}

var profileMessages = messageTable{
	"name.type":   service.MsgNameEmpty,
	"avatar.type": "Avatar must be a string",
}

// Register 用户注册
// @Summary 用户注册
// @Description 创建账号并初始化 12 个默认类别，返回 token 与用户资料
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 201 {object} AuthResponse "注册成功"
// @Failure 400 {object} Response "参数错误或邮箱已注册"
// @Failure 500 {object} Response "服务器错误"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bindJSON(c, &req, registerMessages); err != nil {
		RenderError(c, err, "Server error during registration")
		return
	}

	res, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		RenderError(c, err, "Server error during registration")
		return
	}

	message := MsgRegistered
	if h.auth.Mode() == service.ModeDemo {
		message = MsgDemoRegistered
	}
	c.JSON(http.StatusCreated, AuthResponse{
		Success: true,
		Message: message,
		Token:   res.Token,
		User:    res.User,
	})
}

// Login 用户登录
// @Summary 用户登录
// @Description 邮箱密码登录获取 JWT token，邮箱不存在与密码错误返回同一提示
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} AuthResponse "登录成功"
// @Failure 400 {object} Response "参数错误或邮箱密码错误"
// @Failure 429 {object} Response "请求过于频繁"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req, loginMessages); err != nil {
		RenderError(c, err, "Server error during login")
		return
	}

	res, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		RenderError(c, err, "Server error during login")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Success: true,
		Message: MsgLoggedIn,
		Token:   res.Token,
		User:    res.User,
	})
}

// GetProfile 获取当前用户资料
// @Summary 获取当前用户资料
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AuthResponse "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "用户不存在"
// @Router /api/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	profile, err := h.auth.Profile(c.Request.Context(), middleware.GetCurrentUser(c))
	if err != nil {
		RenderError(c, err, "Server error while fetching profile")
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Success: true, User: profile})
}

// UpdateProfile 更新当前用户资料
// @Summary 更新当前用户资料
// @Description 部分更新 name / avatar
// @Tags 认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "资料"
// @Success 200 {object} AuthResponse "更新成功"
// @Failure 400 {object} Response "参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "用户不存在"
// @Router /api/auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := bindJSON(c, &req, profileMessages); err != nil {
		RenderError(c, err, "Server error while updating profile")
		return
	}

	profile, err := h.auth.UpdateProfile(c.Request.Context(), middleware.GetCurrentUser(c), service.ProfileUpdate{
		Name:   req.Name,
		Avatar: req.Avatar,
	})
	if err != nil {
		RenderError(c, err, "Server error while updating profile")
		return
	}
	c.JSON(http.StatusOK, AuthResponse{
		Success: true,
		Message: MsgProfileUpdated,
		User:    profile,
	})
}
