package controllers

import (
	"github.com/Akankshas1102/amazondvc-admin/internal/app/middleware"
	"github.com/Akankshas1102/amazondvc-admin/internal/domain/services"
	"github.com/Akankshas1102/amazondvc-admin/internal/domain/services/container"
	"github.com/Akankshas1102/amazondvc-admin/internal/error/code"
	"github.com/Akankshas1102/amazondvc-admin/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceAuthController 定义认证控制器接口
type InterfaceAuthController interface {
	Login()
	ChangePassword()
}

// AuthController 认证控制器
type AuthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAuthController 创建一个新的认证控制器
func NewAuthController(ctx *gin.Context, container *container.ServiceContainer) *AuthController {
	return &AuthController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"Admin@123"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// HandleAuthFunc 返回一个处理认证请求的Gin处理函数
func HandleAuthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAuthController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		case "changePassword":
			controller.ChangePassword()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. Login 用户登录
// @Summary      用户登录
// @Description  使用用户名和密码登录，返回JWT令牌
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "登录信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /admin/login [post]
func (c *AuthController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "Invalid request body: "+err.Error())
		return
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	result, err := jwtService.Login(req.Username, req.Password)
	if err != nil {
		response.Fail(c.Ctx, code.ErrInvalidCredentials, nil)
		return
	}

	response.Success(c.Ctx, result)
}

// 2. ChangePassword 修改当前用户密码
// @Summary      修改密码
// @Description  验证当前密码后更新为新密码，修改后需要重新登录
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body ChangePasswordRequest true "密码信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /admin/change-password [post]
// @Security     BearerAuth
func (c *AuthController) ChangePassword() {
	var req ChangePasswordRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "Invalid request body: "+err.Error())
		return
	}

	userID := middleware.CurrentUserID(c.Ctx)
	if userID == 0 {
		response.Unauthorized(c.Ctx)
		return
	}

	userService := c.Container.GetService("admin_user").(services.InterfaceAdminUserService)
	if err := userService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrPasswordIncorrect, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{"message": "Password changed successfully"})
}
