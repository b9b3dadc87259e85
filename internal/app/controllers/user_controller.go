package controllers

import (
	"strconv"

	"github.com/Akankshas1102/amazondvc-admin/internal/domain/models"
	"github.com/Akankshas1102/amazondvc-admin/internal/domain/services"
	"github.com/Akankshas1102/amazondvc-admin/internal/domain/services/container"
	"github.com/Akankshas1102/amazondvc-admin/internal/error/code"
	"github.com/Akankshas1102/amazondvc-admin/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceUserController 定义账号管理控制器接口
type InterfaceUserController interface {
	GetUsers()
	CreateUser()
	UpdateUser()
	DeleteUser()
}

// UserController 账号管理控制器
type UserController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUserController 创建一个新的账号管理控制器
func NewUserController(ctx *gin.Context, container *container.ServiceContainer) *UserController {
	return &UserController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateUserRequest 创建账号请求
type CreateUserRequest struct {
	Username string `json:"username" binding:"required" example:"operator1"`
	Password string `json:"password" binding:"required,min=6" example:"Secret@123"`
	IsAdmin  bool   `json:"is_admin"`
}

// UpdateUserRequest 更新账号请求
type UpdateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  *bool  `json:"is_admin"`
}

// HandleUserFunc 返回一个处理账号管理请求的Gin处理函数
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUserController(ctx, container)

		switch method {
		case "getUsers":
			controller.GetUsers()
		case "createUser":
			controller.CreateUser()
		case "updateUser":
			controller.UpdateUser()
		case "deleteUser":
			controller.DeleteUser()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetUsers 获取账号列表
// @Summary      获取账号列表
// @Tags         User
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/users [get]
// @Security     BearerAuth
func (c *UserController) GetUsers() {
	userService := c.Container.GetService("admin_user").(services.InterfaceAdminUserService)
	users, err := userService.GetAllUsers()
	if err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	userResponses := make([]gin.H, 0, len(users))
	for _, user := range users {
		userResponses = append(userResponses, gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"is_admin":   user.IsAdmin,
			"created_at": user.CreatedAt,
		})
	}

	response.Success(c.Ctx, userResponses)
}

// 2. CreateUser 创建账号
// @Summary      创建账号
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "账号信息"
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/users [post]
// @Security     BearerAuth
func (c *UserController) CreateUser() {
	var req CreateUserRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "Invalid request body: "+err.Error())
		return
	}

	user := &models.AdminUser{
		Username: req.Username,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	}

	userService := c.Container.GetService("admin_user").(services.InterfaceAdminUserService)
	if err := userService.CreateUser(user); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrUserAlreadyExist, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"is_admin": user.IsAdmin,
	})
}

// 3. UpdateUser 更新账号
// @Summary      更新账号
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        id path int true "账号ID"
// @Param        request body UpdateUserRequest true "账号信息"
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/users/{id} [put]
// @Security     BearerAuth
func (c *UserController) UpdateUser() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "Invalid user id")
		return
	}

	var req UpdateUserRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "Invalid request body: "+err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Username != "" {
		updates["username"] = req.Username
	}
	if req.Password != "" {
		updates["password"] = req.Password
	}
	if req.IsAdmin != nil {
		updates["is_admin"] = *req.IsAdmin
	}

	userService := c.Container.GetService("admin_user").(services.InterfaceAdminUserService)
	user, err := userService.UpdateUser(uint(id), updates)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrUserNotFound, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"is_admin": user.IsAdmin,
	})
}

// 4. DeleteUser 删除账号
// @Summary      删除账号
// @Description  删除指定账号，系统必须至少保留一个账号
// @Tags         User
// @Produce      json
// @Param        id path int true "账号ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/users/{id} [delete]
// @Security     BearerAuth
func (c *UserController) DeleteUser() {
	idStr := c.Ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "Invalid user id")
		return
	}

	userService := c.Container.GetService("admin_user").(services.InterfaceAdminUserService)
	if err := userService.DeleteUser(uint(id)); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{"message": "User deleted"})
}
