package routes

import (
	"time"

	"github.com/Akankshas1102/amazondvc-admin/internal/app/controllers"
	"github.com/Akankshas1102/amazondvc-admin/internal/app/middleware"
	"github.com/Akankshas1102/amazondvc-admin/internal/domain/services/container"
	"github.com/Akankshas1102/amazondvc-admin/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(db *gorm.DB, cfg *config.Config) (*gin.Engine, *container.ServiceContainer) {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// 创建服务容器
	serviceContainer := container.NewServiceContainer(db, cfg)
	// 初始化中间件
	middleware.InitAuthMiddleware(cfg, db)

	// 注册路由
	registerRoutes(r, serviceContainer)
	return r, serviceContainer
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")
	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册需要认证的路由
	registerAuthenticatedRoutes(api, container)
	// 注册管理员路由
	registerAdminRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加IP限流中间件 - 每秒允许10个请求，最多突发20个请求
	api.Use(middleware.IPRateLimiter(10, 20))

	// 健康检查路由
	api.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// 登录路由
	api.POST("/admin/login", controllers.HandleAuthFunc(container, "login"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	auth := api.Group("/")
	auth.Use(middleware.Authentication())

	// 添加通用限流中间件 - 每秒30个请求，最多突发50个请求
	auth.Use(middleware.IPRateLimiter(30, 50))

	// 修改密码
	auth.POST("/admin/change-password", controllers.HandleAuthFunc(container, "changePassword"))

	// 楼宇路由
	buildingGroup := auth.Group("/buildings")
	buildingGroup.GET("", middleware.Cache(30*time.Second), controllers.HandleBuildingFunc(container, "getBuildings"))
	buildingGroup.POST("/:id/time", controllers.HandleBuildingFunc(container, "setBuildingTime"))
	buildingGroup.POST("/:id/reevaluate", controllers.HandleBuildingFunc(container, "reevaluateBuilding"))

	// ProEvent路由
	auth.GET("/devices", middleware.Cache(10*time.Second), controllers.HandleProEventFunc(container, "getDevices"))
	auth.POST("/proevents/ignore/bulk", controllers.HandleProEventFunc(container, "setIgnoreBulk"))
}

// registerAdminRoutes 注册仅管理员可用的路由
func registerAdminRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	admin := api.Group("/admin")
	admin.Use(middleware.Authentication())
	admin.Use(middleware.AuthenticateAdmin())
	admin.Use(middleware.IPRateLimiter(30, 50))

	// 账号管理路由
	usersGroup := admin.Group("/users")
	usersGroup.GET("", controllers.HandleUserFunc(container, "getUsers"))
	usersGroup.POST("", controllers.HandleUserFunc(container, "createUser"))
	usersGroup.PUT("/:id", controllers.HandleUserFunc(container, "updateUser"))
	usersGroup.DELETE("/:id", controllers.HandleUserFunc(container, "deleteUser"))

	// 查询模板路由
	queriesGroup := admin.Group("/queries")
	queriesGroup.GET("", controllers.HandleQueryFunc(container, "getQueries"))
	queriesGroup.POST("", controllers.HandleQueryFunc(container, "saveQuery"))
	queriesGroup.GET("/:name", controllers.HandleQueryFunc(container, "getQuery"))
	queriesGroup.DELETE("/:name", controllers.HandleQueryFunc(container, "deleteQuery"))
	queriesGroup.GET("/:name/default", controllers.HandleQueryFunc(container, "getDefaultQuery"))
	queriesGroup.POST("/:name/test", controllers.HandleQueryFunc(container, "testQuery"))
}
