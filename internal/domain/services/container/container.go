package container

import (
	"sync"

	"github.com/Akankshas1102/amazondvc-admin/internal/domain/services"
	"github.com/Akankshas1102/amazondvc-admin/internal/infrastructure/config"
	"github.com/Akankshas1102/amazondvc-admin/pkg/logger"

	"gorm.io/gorm"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config

	// 基础服务
	jwtService services.InterfaceJWTService

	// 数据存储服务
	redisService services.InterfaceRedisService

	// 报警通知服务
	alertService services.InterfaceAlertService

	// 业务服务
	adminUserService services.InterfaceAdminUserService
	queryService     services.InterfaceQueryService
	proServerService services.InterfaceProServerService
	proEventService  services.InterfaceProEventService
	schedulerService services.InterfaceSchedulerService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(db *gorm.DB, cfg *config.Config) *ServiceContainer {
	if db == nil {
		panic("数据库连接为空")
	}

	if cfg == nil {
		panic("配置为空")
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 初始化基础服务
	c.jwtService = services.NewJWTService(c.config, c.db)

	// 初始化Redis服务
	c.redisService = services.NewRedisService(c.config)

	// 初始化报警通知服务
	c.alertService = services.NewAlertService(c.config)
	if err := c.alertService.Connect(); err != nil {
		logger.Warning("MQTT服务连接失败: %v", err)
	}

	// 初始化业务服务
	c.adminUserService = services.NewAdminUserService(c.db, c.config)
	c.queryService = services.NewQueryService(c.db)
	c.proServerService = services.NewProServerService(c.db, c.queryService)
	c.proEventService = services.NewProEventService(
		c.db, c.config, c.proServerService, c.redisService, c.alertService)
	c.schedulerService = services.NewSchedulerService(c.proEventService)
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "redis":
		return c.redisService
	case "alert":
		return c.alertService
	case "admin_user":
		return c.adminUserService
	case "query":
		return c.queryService
	case "proserver":
		return c.proServerService
	case "proevent":
		return c.proEventService
	case "scheduler":
		return c.schedulerService
	default:
		return nil
	}
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}
