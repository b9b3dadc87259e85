// @title           AmazonDVC Admin API
// @version         1.0
// @description     Building alarm monitoring console backend with configurable panel queries

// @host      localhost:7070
// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer: ` prefix
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/Akankshas1102/amazondvc-admin/internal/app/routes"
	"github.com/Akankshas1102/amazondvc-admin/internal/domain/models"
	"github.com/Akankshas1102/amazondvc-admin/internal/domain/services"
	"github.com/Akankshas1102/amazondvc-admin/internal/infrastructure/config"
	"github.com/Akankshas1102/amazondvc-admin/internal/infrastructure/database"
	Logger "github.com/Akankshas1102/amazondvc-admin/pkg/logger"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 设置最大处理器数量，提高并发性能
	runtime.GOMAXPROCS(runtime.NumCPU())

	// 初始化日志配置
	if err := Logger.SetupLogger(); err != nil {
		fmt.Printf("初始化日志配置失败: %v\n", err)
		os.Exit(1)
	}

	// 加载.env文件
	if err := godotenv.Load(); err != nil {
		Logger.Warning("无法加载.env文件: %v", err)
		// 即使加载失败也继续执行，可能环境变量已经通过其他方式设置
	} else {
		Logger.Info("成功加载.env文件")
	}

	// 获取配置
	cfg := config.GetConfig()

	// 创建优化的数据库连接池
	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		log.Fatalf("无法创建数据库连接池: %v", err)
	}
	db := pool.GetDB()

	// 根据配置执行不同的数据库迁移
	if cfg.DBMigrationMode == "drop" {
		log.Println("警告: 在drop模式下运行，将删除并重建所有配置表")
		if err := dropAndRecreateTables(db); err != nil {
			log.Fatalf("删除并重建表失败: %v", err)
		}
	} else {
		// 默认AutoMigrate，只会添加新列和新表，不会删除或修改列
		if err := autoMigrate(db); err != nil {
			log.Fatalf("自动迁移失败: %v", err)
		}
	}

	// 确保系统中有管理员账户
	ensureAdminExists(db, cfg)

	// 初始化路由和服务容器
	r, serviceContainer := routes.SetupRouter(db, cfg)

	// 启动后台调度器
	scheduler := serviceContainer.GetService("scheduler").(services.InterfaceSchedulerService)
	scheduler.Start()
	defer scheduler.Stop()

	port := cfg.ServerPort

	// 打印系统信息
	printSystemInfo(pool)

	// 启动服务器 - 监听所有接口(0.0.0.0)而不是只监听localhost
	Logger.Info("服务器启动在: http://0.0.0.0:%s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		Logger.Error("启动服务器失败: %v", err)
		os.Exit(1)
	}
}

// autoMigrate 自动迁移本地配置表（只添加新列和新表）
// 面板表 Building_TBL / Device_TBL / ProEvent_TBL 由ProServer维护，不参与迁移
func autoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.AdminUser{},
		&models.QueryConfig{},
		&models.BuildingSchedule{},
		&models.IgnoredProEvent{},
	)

	if err != nil {
		return err
	}

	fmt.Println("Database migration completed")
	return nil
}

// dropAndRecreateTables 删除并重建本地配置表
func dropAndRecreateTables(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB connection: %w", err)
	}

	// 禁用外键约束检查
	if _, err = sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		log.Printf("禁用外键约束检查失败: %v", err)
	}
	defer sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1")

	// 只删除本地配置表，绝不触碰面板表
	tables := []string{
		"admin_users", "query_configs", "building_schedules", "ignored_proevents",
	}

	for _, table := range tables {
		log.Printf("删除表: %s", table)
		if _, err := sqlDB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			log.Printf("删除表失败: %v", err)
		}
	}

	return autoMigrate(db)
}

// ensureAdminExists 确保系统中有管理员账户
func ensureAdminExists(db *gorm.DB, cfg *config.Config) {
	userService := services.NewAdminUserService(db, cfg)
	if err := userService.EnsureAdminExists(cfg.DefaultAdminPassword); err != nil {
		log.Fatalf("创建默认管理员失败: %v", err)
	}
}

// printSystemInfo 打印系统信息
func printSystemInfo(pool *database.ConnectionPool) {
	stats, err := pool.Stats()
	if err == nil {
		log.Printf("数据库连接池状态: %+v", stats)
	}

	log.Printf("系统CPU核心数: %d", runtime.NumCPU())
	log.Printf("当前Go协程数: %d", runtime.NumGoroutine())
}
