package services

import (
	"errors"
	"fmt"

	"github.com/Akankshas1102/amazondvc-admin/internal/domain/models"
	"github.com/Akankshas1102/amazondvc-admin/internal/infrastructure/config"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InterfaceAdminUserService 管理员账号服务接口
type InterfaceAdminUserService interface {
	CheckPassword(password, hash string) bool
	GetUserByID(id uint) (*models.AdminUser, error)
	GetUserByUsername(username string) (*models.AdminUser, error)
	GetAllUsers() ([]models.AdminUser, error)
	CreateUser(user *models.AdminUser) error
	UpdateUser(id uint, updates map[string]interface{}) (*models.AdminUser, error)
	DeleteUser(id uint) error
	ChangePassword(id uint, currentPassword, newPassword string) error
	EnsureAdminExists(defaultPassword string) error
}

// AdminUserService 提供管理员账号相关的服务
type AdminUserService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewAdminUserService 创建一个新的管理员账号服务
func NewAdminUserService(db *gorm.DB, cfg *config.Config) InterfaceAdminUserService {
	return &AdminUserService{
		DB:     db,
		Config: cfg,
	}
}

// CheckPassword 验证密码是否匹配
func (s *AdminUserService) CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GetUserByID 根据ID获取账号
func (s *AdminUserService) GetUserByID(id uint) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername 根据用户名获取账号
func (s *AdminUserService) GetUserByUsername(username string) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := s.DB.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAllUsers 获取所有账号
func (s *AdminUserService) GetAllUsers() ([]models.AdminUser, error) {
	var users []models.AdminUser
	if err := s.DB.Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser 创建新账号
func (s *AdminUserService) CreateUser(user *models.AdminUser) error {
	// 验证用户名唯一性
	var count int64
	if err := s.DB.Model(&models.AdminUser{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("user already exists")
	}

	// 设置密码哈希
	hashedPassword, err := bcrypt.GenerateFromPassword(
		[]byte(user.Password),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}
	user.Password = string(hashedPassword)

	return s.DB.Create(user).Error
}

// UpdateUser 更新账号信息
func (s *AdminUserService) UpdateUser(id uint, updates map[string]interface{}) (*models.AdminUser, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	// 如果更新用户名，需要检查唯一性
	if username, ok := updates["username"].(string); ok && username != user.Username {
		var count int64
		if err := s.DB.Model(&models.AdminUser{}).Where("username = ? AND id != ?", username, user.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("user already exists")
		}
	}

	// 如果更新密码，需要进行哈希处理
	if password, ok := updates["password"].(string); ok {
		hashedPassword, err := bcrypt.GenerateFromPassword(
			[]byte(password),
			bcrypt.DefaultCost,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %v", err)
		}
		updates["password"] = string(hashedPassword)
	}

	if err := s.DB.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetUserByID(id)
}

// DeleteUser 删除账号
func (s *AdminUserService) DeleteUser(id uint) error {
	// 确保系统中至少保留一个账号
	var count int64
	if err := s.DB.Model(&models.AdminUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count <= 1 {
		return errors.New("cannot delete the last user")
	}

	result := s.DB.Delete(&models.AdminUser{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("user not found")
	}
	return nil
}

// ChangePassword 修改当前用户密码
func (s *AdminUserService) ChangePassword(id uint, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}

	// 校验当前密码
	if !s.CheckPassword(currentPassword, user.Password) {
		return errors.New("current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword(
		[]byte(newPassword),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	return s.DB.Model(user).Update("password", string(hashedPassword)).Error
}

// EnsureAdminExists 确保系统中存在默认admin账号
func (s *AdminUserService) EnsureAdminExists(defaultPassword string) error {
	var count int64
	if err := s.DB.Model(&models.AdminUser{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := &models.AdminUser{
		Username: "admin",
		Password: defaultPassword,
		IsAdmin:  true,
	}
	return s.CreateUser(admin)
}
