package models

// AdminUser 控制台管理员账号
type AdminUser struct {
	BaseModel
	Username string `gorm:"size:50;not null;unique" json:"username"`
	Password string `gorm:"size:255;not null" json:"-"`
	IsAdmin  bool   `gorm:"default:false" json:"is_admin"`
}

// TableName 指定表名
func (AdminUser) TableName() string {
	return "admin_users"
}
