package models

// BuildingSchedule 楼宇布防排班时间 (HH:MM，24小时制)
type BuildingSchedule struct {
	BaseModel
	BuildingID int    `gorm:"not null;unique" json:"building_id"`
	StartTime  string `gorm:"size:5;not null" json:"start_time"`
}

// TableName 指定表名
func (BuildingSchedule) TableName() string {
	return "building_schedules"
}
