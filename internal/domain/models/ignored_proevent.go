package models

// IgnoredProEvent 用户标记为布防时忽略的ProEvent
type IgnoredProEvent struct {
	BaseModel
	ProEventID     int  `gorm:"not null;unique" json:"proevent_id"`
	BuildingID     int  `gorm:"not null;index" json:"building_id"`
	IgnoreOnDisarm bool `gorm:"default:true" json:"ignore_on_disarm"`
}

// TableName 指定表名
func (IgnoredProEvent) TableName() string {
	return "ignored_proevents"
}
