package models

// 面板数据库中的布防状态取值
const (
	// PanelDisarmedValue 面板AreaArmingStates字段表示撤防的取值
	PanelDisarmedValue = "AreaArmingStates.2"

	// ProEventStateArmed ProEvent响应状态: 0=布防(响应)
	ProEventStateArmed = 0
	// ProEventStateDisarmed ProEvent响应状态: 1=撤防(不响应)
	ProEventStateDisarmed = 1

	// PanelDeviceTypeFRK 面板设备类型编码 (dvcDeviceType_FRK)
	PanelDeviceTypeFRK = 138
)

// ArmState 布防状态字符串
const (
	ArmStateArmed    = "ARMED"
	ArmStateDisarmed = "DISARMED"
)

// Building 面板数据库中的楼宇行 (只读视图)
type Building struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
}

// ProEvent 面板数据库中的ProEvent行 (只读视图)
type ProEvent struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	State        int    `json:"state"`
	BuildingID   int    `json:"building_id"`
	BuildingName string `json:"building_name,omitempty"`
	IsIgnored    bool   `json:"is_ignored"`
}

// PanelState 单个楼宇面板的当前布防状态
type PanelState struct {
	BuildingID   int    `json:"building_id"`
	BuildingName string `json:"building_name"`
	ArmState     string `json:"arm_state"`
}
