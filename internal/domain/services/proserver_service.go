package services

import (
	"strings"

	"github.com/Akankshas1102/amazondvc-admin/internal/domain/models"
	"github.com/Akankshas1102/amazondvc-admin/pkg/logger"

	"gorm.io/gorm"
)

// InterfaceProServerService ProServer面板数据库访问接口
type InterfaceProServerService interface {
	GetDistinctBuildings() ([]models.Building, error)
	GetBuildingName(buildingID int) (string, error)
	GetProEventsForBuilding(buildingID int) ([]models.ProEvent, error)
	SetProEventReactiveStateBulk(targetStates []TargetState) error
	GetAllLiveBuildingArmStates() (map[int]bool, error)
}

// TargetState 单条批量更新目标: ProEvent主键与目标响应状态
type TargetState struct {
	ID    int `json:"id"`
	State int `json:"state"`
}

// ProServerService 通过可配置查询模板访问面板数据库
type ProServerService struct {
	DB           *gorm.DB
	QueryService InterfaceQueryService
}

// NewProServerService 创建一个新的ProServer数据库服务
func NewProServerService(db *gorm.DB, queryService InterfaceQueryService) InterfaceProServerService {
	return &ProServerService{
		DB:           db,
		QueryService: queryService,
	}
}

// bindNamed 把模板中的 :building_id 占位符转换为GORM命名参数
func bindNamed(querySQL string) string {
	return strings.ReplaceAll(querySQL, ":building_id", "@building_id")
}

// GetDistinctBuildings 取全部楼宇列表 (buildings模板)
func (s *ProServerService) GetDistinctBuildings() ([]models.Building, error) {
	querySQL := s.QueryService.GetQuery("buildings")

	rows, err := s.DB.Raw(querySQL).Rows()
	if err != nil {
		logger.Error("楼宇列表查询失败: %v", err)
		return nil, err
	}
	defer rows.Close()

	var buildings []models.Building
	for rows.Next() {
		var b models.Building
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		buildings = append(buildings, b)
	}
	return buildings, rows.Err()
}

// GetBuildingName 取单个楼宇名称 (building_name模板)
func (s *ProServerService) GetBuildingName(buildingID int) (string, error) {
	querySQL := bindNamed(s.QueryService.GetQuery("building_name"))

	var name string
	row := s.DB.Raw(querySQL, map[string]interface{}{"building_id": buildingID}).Row()
	if err := row.Scan(&name); err != nil {
		return "", err
	}
	return name, nil
}

// GetProEventsForBuilding 取指定楼宇的全部ProEvent (proevents模板)
func (s *ProServerService) GetProEventsForBuilding(buildingID int) ([]models.ProEvent, error) {
	querySQL := bindNamed(s.QueryService.GetQuery("proevents"))

	rows, err := s.DB.Raw(querySQL, map[string]interface{}{"building_id": buildingID}).Rows()
	if err != nil {
		logger.Error("楼宇 %d ProEvent查询失败: %v", buildingID, err)
		return nil, err
	}
	defer rows.Close()

	var proevents []models.ProEvent
	for rows.Next() {
		var (
			state        int
			id           int
			name         string
			buildingName *string
		)
		if err := rows.Scan(&state, &id, &name, &buildingName); err != nil {
			return nil, err
		}
		p := models.ProEvent{
			ID:         id,
			Name:       name,
			State:      state,
			BuildingID: buildingID,
		}
		if buildingName != nil {
			p.BuildingName = *buildingName
		}
		proevents = append(proevents, p)
	}
	return proevents, rows.Err()
}

// SetProEventReactiveStateBulk 批量更新ProEvent响应状态
// 更新语句固定，不走查询模板
func (s *ProServerService) SetProEventReactiveStateBulk(targetStates []TargetState) error {
	if len(targetStates) == 0 {
		logger.Info("批量更新目标为空，跳过")
		return nil
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, item := range targetStates {
			if err := tx.Exec(
				"UPDATE ProEvent_TBL SET pevReactive_FRK = ? WHERE ProEvent_PRK = ?",
				item.State, item.ID,
			).Error; err != nil {
				return err
			}
		}
		logger.Info("已批量更新 %d 条ProEvent状态", len(targetStates))
		return nil
	})
}

// GetAllLiveBuildingArmStates 取全部楼宇面板的实时布防状态
// 每个楼宇有且仅有一个面板设备 (dvcDeviceType_FRK = 138)：
// dvcCurrentState_TXT 含 AreaArmingStates.2 视为撤防，其余一律视为布防
func (s *ProServerService) GetAllLiveBuildingArmStates() (map[int]bool, error) {
	querySQL := s.QueryService.GetQuery("panel_devices")

	rows, err := s.DB.Raw(querySQL).Rows()
	if err != nil {
		logger.Error("面板状态查询失败: %v", err)
		return nil, err
	}
	defer rows.Close()

	result := make(map[int]bool)
	for rows.Next() {
		var (
			buildingID *int
			stateTxt   *string
		)
		if err := rows.Scan(&buildingID, &stateTxt); err != nil {
			return nil, err
		}
		if buildingID == nil || *buildingID == 0 {
			continue
		}

		state := ""
		if stateTxt != nil {
			state = strings.TrimSpace(*stateTxt)
		}

		result[*buildingID] = !strings.Contains(state, models.PanelDisarmedValue)
	}
	return result, rows.Err()
}
