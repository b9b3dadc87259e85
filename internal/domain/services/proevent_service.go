package services

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/Akankshas1102/amazondvc-admin/internal/domain/models"
	"github.com/Akankshas1102/amazondvc-admin/internal/infrastructure/config"
	"github.com/Akankshas1102/amazondvc-admin/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// startTimePattern HH:MM 24小时制
var startTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// IgnoreUpdate 单条忽略标记更新
type IgnoreUpdate struct {
	ItemID     int  `json:"item_id"`
	BuildingID int  `json:"building_id"`
	DeviceID   int  `json:"device_id"`
	Ignore     bool `json:"ignore"`
}

// InterfaceProEventService ProEvent业务服务接口
type InterfaceProEventService interface {
	GetBuildings() ([]models.Building, error)
	GetProEvents(buildingID int, search string, limit int) ([]models.ProEvent, error)
	SetBuildingTime(buildingID int, startTime string) error
	GetBuildingTime(buildingID int) (string, error)
	SetIgnoredProEventsBulk(updates []IgnoreUpdate) error
	ReevaluateBuildingState(buildingID int) (int, error)
	ApplyProEventStatesForBuilding(buildingID int, isPanelArmed bool) (int, error)
	ManageProEventsOnPanelStateChange() error
	CheckAndManageScheduledStates() error
}

// ProEventService ProEvent状态管理服务
type ProEventService struct {
	DB           *gorm.DB
	Config       *config.Config
	ProServer    InterfaceProServerService
	RedisService InterfaceRedisService
	AlertService InterfaceAlertService
}

// NewProEventService 创建一个新的ProEvent业务服务
func NewProEventService(
	db *gorm.DB,
	cfg *config.Config,
	proServer InterfaceProServerService,
	redisService InterfaceRedisService,
	alertService InterfaceAlertService,
) InterfaceProEventService {
	return &ProEventService{
		DB:           db,
		Config:       cfg,
		ProServer:    proServer,
		RedisService: redisService,
		AlertService: alertService,
	}
}

// GetBuildings 取楼宇列表，并关联本地排班时间
func (s *ProEventService) GetBuildings() ([]models.Building, error) {
	buildings, err := s.ProServer.GetDistinctBuildings()
	if err != nil {
		return nil, err
	}
	if len(buildings) == 0 {
		return []models.Building{}, nil
	}

	var schedules []models.BuildingSchedule
	if err := s.DB.Find(&schedules).Error; err != nil {
		return nil, err
	}
	timeByBuilding := make(map[int]string, len(schedules))
	for _, sc := range schedules {
		timeByBuilding[sc.BuildingID] = sc.StartTime
	}

	for i := range buildings {
		buildings[i].StartTime = timeByBuilding[buildings[i].ID]
	}
	return buildings, nil
}

// GetProEvents 取楼宇的ProEvent列表，支持名称过滤与数量上限
// 过滤在模板查询之后做，模板本身不感知search/limit
func (s *ProEventService) GetProEvents(buildingID int, search string, limit int) ([]models.ProEvent, error) {
	proevents, err := s.ProServer.GetProEventsForBuilding(buildingID)
	if err != nil {
		return nil, err
	}
	if len(proevents) == 0 {
		return []models.ProEvent{}, nil
	}

	// 关联本地忽略标记
	ignored, err := s.getUserIgnoredIDs(buildingID)
	if err != nil {
		return nil, err
	}

	searchLower := strings.ToLower(strings.TrimSpace(search))
	result := make([]models.ProEvent, 0, len(proevents))
	for _, p := range proevents {
		if searchLower != "" && !strings.Contains(strings.ToLower(p.Name), searchLower) {
			continue
		}
		p.IsIgnored = ignored[p.ID]
		result = append(result, p)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// SetBuildingTime 设置楼宇排班时间 (HH:MM)
func (s *ProEventService) SetBuildingTime(buildingID int, startTime string) error {
	if !startTimePattern.MatchString(startTime) {
		return errors.New("start_time must be in HH:MM format")
	}

	schedule := models.BuildingSchedule{
		BuildingID: buildingID,
		StartTime:  startTime,
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "building_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"start_time", "updated_at"}),
	}).Create(&schedule).Error
}

// GetBuildingTime 取楼宇排班时间，未设置时返回空串
func (s *ProEventService) GetBuildingTime(buildingID int) (string, error) {
	var schedule models.BuildingSchedule
	if err := s.DB.Where("building_id = ?", buildingID).First(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return schedule.StartTime, nil
}

// SetIgnoredProEventsBulk 批量保存忽略标记
func (s *ProEventService) SetIgnoredProEventsBulk(updates []IgnoreUpdate) error {
	if len(updates) == 0 {
		return errors.New("no ignore updates provided")
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			if u.Ignore {
				row := models.IgnoredProEvent{
					ProEventID:     u.ItemID,
					BuildingID:     u.BuildingID,
					IgnoreOnDisarm: true,
				}
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "proevent_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"building_id", "ignore_on_disarm", "updated_at"}),
				}).Create(&row).Error; err != nil {
					return err
				}
			} else {
				if err := tx.Unscoped().
					Where("proevent_id = ?", u.ItemID).
					Delete(&models.IgnoredProEvent{}).Error; err != nil {
					return err
				}
			}
		}
		logger.Info("已保存 %d 条忽略标记更新", len(updates))
		return nil
	})
}

// ReevaluateBuildingState 按当前面板状态立即重算并下发ProEvent状态
// 返回更新的ProEvent数量
func (s *ProEventService) ReevaluateBuildingState(buildingID int) (int, error) {
	liveStates, err := s.ProServer.GetAllLiveBuildingArmStates()
	if err != nil {
		return 0, err
	}

	isPanelArmed, ok := liveStates[buildingID]
	if !ok {
		logger.Warning("[楼宇 %d] 重算时无法确定面板状态", buildingID)
		return 0, errors.New("could not determine panel state")
	}

	logger.Info("[楼宇 %d] 手动触发重算，面板状态: %s", buildingID, armStateString(isPanelArmed))
	return s.ApplyProEventStatesForBuilding(buildingID, isPanelArmed)
}

// ApplyProEventStatesForBuilding 按面板状态下发ProEvent目标状态
// 手动置为不响应的ProEvent始终保持不响应
func (s *ProEventService) ApplyProEventStatesForBuilding(buildingID int, isPanelArmed bool) (int, error) {
	allProEvents, err := s.ProServer.GetProEventsForBuilding(buildingID)
	if err != nil {
		return 0, err
	}
	if len(allProEvents) == 0 {
		logger.Warning("[楼宇 %d] 没有找到ProEvent", buildingID)
		return 0, nil
	}

	userIgnored, err := s.getUserIgnoredIDs(buildingID)
	if err != nil {
		return 0, err
	}

	targetStates := ComputeTargetStates(allProEvents, userIgnored, isPanelArmed)
	if err := s.ProServer.SetProEventReactiveStateBulk(targetStates); err != nil {
		return 0, err
	}

	logger.Info("[楼宇 %d] 面板%s，已下发 %d 条目标状态",
		buildingID, armStateString(isPanelArmed), len(targetStates))
	return len(targetStates), nil
}

// ComputeTargetStates 计算全部ProEvent的目标响应状态 (纯函数)
//
// 面板布防: 手动不响应的保持1，其余全部置0
// 面板撤防: 用户忽略的与手动不响应的置1，其余保持0
// 手动不响应 = 当前状态为1且不在用户忽略列表中
func ComputeTargetStates(proevents []models.ProEvent, userIgnored map[int]bool, isPanelArmed bool) []TargetState {
	manuallyNonReactive := make(map[int]bool)
	for _, p := range proevents {
		if p.State == models.ProEventStateDisarmed && !userIgnored[p.ID] {
			manuallyNonReactive[p.ID] = true
		}
	}

	targetStates := make([]TargetState, 0, len(proevents))
	for _, p := range proevents {
		state := models.ProEventStateArmed
		if isPanelArmed {
			if manuallyNonReactive[p.ID] {
				state = models.ProEventStateDisarmed
			}
		} else {
			if userIgnored[p.ID] || manuallyNonReactive[p.ID] {
				state = models.ProEventStateDisarmed
			}
		}
		targetStates = append(targetStates, TargetState{ID: p.ID, State: state})
	}
	return targetStates
}

// ManageProEventsOnPanelStateChange 监控面板状态变化并下发ProEvent状态 (调度阶段2)
func (s *ProEventService) ManageProEventsOnPanelStateChange() error {
	liveStates, err := s.ProServer.GetAllLiveBuildingArmStates()
	if err != nil {
		return err
	}

	cachedStates, err := s.RedisService.GetPanelStateCache()
	if err != nil {
		logger.Error("读取面板状态缓存失败: %v", err)
		cachedStates = make(map[int]bool)
	}

	newCachedStates := make(map[int]bool, len(liveStates))
	for id, armed := range cachedStates {
		newCachedStates[id] = armed
	}

	for buildingID, isPanelArmed := range liveStates {
		prevState, seen := cachedStates[buildingID]

		// 首次轮询只记录状态
		if !seen {
			newCachedStates[buildingID] = isPanelArmed
			logger.Info("[楼宇 %d] 初始面板状态已缓存: %s", buildingID, armStateString(isPanelArmed))
			continue
		}

		// 状态未变化
		if prevState == isPanelArmed {
			continue
		}

		logger.Info("[楼宇 %d] 面板状态变化: %s -> %s",
			buildingID, armStateString(prevState), armStateString(isPanelArmed))

		if _, err := s.ApplyProEventStatesForBuilding(buildingID, isPanelArmed); err != nil {
			logger.Error("[楼宇 %d] 下发ProEvent状态失败: %v", buildingID, err)
			continue
		}
		newCachedStates[buildingID] = isPanelArmed
	}

	if err := s.RedisService.SetPanelStateCache(newCachedStates); err != nil {
		logger.Error("写入面板状态缓存失败: %v", err)
	}
	return nil
}

// CheckAndManageScheduledStates 排班时间检查 (调度阶段1)
// 当前时间等于楼宇start_time且面板撤防时，发送AXE报警并广播MQTT
func (s *ProEventService) CheckAndManageScheduledStates() error {
	loc, err := time.LoadLocation(s.Config.ScheduleTimezone)
	if err != nil {
		logger.Error("加载时区 %s 失败: %v", s.Config.ScheduleTimezone, err)
		loc = time.UTC
	}
	currentTime := time.Now().In(loc).Format("15:04")

	liveStates, err := s.ProServer.GetAllLiveBuildingArmStates()
	if err != nil {
		return err
	}

	for buildingID, isPanelArmed := range liveStates {
		startTime, err := s.GetBuildingTime(buildingID)
		if err != nil || startTime == "" {
			continue
		}
		if len(startTime) > 5 {
			startTime = startTime[:5]
		}

		if currentTime != startTime {
			continue
		}

		if isPanelArmed {
			logger.Info("[楼宇 %d] 到达排班时间 %s，面板已布防，不发报警", buildingID, startTime)
			continue
		}

		logger.Warning("[楼宇 %d] 到达排班时间 %s，面板仍为撤防，发送AXE报警", buildingID, startTime)
		name, err := s.ProServer.GetBuildingName(buildingID)
		if err != nil || name == "" {
			// building_name模板带状态过滤，取不到名字时回退到楼宇主键查询
			var fallback string
			row := s.DB.Raw("SELECT bldBuildingName_TXT FROM Building_TBL WHERE Building_PRK = ?", buildingID).Row()
			if scanErr := row.Scan(&fallback); scanErr != nil {
				logger.Warning("[楼宇 %d] 找不到楼宇名称，跳过报警", buildingID)
				continue
			}
			name = fallback
		}

		s.AlertService.SendDisarmedAxeMessage(name)
		if err := s.AlertService.PublishAlert(buildingID, map[string]interface{}{
			"building_id":   buildingID,
			"building_name": name,
			"state":         models.ArmStateDisarmed,
			"start_time":    startTime,
			"occurred_at":   time.Now().In(loc).Format(time.RFC3339),
		}); err != nil {
			logger.Error("[楼宇 %d] MQTT报警广播失败: %v", buildingID, err)
		}
	}
	return nil
}

// getUserIgnoredIDs 取楼宇下用户忽略的ProEvent主键集合
func (s *ProEventService) getUserIgnoredIDs(buildingID int) (map[int]bool, error) {
	var ignored []models.IgnoredProEvent
	if err := s.DB.Where("building_id = ? AND ignore_on_disarm = ?", buildingID, true).
		Find(&ignored).Error; err != nil {
		return nil, err
	}
	result := make(map[int]bool, len(ignored))
	for _, row := range ignored {
		result[row.ProEventID] = true
	}
	return result, nil
}

func armStateString(armed bool) string {
	if armed {
		return models.ArmStateArmed
	}
	return models.ArmStateDisarmed
}
