package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Akankshas1102/amazondvc-admin/internal/domain/models"
	"github.com/Akankshas1102/amazondvc-admin/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 内置默认查询，未被管理员覆盖时使用
const (
	DefaultPanelDevicesQuery = `
SELECT dvcBuilding_FRK, dvcCurrentState_TXT
FROM Device_TBL
WHERE dvcDeviceType_FRK = 138
`

	DefaultBuildingNameQuery = `
SELECT bldBuildingName_TXT
FROM Building_TBL
JOIN Device_TBL ON dvcBuilding_FRK = Building_PRK
WHERE dvcCurrentState_TXT = 'AreaArmingStates.4' AND dvcBuilding_FRK = :building_id
`

	DefaultProEventsQuery = `
SELECT
    p.pevReactive_FRK,
    p.ProEvent_PRK,
    p.pevAlias_TXT,
    b.bldBuildingName_TXT
FROM
    ProEvent_TBL AS p
LEFT JOIN
    Building_TBL AS b ON p.pevBuilding_FRK = b.Building_PRK
WHERE
    p.pevBuilding_FRK = :building_id
`

	DefaultBuildingsQuery = `
SELECT Building_PRK, bldBuildingName_TXT
FROM Building_TBL
`
)

// defaultQueries 查询名到默认SQL的映射
var defaultQueries = map[string]string{
	"panel_devices": DefaultPanelDevicesQuery,
	"building_name": DefaultBuildingNameQuery,
	"proevents":     DefaultProEventsQuery,
	"buildings":     DefaultBuildingsQuery,
}

// QueryMetadata 查询模板元数据 (不含SQL)
type QueryMetadata struct {
	QueryName   string     `json:"query_name"`
	Description string     `json:"description"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
	IsDefault   bool       `json:"is_default"`
}

// QueryDetail 查询模板详情 (含SQL)
type QueryDetail struct {
	QueryName   string     `json:"query_name"`
	QuerySQL    string     `json:"query_sql"`
	Description string     `json:"description"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// InterfaceQueryService 查询模板服务接口
type InterfaceQueryService interface {
	GetQuery(queryName string) string
	GetDefaultQuery(queryName string) string
	SetQuery(queryName, querySQL, description string) error
	DeleteQuery(queryName string) error
	GetAllQueries() ([]QueryMetadata, error)
	GetQueryWithSQL(queryName string) (*QueryDetail, error)
	ValidateQuerySyntax(query string) (bool, string)
}

// QueryService 提供命名查询模板的存取与校验
type QueryService struct {
	DB *gorm.DB
}

// NewQueryService 创建一个新的查询模板服务
func NewQueryService(db *gorm.DB) InterfaceQueryService {
	return &QueryService{DB: db}
}

// GetQuery 按名称取查询SQL，未覆盖时返回内置默认
func (s *QueryService) GetQuery(queryName string) string {
	var cfg models.QueryConfig
	if err := s.DB.Where("query_name = ?", queryName).First(&cfg).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("查询模板 '%s' 读取失败: %v", queryName, err)
		}
		return s.GetDefaultQuery(queryName)
	}
	return cfg.QuerySQL
}

// GetDefaultQuery 返回内置默认查询
func (s *QueryService) GetDefaultQuery(queryName string) string {
	return defaultQueries[queryName]
}

// SetQuery 保存或更新查询模板 (覆盖默认)
func (s *QueryService) SetQuery(queryName, querySQL, description string) error {
	if ok, msg := s.ValidateQuerySyntax(querySQL); !ok {
		return errors.New(msg)
	}

	cfg := models.QueryConfig{
		QueryName:   queryName,
		QuerySQL:    querySQL,
		Description: description,
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "query_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"query_sql", "description", "updated_at"}),
	}).Create(&cfg).Error
}

// DeleteQuery 删除查询模板 (回退到默认)
func (s *QueryService) DeleteQuery(queryName string) error {
	return s.DB.Where("query_name = ?", queryName).Delete(&models.QueryConfig{}).Error
}

// GetAllQueries 列出全部查询模板元数据，含未覆盖的默认项
func (s *QueryService) GetAllQueries() ([]QueryMetadata, error) {
	var configs []models.QueryConfig
	if err := s.DB.Order("query_name ASC").Find(&configs).Error; err != nil {
		return nil, err
	}

	overridden := make(map[string]bool, len(configs))
	result := make([]QueryMetadata, 0, len(configs)+len(defaultQueries))
	for i := range configs {
		cfg := &configs[i]
		overridden[cfg.QueryName] = true
		created := cfg.CreatedAt
		updated := cfg.UpdatedAt
		result = append(result, QueryMetadata{
			QueryName:   cfg.QueryName,
			Description: cfg.Description,
			CreatedAt:   &created,
			UpdatedAt:   &updated,
		})
	}

	// 补充未覆盖的默认查询，时间戳为空
	for name := range defaultQueries {
		if !overridden[name] {
			result = append(result, QueryMetadata{
				QueryName:   name,
				Description: fmt.Sprintf("Default %s query", name),
				IsDefault:   true,
			})
		}
	}
	return result, nil
}

// GetQueryWithSQL 取单个查询模板详情，未覆盖时返回默认SQL
func (s *QueryService) GetQueryWithSQL(queryName string) (*QueryDetail, error) {
	var cfg models.QueryConfig
	if err := s.DB.Where("query_name = ?", queryName).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &QueryDetail{
				QueryName:   queryName,
				QuerySQL:    s.GetDefaultQuery(queryName),
				Description: fmt.Sprintf("Default %s query", queryName),
			}, nil
		}
		return nil, err
	}
	created := cfg.CreatedAt
	updated := cfg.UpdatedAt
	return &QueryDetail{
		QueryName:   cfg.QueryName,
		QuerySQL:    cfg.QuerySQL,
		Description: cfg.Description,
		CreatedAt:   &created,
		UpdatedAt:   &updated,
	}, nil
}

// ValidateQuerySyntax 对查询做基础校验，防止明显的破坏性语句
func (s *QueryService) ValidateQuerySyntax(query string) (bool, string) {
	queryLower := strings.ToLower(strings.TrimSpace(query))

	// 必须是SELECT语句
	if !strings.HasPrefix(queryLower, "select") {
		return false, "Query must be a SELECT statement"
	}

	// 禁用关键字检查
	dangerousKeywords := []string{"drop", "delete", "truncate", "insert", "update", "alter", "create"}
	for _, keyword := range dangerousKeywords {
		if strings.Contains(queryLower, keyword) {
			return false, fmt.Sprintf("Query contains forbidden keyword: %s", keyword)
		}
	}

	// 括号配对检查
	if strings.Count(query, "(") != strings.Count(query, ")") {
		return false, "Unbalanced parentheses in query"
	}

	// 常见注入片段检查
	suspiciousPatterns := []string{"--", ";--", "/*", "*/", "xp_", "sp_"}
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(queryLower, pattern) {
			return false, fmt.Sprintf("Query contains suspicious pattern: %s", pattern)
		}
	}

	return true, "Query validation passed"
}
