package models

// QueryConfig 命名查询模板，覆盖内置默认SQL
type QueryConfig struct {
	BaseModel
	QueryName   string `gorm:"size:100;not null;unique" json:"query_name"`
	QuerySQL    string `gorm:"type:text;not null" json:"query_sql"`
	Description string `gorm:"size:255" json:"description"`
}

// TableName 指定表名
func (QueryConfig) TableName() string {
	return "query_configs"
}
