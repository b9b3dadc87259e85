package controllers

import (
	"github.com/Akankshas1102/amazondvc-admin/internal/domain/services"
	"github.com/Akankshas1102/amazondvc-admin/internal/domain/services/container"
	"github.com/Akankshas1102/amazondvc-admin/internal/error/code"
	"github.com/Akankshas1102/amazondvc-admin/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceQueryController 定义查询模板控制器接口
type InterfaceQueryController interface {
	GetQueries()
	GetQuery()
	GetDefaultQuery()
	TestQuery()
	SaveQuery()
	DeleteQuery()
}

// QueryController 查询模板控制器
type QueryController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewQueryController 创建一个新的查询模板控制器
func NewQueryController(ctx *gin.Context, container *container.ServiceContainer) *QueryController {
	return &QueryController{
		Ctx:       ctx,
		Container: container,
	}
}

// SaveQueryRequest 保存查询模板请求
type SaveQueryRequest struct {
	QueryName   string `json:"query_name" binding:"required" example:"proevents"`
	QuerySQL    string `json:"query_sql" binding:"required"`
	Description string `json:"description"`
}

// HandleQueryFunc 返回一个处理查询模板请求的Gin处理函数
func HandleQueryFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewQueryController(ctx, container)

		switch method {
		case "getQueries":
			controller.GetQueries()
		case "getQuery":
			controller.GetQuery()
		case "getDefaultQuery":
			controller.GetDefaultQuery()
		case "testQuery":
			controller.TestQuery()
		case "saveQuery":
			controller.SaveQuery()
		case "deleteQuery":
			controller.DeleteQuery()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// queryService 取查询模板服务
func (c *QueryController) queryService() services.InterfaceQueryService {
	return c.Container.GetService("query").(services.InterfaceQueryService)
}

// 1. GetQueries 获取查询模板列表
// @Summary      获取查询模板列表
// @Description  返回全部模板的元数据，未覆盖的默认模板时间戳为空
// @Tags         Query
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/queries [get]
// @Security     BearerAuth
func (c *QueryController) GetQueries() {
	queries, err := c.queryService().GetAllQueries()
	if err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	response.Success(c.Ctx, queries)
}

// 2. GetQuery 获取查询模板详情
// @Summary      获取查询模板详情
// @Description  返回模板当前生效的SQL，未覆盖时返回默认SQL
// @Tags         Query
// @Produce      json
// @Param        name path string true "模板名"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin/queries/{name} [get]
// @Security     BearerAuth
func (c *QueryController) GetQuery() {
	name := c.Ctx.Param("name")

	svc := c.queryService()
	if svc.GetDefaultQuery(name) == "" {
		// 未知模板名且无覆盖记录时返回404
		detail, err := svc.GetQueryWithSQL(name)
		if err != nil || detail.QuerySQL == "" {
			response.Fail(c.Ctx, code.ErrQueryNotFound, nil)
			return
		}
		response.Success(c.Ctx, detail)
		return
	}

	detail, err := svc.GetQueryWithSQL(name)
	if err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	response.Success(c.Ctx, detail)
}

// 3. GetDefaultQuery 获取内置默认SQL
// @Summary      获取默认查询
// @Tags         Query
// @Produce      json
// @Param        name path string true "模板名"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin/queries/{name}/default [get]
// @Security     BearerAuth
func (c *QueryController) GetDefaultQuery() {
	name := c.Ctx.Param("name")

	defaultSQL := c.queryService().GetDefaultQuery(name)
	if defaultSQL == "" {
		response.Fail(c.Ctx, code.ErrQueryNotFound, nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"query_name": name,
		"query_sql":  defaultSQL,
	})
}

// 4. TestQuery 校验当前生效的SQL
// @Summary      校验查询模板
// @Description  对模板当前生效的SQL执行语法校验
// @Tags         Query
// @Produce      json
// @Param        name path string true "模板名"
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/queries/{name}/test [post]
// @Security     BearerAuth
func (c *QueryController) TestQuery() {
	name := c.Ctx.Param("name")

	svc := c.queryService()
	querySQL := svc.GetQuery(name)
	if querySQL == "" {
		response.Fail(c.Ctx, code.ErrQueryNotFound, nil)
		return
	}

	valid, message := svc.ValidateQuerySyntax(querySQL)
	response.Success(c.Ctx, gin.H{
		"query_name": name,
		"valid":      valid,
		"message":    message,
		"sql":        querySQL,
	})
}

// 5. SaveQuery 保存查询模板
// @Summary      保存查询模板
// @Description  校验后保存或更新模板，覆盖内置默认
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request body SaveQueryRequest true "模板内容"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Router       /admin/queries [post]
// @Security     BearerAuth
func (c *QueryController) SaveQuery() {
	var req SaveQueryRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "Invalid request body: "+err.Error())
		return
	}

	if err := c.queryService().SetQuery(req.QueryName, req.QuerySQL, req.Description); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrQueryInvalid, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{"query_name": req.QueryName})
}

// 6. DeleteQuery 删除查询模板
// @Summary      删除查询模板
// @Description  移除管理员覆盖，模板回退到内置默认
// @Tags         Query
// @Produce      json
// @Param        name path string true "模板名"
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/queries/{name} [delete]
// @Security     BearerAuth
func (c *QueryController) DeleteQuery() {
	name := c.Ctx.Param("name")

	if err := c.queryService().DeleteQuery(name); err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Success(c.Ctx, gin.H{"query_name": name, "message": "Query deleted, default will be used"})
}
