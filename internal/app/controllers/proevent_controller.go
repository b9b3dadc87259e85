package controllers

import (
	"strconv"

	"github.com/Akankshas1102/amazondvc-admin/internal/app/middleware"
	"github.com/Akankshas1102/amazondvc-admin/internal/domain/services"
	"github.com/Akankshas1102/amazondvc-admin/internal/domain/services/container"
	"github.com/Akankshas1102/amazondvc-admin/internal/error/code"
	"github.com/Akankshas1102/amazondvc-admin/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceProEventController 定义ProEvent控制器接口
type InterfaceProEventController interface {
	GetDevices()
	SetIgnoreBulk()
}

// ProEventController ProEvent控制器
type ProEventController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewProEventController 创建一个新的ProEvent控制器
func NewProEventController(ctx *gin.Context, container *container.ServiceContainer) *ProEventController {
	return &ProEventController{
		Ctx:       ctx,
		Container: container,
	}
}

// IgnoreBulkRequest 批量忽略标记请求
type IgnoreBulkRequest struct {
	Items []services.IgnoreUpdate `json:"items"`
}

// HandleProEventFunc 返回一个处理ProEvent请求的Gin处理函数
func HandleProEventFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewProEventController(ctx, container)

		switch method {
		case "getDevices":
			controller.GetDevices()
		case "setIgnoreBulk":
			controller.SetIgnoreBulk()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetDevices 获取楼宇的ProEvent列表
// @Summary      获取ProEvent列表
// @Description  返回指定楼宇的ProEvent及其响应状态与忽略标记
// @Tags         ProEvent
// @Produce      json
// @Param        building query int true "楼宇ID"
// @Param        search query string false "名称过滤 (不区分大小写)"
// @Param        limit query int false "数量上限, 默认100"
// @Success      200  {object}  map[string]interface{}
// @Router       /devices [get]
// @Security     BearerAuth
func (c *ProEventController) GetDevices() {
	buildingStr := c.Ctx.Query("building")
	buildingID, err := strconv.Atoi(buildingStr)
	if err != nil {
		response.ParamError(c.Ctx, "Invalid building parameter")
		return
	}

	search := c.Ctx.Query("search")
	limit, _ := strconv.Atoi(c.Ctx.DefaultQuery("limit", "100"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	proEventService := c.Container.GetService("proevent").(services.InterfaceProEventService)
	proevents, err := proEventService.GetProEvents(buildingID, search, limit)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "Failed to fetch proevents: "+err.Error(), nil)
		return
	}

	deviceResponses := make([]gin.H, 0, len(proevents))
	for _, p := range proevents {
		deviceResponses = append(deviceResponses, gin.H{
			"id":             p.ID,
			"name":           p.Name,
			"building_id":    p.BuildingID,
			"reactive_state": p.State,
			"is_ignored":     p.IsIgnored,
		})
	}

	response.Success(c.Ctx, deviceResponses)
}

// 2. SetIgnoreBulk 批量保存忽略标记
// @Summary      批量保存忽略标记
// @Description  批量更新ProEvent在撤防时是否被忽略
// @Tags         ProEvent
// @Accept       json
// @Produce      json
// @Param        request body IgnoreBulkRequest true "忽略标记列表"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Router       /proevents/ignore/bulk [post]
// @Security     BearerAuth
func (c *ProEventController) SetIgnoreBulk() {
	var req IgnoreBulkRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Items) == 0 {
		response.Fail(c.Ctx, code.ErrEmptyBulkUpdate, nil)
		return
	}

	proEventService := c.Container.GetService("proevent").(services.InterfaceProEventService)
	if err := proEventService.SetIgnoredProEventsBulk(req.Items); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "Failed to save ignore updates: "+err.Error(), nil)
		return
	}

	middleware.PurgeCache()

	response.Success(c.Ctx, gin.H{"updated": len(req.Items)})
}
