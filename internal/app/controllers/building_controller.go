package controllers

import (
	"strconv"

	"github.com/Akankshas1102/amazondvc-admin/internal/app/middleware"
	"github.com/Akankshas1102/amazondvc-admin/internal/domain/services"
	"github.com/Akankshas1102/amazondvc-admin/internal/domain/services/container"
	"github.com/Akankshas1102/amazondvc-admin/internal/error/code"
	"github.com/Akankshas1102/amazondvc-admin/internal/error/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InterfaceBuildingController 定义楼宇控制器接口
type InterfaceBuildingController interface {
	GetBuildings()
	SetBuildingTime()
	ReevaluateBuilding()
}

// BuildingController 楼宇控制器
type BuildingController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewBuildingController 创建一个新的楼宇控制器
func NewBuildingController(ctx *gin.Context, container *container.ServiceContainer) *BuildingController {
	return &BuildingController{
		Ctx:       ctx,
		Container: container,
	}
}

// SetBuildingTimeRequest 设置排班时间请求
type SetBuildingTimeRequest struct {
	BuildingID int    `json:"building_id"`
	StartTime  string `json:"start_time" binding:"required" example:"20:00"`
}

// HandleBuildingFunc 返回一个处理楼宇请求的Gin处理函数
func HandleBuildingFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewBuildingController(ctx, container)

		switch method {
		case "getBuildings":
			controller.GetBuildings()
		case "setBuildingTime":
			controller.SetBuildingTime()
		case "reevaluateBuilding":
			controller.ReevaluateBuilding()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetBuildings 获取楼宇列表
// @Summary      获取楼宇列表
// @Description  返回全部楼宇及其排班时间
// @Tags         Building
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /buildings [get]
// @Security     BearerAuth
func (c *BuildingController) GetBuildings() {
	proEventService := c.Container.GetService("proevent").(services.InterfaceProEventService)
	buildings, err := proEventService.GetBuildings()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "Failed to fetch buildings: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, buildings)
}

// 2. SetBuildingTime 设置楼宇排班时间
// @Summary      设置排班时间
// @Description  设置楼宇的布防检查时间 (HH:MM)
// @Tags         Building
// @Accept       json
// @Produce      json
// @Param        id path int true "楼宇ID"
// @Param        request body SetBuildingTimeRequest true "排班时间"
// @Success      200  {object}  map[string]interface{}
// @Router       /buildings/{id}/time [post]
// @Security     BearerAuth
func (c *BuildingController) SetBuildingTime() {
	idStr := c.Ctx.Param("id")
	buildingID, err := strconv.Atoi(idStr)
	if err != nil {
		response.ParamError(c.Ctx, "Invalid building id")
		return
	}

	var req SetBuildingTimeRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "Invalid request body: "+err.Error())
		return
	}

	proEventService := c.Container.GetService("proevent").(services.InterfaceProEventService)
	if err := proEventService.SetBuildingTime(buildingID, req.StartTime); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), nil)
		return
	}

	// 排班时间变更后楼宇列表缓存失效
	middleware.PurgeCache()

	response.Success(c.Ctx, gin.H{
		"building_id": buildingID,
		"start_time":  req.StartTime,
	})
}

// 3. ReevaluateBuilding 立即重算楼宇ProEvent状态
// @Summary      重算楼宇状态
// @Description  按当前面板状态立即重新下发该楼宇全部ProEvent的响应状态
// @Tags         Building
// @Produce      json
// @Param        id path int true "楼宇ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /buildings/{id}/reevaluate [post]
// @Security     BearerAuth
func (c *BuildingController) ReevaluateBuilding() {
	idStr := c.Ctx.Param("id")
	buildingID, err := strconv.Atoi(idStr)
	if err != nil {
		response.ParamError(c.Ctx, "Invalid building id")
		return
	}

	proEventService := c.Container.GetService("proevent").(services.InterfaceProEventService)
	updated, err := proEventService.ReevaluateBuildingState(buildingID)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrPanelStateUnknown, err.Error(), nil)
		return
	}

	middleware.PurgeCache()

	response.Success(c.Ctx, gin.H{
		"operation_id": uuid.New().String(),
		"building_id":  buildingID,
		"updated":      updated,
	})
}
