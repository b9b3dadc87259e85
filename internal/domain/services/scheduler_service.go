package services

import (
	"sync"
	"time"

	"github.com/Akankshas1102/amazondvc-admin/pkg/logger"
)

// InterfaceSchedulerService 后台调度服务接口
type InterfaceSchedulerService interface {
	Start()
	Stop()
	RunOnce()
}

// SchedulerService 每分钟执行一次的后台调度器
type SchedulerService struct {
	ProEventService InterfaceProEventService
	Interval        time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSchedulerService 创建一个新的调度服务
func NewSchedulerService(proEventService InterfaceProEventService) InterfaceSchedulerService {
	return &SchedulerService{
		ProEventService: proEventService,
		Interval:        time.Minute,
		stopChan:        make(chan struct{}),
	}
}

// Start 在后台goroutine中启动调度循环
func (s *SchedulerService) Start() {
	logger.Info("调度器启动，执行间隔: %v", s.Interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunOnce()
			case <-s.stopChan:
				logger.Info("调度器已停止")
				return
			}
		}
	}()
}

// Stop 停止调度循环并等待当前任务结束
func (s *SchedulerService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
}

// RunOnce 执行一轮调度任务
//
// 阶段1: 排班时间检查，面板撤防时发送报警
// 阶段2: 面板状态变化监控，下发ProEvent响应状态
func (s *SchedulerService) RunOnce() {
	logger.Info("调度任务开始")

	if err := s.ProEventService.CheckAndManageScheduledStates(); err != nil {
		logger.Error("阶段1 排班检查失败: %v", err)
	}

	if err := s.ProEventService.ManageProEventsOnPanelStateChange(); err != nil {
		logger.Error("阶段2 面板状态监控失败: %v", err)
	}

	logger.Info("调度任务结束")
}
