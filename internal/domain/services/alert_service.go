package services

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Akankshas1102/amazondvc-admin/internal/infrastructure/config"
	"github.com/Akankshas1102/amazondvc-admin/pkg/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// InterfaceAlertService 报警通知服务接口
type InterfaceAlertService interface {
	SendArmedAxeMessage(buildingName string)
	SendDisarmedAxeMessage(buildingName string)
	PublishAlert(buildingID int, payload interface{}) error
	Connect() error
	Disconnect()
}

// AlertService 负责向ProServer发送AXE TCP通知，并通过MQTT广播报警
type AlertService struct {
	Config *config.Config

	client         mqtt.Client
	isConnected    bool
	connectedMutex sync.RWMutex
	publishMutex   sync.Mutex
}

// NewAlertService 创建一个新的报警通知服务
func NewAlertService(cfg *config.Config) InterfaceAlertService {
	s := &AlertService{Config: cfg}
	if cfg.MQTTEnabled {
		s.setupMQTTClient()
	}
	return s
}

// setupMQTTClient 初始化MQTT客户端
func (s *AlertService) setupMQTTClient() {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.Config.MQTTBrokerURL)
	// 使用唯一的客户端ID，避免同一服务多实例冲突
	opts.SetClientID(fmt.Sprintf("%s-%s", s.Config.MQTTClientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Second * 30)
	opts.SetKeepAlive(time.Second * 60)
	opts.SetPingTimeout(time.Second * 10)
	opts.SetCleanSession(true)

	// 添加用户名和密码
	if s.Config.MQTTUsername != "" {
		opts.SetUsername(s.Config.MQTTUsername)
		opts.SetPassword(s.Config.MQTTPassword)
	}

	// 设置连接丢失回调
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.Warning("[MQTT] 连接丢失: %v", err)
		s.connectedMutex.Lock()
		s.isConnected = false
		s.connectedMutex.Unlock()
	})

	// 设置连接建立回调
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		logger.Info("[MQTT] 成功连接到 %s", s.Config.MQTTBrokerURL)
		s.connectedMutex.Lock()
		s.isConnected = true
		s.connectedMutex.Unlock()
	})

	s.client = mqtt.NewClient(opts)
}

// Connect 连接到MQTT服务器，带有重试机制
func (s *AlertService) Connect() error {
	if !s.Config.MQTTEnabled {
		return nil
	}

	s.publishMutex.Lock()
	defer s.publishMutex.Unlock()

	s.connectedMutex.RLock()
	isConnected := s.isConnected && s.client.IsConnected()
	s.connectedMutex.RUnlock()

	if isConnected {
		return nil
	}

	// 最大重试次数和指数退避策略
	maxRetries := 5
	var err error

	for i := 0; i < maxRetries; i++ {
		token := s.client.Connect()
		if token.WaitTimeout(5*time.Second) && token.Error() == nil {
			s.connectedMutex.Lock()
			s.isConnected = true
			s.connectedMutex.Unlock()
			logger.Info("[MQTT] 成功连接到 %s", s.Config.MQTTBrokerURL)
			return nil
		}

		err = token.Error()
		backoffTime := time.Duration(1<<uint(i)) * time.Second // 指数退避: 1s, 2s, 4s, 8s, 16s
		logger.Warning("[MQTT] 连接尝试 %d/%d 失败: %v, 将在 %v 后重试", i+1, maxRetries, err, backoffTime)
		time.Sleep(backoffTime)
	}

	return fmt.Errorf("[MQTT] 连接失败，已尝试 %d 次: %v", maxRetries, err)
}

// Disconnect 断开与MQTT服务器的连接
func (s *AlertService) Disconnect() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
}

// PublishAlert 把报警广播到该楼宇的MQTT主题
func (s *AlertService) PublishAlert(buildingID int, payload interface{}) error {
	if !s.Config.MQTTEnabled {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	topic := fmt.Sprintf("amazondvc/alerts/%d", buildingID)
	token := s.client.Publish(topic, byte(s.Config.MQTTQoS), s.Config.MQTTRetained, data)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		return fmt.Errorf("发布报警到主题 %s 失败: %v", topic, token.Error())
	}
	return nil
}

// SendArmedAxeMessage 发送布防AXE通知
// 报文格式: axe,<building_name>_Is_Armed@
func (s *AlertService) SendArmedAxeMessage(buildingName string) {
	s.sendAxeMessage(fmt.Sprintf("axe,%s_Is_Armed@", buildingName))
}

// SendDisarmedAxeMessage 发送撤防AXE通知
// 报文格式: axe,<building_name>_Is_Disarmed@
func (s *AlertService) SendDisarmedAxeMessage(buildingName string) {
	s.sendAxeMessage(fmt.Sprintf("axe,%s_Is_Disarmed@", buildingName))
}

// sendAxeMessage 通过TCP把AXE报文发给ProServer
// 发送失败只记录日志，不中断调度流程
func (s *AlertService) sendAxeMessage(message string) {
	addr := s.Config.GetProServerAddr()
	logger.Info("向ProServer %s 发送通知: %s", addr, message)

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		logger.Error("连接ProServer %s 失败: %v", addr, err)
		return
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := conn.Write([]byte(message)); err != nil {
		logger.Error("发送AXE通知失败: %v", err)
	}
}
