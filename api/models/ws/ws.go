package ws

import (
	"sync"
	"time"

	"token-backend/internal/metrics"
	"token-backend/log"
	"token-backend/utils"

	"github.com/gorilla/websocket"
)

const (
	// 客户端超过该时间没有任何消息（含 ping）即断开
	HeartbeatTimeout = 60 * time.Second
	writeWait        = 5 * time.Second
	pingPeriod       = 30 * time.Second
	maxMessageSize   = 512
	sendBuffer       = 256
)

// Server 一个 websocket 连接
type Server struct {
	Id     string
	Socket *websocket.Conn
	Send   chan []byte

	closeOnce sync.Once
}

func NewServer(id string, conn *websocket.Conn) *Server {
	return &Server{
		Id:     id,
		Socket: conn,
		Send:   make(chan []byte, sendBuffer),
	}
}

// Manager 管理所有连接，向每个连接广播 mint 事件
type Manager struct {
	servers utils.Map[string, *Server]
	metrics *metrics.Metrics
}

func NewManager(m *metrics.Metrics) *Manager {
	return &Manager{metrics: m}
}

func (m *Manager) Register(s *Server) {
	if _, existed := m.servers.TestAndSet(s.Id, s); !existed {
		m.metrics.AddFeedClients(1)
	}
}

func (m *Manager) Unregister(s *Server) {
	n := m.servers.DeleteFunc(func(id string, cur *Server) bool {
		return id == s.Id && cur == s
	})
	if n == 0 {
		return
	}
	m.metrics.AddFeedClients(-1)
	s.closeOnce.Do(func() {
		close(s.Send)
	})
}

func (m *Manager) Len() int {
	return m.servers.Len()
}

// Broadcast never blocks: a client whose buffer is full is dropped.
func (m *Manager) Broadcast(msg []byte) {
	var slow []*Server
	m.servers.RLockRange(func(_ string, s *Server) bool {
		select {
		case s.Send <- msg:
		default:
			slow = append(slow, s)
		}
		return true
	})
	for _, s := range slow {
		log.Logger.Sugar().Warn("drop slow websocket client ", s.Id)
		m.Unregister(s)
	}
}

// Close disconnects every client.
func (m *Manager) Close() {
	var all []*Server
	m.servers.RLockRange(func(_ string, s *Server) bool {
		all = append(all, s)
		return true
	})
	for _, s := range all {
		m.Unregister(s)
	}
}

// ReadAndWrite 注册连接并启动读写协程，连接断开后自动注销
func (s *Server) ReadAndWrite(m *Manager) {
	m.Register(s)
	go s.writePump(m)
	go s.readPump(m)
}

// readPump 只处理心跳："ping" 回复 "pong"，其余消息忽略
func (s *Server) readPump(m *Manager) {
	defer func() {
		m.Unregister(s)
		_ = s.Socket.Close()
	}()

	s.Socket.SetReadLimit(maxMessageSize)
	_ = s.Socket.SetReadDeadline(time.Now().Add(HeartbeatTimeout))
	s.Socket.SetPongHandler(func(string) error {
		return s.Socket.SetReadDeadline(time.Now().Add(HeartbeatTimeout))
	})

	for {
		_, message, err := s.Socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Logger.Sugar().Warn("websocket read err: ", s.Id, " ", err)
			}
			return
		}
		_ = s.Socket.SetReadDeadline(time.Now().Add(HeartbeatTimeout))
		if string(message) == "ping" {
			s.enqueue([]byte("pong"))
		}
	}
}

func (s *Server) writePump(m *Manager) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		m.Unregister(s)
		_ = s.Socket.Close()
	}()

	for {
		select {
		case msg, ok := <-s.Send:
			_ = s.Socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.Socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.Socket.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.Socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue 非阻塞写入，连接已关闭时丢弃
func (s *Server) enqueue(msg []byte) {
	defer func() {
		_ = recover()
	}()
	select {
	case s.Send <- msg:
	default:
	}
}
