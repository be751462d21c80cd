package websocket

import (
	"sync"

	"vehicle-auctions/internal/domain"
	"vehicle-auctions/pkg/logger"
)

// ConnectionManager is the per-user fan-out registry. A user can hold any
// number of live connections (several tabs, phone plus desktop); notifying
// a user with no connections is a no-op.
type ConnectionManager struct {
	userConns map[int64]map[string]domain.WebSocketConnection // userID -> connID -> connection
	mutex     sync.RWMutex
	log       logger.Logger
}

func NewConnectionManager(log logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		userConns: make(map[int64]map[string]domain.WebSocketConnection),
		log:       log,
	}
}

func (cm *ConnectionManager) RegisterConnection(conn domain.WebSocketConnection) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	userID := conn.UserID()
	if cm.userConns[userID] == nil {
		cm.userConns[userID] = make(map[string]domain.WebSocketConnection)
	}
	cm.userConns[userID][conn.ID()] = conn

	cm.log.Info("Connection registered", "user_id", userID, "conn_id", conn.ID())
	return nil
}

func (cm *ConnectionManager) UnregisterConnection(userID int64, connID string) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	if conns, exists := cm.userConns[userID]; exists {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(cm.userConns, userID)
		}
	}

	cm.log.Info("Connection unregistered", "user_id", userID, "conn_id", connID)
	return nil
}

func (cm *ConnectionManager) GetConnectionsForUser(userID int64) []domain.WebSocketConnection {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	var connections []domain.WebSocketConnection
	for _, conn := range cm.userConns[userID] {
		connections = append(connections, conn)
	}

	return connections
}

func (cm *ConnectionManager) NotifyUser(userID int64, message interface{}) error {
	connections := cm.GetConnectionsForUser(userID)

	for _, conn := range connections {
		if err := conn.Send(message); err != nil {
			cm.log.Error("Failed to send message", "user_id", userID,
				"conn_id", conn.ID(), "error", err)
			// Continue to other connections
		}
	}

	return nil
}

func (cm *ConnectionManager) CloseUserConnections(userID int64) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	for connID, conn := range cm.userConns[userID] {
		if err := conn.Close(); err != nil {
			cm.log.Error("Failed to close connection", "user_id", userID,
				"conn_id", connID, "error", err)
		}
	}
	delete(cm.userConns, userID)

	return nil
}
