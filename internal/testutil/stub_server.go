//go:build !production

package testutil

import "sync/atomic"

// StubServer types.ServerInterface 的测试实现，维护状态可随时切换
type StubServer struct {
	maintenance atomic.Bool
}

// NewStubServer 创建处于给定维护状态的服务器
func NewStubServer(maintenance bool) *StubServer {
	s := &StubServer{}
	s.maintenance.Store(maintenance)
	return s
}

// SetMaintenance 切换维护状态
func (s *StubServer) SetMaintenance(on bool) {
	s.maintenance.Store(on)
}

func (s *StubServer) IsMaintenanceMode() bool {
	return s.maintenance.Load()
}
