// Package mocks contains a hand-authored stand-in for the mockgen output
// the teacher repo's v2/snmp package references (v2/snmp/mocks) but does
// not ship in this retrieved pack. Written by hand in the same shape
// mockgen produces for a single-method interface, so registry tests can
// use the same gomock.Controller / EXPECT() style as
// v2/snmp/session_test.go without a generated Conn mock to copy from.
package mocks

import (
	reflect "reflect"

	gomock "github.com/golang/mock/gomock"
)

// MockDeviceConn is a mock of a registry.DeviceConn implementation.
type MockDeviceConn struct {
	ctrl     *gomock.Controller
	recorder *MockDeviceConnMockRecorder
}

// MockDeviceConnMockRecorder is the mock recorder for MockDeviceConn.
type MockDeviceConnMockRecorder struct {
	mock *MockDeviceConn
}

// NewMockDeviceConn creates a new mock instance.
func NewMockDeviceConn(ctrl *gomock.Controller) *MockDeviceConn {
	mock := &MockDeviceConn{ctrl: ctrl}
	mock.recorder = &MockDeviceConnMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockDeviceConn) EXPECT() *MockDeviceConnMockRecorder {
	return m.recorder
}

// SendCommand mocks base method.
func (m *MockDeviceConn) SendCommand(payload []byte) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SendCommand", payload)
	ret0, _ := ret[0].(error)
	return ret0
}

// SendCommand indicates an expected call of SendCommand.
func (mr *MockDeviceConnMockRecorder) SendCommand(payload interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SendCommand", reflect.TypeOf((*MockDeviceConn)(nil).SendCommand), payload)
}
