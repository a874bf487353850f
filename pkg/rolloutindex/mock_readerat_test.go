package rolloutindex

import (
	"reflect"

	"go.uber.org/mock/gomock"
)

// MockReaderAt is a mock of the ReaderAt interface, hand-written in the
// shape mockgen would generate for it.
type MockReaderAt struct {
	ctrl     *gomock.Controller
	recorder *MockReaderAtMockRecorder
}

type MockReaderAtMockRecorder struct {
	mock *MockReaderAt
}

func NewMockReaderAt(ctrl *gomock.Controller) *MockReaderAt {
	mock := &MockReaderAt{ctrl: ctrl}
	mock.recorder = &MockReaderAtMockRecorder{mock}
	return mock
}

func (m *MockReaderAt) EXPECT() *MockReaderAtMockRecorder {
	return m.recorder
}

func (m *MockReaderAt) ReadAt(p []byte, off int64) (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReadAt", p, off)
	n, _ := ret[0].(int)
	err, _ := ret[1].(error)
	return n, err
}

func (mr *MockReaderAtMockRecorder) ReadAt(p, off any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReadAt", reflect.TypeOf((*MockReaderAt)(nil).ReadAt), p, off)
}

func (m *MockReaderAt) Size() (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Size")
	n, _ := ret[0].(int64)
	err, _ := ret[1].(error)
	return n, err
}

func (mr *MockReaderAtMockRecorder) Size() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Size", reflect.TypeOf((*MockReaderAt)(nil).Size))
}
