package rolloutindex

import (
	"errors"
	"testing"

	"go.uber.org/mock/gomock"
)

func TestScanStatusFromEnd_PropagatesSizeError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := NewMockReaderAt(ctrl)
	m.EXPECT().Size().Return(int64(0), errors.New("stat failed"))

	_, err := ScanStatusFromEnd(m, "running", DefaultParser)
	if err == nil {
		t.Fatal("expected an error when Size() fails")
	}
}

func TestScanStatusFromEnd_PropagatesReadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := NewMockReaderAt(ctrl)
	m.EXPECT().Size().Return(int64(100), nil)
	m.EXPECT().ReadAt(gomock.Any(), gomock.Any()).Return(0, errors.New("disk read failed"))

	_, err := ScanStatusFromEnd(m, "running", DefaultParser)
	if err == nil {
		t.Fatal("expected an error when ReadAt() fails")
	}
}
