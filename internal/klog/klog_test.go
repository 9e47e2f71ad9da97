package klog_test

import (
	"testing"

	"github.com/kryonlabs/kryon/internal/klog"
)

func TestNopLoggerNeverPanics(t *testing.T) {
	l := klog.NewNop()
	l.Pass("Pass 1", "Parsing source...")
	l.Done("%d items, %d styles", 3, 1)
	l.Warn("unresolved state path %q", "user.name")
	l.Error("write failed: %v", errBoom)
	_ = l.Sync()
}

var errBoom = errTest("boom")

type errTest string

func (e errTest) Error() string { return string(e) }
