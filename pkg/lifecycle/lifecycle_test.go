package lifecycle_test

import (
	"testing"
	"time"

	"github.com/mrp23231/coffee1-bot/pkg/lifecycle"
)

func TestSleepInterruptedByShutdown(t *testing.T) {
	m := lifecycle.NewManager()
	h, err := m.NewServiceHandle("svc")
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	defer h.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		m.Shutdown()
	}()

	start := time.Now()
	if err := h.Sleep(5 * time.Second); err == nil {
		t.Fatal("停机期间的Sleep应返回错误")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Sleep未被停机信号及时唤醒，耗时 %v", elapsed)
	}
}

func TestDuplicateServiceName(t *testing.T) {
	m := lifecycle.NewManager()
	h, err := m.NewServiceHandle("svc")
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	defer h.Close()

	if _, err := m.NewServiceHandle("svc"); err == nil {
		t.Fatal("同名服务不应重复注册")
	}
}

func TestWaitWithTimeoutReportsStragglers(t *testing.T) {
	m := lifecycle.NewManager()
	fast, _ := m.NewServiceHandle("fast")
	slow, _ := m.NewServiceHandle("slow")

	go func() {
		<-fast.Done()
		fast.Close()
	}()

	m.Shutdown()
	remaining := m.WaitWithTimeout(100 * time.Millisecond)
	if len(remaining) != 1 || remaining[0] != "slow" {
		t.Errorf("remaining = %v, want [slow]", remaining)
	}
	slow.Close()

	if remaining := m.WaitWithTimeout(time.Second); remaining != nil {
		t.Errorf("全部退出后仍报告滞留服务: %v", remaining)
	}
}
