package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/locator"
)

// quitCountingDriver records how many times Quit runs
type quitCountingDriver struct {
	quits   int32
	quitErr error
}

func (d *quitCountingDriver) Open(string) error                          { return nil }
func (d *quitCountingDriver) Find(locator.Locator) (core.Element, error) { return nil, core.ErrElementNotFound }
func (d *quitCountingDriver) URL() (string, error)                       { return "", nil }
func (d *quitCountingDriver) Title() (string, error)                     { return "", nil }
func (d *quitCountingDriver) PageText() (string, error)                  { return "", nil }
func (d *quitCountingDriver) Screenshot() ([]byte, error)                { return nil, nil }
func (d *quitCountingDriver) DismissDialog() error                       { return nil }
func (d *quitCountingDriver) SetTimeout(time.Duration)                   {}
func (d *quitCountingDriver) Info() *core.DriverInfo                     { return &core.DriverInfo{Name: "counting"} }
func (d *quitCountingDriver) Quit() error {
	atomic.AddInt32(&d.quits, 1)
	return d.quitErr
}

func TestManager_AcquireAndRelease(t *testing.T) {
	drv := &quitCountingDriver{}
	mgr := NewManager(func() (core.Driver, error) { return drv, nil })

	sess, err := mgr.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if sess.ID == "" {
		t.Error("session ID should not be empty")
	}
	if sess.Released() {
		t.Error("fresh session should not be released")
	}

	mgr.Release(sess)

	if !sess.Released() {
		t.Error("Release() should mark the session released")
	}
	if n := atomic.LoadInt32(&drv.quits); n != 1 {
		t.Errorf("Quit() ran %d times, want 1", n)
	}
}

func TestManager_AcquireFailure(t *testing.T) {
	launchErr := errors.New("browser binary missing")
	mgr := NewManager(func() (core.Driver, error) { return nil, launchErr })

	sess, err := mgr.Acquire(context.Background())
	if sess != nil {
		t.Error("failed Acquire() should not return a session")
	}
	if !errors.Is(err, core.ErrSessionAcquire) {
		t.Errorf("error = %v, want session acquire", err)
	}
	if !errors.Is(err, launchErr) {
		t.Errorf("error = %v, should carry the launch failure as cause", err)
	}
}

func TestManager_AcquireCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	factoryRan := false
	mgr := NewManager(func() (core.Driver, error) {
		factoryRan = true
		return &quitCountingDriver{}, nil
	})

	_, err := mgr.Acquire(ctx)
	if err == nil {
		t.Fatal("Acquire() should fail on a canceled context")
	}
	if !errors.Is(err, core.ErrSessionAcquire) {
		t.Errorf("error = %v, want session acquire", err)
	}
	if factoryRan {
		t.Error("factory should not run after cancellation")
	}
}

func TestManager_ReleaseIsIdempotent(t *testing.T) {
	drv := &quitCountingDriver{}
	mgr := NewManager(func() (core.Driver, error) { return drv, nil })

	sess, err := mgr.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	mgr.Release(sess)
	mgr.Release(sess)
	mgr.Release(sess)

	if n := atomic.LoadInt32(&drv.quits); n != 1 {
		t.Errorf("Quit() ran %d times after repeated Release, want 1", n)
	}
}

func TestManager_ReleaseConcurrent(t *testing.T) {
	drv := &quitCountingDriver{}
	mgr := NewManager(func() (core.Driver, error) { return drv, nil })

	sess, err := mgr.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mgr.Release(sess)
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&drv.quits); n != 1 {
		t.Errorf("Quit() ran %d times under concurrent Release, want 1", n)
	}
}

func TestManager_ReleaseSwallowsQuitError(t *testing.T) {
	drv := &quitCountingDriver{quitErr: errors.New("browser already gone")}
	mgr := NewManager(func() (core.Driver, error) { return drv, nil })

	sess, err := mgr.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	// Must not panic or propagate
	mgr.Release(sess)

	if !sess.Released() {
		t.Error("session should count as released even when Quit fails")
	}
}

func TestManager_ReleaseNilSession(t *testing.T) {
	mgr := NewManager(func() (core.Driver, error) { return &quitCountingDriver{}, nil })
	// Must not panic
	mgr.Release(nil)
}
