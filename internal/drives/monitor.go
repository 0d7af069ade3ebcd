package drives

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"shuttle/internal/logging"
)

// Monitor listens for udev netlink block events so the daemon learns about
// drives appearing or disappearing without polling the mount table.
type Monitor struct {
	logger   *slog.Logger
	onChange func(ctx context.Context, device, action string)

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// NewMonitor creates a hotplug monitor. onChange fires for every block
// device add or remove event.
func NewMonitor(logger *slog.Logger, onChange func(ctx context.Context, device, action string)) *Monitor {
	return &Monitor{
		logger:   logging.NewComponentLogger(logger, "drive-monitor"),
		onChange: onChange,
	}
}

// Start begins listening for udev netlink events. A connection failure is
// non-fatal; the daemon falls back to checking mounts per queue item.
func (m *Monitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("failed to connect to netlink socket; drive hotplug detection disabled",
			logging.Error(err),
			logging.String(logging.FieldEventType, "netlink_connect_failed"),
			logging.String(logging.FieldErrorHint, "ensure the daemon has permission to access netlink sockets"),
			logging.String(logging.FieldImpact, "destinations are only rechecked when items are processed"),
		)
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, quit)

	m.logger.Info("drive monitor started",
		logging.String(logging.FieldEventType, "drive_monitor_started"),
	)
	return nil
}

// Stop shuts down the monitor.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("drive monitor stopped",
		logging.String(logging.FieldEventType, "drive_monitor_stopped"),
	)
}

// Running reports whether the monitor is active.
func (m *Monitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	events := make(chan netlink.UEvent)
	errs := make(chan error)

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(events, errs, blockDeviceMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-events:
			m.handleEvent(ctx, uevent)
		case err := <-errs:
			m.logger.Warn("drive monitor error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "drive_monitor_error"),
			)
		}
	}
}

// blockDeviceMatcher matches SUBSYSTEM=block with ACTION=add|remove.
func blockDeviceMatcher() netlink.Matcher {
	action := "add|remove"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "block",
		},
	})
	return rules
}

func (m *Monitor) handleEvent(ctx context.Context, uevent netlink.UEvent) {
	devname := uevent.Env["DEVNAME"]
	if devname == "" {
		return
	}

	m.logger.Info("block device event",
		logging.String(logging.FieldEventType, "drive_hotplug"),
		logging.String("device", devname),
		logging.String("action", string(uevent.Action)),
	)
	if m.onChange != nil {
		m.onChange(ctx, devname, string(uevent.Action))
	}
}
