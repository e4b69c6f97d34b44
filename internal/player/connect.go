package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/waves/internal/services"
	"github.com/desertthunder/waves/internal/shared"
)

// DefaultDeviceVolume is applied the first time a device registers.
const DefaultDeviceVolume = 50

// Connect tracks the Spotify Connect device used for full playback.
//
// Once started it looks for a device, reports it through OnReady, sets its volume once, then polls
// the remote player and forwards each state to OnState. It is started lazily when a credential
// appears and stopped when it is cleared. A 401 from the remote player clears creds.
type Connect struct {
	remote     services.Remote
	creds      services.Credentials
	deviceName string
	interval   time.Duration
	logger     *log.Logger

	mu        sync.Mutex
	deviceID  string
	volumeSet map[string]bool
	cancel    context.CancelFunc
	done      chan struct{}
	onReady   func(deviceID string)
	onState   func(services.PlaybackState)
}

// NewConnect creates a poller. deviceName selects a device by name; empty picks the active device,
// then the first one listed.
func NewConnect(remote services.Remote, creds services.Credentials, deviceName string, interval time.Duration, logger *log.Logger) *Connect {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Connect{
		remote:     remote,
		creds:      creds,
		deviceName: deviceName,
		interval:   interval,
		logger:     logger,
		volumeSet:  make(map[string]bool),
	}
}

// OnReady registers the device registration callback.
func (c *Connect) OnReady(fn func(deviceID string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReady = fn
}

// OnState registers the state-change callback.
func (c *Connect) OnState(fn func(services.PlaybackState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onState = fn
}

// DeviceID returns the registered device, or "" before registration.
func (c *Connect) DeviceID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deviceID
}

// Running reports whether the poller is active.
func (c *Connect) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Start begins device discovery and state polling. Starting a running poller is a no-op.
func (c *Connect) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(ctx, c.done)
	c.logger.Debug("connect poller started", "interval", c.interval)
}

// Stop halts polling and forgets the device.
func (c *Connect) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		c.logger.Debug("connect poller stopped")
	}

	c.mu.Lock()
	c.deviceID = ""
	c.mu.Unlock()
}

// Discover lists devices once and registers the preferred one.
func (c *Connect) Discover(ctx context.Context) (string, error) {
	devices, err := c.remote.Devices(ctx)
	if err != nil {
		c.guard(ctx, err)
		return "", err
	}

	device, ok := pickDevice(devices, c.deviceName)
	if !ok {
		return "", fmt.Errorf("%w: %d devices listed", shared.ErrNoDevice, len(devices))
	}

	c.mu.Lock()
	if err := ctx.Err(); err != nil {
		c.mu.Unlock()
		return "", err
	}
	c.deviceID = device.ID
	firstSeen := !c.volumeSet[device.ID]
	c.volumeSet[device.ID] = true
	onReady := c.onReady
	c.mu.Unlock()

	c.logger.Info("connect device ready", "id", device.ID, "name", device.Name)
	if firstSeen {
		if err := c.remote.SetVolume(ctx, device.ID, DefaultDeviceVolume); err != nil {
			c.logger.Warn("failed to set initial device volume", "error", err)
		}
	}
	if onReady != nil {
		onReady(device.ID)
	}
	return device.ID, nil
}

func (c *Connect) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		if c.DeviceID() == "" {
			if _, err := c.Discover(ctx); err != nil && !errors.Is(err, context.Canceled) {
				c.logger.Debug("no connect device yet", "error", err)
			}
		} else {
			c.poll(ctx)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Connect) poll(ctx context.Context) {
	state, err := c.remote.State(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.Debug("failed to poll player state", "error", err)
		}
		c.guard(ctx, err)
		return
	}

	c.mu.Lock()
	onState := c.onState
	c.mu.Unlock()

	if onState != nil && state != nil {
		onState(*state)
	}
}

// guard clears the credential on a 401. It runs from the poll goroutine, and clearing stops this
// poller, so the clear happens on its own goroutine.
func (c *Connect) guard(ctx context.Context, err error) {
	if c.creds == nil || !services.IsUnauthorized(err) {
		return
	}
	c.logger.Warn("credential rejected by remote player, clearing")
	go func() {
		if clearErr := c.creds.Clear(context.WithoutCancel(ctx)); clearErr != nil {
			c.logger.Error("failed to clear credential", "error", clearErr)
		}
	}()
}

func pickDevice(devices []services.Device, name string) (services.Device, bool) {
	if len(devices) == 0 {
		return services.Device{}, false
	}
	if name != "" {
		for _, d := range devices {
			if d.Name == name {
				return d, true
			}
		}
	}
	for _, d := range devices {
		if d.Active {
			return d, true
		}
	}
	return devices[0], true
}
