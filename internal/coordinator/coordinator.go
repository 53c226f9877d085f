package coordinator

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jkaberg/skoda-hass/internal/bus"
	"github.com/jkaberg/skoda-hass/internal/skoda"
	"github.com/jkaberg/skoda-hass/internal/transmission"
	"github.com/jkaberg/skoda-hass/internal/vehicle"
)

// Coordinator owns the refresh cycle of a single vehicle: it polls the cloud
// on a fixed cadence, publishes fresh snapshots on a bus and forwards them to
// the transmitters, change-gated and per-transmitter rate-limited. Sensors
// themselves stay pure; all timing lives here.
type Coordinator struct {
	client       *skoda.Client
	vin          string
	caps         vehicle.Capabilities
	pollInterval time.Duration
	txInterval   time.Duration
	transmitters []transmission.Transmitter
	logger       *logrus.Logger
}

// New creates a coordinator for one VIN.
func New(
	client *skoda.Client,
	vin string,
	caps vehicle.Capabilities,
	pollInterval, txInterval time.Duration,
	transmitters []transmission.Transmitter,
	logger *logrus.Logger,
) *Coordinator {
	return &Coordinator{
		client:       client,
		vin:          vin,
		caps:         caps,
		pollInterval: pollInterval,
		txInterval:   txInterval,
		transmitters: transmitters,
		logger:       logger,
	}
}

// Run blocks until ctx is cancelled. The first refresh happens immediately
// so entities show up without waiting a full poll interval.
func (c *Coordinator) Run(ctx context.Context) error {
	messageBus := bus.New()
	sub := messageBus.Subscribe()

	grp, ctx := errgroup.WithContext(ctx)

	// Collector -----------------------------------------------------------
	grp.Go(func() error {
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		c.poll(ctx, messageBus)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				c.poll(ctx, messageBus)
			}
		}
	})

	// Transmit scheduler ---------------------------------------------------
	grp.Go(func() error {
		type txState struct {
			tx       transmission.Transmitter
			lastSent time.Time
			lastSnap *vehicle.Snapshot
		}

		states := make([]txState, len(c.transmitters))
		for i, tx := range c.transmitters {
			states[i] = txState{tx: tx, lastSent: time.Now().Add(-c.txInterval)}
		}

		var latest *vehicle.Snapshot
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case snap, ok := <-sub:
				if !ok {
					return nil
				}
				latest = snap
			case <-ticker.C:
				if latest == nil {
					continue
				}
				now := time.Now()
				for i := range states {
					st := &states[i]
					if now.Sub(st.lastSent) < c.txInterval {
						continue
					}
					if !vehicle.Changed(st.lastSnap, latest) {
						continue
					}
					if err := st.tx.Transmit(latest); err != nil {
						c.logger.WithError(err).WithField("vin", c.vin).Warn("Transmit failed")
						// Reset lastSnap so Changed() evaluates true on the
						// next tick; bump lastSent so the transmit interval
						// is still respected.
						st.lastSnap = nil
						st.lastSent = now
					} else {
						st.lastSnap = latest
						st.lastSent = now
					}
				}
			}
		}
	})

	if err := grp.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (c *Coordinator) poll(ctx context.Context, messageBus *bus.Bus) {
	snap, err := c.client.Snapshot(ctx, c.vin, c.caps)
	if err != nil {
		if errors.Is(err, skoda.ErrAuthorizationFailed) {
			c.logger.WithField("vin", c.vin).Error("Cloud session expired; reauthentication required")
		} else {
			c.logger.WithError(err).WithField("vin", c.vin).Warn("Snapshot refresh failed")
		}
		return
	}
	messageBus.Publish(snap)
}
