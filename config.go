package ecscore

import "github.com/thebitdrifter/ecscore/internal/xlog"

// Config holds process-wide engine tunables and hooks. Grounded on the
// teacher's config.go package-level singleton shape.
var Config config = config{}

// Events bundles the optional lifecycle hooks a caller can install on
// Config, mirroring the teacher's table.TableEvents.
type Events struct {
	// OnArchetypeCreated fires synchronously whenever a new archetype is
	// created, after it is fully usable (signature and columns set up) but
	// before any entity is added to it. It does not fire for a World's
	// empty archetype, which is created before the hook is subscribed.
	OnArchetypeCreated func(signature []ComponentID)
	// OnFlush fires once per World.Flush call, after every deferred
	// structural mutation and destroy has been applied.
	OnFlush func(stats FlushStats)
}

type config struct {
	logger xlog.Logger
	events Events
}

// SetLogger installs the logger new Worlds pick up by default. Per-World
// overrides are available via World.SetLogger.
func (c *config) SetLogger(l xlog.Logger) {
	c.logger = l
}

// SetEvents installs the lifecycle hooks new Worlds pick up by default.
func (c *config) SetEvents(e Events) {
	c.events = e
}

func (c *config) logOrNop() xlog.Logger {
	if c.logger == nil {
		return xlog.Nop{}
	}
	return c.logger
}
