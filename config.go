package warehouse

import "github.com/TheBitDrifter/table"

// Config holds process-wide configuration. Tests and embedders mutate it
// before creating a World, the same way the teacher's table events are set
// up front.
var Config config = config{
	locking: true,
}

type config struct {
	tableEvents table.TableEvents
	locking     bool
}

// SetTableEvents configures the table event callbacks forwarded to every
// archetype table built afterward.
func (c *config) SetTableEvents(te table.TableEvents) {
	c.tableEvents = te
}

// SetLocking sets Config's locking flag. NewWorld and NewUnsafeWorld choose
// their locking setting themselves and do not read this flag.
func (c *config) SetLocking(on bool) {
	c.locking = on
}
