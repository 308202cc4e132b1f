package usecase

// Progress observes a statistics run. It is purely informational.
type Progress interface {
	// Stage announces the start of a numbered step.
	Stage(step, total int, message string)
	// Start begins tracking a known number of items.
	Start(total int)
	// Advance marks one item as processed.
	Advance(title string)
	// Finish stops tracking.
	Finish()
}

// NopProgress discards all progress notifications.
type NopProgress struct{}

func (NopProgress) Stage(int, int, string) {}
func (NopProgress) Start(int)              {}
func (NopProgress) Advance(string)         {}
func (NopProgress) Finish()                {}
