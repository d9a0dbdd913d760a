// Package command pairs a user action with the guard that decides whether it
// may run.
package command

// Command is an action with an optional guard. A nil CanRun always allows.
type Command struct {
	CanRun func() bool
	Run    func()
}

// New returns a guarded command.
func New(run func(), canRun func() bool) Command {
	return Command{CanRun: canRun, Run: run}
}

// Allowed reports whether the command may run now.
func (c Command) Allowed() bool {
	return c.CanRun == nil || c.CanRun()
}

// Execute runs the command if its guard allows it and reports whether it ran.
func (c Command) Execute() bool {
	if c.Run == nil || !c.Allowed() {
		return false
	}
	c.Run()
	return true
}
