package fan

// Device switches the fan. Both commands are safe to repeat.
type Device interface {
	On() error
	Off() error
	Close() error
}

// State is the commanded fan state
type State bool

const (
	Stopped State = false
	Running State = true
)

func (s State) String() string {
	if s {
		return "on"
	}
	return "off"
}
