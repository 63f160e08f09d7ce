package domain

type State int

const (
	StateInit State = iota
	StateValidating
	StateBackingUp
	StateRestoring
	StateNotifying
	StateDone
	StateErrored
)

var stateNames = map[State]string{
	StateInit:       "Init",
	StateValidating: "Validating",
	StateBackingUp:  "BackingUp",
	StateRestoring:  "Restoring",
	StateNotifying:  "Notifying",
	StateDone:       "Done",
	StateErrored:    "Errored",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

func (s State) Terminal() bool {
	return s == StateDone || s == StateErrored
}
