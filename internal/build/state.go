package build

import "fmt"

// StepKind identifies a build step.
type StepKind int

const (
	StepClean StepKind = iota
	StepConfigure
	StepInstall
)

func (k StepKind) String() string {
	switch k {
	case StepClean:
		return "clean"
	case StepConfigure:
		return "configure"
	case StepInstall:
		return "install"
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// State is the progress of one variant build:
//
//	Idle → Cleaning (optional) → Configuring → Installing → Done
//
// Any state but Done transitions to Failed when a step fails.
type State int

const (
	StateIdle State = iota
	StateCleaning
	StateConfiguring
	StateInstalling
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:        "idle",
	StateCleaning:    "cleaning",
	StateConfiguring: "configuring",
	StateInstalling:  "installing",
	StateDone:        "done",
	StateFailed:      "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// state returns the state a build is in while running a step of kind k.
func (k StepKind) state() State {
	switch k {
	case StepClean:
		return StateCleaning
	case StepConfigure:
		return StateConfiguring
	default:
		return StateInstalling
	}
}
