package session

// Command is the action bound to a key press
type Command int

const (
	CommandNone Command = iota
	CommandQuit
	CommandIncreaseScale
	CommandDecreaseScale
	CommandSnapshot
)

// KeyEscape is the key code reported for ESC
const KeyEscape = 27

func (c Command) String() string {
	switch c {
	case CommandQuit:
		return "quit"
	case CommandIncreaseScale:
		return "increase_scale"
	case CommandDecreaseScale:
		return "decrease_scale"
	case CommandSnapshot:
		return "snapshot"
	default:
		return "none"
	}
}

// ParseKey maps a key code to a command. Unknown keys map to CommandNone.
func ParseKey(key int) Command {
	switch key & 0xFF {
	case KeyEscape, 'q':
		return CommandQuit
	case '+', '=':
		return CommandIncreaseScale
	case '-', '_':
		return CommandDecreaseScale
	case 'p':
		return CommandSnapshot
	default:
		return CommandNone
	}
}
