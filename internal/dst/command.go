package dst

import "fmt"

// StitchCommand identifies what the machine does at a stitch position.
type StitchCommand uint8

const (
	// CommandStitch is a needle penetration.
	CommandStitch StitchCommand = iota
	// CommandMove repositions the frame without stitching (a jump).
	CommandMove
	// CommandTrim cuts the thread. Reserved; the decoder never emits it.
	CommandTrim
	// CommandColorChange switches to the next thread.
	CommandColorChange
	// CommandSequinMode toggles sequin mode.
	CommandSequinMode
	// CommandSequinEject drops a sequin.
	CommandSequinEject
	// CommandEnd terminates the pattern.
	CommandEnd
)

var commandNames = [...]string{
	CommandStitch:      "STITCH",
	CommandMove:        "MOVE",
	CommandTrim:        "TRIM",
	CommandColorChange: "COLOR_CHANGE",
	CommandSequinMode:  "SEQUIN_MODE",
	CommandSequinEject: "SEQUIN_EJECT",
	CommandEnd:         "END",
}

// String returns the wire name of the command (e.g. "COLOR_CHANGE").
func (c StitchCommand) String() string {
	if int(c) < len(commandNames) {
		return commandNames[c]
	}
	return fmt.Sprintf("StitchCommand(%d)", uint8(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c StitchCommand) MarshalText() ([]byte, error) {
	if int(c) >= len(commandNames) {
		return nil, fmt.Errorf("unknown stitch command %d", uint8(c))
	}
	return []byte(commandNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *StitchCommand) UnmarshalText(text []byte) error {
	cmd, err := ParseCommand(string(text))
	if err != nil {
		return err
	}
	*c = cmd
	return nil
}

// ParseCommand maps a wire name back to its StitchCommand.
func ParseCommand(name string) (StitchCommand, error) {
	for i, n := range commandNames {
		if n == name {
			return StitchCommand(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stitch command %q", name)
}
