package tabstatus

import "slices"

// Command names a fire-and-forget instruction for the background authority.
type Command string

// Commands accepted by the authority.
const (
	CmdSuspendOne                 Command = "suspend-one"
	CmdSuspendAll                 Command = "suspend-all"
	CmdUnsuspendAll               Command = "unsuspend-all"
	CmdSuspendSelected            Command = "suspend-selected"
	CmdUnsuspendSelected          Command = "unsuspend-selected"
	CmdWhitelistCurrent           Command = "whitelist-current"
	CmdTempWhitelistCurrent       Command = "temporarily-whitelist-current"
	CmdUnsuspendHighlighted       Command = "unsuspend-highlighted"
	CmdUnwhitelistHighlighted     Command = "unwhitelist-highlighted"
	CmdUndoTempWhitelistHighlight Command = "undo-temporary-whitelist-highlighted"
	CmdUpdateIcon                 Command = "update-icon"
)

// Commands lists every command the authority understands.
var Commands = []Command{
	CmdSuspendOne,
	CmdSuspendAll,
	CmdUnsuspendAll,
	CmdSuspendSelected,
	CmdUnsuspendSelected,
	CmdWhitelistCurrent,
	CmdTempWhitelistCurrent,
	CmdUnsuspendHighlighted,
	CmdUnwhitelistHighlighted,
	CmdUndoTempWhitelistHighlight,
	CmdUpdateIcon,
}

// Valid reports whether c is a known command.
func (c Command) Valid() bool {
	return slices.Contains(Commands, c)
}

// String implements fmt.Stringer.
func (c Command) String() string {
	return string(c)
}
