package exclude

// Mode selects the operation performed against the exclusion file.
type Mode string

// Supported modes.
const (
	ModeList  Mode = "list"
	ModeAdd   Mode = "add"
	ModeClear Mode = "clear"
)

// ResolveMode picks the mode from the list and clear switches and the supplied entries.
// Entries select the add mode; they cannot be combined with either switch.
func ResolveMode(listRequested bool, clearRequested bool, entries []string) (Mode, error) {
	switch {
	case listRequested && clearRequested:
		return "", ErrModeConflict
	case (listRequested || clearRequested) && len(entries) > 0:
		return "", ErrModeConflict
	case listRequested:
		return ModeList, nil
	case clearRequested:
		return ModeClear, nil
	case len(entries) == 0:
		return "", ErrNoEntriesProvided
	default:
		return ModeAdd, nil
	}
}
