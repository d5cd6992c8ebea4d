package form

// Marker characters encode checkbox states inside `- [x] id: label` lines.
// The mapping is part of the dialect: parser and serializer share it.

// StateForMarker resolves a marker character under a checkbox mode.
func StateForMarker(mode CheckboxMode, marker byte) (CheckState, bool) {
	var state CheckState
	switch marker {
	case ' ':
		if mode == CheckboxExplicit {
			state = CheckUnfilled
		} else {
			state = CheckTodo
		}
	case 'x', 'X':
		state = CheckDone
	case '/':
		state = CheckIncomplete
	case '*':
		state = CheckActive
	case '-':
		state = CheckNA
	case 'y', 'Y':
		state = CheckYes
	case 'n', 'N':
		state = CheckNo
	default:
		return "", false
	}
	if !IsLegalCheckState(mode, state) {
		return "", false
	}
	return state, true
}

// MarkerForState renders a checkbox state back to its marker character.
func MarkerForState(state CheckState) byte {
	switch state {
	case CheckDone:
		return 'x'
	case CheckIncomplete:
		return '/'
	case CheckActive:
		return '*'
	case CheckNA:
		return '-'
	case CheckYes:
		return 'y'
	case CheckNo:
		return 'n'
	default: // todo, unfilled
		return ' '
	}
}

// ZeroCheckState is the untouched state for a mode: todo outside explicit
// mode, unfilled within it.
func ZeroCheckState(mode CheckboxMode) CheckState {
	if mode == CheckboxExplicit {
		return CheckUnfilled
	}
	return CheckTodo
}
