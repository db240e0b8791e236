package activity

// ToggleVerb picks the verb for an update that may flip a boolean flag.
// A supplied value equal to the stored one is not a flip.
func ToggleVerb(old bool, next *bool, onTrue, onFalse string) string {
	if next == nil || *next == old {
		return ActionUpdated
	}
	if *next {
		return onTrue
	}
	return onFalse
}

// TodoVerb returns completed or uncompleted when the flag flips.
func TodoVerb(oldCompleted bool, next *bool) string {
	return ToggleVerb(oldCompleted, next, ActionCompleted, ActionUncompleted)
}

// IdeaVerb returns marked_implemented or marked_not_implemented when the flag flips.
func IdeaVerb(oldImplemented bool, next *bool) string {
	return ToggleVerb(oldImplemented, next, ActionMarkedImplemented, ActionMarkedNotImplemented)
}

// StatusVerb returns status_changed when next is supplied and differs from old.
func StatusVerb[S comparable](old S, next *S) string {
	if next == nil || *next == old {
		return ActionUpdated
	}
	return ActionStatusChanged
}

// Preview truncates s to at most n runes.
func Preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
