package constant

// User-facing messages for each failure kind, so the UI can tell remediable
// user error apart from transient backend error.
const (
	MsgSelectionEmpty     = "Select at least one source before asking a question."
	MsgContentUnavailable = "Failed to load transcript content, try again."
	MsgAllMapsFailed      = "None of the selected sources could be processed, try again."
	MsgReduceFailed       = "Error consolidating responses, try again."
	MsgTranscriptNotFound = "Transcript not found."
)

// Transcript reading defaults.
const (
	TranscriptPageLimit = 50
)
