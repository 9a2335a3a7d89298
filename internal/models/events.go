package models

// EventKind is a stable wire value for the board event stream.
type EventKind string

const (
	EventNoteCreated  EventKind = "note:created"
	EventNoteUpdated  EventKind = "note:updated"
	EventNoteDeleted  EventKind = "note:deleted"
	EventMemberJoined EventKind = "member:joined"
	EventMemberLeft   EventKind = "member:left"
)

// One payload type per event kind, each carrying exactly the fields
// that kind needs.

// NoteCreatedPayload is an appendable fragment: the receiving client
// adds the note to the canvas.
type NoteCreatedPayload struct {
	Note Note `json:"note"`
}

// NoteUpdatedPayload is a full replacement tagged for out-of-band swap:
// the receiving client replaces the existing note element in place.
type NoteUpdatedPayload struct {
	Note    Note `json:"note"`
	Replace bool `json:"replace"`
}

// NoteDeletedPayload is a removal instruction.
type NoteDeletedPayload struct {
	NoteID int64 `json:"note_id"`
}

// MemberJoinedPayload announces a new member.
type MemberJoinedPayload struct {
	Username string `json:"username"`
}

// MemberLeftPayload announces a removed member.
type MemberLeftPayload struct {
	Username string `json:"username"`
}
