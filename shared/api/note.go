package api

// NoteValue wraps every content field in API v2 notes: {"title": {"value": "..."}}.
type NoteValue[T any] struct {
	Value T `json:"value"`
}

type NoteContent struct {
	Title     NoteValue[string]   `json:"title"`
	Venue     NoteValue[string]   `json:"venue"`
	Authors   NoteValue[[]string] `json:"authors"`
	AuthorIds NoteValue[[]string] `json:"authorids"`
	Abstract  NoteValue[string]   `json:"abstract"`
}

type Note struct {
	Id      string      `json:"id"`
	Forum   string      `json:"forum"`
	Cdate   int64       `json:"cdate"`
	Content NoteContent `json:"content"`
}

type NotesResponse struct {
	Notes []Note `json:"notes"`
	Count int    `json:"count"`
}
