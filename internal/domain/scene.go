package domain

// Scene is a screenplay unit owned by a user. It is read here only to build
// generation prompts.
type Scene struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Location    string
	TimeOfDay   string
	Mood        string
	Actors      []Actor
}

// Actor is a character profile that can appear in scenes.
type Actor struct {
	ID          string
	Name        string
	Age         int
	Gender      string
	Description string
	ImageURL    string
	VoiceID     string
}
