package viewmodel

// User represents the authenticated user context exposed to templates.
type User struct {
	Username string
	Email    string
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	PageTitle       string
	CurrentPage     string
	CSRFToken       string
	IsAuthenticated bool
	User            *User
}
