package dialogs

// UserProfile is the durable per-user record: the names of tests the user
// has launched. Written through user state at the end of each turn; never
// deleted.
type UserProfile struct {
	TestsExecuted   []string `json:"testsExecuted"`
	GeneralExecuted []string `json:"generalExecuted"`
}
