package google

// TasksScope grants full read/write access to the user's Google Tasks.
const TasksScope = "https://www.googleapis.com/auth/tasks"

// DefaultOAuthScopes are the Google OAuth scopes requested during the
// consent flow. Kept as a slice so additional scopes can be appended if
// the tool surface ever grows beyond tasks.
var DefaultOAuthScopes = []string{
	TasksScope,
}
