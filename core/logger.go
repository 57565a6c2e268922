package core

// Logger is the application wide logger.
// args may hold an error, a map[string]interface{} of extras and the user the log line relates to.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Notifier displays transient, fire-and-forget messages to the end user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}
