package core

// Logger is any service that can log leveled messages. Extra args are
// formatted by the implementation; a school.User arg identifies the
// acting user where the implementation supports it.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
