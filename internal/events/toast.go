package events

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Toast struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
	Scope   string `json:"scope,omitempty"` // wizard id, "history", "auth", ...
}

// Toaster turns user-facing notifications into toast events on the hub.
type Toaster struct {
	Hub   *Hub
	Scope string
}

func (t Toaster) Success(msg string) { t.emit(LevelSuccess, msg) }
func (t Toaster) Error(msg string)   { t.emit(LevelError, msg) }
func (t Toaster) Info(msg string)    { t.emit(LevelInfo, msg) }

func (t Toaster) emit(l Level, msg string) {
	t.Hub.Emit("", TypeToast, Toast{Level: l, Message: msg, Scope: t.Scope})
}
