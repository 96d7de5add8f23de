package protocol

// Result is the outcome of a single gameplay operation. Systems mutate the
// passed-in player state and report back through one of these; a failed
// operation never leaves partial mutations behind.
type Result struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func Ok(message string) Result {
	return Result{OK: true, Message: message}
}

func Fail(code, message string) Result {
	return Result{OK: false, Code: code, Message: message}
}
