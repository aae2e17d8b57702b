package tui

// StatusKind is the severity of a status bar message.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

func (k StatusKind) String() string {
	switch k {
	case StatusSuccess:
		return "success"
	case StatusWarn:
		return "warn"
	case StatusError:
		return "error"
	default:
		return "info"
	}
}
