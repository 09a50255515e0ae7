package event

// Type identifies the kind of event.
type Type int

const (
	FileCopied Type = iota + 1
	FileSkipped
	FileRenamed
	DirCreated
	DirRenamed
	DirPruned
	OpFailed
)

var typeNames = [...]string{
	FileCopied:  "FileCopied",
	FileSkipped: "FileSkipped",
	FileRenamed: "FileRenamed",
	DirCreated:  "DirCreated",
	DirRenamed:  "DirRenamed",
	DirPruned:   "DirPruned",
	OpFailed:    "OpFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single engine event. The engine does not timestamp
// events; the consumer owns timestamps, persistence and visibility.
type Event struct {
	Type    Type
	Path    string // path the operation targeted
	NewPath string // resolved sibling name (FileRenamed, DirRenamed)
	Err     error  // set for OpFailed
	Detail  bool   // per-entry noise, hidden unless the consumer is verbose
}
