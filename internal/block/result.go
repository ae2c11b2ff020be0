package block

import "github.com/kode4food/blockplan/pkg/api"

type (
	// Result is the outcome of evaluating a block: a value, or a signal
	// that must travel up the tree until a block that handles it
	Result struct {
		Response *api.Response
		Value    api.Value
		Signal   Signal
	}

	// Signal identifies a non-local exit
	Signal uint8
)

const (
	SignalNone Signal = iota
	SignalBreak
	SignalContinue
	SignalRespond
)

var signalNames = map[Signal]string{
	SignalNone:     "none",
	SignalBreak:    "break",
	SignalContinue: "continue",
	SignalRespond:  "respond",
}

// Completed creates a Result carrying a value
func Completed(v api.Value) Result {
	return Result{Value: v}
}

// Break creates a Result that exits the innermost loop
func Break() Result {
	return Result{Signal: SignalBreak}
}

// Continue creates a Result that skips to the next loop iteration
func Continue() Result {
	return Result{Signal: SignalContinue}
}

// Respond creates a Result that short-circuits the function entry with a
// full response
func Respond(r *api.Response) Result {
	return Result{Signal: SignalRespond, Response: r}
}

// Interrupted reports whether the Result carries a signal
func (r Result) Interrupted() bool {
	return r.Signal != SignalNone
}

func (s Signal) String() string {
	return signalNames[s]
}
