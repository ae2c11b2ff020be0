package log

import (
	"log/slog"

	"github.com/kode4food/blockplan/pkg/fault"
)

func PlanID[T ~string](id T) slog.Attr {
	return slog.String("plan_id", string(id))
}

func UnitID[T ~string](id T) slog.Attr {
	return slog.String("unit_id", string(id))
}

func ExecutionID(id string) slog.Attr {
	return slog.String("execution_id", id)
}

func BlockType(t string) slog.Attr {
	return slog.String("block_type", t)
}

func BlockAction(a string) slog.Attr {
	return slog.String("block_action", a)
}

// Block groups the identifying attributes of a block
func Block(key fault.Key) slog.Attr {
	return slog.Group("block",
		slog.String("type", key.Type),
		slog.String("action", key.Action))
}

func Status[T ~string](status T) slog.Attr {
	return slog.String("status", string(status))
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}

// Fault renders the flattened fields of a domain error
func Fault(err *fault.Error) slog.Attr {
	if err == nil {
		return slog.Any("fault", nil)
	}
	return slog.Any("fault", err.Fields())
}
