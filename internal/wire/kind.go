package wire

import (
	"fmt"

	"collabotp/pkg/request"
)

// KindToWire and KindFromWire translate between request.Kind and its wire
// string form; kept here (rather than inlined at each call site) since
// both pkg/session's codec and any future transport need the same
// mapping.
func KindToWire(k request.Kind) Kind {
	switch k {
	case request.Undo:
		return KindUndo
	case request.Redo:
		return KindRedo
	default:
		return KindDo
	}
}

func KindFromWire(k Kind) (request.Kind, error) {
	switch k {
	case KindDo:
		return request.Do, nil
	case KindUndo:
		return request.Undo, nil
	case KindRedo:
		return request.Redo, nil
	default:
		return 0, fmt.Errorf("wire: unknown request kind %q", k)
	}
}
