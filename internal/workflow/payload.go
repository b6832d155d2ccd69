package workflow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/applybot/internal/store"
)

// Action identifies what a button press asks for.
type Action string

const (
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionService    Action = "srv"
	ActionDelete     Action = "del"
	ActionDeleteAll  Action = "del_all"
	ActionCreateLink Action = "create_link"
	ActionShowLinks  Action = "my_links"
	ActionBackToMenu Action = "back_menu"
	ActionNoop       Action = "noop"
)

type paramKind int

const (
	paramNone paramKind = iota
	paramUserID
	paramIndex
	paramService
)

var actionParams = map[Action]paramKind{
	ActionApprove:    paramUserID,
	ActionReject:     paramUserID,
	ActionService:    paramService,
	ActionDelete:     paramIndex,
	ActionDeleteAll:  paramNone,
	ActionCreateLink: paramNone,
	ActionShowLinks:  paramNone,
	ActionBackToMenu: paramNone,
	ActionNoop:       paramNone,
}

// Actions returns every action the engine understands.
func Actions() []Action {
	return []Action{
		ActionApprove, ActionReject, ActionService, ActionDelete, ActionDeleteAll,
		ActionCreateLink, ActionShowLinks, ActionBackToMenu, ActionNoop,
	}
}

// Payload is decoded callback data: an action plus its typed parameter.
type Payload struct {
	Action Action
	// ID is the target user for approve/reject and the list position for delete.
	ID      int64
	Service store.Service
}

// String encodes the payload as "action" or "action:param".
func (p Payload) String() string {
	switch actionParams[p.Action] {
	case paramUserID, paramIndex:
		return string(p.Action) + ":" + strconv.FormatInt(p.ID, 10)
	case paramService:
		return string(p.Action) + ":" + string(p.Service)
	default:
		return string(p.Action)
	}
}

// ParsePayload decodes raw callback data. Telebot's "\f<unique>|<data>" form is
// accepted as well as the plain "action:param" form.
func ParsePayload(raw string) (Payload, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "\f")
	if unique, data, ok := strings.Cut(raw, "|"); ok {
		raw = unique + ":" + data
	}

	name, param, hasParam := strings.Cut(raw, ":")
	action := Action(name)
	kind, known := actionParams[action]
	if !known {
		return Payload{}, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}

	p := Payload{Action: action}
	switch kind {
	case paramNone:
		if hasParam && param != "" {
			return Payload{}, fmt.Errorf("%w: %s takes no parameter", ErrMalformedPayload, action)
		}
	case paramUserID:
		id, err := strconv.ParseInt(param, 10, 64)
		if err != nil || id <= 0 {
			return Payload{}, fmt.Errorf("%w: bad user id %q for %s", ErrMalformedPayload, param, action)
		}
		p.ID = id
	case paramIndex:
		idx, err := strconv.Atoi(param)
		if err != nil || idx < 0 {
			return Payload{}, fmt.Errorf("%w: bad index %q for %s", ErrMalformedPayload, param, action)
		}
		p.ID = int64(idx)
	case paramService:
		svc, ok := store.ParseService(param)
		if !ok {
			return Payload{}, fmt.Errorf("%w: unknown service %q", ErrMalformedPayload, param)
		}
		p.Service = svc
	}
	return p, nil
}
