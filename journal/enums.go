package journal

import (
	"encoding/json"
	"fmt"
)

// Side is the direction of a trade.
type Side string

const (
	SideLong  Side = "Long"
	SideShort Side = "Short"
)

// Sides lists every Side in display order.
var Sides = []Side{SideLong, SideShort}

func (s Side) Valid() bool {
	switch s {
	case SideLong, SideShort:
		return true
	}
	return false
}

func (s *Side) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "side", s, Side.Valid)
}

// Result is the outcome of a trade. Pending trades are open or unscored and
// never count toward performance figures.
type Result string

const (
	ResultWin       Result = "Win"
	ResultLoss      Result = "Loss"
	ResultBreakEven Result = "Break Even"
	ResultPending   Result = "Pending"
)

// Results lists every Result in display order.
var Results = []Result{ResultWin, ResultLoss, ResultBreakEven, ResultPending}

func (r Result) Valid() bool {
	switch r {
	case ResultWin, ResultLoss, ResultBreakEven, ResultPending:
		return true
	}
	return false
}

// Closed reports whether a trade with this result is scored.
func (r Result) Closed() bool {
	return r != ResultPending
}

// resultAliases are other spellings accepted on input.
var resultAliases = map[string]Result{
	"Break-Even": ResultBreakEven,
	"BreakEven":  ResultBreakEven,
}

func canonicalResult(v string) Result {
	if r, ok := resultAliases[v]; ok {
		return r
	}
	return Result(v)
}

func (r *Result) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("result: %w", err)
	}
	v, err := ParseResult(raw)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Session is the market session a trade was taken in.
type Session string

const (
	SessionLondon      Session = "London"
	SessionNewYork     Session = "New York"
	SessionLondonClose Session = "London Close"
	SessionOutOfHours  Session = "Out of Session"
)

// Sessions lists every Session in display order.
var Sessions = []Session{SessionLondon, SessionNewYork, SessionLondonClose, SessionOutOfHours}

func (s Session) Valid() bool {
	switch s {
	case SessionLondon, SessionNewYork, SessionLondonClose, SessionOutOfHours:
		return true
	}
	return false
}

func (s *Session) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "session", s, Session.Valid)
}

// ParseSide, ParseResult and ParseSession convert user input (flags, query
// strings) to the closed types.
func ParseSide(v string) (Side, error) {
	s := Side(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown side %q", v)
	}
	return s, nil
}

func ParseResult(v string) (Result, error) {
	r := canonicalResult(v)
	if !r.Valid() {
		return "", fmt.Errorf("unknown result %q", v)
	}
	return r, nil
}

func ParseSession(v string) (Session, error) {
	s := Session(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown session %q", v)
	}
	return s, nil
}

func unmarshalEnum[T ~string](b []byte, kind string, dst *T, valid func(T) bool) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	v := T(raw)
	if !valid(v) {
		return fmt.Errorf("unknown %s %q", kind, raw)
	}
	*dst = v
	return nil
}
