package form

// AnswerState is the lifecycle state of a field response.
type AnswerState string

const (
	StateUnanswered AnswerState = "unanswered"
	StateAnswered   AnswerState = "answered"
	StateSkipped    AnswerState = "skipped"
	StateAborted    AnswerState = "aborted"
)

// Response is the mutable half of a field: its answer state, the typed value
// (present iff answered), and a free-text reason (present iff skipped or
// aborted).
type Response struct {
	State  AnswerState
	Value  Value
	Reason string
}

// Answered reports whether the response carries a committed value.
func (r Response) Answered() bool { return r.State == StateAnswered }

// Filled reports whether the response holds a non-empty payload. An answered
// response with an empty scalar, list, selection or map counts as empty.
func (r Response) Filled() bool {
	if r.State != StateAnswered || r.Value == nil {
		return false
	}
	switch v := r.Value.(type) {
	case Scalar:
		return v.Text != ""
	case List:
		return len(v.Items) > 0
	case Selection:
		return v.OptionID != ""
	case MultiSelection:
		return len(v.OptionIDs) > 0
	case Checkmarks:
		return len(v.States) > 0
	case TableRows:
		return len(v.Rows) > 0
	default:
		return true
	}
}

// Clone deep-copies the response.
func (r Response) Clone() Response {
	return Response{State: r.State, Value: CloneValue(r.Value), Reason: r.Reason}
}

// NewResponse builds an unanswered response.
func NewResponse() Response {
	return Response{State: StateUnanswered}
}

// Answer builds an answered response around v.
func Answer(v Value) Response {
	return Response{State: StateAnswered, Value: v}
}

// Skip builds a skipped response with an optional reason.
func Skip(reason string) Response {
	return Response{State: StateSkipped, Reason: reason}
}

// Abort builds an aborted response with an optional reason.
func Abort(reason string) Response {
	return Response{State: StateAborted, Reason: reason}
}

// CloneResponses deep-copies a response map; the patch engine mutates the
// copy and swaps it in only when the whole batch validates.
func CloneResponses(in map[string]Response) map[string]Response {
	out := make(map[string]Response, len(in))
	for id, resp := range in {
		out[id] = resp.Clone()
	}
	return out
}
