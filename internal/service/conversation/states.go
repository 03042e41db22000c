package conversation

import (
	"github.com/medicenter/booking-api/internal/model"
)

// State enumerates the conversation steps. The flow is a single fixed
// path with no backward transitions beyond restart.
type State string

const (
	StateGreeting         State = "greeting"
	StateCollectName      State = "collect_name"
	StateCollectDOB       State = "collect_dob"
	StateSelectDoctor     State = "select_doctor"
	StateCollectPhone     State = "collect_phone"
	StateCollectEmail     State = "collect_email"
	StateSelectSlot       State = "select_slot"
	StateCollectInsurance State = "collect_insurance"
	StateConfirm          State = "confirm"
	StateDone             State = "done"
)

// transitions is the forward edge of the linear flow. Patients already on
// file skip the identity edges: CollectName jumps to SelectDoctor,
// SelectDoctor jumps to SelectSlot, and SelectSlot jumps to Confirm when
// insurance is on file.
var transitions = map[State]State{
	StateGreeting:         StateCollectName,
	StateCollectName:      StateCollectDOB,
	StateCollectDOB:       StateSelectDoctor,
	StateSelectDoctor:     StateCollectPhone,
	StateCollectPhone:     StateCollectEmail,
	StateCollectEmail:     StateSelectSlot,
	StateSelectSlot:       StateCollectInsurance,
	StateCollectInsurance: StateConfirm,
	StateConfirm:          StateDone,
}

// next returns the default forward transition for a state.
func next(s State) State {
	if n, ok := transitions[s]; ok {
		return n
	}
	return StateDone
}

// insurance collection sub-steps, in order
const (
	insuranceStepCarrier = iota
	insuranceStepMemberID
	insuranceStepGroupID
)

// Session holds everything collected during one conversation. Sessions
// live in a TTL cache keyed by ID; an expired session restarts from
// greeting.
type Session struct {
	ID             string
	State          State
	Patient        *model.Patient
	Name           string
	DOB            string
	Phone          string
	Email          string
	DoctorID       string
	DoctorName     string
	DoctorLocation string
	Offered        []*model.Slot
	Selected       *model.Slot
	Insurance      model.Insurance
	InsuranceStep  int
}

func newSession(id string) *Session {
	return &Session{ID: id, State: StateGreeting}
}

// reset clears everything but the session ID, returning the flow to the
// greeting state.
func (s *Session) reset() {
	*s = Session{ID: s.ID, State: StateGreeting}
}

// Reply is one turn of the conversation.
type Reply struct {
	SessionID string `json:"session_id"`
	State     State  `json:"state"`
	Message   string `json:"message"`
}
