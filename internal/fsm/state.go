package fsm

type ConversationStep int

const (
	StepIdle ConversationStep = iota
	StepSelectService
	StepSendPhoto
	StepEnterName
	StepEnterPhone
	StepConfirmOrder
	StepEnterComment
)

func (s ConversationStep) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepSelectService:
		return "select_service"
	case StepSendPhoto:
		return "send_photo"
	case StepEnterName:
		return "enter_name"
	case StepEnterPhone:
		return "enter_phone"
	case StepConfirmOrder:
		return "confirm_order"
	case StepEnterComment:
		return "enter_comment"
	default:
		return "unknown"
	}
}

type StateData interface {
	StateData()
}

type IdleData struct{}

func (data *IdleData) StateData() {}

// IntakeData collects a new order until it is committed or cancelled.
type IntakeData struct {
	Service       string
	ServiceTitle  string
	PhotoRef      string
	Description   string
	SuggestedName string
	ClientName    string
	Phone         string
}

func (data *IntakeData) StateData() {}

// ReviewData holds a chosen rating while the comment is awaited.
type ReviewData struct {
	OrderID int64
	Rating  int
}

func (data *ReviewData) StateData() {}
