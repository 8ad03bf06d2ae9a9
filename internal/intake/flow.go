// Package intake runs the order intake conversation: service, photo, name, phone, confirmation.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"workshop-order-bot/internal/catalog"
	"workshop-order-bot/internal/chat"
	"workshop-order-bot/internal/fsm"
	"workshop-order-bot/internal/notify"
	"workshop-order-bot/internal/order"
	"workshop-order-bot/internal/pkg/metrics"
	"workshop-order-bot/internal/presentation"
	"workshop-order-bot/internal/user"
)

const (
	minNameLength = 2
	maxNameLength = 50
)

type Notifier interface {
	OrderCreated(ctx context.Context, o *order.Order) notify.Report
}

type AdminResolver interface {
	IsAdmin(ctx context.Context, chatID int64) bool
}

type Flow struct {
	router   *fsm.Router
	channel  chat.Channel
	orders   order.Service
	users    user.Service
	admins   AdminResolver
	catalog  *catalog.Catalog
	schedule *catalog.Schedule
	notifier Notifier
	workshop presentation.Workshop
	now      func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

type Deps struct {
	Router   *fsm.Router
	Channel  chat.Channel
	Orders   order.Service
	Users    user.Service
	Admins   AdminResolver
	Catalog  *catalog.Catalog
	Schedule *catalog.Schedule
	Notifier Notifier
	Workshop presentation.Workshop
	Now      func() time.Time
	Rand     *rand.Rand
}

func NewFlow(deps Deps) *Flow {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	rnd := deps.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	f := &Flow{
		router:   deps.Router,
		channel:  deps.Channel,
		orders:   deps.Orders,
		users:    deps.Users,
		admins:   deps.Admins,
		catalog:  deps.Catalog,
		schedule: deps.Schedule,
		notifier: deps.Notifier,
		workshop: deps.Workshop,
		now:      now,
		rnd:      rnd,
	}
	f.router.RegisterHandler(fsm.StepSelectService, f.handleService)
	f.router.RegisterHandler(fsm.StepSendPhoto, f.handlePhoto)
	f.router.RegisterHandler(fsm.StepEnterName, f.handleName)
	f.router.RegisterHandler(fsm.StepEnterPhone, f.handlePhone)
	f.router.RegisterHandler(fsm.StepConfirmOrder, f.handleConfirmation)
	return f
}

// Start opens a fresh intake for the sender, discarding any earlier conversation.
func (f *Flow) Start(ctx context.Context, event chat.Event) error {
	if f.admins.IsAdmin(ctx, event.ChatID) {
		f.send(ctx, event.ChatID, presentation.AdminOrderRejectedMsg(), nil)
		return nil
	}

	f.router.Transition(event.ChatID, fsm.StepSelectService, &fsm.IntakeData{})
	f.send(ctx, event.ChatID, presentation.SelectServiceMsg(), presentation.ServicesKbd(f.catalog.Categories()))
	return nil
}

// Cancel drops the intake of chatID, reporting whether one was open.
func (f *Flow) Cancel(ctx context.Context, chatID int64) bool {
	if !InIntake(f.router.State(chatID).Step) {
		return false
	}
	f.router.Complete(chatID)
	f.send(ctx, chatID, presentation.OrderCancelledMsg(), presentation.MainMenuKbd())
	return true
}

func InIntake(step fsm.ConversationStep) bool {
	switch step {
	case fsm.StepSelectService, fsm.StepSendPhoto, fsm.StepEnterName, fsm.StepEnterPhone, fsm.StepConfirmOrder:
		return true
	}
	return false
}

func (f *Flow) handleService(ctx context.Context, event chat.Event, state fsm.State) error {
	data, ok := f.intakeData(ctx, event.ChatID, state)
	if !ok {
		return nil
	}

	switch {
	case isAction(event, chat.ActionSelectService):
		category, exists := f.catalog.Get(event.Action.Service)
		if !exists {
			break
		}
		data.Service = category.Key
		data.ServiceTitle = category.Title
		summary, _ := f.catalog.GetCategorySummary(category.Key)

		f.router.Transition(event.ChatID, fsm.StepSendPhoto, data)
		f.send(ctx, event.ChatID, presentation.ServiceSelectedMsg(category.Title, summary), presentation.SkipPhotoKbd())
		return nil
	case isAction(event, chat.ActionBack):
		f.router.Complete(event.ChatID)
		f.send(ctx, event.ChatID, presentation.MainMenuMsg(), presentation.MainMenuKbd())
		return nil
	}

	f.send(ctx, event.ChatID, presentation.SelectServiceMsg(), presentation.ServicesKbd(f.catalog.Categories()))
	return nil
}

func (f *Flow) handlePhoto(ctx context.Context, event chat.Event, state fsm.State) error {
	data, ok := f.intakeData(ctx, event.ChatID, state)
	if !ok {
		return nil
	}

	switch {
	case event.Kind == chat.EventPhoto && event.PhotoRef != "":
		data.PhotoRef = event.PhotoRef
		data.Description = strings.TrimSpace(event.Text)
	case isAction(event, chat.ActionSkip):
		data.PhotoRef = ""
		data.Description = ""
	default:
		f.send(ctx, event.ChatID, presentation.AskPhotoAgainMsg(), presentation.SkipPhotoKbd())
		return nil
	}

	data.SuggestedName = SuggestedName(event.Sender)
	f.router.Transition(event.ChatID, fsm.StepEnterName, data)
	f.send(ctx, event.ChatID, presentation.AskNameMsg(data.SuggestedName, data.PhotoRef != ""), presentation.SuggestedNameKbd(data.SuggestedName))
	return nil
}

func (f *Flow) handleName(ctx context.Context, event chat.Event, state fsm.State) error {
	data, ok := f.intakeData(ctx, event.ChatID, state)
	if !ok {
		return nil
	}

	switch {
	case isAction(event, chat.ActionUseSuggestedName):
		data.ClientName = data.SuggestedName
	case event.Kind == chat.EventText:
		name := strings.TrimSpace(event.Text)
		if length := utf8.RuneCountInString(name); length < minNameLength || length > maxNameLength {
			f.send(ctx, event.ChatID, presentation.NameValidationErrorMsg(), presentation.SuggestedNameKbd(data.SuggestedName))
			return nil
		}
		data.ClientName = name
	default:
		f.send(ctx, event.ChatID, presentation.AskNameMsg(data.SuggestedName, false), presentation.SuggestedNameKbd(data.SuggestedName))
		return nil
	}

	f.router.Transition(event.ChatID, fsm.StepEnterPhone, data)
	f.send(ctx, event.ChatID, presentation.AskPhoneMsg(data.ClientName), presentation.SkipPhoneKbd())
	return nil
}

func (f *Flow) handlePhone(ctx context.Context, event chat.Event, state fsm.State) error {
	data, ok := f.intakeData(ctx, event.ChatID, state)
	if !ok {
		return nil
	}

	switch {
	case isAction(event, chat.ActionSkip):
		data.Phone = order.ContactViaChat
	case event.Kind == chat.EventText:
		phone, err := order.NormalizePhone(event.Text)
		if err != nil {
			f.send(ctx, event.ChatID, presentation.PhoneValidationErrorMsg(), presentation.SkipPhoneKbd())
			return nil
		}
		data.Phone = phone
	default:
		f.send(ctx, event.ChatID, presentation.AskPhoneMsg(data.ClientName), presentation.SkipPhoneKbd())
		return nil
	}

	f.router.Transition(event.ChatID, fsm.StepConfirmOrder, data)
	f.send(ctx, event.ChatID, presentation.OrderPreviewMsg(data), presentation.ConfirmOrderKbd())
	return nil
}

func (f *Flow) handleConfirmation(ctx context.Context, event chat.Event, state fsm.State) error {
	data, ok := f.intakeData(ctx, event.ChatID, state)
	if !ok {
		return nil
	}

	switch {
	case isAction(event, chat.ActionConfirm):
		f.commit(ctx, event, data)
	case isAction(event, chat.ActionCancel):
		f.Cancel(ctx, event.ChatID)
	default:
		f.send(ctx, event.ChatID, presentation.ConfirmHintMsg(), presentation.ConfirmOrderKbd())
	}
	return nil
}

// commit stores the order. On failure the conversation stays at confirmation so the client can retry or cancel.
func (f *Flow) commit(ctx context.Context, event chat.Event, data *fsm.IntakeData) {
	profile := user.Profile{
		ChatID:    event.ChatID,
		Username:  event.Sender.Username,
		FirstName: event.Sender.FirstName,
		LastName:  event.Sender.LastName,
	}
	if data.Phone != order.ContactViaChat {
		phone := data.Phone
		profile.Phone = &phone
	}
	if err := f.users.Register(ctx, profile); err != nil {
		slog.Warn("Failed to save client contact", "error", err, "chatID", event.ChatID)
	}

	request := order.RequestNewOrder{
		UserID:      event.ChatID,
		ServiceType: data.Service,
		Description: data.Description,
		ClientName:  data.ClientName,
		ClientPhone: data.Phone,
	}
	if data.PhotoRef != "" {
		photo := data.PhotoRef
		request.PhotoFileID = &photo
	}

	newOrder, err := f.orders.NewOrder(ctx, request)
	if err != nil {
		slog.Error("Order not committed", "error", err, "chatID", event.ChatID)
		f.send(ctx, event.ChatID, presentation.OrderCreationErrorMsg(f.workshop), presentation.ConfirmOrderKbd())
		return
	}
	f.router.Complete(event.ChatID)
	metrics.OrdersCreated.Inc()

	reference := order.FormatReference(newOrder.ID, newOrder.CreatedAt, f.schedule.Location())
	todayHours, _ := f.schedule.Hours(f.now())
	f.send(ctx, event.ChatID, presentation.OrderAcceptedMsg(reference, f.confirmationPhrase(todayHours), f.workshop), presentation.MainMenuKbd())

	f.notifier.OrderCreated(ctx, newOrder)
}

func (f *Flow) confirmationPhrase(todayHours string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return presentation.ConfirmationPhrase(f.rnd, todayHours)
}

func (f *Flow) intakeData(ctx context.Context, chatID int64, state fsm.State) (*fsm.IntakeData, bool) {
	data, ok := state.Data.(*fsm.IntakeData)
	if !ok {
		slog.Warn("Intake step without intake data", "chatID", chatID, "step", state.Step)
		f.router.Complete(chatID)
		f.send(ctx, chatID, presentation.GenericErrorMsg(f.workshop), presentation.MainMenuKbd())
	}
	return data, ok
}

func (f *Flow) send(ctx context.Context, chatID int64, text string, buttons [][]chat.Button) {
	if err := f.channel.SendText(ctx, chatID, chat.Message{Text: text, Buttons: buttons}); err != nil {
		slog.Error("Error sending message", "error", err, "chatID", chatID)
	}
}

func isAction(event chat.Event, kind chat.ActionKind) bool {
	return event.Kind == chat.EventCallback && event.Action.Kind == kind
}

// SuggestedName is the sender's first name, then username, then a placeholder with the id.
func SuggestedName(sender chat.Sender) string {
	if name := strings.TrimSpace(sender.FirstName); name != "" {
		return name
	}
	if name := strings.TrimSpace(sender.Username); name != "" {
		return name
	}
	return fmt.Sprintf("Пользователь %d", sender.ID)
}
