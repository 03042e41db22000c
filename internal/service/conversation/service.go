package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/medicenter/booking-api/internal/model"
	"github.com/medicenter/booking-api/internal/repository"
	"github.com/medicenter/booking-api/internal/service/patient"
	"github.com/medicenter/booking-api/internal/service/scheduler"
	"github.com/medicenter/booking-api/pkg/metrics"
)

// Notifier sends the post-booking messages. Failures are logged and never
// fail the booking.
type Notifier interface {
	SendConfirmation(ctx context.Context, apt *model.Appointment, p *model.Patient) error
	SendIntakeForm(ctx context.Context, apt *model.Appointment, p *model.Patient) error
}

// Reporter exports the admin booking report after a confirmation.
type Reporter interface {
	ExportAppointments(ctx context.Context) (string, error)
}

// Options tune the slot offering.
type Options struct {
	LookaheadDays int
	MaxOffered    int
}

func (o Options) withDefaults() Options {
	if o.LookaheadDays <= 0 {
		o.LookaheadDays = 14
	}
	if o.MaxOffered <= 0 {
		o.MaxOffered = 10
	}
	return o
}

// Service drives the booking conversation: a linear sequence of prompts
// that collects identity, doctor and slot choice, and insurance, then
// books through the allocator and triggers the notifier.
type Service struct {
	sessions  *cache.Cache
	patients  *patient.Service
	scheduler *scheduler.Service
	doctors   repository.DoctorRepository
	notifier  Notifier
	reporter  Reporter
	opts      Options
	metrics   *metrics.Metrics
	validate  *validator.Validate
	now       func() time.Time
}

func NewService(
	patients *patient.Service,
	sched *scheduler.Service,
	doctors repository.DoctorRepository,
	notifier Notifier,
	reporter Reporter,
	sessionTTL time.Duration,
	opts Options,
	m *metrics.Metrics,
) *Service {
	return &Service{
		sessions:  cache.New(sessionTTL, 2*sessionTTL),
		patients:  patients,
		scheduler: sched,
		doctors:   doctors,
		notifier:  notifier,
		reporter:  reporter,
		opts:      opts.withDefaults(),
		metrics:   m,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// Advance processes one user message and returns the next prompt. An
// empty session ID starts a fresh conversation.
func (s *Service) Advance(ctx context.Context, sessionID, input string) (*Reply, error) {
	sess := s.session(sessionID)
	input = strings.TrimSpace(input)

	var (
		msg string
		err error
	)
	switch sess.State {
	case StateGreeting, StateDone:
		msg = s.handleGreeting(sess)
	case StateCollectName:
		msg, err = s.handleCollectName(ctx, sess, input)
	case StateCollectDOB:
		msg, err = s.handleCollectDOB(ctx, sess, input)
	case StateSelectDoctor:
		msg, err = s.handleSelectDoctor(ctx, sess, input)
	case StateCollectPhone:
		msg = s.handleCollectPhone(sess, input)
	case StateCollectEmail:
		msg, err = s.handleCollectEmail(ctx, sess, input)
	case StateSelectSlot:
		msg, err = s.handleSelectSlot(ctx, sess, input)
	case StateCollectInsurance:
		msg, err = s.handleCollectInsurance(ctx, sess, input)
	case StateConfirm:
		msg, err = s.handleConfirm(ctx, sess, input)
	default:
		sess.reset()
		msg = "I'm sorry, something went wrong. Let's start over.\n\n" + s.handleGreeting(sess)
	}
	if err != nil {
		return nil, err
	}

	s.sessions.SetDefault(sess.ID, sess)
	if s.metrics != nil {
		s.metrics.ConversationTurns.Inc()
	}
	return &Reply{SessionID: sess.ID, State: sess.State, Message: msg}, nil
}

func (s *Service) session(id string) *Session {
	if id != "" {
		if v, ok := s.sessions.Get(id); ok {
			return v.(*Session)
		}
	}
	if id == "" {
		id = uuid.New().String()
	}
	if s.metrics != nil {
		s.metrics.ConversationsStarted.Inc()
	}
	return newSession(id)
}

func (s *Service) handleGreeting(sess *Session) string {
	sess.reset()
	sess.State = next(StateGreeting)
	return "Welcome to our appointment scheduling service!\n\n" +
		"I'm here to help you book your medical appointment. Let me gather some basic information.\n\n" +
		"Please provide your full name:"
}

func (s *Service) handleCollectName(ctx context.Context, sess *Session, input string) (string, error) {
	if len(input) < 2 {
		return "Please provide a valid full name:", nil
	}
	sess.Name = input

	existing, err := s.patients.Lookup(ctx, model.PatientIdentity{Name: input})
	if err != nil {
		return "", fmt.Errorf("failed to look up patient: %w", err)
	}
	if existing != nil {
		sess.Patient = existing
		sess.State = StateSelectDoctor
		doctors, err := s.doctorsList(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Great! I found your information in our system.\n\n"+
			"Name: %s\nPhone: %s\nEmail: %s\n\n"+
			"Which doctor would you like to see? Our available doctors are:\n%s",
			existing.Name, existing.Phone, existing.Email, doctors), nil
	}

	sess.State = next(StateCollectName)
	return fmt.Sprintf("Thank you, %s. I don't see you in our system, so I'll set you up as a new patient.\n\n"+
		"Please provide your date of birth (YYYY-MM-DD format):", input), nil
}

func (s *Service) handleCollectDOB(ctx context.Context, sess *Session, input string) (string, error) {
	dob, err := time.Parse(model.DateLayout, input)
	if err != nil {
		return "Please enter date of birth in YYYY-MM-DD format (e.g., 1990-05-15):", nil
	}
	if dob.After(s.now()) {
		return "Date of birth cannot be in the future. Please enter a valid date (YYYY-MM-DD):", nil
	}
	sess.DOB = input
	sess.State = next(StateCollectDOB)

	doctors, err := s.doctorsList(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Thank you. Now, which doctor would you like to see?\n\n"+
		"Our available doctors are:\n%s\n\nPlease type the doctor's name:", doctors), nil
}

func (s *Service) handleSelectDoctor(ctx context.Context, sess *Session, input string) (string, error) {
	all, err := s.doctors.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list doctors: %w", err)
	}

	var selected *model.Doctor
	lowered := strings.ToLower(input)
	for _, d := range all {
		name := strings.ToLower(d.Name)
		if strings.Contains(name, lowered) || strings.Contains(lowered, name) {
			selected = d
			break
		}
	}
	if selected == nil {
		doctors, err := s.doctorsList(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("I didn't recognize that doctor. Please select from our available doctors:\n%s", doctors), nil
	}

	sess.DoctorID = selected.ID
	sess.DoctorName = selected.Name
	sess.DoctorLocation = selected.Location

	if sess.Patient != nil {
		return s.offerSlots(ctx, sess)
	}
	sess.State = next(StateSelectDoctor)
	return "Please provide your phone number:", nil
}

func (s *Service) handleCollectPhone(sess *Session, input string) string {
	if countDigits(input) < 10 {
		return "Please provide a valid phone number:"
	}
	sess.Phone = input
	sess.State = next(StateCollectPhone)
	return "Please provide your email address:"
}

func (s *Service) handleCollectEmail(ctx context.Context, sess *Session, input string) (string, error) {
	if err := s.validate.Var(input, "required,email"); err != nil {
		return "Please provide a valid email address:", nil
	}
	sess.Email = input

	p, err := s.patients.Register(ctx, &model.RegisterPatientRequest{
		Name:              sess.Name,
		DOB:               sess.DOB,
		Phone:             sess.Phone,
		Email:             sess.Email,
		PreferredDoctorID: sess.DoctorID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to register patient: %w", err)
	}
	sess.Patient = p

	return s.offerSlots(ctx, sess)
}

// offerSlots classifies the patient, lists matching free slots over the
// lookahead window, and moves the flow to slot selection.
func (s *Service) offerSlots(ctx context.Context, sess *Session) (string, error) {
	class := s.patients.Classify(sess.Patient)
	duration := class.RequiredDuration()
	from := s.now()
	to := from.AddDate(0, 0, s.opts.LookaheadDays)

	slots, err := s.scheduler.FindAvailable(ctx, sess.DoctorID, from, to, duration)
	if err != nil {
		return "", fmt.Errorf("failed to find available slots: %w", err)
	}
	if len(slots) == 0 {
		sess.State = StateSelectDoctor
		return fmt.Sprintf("I'm sorry, %s has no available appointments in the next %d days. "+
			"Would you like to try a different doctor? Please type another doctor's name:",
			sess.DoctorName, s.opts.LookaheadDays), nil
	}
	if len(slots) > s.opts.MaxOffered {
		slots = slots[:s.opts.MaxOffered]
	}
	sess.Offered = slots
	sess.State = StateSelectSlot

	var b strings.Builder
	fmt.Fprintf(&b, "Here are the available appointment slots for %s (%d-minute %s patient visit):\n\n",
		sess.DoctorName, duration, class)
	for i, slot := range slots {
		fmt.Fprintf(&b, "%d. %s at %s - %s\n", i+1, formatDate(slot.Date), formatTime(slot.StartTime), sess.DoctorLocation)
	}
	b.WriteString("\nPlease type the number of your preferred slot:")
	return b.String(), nil
}

func (s *Service) handleSelectSlot(ctx context.Context, sess *Session, input string) (string, error) {
	idx, err := strconv.Atoi(input)
	if err != nil || idx < 1 || idx > len(sess.Offered) {
		return "Please select a valid slot number from the list above:", nil
	}
	sess.Selected = sess.Offered[idx-1]

	if sess.Patient.HasInsuranceOnFile() {
		sess.State = StateConfirm
		return s.summary(sess), nil
	}
	sess.State = next(StateSelectSlot)
	sess.InsuranceStep = insuranceStepCarrier
	return "Before we confirm your appointment, I need to collect your insurance information.\n\n" +
		"Please provide your insurance carrier (e.g., Blue Cross, Aetna, Cigna):", nil
}

func (s *Service) handleCollectInsurance(ctx context.Context, sess *Session, input string) (string, error) {
	if input == "" {
		return "Please provide a value:", nil
	}
	switch sess.InsuranceStep {
	case insuranceStepCarrier:
		sess.Insurance.Carrier = input
		sess.InsuranceStep = insuranceStepMemberID
		return "Thank you. Now please provide your Member ID:", nil
	case insuranceStepMemberID:
		sess.Insurance.MemberID = input
		sess.InsuranceStep = insuranceStepGroupID
		return "Great! Finally, please provide your Group ID:", nil
	default:
		sess.Insurance.GroupID = input
		sess.State = next(StateCollectInsurance)
		return s.summary(sess), nil
	}
}

func (s *Service) summary(sess *Session) string {
	class := s.patients.Classify(sess.Patient)
	carrier := sess.Insurance.Carrier
	if carrier == "" {
		carrier = sess.Patient.InsuranceCarrier
	}
	return fmt.Sprintf("Please review your appointment details:\n\n"+
		"Patient: %s\nDoctor: %s\nDate: %s\nTime: %s\nLocation: %s\n"+
		"Duration: %d minutes (%s patient)\nInsurance: %s\n\n"+
		"Type 'CONFIRM' to book this appointment or 'CANCEL' to start over:",
		sess.Patient.Name, sess.DoctorName, formatDate(sess.Selected.Date),
		formatTime(sess.Selected.StartTime), sess.DoctorLocation,
		class.RequiredDuration(), class, carrier)
}

func (s *Service) handleConfirm(ctx context.Context, sess *Session, input string) (string, error) {
	switch strings.ToUpper(input) {
	case "CONFIRM":
		return s.book(ctx, sess)
	case "CANCEL":
		sess.reset()
		return "Appointment booking cancelled. Type anything to start over.", nil
	default:
		return "Please type 'CONFIRM' to book the appointment or 'CANCEL' to start over:", nil
	}
}

func (s *Service) book(ctx context.Context, sess *Session) (string, error) {
	// Persist collected insurance first so the booking snapshots it.
	if sess.Insurance.Carrier != "" {
		p, err := s.patients.UpdateInsurance(ctx, sess.Patient.ID, sess.Insurance)
		if err != nil {
			return "", fmt.Errorf("failed to save insurance: %w", err)
		}
		sess.Patient = p
	}

	apt, err := s.scheduler.Book(ctx, sess.Selected.ID, sess.Patient.ID)
	if errors.Is(err, scheduler.ErrSlotUnavailable) || errors.Is(err, scheduler.ErrDurationMismatch) {
		offer, oerr := s.offerSlots(ctx, sess)
		if oerr != nil {
			return "", oerr
		}
		return "I'm sorry, that time slot is no longer available.\n\n" + offer, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to book appointment: %w", err)
	}

	pat := sess.Patient
	if err := s.notifier.SendConfirmation(ctx, apt, pat); err != nil {
		log.Error().Err(err).Str("appointment_id", apt.ID).Msg("confirmation email failed")
	} else if err := s.notifier.SendIntakeForm(ctx, apt, pat); err != nil {
		log.Error().Err(err).Str("appointment_id", apt.ID).Msg("intake form email failed")
	}
	if s.reporter != nil {
		if _, err := s.reporter.ExportAppointments(ctx); err != nil {
			log.Error().Err(err).Msg("appointment report export failed")
		}
	}

	sess.reset()
	sess.State = StateDone
	return fmt.Sprintf("Your appointment is confirmed!\n\n"+
		"- Appointment ID: %s\n- Date & Time: %s at %s\n- Location: %s\n\n"+
		"Next steps:\n"+
		"- Confirmation email sent to %s\n"+
		"- Patient intake form sent separately\n"+
		"- Please arrive 15 minutes early and bring ID and your insurance card\n\n"+
		"You will receive appointment reminders via email and SMS.\n\n"+
		"Type anything to schedule another appointment.",
		apt.ID, formatDate(apt.Date), formatTime(apt.StartTime), apt.Location, pat.Email), nil
}

func (s *Service) doctorsList(ctx context.Context) (string, error) {
	all, err := s.doctors.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list doctors: %w", err)
	}
	var b strings.Builder
	for _, d := range all {
		fmt.Fprintf(&b, "- %s - %s (%s)\n", d.Name, d.Specialty, d.Location)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func formatDate(date string) string {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}

func formatTime(hhmm string) string {
	t, err := time.Parse(model.TimeLayout, hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format("3:04 PM")
}
