package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/taskpulse/internal/domain"
	"github.com/spec-kit/taskpulse/internal/events"
	"github.com/spec-kit/taskpulse/internal/notify"
	"github.com/spec-kit/taskpulse/internal/repository"
)

// NotificationService turns committed domain events into outbound email.
// Delivery is best-effort: every failure is logged and swallowed so the
// mutation that emitted the event is never affected.
type NotificationService struct {
	users      repository.UserRepository
	mailer     notify.Mailer
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NotificationDependencies bundles requirements for the notification service.
type NotificationDependencies struct {
	UserRepo   repository.UserRepository
	Mailer     notify.Mailer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		users:      deps.UserRepo,
		mailer:     deps.Mailer,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// RegisterHandlers subscribes to every event kind that notifies.
func (s *NotificationService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	for _, kind := range []events.EventType{
		events.EventDeptCreate,
		events.EventDeptUpdate,
		events.EventDeptAddEmployee,
		events.EventDeptRemoveEmployee,
		events.EventProjCreate,
		events.EventProjUpdate,
		events.EventProjAddMember,
		events.EventProjRemoveMember,
		events.EventTaskCreate,
		events.EventTaskUpdate,
		events.EventTaskDelete,
		events.EventTaskStatusUpdate,
	} {
		s.dispatcher.Subscribe(kind, s.HandleEvent)
	}
}

// HandleEvent is the dispatcher entry point for every event kind.
func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	recipients, subject, body := s.compose(event)
	if len(recipients.IDs) == 0 && !recipients.IncludeAdmins {
		return nil
	}

	users, err := s.resolveRecipients(ctx, recipients)
	if err != nil {
		s.logger.Error("notification recipient lookup failed",
			zap.String("event_type", string(event.Type)),
			zap.String("entity_id", event.EntityID),
			zap.Error(err))
		return nil
	}

	for _, user := range users {
		if user.Email == "" {
			continue
		}
		msg := notify.Message{To: user.Email, Subject: subject, Body: body}
		if err := s.mailer.Send(ctx, msg); err != nil {
			s.logger.Error("notification delivery failed",
				zap.String("event_type", string(event.Type)),
				zap.String("to", user.Email),
				zap.Error(err))
		}
	}
	return nil
}

// recipientSet names who an event reaches: an explicit id list, optionally
// widened to every admin account.
type recipientSet struct {
	IDs           []string
	IncludeAdmins bool
}

func (s *NotificationService) compose(event events.Event) (recipientSet, string, string) {
	switch event.Type {
	case events.EventDeptCreate, events.EventDeptUpdate,
		events.EventDeptAddEmployee, events.EventDeptRemoveEmployee:
		payload, ok := event.Payload.(events.DepartmentPayload)
		if !ok {
			return recipientSet{}, "", ""
		}
		return departmentMessage(event.Type, payload)

	case events.EventProjCreate, events.EventProjUpdate,
		events.EventProjAddMember, events.EventProjRemoveMember:
		payload, ok := event.Payload.(events.ProjectPayload)
		if !ok {
			return recipientSet{}, "", ""
		}
		return projectMessage(event.Type, payload)

	case events.EventTaskCreate, events.EventTaskUpdate,
		events.EventTaskDelete, events.EventTaskStatusUpdate:
		payload, ok := event.Payload.(events.TaskPayload)
		if !ok {
			return recipientSet{}, "", ""
		}
		return taskMessage(event.Type, payload)
	}
	return recipientSet{}, "", ""
}

func departmentMessage(kind events.EventType, p events.DepartmentPayload) (recipientSet, string, string) {
	set := recipientSet{IncludeAdmins: true}
	if p.ManagerID != nil {
		set.IDs = append(set.IDs, *p.ManagerID)
	}
	if p.EmployeeID != nil {
		set.IDs = append(set.IDs, *p.EmployeeID)
	}

	switch kind {
	case events.EventDeptCreate:
		return set, fmt.Sprintf("Department created: %s", p.Name),
			fmt.Sprintf("The department %q has been created.", p.Name)
	case events.EventDeptUpdate:
		return set, fmt.Sprintf("Department updated: %s", p.Name),
			fmt.Sprintf("The department %q has been updated.", p.Name)
	case events.EventDeptAddEmployee:
		return set, fmt.Sprintf("Employee added to %s", p.Name),
			fmt.Sprintf("An employee has been added to the department %q.", p.Name)
	default:
		return set, fmt.Sprintf("Employee removed from %s", p.Name),
			fmt.Sprintf("An employee has been removed from the department %q.", p.Name)
	}
}

func projectMessage(kind events.EventType, p events.ProjectPayload) (recipientSet, string, string) {
	set := recipientSet{IncludeAdmins: true, IDs: []string{p.ManagerID}}
	if p.MemberID != nil {
		set.IDs = append(set.IDs, *p.MemberID)
	}

	switch kind {
	case events.EventProjCreate:
		return set, fmt.Sprintf("Project created: %s", p.Name),
			fmt.Sprintf("The project %q has been created.", p.Name)
	case events.EventProjUpdate:
		return set, fmt.Sprintf("Project updated: %s", p.Name),
			fmt.Sprintf("The project %q has been updated.", p.Name)
	case events.EventProjAddMember:
		return set, fmt.Sprintf("Team member added to %s", p.Name),
			fmt.Sprintf("A team member has been added to the project %q.", p.Name)
	default:
		return set, fmt.Sprintf("Team member removed from %s", p.Name),
			fmt.Sprintf("A team member has been removed from the project %q.", p.Name)
	}
}

func taskMessage(kind events.EventType, p events.TaskPayload) (recipientSet, string, string) {
	set := recipientSet{IDs: []string{p.AssignedTo, p.CreatedBy}}

	switch kind {
	case events.EventTaskCreate:
		// New tasks only concern the people on the task.
		return set, fmt.Sprintf("Task assigned: %s", p.Title),
			fmt.Sprintf("The task %q has been created and assigned.", p.Title)
	case events.EventTaskUpdate:
		set.IncludeAdmins = true
		return set, fmt.Sprintf("Task updated: %s", p.Title),
			fmt.Sprintf("The task %q has been updated.", p.Title)
	case events.EventTaskDelete:
		set.IncludeAdmins = true
		return set, fmt.Sprintf("Task deleted: %s", p.Title),
			fmt.Sprintf("The task %q has been deleted.", p.Title)
	default:
		set.IncludeAdmins = true
		return set, fmt.Sprintf("Task status changed: %s", p.Title),
			fmt.Sprintf("The task %q is now %s.", p.Title, p.Status)
	}
}

// resolveRecipients loads the distinct set of users behind a recipient set.
func (s *NotificationService) resolveRecipients(ctx context.Context, set recipientSet) ([]domain.User, error) {
	byID := make(map[string]domain.User)

	ids := dedupeIDs(set.IDs)
	if len(ids) > 0 {
		users, err := s.users.ListByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			byID[u.ID] = u
		}
	}

	if set.IncludeAdmins {
		adminRole := domain.RoleAdmin
		admins, err := s.users.ListWithFilter(ctx, repository.UserFilter{Role: &adminRole})
		if err != nil {
			return nil, err
		}
		for _, u := range admins {
			byID[u.ID] = u
		}
	}

	out := make([]domain.User, 0, len(byID))
	for _, u := range byID {
		out = append(out, u)
	}
	return out, nil
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
