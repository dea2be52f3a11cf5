package services

import (
	"context"
	"fmt"

	"github.com/lmsweb/portal/internal/apperr"
	"github.com/lmsweb/portal/internal/auth"
	"go.uber.org/zap"
)

// Command names a row action on the admin and instructor dashboards
type Command string

const (
	CommandSaveRole      Command = "save-role"
	CommandDeleteUser    Command = "delete-user"
	CommandApproveCourse Command = "approve-course"
	CommandRemoveCourse  Command = "remove-course"
	CommandEditCourse    Command = "edit-course"
	CommandDeleteCourse  Command = "delete-course"
	CommandPublishCourse Command = "publish-course"
)

// UserRef identifies the account a user command acts on. Role is the new role for CommandSaveRole
type UserRef struct {
	ID   int64
	Role auth.Role
}

// CourseRef identifies the course a course command acts on
type CourseRef struct {
	ID int64
}

// CommandRequest is a dispatched row action as the dashboards post it
type CommandRequest struct {
	Command  Command   `json:"command"`
	UserID   int64     `json:"userId,omitempty"`
	CourseID int64     `json:"courseId,omitempty"`
	Role     auth.Role `json:"role,omitempty"`
}

// CommandResult tells the dashboard what happened and where to go next
type CommandResult struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// AdminActions is the part of the admin service the dispatcher drives
type AdminActions interface {
	ChangeRole(ctx context.Context, authCtx auth.AuthContext, userID int64, role auth.Role) error
	DeleteUser(ctx context.Context, authCtx auth.AuthContext, userID int64) error
	ApproveCourse(ctx context.Context, authCtx auth.AuthContext, courseID int64) error
	RemoveCourse(ctx context.Context, authCtx auth.AuthContext, courseID int64) error
}

// InstructorActions is the part of the instructor service the dispatcher drives
type InstructorActions interface {
	DeleteCourse(ctx context.Context, authCtx auth.AuthContext, courseID int64) error
	ApproveCourse(ctx context.Context, authCtx auth.AuthContext, courseID int64) error
}

type commandHandler func(ctx context.Context, authCtx auth.AuthContext, req CommandRequest) (CommandResult, error)

// Dispatcher maps command names to typed handlers
type Dispatcher struct {
	handlers map[Command]commandHandler
	logger   *zap.Logger
}

// NewDispatcher builds the command table over the admin and instructor services
func NewDispatcher(admin AdminActions, instructor InstructorActions, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: map[Command]commandHandler{
			CommandSaveRole: userCommand(func(ctx context.Context, authCtx auth.AuthContext, ref UserRef) (string, error) {
				return "Role updated.", admin.ChangeRole(ctx, authCtx, ref.ID, ref.Role)
			}),
			CommandDeleteUser: userCommand(func(ctx context.Context, authCtx auth.AuthContext, ref UserRef) (string, error) {
				return "User deleted.", admin.DeleteUser(ctx, authCtx, ref.ID)
			}),
			CommandApproveCourse: courseCommand(func(ctx context.Context, authCtx auth.AuthContext, ref CourseRef) (string, error) {
				return "Course approved.", admin.ApproveCourse(ctx, authCtx, ref.ID)
			}),
			CommandRemoveCourse: courseCommand(func(ctx context.Context, authCtx auth.AuthContext, ref CourseRef) (string, error) {
				return "Course removed.", admin.RemoveCourse(ctx, authCtx, ref.ID)
			}),
			CommandDeleteCourse: courseCommand(func(ctx context.Context, authCtx auth.AuthContext, ref CourseRef) (string, error) {
				return "Course deleted.", instructor.DeleteCourse(ctx, authCtx, ref.ID)
			}),
			CommandPublishCourse: courseCommand(func(ctx context.Context, authCtx auth.AuthContext, ref CourseRef) (string, error) {
				return "Course published.", instructor.ApproveCourse(ctx, authCtx, ref.ID)
			}),
			CommandEditCourse: func(ctx context.Context, authCtx auth.AuthContext, req CommandRequest) (CommandResult, error) {
				if req.CourseID <= 0 {
					return CommandResult{}, apperr.Validation("a course is required", apperr.FieldError{Field: "courseId", Message: "courseId is required"})
				}
				if err := authCtx.RequireRole(auth.RoleInstructor, auth.RoleAdmin); err != nil {
					return CommandResult{}, err
				}
				return CommandResult{Redirect: EditCoursePath(req.CourseID)}, nil
			},
		},
		logger: logger,
	}
}

// EditCoursePath is the course editor page for a course
func EditCoursePath(courseID int64) string {
	return fmt.Sprintf("/instructor/update-course?id=%d", courseID)
}

// Dispatch runs the handler registered for the request's command
func (d *Dispatcher) Dispatch(ctx context.Context, authCtx auth.AuthContext, req CommandRequest) (CommandResult, error) {
	handler, ok := d.handlers[req.Command]
	if !ok {
		return CommandResult{}, apperr.Validation(fmt.Sprintf("unknown command %q", req.Command))
	}

	result, err := handler(ctx, authCtx, req)
	if err != nil {
		d.logger.Warn("command failed",
			zap.String("command", string(req.Command)),
			zap.Int64("user_id", req.UserID),
			zap.Int64("course_id", req.CourseID),
			zap.Error(err),
		)
		return CommandResult{}, err
	}
	return result, nil
}

// Commands lists the registered command names
func (d *Dispatcher) Commands() []Command {
	out := make([]Command, 0, len(d.handlers))
	for c := range d.handlers {
		out = append(out, c)
	}
	return out
}

func userCommand(fn func(ctx context.Context, authCtx auth.AuthContext, ref UserRef) (string, error)) commandHandler {
	return func(ctx context.Context, authCtx auth.AuthContext, req CommandRequest) (CommandResult, error) {
		if req.UserID <= 0 {
			return CommandResult{}, apperr.Validation("a user is required", apperr.FieldError{Field: "userId", Message: "userId is required"})
		}
		msg, err := fn(ctx, authCtx, UserRef{ID: req.UserID, Role: req.Role})
		if err != nil {
			return CommandResult{}, err
		}
		return CommandResult{Message: msg}, nil
	}
}

func courseCommand(fn func(ctx context.Context, authCtx auth.AuthContext, ref CourseRef) (string, error)) commandHandler {
	return func(ctx context.Context, authCtx auth.AuthContext, req CommandRequest) (CommandResult, error) {
		if req.CourseID <= 0 {
			return CommandResult{}, apperr.Validation("a course is required", apperr.FieldError{Field: "courseId", Message: "courseId is required"})
		}
		msg, err := fn(ctx, authCtx, CourseRef{ID: req.CourseID})
		if err != nil {
			return CommandResult{}, err
		}
		return CommandResult{Message: msg}, nil
	}
}
