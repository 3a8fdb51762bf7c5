// Package policy is the single place permission rules live. Handlers never
// compare roles themselves; they describe the action and the resource and
// take the decision as given.
package policy

import (
	"taskhub/internal/apperr"
	"taskhub/internal/auth"
)

type Action string

const (
	ProjectCreate Action = "project.create"
	ProjectRead   Action = "project.read"
	ProjectUpdate Action = "project.update"
	ProjectDelete Action = "project.delete"
	TaskCreate    Action = "task.create"
	TaskRead      Action = "task.read"
	TaskUpdate    Action = "task.update"
	TaskDelete    Action = "task.delete"
	UserManage    Action = "user.manage"
	CommentCreate Action = "comment.create"
	CommentRead   Action = "comment.read"
	CommentDelete Action = "comment.delete"
	ActivityRead  Action = "activity.read"
)

// Resource carries the ownership facts a decision can depend on. Zero values
// mean "not applicable"; actions that need a fact and don't get one deny.
type Resource struct {
	OwnerID        int64 // project owner
	ProjectOwnerID int64 // owner of the project a task belongs to
	AssigneeID     int64 // task assignee, 0 when unassigned
	AuthorID       int64 // comment author
}

type Decision struct {
	Allowed bool
	Reason  string
}

const (
	ReasonRoleNotPermitted  = "role_not_permitted"
	ReasonNotProjectOwner   = "not_project_owner"
	ReasonNotAssignee       = "not_assignee"
	ReasonNotAuthor         = "not_author"
	ReasonFieldNotPermitted = "field_not_permitted"
)

func Allow() Decision             { return Decision{Allowed: true} }
func Deny(reason string) Decision { return Decision{Reason: reason} }

// Err converts a deny into the error surfaced to the caller. Allows map to
// nil so handlers can chain the check inline.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperr.Authorization(d.Reason, "permission denied")
}

// Authorize decides whether user may perform action on res. Pure function of
// its inputs, total over role × action, deny by default.
func Authorize(user *auth.User, action Action, res *Resource) Decision {
	if user == nil {
		return Deny(ReasonRoleNotPermitted)
	}
	if res == nil {
		res = &Resource{}
	}
	switch action {
	case ProjectCreate:
		// Admins may create for any owner; managers only for themselves,
		// which the handler enforces by forcing owner = caller.
		if user.Role == auth.RoleAdmin || user.Role == auth.RoleManager {
			return Allow()
		}
		return Deny(ReasonRoleNotPermitted)

	case ProjectRead:
		// Every role reads every project. The source product was ambiguous
		// here; "all" is the settled behavior.
		return Allow()

	case ProjectUpdate, ProjectDelete:
		switch user.Role {
		case auth.RoleAdmin:
			// Unrestricted by ownership, deliberately broader than manager.
			return Allow()
		case auth.RoleManager:
			if res.OwnerID == user.ID {
				return Allow()
			}
			return Deny(ReasonNotProjectOwner)
		}
		return Deny(ReasonRoleNotPermitted)

	case TaskCreate:
		switch user.Role {
		case auth.RoleAdmin:
			return Allow()
		case auth.RoleManager:
			if res.ProjectOwnerID == user.ID {
				return Allow()
			}
			return Deny(ReasonNotProjectOwner)
		}
		return Deny(ReasonRoleNotPermitted)

	case TaskRead:
		switch user.Role {
		case auth.RoleAdmin, auth.RoleManager, auth.RoleClient:
			return Allow()
		case auth.RoleDeveloper:
			if res.AssigneeID == user.ID {
				return Allow()
			}
			return Deny(ReasonNotAssignee)
		}
		return Deny(ReasonRoleNotPermitted)

	case TaskUpdate:
		switch user.Role {
		case auth.RoleAdmin:
			return Allow()
		case auth.RoleManager:
			if res.ProjectOwnerID == user.ID {
				return Allow()
			}
			return Deny(ReasonNotProjectOwner)
		case auth.RoleDeveloper:
			// Field restrictions are checked separately; see CheckTaskFields.
			if res.AssigneeID == user.ID {
				return Allow()
			}
			return Deny(ReasonNotAssignee)
		}
		return Deny(ReasonRoleNotPermitted)

	case TaskDelete:
		// Deletion is project-owner gated for admins too, narrower than the
		// admin's update rights.
		switch user.Role {
		case auth.RoleAdmin, auth.RoleManager:
			if res.ProjectOwnerID == user.ID {
				return Allow()
			}
			return Deny(ReasonNotProjectOwner)
		}
		return Deny(ReasonRoleNotPermitted)

	case UserManage:
		if user.Role == auth.RoleAdmin {
			return Allow()
		}
		return Deny(ReasonRoleNotPermitted)

	case CommentCreate, CommentRead, ActivityRead:
		return Allow()

	case CommentDelete:
		if user.Role == auth.RoleAdmin || res.AuthorID == user.ID {
			return Allow()
		}
		return Deny(ReasonNotAuthor)
	}
	return Deny(ReasonRoleNotPermitted)
}

// TaskFields records which fields a task-update payload contains. Presence is
// what matters: sending a disallowed field with its current value still
// counts.
type TaskFields struct {
	Title    bool
	Status   bool
	Assignee bool
}

// CheckTaskFields applies the restricted field set for developer updates.
// Other roles pass through untouched.
func CheckTaskFields(user *auth.User, fields TaskFields) Decision {
	if user.Role != auth.RoleDeveloper {
		return Allow()
	}
	if fields.Title || fields.Assignee {
		return Deny(ReasonFieldNotPermitted)
	}
	return Allow()
}
