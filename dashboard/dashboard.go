// Package dashboard selects the landing view for the signed-in user. The
// layout is chosen per role through models.RoleVisitor and each section is
// shown only when the user holds the permission it needs.
package dashboard

import (
	"errors"

	"github.com/edubridge/platform/models"
)

// ErrAnonymous is returned when no user is signed in
var ErrAnonymous = errors.New("no user is signed in")

// PermissionChecker answers permission questions for the current user
type PermissionChecker interface {
	HasPermission(resource string, action models.Action) bool
}

// Section is one panel of a dashboard, gated by a single permission
type Section struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Resource string        `json:"resource"`
	Action   models.Action `json:"action"`
}

// View is the dashboard rendered for a user
type View struct {
	Role     models.Role `json:"role"`
	Title    string      `json:"title"`
	Greeting string      `json:"greeting"`
	Sections []Section   `json:"sections"`
}

type layout struct {
	title    string
	sections []Section
}

func read(id, title, resource string) Section {
	return Section{ID: id, Title: title, Resource: resource, Action: models.ActionRead}
}

// layouts implements models.RoleVisitor
type layouts struct{}

func (layouts) Student() layout {
	return layout{
		title: "Student Dashboard",
		sections: []Section{
			read("overview", "Overview", "dashboard"),
			read("courses", "My Courses", "courses"),
			read("assignments", "Assignments", "assignments"),
			read("progress", "Learning Analytics", "analytics"),
			read("achievements", "Achievements", "achievements"),
			read("forum", "Discussion Forum", "forum"),
			read("messages", "Messages", "chat"),
		},
	}
}

func (layouts) Parent() layout {
	return layout{
		title: "Parent Dashboard",
		sections: []Section{
			read("overview", "Overview", "dashboard"),
			read("children", "My Children", "children"),
			read("reports", "Progress Reports", "reports"),
			read("analytics", "Performance Analytics", "analytics"),
			read("messages", "Messages", "chat"),
		},
	}
}

func (layouts) Institution() layout {
	return layout{
		title: "Institution Dashboard",
		sections: []Section{
			read("overview", "Overview", "dashboard"),
			read("students", "Students", "students"),
			read("courses", "Course Management", "courses"),
			{ID: "new-course", Title: "Create Course", Resource: "courses", Action: models.ActionCreate},
			read("reports", "Reports", "reports"),
			read("analytics", "Institution Analytics", "analytics"),
			{ID: "moderation", Title: "Forum Moderation", Resource: "forum", Action: models.ActionDelete},
		},
	}
}

func (layouts) Company() layout {
	return layout{
		title: "Company Dashboard",
		sections: []Section{
			read("overview", "Overview", "dashboard"),
			read("jobs", "Job Postings", "jobs"),
			{ID: "new-job", Title: "Post a Job", Resource: "jobs", Action: models.ActionCreate},
			read("candidates", "Candidates", "candidates"),
			read("analytics", "Hiring Analytics", "analytics"),
			read("messages", "Messages", "chat"),
		},
	}
}

func (layouts) Admin() layout {
	return layout{
		title: "Admin Dashboard",
		sections: []Section{
			read("overview", "Platform Overview", "dashboard"),
			read("admin-panel", "Admin Panel", "admin_panel"),
			read("users", "User Management", "users"),
			read("institutions", "Institutions", "institutions"),
			read("companies", "Companies", "companies"),
			read("reports", "Platform Reports", "reports"),
			{ID: "settings", Title: "Settings", Resource: "settings", Action: models.ActionUpdate},
		},
	}
}

// Build returns the dashboard for user. Sections the checker denies are
// omitted. An unknown role yields models.ErrUnknownRole.
func Build(user *models.User, checker PermissionChecker) (*View, error) {
	if user == nil {
		return nil, ErrAnonymous
	}

	l, err := models.VisitRole[layout](user.Role, layouts{})
	if err != nil {
		return nil, err
	}

	sections := make([]Section, 0, len(l.sections))
	for _, s := range l.sections {
		if checker.HasPermission(s.Resource, s.Action) {
			sections = append(sections, s)
		}
	}

	greeting := "Welcome back"
	if name := user.Profile.DisplayName(); name != "" {
		greeting += ", " + name
	}

	return &View{
		Role:     user.Role,
		Title:    l.title,
		Greeting: greeting,
		Sections: sections,
	}, nil
}
