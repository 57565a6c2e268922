package navbar

type (
	Link struct {
		Label string `json:"label"`
		Path  string `json:"path"`
	}

	// Action is a menu entry. Path is empty for actions that do not navigate (Sign Out).
	Action struct {
		ID    string `json:"id"`
		Label string `json:"label"`
		Path  string `json:"path,omitempty"`
	}

	AccountMenu struct {
		Label       string   `json:"label"`
		DisplayName string   `json:"display_name,omitempty"`
		Items       []Action `json:"items"`
	}

	// View is everything needed to render the navigation bar.
	View struct {
		Brand         Link         `json:"brand"`
		Authenticated bool         `json:"authenticated"`
		DashboardPath string       `json:"dashboard_path"`
		Links         []Link       `json:"links"`
		Account       *AccountMenu `json:"account,omitempty"`
		Toolbar       []Action     `json:"toolbar,omitempty"`
		GuestActions  []Action     `json:"guest_actions,omitempty"`
		MobileOpen    bool         `json:"mobile_open"`
		MobileItems   []Action     `json:"mobile_items,omitempty"`
	}
)

// Action IDs
const (
	ActionCourses   = "courses"
	ActionDashboard = "dashboard"
	ActionMessages  = "messages"
	ActionSignOut   = "sign_out"
	ActionLogin     = "login"
	ActionRegister  = "register"

	// ActionNotifications opens the notifications dropdown, rendered by the client. It is not activatable.
	ActionNotifications = "notifications"
)

// View renders the Bar for its current state.
func (b *Bar) View() View {
	b.mu.Lock()
	id, name, mobileOpen := b.identity, b.displayName, b.mobileOpen
	b.mu.Unlock()

	dashboard := DashboardPath(id.Role)
	v := View{
		Brand:         Link{Label: Brand, Path: PathHome},
		Authenticated: id.IsAuthenticated(),
		DashboardPath: dashboard,
		Links:         []Link{{Label: "Courses", Path: PathCourses}},
		MobileOpen:    mobileOpen,
	}

	courses := Action{ID: ActionCourses, Label: "Courses", Path: PathCourses}
	dashboardAction := Action{ID: ActionDashboard, Label: "Dashboard", Path: dashboard}
	messages := Action{ID: ActionMessages, Label: "Messages", Path: PathMessages}
	signOut := Action{ID: ActionSignOut, Label: "Sign Out"}
	login := Action{ID: ActionLogin, Label: "Login", Path: PathLogin}
	register := Action{ID: ActionRegister, Label: "Get Started", Path: PathRegister}

	if v.Authenticated {
		v.Links = append(v.Links, Link{Label: "Dashboard", Path: dashboard})
		label := name
		if label == "" {
			label = DefaultAccountLabel
		}
		v.Toolbar = []Action{{ID: ActionNotifications, Label: "Notifications"}, messages}
		v.Account = &AccountMenu{
			Label:       label,
			DisplayName: name,
			Items:       []Action{dashboardAction, messages, signOut},
		}
	} else {
		v.GuestActions = []Action{login, register}
	}

	if mobileOpen {
		v.MobileItems = []Action{courses}
		if v.Authenticated {
			v.MobileItems = append(v.MobileItems, dashboardAction, messages, signOut)
		} else {
			v.MobileItems = append(v.MobileItems, login, register)
		}
	}
	return v
}

// Activate runs the menu action with the given ID. It reports false for unknown actions.
func (b *Bar) Activate(actionID string) bool {
	switch actionID {
	case ActionSignOut:
		b.SignOut()
		return true
	case ActionCourses:
		b.Navigate(PathCourses)
	case ActionDashboard:
		b.Navigate(b.DashboardPath())
	case ActionMessages:
		b.Navigate(PathMessages)
	case ActionLogin:
		b.Navigate(PathLogin)
	case ActionRegister:
		b.Navigate(PathRegister)
	default:
		return false
	}
	return true
}
