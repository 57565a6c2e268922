package echoapi

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/learnhub/core"
	"github.com/trezcool/learnhub/core/checkout"
	"github.com/trezcool/learnhub/core/course"
	"github.com/trezcool/learnhub/core/user"
	"github.com/trezcool/learnhub/services/metrics"
	notifysvc "github.com/trezcool/learnhub/services/notify"
)

// Checkout statuses
const (
	StatusOpen       = "open"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusClosed     = "closed"
)

const defaultSessionTTL = 30 * time.Minute

// checkoutSession is one checkout dialog opened by a user for a course.
type checkoutSession struct {
	id      string
	userID  string
	course  course.Course
	dialog  *checkout.Dialog
	notices *notifysvc.Queue

	mu         sync.Mutex
	active     bool
	succeeded  bool
	enrollment *course.Enrollment
	lastSeen   time.Time // guarded by the registry
}

// deactivate ends the session's share of the active checkouts. Only the first call reports true.
func (cs *checkoutSession) deactivate() bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if !cs.active {
		return false
	}
	cs.active = false
	return true
}

func (cs *checkoutSession) status() string {
	cs.mu.Lock()
	succeeded := cs.succeeded
	cs.mu.Unlock()

	switch {
	case cs.dialog.Form().Processing:
		return StatusProcessing
	case succeeded:
		return StatusCompleted
	case !cs.dialog.IsOpen():
		return StatusClosed
	default:
		return StatusOpen
	}
}

func (cs *checkoutSession) response() CheckoutResponse {
	status := cs.status()
	cs.mu.Lock()
	enrollment := cs.enrollment
	cs.mu.Unlock()

	return CheckoutResponse{
		ID:            cs.id,
		CourseID:      cs.course.ID,
		CourseTitle:   cs.dialog.CourseTitle(),
		Price:         cs.dialog.Price(),
		PayLabel:      cs.dialog.PayLabel(),
		Status:        status,
		Form:          cs.dialog.Form(),
		Enrollment:    enrollment,
		Notice:        checkout.DemoNotice,
		Notifications: cs.notices.Drain(),
	}
}

// checkoutRegistry keeps the checkout sessions of every user. A user has at most one session per course.
// Sessions not touched for ttl are evicted, unless a payment is processing.
type checkoutRegistry struct {
	latency   time.Duration
	ttl       time.Duration
	courseSvc *course.Service
	logger    core.Logger

	mu       sync.Mutex
	sessions map[string]*checkoutSession
}

func newCheckoutRegistry(conf core.CheckoutConfig, courseSvc *course.Service, logger core.Logger) *checkoutRegistry {
	ttl := conf.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &checkoutRegistry{
		latency:   conf.Latency,
		ttl:       ttl,
		courseSvc: courseSvc,
		logger:    logger,
		sessions:  make(map[string]*checkoutSession),
	}
}

// open starts a checkout of c for usr, replacing any previous session of usr for c.
func (r *checkoutRegistry) open(usr user.User, c course.Course) *checkoutSession {
	cs := &checkoutSession{
		id:     uuid.New().String(),
		userID: usr.ID,
		course: c,
		active: true,
	}
	cs.notices = notifysvc.NewQueue(notifysvc.NewLog(r.logger, map[string]interface{}{"checkout_id": cs.id}))
	cs.dialog = checkout.New(
		checkout.Props{
			Open: true,
			OnOpenChange: func(open bool) {
				cs.dialog.SetOpen(open)
			},
			CourseTitle:      c.Title,
			Price:            c.Price,
			OnPaymentSuccess: func() { r.paymentSucceeded(cs, usr) },
		},
		checkout.Options{Latency: r.latency, Notifier: cs.notices},
	)

	now := nowFunc()
	var replaced []*checkoutSession
	r.mu.Lock()
	for id, other := range r.sessions {
		if (other.userID == usr.ID && other.course.ID == c.ID) || r.expired(other, now) {
			replaced = append(replaced, other)
			delete(r.sessions, id)
		}
	}
	cs.lastSeen = now
	r.sessions[cs.id] = cs
	r.mu.Unlock()

	for _, other := range replaced {
		r.dispose(other)
	}
	metrics.CheckoutTotal.WithLabelValues(metrics.OutcomeOpened).Inc()
	metrics.ActiveCheckouts.Inc()
	return cs
}

// paymentSucceeded enrolls the user, unless the session was disposed of first.
func (r *checkoutRegistry) paymentSucceeded(cs *checkoutSession, usr user.User) {
	if !cs.deactivate() {
		return
	}
	metrics.CheckoutTotal.WithLabelValues(metrics.OutcomeSucceeded).Inc()
	metrics.ActiveCheckouts.Dec()
	cs.mu.Lock()
	cs.succeeded = true
	cs.mu.Unlock()

	e, err := r.courseSvc.Enroll(context.Background(), usr, cs.course.ID)
	if err != nil {
		r.logger.Error("enrolling after payment", err, usr, map[string]interface{}{"course_id": cs.course.ID})
		cs.notices.Error("Could not complete your enrollment, please contact support")
		return
	}

	cs.mu.Lock()
	cs.enrollment = &e
	cs.mu.Unlock()
}

// get returns the session id of userID and marks it as seen.
func (r *checkoutRegistry) get(id, userID string) (*checkoutSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cs, ok := r.sessions[id]
	if !ok || cs.userID != userID {
		return nil, false
	}
	cs.lastSeen = nowFunc()
	return cs, true
}

// expired must be called with r.mu held.
func (r *checkoutRegistry) expired(cs *checkoutSession, now time.Time) bool {
	return now.Sub(cs.lastSeen) >= r.ttl && !cs.dialog.Form().Processing
}

// sweep evicts the expired sessions and returns how many there were.
func (r *checkoutRegistry) sweep() int {
	now := nowFunc()
	var expired []*checkoutSession
	r.mu.Lock()
	for id, cs := range r.sessions {
		if r.expired(cs, now) {
			expired = append(expired, cs)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, cs := range expired {
		r.dispose(cs)
	}
	return len(expired)
}

func (r *checkoutRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// remove disposes of the session id of userID.
func (r *checkoutRegistry) remove(id, userID string) bool {
	r.mu.Lock()
	cs, ok := r.sessions[id]
	if ok && cs.userID == userID {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok || cs.userID != userID {
		return false
	}
	r.dispose(cs)
	return true
}

// closeUser disposes of every session of userID and returns how many there were.
func (r *checkoutRegistry) closeUser(userID string) int {
	var closed []*checkoutSession
	r.mu.Lock()
	for id, cs := range r.sessions {
		if cs.userID == userID {
			closed = append(closed, cs)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, cs := range closed {
		r.dispose(cs)
	}
	return len(closed)
}

// run sweeps the registry every interval until ctx is done.
func (r *checkoutRegistry) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.sweep(); n > 0 {
				r.logger.Debug("evicted idle checkouts", map[string]interface{}{"count": n})
			}
		}
	}
}

func (r *checkoutRegistry) closeAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*checkoutSession)
	r.mu.Unlock()

	for _, cs := range sessions {
		r.dispose(cs)
	}
}

func (r *checkoutRegistry) dispose(cs *checkoutSession) {
	cancelled := cs.deactivate()
	cs.dialog.Close()
	if cancelled {
		metrics.CheckoutTotal.WithLabelValues(metrics.OutcomeCancelled).Inc()
		metrics.ActiveCheckouts.Dec()
	}
}

type CheckoutResponse struct {
	ID            string              `json:"id"`
	CourseID      string              `json:"course_id"`
	CourseTitle   string              `json:"course_title"`
	Price         float64             `json:"price"`
	PayLabel      string              `json:"pay_label"`
	Status        string              `json:"status"`
	Form          checkout.Form       `json:"form"`
	Enrollment    *course.Enrollment  `json:"enrollment,omitempty"`
	Notice        string              `json:"notice"`
	Notifications []notifysvc.Message `json:"notifications"`
}
