// Package checkout implements the course checkout dialog.
//
// This is a demo payment system: card details are normalized and lightly
// validated, then a fixed simulated latency elapses before the payment is
// declared successful. No card network is contacted and nothing is stored.
package checkout

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/learnhub/core"
)

const (
	DefaultLatency = 2 * time.Second

	SuccessNotice = "Payment successful! Enrolling you in the course..."
	DemoNotice    = "Your payment information is secure and encrypted. This is a demo payment system."
)

var (
	// errors
	ErrIncompleteForm    = errors.New("please fill in all payment details")
	ErrInvalidCardNumber = errors.New("invalid card number")
	ErrProcessing        = errors.New("payment is being processed")
	ErrClosed            = errors.New("checkout dialog is closed")

	errorNotices = map[error]string{
		ErrIncompleteForm:    "Please fill in all payment details",
		ErrInvalidCardNumber: "Invalid card number",
	}

	afterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) } // mockable
)

// Timer is the pending simulated payment.
type Timer interface {
	Stop() bool
}

type (
	// Props are the inputs owned by whoever displays the dialog.
	Props struct {
		Open             bool
		OnOpenChange     func(open bool)
		CourseTitle      string
		Price            float64
		OnPaymentSuccess func()
	}

	Options struct {
		Latency  time.Duration // defaults to DefaultLatency
		Notifier core.Notifier
	}

	Form struct {
		CardNumber     string `json:"card_number"`
		ExpiryDate     string `json:"expiry_date"`
		CVV            string `json:"cvv"`
		CardholderName string `json:"cardholder_name"`
		Processing     bool   `json:"processing"`
	}
)

func (f Form) validate() error {
	if f.CardNumber == "" || f.ExpiryDate == "" || f.CVV == "" || f.CardholderName == "" {
		return ErrIncompleteForm
	}
	digits := whitespaceRegex.ReplaceAllString(f.CardNumber, "")
	if len(digits) != cardNumberDigits || nonDigitRegex.MatchString(digits) {
		return ErrInvalidCardNumber
	}
	return nil
}

// Dialog holds the state of one checkout dialog.
// Every pending timer is tied to a token; closing or reopening the dialog bumps the token so a timer that
// already fired cannot complete a payment for a dialog that is gone.
type Dialog struct {
	props    Props
	latency  time.Duration
	notifier core.Notifier

	mu       sync.Mutex
	open     bool
	disposed bool
	form     Form
	timer    Timer
	token    uint64
}

func New(props Props, opts Options) *Dialog {
	d := &Dialog{
		props:    props,
		latency:  opts.Latency,
		notifier: opts.Notifier,
		open:     props.Open,
	}
	if d.latency <= 0 {
		d.latency = DefaultLatency
	}
	if d.notifier == nil {
		d.notifier = nopNotifier{}
	}
	return d
}

func (d *Dialog) CourseTitle() string { return d.props.CourseTitle }
func (d *Dialog) Price() float64      { return d.props.Price }

// PayLabel is the caption of the submit action, e.g. "Pay $49.99".
func (d *Dialog) PayLabel() string {
	return "Pay $" + strconv.FormatFloat(d.props.Price, 'f', -1, 64)
}

func (d *Dialog) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *Dialog) Form() Form {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.form
}

// SetOpen applies the externally controlled open flag.
// Closing cancels a pending payment; reopening starts from an empty form.
func (d *Dialog) SetOpen(open bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.disposed || open == d.open {
		return
	}
	d.stopTimer()
	d.form = Form{}
	d.open = open
}

// Cancel asks for the dialog to be closed. It is refused while a payment is processing.
func (d *Dialog) Cancel() error {
	d.mu.Lock()
	if err := d.checkEditable(); err != nil {
		d.mu.Unlock()
		return err
	}
	d.mu.Unlock()

	d.requestClose()
	return nil
}

// Close disposes of the dialog, cancelling any pending payment.
// No callback is dispatched once Close has returned; one already running is not interrupted.
func (d *Dialog) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopTimer()
	d.form.Processing = false
	d.open = false
	d.disposed = true
}

func (d *Dialog) SetCardholderName(value string) (Form, error) {
	return d.edit(func(f *Form) { f.CardholderName = value })
}

func (d *Dialog) SetCardNumber(value string) (Form, error) {
	return d.edit(func(f *Form) { f.CardNumber = FormatCardNumber(value) })
}

func (d *Dialog) SetExpiryDate(value string) (Form, error) {
	return d.edit(func(f *Form) { f.ExpiryDate = FormatExpiryDate(value) })
}

func (d *Dialog) SetCVV(value string) (Form, error) {
	return d.edit(func(f *Form) { f.CVV = FilterCVV(value) })
}

// Submit validates the form and starts the simulated payment.
// Validation failures are reported to the Notifier and returned; the form is left untouched.
func (d *Dialog) Submit() error {
	d.mu.Lock()
	if err := d.checkEditable(); err != nil {
		d.mu.Unlock()
		return err
	}
	if err := d.form.validate(); err != nil {
		d.mu.Unlock()
		d.notifier.Error(errorNotices[err])
		return err
	}

	d.form.Processing = true
	d.token++
	token := d.token
	d.timer = afterFunc(d.latency, func() { d.complete(token) })
	d.mu.Unlock()
	return nil
}

func (d *Dialog) complete(token uint64) {
	d.mu.Lock()
	if d.disposed || token != d.token || !d.form.Processing {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.form = Form{}
	d.mu.Unlock()

	if !d.dispatch(func() { d.notifier.Success(SuccessNotice) }) {
		return
	}
	if d.props.OnPaymentSuccess != nil && !d.dispatch(d.props.OnPaymentSuccess) {
		return
	}
	d.dispatch(d.requestClose)
}

// dispatch runs fn unless the dialog has been disposed, and reports whether it ran.
// fn runs outside d.mu, so it may call back into the dialog (even Close).
func (d *Dialog) dispatch(fn func()) bool {
	d.mu.Lock()
	disposed := d.disposed
	d.mu.Unlock()
	if disposed {
		return false
	}
	fn()
	return true
}

func (d *Dialog) edit(apply func(f *Form)) (Form, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkEditable(); err != nil {
		return d.form, err
	}
	apply(&d.form)
	return d.form, nil
}

// checkEditable must be called with d.mu held.
func (d *Dialog) checkEditable() error {
	if d.disposed || !d.open {
		return ErrClosed
	}
	if d.form.Processing {
		return ErrProcessing
	}
	return nil
}

// stopTimer must be called with d.mu held.
func (d *Dialog) stopTimer() {
	d.token++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// requestClose hands the close request to the owner of the open flag, or closes the dialog when nobody owns it.
func (d *Dialog) requestClose() {
	if d.props.OnOpenChange != nil {
		d.props.OnOpenChange(false)
		return
	}
	d.SetOpen(false)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

// IsValidationError reports whether err was raised by form validation.
func IsValidationError(err error) bool {
	_, ok := errorNotices[err]
	return ok
}

// Notice returns the user facing text of a checkout error.
func Notice(err error) string {
	if msg, ok := errorNotices[err]; ok {
		return msg
	}
	msg := err.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
