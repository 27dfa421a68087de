// internal/app/features/donate/donate.go
package donate

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	errorsfeature "github.com/dalemusser/ecorecycle/internal/app/features/errors"
	"github.com/dalemusser/ecorecycle/internal/app/store/submissions"
	"github.com/dalemusser/ecorecycle/internal/app/system/formrelay"
	"github.com/dalemusser/ecorecycle/internal/app/system/formutil"
	"github.com/dalemusser/ecorecycle/internal/app/system/inputval"
	"github.com/dalemusser/ecorecycle/internal/app/system/network"
	"github.com/dalemusser/ecorecycle/internal/app/system/normalize"
	"github.com/dalemusser/ecorecycle/internal/app/system/timeouts"
	"github.com/dalemusser/ecorecycle/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MaxScreenshotBytes bounds the optional payment screenshot.
const MaxScreenshotBytes = 5 << 20

// DateLayout is how the donation date appears in the relayed email.
const DateLayout = "Monday, 2 January 2006"

// Messages shown above the form.
const (
	MsgRejected       = "Failed to record your donation. Please try again."
	MsgUnavailable    = "An error occurred. Please try again later."
	MsgTooLarge       = "Screenshot must be 5 MB or smaller."
	MsgScreenshotType = "Screenshot must be an image (PNG, JPEG, GIF or WebP) or a PDF."
)

// screenshotTypes are the accepted upload types, as sniffed from content.
var screenshotTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// Relay forwards form fields by email.
type Relay interface {
	Submit(ctx context.Context, fields map[string]any) (*formrelay.Response, error)
	TemplateID() string
}

// Config holds the donation settings.
type Config struct {
	CCEmail  string         // copied on every donation email
	UPIID    string         // shown with a pay link when set
	Location *time.Location // donation dates are local to it
}

// Handler provides donation handlers.
type Handler struct {
	relay   Relay
	subs    *submissions.Store
	cfg     Config
	receipt func() string
	now     func() time.Time
	errLog  *errorsfeature.ErrorLogger
	logger  *zap.Logger
}

// NewHandler creates a new donate Handler.
func NewHandler(relay Relay, subs *submissions.Store, cfg Config, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Handler{
		relay:   relay,
		subs:    subs,
		cfg:     cfg,
		receipt: NewReceiptID,
		now:     time.Now,
		errLog:  errLog,
		logger:  logger,
	}
}

// NewReceiptID returns a receipt id of the form ECO-nnnnnn.
func NewReceiptID() string {
	return fmt.Sprintf("ECO-%d", 100000+rand.IntN(900000))
}

// Impact describes what an amount pays for.
type Impact struct {
	Title string
	Body  string
}

// Impacts are listed above the form.
var Impacts = []Impact{
	{Title: "Education", Body: "₹500 funds a school workshop on e-waste management"},
	{Title: "Recycling", Body: "₹1000 recycles 50kg of electronic waste safely"},
	{Title: "Community", Body: "₹2500 sponsors a community collection drive"},
}

type donationInput struct {
	Name   string `json:"name" validate:"required,max=200" label:"Full Name"`
	Email  string `json:"email" validate:"required,email,max=254" label:"Email"`
	Amount string `json:"amount" validate:"required,amount" label:"Amount"`
}

// DonateVM is the view model for the donate page.
type DonateVM struct {
	formutil.Base
	Name      string
	Email     string
	Amount    string
	UPIID     string
	UPILink   template.URL
	Impacts   []Impact
	Sent      bool
	ReceiptID string
}

// Routes returns a chi.Router with donate routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.show)
	r.Post("/", h.handleSubmit)
	return r
}

func (h *Handler) newVM(r *http.Request) DonateVM {
	vm := DonateVM{
		Base:    formutil.NewBase(r, "Donate", "/"),
		UPIID:   h.cfg.UPIID,
		Impacts: Impacts,
	}
	if h.cfg.UPIID != "" {
		q := url.Values{}
		q.Set("pa", h.cfg.UPIID)
		q.Set("pn", "E-Waste")
		q.Set("tn", "Donation for E-Waste Management")
		q.Set("cu", "INR")
		vm.UPILink = template.URL("upi://pay?" + q.Encode())
	}
	return vm
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "donate/index", h.newVM(r))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	vm := h.newVM(r)

	r.Body = http.MaxBytesReader(w, r.Body, MaxScreenshotBytes+(1<<20))
	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			vm.SetError(MsgTooLarge)
			templates.Render(w, r, "donate/index", vm)
			return
		}
		h.errLog.Log(r, "failed to parse donation form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	in := donationInput{
		Name:   normalize.Name(r.FormValue("name")),
		Email:  normalize.Email(r.FormValue("email")),
		Amount: normalize.Amount(r.FormValue("amount")),
	}
	vm.Name, vm.Email, vm.Amount = in.Name, in.Email, in.Amount

	if res := inputval.Validate(in); res.HasErrors() {
		vm.SetValidation(res)
		templates.Render(w, r, "donate/index", vm)
		return
	}

	attachments, msg, err := readScreenshot(r)
	if err != nil {
		h.errLog.Log(r, "failed to read donation screenshot", err)
		vm.SetError(MsgUnavailable)
		templates.Render(w, r, "donate/index", vm)
		return
	}
	if msg != "" {
		vm.SetError(msg)
		vm.FieldErrors = map[string]string{"screenshot": msg}
		templates.Render(w, r, "donate/index", vm)
		return
	}

	receiptID := h.receipt()
	fields := h.relayFields(in, receiptID, attachments)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Remote(), h.logger, "relay donation")
	_, err = h.relay.Submit(ctx, fields)
	cancel()
	h.record(r, in.Email, receiptID, fields, err)

	if err != nil {
		var rejected *formrelay.RejectedError
		if errors.As(err, &rejected) {
			vm.SetError(MsgRejected)
		} else {
			if errors.Is(err, formrelay.ErrNoAccessKey) {
				h.errLog.Log(r, "donation form relay is not configured", err)
			}
			vm.SetError(MsgUnavailable)
		}
		templates.Render(w, r, "donate/index", vm)
		return
	}

	h.logger.Info("donation recorded",
		zap.String("receipt_id", receiptID),
		zap.String("amount", in.Amount))

	thanks := h.newVM(r)
	thanks.Title = "Thank You"
	thanks.Name = in.Name
	thanks.Email = in.Email
	thanks.Amount = in.Amount
	thanks.ReceiptID = receiptID
	thanks.Sent = true
	templates.Render(w, r, "donate/index", thanks)
}

// relayFields builds the relay submission for one donation.
func (h *Handler) relayFields(in donationInput, receiptID string, attachments []formrelay.Attachment) map[string]any {
	cc := make([]string, 0, 2)
	if h.cfg.CCEmail != "" {
		cc = append(cc, h.cfg.CCEmail)
	}
	cc = append(cc, in.Email)

	fields := map[string]any{
		"subject":     "New Donation from " + in.Name,
		"name":        in.Name,
		"email":       in.Email,
		"amount":      "₹" + in.Amount,
		"date":        h.now().In(h.cfg.Location).Format(DateLayout),
		"receipt_id":  receiptID,
		"attachments": attachments,
		"cc_emails":   cc,
	}
	if id := h.relay.TemplateID(); id != "" {
		fields["template_id"] = id
	}
	return fields
}

// readScreenshot returns the uploaded screenshot as an attachment. A
// non-empty message means the upload was refused.
func readScreenshot(r *http.Request) ([]formrelay.Attachment, string, error) {
	attachments := []formrelay.Attachment{}

	file, header, err := r.FormFile("screenshot")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return attachments, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	if header.Size > MaxScreenshotBytes {
		return nil, MsgTooLarge, nil
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxScreenshotBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return attachments, "", nil
	}
	if len(data) > MaxScreenshotBytes {
		return nil, MsgTooLarge, nil
	}

	contentType := http.DetectContentType(data)
	if !screenshotTypes[contentType] {
		return nil, MsgScreenshotType, nil
	}

	return append(attachments, formrelay.Attachment{
		Filename: filepath.Base(header.Filename),
		Content:  base64.StdEncoding.EncodeToString(data),
		Type:     contentType,
	}), "", nil
}

// record writes the attempt to the submission log without attachment
// content. Failures are logged only.
func (h *Handler) record(r *http.Request, email, receiptID string, fields map[string]any, err error) {
	if h.subs == nil {
		return
	}

	payload := make(map[string]any, len(fields))
	for k, v := range fields {
		payload[k] = v
	}
	if atts, ok := fields["attachments"].([]formrelay.Attachment); ok {
		names := make([]string, 0, len(atts))
		for _, a := range atts {
			names = append(names, a.Filename)
		}
		payload["attachments"] = names
	}

	sub := models.Submission{
		Kind:      models.SubmissionDonation,
		Reference: receiptID,
		Email:     email,
		Payload:   payload,
		Status:    models.SubmissionSent,
		ClientIP:  network.GetClientIP(r),
	}
	var rejected *formrelay.RejectedError
	switch {
	case err == nil:
	case errors.As(err, &rejected):
		sub.Status = models.SubmissionRejected
		sub.HTTPStatus = rejected.StatusCode
		sub.Error = err.Error()
	default:
		sub.Status = models.SubmissionFailed
		sub.Error = err.Error()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeouts.Store())
	defer cancel()
	if _, rerr := h.subs.Record(ctx, sub); rerr != nil {
		h.errLog.Log(r, "failed to record donation", rerr)
	}
}
