package pickup

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/ecorecycle/internal/app/store/drafts"
	"github.com/dalemusser/ecorecycle/internal/app/store/submissions"
	"github.com/dalemusser/ecorecycle/internal/domain/models"
	"github.com/dalemusser/ecorecycle/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestShow_StartsDraft(t *testing.T) {
	env := newTestEnv(t)

	rec := env.browser.get("/pickup")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Your Details") {
		t.Error("expected the contact step")
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie holding the draft")
	}

	st := env.browser.state(t)
	if st.Step != models.StepContact || st.Draft.PickupType != models.DefaultPickupType {
		t.Errorf("state = %+v", st)
	}
}

func TestWizard_SchedulesPickup(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser
	date := env.openDate()

	assertRedirect(t, b.post("/pickup/next", contactForm()), "/pickup")

	rec := b.get("/pickup")
	if !strings.Contains(rec.Body.String(), "Pickup Items") {
		t.Fatal("expected the items step after step 1")
	}

	assertRedirect(t, b.post("/pickup/next", url.Values{"items": {"2 laptops\n1 TV"}}), "/pickup")
	if st := b.state(t); st.Step != models.StepSchedule || st.Progress != 100 {
		t.Fatalf("state = %+v, want step 3", st)
	}

	assertRedirect(t, b.post("/pickup/submit", url.Values{
		"date":     {date},
		"timeSlot": {"morning"},
	}), "/pickup/confirmation")

	got := env.backend.received()
	if len(got) != 1 {
		t.Fatalf("backend received %d requests, want 1", len(got))
	}
	if got[0].Date != date || got[0].TimeSlot != "morning" {
		t.Errorf("payload date/slot = %q/%q, want %q/morning", got[0].Date, got[0].TimeSlot, date)
	}
	if got[0].Zip != "411001" || got[0].PickupType != "residential" {
		t.Errorf("payload = %+v", got[0])
	}

	rec = b.get("/pickup/confirmation")
	if rec.Code != http.StatusOK {
		t.Fatalf("confirmation status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Pickup Scheduled!", "12 Green St, Pune, MH 411001", "2 laptops\n1 TV"} {
		if !strings.Contains(body, want) {
			t.Errorf("confirmation missing %q", want)
		}
	}

	// The confirmation is shown once; the draft is gone afterwards.
	assertRedirect(t, b.get("/pickup/confirmation"), "/pickup")
	if st := b.state(t); st.Step != models.StepContact || st.Draft.Name != "" {
		t.Errorf("state after confirmation = %+v, want a fresh draft", st)
	}

	mails := env.mail.emails()
	if len(mails) != 1 || mails[0].To != "asha@example.com" {
		t.Fatalf("emails = %+v", mails)
	}
	if mails[0].Subject != "Your EcoRecycle pickup is scheduled" {
		t.Errorf("subject = %q", mails[0].Subject)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	log, err := submissions.New(env.db).ListRecent(ctx, models.SubmissionPickup, 10, 1)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(log) != 1 || log[0].Status != models.SubmissionSent || log[0].HTTPStatus != http.StatusOK {
		t.Errorf("submission log = %+v", log)
	}
}

func TestNext_IncompleteStep(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser

	rec := b.post("/pickup/next", url.Values{"name": {"Asha Rao"}, "city": {"Pune"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 re-render", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Email is required.") {
		t.Error("expected the missing email message")
	}
	if !strings.Contains(body, `value="Asha Rao"`) {
		t.Error("expected the typed name to be echoed back")
	}

	st := b.state(t)
	if st.Step != models.StepContact {
		t.Errorf("step = %d, want 1", st.Step)
	}
	if st.Draft.Name != "Asha Rao" || st.Draft.City != "Pune" {
		t.Errorf("draft = %+v, want merged values kept", st.Draft)
	}
}

func TestBack(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser

	assertRedirect(t, b.post("/pickup/next", contactForm()), "/pickup")
	assertRedirect(t, b.post("/pickup/back", url.Values{"items": {"1 printer"}}), "/pickup")

	st := b.state(t)
	if st.Step != models.StepContact {
		t.Errorf("step = %d, want 1", st.Step)
	}
	if st.Draft.Items != "1 printer" || st.Draft.Name != "Asha Rao" {
		t.Errorf("draft = %+v", st.Draft)
	}

	// Back from step 1 stays on step 1.
	assertRedirect(t, b.post("/pickup/back", url.Values{}), "/pickup")
	if st := b.state(t); st.Step != models.StepContact {
		t.Errorf("step = %d, want 1", st.Step)
	}
}

func toSchedule(t *testing.T, b *browser) {
	t.Helper()
	assertRedirect(t, b.post("/pickup/next", contactForm()), "/pickup")
	assertRedirect(t, b.post("/pickup/next", url.Values{"items": {"3 phones"}}), "/pickup")
}

func TestSubmit_BackendRejects(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser
	env.backend.setStatus(http.StatusInternalServerError)
	toSchedule(t, b)

	rec := b.post("/pickup/submit", url.Values{"date": {env.openDate()}, "timeSlot": {"afternoon"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 re-render", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), MsgRejected) {
		t.Errorf("expected %q", MsgRejected)
	}

	st := b.state(t)
	if st.Step != models.StepSchedule || st.Submitting {
		t.Errorf("state = %+v, want step 3 and not submitting", st)
	}
	if st.Draft.Items != "3 phones" || st.Draft.TimeSlot != "afternoon" {
		t.Errorf("draft = %+v, want it intact", st.Draft)
	}
	if n := len(env.mail.emails()); n != 0 {
		t.Errorf("sent %d emails, want 0", n)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	log, err := submissions.New(env.db).ListRecent(ctx, models.SubmissionPickup, 10, 1)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(log) != 1 || log[0].Status != models.SubmissionRejected || log[0].HTTPStatus != http.StatusInternalServerError {
		t.Errorf("submission log = %+v", log)
	}
}

func TestSubmit_BackendUnreachable(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser
	toSchedule(t, b)
	env.server.Close()

	rec := b.post("/pickup/submit", url.Values{"date": {env.openDate()}, "timeSlot": {"evening"}})
	if !strings.Contains(rec.Body.String(), MsgUnavailable) {
		t.Errorf("expected %q", MsgUnavailable)
	}
	if st := b.state(t); st.Step != models.StepSchedule {
		t.Errorf("step = %d, want 3", st.Step)
	}
}

func TestSubmit_SundayRejected(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser
	toSchedule(t, b)

	sunday := env.cal.NextOpenDays(time.Now(), 1)[0]
	for sunday.Weekday() != time.Sunday {
		sunday = sunday.AddDate(0, 0, 1)
	}

	rec := b.post("/pickup/submit", url.Values{"date": {sunday.Format("2006-01-02")}, "timeSlot": {"morning"}})
	if !strings.Contains(rec.Body.String(), "Pickups are not available on Sundays.") {
		t.Error("expected the Sunday message")
	}
	if n := len(env.backend.received()); n != 0 {
		t.Errorf("backend received %d requests, want 0", n)
	}
}

func TestSubmit_SecondSubmitRefusedWhileInFlight(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser
	toSchedule(t, b)

	env.backend.mu.Lock()
	env.backend.arrived = make(chan struct{}, 1)
	env.backend.hold = make(chan struct{})
	env.backend.mu.Unlock()

	first := b.prepare(testutil.NewFormRequest("/pickup/submit", url.Values{
		"date": {env.openDate()}, "timeSlot": {"morning"},
	}))
	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		rec := httptest.NewRecorder()
		b.handler.ServeHTTP(rec, first)
		done <- rec
	}()
	<-env.backend.arrived

	second := b.post("/pickup/submit", url.Values{"date": {env.openDate()}, "timeSlot": {"morning"}})
	if !strings.Contains(second.Body.String(), MsgBusy) {
		t.Errorf("second submit: expected %q", MsgBusy)
	}
	if rec := b.postJSON("/api/pickup/back", `{"fields":{}}`); rec.Code != http.StatusConflict {
		t.Errorf("back while submitting: status = %d, want 409", rec.Code)
	}

	close(env.backend.hold)
	assertRedirect(t, <-done, "/pickup/confirmation")

	if n := len(env.backend.received()); n != 1 {
		t.Errorf("backend received %d requests, want 1", n)
	}
}

// dropDraftDuringSubmit makes the backend wait until the stored draft is
// deleted, so the submission cannot be written back.
func dropDraftDuringSubmit(t *testing.T, env *testEnv) {
	t.Helper()
	env.backend.mu.Lock()
	env.backend.arrived = make(chan struct{}, 1)
	env.backend.hold = make(chan struct{})
	env.backend.mu.Unlock()

	go func() {
		<-env.backend.arrived
		ctx, cancel := testutil.TestContext()
		defer cancel()
		if _, err := env.db.Collection(drafts.Collection).DeleteMany(ctx, bson.M{}); err != nil {
			t.Errorf("delete drafts: %v", err)
		}
		close(env.backend.hold)
	}()
}

func TestSubmit_ScheduledWhenDraftCannotBeUpdated(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser
	toSchedule(t, b)
	dropDraftDuringSubmit(t, env)

	rec := b.post("/pickup/submit", url.Values{"date": {env.openDate()}, "timeSlot": {"morning"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Pickup Scheduled!") || !strings.Contains(body, "3 phones") {
		t.Error("expected the confirmation page for the submitted pickup")
	}
	if strings.Contains(body, MsgStoreFailed) {
		t.Errorf("unexpected %q", MsgStoreFailed)
	}
	if n := len(env.backend.received()); n != 1 {
		t.Errorf("backend received %d requests, want 1", n)
	}
	if n := len(env.mail.emails()); n != 1 {
		t.Errorf("sent %d emails, want 1", n)
	}
	if st := b.state(t); st.Step != models.StepContact {
		t.Errorf("step = %d, want a fresh draft", st.Step)
	}
}

func TestAPI_SubmitScheduledWhenDraftCannotBeUpdated(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser
	toSchedule(t, b)
	dropDraftDuringSubmit(t, env)

	rec := b.postJSON("/api/pickup/submit", `{"fields":{"date":"`+env.openDate()+`","timeSlot":"evening"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	st := decodeState(t, rec)
	if st.Step != models.StepConfirmation || st.Message != "Pickup scheduled." {
		t.Errorf("response = %+v", st)
	}
	if n := len(env.backend.received()); n != 1 {
		t.Errorf("backend received %d requests, want 1", n)
	}
}

func TestSubmit_ForwardsSessionToken(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser
	toSchedule(t, b)

	req := testutil.NewFormRequest("/pickup/submit", url.Values{"date": {env.openDate()}, "timeSlot": {"morning"}})
	assertRedirect(t, b.do(testutil.WithUser(req, testutil.Visitor())), "/pickup/confirmation")

	env.backend.mu.Lock()
	defer env.backend.mu.Unlock()
	if len(env.backend.auth) != 1 || env.backend.auth[0] != "Bearer test-token" {
		t.Errorf("Authorization = %v", env.backend.auth)
	}
}

func TestReset(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser

	assertRedirect(t, b.post("/pickup/next", contactForm()), "/pickup")
	assertRedirect(t, b.post("/pickup/reset", url.Values{}), "/pickup")

	st := b.state(t)
	if st.Step != models.StepContact || st.Draft.Name != "" {
		t.Errorf("state after reset = %+v", st)
	}
}

func TestConfirmation_WithoutSubmission(t *testing.T) {
	env := newTestEnv(t)

	assertRedirect(t, env.browser.get("/pickup/confirmation"), "/pickup")

	env.browser.get("/pickup")
	assertRedirect(t, env.browser.get("/pickup/confirmation"), "/pickup")
}
