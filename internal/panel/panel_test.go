package panel_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pointsdash/pointsdash/internal/api"
	"github.com/pointsdash/pointsdash/internal/model"
	"github.com/pointsdash/pointsdash/internal/notify"
	"github.com/pointsdash/pointsdash/internal/panel"
	"github.com/pointsdash/pointsdash/internal/stub/admin"
	stubapi "github.com/pointsdash/pointsdash/internal/stub/api"
	"github.com/pointsdash/pointsdash/internal/stub/server"
	"github.com/pointsdash/pointsdash/internal/stub/store"
	"github.com/pointsdash/pointsdash/internal/testutil"
)

// rewardsBackend bundles everything a panel test needs: a client logged in
// as the seed user, a notification recorder, the admin control plane, and
// the backend URL for building extra clients.
type rewardsBackend struct {
	Client *api.Client
	Rec    *notify.Recorder
	Admin  *testutil.AdminClient
	URL    string
}

// setupRewards starts a seeded stub backend.
func setupRewards(t *testing.T) *rewardsBackend {
	t.Helper()
	memStore := store.New()
	memStore.SeedDefaults()
	stub := server.New(&server.Config{Name: "rewards-backend-test"})
	handler := stubapi.NewHandler(memStore, stub.Middleware())
	handler.Routes(stub.Router)
	adminHandler := admin.NewHandler(memStore, stub.Middleware(), memStore.Clock)
	adminHandler.Routes(stub.Router)
	srv := httptest.NewServer(stub.Router)
	t.Cleanup(srv.Close)

	token, err := stubapi.MintToken(store.SeedUserEmail, time.Hour)
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}
	return &rewardsBackend{
		Client: api.NewClient(srv.URL, api.NewSession(token)),
		Rec:    &notify.Recorder{},
		Admin:  testutil.NewAdminClient(testutil.NewStubClient(t, srv)),
		URL:    srv.URL,
	}
}

// countingBackend returns a client whose backend counts requests and answers
// 200 {} to everything. Used to prove local validation never reaches the
// network.
func countingBackend(t *testing.T) (*api.Client, *int) {
	t.Helper()
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("{}"))
	}))
	t.Cleanup(srv.Close)
	token, err := stubapi.MintToken(store.SeedUserEmail, time.Hour)
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}
	return api.NewClient(srv.URL, api.NewSession(token)), &hits
}

func assertDestructive(t *testing.T, rec *notify.Recorder, description string) {
	t.Helper()
	last := rec.Last()
	if last.Severity != notify.SeverityDestructive {
		t.Errorf("expected destructive notification, got %+v", last)
	}
	if last.Description != description {
		t.Errorf("expected description %q, got %q", description, last.Description)
	}
}

// --- Profile ---

func TestProfileLoad(t *testing.T) {
	b := setupRewards(t)
	p := panel.NewProfilePanel(b.Client, b.Rec)

	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if p.Phase() != panel.PhaseReady {
		t.Errorf("expected ready, got %v", p.Phase())
	}
	u := p.User()
	if u == nil {
		t.Fatal("expected a loaded profile")
	}
	if u.Email != store.SeedUserEmail {
		t.Errorf("expected %s, got %s", store.SeedUserEmail, u.Email)
	}
	if u.PointsBalance != 12500 {
		t.Errorf("expected balance 12500, got %d", u.PointsBalance)
	}
	if b.Rec.Count() != 0 {
		t.Errorf("expected no notifications on success, got %d", b.Rec.Count())
	}
}

func TestProfileLoadWithoutSession(t *testing.T) {
	b := setupRewards(t)
	p := panel.NewProfilePanel(api.NewClient(b.URL, api.NewSession("")), b.Rec)

	err := p.Load(context.Background())
	if err == nil {
		t.Fatal("expected load to fail without a session")
	}
	if api.KindOf(err) != api.KindUnauthorized {
		t.Errorf("expected unauthorized, got %v", api.KindOf(err))
	}
	if p.Phase() != panel.PhaseFailed {
		t.Errorf("expected failed, got %v", p.Phase())
	}
	assertDestructive(t, b.Rec, "You are not logged in or your session has expired.")
}

func TestProfileLoadBackendFault(t *testing.T) {
	b := setupRewards(t)
	b.Admin.InjectFault("/users/me", map[string]any{"status_code": 500}).AssertStatus(200)

	p := panel.NewProfilePanel(b.Client, b.Rec)
	if err := p.Load(context.Background()); err == nil {
		t.Fatal("expected load to fail")
	}
	if p.Phase() != panel.PhaseFailed {
		t.Errorf("expected failed, got %v", p.Phase())
	}
	if p.User() != nil {
		t.Error("expected no profile after a failed load")
	}
	if b.Rec.Last().Severity != notify.SeverityDestructive {
		t.Errorf("expected destructive notification, got %+v", b.Rec.Last())
	}

	// Clearing the fault makes the panel recoverable via a fresh Load.
	b.Admin.RemoveFault("/users/me").AssertStatus(200)
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if p.Phase() != panel.PhaseReady {
		t.Errorf("expected ready after reload, got %v", p.Phase())
	}
}

// --- Surveys ---

func TestSurveysLoadFiltersInactive(t *testing.T) {
	b := setupRewards(t)
	p := panel.NewSurveysPanel(b.Client, b.Rec)

	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	surveys := p.Surveys()
	if len(surveys) != 3 {
		t.Fatalf("expected 3 active surveys, got %d", len(surveys))
	}
	for _, s := range surveys {
		if !s.IsActive {
			t.Errorf("inactive survey %s leaked through", s.ID)
		}
	}
}

func TestSurveysLoadWithoutSession(t *testing.T) {
	// The catalog is public; an unauthenticated client can read it.
	b := setupRewards(t)
	p := panel.NewSurveysPanel(api.NewClient(b.URL, api.NewSession("")), b.Rec)

	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(p.Surveys()) != 3 {
		t.Errorf("expected 3 surveys, got %d", len(p.Surveys()))
	}
}

func TestSurveysEmptyCatalog(t *testing.T) {
	b := setupRewards(t)
	b.Admin.LoadState(map[string]any{"surveys": map[string]any{}}).AssertStatus(200)

	p := panel.NewSurveysPanel(b.Client, b.Rec)
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if p.Phase() != panel.PhaseReady {
		t.Errorf("expected ready, got %v", p.Phase())
	}
	if len(p.Surveys()) != 0 {
		t.Errorf("expected empty catalog, got %d surveys", len(p.Surveys()))
	}
}

// --- Change password ---

func TestChangePasswordMismatchSkipsNetwork(t *testing.T) {
	client, hits := countingBackend(t)
	rec := &notify.Recorder{}
	p := panel.NewChangePasswordPanel(client, rec)
	p.CurrentPassword = store.SeedUserPassword
	p.NewPassword = "new-secret"
	p.ConfirmNewPassword = "different-secret"

	err := p.Submit(context.Background())
	if api.KindOf(err) != api.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if *hits != 0 {
		t.Errorf("expected no network calls, got %d", *hits)
	}
	if p.Phase() != panel.PhaseReady {
		t.Errorf("expected ready, got %v", p.Phase())
	}
	if p.NewPassword != "new-secret" {
		t.Error("fields must stay intact after a rejected submit")
	}
	assertDestructive(t, rec, "New passwords do not match.")
}

func TestChangePasswordFlow(t *testing.T) {
	b := setupRewards(t)
	p := panel.NewChangePasswordPanel(b.Client, b.Rec)

	// Wrong current password: backend message surfaces, fields survive.
	p.CurrentPassword = "wrong-horse"
	p.NewPassword = "fresh-secret"
	p.ConfirmNewPassword = "fresh-secret"
	if err := p.Submit(context.Background()); err == nil {
		t.Fatal("expected submit to fail")
	}
	assertDestructive(t, b.Rec, "Current password is incorrect.")
	if p.CurrentPassword != "wrong-horse" {
		t.Error("fields must stay intact after a failed submit")
	}

	// Correct current password: success clears every field.
	b.Rec.Reset()
	p.CurrentPassword = store.SeedUserPassword
	if err := p.Submit(context.Background()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if b.Rec.Count() != 1 {
		t.Fatalf("expected exactly one notification, got %d", b.Rec.Count())
	}
	if b.Rec.Last().Severity != notify.SeveritySuccess {
		t.Errorf("expected success notification, got %+v", b.Rec.Last())
	}
	if b.Rec.Last().Description != "Password changed successfully!" {
		t.Errorf("unexpected description %q", b.Rec.Last().Description)
	}
	if p.CurrentPassword != "" || p.NewPassword != "" || p.ConfirmNewPassword != "" {
		t.Error("expected all fields cleared after success")
	}

	// The old password no longer verifies.
	b.Rec.Reset()
	p.CurrentPassword = store.SeedUserPassword
	p.NewPassword = "another-secret"
	p.ConfirmNewPassword = "another-secret"
	if err := p.Submit(context.Background()); err == nil {
		t.Fatal("expected old password to be rejected")
	}
	assertDestructive(t, b.Rec, "Current password is incorrect.")
}

// --- Change PIN ---

func TestChangePINRejectsMalformed(t *testing.T) {
	client, hits := countingBackend(t)
	rec := &notify.Recorder{}
	p := panel.NewChangePINPanel(client, rec)

	for _, pin := range []string{"12a4", "123", "12345", "", " 1234"} {
		rec.Reset()
		p.CurrentPIN = store.SeedUserPIN
		p.NewPIN = pin
		err := p.Submit(context.Background())
		if api.KindOf(err) != api.KindValidation {
			t.Errorf("pin %q: expected validation error, got %v", pin, err)
		}
		assertDestructive(t, rec, "New PIN must be a 4-digit number.")
	}
	if *hits != 0 {
		t.Errorf("expected no network calls, got %d", *hits)
	}
}

func TestChangePINFlow(t *testing.T) {
	b := setupRewards(t)
	p := panel.NewChangePINPanel(b.Client, b.Rec)

	// Leading zeros are a valid PIN.
	p.CurrentPIN = store.SeedUserPIN
	p.NewPIN = "0000"
	if err := p.Submit(context.Background()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if b.Rec.Last().Description != "PIN changed successfully!" {
		t.Errorf("unexpected description %q", b.Rec.Last().Description)
	}
	if p.CurrentPIN != "" || p.NewPIN != "" {
		t.Error("expected fields cleared after success")
	}

	// The old PIN no longer verifies.
	b.Rec.Reset()
	p.CurrentPIN = store.SeedUserPIN
	p.NewPIN = "5678"
	if err := p.Submit(context.Background()); err == nil {
		t.Fatal("expected old PIN to be rejected")
	}
	assertDestructive(t, b.Rec, "Current PIN is incorrect.")
}

// --- Redeem ---

func TestRedeemRateLabels(t *testing.T) {
	b := setupRewards(t)
	p := panel.NewRedeemPanel(b.Client, b.Rec)

	if p.BitcoinRateLabel() != "Loading..." || p.GiftCardRateLabel() != "Loading..." {
		t.Error("expected placeholder labels before load")
	}

	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := p.BitcoinRateLabel(); got != "20000 pts / $100.00" {
		t.Errorf("unexpected bitcoin label %q", got)
	}
	if got := p.GiftCardRateLabel(); got != "10000 pts / $100.00" {
		t.Errorf("unexpected gift card label %q", got)
	}
}

func TestRedeemRejectsBadInputSkipsNetwork(t *testing.T) {
	client, hits := countingBackend(t)
	rec := &notify.Recorder{}
	p := panel.NewRedeemPanel(client, rec)

	for _, amount := range []string{"0", "-5", "abc", ""} {
		rec.Reset()
		p.Amount = amount
		p.Destination = "bc1q-test-wallet"
		err := p.Submit(context.Background())
		if api.KindOf(err) != api.KindValidation {
			t.Errorf("amount %q: expected validation error, got %v", amount, err)
		}
		assertDestructive(t, rec, "Please enter a valid amount greater than zero.")
	}

	rec.Reset()
	p.Amount = "500"
	p.Destination = "   "
	err := p.Submit(context.Background())
	if api.KindOf(err) != api.KindValidation {
		t.Errorf("expected validation error for blank destination, got %v", err)
	}
	assertDestructive(t, rec, "Please enter a destination (wallet or email).")

	if *hits != 0 {
		t.Errorf("expected no network calls, got %d", *hits)
	}
}

func TestRedeemBitcoinDebitsBalance(t *testing.T) {
	b := setupRewards(t)
	p := panel.NewRedeemPanel(b.Client, b.Rec)
	refreshed := false
	p.OnSuccess = func() { refreshed = true }

	p.Amount = "2000"
	p.Destination = "bc1q-test-wallet"
	if err := p.Submit(context.Background()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !refreshed {
		t.Error("expected OnSuccess callback")
	}
	if b.Rec.Count() != 1 || b.Rec.Last().Severity != notify.SeveritySuccess {
		t.Errorf("expected one success notification, got %+v", b.Rec.Notifications)
	}
	if p.Amount != "" || p.Destination != "" {
		t.Error("expected amount and destination cleared after success")
	}
	if p.Type != model.RedeemBitcoin {
		t.Error("expected the selected type to survive a submit")
	}

	profile := panel.NewProfilePanel(b.Client, b.Rec)
	if err := profile.Load(context.Background()); err != nil {
		t.Fatalf("profile load failed: %v", err)
	}
	if got := profile.User().PointsBalance; got != 10500 {
		t.Errorf("expected balance 10500 after redeeming 2000, got %d", got)
	}
}

func TestRedeemGiftCardDestination(t *testing.T) {
	b := setupRewards(t)
	p := panel.NewRedeemPanel(b.Client, b.Rec)
	p.Type = model.RedeemGiftCard
	p.Amount = "1000"
	p.Destination = "gift@example.com"

	if err := p.Submit(context.Background()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// The backend recorded the destination under the gift card's field.
	b.Admin.GetState().AssertStatus(200).AssertBodyContains("gift@example.com")
}

func TestRedeemInsufficientBalance(t *testing.T) {
	b := setupRewards(t)
	p := panel.NewRedeemPanel(b.Client, b.Rec)
	p.Amount = "999999"
	p.Destination = "bc1q-test-wallet"

	if err := p.Submit(context.Background()); err == nil {
		t.Fatal("expected submit to fail")
	}
	assertDestructive(t, b.Rec, "Insufficient points balance.")
	if p.Phase() != panel.PhaseReady {
		t.Errorf("expected ready, got %v", p.Phase())
	}
	if p.Amount != "999999" {
		t.Error("fields must stay intact after a failed submit")
	}
}

// --- Transfer ---

func TestTransferParsesIntegerPrefix(t *testing.T) {
	b := setupRewards(t)
	p := panel.NewTransferPanel(b.Client, b.Rec)
	p.ReceiverEmail = store.SeedPeerEmail
	p.Amount = "3.7"

	if err := p.Submit(context.Background()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if b.Rec.Last().Description != "Points transferred successfully!" {
		t.Errorf("unexpected description %q", b.Rec.Last().Description)
	}
	if p.ReceiverEmail != "" || p.Amount != "" {
		t.Error("expected fields cleared after success")
	}

	// 3.7 transfers 3 whole points.
	profile := panel.NewProfilePanel(b.Client, b.Rec)
	if err := profile.Load(context.Background()); err != nil {
		t.Fatalf("profile load failed: %v", err)
	}
	if got := profile.User().PointsBalance; got != 12497 {
		t.Errorf("expected balance 12497, got %d", got)
	}
}

func TestTransferRejectsBadInputSkipsNetwork(t *testing.T) {
	client, hits := countingBackend(t)
	rec := &notify.Recorder{}
	p := panel.NewTransferPanel(client, rec)

	cases := []struct{ email, amount string }{
		{"", "50"},
		{"   ", "50"},
		{store.SeedPeerEmail, "0"},
		{store.SeedPeerEmail, "-10"},
		{store.SeedPeerEmail, "abc"},
		{store.SeedPeerEmail, ""},
	}
	for _, tc := range cases {
		rec.Reset()
		p.ReceiverEmail = tc.email
		p.Amount = tc.amount
		err := p.Submit(context.Background())
		if api.KindOf(err) != api.KindValidation {
			t.Errorf("email=%q amount=%q: expected validation error, got %v", tc.email, tc.amount, err)
		}
		assertDestructive(t, rec, "Please enter a valid email and amount greater than zero.")
	}
	if *hits != 0 {
		t.Errorf("expected no network calls, got %d", *hits)
	}
}

func TestTransferUnknownRecipient(t *testing.T) {
	b := setupRewards(t)
	p := panel.NewTransferPanel(b.Client, b.Rec)
	p.ReceiverEmail = "nobody@example.com"
	p.Amount = "50"

	if err := p.Submit(context.Background()); err == nil {
		t.Fatal("expected submit to fail")
	}
	assertDestructive(t, b.Rec, "Recipient account not found.")
	if p.ReceiverEmail != "nobody@example.com" {
		t.Error("fields must stay intact after a failed submit")
	}
}

func TestSubmitWhileSubmitting(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	t.Cleanup(srv.Close)

	token, err := stubapi.MintToken(store.SeedUserEmail, time.Hour)
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}
	rec := &notify.Recorder{}
	p := panel.NewTransferPanel(api.NewClient(srv.URL, api.NewSession(token)), rec)
	p.ReceiverEmail = store.SeedPeerEmail
	p.Amount = "5"

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := p.Submit(context.Background()); err != nil {
			t.Errorf("first submit failed: %v", err)
		}
	}()

	<-entered
	if err := p.Submit(context.Background()); err != panel.ErrBusy {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	close(release)
	wg.Wait()

	if rec.Count() != 1 || rec.Last().Severity != notify.SeveritySuccess {
		t.Errorf("expected exactly one success notification, got %+v", rec.Notifications)
	}
}

// --- History ---

func TestHistoryDefaultRangeSortedNewestFirst(t *testing.T) {
	b := setupRewards(t)
	p := panel.NewHistoryPanel(b.Client, b.Rec)

	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	items := p.History()
	if len(items) != 3 {
		t.Fatalf("expected 3 redemptions in the default window, got %d", len(items))
	}
	// Fixtures are stored out of order; the panel sorts newest first. The
	// 45-day-old approved redemption falls outside the default window.
	want := []string{"rdm-b2", "rdm-c3", "rdm-a1"}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, items[i].ID)
		}
	}
}

func TestHistoryLimit(t *testing.T) {
	b := setupRewards(t)
	p := panel.NewHistoryPanel(b.Client, b.Rec)
	p.Limit = 2

	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(p.History()) != 2 {
		t.Errorf("expected 2 redemptions, got %d", len(p.History()))
	}
}

func TestHistoryRejectsWideRange(t *testing.T) {
	b := setupRewards(t)
	p := panel.NewHistoryPanel(b.Client, b.Rec)

	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	before := len(p.History())

	b.Rec.Reset()
	p.StartDate = time.Now().AddDate(0, 0, -60).Format("2006-01-02")
	err := p.Load(context.Background())
	if api.KindOf(err) != api.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	assertDestructive(t, b.Rec, "Date range cannot exceed 30 days.")
	if len(p.History()) != before {
		t.Error("a rejected filter must leave the displayed history untouched")
	}
	if p.Phase() != panel.PhaseReady {
		t.Errorf("expected ready, got %v", p.Phase())
	}
}

func TestHistoryRejectsInvalidDates(t *testing.T) {
	b := setupRewards(t)
	p := panel.NewHistoryPanel(b.Client, b.Rec)

	p.StartDate = "not-a-date"
	if err := p.Load(context.Background()); api.KindOf(err) != api.KindValidation {
		t.Errorf("expected validation error for malformed start, got %v", err)
	}

	p.StartDate = time.Now().Format("2006-01-02")
	p.EndDate = time.Now().AddDate(0, 0, -5).Format("2006-01-02")
	b.Rec.Reset()
	if err := p.Load(context.Background()); api.KindOf(err) != api.KindValidation {
		t.Errorf("expected validation error for inverted range, got %v", err)
	}
	assertDestructive(t, b.Rec, "Start date cannot be after end date.")
}

func TestHistoryFetchFailureKeepsHistory(t *testing.T) {
	b := setupRewards(t)
	p := panel.NewHistoryPanel(b.Client, b.Rec)

	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	before := len(p.History())
	if before == 0 {
		t.Fatal("expected seeded history")
	}

	b.Admin.InjectFault("/redemption/history", map[string]any{"status_code": 503}).AssertStatus(200)
	b.Rec.Reset()
	if err := p.Load(context.Background()); err == nil {
		t.Fatal("expected load to fail")
	}
	if len(p.History()) != before {
		t.Error("a failed refresh must leave the displayed history untouched")
	}
	if p.Phase() != panel.PhaseReady {
		t.Errorf("expected ready after failed refresh, got %v", p.Phase())
	}
	if b.Rec.Last().Severity != notify.SeverityDestructive {
		t.Errorf("expected destructive notification, got %+v", b.Rec.Last())
	}
}

func TestHistoryNonArrayBodyMeansEmpty(t *testing.T) {
	b := setupRewards(t)
	b.Admin.InjectFault("/redemption/history", map[string]any{
		"status_code": 200,
		"body":        `{"unexpected":"shape"}`,
	}).AssertStatus(200)

	p := panel.NewHistoryPanel(b.Client, b.Rec)
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(p.History()) != 0 {
		t.Errorf("expected empty history for a non-array body, got %d", len(p.History()))
	}
	if p.Phase() != panel.PhaseReady {
		t.Errorf("expected ready, got %v", p.Phase())
	}
}
