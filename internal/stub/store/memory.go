// Package store holds the stub rewards backend's in-memory state: users,
// the survey catalog, redemption requests, and the configured rates.
package store

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pointsdash/pointsdash/internal/model"
	pkgstore "github.com/pointsdash/pointsdash/pkg/store"
)

// MemoryStore holds all stub backend state.
type MemoryStore struct {
	Users       *pkgstore.Store[User]       // keyed by email
	Surveys     *pkgstore.Store[model.Survey]
	Redemptions *pkgstore.Store[Redemption] // keyed by redemption ID
	Clock       *pkgstore.Clock

	ratesMu sync.RWMutex
	rates   model.RedemptionRates

	surveyCounter atomic.Int64
}

// New creates an empty MemoryStore.
func New() *MemoryStore {
	return &MemoryStore{
		Users:       pkgstore.New[User](),
		Surveys:     pkgstore.New[model.Survey](),
		Redemptions: pkgstore.New[Redemption](),
		Clock:       pkgstore.NewClock(),
	}
}

// Rates returns the configured redemption rates.
func (s *MemoryStore) Rates() model.RedemptionRates {
	s.ratesMu.RLock()
	defer s.ratesMu.RUnlock()
	return s.rates
}

// SetRates replaces the configured redemption rates.
func (s *MemoryStore) SetRates(r model.RedemptionRates) {
	s.ratesMu.Lock()
	defer s.ratesMu.Unlock()
	s.rates = r
}

// NextSurveyID returns the next survey ID.
func (s *MemoryStore) NextSurveyID() string {
	return fmt.Sprintf("survey-%03d", s.surveyCounter.Add(1))
}

// GetUser returns a user by email.
func (s *MemoryStore) GetUser(email string) (User, bool) {
	return s.Users.Get(email)
}

// RedemptionsByUser returns all redemptions belonging to email.
func (s *MemoryStore) RedemptionsByUser(email string) []Redemption {
	return s.Redemptions.Filter(func(_ string, r Redemption) bool {
		return r.UserEmail == email
	})
}

type stateSnapshot struct {
	Users       map[string]User         `json:"users"`
	Surveys     map[string]model.Survey `json:"surveys"`
	Redemptions map[string]Redemption   `json:"redemptions"`
	Rates       model.RedemptionRates   `json:"rates"`
}

// Snapshot returns the full state as a JSON-serializable value.
func (s *MemoryStore) Snapshot() any {
	return stateSnapshot{
		Users:       s.Users.Snapshot(),
		Surveys:     s.Surveys.Snapshot(),
		Redemptions: s.Redemptions.Snapshot(),
		Rates:       s.Rates(),
	}
}

// LoadState replaces the full state from a JSON body. Sections absent from
// the body are left untouched so tests can patch one slice of state.
func (s *MemoryStore) LoadState(data []byte) error {
	var snap stateSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	if snap.Users != nil {
		s.Users.LoadSnapshot(snap.Users)
	}
	if snap.Surveys != nil {
		s.Surveys.LoadSnapshot(snap.Surveys)
	}
	if snap.Redemptions != nil {
		s.Redemptions.LoadSnapshot(snap.Redemptions)
	}
	var zero model.RedemptionRates
	if snap.Rates != zero {
		s.SetRates(snap.Rates)
	}
	return nil
}

// Reset clears all state and reloads the seed fixtures.
func (s *MemoryStore) Reset() {
	s.Users.Reset()
	s.Surveys.Reset()
	s.Redemptions.Reset()
	s.Clock.Reset()
	s.surveyCounter.Store(0)
	s.SeedDefaults()
}

// MustHash bcrypt-hashes a credential for fixtures and tests.
func MustHash(secret string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		log.Fatalf("hashing fixture credential: %v", err)
	}
	return string(h)
}

// VerifyHash reports whether secret matches the stored bcrypt hash.
func VerifyHash(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// Seed fixture credentials, shared with tests.
const (
	SeedUserEmail    = "sarah@example.com"
	SeedUserPassword = "correct-horse"
	SeedUserPIN      = "1234"
	SeedPeerEmail    = "alex@example.com"
)

// SeedDefaults populates the store with fixture data: two users, a survey
// catalog, current rates, and a redemption history spread across known days
// so date-range filtering and sort order are observable.
func (s *MemoryStore) SeedDefaults() {
	now := s.Clock.Now()
	ts := now.Format(time.RFC3339)

	s.Users.Set(SeedUserEmail, User{
		UserProfile: model.UserProfile{
			Email:         SeedUserEmail,
			Name:          "Sarah Lim",
			Status:        "active",
			PointsBalance: 12500,
			ReferralCode:  "SARAH-88",
			EmailVerified: true,
			CreatedAt:     now.AddDate(-1, 0, 0).Format(time.RFC3339),
		},
		PasswordHash: MustHash(SeedUserPassword),
		PINHash:      MustHash(SeedUserPIN),
	})

	s.Users.Set(SeedPeerEmail, User{
		UserProfile: model.UserProfile{
			Email:         SeedPeerEmail,
			Name:          "Alex Tan",
			Status:        "active",
			PointsBalance: 300,
			EmailVerified: false,
			CreatedAt:     ts,
		},
		PasswordHash: MustHash("another-horse"),
		PINHash:      MustHash("9999"),
	})

	for _, sv := range []model.Survey{
		{Title: "Shopping Habits 2026", Description: "15 questions on retail preferences.", Reward: 250, IsActive: true},
		{Title: "Streaming Services", Description: "Tell us what you watch.", Reward: 150, IsActive: true},
		{Title: "Commute & Travel", Reward: 400, IsActive: true},
		{Title: "Legacy Banking Survey", Description: "Closed cohort.", Reward: 500, IsActive: false},
	} {
		sv.ID = s.NextSurveyID()
		s.Surveys.Set(sv.ID, sv)
	}

	s.SetRates(model.RedemptionRates{
		BitcoinRate:  0.005,
		GiftCardRate: 0.01,
		BaseDollar:   100,
	})

	// History fixtures: deliberately inserted out of chronological order so
	// server-side ordering never masks the client's sort.
	for _, r := range []Redemption{
		{
			Redemption: model.Redemption{
				ID: "rdm-a1", Type: model.RedeemBitcoin, PointsAmount: 2000,
				EquivalentValue: 10, Status: model.RedemptionApproved,
				CreatedAt: now.AddDate(0, 0, -5).Format(time.RFC3339),
			},
			UserEmail: SeedUserEmail, Destination: "bc1q-fixture-wallet",
		},
		{
			Redemption: model.Redemption{
				ID: "rdm-b2", Type: model.RedeemGiftCard, PointsAmount: 1000,
				EquivalentValue: 10, Status: model.RedemptionPending,
				CreatedAt: now.AddDate(0, 0, -1).Format(time.RFC3339),
			},
			UserEmail: SeedUserEmail, Destination: SeedUserEmail,
		},
		{
			Redemption: model.Redemption{
				ID: "rdm-c3", Type: model.RedeemBitcoin, PointsAmount: 500,
				EquivalentValue: 2.5, Status: model.RedemptionRejected,
				CreatedAt: now.AddDate(0, 0, -3).Format(time.RFC3339),
			},
			UserEmail: SeedUserEmail, Destination: "bc1q-fixture-wallet",
		},
		{
			Redemption: model.Redemption{
				ID: "rdm-d4", Type: model.RedeemGiftCard, PointsAmount: 4000,
				EquivalentValue: 40, Status: model.RedemptionApproved,
				CreatedAt: now.AddDate(0, 0, -45).Format(time.RFC3339),
			},
			UserEmail: SeedUserEmail, Destination: SeedUserEmail,
		},
	} {
		s.Redemptions.Set(r.ID, r)
	}
}
