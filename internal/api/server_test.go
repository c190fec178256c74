package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
	"github.com/Kerhoff/ListeDeNoel/internal/repository"
	"github.com/Kerhoff/ListeDeNoel/internal/repository/mocks"
	"github.com/Kerhoff/ListeDeNoel/internal/service"
)

const (
	testSecret       = "test-secret"
	owner      int64 = 1
	alice      int64 = 2
	bob        int64 = 3
	familyID   int64 = 10
	giftID     int64 = 100
)

type failingDB struct{}

func (failingDB) Health(context.Context) error { return errors.New("connection refused") }

func newTestServer(t *testing.T) (*Server, *mocks.Set) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repos := mocks.NewSet()
	svc := service.New(logger, service.Repositories{
		Users:         repos.Users,
		Families:      repos.Families,
		Gifts:         repos.Gifts,
		Contributions: repos.Contributions,
		Invitations:   repos.Invitations,
		JoinRequests:  repos.JoinRequests,
		TelegramLinks: repos.TelegramLinks,
	}, nil, nil, 7*24*time.Hour)

	s := NewServer(svc, nil, nil, logger, Options{JWTSecret: testSecret})
	return s, repos
}

func token(t *testing.T, userID int64, expiresIn time.Duration) string {
	t.Helper()

	claims := Claims{
		Username: "user" + strconv.FormatInt(userID, 10),
		Email:    "user" + strconv.FormatInt(userID, 10) + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func expectUser(repos *mocks.Set, userID int64) {
	repos.Users.On("Upsert", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == userID
	})).Return(&models.User{
		ID:       userID,
		Username: "user" + strconv.FormatInt(userID, 10),
		IsActive: true,
	}, nil)
}

func do(t *testing.T, s *Server, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+token(t, userID, time.Hour))
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func detailOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["detail"]
}

func testGift() *models.Gift {
	return &models.Gift{
		ID:        giftID,
		Title:     "Vélo",
		Price:     decimal.NewFromInt(100),
		OwnerID:   owner,
		FamilyIDs: []int64{familyID},
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/health", 0, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestHealth_DatabaseDown(t *testing.T) {
	s, _ := newTestServer(t)
	s.db = failingDB{}

	rec := do(t, s, http.MethodGet, "/health", 0, nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestAuthentication(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing token", ""},
		{"malformed header", "Token abc"},
		{"bad signature", "Bearer " + signedWith(t, "other-secret")},
		{"expired token", "Bearer " + token(t, alice, -time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthentication_Cookie(t *testing.T) {
	s, repos := newTestServer(t)
	expectUser(repos, alice)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token(t, alice, time.Hour)})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func signedWith(t *testing.T, secret string) string {
	t.Helper()

	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "2",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestMe(t *testing.T) {
	s, repos := newTestServer(t)
	expectUser(repos, alice)

	rec := do(t, s, http.MethodGet, "/auth/me", alice, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, alice, user.ID)
	assert.Equal(t, "user2", user.Username)
	repos.AssertExpectations(t)
}

func TestMe_InactiveUser(t *testing.T) {
	s, repos := newTestServer(t)
	repos.Users.On("Upsert", mock.Anything, mock.Anything).Return(&models.User{ID: alice, IsActive: false}, nil)

	rec := do(t, s, http.MethodGet, "/auth/me", alice, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	s, repos := newTestServer(t)
	expectUser(repos, alice)

	rec := do(t, s, http.MethodPost, "/auth/logout", alice, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, AccessTokenCookie, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestGiftContributions_OwnerSeesNothing(t *testing.T) {
	s, repos := newTestServer(t)
	expectUser(repos, owner)
	repos.Gifts.On("GetByID", mock.Anything, giftID).Return(testGift(), nil)

	rec := do(t, s, http.MethodGet, "/contributions/cadeaux/100", owner, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var state struct {
		Total         decimal.Decimal   `json:"total_contribue"`
		Remaining     decimal.Decimal   `json:"reste"`
		Contributions []json.RawMessage `json:"contributions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.True(t, state.Total.IsZero())
	assert.True(t, state.Remaining.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, state.Contributions)
	repos.Contributions.AssertNotCalled(t, "GetByGift", mock.Anything, mock.Anything)
}

func TestGiftContributions_OutsiderGetsNotFound(t *testing.T) {
	s, repos := newTestServer(t)
	expectUser(repos, bob)
	repos.Gifts.On("GetByID", mock.Anything, giftID).Return(testGift(), nil)
	repos.Families.On("IsMember", mock.Anything, familyID, bob).Return(false, nil)

	rec := do(t, s, http.MethodGet, "/contributions/cadeaux/100", bob, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitContribution(t *testing.T) {
	s, repos := newTestServer(t)
	expectUser(repos, alice)
	repos.Gifts.On("GetByID", mock.Anything, giftID).Return(testGift(), nil)
	repos.Families.On("IsMember", mock.Anything, familyID, alice).Return(true, nil)

	saved := &models.Contribution{ID: 5, GiftID: giftID, UserID: alice, Amount: decimal.NewFromInt(25)}
	repos.Contributions.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Contribution) bool {
		return c.UserID == alice && c.Amount.Equal(decimal.NewFromInt(25)) && c.Message == "Joyeux Noël"
	})).Return(saved, nil)
	repos.Contributions.On("GetByGift", mock.Anything, giftID).Return([]*models.Contribution{saved}, nil)

	rec := do(t, s, http.MethodPost, "/contributions/cadeaux/100", alice, map[string]any{
		"montant": "25",
		"message": "  Joyeux Noël ",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body struct {
		ID     int64 `json:"id"`
		Resume struct {
			Total     decimal.Decimal `json:"total_contribue"`
			Remaining decimal.Decimal `json:"reste"`
			Count     int             `json:"nb_contributions"`
		} `json:"resume"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(5), body.ID)
	assert.True(t, body.Resume.Total.Equal(decimal.NewFromInt(25)))
	assert.True(t, body.Resume.Remaining.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, 1, body.Resume.Count)
	repos.AssertExpectations(t)
}

func TestSubmitContribution_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		viewer     int64
		gift       func() *models.Gift
		amount     string
		wantStatus int
	}{
		{
			name:       "owner cannot contribute",
			viewer:     owner,
			gift:       testGift,
			amount:     "10",
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "purchased gift",
			viewer: alice,
			gift: func() *models.Gift {
				g := testGift()
				buyer := bob
				g.IsPurchased = true
				g.PurchasedByID = &buyer
				return g
			},
			amount:     "10",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "zero amount",
			viewer:     alice,
			gift:       testGift,
			amount:     "0",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "amount below one cent",
			viewer:     alice,
			gift:       testGift,
			amount:     "0.004",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repos := newTestServer(t)
			expectUser(repos, tt.viewer)
			repos.Gifts.On("GetByID", mock.Anything, giftID).Return(tt.gift(), nil)
			repos.Families.On("IsMember", mock.Anything, familyID, tt.viewer).Return(true, nil).Maybe()

			rec := do(t, s, http.MethodPost, "/contributions/cadeaux/100", tt.viewer, map[string]any{"montant": tt.amount})

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, detailOf(t, rec))
			repos.Contributions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitContribution_InvalidJSON(t *testing.T) {
	s, repos := newTestServer(t)
	expectUser(repos, alice)

	req := httptest.NewRequest(http.MethodPost, "/contributions/cadeaux/100", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+token(t, alice, time.Hour))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteContribution(t *testing.T) {
	t.Run("author", func(t *testing.T) {
		s, repos := newTestServer(t)
		expectUser(repos, alice)
		repos.Contributions.On("GetByID", mock.Anything, int64(5)).
			Return(&models.Contribution{ID: 5, GiftID: giftID, UserID: alice}, nil)
		repos.Contributions.On("Delete", mock.Anything, int64(5)).Return(nil)
		repos.Gifts.On("GetByID", mock.Anything, giftID).Return(testGift(), nil).Maybe()

		rec := do(t, s, http.MethodDelete, "/contributions/5", alice, nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("someone else", func(t *testing.T) {
		s, repos := newTestServer(t)
		expectUser(repos, bob)
		repos.Contributions.On("GetByID", mock.Anything, int64(5)).
			Return(&models.Contribution{ID: 5, GiftID: giftID, UserID: alice}, nil)

		rec := do(t, s, http.MethodDelete, "/contributions/5", bob, nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		repos.Contributions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("unknown", func(t *testing.T) {
		s, repos := newTestServer(t)
		expectUser(repos, bob)
		repos.Contributions.On("GetByID", mock.Anything, int64(5)).Return(nil, nil)

		rec := do(t, s, http.MethodDelete, "/contributions/5", bob, nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMarkPurchased_AlreadyPurchased(t *testing.T) {
	s, repos := newTestServer(t)
	expectUser(repos, alice)
	g := testGift()
	buyer := bob
	g.IsPurchased = true
	g.PurchasedByID = &buyer
	repos.Gifts.On("GetByID", mock.Anything, giftID).Return(g, nil)
	repos.Families.On("IsMember", mock.Anything, familyID, alice).Return(true, nil)

	rec := do(t, s, http.MethodPost, "/cadeaux/100/mark-purchased", alice, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	repos.Gifts.AssertNotCalled(t, "MarkPurchased", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkPurchased_LostRace(t *testing.T) {
	s, repos := newTestServer(t)
	expectUser(repos, alice)
	repos.Gifts.On("GetByID", mock.Anything, giftID).Return(testGift(), nil)
	repos.Families.On("IsMember", mock.Anything, familyID, alice).Return(true, nil)
	repos.Gifts.On("MarkPurchased", mock.Anything, giftID, alice).
		Return(fmt.Errorf("mark gift purchased: %w", repository.ErrNotFound))

	rec := do(t, s, http.MethodPost, "/cadeaux/100/mark-purchased", alice, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateGift_Validation(t *testing.T) {
	s, repos := newTestServer(t)
	expectUser(repos, alice)

	rec := do(t, s, http.MethodPost, "/cadeaux", alice, map[string]any{
		"titre":       "",
		"prix":        "10",
		"famille_ids": []int64{},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, detailOf(t, rec), "titre")
	repos.Gifts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRepositoryFailureIsInternal(t *testing.T) {
	s, repos := newTestServer(t)
	expectUser(repos, alice)
	repos.Contributions.On("StatsByUser", mock.Anything, alice).Return(nil, errors.New("connection reset"))

	rec := do(t, s, http.MethodGet, "/contributions/stats", alice, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "erreur interne", detailOf(t, rec))
}

func TestFamilySocket_Unavailable(t *testing.T) {
	s, repos := newTestServer(t)
	expectUser(repos, alice)

	rec := do(t, s, http.MethodGet, "/ws/familles/10?token="+token(t, alice, time.Hour), 0, nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/nope", 0, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, detailOf(t, rec))
}
