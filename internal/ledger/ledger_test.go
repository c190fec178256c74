package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "expected %s, got %s", want, got.String())
}

func gift(id, owner int64, price string) *models.Gift {
	return &models.Gift{ID: id, Title: "Vélo", Price: dec(price), OwnerID: owner, FamilyIDs: []int64{1}}
}

func contribs(giftID int64, amounts ...string) []*models.Contribution {
	out := make([]*models.Contribution, 0, len(amounts))
	for i, a := range amounts {
		out = append(out, &models.Contribution{
			ID:        int64(i + 1),
			GiftID:    giftID,
			UserID:    int64(100 + i),
			Amount:    dec(a),
			CreatedAt: time.Date(2025, 12, 1, 10, i, 0, 0, time.UTC),
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Aggregation
// ---------------------------------------------------------------------------

func TestSummarize(t *testing.T) {
	tests := []struct {
		name       string
		price      string
		amounts    []string
		total      string
		remaining  string
		percentage string
	}{
		{"scenario A: partially funded", "100.00", []string{"40.00", "35.00"}, "75.00", "25.00", "75"},
		{"scenario B: over-funded", "50.00", []string{"50.00", "10.00"}, "60.00", "-10.00", "100"},
		{"empty set", "80.00", nil, "0", "80.00", "0"},
		{"exactly funded", "30.00", []string{"10.00", "20.00"}, "30.00", "0", "100"},
		{"cents do not drift", "0.30", []string{"0.10", "0.20"}, "0.30", "0", "100"},
		{"percentage is rounded", "30.00", []string{"10.00"}, "10.00", "20.00", "33.33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(dec(tt.price), contribs(1, tt.amounts...))

			assertDecimal(t, tt.total, s.Total)
			assertDecimal(t, tt.remaining, s.Remaining)
			assertDecimal(t, tt.percentage, s.Percentage)
			assert.Equal(t, len(tt.amounts), s.Count)
		})
	}
}

func TestSummarize_RemainingIsPriceMinusTotal(t *testing.T) {
	price := dec("123.45")
	cs := contribs(1, "10.05", "99.99", "0.01", "42.00")

	s := Summarize(price, cs)

	sum := decimal.Zero
	for _, c := range cs {
		sum = sum.Add(c.Amount)
	}
	assert.True(t, s.Total.Equal(sum))
	assert.True(t, s.Remaining.Equal(price.Sub(sum)))
	assert.True(t, s.Remaining.IsNegative(), "over-funding must not be clamped")
}

func TestSummarize_OrderIndependent(t *testing.T) {
	price := dec("250.00")
	cs := contribs(1, "12.50", "7.25", "100.00", "0.99", "33.33", "64.10")
	want := Summarize(price, cs)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]*models.Contribution(nil), cs...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := Summarize(price, shuffled)
		assert.True(t, want.Total.Equal(got.Total))
		assert.True(t, want.Remaining.Equal(got.Remaining))
		assert.True(t, want.Percentage.Equal(got.Percentage))
	}
}

func TestSummarize_ZeroPriceHasNoPercentage(t *testing.T) {
	s := Summarize(decimal.Zero, contribs(1, "5.00"))
	assertDecimal(t, "0", s.Percentage)
}

// ---------------------------------------------------------------------------
// Visibility
// ---------------------------------------------------------------------------

func TestVisibleStateFor_OwnerSeesNothing(t *testing.T) {
	// Scenario C
	g := gift(1, 7, "120.00")
	cs := contribs(1, "30.00", "30.00", "30.00")

	state := VisibleStateFor(g, 7, cs, Names{100: "alice"})

	assertDecimal(t, "0", state.Total)
	assertDecimal(t, "120.00", state.Remaining)
	assertDecimal(t, "0", state.Percentage)
	assert.Equal(t, 0, state.Count)
	require.NotNil(t, state.Contributions)
	assert.Empty(t, state.Contributions)
}

func TestVisibleStateFor_NonOwnerSeesExactTotal(t *testing.T) {
	g := gift(1, 7, "100.00")
	cs := contribs(1, "40.00", "35.00")

	state := VisibleStateFor(g, 8, cs, Names{})

	assertDecimal(t, "75.00", state.Total)
	assertDecimal(t, "25.00", state.Remaining)
	assertDecimal(t, "75", state.Percentage)
	assert.Len(t, state.Contributions, 2)
}

func TestVisibleStateFor_AnonymousContribution(t *testing.T) {
	// Scenario E
	g := gift(1, 7, "100.00")
	cs := []*models.Contribution{
		{ID: 1, GiftID: 1, UserID: 3, Amount: dec("20.00"), Message: "Joyeux Noël", IsAnonymous: true},
		{ID: 2, GiftID: 1, UserID: 4, Amount: dec("15.00")},
	}
	names := Names{3: "claire", 4: "denis"}

	for _, viewer := range []int64{3, 4, 9} {
		state := VisibleStateFor(g, viewer, cs, names)
		require.Len(t, state.Contributions, 2)

		anon := state.Contributions[0]
		assertDecimal(t, "20.00", anon.Amount)
		assert.Equal(t, "Joyeux Noël", anon.Message)
		assert.True(t, anon.IsAnonymous)
		assert.Equal(t, AnonymousPlaceholder, anon.Contributor, "viewer %d", viewer)
		assert.NotContains(t, anon.Contributor, "claire")

		assert.Equal(t, "denis", state.Contributions[1].Contributor)
	}
}

func TestVisibleStateFor_UnknownNameFallsBack(t *testing.T) {
	g := gift(1, 7, "10.00")
	cs := []*models.Contribution{{ID: 1, GiftID: 1, UserID: 12, Amount: dec("1.00")}}

	state := VisibleStateFor(g, 8, cs, nil)
	assert.Equal(t, "Utilisateur #12", state.Contributions[0].Contributor)
}

func TestVisibleStateFor_MultiFamilyGiftAggregatesOnce(t *testing.T) {
	g := gift(1, 7, "90.00")
	g.FamilyIDs = []int64{1, 2, 3}
	cs := contribs(1, "10.00", "20.00")

	state := VisibleStateFor(g, 8, cs, Names{})
	assertDecimal(t, "30.00", state.Total)
	assert.Equal(t, 2, state.Count)
}

func TestSummaryFor(t *testing.T) {
	g := gift(1, 7, "50.00")
	s := Summarize(g.Price, contribs(1, "10.00"))

	assert.Nil(t, SummaryFor(g, 7, s))
	got := SummaryFor(g, 8, s)
	require.NotNil(t, got)
	assertDecimal(t, "10.00", got.Total)
}

func TestGiftViewFor_HidesPurchaseFromOwner(t *testing.T) {
	g := gift(1, 7, "50.00")
	buyer := int64(8)
	g.IsPurchased = true
	g.PurchasedByID = &buyer

	ownerView := GiftViewFor(g, 7)
	assert.False(t, ownerView.IsPurchased)
	assert.Nil(t, ownerView.PurchasedByID)

	otherView := GiftViewFor(g, 9)
	assert.True(t, otherView.IsPurchased)
	assert.Equal(t, &buyer, otherView.PurchasedByID)

	assert.True(t, g.IsPurchased, "the stored gift must not be modified")
}

// ---------------------------------------------------------------------------
// Admission
// ---------------------------------------------------------------------------

func TestAdmit(t *testing.T) {
	purchased := gift(2, 7, "50.00")
	buyer := int64(9)
	purchased.IsPurchased = true
	purchased.PurchasedByID = &buyer

	tests := []struct {
		name        string
		gift        *models.Gift
		contributor int64
		amount      string
		wantErr     error
	}{
		{"non-owner positive amount", gift(1, 7, "50.00"), 8, "10.00", nil},
		{"owner cannot contribute", gift(1, 7, "50.00"), 7, "10.00", ErrInvalidContributor},
		{"scenario D: zero amount", gift(1, 7, "50.00"), 8, "0", ErrInvalidAmount},
		{"negative amount", gift(1, 7, "50.00"), 8, "-5.00", ErrInvalidAmount},
		{"rounds to zero cents", gift(1, 7, "50.00"), 8, "0.004", ErrInvalidAmount},
		{"rounds up to one cent", gift(1, 7, "50.00"), 8, "0.005", nil},
		{"purchased gift", purchased, 8, "10.00", ErrGiftPurchased},
		{"missing gift", nil, 8, "10.00", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Admit(tt.gift, tt.contributor, Submission{Amount: dec(tt.amount)})
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAdmit_OverFundingAllowed(t *testing.T) {
	// Scenario B: the second contribution is admitted although the goal is reached.
	g := gift(1, 7, "50.00")
	existing := contribs(1, "50.00")
	require.True(t, Summarize(g.Price, existing).GoalReached())

	assert.NoError(t, Admit(g, 8, Submission{Amount: dec("10.00")}))
}

func TestPrepare(t *testing.T) {
	g := gift(4, 7, "50.00")
	now := time.Date(2025, 12, 24, 18, 0, 0, 0, time.UTC)

	c, err := Prepare(g, 3, Submission{Amount: dec("20.004"), Message: "  Joyeux Noël ", IsAnonymous: true}, now)
	require.NoError(t, err)

	assert.Equal(t, int64(4), c.GiftID)
	assert.Equal(t, int64(3), c.UserID)
	assertDecimal(t, "20.00", c.Amount)
	assert.Equal(t, "Joyeux Noël", c.Message)
	assert.True(t, c.IsAnonymous)
	assert.Equal(t, now, c.CreatedAt)
}

func TestPrepare_RejectedLeavesNothing(t *testing.T) {
	c, err := Prepare(gift(4, 7, "50.00"), 8, Submission{Amount: decimal.Zero}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Nil(t, c)
}

func TestPrepare_SubCentAmountRejected(t *testing.T) {
	c, err := Prepare(gift(4, 7, "50.00"), 3, Submission{Amount: dec("0.004")}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Nil(t, c)
}

func TestStateOf(t *testing.T) {
	g := gift(1, 7, "50.00")
	assert.Equal(t, StateOpen, StateOf(g, Summarize(g.Price, contribs(1, "10.00"))))
	assert.Equal(t, StateFunded, StateOf(g, Summarize(g.Price, contribs(1, "50.00"))))
	assert.Equal(t, StateFunded, StateOf(g, Summarize(g.Price, contribs(1, "50.00", "10.00"))))

	buyer := int64(8)
	g.IsPurchased = true
	g.PurchasedByID = &buyer
	assert.Equal(t, StatePurchased, StateOf(g, Summarize(g.Price, nil)))
}

func TestAuthorizeDelete(t *testing.T) {
	c := &models.Contribution{ID: 1, UserID: 3}

	assert.NoError(t, AuthorizeDelete(c, 3))
	assert.ErrorIs(t, AuthorizeDelete(c, 4), ErrForbidden)
	assert.ErrorIs(t, AuthorizeDelete(nil, 3), ErrNotFound)
}

// ---------------------------------------------------------------------------
// Purchase state
// ---------------------------------------------------------------------------

func TestMarkPurchased(t *testing.T) {
	g := gift(1, 7, "50.00")

	assert.ErrorIs(t, MarkPurchased(g, 7), ErrInvalidContributor)
	assert.False(t, g.IsPurchased)

	require.NoError(t, MarkPurchased(g, 8))
	assert.True(t, g.IsPurchased)
	require.NotNil(t, g.PurchasedByID)
	assert.Equal(t, int64(8), *g.PurchasedByID)

	assert.ErrorIs(t, MarkPurchased(g, 9), ErrAlreadyPurchased)
	assert.Equal(t, int64(8), *g.PurchasedByID)
}

func TestUnmarkPurchased(t *testing.T) {
	g := gift(1, 7, "50.00")
	require.NoError(t, MarkPurchased(g, 8))

	assert.ErrorIs(t, UnmarkPurchased(g, 7), ErrInvalidContributor)
	assert.ErrorIs(t, UnmarkPurchased(g, 9), ErrForbidden)
	assert.True(t, g.IsPurchased)

	require.NoError(t, UnmarkPurchased(g, 8))
	assert.False(t, g.IsPurchased)
	assert.Nil(t, g.PurchasedByID)

	assert.ErrorIs(t, UnmarkPurchased(g, 8), ErrForbidden)
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindNone},
		{ErrInvalidAmount, KindInvalidAmount},
		{ErrInvalidContributor, KindInvalidContributor},
		{ErrForbidden, KindForbidden},
		{ErrNotFound, KindNotFound},
		{ErrGiftPurchased, KindConflict},
		{ErrAlreadyPurchased, KindConflict},
		{assert.AnError, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := wrap(ErrForbidden)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func wrap(err error) error {
	return &wrapped{err}
}

type wrapped struct{ err error }

func (w *wrapped) Error() string { return "delete contribution: " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }
