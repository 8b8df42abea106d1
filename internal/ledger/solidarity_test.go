package ledger

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStrike_Legitimacy(t *testing.T) {
	s, err := CreateStrike(DefaultParams(), "organizer", StrikeInput{Company: "Acme", UnionVerified: true, ParticipantCount: 40}, testNow)
	require.NoError(t, err)
	assert.Equal(t, uint8(100), s.LegitimacyScore)
	assert.Equal(t, uint64(80_000_000_000), s.DailySupport)
	assert.Equal(t, uint32(40), s.ParticipantCount)
	assert.Zero(t, s.TotalFund)

	s, err = CreateStrike(DefaultParams(), "organizer", StrikeInput{Company: "Acme"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, uint8(50), s.LegitimacyScore)
}

func TestCreateStrike_CompanyTooLong(t *testing.T) {
	_, err := CreateStrike(DefaultParams(), "organizer", StrikeInput{Company: strings.Repeat("c", 101)}, testNow)
	assert.Equal(t, CodeCompanyTooLong, CodeOf(err))
}

func TestSupportStrike(t *testing.T) {
	p := DefaultParams()
	s, err := CreateStrike(p, "organizer", StrikeInput{Company: "Acme"}, testNow)
	require.NoError(t, err)
	alice := newTestProfile(t, "alice")

	s, alice, err = SupportStrike(p, s, alice, 500)
	require.NoError(t, err)
	s, alice, err = SupportStrike(p, s, alice, 250)
	require.NoError(t, err)

	assert.Equal(t, uint64(750), s.TotalFund, "every contribution is added")
	assert.Equal(t, []Identity{"alice"}, s.Supporters.Members, "supporter counted once")
	assert.Equal(t, uint64(60), alice.ClassSolidarityScore)
}

func TestSupportStrike_FundOverflow(t *testing.T) {
	p := DefaultParams()
	s, err := CreateStrike(p, "organizer", StrikeInput{Company: "Acme"}, testNow)
	require.NoError(t, err)
	s.TotalFund = math.MaxUint64
	alice := newTestProfile(t, "alice")

	gotStrike, gotProf, err := SupportStrike(p, s, alice, 1)
	assert.True(t, errors.Is(err, ErrOverflow))
	assert.Empty(t, gotStrike.Supporters.Members)
	assert.Zero(t, gotProf.ClassSolidarityScore)
}

func TestSupportStrike_SupporterBudget(t *testing.T) {
	p := DefaultParams()
	p.Budgets.Supporters = 1
	s, err := CreateStrike(p, "organizer", StrikeInput{Company: "Acme"}, testNow)
	require.NoError(t, err)

	s, _, err = SupportStrike(p, s, newTestProfile(t, "alice"), 1)
	require.NoError(t, err)
	_, _, err = SupportStrike(p, s, newTestProfile(t, "bob"), 1)
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
}

func TestCreateWorkerCoop(t *testing.T) {
	c, err := CreateWorkerCoop(DefaultParams(), "founder", CoopInput{
		BusinessPlan: "Bike repair cooperative",
		FundingGoal:  5_000,
		Skills:       []SkillType{SkillTechnical, SkillMarketing},
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, []Identity{"founder"}, c.Founders.Members)
	assert.Equal(t, []Identity{"founder"}, c.Members.Members)
	assert.Equal(t, []SkillType{SkillTechnical, SkillMarketing}, c.SkillRequirements.Members)
	assert.Equal(t, uint8(50), c.SustainabilityScore)
	assert.Zero(t, c.CurrentFunding)
}

func TestCreateWorkerCoop_Validation(t *testing.T) {
	_, err := CreateWorkerCoop(DefaultParams(), "founder", CoopInput{BusinessPlan: strings.Repeat("p", 501)}, testNow)
	assert.Equal(t, CodeBusinessPlanTooLong, CodeOf(err))

	_, err = CreateWorkerCoop(DefaultParams(), "founder", CoopInput{Skills: []SkillType{SkillLegal, SkillLegal}}, testNow)
	assert.Equal(t, CodeInvalidArgument, CodeOf(err))

	_, err = CreateWorkerCoop(DefaultParams(), "founder", CoopInput{Skills: []SkillType{SkillType(42)}}, testNow)
	assert.Equal(t, CodeInvalidArgument, CodeOf(err))
}

func TestFundWorkerCoop_DoesNotGrantMembership(t *testing.T) {
	p := DefaultParams()
	c, err := CreateWorkerCoop(p, "founder", CoopInput{BusinessPlan: "plan", FundingGoal: 100}, testNow)
	require.NoError(t, err)
	bob := newTestProfile(t, "bob")

	c, bob, err = FundWorkerCoop(p, c, bob, 1_000)
	require.NoError(t, err)

	assert.Equal(t, uint64(1_000), c.CurrentFunding)
	assert.Equal(t, uint64(40), bob.ClassSolidarityScore)
	assert.False(t, c.Members.Contains("bob"))
	assert.False(t, c.Founders.Contains("bob"))
}

func TestFundWorkerCoop_Overflow(t *testing.T) {
	p := DefaultParams()
	c, err := CreateWorkerCoop(p, "founder", CoopInput{BusinessPlan: "plan"}, testNow)
	require.NoError(t, err)
	c.CurrentFunding = math.MaxUint64

	_, got, err := FundWorkerCoop(p, c, newTestProfile(t, "bob"), 1)
	assert.True(t, errors.Is(err, ErrOverflow))
	assert.Zero(t, got.ClassSolidarityScore)
}
