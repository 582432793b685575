package joint

import (
	"errors"
	"math"
	"testing"

	vars "github.com/goliatone/go-variables"
	"pgregory.net/rapid"
)

const tolerance = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func totalWeight(s *System) float64 {
	var total float64
	for _, w := range s.weights {
		total += w
	}
	return total
}

type fatalHelper interface {
	Helper()
	Fatalf(format string, args ...any)
}

func mustProbability(t fatalHelper, s *System, name string) float64 {
	t.Helper()
	p, err := s.Probability(name)
	if err != nil {
		t.Fatalf("Probability(%q): %v", name, err)
	}
	return p
}

func sprinklerSystem(t *testing.T, opts ...Option) *System {
	t.Helper()
	sys := New(opts...)
	if err := sys.Declare("rain", 0.3); err != nil {
		t.Fatalf("declare rain: %v", err)
	}
	if err := sys.Declare("sprinkler", 0.4); err != nil {
		t.Fatalf("declare sprinkler: %v", err)
	}
	if err := sys.Derive("wet", "rain || sprinkler"); err != nil {
		t.Fatalf("derive wet: %v", err)
	}
	return sys
}

func TestNewSystemHasSingleCertainWorld(t *testing.T) {
	sys := New()
	if sys.Len() != 0 || len(sys.Worlds()) != 1 || sys.Worlds()[0].Probability != 1 {
		t.Fatalf("unexpected empty system: %v", sys)
	}
	if sys.ID() == "" {
		t.Fatalf("expected generated id")
	}
}

func TestDeclareIndependentMarginals(t *testing.T) {
	sys := New()
	if err := sys.Declare("a", 0.25); err != nil {
		t.Fatalf("declare a: %v", err)
	}
	if err := sys.Declare("b", 0.6); err != nil {
		t.Fatalf("declare b: %v", err)
	}
	if p := mustProbability(t, sys, "a"); !approx(p, 0.25) {
		t.Fatalf("P(a) = %v", p)
	}
	if p := mustProbability(t, sys, "b"); !approx(p, 0.6) {
		t.Fatalf("P(b) = %v", p)
	}
	both, err := sys.Query("a && b")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !approx(both, 0.15) {
		t.Fatalf("P(a && b) = %v, want independent product 0.15", both)
	}
	if got := sys.Variables(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected variables %v", got)
	}
}

func TestDeclareValidation(t *testing.T) {
	sys := New(WithMaxVariables(2))
	cases := []struct {
		name string
		p    float64
		want error
	}{
		{name: "1bad", p: 0.5, want: ErrInvalidName},
		{name: "", p: 0.5, want: ErrInvalidName},
		{name: "args", p: 0.5, want: ErrInvalidName},
		{name: "int", p: 0.5, want: ErrInvalidName},
		{name: "class", p: 0.5, want: ErrInvalidName},
		{name: "delete", p: 0.5, want: ErrInvalidName},
		{name: "a", p: 1.5, want: vars.ErrInvalidProbability},
		{name: "a", p: -0.1, want: vars.ErrInvalidProbability},
	}
	for _, tc := range cases {
		if err := sys.Declare(tc.name, tc.p); !errors.Is(err, tc.want) {
			t.Fatalf("Declare(%q, %v) = %v, want %v", tc.name, tc.p, err, tc.want)
		}
	}
	if sys.Len() != 0 {
		t.Fatalf("failed declarations must not add variables")
	}

	if err := sys.Declare("a", 0.5); err != nil {
		t.Fatalf("declare a: %v", err)
	}
	if err := sys.Declare("a", 0.5); !errors.Is(err, ErrDuplicateVariable) {
		t.Fatalf("expected ErrDuplicateVariable, got %v", err)
	}
	if err := sys.Declare("b", 0.5); err != nil {
		t.Fatalf("declare b: %v", err)
	}
	if err := sys.Declare("c", 0.5); !errors.Is(err, ErrTooManyVariables) {
		t.Fatalf("expected ErrTooManyVariables, got %v", err)
	}
	if err := sys.Not("d", "a"); !errors.Is(err, ErrTooManyVariables) {
		t.Fatalf("expected derivations to respect capacity, got %v", err)
	}
}

func TestWithMaxVariablesClamps(t *testing.T) {
	if got := New(WithMaxVariables(100)).cfg.maxVariables; got != HardMaxVariables {
		t.Fatalf("expected clamp to %d, got %d", HardMaxVariables, got)
	}
	if got := New(WithMaxVariables(0)).cfg.maxVariables; got != 1 {
		t.Fatalf("expected clamp to 1, got %d", got)
	}
	if got := New().cfg.maxVariables; got != DefaultMaxVariables {
		t.Fatalf("expected default %d, got %d", DefaultMaxVariables, got)
	}
}

func TestUnknownVariable(t *testing.T) {
	sys := New()
	if _, err := sys.Probability("ghost"); !errors.Is(err, ErrUnknownVariable) {
		t.Fatalf("Probability: expected ErrUnknownVariable, got %v", err)
	}
	if _, err := sys.Observe("ghost"); !errors.Is(err, ErrUnknownVariable) {
		t.Fatalf("Observe: expected ErrUnknownVariable, got %v", err)
	}
	if err := sys.Condition("ghost", true); !errors.Is(err, ErrUnknownVariable) {
		t.Fatalf("Condition: expected ErrUnknownVariable, got %v", err)
	}
	if err := sys.And("c", "ghost", "ghost"); !errors.Is(err, ErrUnknownVariable) {
		t.Fatalf("And: expected ErrUnknownVariable, got %v", err)
	}
	if _, err := sys.Marginal("ghost"); !errors.Is(err, ErrUnknownVariable) {
		t.Fatalf("Marginal: expected ErrUnknownVariable, got %v", err)
	}
}

func TestConditioningExplainsAway(t *testing.T) {
	sys := sprinklerSystem(t)

	if p := mustProbability(t, sys, "wet"); !approx(p, 0.58) {
		t.Fatalf("P(wet) = %v, want 0.58", p)
	}
	if err := sys.Condition("wet", true); err != nil {
		t.Fatalf("condition wet: %v", err)
	}
	if p := mustProbability(t, sys, "rain"); !approx(p, 0.3/0.58) {
		t.Fatalf("P(rain | wet) = %v", p)
	}
	if err := sys.Condition("sprinkler", true); err != nil {
		t.Fatalf("condition sprinkler: %v", err)
	}
	if p := mustProbability(t, sys, "rain"); !approx(p, 0.3) {
		t.Fatalf("P(rain | wet, sprinkler) = %v, want prior 0.3", p)
	}
}

func TestConditionImpossibleEvidenceLeavesSystemUnchanged(t *testing.T) {
	sys := New()
	if err := sys.Declare("a", 0); err != nil {
		t.Fatalf("declare: %v", err)
	}
	before := sys.Worlds()
	if err := sys.Condition("a", true); !errors.Is(err, ErrImpossibleEvidence) {
		t.Fatalf("expected ErrImpossibleEvidence, got %v", err)
	}
	after := sys.Worlds()
	if len(before) != len(after) || before[0].Probability != after[0].Probability {
		t.Fatalf("system changed: %v -> %v", before, after)
	}
	if len(sys.History().Observations()) != 0 {
		t.Fatalf("failed evidence must not be recorded")
	}
}

// Observing a conjunction as true forces both inputs.
func TestObserveDerivedAndBackPropagates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sys := New(WithSeed(rapid.Uint64().Draw(t, "seed")))
		pa := rapid.Float64Range(0.05, 1).Draw(t, "pa")
		pb := rapid.Float64Range(0.05, 1).Draw(t, "pb")
		_ = sys.Declare("a", pa)
		_ = sys.Declare("b", pb)
		if err := sys.And("c", "a", "b"); err != nil {
			t.Fatalf("and: %v", err)
		}

		outcome, err := sys.Observe("c")
		if err != nil {
			t.Fatalf("observe: %v", err)
		}
		if outcome {
			if mustProbability(t, sys, "a") != 1 || mustProbability(t, sys, "b") != 1 {
				t.Fatalf("c observed true but inputs not certain")
			}
			return
		}
		both, _ := sys.Query("a && b")
		if both != 0 {
			t.Fatalf("c observed false but a && b has probability %v", both)
		}
	})
}

// Observing one variable of a correlated pair moves the other's marginal
// without collapsing it.
func TestObserveUpdatesCorrelatedPartner(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sys := New(WithSeed(rapid.Uint64().Draw(t, "seed")))
		noise := rapid.Float64Range(0.05, 0.45).Draw(t, "noise")
		_ = sys.Declare("a", 0.5)
		_ = sys.Declare("flip", noise)
		if err := sys.Derive("b", "a != flip"); err != nil {
			t.Fatalf("derive: %v", err)
		}
		if p := mustProbability(t, sys, "b"); math.Abs(p-0.5) > tolerance {
			t.Fatalf("P(b) = %v before observation", p)
		}

		a, err := sys.Observe("a")
		if err != nil {
			t.Fatalf("observe: %v", err)
		}
		want := noise
		if a {
			want = 1 - noise
		}
		got := mustProbability(t, sys, "b")
		if math.Abs(got-want) > tolerance {
			t.Fatalf("P(b | a=%v) = %v, want %v", a, got, want)
		}
		if got == 0 || got == 1 {
			t.Fatalf("partner collapsed to %v", got)
		}
	})
}

func TestWeightsStayNormalized(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sys := New(WithSeed(rapid.Uint64().Draw(t, "seed")), WithMaxVariables(8))
		names := []string{}
		steps := rapid.IntRange(1, 20).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			op := rapid.IntRange(0, 3).Draw(t, "op")
			switch {
			case op == 0 || len(names) < 2:
				name := string(rune('a' + len(names)))
				if sys.Declare(name, rapid.Float64Range(0, 1).Draw(t, "p")) == nil {
					names = append(names, name)
				}
			case op == 1:
				name := string(rune('a' + len(names)))
				l := rapid.SampledFrom(names).Draw(t, "left")
				r := rapid.SampledFrom(names).Draw(t, "right")
				if sys.Or(name, l, r) == nil {
					names = append(names, name)
				}
			case op == 2:
				if _, err := sys.Observe(rapid.SampledFrom(names).Draw(t, "observe")); err != nil {
					t.Fatalf("observe: %v", err)
				}
			default:
				_ = sys.Condition(rapid.SampledFrom(names).Draw(t, "cond"), rapid.Bool().Draw(t, "value"))
			}
			if total := totalWeight(sys); math.Abs(total-1) > tolerance {
				t.Fatalf("weights sum to %v after step %d", total, i)
			}
			for _, w := range sys.weights {
				if w < 0 {
					t.Fatalf("negative weight %v", w)
				}
			}
		}
	})
}

func TestObserveIsSticky(t *testing.T) {
	sys := sprinklerSystem(t, WithSeed(11))
	first, err := sys.Observe("wet")
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := sys.Observe("wet")
		if again != first {
			t.Fatalf("re-observation %d = %v, want %v", i, again, first)
		}
	}
}

func TestObserveConsumesOneSample(t *testing.T) {
	draws := 0
	src := vars.SourceFunc(func() float64 {
		draws++
		return 0.99
	})
	sys := sprinklerSystem(t, WithSource(src))
	if _, err := sys.Query("wet && rain"); err != nil {
		t.Fatalf("query: %v", err)
	}
	if _, err := sys.Probability("wet"); err != nil {
		t.Fatalf("probability: %v", err)
	}
	if draws != 0 {
		t.Fatalf("peeking consumed %d samples", draws)
	}
	wet, _ := sys.Observe("wet")
	if draws != 1 || wet {
		t.Fatalf("expected one draw resolving false, got draws=%d wet=%v", draws, wet)
	}
	if p := mustProbability(t, sys, "rain"); p != 0 {
		t.Fatalf("dry lawn must rule out rain, got %v", p)
	}
}

func TestMarginalProjectsIndependentRandomBool(t *testing.T) {
	sys := sprinklerSystem(t, WithSeed(3))
	coin, err := sys.Marginal("wet")
	if err != nil {
		t.Fatalf("marginal: %v", err)
	}
	if !approx(coin.Probability(), 0.58) || coin.Label() != "wet" {
		t.Fatalf("unexpected projection %v", coin)
	}
	coin.Get()
	if p := mustProbability(t, sys, "wet"); !approx(p, 0.58) {
		t.Fatalf("observing the projection changed the system: %v", p)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	sys := sprinklerSystem(t)
	clone := sys.Clone()
	if err := clone.Condition("rain", true); err != nil {
		t.Fatalf("condition clone: %v", err)
	}
	if p := mustProbability(t, sys, "rain"); !approx(p, 0.3) {
		t.Fatalf("original changed: %v", p)
	}
	if len(sys.History().Entries) == len(clone.History().Entries) {
		t.Fatalf("expected histories to diverge")
	}

	holder, err := vars.NewVariable(sys)
	if err != nil {
		t.Fatalf("NewVariable: %v", err)
	}
	copied := holder.Get()
	if copied == sys {
		t.Fatalf("expected Get to clone the system")
	}
	if err := copied.Condition("wet", false); err != nil {
		t.Fatalf("condition copy: %v", err)
	}
	if p := mustProbability(t, holder.Get(), "wet"); !approx(p, 0.58) {
		t.Fatalf("stored system changed: %v", p)
	}
}

func TestWorldsListsSupportInMaskOrder(t *testing.T) {
	sys := sprinklerSystem(t)
	worlds := sys.Worlds()
	if len(worlds) != 4 || sys.Support() != 4 {
		t.Fatalf("expected 4 worlds, got %d", len(worlds))
	}
	for i := 1; i < len(worlds); i++ {
		if worlds[i].Mask <= worlds[i-1].Mask {
			t.Fatalf("worlds not ordered by mask")
		}
	}
	for _, world := range worlds {
		if world.Values["wet"] != (world.Values["rain"] || world.Values["sprinkler"]) {
			t.Fatalf("inconsistent world %+v", world)
		}
	}
}
