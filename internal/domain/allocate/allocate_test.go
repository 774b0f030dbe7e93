package allocate_test

import (
	"context"
	"testing"

	"github.com/jwpang/cardwise/internal/domain/allocate"
	"github.com/jwpang/cardwise/internal/domain/catalog"
	"github.com/jwpang/cardwise/internal/domain/reward"
	"github.com/jwpang/cardwise/internal/domain/spend"
	. "github.com/smartystreets/goconvey/convey"
)

func mustVector(amounts map[spend.Category]float64) spend.Vector {
	v, err := spend.NewVector(amounts)
	if err != nil {
		panic(err)
	}
	return v
}

func flatCashback(id, name string, rate float64) catalog.Card {
	return catalog.Card{
		ID:     id,
		Name:   name,
		Kind:   catalog.KindCashback,
		Policy: catalog.PolicyDefault,
		Tiers:  []catalog.Tier{{Description: "Flat", BaseRate: rate}},
	}
}

func TestAllocator_Split(t *testing.T) {
	Convey("Given an allocator over the reward engine", t, func() {
		engine := reward.New()
		alloc := allocate.New(engine)
		ctx := context.Background()

		Convey("When one card has a rich but capped dining rate", func() {
			cardA := catalog.Card{
				ID:     "a",
				Name:   "Capped Dining",
				Kind:   catalog.KindCashback,
				Policy: catalog.PolicyDefault,
				Tiers: []catalog.Tier{{
					Description: "Standard",
					Rates: []catalog.Rate{
						{Category: spend.Dining, Value: 6, CapAmount: 50, CapType: catalog.CapEarned},
					},
				}},
			}
			cardB := flatCashback("b", "Flat Two", 2)
			vec := mustVector(map[spend.Category]float64{spend.Dining: 2000})

			result, err := alloc.Split(ctx, cardA, cardB, vec, 0)
			So(err, ShouldBeNil)

			Convey("Then spend fills the capped card exactly to its cap", func() {
				So(result.SpendA.Amount(spend.Dining), ShouldAlmostEqual, 50.0/0.06, 0.01)
				So(result.ResultA.MonthlyReward, ShouldAlmostEqual, 50, 0.01)
			})

			Convey("And the overflow lands on the flat card", func() {
				So(result.SpendB.Amount(spend.Dining), ShouldAlmostEqual, 2000-50.0/0.06, 0.01)
				So(result.ResultB.MonthlyReward, ShouldAlmostEqual, (2000-50.0/0.06)*0.02, 0.01)
			})

			Convey("And the combination beats either card alone", func() {
				soloA, err := engine.Evaluate(ctx, cardA, vec, 0)
				So(err, ShouldBeNil)
				soloB, err := engine.Evaluate(ctx, cardB, vec, 0)
				So(err, ShouldBeNil)
				So(result.Combined, ShouldBeGreaterThan, soloA.MonthlyReward)
				So(result.Combined, ShouldBeGreaterThan, soloB.MonthlyReward)
			})
		})

		Convey("When one card strictly dominates the other", func() {
			cardA := flatCashback("a", "Flat Three", 3)
			cardB := flatCashback("b", "Flat One", 1)
			vec := mustVector(map[spend.Category]float64{
				spend.Dining: 700,
				spend.Retail: 900,
			})

			result, err := alloc.Split(ctx, cardA, cardB, vec, 0)
			So(err, ShouldBeNil)

			Convey("Then everything routes to the dominant card", func() {
				So(result.SpendA.Total(), ShouldAlmostEqual, 1600)
				So(result.SpendB.IsZero(), ShouldBeTrue)
				So(result.Combined, ShouldAlmostEqual, 48)
			})
		})

		Convey("When each card excels at different categories", func() {
			cardA := catalog.Card{
				ID:     "a",
				Name:   "Dining Card",
				Kind:   catalog.KindCashback,
				Policy: catalog.PolicyDefault,
				Tiers: []catalog.Tier{{
					Description: "Standard",
					BaseRate:    0.3,
					Rates:       []catalog.Rate{{Category: spend.Dining, Value: 5}},
				}},
			}
			cardB := catalog.Card{
				ID:     "b",
				Name:   "Grocery Card",
				Kind:   catalog.KindCashback,
				Policy: catalog.PolicyDefault,
				Tiers: []catalog.Tier{{
					Description: "Standard",
					BaseRate:    0.3,
					Rates:       []catalog.Rate{{Category: spend.Groceries, Value: 5}},
				}},
			}
			vec := mustVector(map[spend.Category]float64{
				spend.Dining:    600,
				spend.Groceries: 400,
			})

			result, err := alloc.Split(ctx, cardA, cardB, vec, 0)
			So(err, ShouldBeNil)

			Convey("Then each category lands on its specialist", func() {
				So(result.SpendA.Amount(spend.Dining), ShouldAlmostEqual, 600)
				So(result.SpendB.Amount(spend.Groceries), ShouldAlmostEqual, 400)
				So(result.Combined, ShouldAlmostEqual, 600*0.05+400*0.05)
			})
		})

		Convey("When a group-bonus card is in the pair", func() {
			groupCard := catalog.Card{
				ID:     "g",
				Name:   "Group Bonus",
				Kind:   catalog.KindMiles,
				Policy: catalog.PolicyTopGroups,
				Tiers:  []catalog.Tier{{Description: "Standard", BaseRate: 0.4}},
				GroupBonus: &catalog.GroupBonus{
					Groups: []catalog.Group{
						{Name: "dining", Members: []spend.Category{spend.Dining}},
						{Name: "retail", Members: []spend.Category{spend.Retail}},
					},
					Pick:      1,
					BonusRate: 4,
					GroupCap:  1000,
				},
			}
			flat := flatCashback("f", "Flat Two", 2)
			vec := mustVector(map[spend.Category]float64{
				spend.Dining: 900,
				spend.Retail: 800,
			})

			result, err := alloc.Split(ctx, groupCard, flat, vec, 0.02)
			So(err, ShouldBeNil)

			Convey("Then the bonus group takes its category and the flat card the rest", func() {
				// dining @ 4 mpd on the group card beats 2% flat;
				// retail at group-card base 0.4 mpd loses to 2% flat
				So(result.SpendA.Amount(spend.Dining), ShouldAlmostEqual, 900)
				So(result.SpendB.Amount(spend.Retail), ShouldAlmostEqual, 800)
				So(result.Combined, ShouldAlmostEqual, 900*4*0.02+800*0.02)
			})
		})

		Convey("When the spend vector is empty", func() {
			result, err := alloc.Split(ctx, flatCashback("a", "A", 1), flatCashback("b", "B", 2), spend.Zero(), 0)
			So(err, ShouldBeNil)
			So(result.Combined, ShouldEqual, 0)
		})
	})
}

func TestAllocator_CombinedNeverWorse(t *testing.T) {
	Convey("Given assorted card pairs and vectors", t, func() {
		engine := reward.New()
		alloc := allocate.New(engine)
		ctx := context.Background()

		cards := []catalog.Card{
			flatCashback("f1", "Flat One", 1),
			{
				ID:     "cap",
				Name:   "Capped Six",
				Kind:   catalog.KindCashback,
				Policy: catalog.PolicyDefault,
				Tiers: []catalog.Tier{{
					Description: "Standard",
					BaseRate:    0.5,
					Rates:       []catalog.Rate{{Category: spend.Dining, Value: 6, CapAmount: 60, CapType: catalog.CapEarned}},
				}},
			},
			{
				ID:     "tiered",
				Name:   "Tiered",
				Kind:   catalog.KindCashback,
				Policy: catalog.PolicyDefault,
				Tiers: []catalog.Tier{
					{Description: "Entry", MinSpend: 0, BaseRate: 0.5},
					{Description: "Bonus", MinSpend: 1200, BaseRate: 2},
				},
			},
		}
		vectors := []spend.Vector{
			mustVector(map[spend.Category]float64{spend.Dining: 2000}),
			mustVector(map[spend.Category]float64{spend.Dining: 500, spend.Retail: 700, spend.Travel: 250}),
			mustVector(map[spend.Category]float64{spend.Online: 1500, spend.Groceries: 90}),
		}

		Convey("Then the split never pays less than the better single card", func() {
			for i := 0; i < len(cards); i++ {
				for j := i + 1; j < len(cards); j++ {
					for _, vec := range vectors {
						result, err := alloc.Split(ctx, cards[i], cards[j], vec, 0)
						So(err, ShouldBeNil)
						soloA, err := engine.Evaluate(ctx, cards[i], vec, 0)
						So(err, ShouldBeNil)
						soloB, err := engine.Evaluate(ctx, cards[j], vec, 0)
						So(err, ShouldBeNil)
						So(result.Combined, ShouldBeGreaterThanOrEqualTo, soloA.MonthlyReward-1e-9)
						So(result.Combined, ShouldBeGreaterThanOrEqualTo, soloB.MonthlyReward-1e-9)
					}
				}
			}
		})
	})
}
