package catalog_test

import (
	"errors"
	"testing"

	"github.com/jwpang/cardwise/internal/domain/catalog"
	"github.com/jwpang/cardwise/internal/domain/spend"
	. "github.com/smartystreets/goconvey/convey"
)

func validCard() catalog.Card {
	return catalog.Card{
		ID:     "basic-cashback",
		Name:   "Basic Cashback",
		Issuer: "Acme Bank",
		Kind:   catalog.KindCashback,
		Policy: catalog.PolicyDefault,
		Tiers: []catalog.Tier{{
			Description: "flat",
			BaseRate:    1.5,
			Rates: []catalog.Rate{
				{Category: spend.Dining, Value: 6, CapAmount: 80, CapType: catalog.CapEarned},
			},
		}},
	}
}

func TestCardValidate(t *testing.T) {
	Convey("Given a well-formed default-policy card", t, func() {
		card := validCard()

		Convey("Then it validates", func() {
			So(card.Validate(), ShouldBeNil)
		})

		Convey("When the kind is unknown", func() {
			card.Kind = "points"
			err := card.Validate()

			Convey("Then validation fails with ErrInvalidCard", func() {
				So(errors.Is(err, catalog.ErrInvalidCard), ShouldBeTrue)
			})
		})

		Convey("When a rate is negative", func() {
			card.Tiers[0].Rates[0].Value = -1
			err := card.Validate()

			Convey("Then validation fails with ErrInvalidRate", func() {
				So(errors.Is(err, catalog.ErrInvalidRate), ShouldBeTrue)
			})
		})

		Convey("When a rate names an unknown category", func() {
			card.Tiers[0].Rates[0].Category = "gambling"
			err := card.Validate()

			Convey("Then validation fails with ErrUnknownCategory", func() {
				So(errors.Is(err, catalog.ErrUnknownCategory), ShouldBeTrue)
			})
		})

		Convey("When a cap amount is present but its type is missing", func() {
			card.Tiers[0].Rates[0].CapType = ""
			err := card.Validate()

			Convey("Then validation still passes; the engine degrades such caps", func() {
				So(err, ShouldBeNil)
			})
		})
	})

	Convey("Given policy configuration variants", t, func() {
		Convey("When a top_groups card has no group config", func() {
			card := validCard()
			card.Policy = catalog.PolicyTopGroups
			err := card.Validate()

			So(errors.Is(err, catalog.ErrInvalidPolicy), ShouldBeTrue)
		})

		Convey("When a top_groups card picks an unsupported subset size", func() {
			card := validCard()
			card.Policy = catalog.PolicyTopGroups
			card.GroupBonus = &catalog.GroupBonus{
				Groups: []catalog.Group{{Name: "dining", Members: []spend.Category{spend.Dining}}},
				Pick:   3, BonusRate: 4, GroupCap: 1000,
			}
			err := card.Validate()

			So(errors.Is(err, catalog.ErrInvalidPolicy), ShouldBeTrue)
		})

		Convey("When dual buckets overlap", func() {
			card := validCard()
			card.Policy = catalog.PolicyDualBucket
			card.DualBucket = &catalog.DualBucket{Buckets: [2]catalog.Bucket{
				{Name: "fcy", Members: []spend.Category{spend.ForeignCurrency}, MinSpend: 1000, Cap: 1200, BonusRate: 4},
				{Name: "local", Members: []spend.Category{spend.ForeignCurrency, spend.Dining}, MinSpend: 1000, Cap: 1200, BonusRate: 4},
			}}
			err := card.Validate()

			So(errors.Is(err, catalog.ErrInvalidPolicy), ShouldBeTrue)
		})

		Convey("When the policy tag itself is unknown", func() {
			card := validCard()
			card.Policy = "vip"
			err := card.Validate()

			So(errors.Is(err, catalog.ErrInvalidPolicy), ShouldBeTrue)
		})
	})
}

func TestCatalogNew(t *testing.T) {
	Convey("Given a set of cards", t, func() {
		Convey("When every card validates", func() {
			cat, err := catalog.New("v1", []catalog.Card{validCard()})

			Convey("Then the catalog is assembled with its version", func() {
				So(err, ShouldBeNil)
				So(cat.Version, ShouldEqual, "v1")
				So(len(cat.Cards), ShouldEqual, 1)
			})
		})

		Convey("When one card is invalid", func() {
			bad := validCard()
			bad.Kind = "points"
			_, err := catalog.New("v1", []catalog.Card{validCard(), bad})

			Convey("Then assembly fails and names the card", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, bad.Name)
			})
		})
	})
}

func TestTierAccessors(t *testing.T) {
	Convey("Given a tier with mixed rate entries", t, func() {
		tier := catalog.Tier{
			BaseRate: 0.4,
			Rates: []catalog.Rate{
				{Category: spend.Dining, Value: 4},
				{Category: spend.Groceries, Value: 0},
				{Category: spend.Travel, Value: 2.4},
			},
		}

		Convey("Then RateFor finds entries by category", func() {
			r, ok := tier.RateFor(spend.Travel)
			So(ok, ShouldBeTrue)
			So(r.Value, ShouldEqual, 2.4)

			_, ok = tier.RateFor(spend.Utilities)
			So(ok, ShouldBeFalse)
		})

		Convey("And BonusCategories skips zero-rate entries", func() {
			So(tier.BonusCategories(), ShouldResemble, []spend.Category{spend.Dining, spend.Travel})
		})
	})
}
