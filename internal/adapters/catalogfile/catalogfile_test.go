package catalogfile_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jwpang/cardwise/internal/adapters/catalogfile"
	"github.com/jwpang/cardwise/internal/domain/catalog"
	"github.com/jwpang/cardwise/internal/domain/spend"
	. "github.com/smartystreets/goconvey/convey"
)

func writeTempCatalog(content string) string {
	f, err := os.CreateTemp("", "cardwise-catalog-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	if err := f.Close(); err != nil {
		panic(err)
	}
	return f.Name()
}

func TestLoad(t *testing.T) {
	Convey("Given a catalog YAML file", t, func() {
		ctx := context.Background()

		Convey("When the file describes a full card set", func() {
			path := writeTempCatalog(`
version: "2025-08"
cards:
  - id: everyday
    name: Everyday Cashback
    issuer: Meridian Bank
    kind: cashback
    policy: default
    tiers:
      - description: Min spend $800
        min_spend: 800
        cap: 80
        base_rate: 0.25
        rates:
          - category: dining
            value: 6
            cap_amount: 30
            cap_type: earned
  - id: grouped
    name: Preferred Choice
    issuer: Harborview Bank
    kind: miles
    policy: top_groups
    tiers:
      - description: Standard
        base_rate: 0.4
    group_bonus:
      pick: 1
      bonus_rate: 4
      group_cap: 1000
      groups:
        - name: transport
          members: [transport, simplygo, petrol]
        - name: dining
          members: [dining]
`)
			defer func() { _ = os.Remove(path) }()

			cat, err := catalogfile.Load(ctx, path)

			Convey("Then it parses and validates", func() {
				So(err, ShouldBeNil)
				So(cat.Version, ShouldEqual, "2025-08")
				So(len(cat.Cards), ShouldEqual, 2)
			})

			Convey("And the rate details survive the round trip", func() {
				So(err, ShouldBeNil)
				tier := cat.Cards[0].Tiers[0]
				So(tier.Cap, ShouldEqual, 80)
				r, ok := tier.RateFor(spend.Dining)
				So(ok, ShouldBeTrue)
				So(r.Value, ShouldEqual, 6)
				So(r.CapType, ShouldEqual, catalog.CapEarned)
			})

			Convey("And the group bonus converts intact", func() {
				So(err, ShouldBeNil)
				gb := cat.Cards[1].GroupBonus
				So(gb, ShouldNotBeNil)
				So(gb.Pick, ShouldEqual, 1)
				So(len(gb.Groups), ShouldEqual, 2)
				So(len(gb.Groups[0].Members), ShouldEqual, 3)
			})
		})

		Convey("When the file omits a version", func() {
			path := writeTempCatalog(`
cards:
  - id: flat
    name: Flat
    kind: cashback
    tiers:
      - description: Flat
        base_rate: 1
`)
			defer func() { _ = os.Remove(path) }()

			first, err := catalogfile.Load(ctx, path)
			So(err, ShouldBeNil)
			second, err := catalogfile.Load(ctx, path)
			So(err, ShouldBeNil)

			Convey("Then each load gets a distinct generated version", func() {
				So(first.Version, ShouldNotBeEmpty)
				So(first.Version, ShouldNotEqual, second.Version)
			})
		})

		Convey("When a card fails validation", func() {
			path := writeTempCatalog(`
cards:
  - id: bad
    name: Bad Category
    kind: cashback
    tiers:
      - description: Standard
        base_rate: 1
        rates:
          - category: gambling
            value: 2
`)
			defer func() { _ = os.Remove(path) }()

			_, err := catalogfile.Load(ctx, path)

			Convey("Then the error names the card and matches the sentinel", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, catalogfile.ErrInvalidCatalog), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Bad Category")
			})
		})

		Convey("When the file does not exist", func() {
			_, err := catalogfile.Load(ctx, "/nonexistent/catalog.yaml")
			So(errors.Is(err, catalogfile.ErrLoadCatalog), ShouldBeTrue)
		})
	})
}

func TestDefault(t *testing.T) {
	Convey("Given the built-in catalog", t, func() {
		cat := catalogfile.Default()

		Convey("Then it validates and carries every policy variant", func() {
			So(len(cat.Cards), ShouldBeGreaterThanOrEqualTo, 6)
			policies := map[catalog.Policy]bool{}
			for _, c := range cat.Cards {
				policies[c.Policy] = true
			}
			So(policies[catalog.PolicyDefault], ShouldBeTrue)
			So(policies[catalog.PolicyTopGroups], ShouldBeTrue)
			So(policies[catalog.PolicySingleTop], ShouldBeTrue)
			So(policies[catalog.PolicyDualBucket], ShouldBeTrue)
			So(policies[catalog.PolicySharedCapTopUp], ShouldBeTrue)
		})

		Convey("And consecutive calls stamp distinct versions", func() {
			So(cat.Version, ShouldNotEqual, catalogfile.Default().Version)
		})
	})
}
