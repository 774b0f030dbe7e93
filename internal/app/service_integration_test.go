package service_test

import (
	"context"
	"testing"

	service "github.com/jwpang/cardwise/internal/app"
	"github.com/jwpang/cardwise/internal/domain/spend"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service on the built-in catalog", t, func() {
		svc := service.New(
			service.WithSearchParallelism(2),
			service.WithMaxResults(5),
		)
		defer svc.Stop()

		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		vec := mustVector(map[spend.Category]float64{
			spend.Dining:    800,
			spend.Groceries: 400,
			spend.Online:    300,
		})

		Convey("When computing ranked rewards", func() {
			results, err := svc.Rewards(ctx, vec, 0)

			Convey("Then results come back ranked and capped at max results", func() {
				So(err, ShouldBeNil)
				So(len(results), ShouldBeGreaterThan, 0)
				So(len(results), ShouldBeLessThanOrEqualTo, 5)
				for i := 1; i < len(results); i++ {
					So(results[i].MonthlyReward, ShouldBeLessThanOrEqualTo, results[i-1].MonthlyReward)
				}
			})

			Convey("And a repeated call serves the memoized results", func() {
				So(err, ShouldBeNil)
				again, err := svc.Rewards(ctx, vec, 0)
				So(err, ShouldBeNil)
				So(len(again), ShouldEqual, len(results))
				So(again[0].CardID, ShouldEqual, results[0].CardID)
			})
		})

		Convey("When searching two-card combinations", func() {
			pairs, err := svc.Pairings(ctx, vec, 0, 3)

			Convey("Then the top pairs come back ranked", func() {
				So(err, ShouldBeNil)
				So(len(pairs), ShouldEqual, 3)
				So(pairs[0].Combined, ShouldBeGreaterThanOrEqualTo, pairs[1].Combined)
			})

			Convey("And a combination never loses to the best single card", func() {
				So(err, ShouldBeNil)
				results, err := svc.Rewards(ctx, vec, 0)
				So(err, ShouldBeNil)
				So(pairs[0].Combined, ShouldBeGreaterThanOrEqualTo, results[0].MonthlyReward-1e-9)
			})
		})

		Convey("When listing cards", func() {
			version, cards, err := svc.Cards(ctx)

			Convey("Then the active catalog is visible", func() {
				So(err, ShouldBeNil)
				So(version, ShouldNotBeEmpty)
				So(len(cards), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When reloading the catalog", func() {
			before, _, err := svc.Cards(ctx)
			So(err, ShouldBeNil)
			_, err = svc.Rewards(ctx, vec, 0)
			So(err, ShouldBeNil)

			version, err := svc.Reload(ctx)

			Convey("Then the version changes and caches flush", func() {
				So(err, ShouldBeNil)
				So(version, ShouldNotEqual, before)
				stats := svc.GetStats()
				So(stats["cachedRewards"], ShouldEqual, 0)
				So(stats["cachedPairings"], ShouldEqual, 0)
			})
		})
	})
}
