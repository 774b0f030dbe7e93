package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/jwpang/cardwise/internal/adapters/http/api"
	app "github.com/jwpang/cardwise/internal/app"
	"github.com/jwpang/cardwise/internal/config"
	"github.com/jwpang/cardwise/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func TestMainWiring(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("CARDWISE_ADDR", ":8080")
			_ = os.Setenv("CARDWISE_MAX_RESULTS", "10")
			_ = os.Setenv("CARDWISE_MILES_RATE", "0.018")
			defer func() {
				_ = os.Unsetenv("CARDWISE_ADDR")
				_ = os.Unsetenv("CARDWISE_MAX_RESULTS")
				_ = os.Unsetenv("CARDWISE_MILES_RATE")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxResults, convey.ShouldEqual, 10)
				convey.So(cfg.MilesRate, convey.ShouldAlmostEqual, 0.018)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithMilesRate(0.015),
					app.WithMaxResults(20),
					app.WithSearchParallelism(2),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When wiring the HTTP server", func() {
			svc := app.New()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			err := svc.Start(ctx)
			convey.So(err, convey.ShouldBeNil)
			defer svc.Stop()

			mux := http.NewServeMux()
			apiServer := api.NewServer(svc, svc)
			apiServer.Register(ctx, mux)

			convey.Convey("Then the server should be constructible", func() {
				srv := &http.Server{
					Addr:              ":0",
					Handler:           mux,
					ReadTimeout:       readTimeout,
					WriteTimeout:      writeTimeout,
					IdleTimeout:       idleTimeout,
					ReadHeaderTimeout: readHeaderTimeout,
				}
				convey.So(srv, convey.ShouldNotBeNil)
				convey.So(srv.Handler, convey.ShouldEqual, mux)
			})
		})
	})
}
