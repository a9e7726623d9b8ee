package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/okian/demandrank/internal/adapters/upload"
	service "github.com/okian/demandrank/internal/app"
	"github.com/okian/demandrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.AllowedExtensions(), ShouldResemble, []string{"xlsx", "xls"})
			So(svc.Allowed("orders.xlsx"), ShouldBeTrue)
			So(svc.Allowed("orders.csv"), ShouldBeFalse)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(8),
			service.WithJobTimeout(time.Second),
			service.WithAllowedExtensions([]string{"csv"}),
		)

		Convey("Then the options are applied", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["queueSize"], ShouldEqual, 8)
			So(svc.Allowed("orders.csv"), ShouldBeTrue)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithUploadDir(t.TempDir()), service.WithWorkerCount(1))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When ranking before Start", func() {
			_, err := svc.RankUpload(ctx, "orders.xlsx", strings.NewReader(""))

			Convey("Then it fails", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When starting the service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["queueLength"], ShouldEqual, 0)
				svc.Stop()
			})

			Convey("And when stopping it", func() {
				svc.Stop()
				svc.Stop()

				Convey("Then it should be marked as stopped", func() {
					So(svc.GetStats()["started"], ShouldEqual, false)
				})
			})
		})
	})
}

func TestService_RankUploadRejects(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithUploadDir(t.TempDir()), service.WithMaxUploadBytes(4))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the extension is not allowed", func() {
			_, err := svc.RankUpload(ctx, "orders.csv", strings.NewReader("Date"))

			Convey("Then it is rejected", func() {
				So(errors.Is(err, service.ErrNotAllowed), ShouldBeTrue)
				So(svc.GetStats()["uploadsRejected"], ShouldEqual, int64(1))
			})
		})

		Convey("When the upload is too large", func() {
			_, err := svc.RankUpload(ctx, "orders.xlsx", strings.NewReader("0123456789"))

			Convey("Then it is rejected", func() {
				So(errors.Is(err, upload.ErrTooLarge), ShouldBeTrue)
			})
		})

		Convey("When the workbook is corrupt", func() {
			_, err := svc.RankUpload(ctx, "orders.xlsx", strings.NewReader("oops"))

			Convey("Then the failure is reported", func() {
				So(err, ShouldNotBeNil)
				So(svc.GetStats()["uploadsFailed"], ShouldEqual, int64(1))
			})
		})
	})
}
