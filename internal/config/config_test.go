package config_test

import (
	"testing"
	"time"

	"github.com/okian/items/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have the service defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":5000")
			convey.So(cfg.Store, convey.ShouldEqual, config.StoreMongo)
			convey.So(cfg.MongoURI, convey.ShouldEqual, "mongodb://mongo:27017/merndb")
			convey.So(cfg.MongoCollection, convey.ShouldEqual, "items")
			convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, 102400)
			convey.So(cfg.CORSOrigin, convey.ShouldEqual, "*")
			convey.So(cfg.ConnectTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.OperationTimeout(), convey.ShouldEqual, 8*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
