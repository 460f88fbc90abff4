package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/items/internal/config"
	"github.com/okian/items/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			setEnv(t, map[string]string{
				"PORT":                 "",
				"MONGODB_URI":          "",
				"ITEMS_ADDR":           ":8080",
				"ITEMS_STORE":          "memory",
				"ITEMS_DOTENV":         "does-not-exist.env",
				"ITEMS_LOG_FORMAT":     "json",
				"ITEMS_MAX_BODY_BYTES": "2048",
			})

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, int64(2048))
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a memory-backed application", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := config.New()
		cfg.Store = config.StoreMemory
		cfg.CORSOrigin = "http://localhost:3000"

		svc := newService(cfg, logger.Nop())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		h := newHandler(ctx, cfg, svc, logger.Nop())

		serve := func(method, target, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, target, strings.NewReader(body))
			if body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec
		}

		convey.Convey("Then every route should be registered", func() {
			for _, target := range []string{"/api/health", "/api/items", "/readyz", "/metrics", "/openapi.yaml", "/api-docs"} {
				rec := serve(http.MethodGet, target, "")
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(rec.Header().Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "http://localhost:3000")
			}
		})

		convey.Convey("Then an item should round-trip through the API", func() {
			rec := serve(http.MethodPost, "/api/items", `{"name":"foo","description":"bar"}`)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusCreated)

			var created struct {
				ID string `json:"_id"`
			}
			convey.So(json.Unmarshal(rec.Body.Bytes(), &created), convey.ShouldBeNil)

			list := serve(http.MethodGet, "/api/items", "")
			convey.So(list.Body.String(), convey.ShouldContainSubstring, created.ID)

			convey.So(serve(http.MethodDelete, "/api/items/"+created.ID, "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(serve(http.MethodGet, "/api/items", "").Body.String(), convey.ShouldNotContainSubstring, created.ID)
		})

		convey.Convey("Then unknown routes should be 404", func() {
			convey.So(serve(http.MethodGet, "/nope", "").Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMainApplicationMongoUnavailable(t *testing.T) {
	convey.Convey("Given a mongo backend with an unusable URI", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.MongoURI = "not-a-mongodb-uri"

		svc := newService(cfg, logger.Nop())

		convey.Convey("Then startup should not fail", func() {
			convey.So(svc.Start(ctx), convey.ShouldBeNil)

			convey.Convey("And item routes should report the store as unavailable", func() {
				h := newHandler(ctx, cfg, svc, logger.Nop())
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items", http.NoBody))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusServiceUnavailable)

				health := httptest.NewRecorder()
				h.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody))
				convey.So(health.Code, convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestMainApplicationUnreachableMongo(t *testing.T) {
	convey.Convey("Given the default config pointing at an unreachable mongo", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.MongoURI = "mongodb://127.0.0.1:1/merndb"
		cfg.ConnectTimeoutMS = 200

		svc := newService(cfg, logger.Nop())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		ts := httptest.NewUnstartedServer(newHandler(ctx, cfg, svc, logger.Nop()))
		ts.Config.ReadTimeout = readTimeout
		ts.Config.WriteTimeout = writeTimeout
		ts.Config.IdleTimeout = idleTimeout
		ts.Config.ReadHeaderTimeout = readHeaderTimeout
		ts.Start()
		defer ts.Close()

		convey.Convey("When listing items", func() {
			client := &http.Client{Timeout: 3 * writeTimeout}
			start := time.Now()
			resp, err := client.Get(ts.URL + "/api/items")
			elapsed := time.Since(start)

			convey.Convey("Then the store error should reach the client before the write deadline", func() {
				convey.So(err, convey.ShouldBeNil)
				defer resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusServiceUnavailable)
				convey.So(elapsed, convey.ShouldBeLessThan, writeTimeout)

				var body struct {
					Error string `json:"error"`
					Code  string `json:"code"`
				}
				convey.So(json.NewDecoder(resp.Body).Decode(&body), convey.ShouldBeNil)
				convey.So(body.Code, convey.ShouldEqual, "connection")
				convey.So(body.Error, convey.ShouldNotBeEmpty)
			})
		})
	})
}

func TestStoreTimeout(t *testing.T) {
	convey.Convey("Given operation timeouts", t, func() {
		cfg := config.New()

		convey.Convey("Then the default should fit inside the write deadline", func() {
			convey.So(storeTimeout(cfg), convey.ShouldBeLessThan, writeTimeout)
		})

		convey.Convey("Then zero should be capped", func() {
			cfg.OperationTimeoutMS = 0
			convey.So(storeTimeout(cfg), convey.ShouldEqual, maxStoreTimeout)
		})

		convey.Convey("Then values past the write deadline should be capped", func() {
			cfg.OperationTimeoutMS = 60_000
			convey.So(storeTimeout(cfg), convey.ShouldEqual, maxStoreTimeout)
		})

		convey.Convey("Then shorter values should be kept", func() {
			cfg.OperationTimeoutMS = 1500
			convey.So(storeTimeout(cfg), convey.ShouldEqual, 1500*time.Millisecond)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should return once the context is done", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
