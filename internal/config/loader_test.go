package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		ctx := context.Background()

		Convey("When nothing overrides the defaults", func() {
			cfg, err := config.Load(ctx)

			Convey("Then the default matching parameters come back", func() {
				So(err, ShouldBeNil)
				So(cfg.LogLevel, ShouldEqual, "info")
				So(cfg.MetricsAddr, ShouldBeEmpty)
				So(cfg.SkillWeight, ShouldEqual, 0.55)
				So(cfg.RatingWeight, ShouldEqual, 0.25)
				So(cfg.ReliabilityWeight, ShouldEqual, 0.20)
				So(cfg.BurnoutPenalty, ShouldEqual, 0.45)
			})
		})

		Convey("When env vars override fields", func() {
			t.Setenv("GIGMATCH_LOG_LEVEL", "debug")
			t.Setenv("GIGMATCH_SKILL_WEIGHT", "0.70")
			cfg, err := config.Load(ctx)

			Convey("Then the overrides land and the rest stay default", func() {
				So(err, ShouldBeNil)
				So(cfg.LogLevel, ShouldEqual, "debug")
				So(cfg.SkillWeight, ShouldEqual, 0.70)
				So(cfg.RatingWeight, ShouldEqual, 0.25)
			})
		})

		Convey("When a YAML file feeds the middle layer", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			So(os.WriteFile(path, []byte("log_level: warn\nmetrics_addr: \":9090\"\n"), 0o600), ShouldBeNil)
			t.Setenv("GIGMATCH_CONFIG", path)

			Convey("Then file values apply", func() {
				cfg, err := config.Load(ctx)
				So(err, ShouldBeNil)
				So(cfg.LogLevel, ShouldEqual, "warn")
				So(cfg.MetricsAddr, ShouldEqual, ":9090")
			})

			Convey("And env still wins over the file", func() {
				t.Setenv("GIGMATCH_LOG_LEVEL", "error")
				cfg, err := config.Load(ctx)
				So(err, ShouldBeNil)
				So(cfg.LogLevel, ShouldEqual, "error")
			})
		})

		Convey("When the file path is broken", func() {
			t.Setenv("GIGMATCH_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			_, err := config.Load(ctx)

			Convey("Then loading fails with the load sentinel", func() {
				So(err, ShouldWrap, config.ErrLoadConfig)
			})
		})

		Convey("When a weight is forced non-positive", func() {
			t.Setenv("GIGMATCH_RATING_WEIGHT", "0")
			_, err := config.Load(ctx)

			Convey("Then validation rejects the config", func() {
				So(err, ShouldWrap, config.ErrInvalidConfig)
			})
		})

		Convey("When the burnout penalty goes negative", func() {
			t.Setenv("GIGMATCH_BURNOUT_PENALTY", "-0.1")
			_, err := config.Load(ctx)

			Convey("Then validation rejects the config", func() {
				So(err, ShouldWrap, config.ErrInvalidConfig)
			})
		})
	})
}
