package validate_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/veilmetrics/veil/internal/domain/validate"
)

func validConnection() map[string]any {
	return map[string]any{
		"user_id":           "u1",
		"platform":          "facebook",
		"platform_username": "alice",
		"connected_at":      "2026-01-01T00:00:00Z",
	}
}

func TestValidateConnection(t *testing.T) {
	Convey("Given a validator", t, func() {
		v := validate.NewValidator()

		Convey("A minimal valid connection passes", func() {
			ok, errs := v.ValidateConnection(validConnection())

			So(ok, ShouldBeTrue)
			So(errs, ShouldBeEmpty)
		})

		Convey("Each missing required field is reported", func() {
			ok, errs := v.ValidateConnection(map[string]any{"platform": "facebook"})

			So(ok, ShouldBeFalse)
			So(errs, ShouldHaveLength, 3)
			So(errs[0], ShouldContainSubstring, "user_id")
		})

		Convey("An unsupported platform is rejected", func() {
			conn := validConnection()
			conn["platform"] = "myspace"

			ok, errs := v.ValidateConnection(conn)

			So(ok, ShouldBeFalse)
			So(errs, ShouldContain, "Invalid platform: myspace")
		})

		Convey("An invalid privacy setting is rejected when present", func() {
			conn := validConnection()
			conn["privacy_setting"] = "everyone"

			ok, errs := v.ValidateConnection(conn)

			So(ok, ShouldBeFalse)
			So(errs, ShouldContain, "Invalid privacy setting: everyone")
		})

		Convey("Privacy setting is optional", func() {
			ok, _ := v.ValidateConnection(validConnection())

			So(ok, ShouldBeTrue)
		})

		Convey("Negative counts are rejected", func() {
			conn := validConnection()
			conn["post_count"] = -1.0

			ok, errs := v.ValidateConnection(conn)

			So(ok, ShouldBeFalse)
			So(errs, ShouldContain, "post_count must be a non-negative number")
		})

		Convey("Non-numeric counts are rejected", func() {
			conn := validConnection()
			conn["follower_count"] = "many"

			ok, errs := v.ValidateConnection(conn)

			So(ok, ShouldBeFalse)
			So(errs, ShouldContain, "follower_count must be a non-negative number")
		})

		Convey("Integer counts from Go callers are accepted", func() {
			conn := validConnection()
			conn["post_count"] = 12

			ok, _ := v.ValidateConnection(conn)

			So(ok, ShouldBeTrue)
		})
	})
}

func TestValidateRiskScore(t *testing.T) {
	Convey("Given a validator", t, func() {
		v := validate.NewValidator()

		Convey("Scores inside [0,100] are valid", func() {
			So(v.ValidateRiskScore(0), ShouldBeTrue)
			So(v.ValidateRiskScore(55.5), ShouldBeTrue)
			So(v.ValidateRiskScore(100), ShouldBeTrue)
		})

		Convey("Out-of-range and non-finite scores are invalid", func() {
			So(v.ValidateRiskScore(-0.1), ShouldBeFalse)
			So(v.ValidateRiskScore(100.1), ShouldBeFalse)
		})
	})
}

func TestSanitizeInput(t *testing.T) {
	Convey("Given a validator", t, func() {
		v := validate.NewValidator()

		Convey("Quote and semicolon characters are stripped from strings", func() {
			out := v.SanitizeInput(map[string]any{
				"name": `  alice'; DROP TABLE users; -- "x"  `,
				"age":  30,
			})

			So(out["name"], ShouldEqual, "alice DROP TABLE users -- x")
			So(out["age"], ShouldEqual, 30)
		})

		Convey("The input map is not mutated", func() {
			in := map[string]any{"k": "a;b"}
			_ = v.SanitizeInput(in)

			So(in["k"], ShouldEqual, "a;b")
		})
	})
}
