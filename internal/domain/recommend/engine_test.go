package recommend_test

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/veilmetrics/veil/internal/domain/model"
	"github.com/veilmetrics/veil/internal/domain/recommend"
)

func TestGenerateRecommendations(t *testing.T) {
	Convey("Given a recommendation engine", t, func() {
		e := recommend.NewEngine()

		Convey("A low-risk user with no connections gets the low tier", func() {
			recs := e.GenerateRecommendations(20, nil, 5)

			So(recs, ShouldHaveLength, 2)
			So(recs[0].ID, ShouldEqual, "two_factor")
			So(recs[1].ID, ShouldEqual, "periodic_review")
			So(recs[0].Platform, ShouldEqual, recommend.PlatformGeneral)
		})

		Convey("A risky connection contributes platform-specific items first", func() {
			conn := model.ConnectionRecord{
				Platform:       model.PlatformFacebook,
				PrivacySetting: model.PrivacyPublic,
				SharesLocation: true,
				SharesContacts: true,
			}

			recs := e.GenerateRecommendations(80, []model.ConnectionRecord{conn}, 5)

			So(recs, ShouldHaveLength, 5)
			ids := make([]string, len(recs))
			for i, r := range recs {
				ids[i] = r.ID
			}
			So(ids, ShouldResemble, []string{
				"facebook_privacy",
				"public_profile",
				"facebook_location",
				"location_sharing",
				"facebook_contacts",
			})

			So(recs[0].Title, ShouldEqual, "Change Facebook Privacy Settings")
			So(recs[0].Impact, ShouldEqual, model.LevelHigh)
			So(recs[0].Platform, ShouldEqual, "facebook")
		})

		Convey("The priority sort is stable within a priority level", func() {
			conn := model.ConnectionRecord{
				Platform:       model.PlatformTwitter,
				PrivacySetting: model.PrivacyPublic,
			}

			recs := e.GenerateRecommendations(80, []model.ConnectionRecord{conn}, 5)

			So(recs[0].ID, ShouldEqual, "twitter_privacy")
			So(recs[1].ID, ShouldEqual, "public_profile")
		})

		Convey("The cap truncates after sorting", func() {
			conn := model.ConnectionRecord{
				Platform:       model.PlatformInstagram,
				PrivacySetting: model.PrivacyPublic,
				SharesLocation: true,
				SharesContacts: true,
			}

			recs := e.GenerateRecommendations(80, []model.ConnectionRecord{conn}, 2)

			So(recs, ShouldHaveLength, 2)
			So(recs[0].ID, ShouldEqual, "instagram_privacy")
			So(recs[1].ID, ShouldEqual, "instagram_location")
		})

		Convey("A non-positive cap falls back to the configured default", func() {
			recs := e.GenerateRecommendations(50, nil, 0)

			So(recs, ShouldHaveLength, 3)
			So(recs[0].ID, ShouldEqual, "review_posts")
		})

		Convey("A private connection with nothing shared adds no items", func() {
			conn := model.ConnectionRecord{
				Platform:       model.PlatformLinkedIn,
				PrivacySetting: model.PrivacyPrivate,
			}

			recs := e.GenerateRecommendations(20, []model.ConnectionRecord{conn}, 5)

			for _, r := range recs {
				So(r.Platform, ShouldEqual, recommend.PlatformGeneral)
			}
		})
	})
}

func TestEstimateImpact(t *testing.T) {
	Convey("Given a recommendation engine", t, func() {
		e := recommend.NewEngine()

		Convey("A high-impact item reduces the score by 15", func() {
			est, err := e.EstimateImpact("public_profile", 80)

			So(err, ShouldBeNil)
			So(est.CurrentScore, ShouldEqual, 80.0)
			So(est.ScoreReduction, ShouldEqual, 15.0)
			So(est.EstimatedNewScore, ShouldEqual, 65.0)
			So(est.EffortRequired, ShouldEqual, model.LevelLow)
			So(est.TimeToImplement, ShouldEqual, "5-10 minutes")
		})

		Convey("A low-impact item reduces the score by 3", func() {
			est, err := e.EstimateImpact("periodic_review", 50)

			So(err, ShouldBeNil)
			So(est.ScoreReduction, ShouldEqual, 3.0)
			So(est.EstimatedNewScore, ShouldEqual, 47.0)
		})

		Convey("The projected score never goes below zero", func() {
			est, err := e.EstimateImpact("location_sharing", 10)

			So(err, ShouldBeNil)
			So(est.EstimatedNewScore, ShouldEqual, 0.0)
		})

		Convey("Medium effort maps to a longer implementation window", func() {
			est, err := e.EstimateImpact("review_posts", 60)

			So(err, ShouldBeNil)
			So(est.TimeToImplement, ShouldEqual, "15-30 minutes")
		})

		Convey("An unknown id is rejected", func() {
			_, err := e.EstimateImpact("facebook_privacy", 60)

			So(errors.Is(err, recommend.ErrRecommendationNotFound), ShouldBeTrue)
		})
	})
}
