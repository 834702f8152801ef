package model_test

import (
	"testing"
	"time"

	model "github.com/veilmetrics/veil/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParsePlatform(t *testing.T) {
	Convey("Given raw platform strings", t, func() {
		Convey("When parsing supported platforms", func() {
			So(model.ParsePlatform("facebook"), ShouldEqual, model.PlatformFacebook)
			So(model.ParsePlatform("instagram"), ShouldEqual, model.PlatformInstagram)
			So(model.ParsePlatform("twitter"), ShouldEqual, model.PlatformTwitter)
			So(model.ParsePlatform("linkedin"), ShouldEqual, model.PlatformLinkedIn)
		})

		Convey("When parsing unknown values", func() {
			So(model.ParsePlatform("myspace"), ShouldEqual, model.PlatformUnknown)
			So(model.ParsePlatform(""), ShouldEqual, model.PlatformUnknown)
			So(model.ParsePlatform("Facebook"), ShouldEqual, model.PlatformUnknown) // case-sensitive
		})

		Convey("When listing platforms", func() {
			So(model.Platforms(), ShouldHaveLength, 4)
		})
	})
}

func TestParsePrivacySetting(t *testing.T) {
	Convey("Given raw privacy setting strings", t, func() {
		Convey("When parsing valid settings", func() {
			So(model.ParsePrivacySetting("public"), ShouldEqual, model.PrivacyPublic)
			So(model.ParsePrivacySetting("friends"), ShouldEqual, model.PrivacyFriends)
			So(model.ParsePrivacySetting("private"), ShouldEqual, model.PrivacyPrivate)
		})

		Convey("When parsing unrecognized settings", func() {
			Convey("Then it should degrade to the friends default", func() {
				So(model.ParsePrivacySetting("everyone"), ShouldEqual, model.PrivacyFriends)
				So(model.ParsePrivacySetting(""), ShouldEqual, model.PrivacyFriends)
			})
		})
	})
}

func TestValueObjects(t *testing.T) {
	Convey("Given the engine value objects", t, func() {
		Convey("When creating a connection record", func() {
			conn := model.ConnectionRecord{
				Platform:          model.PlatformInstagram,
				PrivacySetting:    model.PrivacyPublic,
				ProfileVisibility: model.PrivacyFriends,
				PostCount:         120,
				FollowerCount:     450,
				IsActive:          true,
				SharesLocation:    true,
			}

			Convey("Then fields should round-trip by value", func() {
				copied := conn
				So(copied, ShouldResemble, conn)
			})
		})

		Convey("When creating a score snapshot", func() {
			now := time.Now()
			snap := model.ScoreSnapshot{Date: now, Score: 42.5}

			Convey("Then it should keep date and score together", func() {
				So(snap.Date, ShouldEqual, now)
				So(snap.Score, ShouldEqual, 42.5)
			})
		})
	})
}
