package model_test

import (
	"testing"

	model "github.com/okian/podium/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func strPtr(s string) *string { return &s }

func TestParseAffiliate(t *testing.T) {
	convey.Convey("Given registration metadata", t, func() {
		convey.Convey("When affiliateName is present", func() {
			name, ok := model.ParseAffiliate(`{"affiliateName":" CrossFit North ","affiliates":{"a":"Other"}}`)

			convey.Convey("Then it should win over the affiliates map", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(name, convey.ShouldEqual, "CrossFit North")
			})
		})

		convey.Convey("When only the affiliates map is present", func() {
			name, ok := model.ParseAffiliate(`{"affiliates":{"z-key":"Zulu Gym","a-key":"Alpha Gym"}}`)

			convey.Convey("Then the first value in document order should be used", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(name, convey.ShouldEqual, "Zulu Gym")
			})
		})

		convey.Convey("When the first affiliates value is not a string", func() {
			name, ok := model.ParseAffiliate(`{"affiliates":{"x":{"nested":true},"y":"Yard Gym"}}`)

			convey.Convey("Then the next string value should be used", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(name, convey.ShouldEqual, "Yard Gym")
			})
		})

		convey.Convey("When metadata is empty, invalid or missing keys", func() {
			inputs := []string{
				"",
				"   ",
				"not json",
				`{"affiliateName":""}`,
				`{"affiliates":[]}`,
				`{"affiliates":{}}`,
				`{"other":"value"}`,
				`["affiliateName"]`,
			}

			convey.Convey("Then parsing should report no affiliate", func() {
				for _, in := range inputs {
					name, ok := model.ParseAffiliate(in)
					convey.So(ok, convey.ShouldBeFalse)
					convey.So(name, convey.ShouldEqual, "")
				}
			})
		})
	})
}

func TestRegistrationAthlete(t *testing.T) {
	convey.Convey("Given a registration", t, func() {
		reg := model.Registration{
			ID:            "reg-1",
			UserID:        "user-1",
			DivisionID:    strPtr("rx-men"),
			DivisionLabel: "RX Men",
			Metadata:      `{"affiliateName":"Iron Box"}`,
			FirstName:     "Sam",
			LastName:      "Lee",
			Status:        "ACTIVE",
		}

		convey.Convey("When building the athlete", func() {
			athlete := reg.Athlete()

			convey.Convey("Then it should carry name, division and affiliate", func() {
				convey.So(athlete.UserID, convey.ShouldEqual, "user-1")
				convey.So(athlete.Name, convey.ShouldEqual, "Sam Lee")
				convey.So(athlete.Affiliate, convey.ShouldEqual, "Iron Box")
				convey.So(athlete.Division, convey.ShouldResemble, model.Division{ID: "rx-men", Label: "RX Men"})
			})
		})

		convey.Convey("When the division is missing and metadata is broken", func() {
			reg.DivisionID = nil
			reg.Metadata = "{broken"
			athlete := reg.Athlete()

			convey.Convey("Then the open division and default team should be used", func() {
				convey.So(athlete.Division.ID, convey.ShouldEqual, model.OpenDivisionID)
				convey.So(athlete.Division.Label, convey.ShouldEqual, model.OpenDivisionLabel)
				convey.So(athlete.Affiliate, convey.ShouldEqual, model.Unaffiliated)
			})
		})

		convey.Convey("When the registration is removed", func() {
			reg.Status = model.RegistrationStatusRemoved

			convey.Convey("Then it should not be active", func() {
				convey.So(reg.Active(), convey.ShouldBeFalse)
			})
		})
	})
}

func TestEventWeight(t *testing.T) {
	convey.Convey("Given events with multipliers", t, func() {
		half, double, zero := 50, 200, 0
		convey.So(model.Event{}.Weight(), convey.ShouldEqual, 1.0)
		convey.So(model.Event{}.Multiplier(), convey.ShouldEqual, model.DefaultPointsMultiplier)
		convey.So(model.Event{PointsMultiplier: &half}.Weight(), convey.ShouldEqual, 0.5)
		convey.So(model.Event{PointsMultiplier: &double}.Weight(), convey.ShouldEqual, 2.0)
		convey.So(model.Event{PointsMultiplier: &zero}.Weight(), convey.ShouldEqual, 0.0)
		convey.So(model.Event{Status: "published"}.Published(), convey.ShouldBeTrue)
		convey.So(model.Event{Status: "draft"}.Published(), convey.ShouldBeFalse)
	})
}
