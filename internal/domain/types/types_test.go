package types_test

import (
	"encoding/json"
	"testing"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/scoring"
	types "github.com/AutomateThePlanet/atom-evaluate/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCompanyEvaluation(t *testing.T) {
	Convey("Given an evaluation for a company", t, func() {
		criteria := []model.Criterion{
			model.NewCriterion("a", "a", model.DimensionTSI),
			model.NewCriterion("b", "b", model.DimensionTQI),
			model.NewCriterion("c", "c", model.DimensionATC),
		}
		eval := types.CompanyEvaluation{
			CompanyID:  "co_1",
			Evaluation: scoring.NewEngine().Evaluate(criteria, model.Scores{"a": 7, "b": 5, "c": 9}),
			Threshold:  scoring.DefaultDisagreementThreshold,
		}

		Convey("When it is encoded as JSON", func() {
			data, err := json.Marshal(eval)
			So(err, ShouldBeNil)

			var out map[string]any
			So(json.Unmarshal(data, &out), ShouldBeNil)

			Convey("Then the embedded evaluation fields are flattened", func() {
				So(out["companyId"], ShouldEqual, "co_1")
				So(out["disagreement"], ShouldEqual, false)
				So(out["threshold"], ShouldEqual, 0.75)
				metrics, ok := out["metrics"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(metrics["TAEI"], ShouldEqual, 7.0)
			})
		})
	})
}

func TestStats(t *testing.T) {
	Convey("Given zero stats", t, func() {
		data, err := json.Marshal(types.Stats{})
		So(err, ShouldBeNil)

		Convey("Then the state path is omitted", func() {
			So(string(data), ShouldNotContainSubstring, "statePath")
			So(string(data), ShouldContainSubstring, `"started":false`)
		})
	})
}
