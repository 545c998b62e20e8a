package snapshot_test

import (
	"testing"
	"time"

	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/fingerprint"
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/snapshot"
	. "github.com/smartystreets/goconvey/convey"
)

func criteria() []model.Criterion {
	return []model.Criterion{
		model.NewCriterion("a", "a", model.DimensionTSI),
		model.NewCriterion("b", "b", model.DimensionTQI),
		model.NewCriterion("c", "c", model.DimensionATC),
	}
}

func TestCapture(t *testing.T) {
	Convey("Given a live assessment", t, func() {
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		crit := criteria()
		scores := model.Scores{"a": 6, "b": 7, "c": 8}

		Convey("When a snapshot is captured", func() {
			snap := snapshot.Capture(crit, scores, now)

			Convey("Then it carries metrics, fingerprint and timestamp", func() {
				So(snap.Timestamp.Equal(now), ShouldBeTrue)
				So(*snap.Metrics.Composite, ShouldEqual, 7.0)
				So(snap.CriteriaHash, ShouldEqual, fingerprint.Of(crit))
				So(snap.Scores, ShouldResemble, scores)
			})

			Convey("And later edits do not reach it", func() {
				scores["a"] = 0
				delete(scores, "b")
				So(snap.Scores["a"], ShouldEqual, 6)
				So(snap.Scores, ShouldContainKey, "b")
			})
		})
	})
}

func TestHistory(t *testing.T) {
	Convey("Given an empty history", t, func() {
		var h snapshot.History

		Convey("When popping", func() {
			out, ok := h.PopLast()

			Convey("Then it is a no-op", func() {
				So(ok, ShouldBeFalse)
				So(out, ShouldBeEmpty)
			})
		})

		Convey("When appending twice and popping once", func() {
			first := model.Snapshot{Timestamp: time.Unix(1, 0)}
			second := model.Snapshot{Timestamp: time.Unix(2, 0)}
			h = h.Append(first).Append(second)
			popped, ok := h.PopLast()

			Convey("Then only the most recent entry is removed", func() {
				So(ok, ShouldBeTrue)
				So(popped, ShouldHaveLength, 1)
				So(popped[0].Timestamp.Equal(first.Timestamp), ShouldBeTrue)
				So(h, ShouldHaveLength, 2)
			})

			Convey("And appending after a pop does not clobber the original", func() {
				third := model.Snapshot{Timestamp: time.Unix(3, 0)}
				popped = popped.Append(third)
				So(h[1].Timestamp.Equal(second.Timestamp), ShouldBeTrue)
				last, ok := popped.Last()
				So(ok, ShouldBeTrue)
				So(last.Timestamp.Equal(third.Timestamp), ShouldBeTrue)
			})
		})
	})
}

func TestTrend(t *testing.T) {
	Convey("Given a history captured under two criteria sets", t, func() {
		crit := criteria()
		old := snapshot.Capture(crit, model.Scores{"a": 2, "b": 2, "c": 2}, time.Unix(10, 0))
		empty := snapshot.Capture(crit, model.Scores{}, time.Unix(20, 0))
		crit[0].Weight = 2
		current := snapshot.Capture(crit, model.Scores{"a": 9, "b": 9, "c": 9}, time.Unix(30, 0))
		h := snapshot.History{old, empty, current}

		Convey("When building the trend against the current criteria", func() {
			points := snapshot.Trend(h, fingerprint.Of(crit))

			Convey("Then snapshots without values are skipped", func() {
				So(points, ShouldHaveLength, 2)
				So(*points[0].Composite, ShouldEqual, 2.0)
				So(*points[1].OverallByCriteria, ShouldEqual, 9.0)
			})

			Convey("And comparability follows the fingerprint", func() {
				So(points[0].Comparable, ShouldBeFalse)
				So(points[1].Comparable, ShouldBeTrue)
			})
		})
	})
}
