package service_test

import (
	"context"
	"testing"

	"github.com/AutomateThePlanet/atom-evaluate/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

// counterValue reads a counter from the process registry.
func counterValue(name string) float64 {
	families, err := metrics.GetRegistry().Gather()
	So(err, ShouldBeNil)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		return total
	}
	return 0
}

func TestService_SnapshotMetrics(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		company, _ := svc.SelectedCompany(ctx)

		Convey("When one snapshot is captured and popped", func() {
			captured := counterValue("atom_evaluate_snapshots_captured_total")
			popped := counterValue("atom_evaluate_snapshots_popped_total")

			_, err := svc.CaptureSnapshot(ctx, company.ID)
			So(err, ShouldBeNil)
			_, ok, err := svc.PopLastSnapshot(ctx, company.ID)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			Convey("Then each counter moves by exactly one", func() {
				So(counterValue("atom_evaluate_snapshots_captured_total")-captured, ShouldEqual, 1)
				So(counterValue("atom_evaluate_snapshots_popped_total")-popped, ShouldEqual, 1)
			})
		})
	})
}
