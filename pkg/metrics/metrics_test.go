package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry and options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("board"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.computations.WithLabelValues(OutcomeSuccess).Inc()
			manager.computationDuration.Observe(3)

			Convey("Then collectors should be registered with the configured names", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, mf := range families {
					names = append(names, mf.GetName())
				}
				So(names, ShouldContain, "test_board_computations_total")
				So(names, ShouldContain, "test_board_computation_duration_milliseconds")
			})

			Convey("And const labels should be attached", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, mf := range families {
					if mf.GetName() != "test_board_computations_total" {
						continue
					}
					for _, lp := range mf.GetMetric()[0].GetLabel() {
						if lp.GetName() == "env" && lp.GetValue() == "test" {
							found = true
						}
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are applied", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "podium")
				So(manager.subsystem, ShouldEqual, "leaderboard")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording computation metrics", func() {
			So(func() {
				RecordComputation(OutcomeSuccess, 12)
				RecordComputation(OutcomeEmpty, 1)
				RecordComputation(OutcomeNotFound, 0.5)
				RecordComputation(OutcomeError, 40)
				RecordLeaderboardSize(5, 3, 120, 14)
				RecordPartitionLatency(0.2)
			}, ShouldNotPanic)
		})

		Convey("When recording store and worker metrics", func() {
			So(func() {
				RecordStoreQuery("list_scores", 4)
				RecordStoreError("list_scores")
				WorkerStarted()
				WorkerFinished()
				RecordWorkerPanic()
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP and error metrics", func() {
			So(func() {
				RecordHTTPRequest("leaderboard", "GET", "200")
				RecordHTTPRequestDuration("leaderboard", "GET", "200", 15)
				RecordErrorByComponent("service", "computation")
				RecordErrorByType("server_error", "high")
				RecordErrorByEndpoint("leaderboard", "GET", "not_found")
			}, ShouldNotPanic)
		})

		Convey("When recording system metrics", func() {
			So(func() {
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry should expose podium metrics", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			podium := 0
			for _, mf := range families {
				if strings.HasPrefix(mf.GetName(), "podium_leaderboard_") {
					podium++
				}
			}
			So(podium, ShouldBeGreaterThan, 10)
		})
	})
}

func TestMetricsInit(t *testing.T) {
	Convey("Given the global metrics rebuilt with a custom namespace", t, func() {
		Init(WithNamespace("alt"), WithConstLabels(map[string]string{"env": "ci"}))
		defer Init()
		RecordComputation(OutcomeSuccess, 1)

		Convey("Then the fresh registry should expose only the new names", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			var names []string
			for _, mf := range families {
				names = append(names, mf.GetName())
			}
			So(names, ShouldContain, "alt_leaderboard_computations_total")
			So(names, ShouldNotContain, "podium_leaderboard_computations_total")
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent metric updates", t, func() {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				WorkerStarted()
				RecordPartitionLatency(1)
				WorkerFinished()
			}()
		}
		wg.Wait()

		Convey("Then no active workers should remain", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			for _, mf := range families {
				if mf.GetName() == "podium_leaderboard_worker_active_count" {
					So(mf.GetMetric()[0].GetGauge().GetValue(), ShouldEqual, 0)
				}
			}
		})
	})
}
