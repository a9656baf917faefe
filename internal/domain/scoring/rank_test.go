package scoring_test

import (
	"testing"

	scoring "github.com/okian/podium/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func ranksByRef(ranked []scoring.Ranked) map[int]int {
	out := make(map[int]int, len(ranked))
	for _, r := range ranked {
		out[r.Ref] = r.Rank
	}
	return out
}

func TestAssign(t *testing.T) {
	Convey("Given a partition of scored entries", t, func() {
		Convey("When values tie at the top", func() {
			entries := []scoring.Entry{
				{Ref: 0, Value: 120, Status: "scored"},
				{Ref: 1, Value: 100, Status: "scored"},
				{Ref: 2, Value: 100, Status: "cap"},
				{Ref: 3, Value: 130, Status: "scored"},
			}
			ranked := scoring.Assign(entries, 1.0)

			Convey("Then ties share a rank and the next value jumps to its position", func() {
				So(len(ranked), ShouldEqual, 4)
				So(ranked[0].Rank, ShouldEqual, 1)
				So(ranked[1].Rank, ShouldEqual, 1)
				So(ranked[2].Rank, ShouldEqual, 3)
				So(ranked[3].Rank, ShouldEqual, 4)
				So(ranked[0].Ref, ShouldEqual, 1)
				So(ranked[1].Ref, ShouldEqual, 2)
				So(ranked[2].Ref, ShouldEqual, 0)
				So(ranked[3].Ref, ShouldEqual, 3)
			})

			Convey("And points should follow the ladder", func() {
				So(ranked[0].Points, ShouldEqual, 100)
				So(ranked[1].Points, ShouldEqual, 100)
				So(ranked[2].Points, ShouldEqual, 90)
				So(ranked[3].Points, ShouldEqual, 85)
			})

			Convey("And ranks should be non-decreasing with minimum 1", func() {
				for i := 1; i < len(ranked); i++ {
					So(ranked[i].Rank, ShouldBeGreaterThanOrEqualTo, ranked[i-1].Rank)
				}
				So(ranked[0].Rank, ShouldEqual, 1)
			})
		})

		Convey("When every active entry has a sort key", func() {
			entries := []scoring.Entry{
				{Ref: 0, Value: 1, SortKey: "0003", Status: "scored"},
				{Ref: 1, Value: 9, SortKey: "0001", Status: "scored"},
				{Ref: 2, Value: 5, SortKey: "0001", Status: "scored"},
				{Ref: 3, Value: 0, SortKey: "0002", Status: "scored"},
			}
			ranks := ranksByRef(scoring.Assign(entries, 1.0))

			Convey("Then sort keys should decide the order and ties", func() {
				So(ranks[1], ShouldEqual, 1)
				So(ranks[2], ShouldEqual, 1)
				So(ranks[3], ShouldEqual, 3)
				So(ranks[0], ShouldEqual, 4)
			})
		})

		Convey("When only some active entries have a sort key", func() {
			entries := []scoring.Entry{
				{Ref: 0, Value: 30, SortKey: "a", Status: "scored"},
				{Ref: 1, Value: 10, Status: "scored"},
				{Ref: 2, Value: 20, SortKey: "b", Status: "scored"},
			}
			ranks := ranksByRef(scoring.Assign(entries, 1.0))

			Convey("Then the whole partition should fall back to numeric values", func() {
				So(ranks[1], ShouldEqual, 1)
				So(ranks[2], ShouldEqual, 2)
				So(ranks[0], ShouldEqual, 3)
			})
		})

		Convey("When entries have DNF and excluded statuses", func() {
			entries := []scoring.Entry{
				{Ref: 0, Value: 10, Status: "scored"},
				{Ref: 1, Value: 0, Status: "dnf"},
				{Ref: 2, Value: 10, Status: "scored"},
				{Ref: 3, Value: 0, Status: "dnf"},
				{Ref: 4, Value: 1, Status: "dns"},
				{Ref: 5, Value: 1, Status: "withdrawn"},
			}
			ranked := scoring.Assign(entries, 1.0)
			ranks := ranksByRef(ranked)

			Convey("Then DNFs tie right below the last active rank", func() {
				So(ranks[0], ShouldEqual, 1)
				So(ranks[2], ShouldEqual, 1)
				So(ranks[1], ShouldEqual, 2)
				So(ranks[3], ShouldEqual, 2)
			})

			Convey("And excluded entries should not be returned", func() {
				So(len(ranked), ShouldEqual, 4)
				_, hasDNS := ranks[4]
				_, hasWithdrawn := ranks[5]
				So(hasDNS, ShouldBeFalse)
				So(hasWithdrawn, ShouldBeFalse)
			})

			Convey("And DNF points should come from their rank", func() {
				So(ranked[2].Points, ShouldEqual, 95)
				So(ranked[3].Points, ShouldEqual, 95)
			})
		})

		Convey("When there are only DNF entries", func() {
			ranked := scoring.Assign([]scoring.Entry{
				{Ref: 0, Status: "dnf"},
				{Ref: 1, Status: "dnf"},
			}, 1.0)

			Convey("Then every DNF should rank first", func() {
				So(ranked[0].Rank, ShouldEqual, 1)
				So(ranked[1].Rank, ShouldEqual, 1)
				So(ranked[0].Points, ShouldEqual, 100)
			})
		})

		Convey("When the partition is empty", func() {
			So(scoring.Assign(nil, 1.0), ShouldBeEmpty)
		})

		Convey("When an event weight is applied", func() {
			ranked := scoring.Assign([]scoring.Entry{
				{Ref: 0, Value: 1, Status: "scored"},
				{Ref: 1, Value: 2, Status: "scored"},
			}, 0.5)

			Convey("Then points should be weighted", func() {
				So(ranked[0].Points, ShouldEqual, 50)
				So(ranked[1].Points, ShouldEqual, 48)
			})
		})
	})
}
