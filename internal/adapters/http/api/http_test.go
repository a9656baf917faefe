package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/podium/internal/adapters/http/api"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/leaderboard"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDependencies serves canned leaderboards keyed by id.
type mockDependencies struct {
	boards   map[string]*types.LeaderboardResponse
	err      error
	readyErr error
	lastID   string
}

func (m *mockDependencies) ComputeLeaderboard(_ context.Context, idOrSlug string) (*types.LeaderboardResponse, error) {
	m.lastID = idOrSlug
	if m.err != nil {
		return nil, m.err
	}
	resp, ok := m.boards[idOrSlug]
	if !ok {
		return nil, fmt.Errorf("%w: %q", service.ErrCompetitionNotFound, idOrSlug)
	}
	return resp, nil
}

func (m *mockDependencies) Ready(context.Context) error { return m.readyErr }

func sampleBoard() *types.LeaderboardResponse {
	return &types.LeaderboardResponse{
		Competition: types.CompetitionInfo{ID: "comp-1", Name: "Spring Open"},
		Divisions: []types.DivisionLeaderboard{{
			ID:   "rx",
			Name: "RX",
			Athletes: []types.LeaderboardAthlete{{
				Rank:          1,
				UserID:        "u1",
				Name:          "Ana Silva",
				AffiliateName: "Iron Box",
				Events:        []types.EventResult{{EventID: "e1", EventName: "Fran", Points: 100, Rank: 1}},
				TotalPoints:   100,
			}},
		}},
		Gyms: []types.GymLeaderboard{},
	}
}

func newHandler(deps *mockDependencies, opts ...api.Option) http.Handler {
	return api.NewServer(deps, opts...).Handler(context.Background())
}

func get(h http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestLeaderboardEndpoint(t *testing.T) {
	Convey("Given an API server with one competition", t, func() {
		deps := &mockDependencies{boards: map[string]*types.LeaderboardResponse{
			"comp-1":      sampleBoard(),
			"spring-open": sampleBoard(),
		}}
		h := newHandler(deps, api.WithCacheControl(15*time.Second, 45*time.Second))

		Convey("When requesting the leaderboard", func() {
			w := get(h, "/competitions/comp-1/leaderboard", nil)

			Convey("Then it should return the JSON leaderboard", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")

				var body types.LeaderboardResponse
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Competition.ID, ShouldEqual, "comp-1")
				So(body.Divisions[0].Athletes[0].UserID, ShouldEqual, "u1")
			})

			Convey("And it should carry public cache headers", func() {
				So(w.Header().Get("Cache-Control"), ShouldEqual, "public, max-age=15, stale-while-revalidate=45")
			})

			Convey("And it should use the JSON field names of the contract", func() {
				So(w.Body.String(), ShouldContainSubstring, `"userId":"u1"`)
				So(w.Body.String(), ShouldContainSubstring, `"affiliateName":"Iron Box"`)
				So(w.Body.String(), ShouldContainSubstring, `"totalPoints":100`)
				So(w.Body.String(), ShouldContainSubstring, `"gyms":[]`)
			})
		})

		Convey("When requesting by slug", func() {
			w := get(h, "/competitions/spring-open/leaderboard", nil)

			Convey("Then the slug should be passed through", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastID, ShouldEqual, "spring-open")
			})
		})

		Convey("When the competition is unknown", func() {
			w := get(h, "/competitions/nope/leaderboard", nil)

			Convey("Then it should return 404 without caching", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Header().Get("Cache-Control"), ShouldEqual, "no-store")

				var body map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When the computation fails", func() {
			deps.err = &leaderboard.ComputationError{Op: "load scores", Err: errors.New("pq: password authentication failed")}
			w := get(h, "/competitions/comp-1/leaderboard", nil)

			Convey("Then it should return 500 without leaking the cause", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, "internal_error")
				So(w.Body.String(), ShouldNotContainSubstring, "password")
			})
		})

		Convey("When the method is not GET", func() {
			req := httptest.NewRequest(http.MethodPost, "/competitions/comp-1/leaderboard", nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it should be rejected", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given an API server", t, func() {
		h := newHandler(&mockDependencies{})

		Convey("When no request id is sent", func() {
			w := get(h, "/competitions/x/leaderboard", nil)

			Convey("Then a UUID should be minted and echoed", func() {
				id := w.Header().Get(api.RequestIDHeader)
				_, err := uuid.Parse(id)
				So(err, ShouldBeNil)
				So(w.Body.String(), ShouldContainSubstring, id)
			})
		})

		Convey("When the caller sends one", func() {
			w := get(h, "/healthz", map[string]string{api.RequestIDHeader: "trace-123"})

			Convey("Then it should be propagated", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "trace-123")
			})
		})

		Convey("When the caller sends an oversized one", func() {
			w := get(h, "/healthz", map[string]string{api.RequestIDHeader: strings.Repeat("x", 500)})

			Convey("Then it should be replaced", func() {
				So(len(w.Header().Get(api.RequestIDHeader)), ShouldEqual, 36)
			})
		})
	})
}

func TestCORS(t *testing.T) {
	Convey("Given a server with an origin allow-list", t, func() {
		deps := &mockDependencies{boards: map[string]*types.LeaderboardResponse{"comp-1": sampleBoard()}}
		h := newHandler(deps, api.WithAllowedOrigins([]string{"https://scores.example"}))

		Convey("When an allowed origin requests", func() {
			w := get(h, "/competitions/comp-1/leaderboard", map[string]string{"Origin": "https://scores.example"})

			Convey("Then the origin should be echoed", func() {
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://scores.example")
				So(w.Header().Get("Vary"), ShouldEqual, "Origin")
			})
		})

		Convey("When another origin requests", func() {
			w := get(h, "/competitions/comp-1/leaderboard", map[string]string{"Origin": "https://evil.example"})

			Convey("Then no CORS headers should be set", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
			})
		})

		Convey("When a preflight request arrives", func() {
			req := httptest.NewRequest(http.MethodOptions, "/competitions/comp-1/leaderboard", nil)
			req.Header.Set("Origin", "https://scores.example")
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it should be answered directly", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
				So(w.Header().Get("Access-Control-Allow-Methods"), ShouldContainSubstring, "GET")
			})
		})
	})

	Convey("Given a server allowing any origin", t, func() {
		h := newHandler(&mockDependencies{})

		Convey("Then the wildcard should be returned", func() {
			w := get(h, "/healthz", map[string]string{"Origin": "https://any.example"})
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})
	})
}

func TestHealthAndMetrics(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &mockDependencies{}
		h := newHandler(deps)

		Convey("When the store is ready", func() {
			w := get(h, "/healthz", nil)

			Convey("Then healthz should report ok", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			})
		})

		Convey("When the store is down", func() {
			deps.readyErr = errors.New("dial tcp: connection refused")
			w := get(h, "/healthz", nil)

			Convey("Then healthz should report unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(w.Body.String(), ShouldContainSubstring, `"status":"unavailable"`)
				So(w.Body.String(), ShouldNotContainSubstring, "dial tcp")
			})
		})

		Convey("When scraping metrics after a request", func() {
			_ = get(h, "/competitions/missing/leaderboard", nil)
			w := get(h, "/metrics", nil)

			Convey("Then the HTTP counters should be exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "podium_leaderboard_http_requests_total")
				So(w.Body.String(), ShouldContainSubstring, `endpoint="leaderboard"`)
			})
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given API errors", t, func() {
		cause := errors.New("boom")

		Convey("Then kinds and causes should both match", func() {
			err := api.WrapKind("api.op", api.ErrUnavailable, cause)
			So(errors.Is(err, api.ErrUnavailable), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: unavailable")
		})

		Convey("Then Wrap should mark errors as internal", func() {
			err := api.Wrap("api.op", cause)
			So(errors.Is(err, api.ErrInternal), ShouldBeTrue)
		})

		Convey("Then NewKind should carry no cause", func() {
			err := api.NewKind("api.op", api.ErrBadRequest)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeFalse)
		})
	})
}
