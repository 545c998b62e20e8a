package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/AutomateThePlanet/atom-evaluate/internal/adapters/http/api"
	service "github.com/AutomateThePlanet/atom-evaluate/internal/app"
	"github.com/AutomateThePlanet/atom-evaluate/internal/domain/model"
	"github.com/AutomateThePlanet/atom-evaluate/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestMux() (*http.ServeMux, *service.Service) {
	n := 0
	svc := service.New(
		service.WithLogger(logger.Nop()),
		service.WithIDGenerator(func(prefix string) string {
			n++
			return prefix + "_" + strconv.Itoa(n)
		}),
		service.WithClock(func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }),
	)
	server := api.NewServer(svc, api.WithLogger(logger.Nop()), api.WithMaxImportBytes(64<<10))
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux, svc
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var out T
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux, _ := newTestMux()

		Convey("Health endpoint serves the metrics exposition", func() {
			w := do(mux, "GET", "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "atom_evaluate_")
		})

		Convey("Stats endpoint reports the document", func() {
			w := do(mux, "GET", "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			stats := decode[map[string]any](w)
			So(stats["criteria"], ShouldEqual, 34.0)
		})

		Convey("Unknown methods are rejected by the mux", func() {
			w := do(mux, "PUT", "/stats", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestCompanyRoutes(t *testing.T) {
	Convey("Given the seeded document", t, func() {
		mux, _ := newTestMux()

		Convey("When listing companies", func() {
			w := do(mux, "GET", "/companies", "")

			Convey("Then the example company is selected", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode[struct {
					Companies         []model.Company `json:"companies"`
					SelectedCompanyID string          `json:"selectedCompanyId"`
				}](w)
				So(body.Companies, ShouldHaveLength, 1)
				So(body.SelectedCompanyID, ShouldEqual, "co_1")
			})
		})

		Convey("When creating, renaming and deleting a company", func() {
			w := do(mux, "POST", "/companies", `{"name":" Acme "}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			created := decode[model.Company](w)
			So(created.Name, ShouldEqual, "Acme")

			w = do(mux, "PATCH", "/companies/"+created.ID, `{"name":"Acme Ltd"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[model.Company](w).Name, ShouldEqual, "Acme Ltd")

			w = do(mux, "DELETE", "/companies/"+created.ID, "")
			So(w.Code, ShouldEqual, http.StatusNoContent)

			Convey("Then the first company is selected again", func() {
				w := do(mux, "GET", "/companies", "")
				So(decode[map[string]any](w)["selectedCompanyId"], ShouldEqual, "co_1")
			})
		})

		Convey("When the name is blank", func() {
			w := do(mux, "POST", "/companies", `{"name":"  "}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[errorBody](w).Code, ShouldEqual, "bad_request")
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, "POST", "/companies", `{`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When selecting an unknown company", func() {
			w := do(mux, "POST", "/companies/nope/select", "")

			Convey("Then it is not found without the operation prefix", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				body := decode[errorBody](w)
				So(body.Code, ShouldEqual, "not_found")
				So(body.Message, ShouldStartWith, "company not found")
			})
		})
	})
}

func TestCriteriaRoutes(t *testing.T) {
	Convey("Given the seeded criteria", t, func() {
		mux, _ := newTestMux()

		Convey("Listing can filter by dimension", func() {
			w := do(mux, "GET", "/criteria?dimension=tsi", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			list := decode[[]model.Criterion](w)
			So(list, ShouldHaveLength, 5)
			for _, c := range list {
				So(c.Dimension, ShouldEqual, model.DimensionTSI)
			}
		})

		Convey("Creating fills defaults and changes the fingerprint", func() {
			before := decode[map[string]any](do(mux, "GET", "/criteria/fingerprint", ""))["hash"]

			w := do(mux, "POST", "/criteria", `{"id":"custom","name":"Release gates","dimension":"atc"}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			c := decode[model.Criterion](w)
			So(c.Dimension, ShouldEqual, model.DimensionATC)
			So(c.Weight, ShouldEqual, 1.0)
			So(c.Enabled, ShouldBeTrue)

			after := decode[map[string]any](do(mux, "GET", "/criteria/fingerprint", ""))["hash"]
			So(after, ShouldNotEqual, before)

			Convey("And a duplicate id conflicts", func() {
				w := do(mux, "POST", "/criteria", `{"id":"custom","name":"Again"}`)
				So(w.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("Patching an inverted scale is rejected", func() {
			w := do(mux, "PATCH", "/criteria/cr_2", `{"scaleMin":9,"scaleMax":1}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Deleting an unknown criterion is not found", func() {
			w := do(mux, "DELETE", "/criteria/nope", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestAssessmentAndMetricsRoutes(t *testing.T) {
	Convey("Given the example company", t, func() {
		mux, svc := newTestMux()
		ctx := context.Background()
		ids := map[model.Dimension]string{}
		for _, c := range svc.Criteria(ctx) {
			if _, ok := ids[c.Dimension]; !ok {
				ids[c.Dimension] = c.ID
			}
		}

		Convey("When one criterion per dimension is scored", func() {
			So(do(mux, "PUT", "/companies/co_1/scores/"+ids[model.DimensionTSI], `{"score":7}`).Code, ShouldEqual, http.StatusNoContent)
			So(do(mux, "PUT", "/companies/co_1/scores/"+ids[model.DimensionTQI], `{"score":5}`).Code, ShouldEqual, http.StatusNoContent)
			So(do(mux, "PUT", "/companies/co_1/scores/"+ids[model.DimensionATC], `{"score":9}`).Code, ShouldEqual, http.StatusNoContent)

			w := do(mux, "GET", "/companies/co_1/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode[map[string]any](w)

			Convey("Then the composite is the dimension mean", func() {
				metrics := body["metrics"].(map[string]any)
				So(metrics["TAEI"], ShouldEqual, 7.0)
				So(metrics["overallCriteria"], ShouldEqual, 7.0)
				So(body["disagreement"], ShouldEqual, false)
				So(body["warnings"], ShouldResemble, []any{"Tip: Save snapshots regularly to track trends over time."})
			})

			Convey("Then a null score clears the entry", func() {
				So(do(mux, "PUT", "/companies/co_1/scores/"+ids[model.DimensionATC], `{"score":null}`).Code, ShouldEqual, http.StatusNoContent)
				a := decode[model.Assessment](do(mux, "GET", "/companies/co_1/assessment", ""))
				So(a.Scores, ShouldHaveLength, 2)
			})

			Convey("Then clearing the assessment empties it", func() {
				So(do(mux, "DELETE", "/companies/co_1/assessment", "").Code, ShouldEqual, http.StatusNoContent)
				a := decode[model.Assessment](do(mux, "GET", "/companies/co_1/assessment", ""))
				So(a.Scores, ShouldBeEmpty)
			})
		})

		Convey("When the score field is missing or not a number", func() {
			So(do(mux, "PUT", "/companies/co_1/scores/"+ids[model.DimensionTSI], `{}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, "PUT", "/companies/co_1/scores/"+ids[model.DimensionTSI], `{"score":"7"}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When scoring a disabled criterion", func() {
			So(do(mux, "PATCH", "/criteria/"+ids[model.DimensionTSI], `{"enabled":false}`).Code, ShouldEqual, http.StatusOK)
			w := do(mux, "PUT", "/companies/co_1/scores/"+ids[model.DimensionTSI], `{"score":3}`)

			Convey("Then it conflicts", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When notes are set and cleared", func() {
			So(do(mux, "PUT", "/companies/co_1/notes/"+ids[model.DimensionTQI], `{"note":"flaky suite"}`).Code, ShouldEqual, http.StatusNoContent)
			a := decode[model.Assessment](do(mux, "GET", "/companies/co_1/assessment", ""))
			So(a.Notes[ids[model.DimensionTQI]], ShouldEqual, "flaky suite")

			So(do(mux, "DELETE", "/companies/co_1/notes/"+ids[model.DimensionTQI], "").Code, ShouldEqual, http.StatusNoContent)
			a = decode[model.Assessment](do(mux, "GET", "/companies/co_1/assessment", ""))
			So(a.Notes, ShouldBeEmpty)
		})

		Convey("When asking for an unknown company's metrics", func() {
			So(do(mux, "GET", "/companies/nope/metrics", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, "GET", "/companies/nope/trend", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSnapshotRoutes(t *testing.T) {
	Convey("Given a scored company", t, func() {
		mux, svc := newTestMux()
		first := svc.Criteria(context.Background())[4].ID
		So(do(mux, "PUT", "/companies/co_1/scores/"+first, `{"score":6}`).Code, ShouldEqual, http.StatusNoContent)

		Convey("When a snapshot is captured", func() {
			w := do(mux, "POST", "/companies/co_1/snapshots", "")
			So(w.Code, ShouldEqual, http.StatusCreated)
			snap := decode[model.Snapshot](w)
			So(snap.CriteriaHash, ShouldNotBeEmpty)

			Convey("Then it shows up in the history and the trend", func() {
				So(decode[[]model.Snapshot](do(mux, "GET", "/companies/co_1/snapshots", "")), ShouldHaveLength, 1)
				trend := decode[map[string]any](do(mux, "GET", "/companies/co_1/trend", ""))
				points := trend["points"].([]any)
				So(points, ShouldHaveLength, 1)
				So(points[0].(map[string]any)["comparable"], ShouldEqual, true)
			})

			Convey("Then undo removes it and a second undo is a no-op", func() {
				So(do(mux, "DELETE", "/companies/co_1/snapshots/last", "").Code, ShouldEqual, http.StatusOK)
				So(do(mux, "DELETE", "/companies/co_1/snapshots/last", "").Code, ShouldEqual, http.StatusNoContent)
			})
		})
	})
}

func TestDocumentRoutes(t *testing.T) {
	Convey("Given the seeded document", t, func() {
		mux, _ := newTestMux()

		Convey("Export defaults to indented JSON", func() {
			w := do(mux, "GET", "/export", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "application/json")
			So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "atom-evaluate-export.json")
			So(w.Body.String(), ShouldContainSubstring, "\n  \"version\": 1")
		})

		Convey("Export rejects unknown formats", func() {
			So(do(mux, "GET", "/export?format=xml", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("An export can be imported back", func() {
			exported := do(mux, "GET", "/export?format=yaml", "").Body.String()
			So(do(mux, "POST", "/companies", `{"name":"Temp"}`).Code, ShouldEqual, http.StatusCreated)

			req := httptest.NewRequest("POST", "/import", strings.NewReader(exported))
			req.Header.Set("Content-Type", "application/yaml")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNoContent)

			companies := decode[map[string]any](do(mux, "GET", "/companies", ""))["companies"].([]any)
			So(companies, ShouldHaveLength, 1)
		})

		Convey("A wrong version is refused with a message", func() {
			w := do(mux, "POST", "/import", `{"version":3}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode[errorBody](w).Message, ShouldEqual, "unsupported import file (expected version 1)")
		})

		Convey("Malformed JSON is refused", func() {
			w := do(mux, "POST", "/import", `{"version":`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode[errorBody](w).Message, ShouldStartWith, "import failed")
		})

		Convey("An oversized body is refused", func() {
			big := `{"version":1,"pad":"` + strings.Repeat("x", 70<<10) + `"}`
			So(do(mux, "POST", "/import", big).Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})

		Convey("Reset restores the seed", func() {
			So(do(mux, "POST", "/companies", `{"name":"Temp"}`).Code, ShouldEqual, http.StatusCreated)
			So(do(mux, "POST", "/reset", "").Code, ShouldEqual, http.StatusNoContent)
			companies := decode[map[string]any](do(mux, "GET", "/companies", ""))["companies"].([]any)
			So(companies, ShouldHaveLength, 1)
		})
	})
}

func TestErrorHelpers(t *testing.T) {
	Convey("Given operation scoped errors", t, func() {
		cause := errors.New("disk gone")

		Convey("Wrap keeps the cause reachable", func() {
			err := api.Wrap("api.op", cause)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: disk gone")
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})

		Convey("WrapKind matches both the kind and the cause", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: disk gone")
		})

		Convey("NewKind carries only the kind", func() {
			err := api.NewKind("api.op", api.ErrBadRequest)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request")
		})
	})
}

func TestRecoverMiddleware(t *testing.T) {
	Convey("Given a handler that panics", t, func() {
		h := api.RecoverMiddleware(func(http.ResponseWriter, *http.Request) { panic("boom") }, logger.Nop())
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest("GET", "/", nil))

		Convey("Then the client gets a 500", func() {
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decode[errorBody](w).Code, ShouldEqual, "internal_error")
		})
	})
}
