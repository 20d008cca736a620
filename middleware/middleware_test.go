package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	. "github.com/smartystreets/goconvey/convey"

	"picks-dashboard/logging"
)

type observed struct {
	route  string
	status int
}

type fakeObserver struct {
	requests []observed
}

func (o *fakeObserver) ObserveRequest(route, method string, status int, _ time.Duration) {
	o.requests = append(o.requests, observed{route: route, status: status})
}

func TestSecurityHeaders(t *testing.T) {
	Convey("Given the security middleware", t, func() {
		ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

		Convey("Headers are set on direct TLS", func() {
			rec := httptest.NewRecorder()
			SecurityHeaders(false)(ok).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
			So(rec.Header().Get("X-Frame-Options"), ShouldEqual, "DENY")
			So(rec.Header().Get("X-Content-Type-Options"), ShouldEqual, "nosniff")
			So(rec.Header().Get("Strict-Transport-Security"), ShouldNotBeEmpty)
			So(rec.Header().Get("Content-Security-Policy"), ShouldContainSubstring, "default-src 'self'")
		})

		Convey("Behind a proxy HSTS needs a forwarded https request", func() {
			rec := httptest.NewRecorder()
			SecurityHeaders(true)(ok).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
			So(rec.Header().Get("Strict-Transport-Security"), ShouldBeEmpty)

			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("X-Forwarded-Proto", "https")
			rec = httptest.NewRecorder()
			SecurityHeaders(true)(ok).ServeHTTP(rec, req)
			So(rec.Header().Get("Strict-Transport-Security"), ShouldNotBeEmpty)
		})
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given the request id middleware", t, func() {
		var seen string
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r)
		}))

		Convey("A new id is generated", func() {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
			_, err := uuid.Parse(seen)
			So(err, ShouldBeNil)
			So(rec.Header().Get(RequestIDHeader), ShouldEqual, seen)
		})

		Convey("A valid incoming id is kept", func() {
			id := uuid.NewString()
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set(RequestIDHeader, id)
			handler.ServeHTTP(httptest.NewRecorder(), req)
			So(seen, ShouldEqual, id)
		})

		Convey("A malformed incoming id is replaced", func() {
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set(RequestIDHeader, "<script>")
			handler.ServeHTTP(httptest.NewRecorder(), req)
			So(seen, ShouldNotEqual, "<script>")
		})

		Convey("Requests outside the middleware have no id", func() {
			So(GetRequestID(httptest.NewRequest("GET", "/", nil)), ShouldBeEmpty)
		})
	})
}

func TestRequestLogger(t *testing.T) {
	Convey("Given a request logger", t, func() {
		var buf bytes.Buffer
		logger := logging.New(logging.Config{Level: "debug", Output: &buf})
		handler := RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/trend?days=7", nil))

		Convey("It logs the request line with its fields", func() {
			So(buf.String(), ShouldContainSubstring, "GET /api/trend?days=7")
			So(buf.String(), ShouldContainSubstring, "status=418")
			So(buf.String(), ShouldContainSubstring, "request_id="+rec.Header().Get(RequestIDHeader))
		})
	})
}

func TestInstrument(t *testing.T) {
	Convey("Given an instrumented router", t, func() {
		observer := &fakeObserver{}
		router := mux.NewRouter()
		router.Use(Instrument(observer))
		router.HandleFunc("/match/{id}", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/match/42", nil))

		Convey("The route template and status are reported", func() {
			So(observer.requests, ShouldHaveLength, 1)
			So(observer.requests[0].route, ShouldEqual, "/match/{id}")
			So(observer.requests[0].status, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestCORS(t *testing.T) {
	Convey("Given the CORS middleware", t, func() {
		handler := CORS([]string{"https://picks.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		Convey("Allowed origins are echoed", func() {
			req := httptest.NewRequest("GET", "/api/dashboard", nil)
			req.Header.Set("Origin", "https://picks.example")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://picks.example")
		})

		Convey("Other origins are not", func() {
			req := httptest.NewRequest("GET", "/api/dashboard", nil)
			req.Header.Set("Origin", "https://evil.example")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
		})
	})
}
