package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-courseform/pkg/config"
	"github.com/goliatone/go-courseform/pkg/registration"
	"github.com/goliatone/go-courseform/pkg/render"
)

type testClient struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newTestServer(t *testing.T, logger *zap.Logger) (*Server, *testClient) {
	t.Helper()
	srv, err := New(context.Background(), config.Default(), logger)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return srv, &testClient{t: t, base: ts.URL, client: &http.Client{Jar: jar}}
}

func (c *testClient) do(method, path, contentType, body string) (int, string) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, strings.NewReader(body))
	if err != nil {
		c.t.Fatalf("request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(data)
}

func (c *testClient) post(values url.Values) string {
	c.t.Helper()
	code, body := c.do(http.MethodPost, "/", "application/x-www-form-urlencoded", values.Encode())
	if code != http.StatusOK {
		c.t.Fatalf("post form: status %d\n%s", code, body)
	}
	return body
}

func (c *testClient) view() render.View {
	c.t.Helper()
	code, body := c.do(http.MethodGet, "/api/form", "", "")
	if code != http.StatusOK {
		c.t.Fatalf("get form: status %d", code)
	}
	var view render.View
	if err := json.Unmarshal([]byte(body), &view); err != nil {
		c.t.Fatalf("decode view: %v\n%s", err, body)
	}
	return view
}

func completeValues(action string) url.Values {
	return url.Values{
		"name":                   {"Ana"},
		"email":                  {"a@x.com"},
		"courses[0][courseName]": {"Cálculo"},
		"courses[0][date]":       {"2024-01-10"},
		"courses[0][credits]":    {"4"},
		"courses[0][instructor]": {"Dr. Pérez"},
		"rows":                   {"1"},
		"action":                 {action},
	}
}

func TestFormPage_InitialRender(t *testing.T) {
	_, client := newTestServer(t, nil)

	code, body := client.do(http.MethodGet, "/", "", "")
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if !strings.Contains(body, "Formulario de Registro") || !strings.Contains(body, `name="courses[0][courseName]"`) {
		t.Fatalf("unexpected page:\n%s", body)
	}
	if !strings.Contains(body, `href="/assets/courseform.css"`) {
		t.Fatalf("theme stylesheet not linked:\n%s", body)
	}
}

func TestFormPost_AddRowKeepsValues(t *testing.T) {
	_, client := newTestServer(t, nil)

	body := client.post(url.Values{"name": {"Ana"}, "action": {"add"}})
	if !strings.Contains(body, `name="courses[1][instructor]"`) {
		t.Fatalf("second row not rendered:\n%s", body)
	}
	if !strings.Contains(body, `name="name" value="Ana"`) {
		t.Fatalf("posted name lost:\n%s", body)
	}
	if got := client.view().Form.Len(); got != 2 {
		t.Fatalf("expected 2 rows, got %d", got)
	}
}

func TestFormPost_RejectedSubmitShowsNoticeOnce(t *testing.T) {
	_, client := newTestServer(t, nil)

	body := client.post(url.Values{"name": {"Ana"}, "action": {"submit"}})
	if !strings.Contains(body, "<dialog open") || !strings.Contains(body, registration.DefaultNoticeMessage) {
		t.Fatalf("notice not shown:\n%s", body)
	}
	if !strings.Contains(body, `aria-invalid="true"`) {
		t.Fatalf("missing fields not flagged:\n%s", body)
	}

	_, again := client.do(http.MethodGet, "/", "", "")
	if strings.Contains(again, "<dialog") {
		t.Fatalf("notice shown twice:\n%s", again)
	}

	view := client.view()
	if view.Status != registration.StatusRejected || view.Form.Name != "Ana" || view.Summary != "" {
		t.Fatalf("unexpected state after rejection: %+v", view)
	}
}

func TestFormPost_SubmitShowsSummary(t *testing.T) {
	_, client := newTestServer(t, nil)

	body := client.post(completeValues("submit"))
	want := "Gracias, Ana. Has cursado las siguientes materias: Cálculo (Créditos: 4, Docente: Dr. Pérez, Fecha: 2024-01-10)."
	if !strings.Contains(body, want) {
		t.Fatalf("summary missing:\n%s", body)
	}
}

func TestFormPost_IgnoresOutOfRangeRows(t *testing.T) {
	_, client := newTestServer(t, nil)

	client.post(url.Values{
		"courses[0][credits]": {"4"},
		"courses[5][credits]": {"9"},
		"courses[-1][date]":   {"2024-01-10"},
		"courses[0][grade]":   {"A"},
		"courses[x][credits]": {"1"},
		"action":              {"add"},
	})

	view := client.view()
	want := []registration.CourseRow{{Credits: "4"}, {}}
	if diff := cmp.Diff(want, view.Form.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestFormPost_StaleRowCountDropsRowsAndAction(t *testing.T) {
	_, client := newTestServer(t, nil)

	if code, body := client.do(http.MethodPost, "/api/form/rows", "", ""); code != http.StatusCreated {
		t.Fatalf("append row: %d %s", code, body)
	}

	body := client.post(url.Values{
		"name":                {"Ana"},
		"courses[0][credits]": {"4"},
		"rows":                {"1"},
		"action":              {"submit"},
	})
	if strings.Contains(body, "<dialog") {
		t.Fatalf("stale submit was run:\n%s", body)
	}

	view := client.view()
	want := registration.Form{Name: "Ana", Rows: []registration.CourseRow{{}, {}}}
	if diff := cmp.Diff(want, view.Form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
	if view.Status != registration.StatusUnsubmitted {
		t.Fatalf("stale post changed status to %s", view.Status)
	}

	client.post(url.Values{"courses[1][credits]": {"3"}, "rows": {"2"}, "action": {"add"}})
	view = client.view()
	if view.Form.Len() != 3 || view.Form.Rows[1].Credits != "3" {
		t.Fatalf("current post not applied: %+v", view.Form)
	}
}

func TestFormPage_RejectedListsFormError(t *testing.T) {
	_, client := newTestServer(t, nil)

	client.post(url.Values{"action": {"submit"}})
	_, body := client.do(http.MethodGet, "/", "", "")

	want := `<ul class="courseform-errors" role="alert">
    <li>` + registration.DefaultNoticeMessage + `</li>`
	if !strings.Contains(body, want) {
		t.Fatalf("form-level error missing:\n%s", body)
	}

	client.post(completeValues("submit"))
	_, body = client.do(http.MethodGet, "/", "", "")
	if strings.Contains(body, `role="alert"`) {
		t.Fatalf("form-level error kept after success:\n%s", body)
	}
}

func TestIsStalePost(t *testing.T) {
	cases := []struct {
		posted string
		rows   int
		want   bool
	}{
		{posted: "", rows: 3, want: false},
		{posted: "2", rows: 2, want: false},
		{posted: " 2 ", rows: 2, want: false},
		{posted: "1", rows: 2, want: true},
		{posted: "two", rows: 2, want: true},
	}
	for _, tc := range cases {
		values := url.Values{}
		if tc.posted != "" {
			values.Set("rows", tc.posted)
		}
		if got := isStalePost(values, tc.rows); got != tc.want {
			t.Fatalf("isStalePost(%q, %d) = %v, want %v", tc.posted, tc.rows, got, tc.want)
		}
	}
}

func TestFormPost_UnknownAction(t *testing.T) {
	_, client := newTestServer(t, nil)

	code, _ := client.do(http.MethodPost, "/", "application/x-www-form-urlencoded", "action=delete")
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAPI_FieldUpdates(t *testing.T) {
	_, client := newTestServer(t, nil)
	const jsonType = "application/json"

	if code, body := client.do(http.MethodPatch, "/api/form/fields", jsonType, `{"field":"email","value":"a@x.com"}`); code != http.StatusOK {
		t.Fatalf("scalar update: %d %s", code, body)
	}
	if code, body := client.do(http.MethodPatch, "/api/form/fields", jsonType, `{"row":0,"field":"credits","value":"4"}`); code != http.StatusOK {
		t.Fatalf("row update: %d %s", code, body)
	}

	cases := []struct {
		name string
		body string
		code int
	}{
		{name: "row out of range", body: `{"row":3,"field":"credits","value":"4"}`, code: http.StatusNotFound},
		{name: "unknown field", body: `{"field":"phone","value":"1"}`, code: http.StatusBadRequest},
		{name: "row field without row", body: `{"field":"credits","value":"1"}`, code: http.StatusBadRequest},
		{name: "extra property", body: `{"field":"name","value":"x","admin":true}`, code: http.StatusBadRequest},
		{name: "missing value", body: `{"field":"name"}`, code: http.StatusBadRequest},
		{name: "negative row", body: `{"row":-1,"field":"date","value":"x"}`, code: http.StatusBadRequest},
		{name: "not json", body: `name=Ana`, code: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := client.do(http.MethodPatch, "/api/form/fields", jsonType, tc.body)
			if code != tc.code {
				t.Fatalf("expected %d, got %d: %s", tc.code, code, body)
			}
			var resp errorResponse
			if err := json.Unmarshal([]byte(body), &resp); err != nil || resp.Error == "" {
				t.Fatalf("expected error body, got %q", body)
			}
		})
	}

	view := client.view()
	want := registration.Form{Email: "a@x.com", Rows: []registration.CourseRow{{Credits: "4"}}}
	if diff := cmp.Diff(want, view.Form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestAPI_SubmitLifecycle(t *testing.T) {
	_, client := newTestServer(t, nil)

	code, body := client.do(http.MethodPost, "/api/form/rows", "", "")
	if code != http.StatusCreated {
		t.Fatalf("append row: %d", code)
	}
	var view render.View
	if err := json.Unmarshal([]byte(body), &view); err != nil || view.Form.Len() != 2 {
		t.Fatalf("append row response: %v %s", err, body)
	}

	before := client.view().Form
	code, body = client.do(http.MethodPost, "/api/form/submit", "", "")
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
	var rejected outcomeResponse
	if err := json.Unmarshal([]byte(body), &rejected); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rejected.Notice != registration.DefaultNoticeMessage || rejected.Status != registration.StatusRejected {
		t.Fatalf("unexpected rejection: %+v", rejected)
	}
	if diff := cmp.Diff(before, client.view().Form); diff != "" {
		t.Fatalf("rejected submit changed state (-want +got):\n%s", diff)
	}

	updates := []string{
		`{"field":"name","value":"Ana"}`,
		`{"field":"email","value":"a@x.com"}`,
	}
	for row, course := range []registration.CourseRow{
		{CourseName: "Cálculo", Date: "2024-01-10", Credits: "4", Instructor: "Dr. Pérez"},
		{CourseName: "Física", Date: "2024-02-15", Credits: "3", Instructor: "Dra. Gómez"},
	} {
		for _, field := range registration.RowFields {
			payload, _ := json.Marshal(map[string]any{"row": row, "field": field.String(), "value": course.Value(field)})
			updates = append(updates, string(payload))
		}
	}
	for _, update := range updates {
		if code, body := client.do(http.MethodPatch, "/api/form/fields", "application/json", update); code != http.StatusOK {
			t.Fatalf("update %s: %d %s", update, code, body)
		}
	}

	code, body = client.do(http.MethodPost, "/api/form/submit", "", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
	var accepted outcomeResponse
	if err := json.Unmarshal([]byte(body), &accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "Gracias, Ana. Has cursado las siguientes materias: " +
		"Cálculo (Créditos: 4, Docente: Dr. Pérez, Fecha: 2024-01-10), " +
		"Física (Créditos: 3, Docente: Dra. Gómez, Fecha: 2024-02-15)."
	if accepted.Summary != want || accepted.Notice != "" {
		t.Fatalf("unexpected outcome: %+v", accepted)
	}
}

func TestAPI_MethodNotAllowed(t *testing.T) {
	_, client := newTestServer(t, nil)
	if code, _ := client.do(http.MethodDelete, "/api/form", "", ""); code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", code)
	}
}

func TestAPIDescription_CoversRoutes(t *testing.T) {
	srv, client := newTestServer(t, nil)

	code, body := client.do(http.MethodGet, "/openapi.json", "", "")
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	var doc struct {
		OpenAPI string         `json:"openapi"`
		Paths   map[string]any `json:"paths"`
	}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.OpenAPI != "3.0.3" || len(doc.Paths) == 0 {
		t.Fatalf("unexpected document: %+v", doc)
	}

	want := []string{
		"GET /api/form",
		"GET /healthz",
		"PATCH /api/form/fields",
		"POST /api/form/rows",
		"POST /api/form/submit",
	}
	if diff := cmp.Diff(want, documentedRoutes(srv.api)); diff != "" {
		t.Fatalf("documented routes mismatch (-want +got):\n%s", diff)
	}
}

func TestHealthz(t *testing.T) {
	_, client := newTestServer(t, nil)
	if code, body := client.do(http.MethodGet, "/healthz", "", ""); code != http.StatusOK || body != "ok" {
		t.Fatalf("healthz: %d %q", code, body)
	}
}

func TestSessions_AreIsolated(t *testing.T) {
	srv, first := newTestServer(t, nil)
	first.post(url.Values{"name": {"Ana"}, "action": {"add"}})

	jar, _ := cookiejar.New(nil)
	second := &testClient{t: t, base: first.base, client: &http.Client{Jar: jar}}
	if got := second.view().Form; got.Name != "" || got.Len() != 1 {
		t.Fatalf("second visitor saw another session: %+v", got)
	}
	if srv.Sessions().Len() != 2 {
		t.Fatalf("expected two sessions, got %d", srv.Sessions().Len())
	}
}

func TestSubmit_LogsWithSession(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	_, client := newTestServer(t, zap.New(core))

	client.do(http.MethodPost, "/api/form/submit", "", "")
	entries := logs.FilterMessage("registration rejected").All()
	if len(entries) != 1 {
		t.Fatalf("expected one rejection log, got %d", len(entries))
	}
	if id, _ := entries[0].ContextMap()["session"].(string); id == "" {
		t.Fatalf("rejection log missing session id")
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := config.Default()
	cfg.Server.Grace = time.Second
	srv, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + listener.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not shut down")
	}
}
