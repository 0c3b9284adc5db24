package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/trezcool/mahudhurio/core/attendance"
	emailsvc "github.com/trezcool/mahudhurio/services/email"
	spreadsheetsvc "github.com/trezcool/mahudhurio/services/spreadsheet"
	"github.com/trezcool/mahudhurio/tests"
)

func TestAttendanceApi(t *testing.T) {
	usr := testutil.CreateUser(t, usrSvc, "Attendance Owner", "attendance.owner@test.cd", "passwd")
	token := getToken(t, usr)
	crs := testutil.CreateCourse(t, crsSvc, usr.ID, "Physics", "6th", "A")

	ana := testutil.CreateStudent(t, stdSvc, crs.ID, "Ana", "Lopez")
	bruno := testutil.CreateStudent(t, stdSvc, crs.ID, "Bruno", "Mendez")

	attendancePath := func(date string) string {
		path := "/v1/courses/" + crs.ID + "/attendance"
		if date != "" {
			path += "?date=" + date
		}
		return path
	}

	putSheet := func(t *testing.T, date string, entries map[string]attendance.Status) []attendance.Entry {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPut, attendancePath(date), token,
			marchallObj(t, map[string]interface{}{"entries": entries}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("PUT code = %d, body %s", rec.Code, rec.Body.String())
		}
		var res []attendance.Entry
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling entries: %v", err)
		}
		return res
	}

	t.Run("empty day sheet lists the active roster", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, attendancePath("2021-03-15"), token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
		}
		var res struct {
			Date     attendance.Day     `json:"date"`
			Students []json.RawMessage  `json:"students"`
			Entries  []attendance.Entry `json:"entries"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling day sheet: %v", err)
		}
		if res.Date != "2021-03-15" {
			t.Errorf("date = %s, want 2021-03-15", res.Date)
		}
		if len(res.Students) != 2 || len(res.Entries) != 0 {
			t.Errorf("students = %d, entries = %d; want 2 and 0", len(res.Students), len(res.Entries))
		}
	})

	t.Run("save then resave reconciles in place", func(t *testing.T) {
		entries := putSheet(t, "2021-03-15", map[string]attendance.Status{
			ana.ID:   attendance.StatusPresent,
			bruno.ID: attendance.StatusAbsent,
		})
		if len(entries) != 2 {
			t.Fatalf("entries = %d, want 2", len(entries))
		}
		ids := map[string]string{}
		for _, ent := range entries {
			ids[ent.StudentID] = ent.ID
		}

		// flip Ana, drop Bruno
		entries = putSheet(t, "2021-03-15", map[string]attendance.Status{
			ana.ID: attendance.StatusAbsent,
		})
		if len(entries) != 1 {
			t.Fatalf("entries = %d, want 1", len(entries))
		}
		if entries[0].ID != ids[ana.ID] {
			t.Errorf("row ID changed on update: %s -> %s", ids[ana.ID], entries[0].ID)
		}
		if entries[0].Status != attendance.StatusAbsent {
			t.Errorf("status = %s, want absent", entries[0].Status)
		}
	})

	t.Run("date forms are normalized", func(t *testing.T) {
		putSheet(t, "2021-03-16T08:30:00Z", map[string]attendance.Status{ana.ID: attendance.StatusPresent})

		req, rec := newAuthRequest(http.MethodGet, attendancePath("2021-03-16"), token)
		app.ServeHTTP(rec, req)
		var res struct {
			Entries []attendance.Entry `json:"entries"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling day sheet: %v", err)
		}
		if len(res.Entries) != 1 {
			t.Errorf("entries = %d, want 1", len(res.Entries))
		}
	})

	t.Run("invalid date", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodGet, path: attendancePath("lol"), token: token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date": `invalid date "lol"`}),
		}
		req, rec := newAuthRequest(tt.method, tt.path, tt.token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("invalid status", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, attendancePath("2021-03-17"), token,
			marchallObj(t, map[string]interface{}{"entries": map[string]string{ana.ID: "late"}}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("code = %d, want 400", rec.Code)
		}
	})

	t.Run("rejects students outside the course roster", func(t *testing.T) {
		chemistry := testutil.CreateCourse(t, crsSvc, usr.ID, "Chemistry", "6th", "B")
		carla := testutil.CreateStudent(t, stdSvc, chemistry.ID, "Carla", "Perez")

		tt := httpTest{
			method: http.MethodPut, path: attendancePath("2021-03-18"), token: token,
			body:     marchallObj(t, map[string]interface{}{"entries": map[string]attendance.Status{carla.ID: attendance.StatusPresent}}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{carla.ID: "student is not in this course"}),
		}
		req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)

		// nothing written to either course's bucket
		for _, courseID := range []string{crs.ID, chemistry.ID} {
			if n, err := attSvc.CountDay(context.Background(), courseID, "2021-03-18"); err != nil || n != 0 {
				t.Errorf("CountDay(%s) = %d, %v; want 0", courseID, n, err)
			}
		}
	})

	t.Run("report", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/report?from=2021-03-15&to=2021-03-16", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
		}
		var rpt attendance.Report
		if err := json.Unmarshal(rec.Body.Bytes(), &rpt); err != nil {
			t.Fatalf("unmarshalling report: %v", err)
		}
		// 2021-03-15: Ana absent; 2021-03-16: Ana present
		if rpt.Stats.Total != 2 || rpt.Stats.Present != 1 || rpt.Stats.Absent != 1 {
			t.Errorf("stats = %+v", rpt.Stats)
		}
		if len(rpt.Rows) != 2 || rpt.Rows[0].Day != "2021-03-16" {
			t.Errorf("rows = %+v", rpt.Rows)
		}
		if rpt.Rows[0].StudentName != "Ana Lopez" || rpt.Rows[0].CourseName != "Physics - 6th A" {
			t.Errorf("joined names = %+v", rpt.Rows[0])
		}
	})

	t.Run("report export", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/report/export?from=2021-03-15&to=2021-03-16", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != spreadsheetsvc.XlsxContentType {
			t.Errorf("Content-Type = %s", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); cd == "" {
			t.Error("missing Content-Disposition header")
		}

		file, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		if err != nil {
			t.Fatalf("OpenReader(): %v", err)
		}
		defer func() { _ = file.Close() }()
		sheets := file.GetSheetList()
		if len(sheets) != 2 {
			t.Errorf("sheets = %v", sheets)
		}
	})

	t.Run("report email", func(t *testing.T) {
		emailsvc.ClearSentMessages()

		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/report/email", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
		}

		if len(emailsvc.SentMessages) != 1 {
			t.Fatalf("sent %d messages, want 1", len(emailsvc.SentMessages))
		}
		msg := emailsvc.SentMessages[0]
		if len(msg.To) != 1 || msg.To[0].Address != usr.Email {
			t.Errorf("To = %+v, want %s", msg.To, usr.Email)
		}
		if !msg.HasAttachments() {
			t.Error("message has no attachment")
		}
	})
}

func TestDashboardApi(t *testing.T) {
	usr := testutil.CreateUser(t, usrSvc, "Dashboard Owner", "dashboard.owner@test.cd", "passwd")
	token := getToken(t, usr)

	math := testutil.CreateCourse(t, crsSvc, usr.ID, "Mathematics", "4th", "A")
	science := testutil.CreateCourse(t, crsSvc, usr.ID, "Science", "5th", "B")

	ana := testutil.CreateStudent(t, stdSvc, math.ID, "Ana", "Lopez")
	testutil.CreateStudent(t, stdSvc, math.ID, "Bruno", "Mendez")

	testutil.SaveDaySheet(t, attSvc, math.ID, attendance.Today(), map[string]attendance.Status{
		ana.ID: attendance.StatusPresent,
	})

	req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}

	var res []struct {
		CourseID      string `json:"course_id"`
		StudentCount  int    `json:"student_count"`
		RecordedToday int    `json:"recorded_today"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshalling dashboard: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("courses = %d, want 2", len(res))
	}
	byID := map[string]struct{ students, recorded int }{}
	for _, row := range res {
		byID[row.CourseID] = struct{ students, recorded int }{row.StudentCount, row.RecordedToday}
	}
	if got := byID[math.ID]; got.students != 2 || got.recorded != 1 {
		t.Errorf("math = %+v, want 2 students, 1 recorded", got)
	}
	if got := byID[science.ID]; got.students != 0 || got.recorded != 0 {
		t.Errorf("science = %+v, want empty", got)
	}
}
