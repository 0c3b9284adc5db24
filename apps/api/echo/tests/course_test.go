package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/student"
	"github.com/trezcool/mahudhurio/tests"
)

func TestCourseApi(t *testing.T) {
	usr := testutil.CreateUser(t, usrSvc, "Course Owner", "course.owner@test.cd", "passwd")
	other := testutil.CreateUser(t, usrSvc, "Other Teacher", "other.teacher@test.cd", "passwd")
	token := getToken(t, usr)
	otherToken := getToken(t, other)

	crs := testutil.CreateCourse(t, crsSvc, usr.ID, "Mathematics", "4th", "A")

	t.Run("create", func(t *testing.T) {
		tests := []httpTest{
			{
				name: "no token", method: http.MethodPost, path: "/v1/courses",
				body:     marchallObj(t, course.NewCourse{Name: "Science", Grade: "5th", Section: "B"}),
				wantCode: http.StatusUnauthorized,
				wantData: marchallObj(t, errMissingToken),
			},
			{
				name: "empty body", method: http.MethodPost, path: "/v1/courses",
				body: []byte("{}"), token: token,
				wantCode: http.StatusBadRequest,
				wantData: marchallObj(t, map[string]string{
					"name":    "name is a required field",
					"grade":   "grade is a required field",
					"section": "section is a required field",
				}),
			},
			{
				name: "ok", method: http.MethodPost, path: "/v1/courses",
				body:     marchallObj(t, course.NewCourse{Name: "Science", Grade: "5th", Section: "B"}),
				token:    token,
				wantCode: http.StatusCreated,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
				app.ServeHTTP(rec, req)
				checkCodeAndData(t, tt, rec)
			})
		}
	})

	t.Run("reads are owner-scoped", func(t *testing.T) {
		tests := []httpTest{
			{
				name: "owner retrieves", method: http.MethodGet, path: "/v1/courses/" + crs.ID,
				token:    token,
				wantCode: http.StatusOK,
				wantData: marchallObj(t, crs),
			},
			{
				name: "other teacher gets 404", method: http.MethodGet, path: "/v1/courses/" + crs.ID,
				token:    otherToken,
				wantCode: http.StatusNotFound,
				wantData: marchallObj(t, errNotFound),
			},
			{
				name: "unknown id", method: http.MethodGet, path: "/v1/courses/nope",
				token:    token,
				wantCode: http.StatusNotFound,
				wantData: marchallObj(t, errNotFound),
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req, rec := newAuthRequest(tt.method, tt.path, tt.token)
				app.ServeHTTP(rec, req)
				checkCodeAndData(t, tt, rec)
			})
		}
	})

	t.Run("update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+crs.ID, token,
			marchallObj(t, course.UpdateCourse{Name: "Mathematics", Grade: "4th", Section: "C"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodPut, "/v1/courses/"+crs.ID, otherToken,
			marchallObj(t, course.UpdateCourse{Name: "Hijacked", Grade: "1st", Section: "A"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("other teacher update code = %d, want 404", rec.Code)
		}
	})

	t.Run("delete refused while students exist", func(t *testing.T) {
		doomed := testutil.CreateCourse(t, crsSvc, usr.ID, "History", "6th", "A")
		testutil.CreateStudent(t, stdSvc, doomed.ID, "Ana", "Lopez")

		tt := httpTest{
			method: http.MethodDelete, path: "/v1/courses/" + doomed.ID, token: token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"id": "a course with students cannot be deleted"}),
		}
		req, rec := newAuthRequest(tt.method, tt.path, tt.token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("delete empty course", func(t *testing.T) {
		doomed := testutil.CreateCourse(t, crsSvc, usr.ID, "Geography", "6th", "B")

		req, rec := newAuthRequest(http.MethodDelete, "/v1/courses/"+doomed.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %d, want 204", rec.Code)
		}
	})
}

func TestStudentApi(t *testing.T) {
	usr := testutil.CreateUser(t, usrSvc, "Roster Owner", "roster.owner@test.cd", "passwd")
	token := getToken(t, usr)
	crs := testutil.CreateCourse(t, crsSvc, usr.ID, "Biology", "5th", "A")

	ana := testutil.CreateStudent(t, stdSvc, crs.ID, "Ana", "Lopez")
	testutil.CreateStudent(t, stdSvc, crs.ID, "Bruno", "Mendez")

	t.Run("list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/students", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
		}
		students, err := stdSvc.Filter(req.Context(), student.QueryFilter{CourseID: crs.ID})
		if err != nil {
			t.Fatalf("Filter(): %v", err)
		}
		if ok, _ := jsonBytesEqual(t, rec.Body.Bytes(), marchallObj(t, students)); !ok {
			t.Errorf("data = %s", rec.Body.String())
		}
	})

	t.Run("deactivate then filter active", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/students/"+ana.ID, token,
			[]byte(`{"first_name": "Ana", "last_name": "Lopez", "active": false}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/students?active=true", token)
		app.ServeHTTP(rec, req)
		var res []student.Student
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling students: %v", err)
		}
		if len(res) != 1 || res[0].LastName != "Mendez" {
			t.Errorf("active students = %+v, want only Mendez", res)
		}
	})

	t.Run("delete removes attendance entries", func(t *testing.T) {
		goner := testutil.CreateStudent(t, stdSvc, crs.ID, "Caro", "Nunez")
		testutil.SaveDaySheet(t, attSvc, crs.ID, "2021-03-15", map[string]attendance.Status{
			goner.ID: attendance.StatusPresent,
		})

		req, rec := newAuthRequest(http.MethodDelete, "/v1/students/"+goner.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %d, want 204", rec.Code)
		}

		count, err := attSvc.CountDay(req.Context(), crs.ID, "2021-03-15")
		if err != nil {
			t.Fatalf("CountDay(): %v", err)
		}
		if count != 0 {
			t.Errorf("CountDay() = %d, want 0", count)
		}
	})

	t.Run("other teacher cannot touch the roster", func(t *testing.T) {
		other := testutil.CreateUser(t, usrSvc, "Intruder", "intruder@test.cd", "passwd")

		req, rec := newAuthRequest(http.MethodDelete, "/v1/students/"+ana.ID, getToken(t, other))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("code = %d, want 404", rec.Code)
		}
	})
}

func rosterUpload(t *testing.T, headers []string, rows [][]string) (*bytes.Buffer, string) {
	t.Helper()

	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	for c, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = file.SetCellValue(sheet, cell, h)
	}
	for r, row := range rows {
		for c, val := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = file.SetCellValue(sheet, cell, val)
		}
	}
	xlsx, err := file.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer(): %v", err)
	}

	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", "roster.xlsx")
	if err != nil {
		t.Fatalf("CreateFormFile(): %v", err)
	}
	if _, err = part.Write(xlsx.Bytes()); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return body, w.FormDataContentType()
}

func TestStudentImportApi(t *testing.T) {
	usr := testutil.CreateUser(t, usrSvc, "Import Owner", "import.owner@test.cd", "passwd")
	token := getToken(t, usr)
	crs := testutil.CreateCourse(t, crsSvc, usr.ID, "Chemistry", "6th", "A")

	importPath := "/v1/courses/" + crs.ID + "/students/import"

	upload := func(t *testing.T, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, importPath, body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		return rec
	}

	t.Run("missing required headers rejects the whole file", func(t *testing.T) {
		body, contentType := rosterUpload(t, []string{"id", "email"}, [][]string{{"1", "x@y.z"}})
		rec := upload(t, body, contentType)

		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"first name": "required column is missing",
				"last name":  "required column is missing",
			}),
		}
		checkCodeAndData(t, tt, rec)

		students, _ := stdSvc.Filter(context.Background(), student.QueryFilter{CourseID: crs.ID})
		if len(students) != 0 {
			t.Errorf("students imported despite invalid file: %+v", students)
		}
	})

	t.Run("ok", func(t *testing.T) {
		body, contentType := rosterUpload(t,
			[]string{"First Name", "Last Name"},
			[][]string{{"Ana", "Lopez"}, {"Bruno", "Mendez"}},
		)
		rec := upload(t, body, contentType)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
		}

		students, err := stdSvc.Filter(context.Background(), student.QueryFilter{CourseID: crs.ID})
		if err != nil {
			t.Fatalf("Filter(): %v", err)
		}
		if len(students) != 2 {
			t.Fatalf("imported %d students, want 2", len(students))
		}
		for _, std := range students {
			if !std.Active {
				t.Errorf("student %s imported inactive", std.ID)
			}
		}
	})

	t.Run("missing file part", func(t *testing.T) {
		body := new(bytes.Buffer)
		w := multipart.NewWriter(body)
		_ = w.WriteField("lol", "nope")
		_ = w.Close()

		rec := upload(t, body, w.FormDataContentType())
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("code = %d, want 400", rec.Code)
		}
	})
}
