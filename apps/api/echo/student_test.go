package echoapi_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdel28fr/ecole-pwa/core/grade"
	"github.com/abdel28fr/ecole-pwa/core/report"
	"github.com/abdel28fr/ecole-pwa/core/student"
	"github.com/abdel28fr/ecole-pwa/services/spreadsheet"
	"github.com/abdel28fr/ecole-pwa/testutil"
)

func TestStudentQuery(t *testing.T) {
	app := setup(t)
	amine := testutil.CreateStudent(t, app.studentRepo, "Amine Haddad", 5, student.GenderMale, 1)
	lina := testutil.CreateStudent(t, app.studentRepo, "Lina Haddad", 7, student.GenderFemale, 3)
	yanis := testutil.CreateStudent(t, app.studentRepo, "Yanis Kaci", 8, student.GenderMale, 3)
	token := app.token(t, app.teacher)

	app.run(t, []httpTest{
		{name: "no token", path: "/api/students", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "all", path: "/api/students", token: token, wantData: marshallList(t, amine, lina, yanis)},
		{name: "search", path: "/api/students?search=haddad", token: token, wantData: marshallList(t, amine, lina)},
		{name: "class", path: "/api/students?classId=3", token: token, wantData: marshallList(t, lina, yanis)},
		{name: "search and class", path: "/api/students?classId=3&search=HADD", token: token, wantData: marshallList(t, lina)},
		{name: "no match", path: "/api/students?search=zzz", token: token, wantData: marshallList(t)},
		{name: "bad class param", path: "/api/students?classId=abc", token: token, wantData: marshallList(t)},
	})
}

func TestStudentCreate(t *testing.T) {
	app := setup(t)
	adminToken := app.token(t, app.admin)

	newStudent := func(name string, age int, gender string, classID int) []byte {
		return marshallObj(t, student.NewStudent{FullName: name, Age: age, Gender: gender, ClassID: classID})
	}

	app.run(t, []httpTest{
		{name: "not an admin", method: http.MethodPost, path: "/api/students", token: app.token(t, app.teacher),
			body: newStudent("Amine", 5, student.GenderMale, 1), wantCode: http.StatusForbidden},
		{name: "missing fields", method: http.MethodPost, path: "/api/students", token: adminToken,
			body: []byte(`{}`), wantCode: http.StatusBadRequest},
		{name: "too young", method: http.MethodPost, path: "/api/students", token: adminToken,
			body: newStudent("Amine", 2, student.GenderMale, 1), wantCode: http.StatusBadRequest},
		{name: "too old", method: http.MethodPost, path: "/api/students", token: adminToken,
			body: newStudent("Amine", 19, student.GenderMale, 1), wantCode: http.StatusBadRequest},
		{name: "bad gender", method: http.MethodPost, path: "/api/students", token: adminToken,
			body: newStudent("Amine", 5, "other", 1), wantCode: http.StatusBadRequest},
		{name: "unknown class", method: http.MethodPost, path: "/api/students", token: adminToken,
			body: newStudent("Amine", 5, student.GenderMale, 99), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"classId":"class not found"}`)},
		{name: "ok", method: http.MethodPost, path: "/api/students", token: adminToken,
			body: newStudent("  Amine   Haddad ", 5, "MALE", 1), wantCode: http.StatusCreated},
	})

	students, err := app.studentRepo.QueryAllStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, 1, students[0].ID)
	assert.Equal(t, "Amine Haddad", students[0].FullName)
	assert.Equal(t, student.GenderMale, students[0].Gender)
}

func TestStudentRetrieveUpdate(t *testing.T) {
	app := setup(t)
	std := testutil.CreateStudent(t, app.studentRepo, "Amine Haddad", 5, student.GenderMale, 1)
	adminToken := app.token(t, app.admin)

	app.run(t, []httpTest{
		{name: "retrieve", path: pathf("/api/students/%d", std.ID), token: app.token(t, app.accountant),
			wantData: marshallObj(t, std)},
		{name: "unknown", path: "/api/students/42", token: adminToken, wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "student not found"})},
		{name: "update not an admin", method: http.MethodPut, path: pathf("/api/students/%d", std.ID),
			token: app.token(t, app.teacher), body: []byte(`{"age":6}`), wantCode: http.StatusForbidden},
		{name: "update bad age", method: http.MethodPut, path: pathf("/api/students/%d", std.ID),
			token: adminToken, body: []byte(`{"age":30}`), wantCode: http.StatusBadRequest},
		{name: "update bad email", method: http.MethodPut, path: pathf("/api/students/%d", std.ID),
			token: adminToken, body: []byte(`{"email":"nope"}`), wantCode: http.StatusBadRequest},
		{name: "update unknown class", method: http.MethodPut, path: pathf("/api/students/%d", std.ID),
			token: adminToken, body: []byte(`{"classId":77}`), wantCode: http.StatusBadRequest},
		{name: "update unknown", method: http.MethodPut, path: "/api/students/42",
			token: adminToken, body: []byte(`{"age":6}`), wantCode: http.StatusNotFound},
		{name: "update", method: http.MethodPut, path: pathf("/api/students/%d", std.ID),
			token: adminToken, body: []byte(`{"age":6,"classId":2,"phone":"0550 00 00 00"}`)},
	})

	got, err := app.studentRepo.GetStudentByID(context.Background(), std.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Age)
	assert.Equal(t, 2, got.ClassID)
	assert.Equal(t, "0550 00 00 00", got.Phone)
	assert.Equal(t, std.FullName, got.FullName)
	assert.True(t, !got.UpdatedAt.Before(std.UpdatedAt))
}

func TestStudentDestroyCascades(t *testing.T) {
	app := setup(t)
	ctx := context.Background()
	std := testutil.CreateStudent(t, app.studentRepo, "Amine Haddad", 5, student.GenderMale, 1)
	other := testutil.CreateStudent(t, app.studentRepo, "Lina Kaci", 5, student.GenderFemale, 1)
	testutil.CreateGrade(t, app.gradeRepo, std.ID, 1, 8, grade.ExamQuiz, "2024-10-01")
	kept := testutil.CreateGrade(t, app.gradeRepo, other.ID, 1, 7, grade.ExamQuiz, "2024-10-01")
	testutil.CreatePayment(t, app.paymentRepo, std.ID, 10, 2024, "3000", "")
	require.NoError(t, app.studentRepo.SetStudentNote(ctx, std.ID, "calm"))
	adminToken := app.token(t, app.admin)

	app.run(t, []httpTest{
		{name: "not an admin", method: http.MethodDelete, path: pathf("/api/students/%d", std.ID),
			token: app.token(t, app.teacher), wantCode: http.StatusForbidden},
		{name: "ok", method: http.MethodDelete, path: pathf("/api/students/%d", std.ID),
			token: adminToken, wantCode: http.StatusNoContent},
		{name: "again", method: http.MethodDelete, path: pathf("/api/students/%d", std.ID),
			token: adminToken, wantCode: http.StatusNotFound},
	})

	grades, err := app.gradeRepo.QueryAllGrades(ctx)
	require.NoError(t, err)
	assert.Equal(t, []grade.Grade{kept}, grades)

	payments, err := app.paymentRepo.QueryAllPayments(ctx)
	require.NoError(t, err)
	assert.Empty(t, payments)

	// IDs are never reused
	next := testutil.CreateStudent(t, app.studentRepo, "Yanis", 6, student.GenderMale, 1)
	assert.Equal(t, 3, next.ID)
}

func TestStudentNote(t *testing.T) {
	app := setup(t)
	std := testutil.CreateStudent(t, app.studentRepo, "Amine Haddad", 5, student.GenderMale, 1)
	adminToken := app.token(t, app.admin)

	app.run(t, []httpTest{
		{name: "empty", path: pathf("/api/students/%d/note", std.ID), token: adminToken,
			wantData: marshallObj(t, student.Note{StudentID: std.ID})},
		{name: "set not an admin", method: http.MethodPut, path: pathf("/api/students/%d/note", std.ID),
			token: app.token(t, app.teacher), body: []byte(`{"note":"x"}`), wantCode: http.StatusForbidden},
		{name: "set", method: http.MethodPut, path: pathf("/api/students/%d/note", std.ID), token: adminToken,
			body:     []byte(`{"note":"Very attentive"}`),
			wantData: marshallObj(t, student.Note{StudentID: std.ID, Note: "Very attentive"})},
		{name: "get", path: pathf("/api/students/%d/note", std.ID), token: app.token(t, app.teacher),
			wantData: marshallObj(t, student.Note{StudentID: std.ID, Note: "Very attentive"})},
		{name: "unknown student", path: "/api/students/42/note", token: adminToken, wantCode: http.StatusNotFound},
	})
}

func TestStudentReport(t *testing.T) {
	app := setup(t)
	std := testutil.CreateStudent(t, app.studentRepo, "Amine Haddad", 5, student.GenderMale, 1)
	// MOTOR x2, ORAL x3
	testutil.CreateGrade(t, app.gradeRepo, std.ID, 1, 8, grade.ExamQuiz, "2024-10-01")
	testutil.CreateGrade(t, app.gradeRepo, std.ID, 1, 10, grade.ExamExam, "2024-10-15")
	testutil.CreateGrade(t, app.gradeRepo, std.ID, 2, 6, grade.ExamExam, "2024-10-15")

	req, rec := newAuthRequest(http.MethodGet, pathf("/api/students/%d/report", std.ID), app.token(t, app.teacher))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rep report.StudentReport
	unmarshall(t, rec.Body.Bytes(), &rep)
	assert.Equal(t, std.ID, rep.Student.ID)
	require.NotNil(t, rep.Class)
	assert.Equal(t, 1, rep.Class.ID)
	assert.Equal(t, 3, rep.TotalGrades)
	require.Len(t, rep.Subjects, 10)
	assert.Equal(t, 9.0, rep.Subjects[0].Average)
	assert.Equal(t, grade.Excellent, rep.Subjects[0].Appreciation)
	assert.Equal(t, 6.0, rep.Subjects[1].Average)
	assert.Equal(t, 0, rep.Subjects[2].GradeCount)
	// (9*2 + 6*3) / 5
	assert.Equal(t, 7.2, rep.GeneralAverage)
	assert.Equal(t, grade.Good, rep.Appreciation)
}

func newImportRequest(t *testing.T, token, classID string, rows [][]interface{}) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if classID != "" {
		require.NoError(t, w.WriteField("classId", classID))
	}
	if rows != nil {
		fw, err := w.CreateFormFile("file", "students.xlsx")
		require.NoError(t, err)
		header := []string{"Full name", "Age", "Gender", "Phone", "Address", "Email"}
		require.NoError(t, spreadsheet.Write(fw, "Students", header, rows))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/students/import", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

func TestStudentImport(t *testing.T) {
	app := setup(t)
	adminToken := app.token(t, app.admin)
	rows := [][]interface{}{
		{"Amine Haddad", 5, "M", "0550", "Alger", ""},
		{"", "", "", "", "", ""},
		{"Lina Kaci", "seven", "F", "", "", ""},
		{"Yanis Kaci", 30, "M", "", "", ""},
		{"Sara Benali", 6, "fille", "", "", "parent@test.dz"},
	}

	t.Run("not an admin", func(t *testing.T) {
		req, rec := newImportRequest(t, app.token(t, app.teacher), "1", rows)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing class", func(t *testing.T) {
		req, rec := newImportRequest(t, adminToken, "", rows)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown class", func(t *testing.T) {
		req, rec := newImportRequest(t, adminToken, "99", rows)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"classId":"class not found"}`, rec.Body.String())
	})

	t.Run("missing file", func(t *testing.T) {
		req, rec := newImportRequest(t, adminToken, "1", nil)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newImportRequest(t, adminToken, "1", rows)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var res student.ImportResult
		unmarshall(t, rec.Body.Bytes(), &res)
		require.Len(t, res.Imported, 2)
		assert.Equal(t, "Amine Haddad", res.Imported[0].FullName)
		assert.Equal(t, student.GenderMale, res.Imported[0].Gender)
		assert.Equal(t, 1, res.Imported[0].ClassID)
		assert.Equal(t, student.GenderFemale, res.Imported[1].Gender)
		assert.Equal(t, "parent@test.dz", res.Imported[1].Email)

		require.Len(t, res.Skipped, 2)
		assert.Equal(t, 4, res.Skipped[0].Row)
		assert.Equal(t, 5, res.Skipped[1].Row)
		assert.Contains(t, res.Skipped[1].Field, "age")
	})
}
