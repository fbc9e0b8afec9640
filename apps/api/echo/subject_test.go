package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdel28fr/ecole-pwa/core/grade"
	"github.com/abdel28fr/ecole-pwa/core/student"
	"github.com/abdel28fr/ecole-pwa/core/subject"
	"github.com/abdel28fr/ecole-pwa/testutil"
)

func TestSubjectCRUD(t *testing.T) {
	app := setup(t)
	ctx := context.Background()
	adminToken := app.token(t, app.admin)

	defaults, err := app.subjectRepo.QueryAllSubjects(ctx)
	require.NoError(t, err)
	require.Len(t, defaults, 10)

	app.run(t, []httpTest{
		{name: "query", path: "/api/subjects", token: app.token(t, app.teacher), wantData: marshallList(t, toAny(defaults)...)},
		{name: "retrieve", path: "/api/subjects/5", token: app.token(t, app.teacher), wantData: marshallObj(t, defaults[4])},
		{name: "retrieve unknown", path: "/api/subjects/99", token: adminToken, wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "subject not found"})},
		{name: "create not an admin", method: http.MethodPost, path: "/api/subjects", token: app.token(t, app.teacher),
			body: []byte(`{"name":"English","code":"EN","coefficient":2}`), wantCode: http.StatusForbidden},
		{name: "create coefficient too big", method: http.MethodPost, path: "/api/subjects", token: adminToken,
			body: []byte(`{"name":"English","code":"EN","coefficient":6}`), wantCode: http.StatusBadRequest},
		{name: "create duplicate code", method: http.MethodPost, path: "/api/subjects", token: adminToken,
			body: []byte(`{"name":"Maths","code":"math","coefficient":2}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"code":"a subject with this code already exists"}`)},
		{name: "create", method: http.MethodPost, path: "/api/subjects", token: adminToken,
			body: []byte(`{"name":"English","code":" en ","coefficient":2}`), wantCode: http.StatusCreated},
		{name: "update duplicate code", method: http.MethodPut, path: "/api/subjects/11", token: adminToken,
			body: []byte(`{"code":"FR"}`), wantCode: http.StatusBadRequest},
		{name: "update own code", method: http.MethodPut, path: "/api/subjects/11", token: adminToken,
			body: []byte(`{"code":"EN","coefficient":3}`)},
	})

	sub, err := app.subjectRepo.GetSubjectByID(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, "EN", sub.Code)
	assert.Equal(t, 3, sub.Coefficient)
}

func TestSubjectDestroy(t *testing.T) {
	app := setup(t)
	adminToken := app.token(t, app.admin)
	std := testutil.CreateStudent(t, app.studentRepo, "Amine", 5, student.GenderMale, 1)
	testutil.CreateGrade(t, app.gradeRepo, std.ID, 1, 8, grade.ExamQuiz, "2024-10-01")

	app.run(t, []httpTest{
		{name: "not an admin", method: http.MethodDelete, path: "/api/subjects/2", token: app.token(t, app.teacher),
			wantCode: http.StatusForbidden},
		{name: "has grades", method: http.MethodDelete, path: "/api/subjects/1", token: adminToken,
			wantCode: http.StatusConflict,
			wantData: marshallObj(t, httpErr{Error: "cannot delete a subject that still has grades (1 linked)"})},
		{name: "ok", method: http.MethodDelete, path: "/api/subjects/2", token: adminToken, wantCode: http.StatusNoContent},
		{name: "unknown", method: http.MethodDelete, path: "/api/subjects/2", token: adminToken, wantCode: http.StatusNotFound},
	})
}

func TestSubjectStats(t *testing.T) {
	app := setup(t)
	token := app.token(t, app.accountant)
	amine := testutil.CreateStudent(t, app.studentRepo, "Amine", 5, student.GenderMale, 1)
	lina := testutil.CreateStudent(t, app.studentRepo, "Lina", 5, student.GenderFemale, 1)
	testutil.CreateGrade(t, app.gradeRepo, amine.ID, 1, 8, grade.ExamQuiz, "2024-10-01")
	testutil.CreateGrade(t, app.gradeRepo, lina.ID, 1, 5.5, grade.ExamQuiz, "2024-10-01")
	testutil.CreateGrade(t, app.gradeRepo, lina.ID, 1, 7, grade.ExamExam, "2024-10-05")

	sub1, err := app.subjectRepo.GetSubjectByID(context.Background(), 1)
	require.NoError(t, err)
	sub2, err := app.subjectRepo.GetSubjectByID(context.Background(), 2)
	require.NoError(t, err)

	app.run(t, []httpTest{
		{name: "graded", path: "/api/subjects/1/stats", token: token,
			wantData: marshallObj(t, subject.Stats{Subject: sub1, TotalGrades: 3, AverageGrade: 6.83})},
		{name: "no grades", path: "/api/subjects/2/stats", token: token,
			wantData: marshallObj(t, subject.Stats{Subject: sub2})},
		{name: "unknown", path: "/api/subjects/99/stats", token: token, wantCode: http.StatusNotFound},
	})

	req, rec := newAuthRequest(http.MethodGet, "/api/subjects/stats", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats []subject.Stats
	unmarshall(t, rec.Body.Bytes(), &stats)
	assert.Len(t, stats, 10)
}
