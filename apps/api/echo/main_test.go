package echoapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	echoapi "github.com/abdel28fr/ecole-pwa/apps/api/echo"
	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/backup"
	"github.com/abdel28fr/ecole-pwa/core/class"
	"github.com/abdel28fr/ecole-pwa/core/finance"
	"github.com/abdel28fr/ecole-pwa/core/grade"
	"github.com/abdel28fr/ecole-pwa/core/payment"
	"github.com/abdel28fr/ecole-pwa/core/report"
	"github.com/abdel28fr/ecole-pwa/core/settings"
	"github.com/abdel28fr/ecole-pwa/core/student"
	"github.com/abdel28fr/ecole-pwa/core/subject"
	"github.com/abdel28fr/ecole-pwa/core/user"
	emailsvc "github.com/abdel28fr/ecole-pwa/services/email"
	logsvc "github.com/abdel28fr/ecole-pwa/services/logger"
	"github.com/abdel28fr/ecole-pwa/storage/kvrepos"
	"github.com/abdel28fr/ecole-pwa/testutil"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// testApp is a server over a fresh seeded in-memory store, along with its repositories.
type testApp struct {
	*echoapi.Server
	conf         *core.Config
	usrRepo      user.Repository
	studentRepo  student.Repository
	classRepo    class.Repository
	subjectRepo  subject.Repository
	gradeRepo    grade.Repository
	paymentRepo  payment.Repository
	financeRepo  finance.Repository
	settingsRepo settings.Repository

	admin      user.User
	teacher    user.User
	accountant user.User
}

func setup(t *testing.T) *testApp {
	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLogger(zap.NewNop(), conf)
	logger.Enable(false)
	validate, translator := testutil.NewValidator()

	db := testutil.NewDB(t)
	app := &testApp{
		conf:         conf,
		usrRepo:      kvrepos.NewUserRepository(db),
		studentRepo:  kvrepos.NewStudentRepository(db),
		classRepo:    kvrepos.NewClassRepository(db),
		subjectRepo:  kvrepos.NewSubjectRepository(db),
		gradeRepo:    kvrepos.NewGradeRepository(db),
		paymentRepo:  kvrepos.NewPaymentRepository(db),
		financeRepo:  kvrepos.NewFinanceRepository(db),
		settingsRepo: kvrepos.NewSettingsRepository(db),
	}

	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	emailsvc.ResetSentMessages()
	core.ParseEmailTemplates(conf, logger)

	app.Server = echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      logger,
		Validate:    validate,
		Translator:  translator,
		UserSvc:     user.NewService(app.usrRepo),
		StudentSvc:  student.NewService(app.studentRepo),
		ClassSvc:    class.NewService(app.classRepo),
		SubjectSvc:  subject.NewService(app.subjectRepo),
		GradeSvc:    grade.NewService(app.gradeRepo),
		PaymentSvc:  payment.NewService(app.paymentRepo, mailSvc),
		FinanceSvc:  finance.NewService(app.financeRepo),
		SettingsSvc: settings.NewService(app.settingsRepo),
		ReportSvc:   report.NewService(kvrepos.NewReportRepository(db)),
		BackupSvc:   backup.NewService(kvrepos.NewBackupRepository(db)),
	})

	app.admin = testutil.CreateUser(t, app.usrRepo, "Admin", "admin", "admin@test.dz", "", []string{user.RoleAdmin}, true)
	app.teacher = testutil.CreateUser(t, app.usrRepo, "Teacher", "teacher", "teacher@test.dz", "", []string{user.RoleTeacher}, true)
	app.accountant = testutil.CreateUser(t, app.usrRepo, "Accountant", "accountant", "accountant@test.dz", "", []string{user.RoleAccountant}, true)
	return app
}

func (app *testApp) token(t *testing.T, usr user.User) string {
	return getToken(t, app.conf, usr)
}

// run executes every test against the app.
func (app *testApp) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			if tt.wantCode == 0 {
				tt.wantCode = http.StatusOK
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	claims := echoapi.GetUserClaims(usr, conf)
	token, err := echoapi.GenerateToken(claims, conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func pathf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func marshallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marshallList() failed: %v", err)
	}
	return data
}

func unmarshall(t *testing.T, data []byte, dst interface{}) {
	if err := json.Unmarshal(data, dst); err != nil {
		t.Fatalf("unmarshall() failed: %v; data %s", err, data)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "code; body %s", rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
