package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	echoapi "github.com/earmahsakyi/School-Management-System-sub002/apps/api/echo"
	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/access"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grade"
	"github.com/earmahsakyi/School-Management-System-sub002/core/payment"
	"github.com/earmahsakyi/School-Management-System-sub002/core/report"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
	emailsvc "github.com/earmahsakyi/School-Management-System-sub002/services/email"
	pdfsvc "github.com/earmahsakyi/School-Management-System-sub002/services/pdf"
	inmemdb "github.com/earmahsakyi/School-Management-System-sub002/storage/database/inmem"
	testutil "github.com/earmahsakyi/School-Management-System-sub002/tests"
)

const testPasscode = "open sesame"

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errInvalidToken = httpErr{Error: "invalid or expired jwt"}
	errLocked       = httpErr{Error: "this section is locked"}
	errNotFound     = httpErr{Error: "not found"}
)

type testApp struct {
	server    *echoapi.Server
	accessSvc *access.Service
	renderer  *pdfsvc.Mock
	logger    *testutil.Logger

	stuRepo student.Repository
	grdRepo grade.Repository
	payRepo payment.Repository
}

func setup(t *testing.T) *testApp {
	hash, err := bcrypt.GenerateFromPassword([]byte(testPasscode), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt.GenerateFromPassword(): %v", err)
	}
	conf := &core.Config{
		AppName:          "School Management System",
		TestMode:         true,
		DisableReqLogs:   true,
		SecretKey:        "test-secret",
		Currency:         "US$",
		DefaultFromName:  "School Administration",
		DefaultFromAddr:  "noreply@school.test",
		AccessTokenDelta: time.Hour,
		School:           core.SchoolConfig{Name: "Unity High School", Address: "Monrovia, Liberia"},
		Renderer:         core.RendererConfig{Timeout: 5 * time.Second},
		Passcodes: map[string]string{
			core.SectionStudents: string(hash),
			core.SectionGrades:   string(hash),
			core.SectionPayments: string(hash),
		},
	}

	// set up DB & repos
	db := inmemdb.Open()
	app := &testApp{
		renderer: pdfsvc.NewMock(),
		logger:   new(testutil.Logger),
		stuRepo:  inmemdb.NewStudentRepository(db),
		grdRepo:  inmemdb.NewGradeRepository(db),
		payRepo:  inmemdb.NewPaymentRepository(db),
	}

	// set up services
	validate, translator := testutil.NewValidator()
	builder, err := report.NewBuilder(conf)
	if err != nil {
		t.Fatalf("report.NewBuilder(): %v", err)
	}
	app.accessSvc = access.NewService(conf)
	reportSvc := report.NewService(conf, report.ServiceDeps{
		Builder:      builder,
		StudentRepo:  app.stuRepo,
		GradeRepo:    app.grdRepo,
		PaymentRepo:  app.payRepo,
		Renderer:     app.renderer,
		EmailService: emailsvc.NewConsoleServiceMock(conf),
		Logger:       app.logger,
	})

	// set up server
	app.server = echoapi.NewServer(echoapi.NewOptions(conf), echoapi.ServerDeps{
		Logger:     app.logger,
		Validate:   validate,
		Translator: translator,
		AccessSvc:  app.accessSvc,
		StudentSvc: student.NewService(app.stuRepo, validate, app.logger),
		GradeSvc:   grade.NewService(app.grdRepo, app.stuRepo),
		PaymentSvc: payment.NewService(app.payRepo, app.stuRepo),
		ReportSvc:  reportSvc,
	})
	return app
}

func (app *testApp) getToken(t *testing.T, sections ...string) string {
	claims := &access.Claims{
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
		Sections:       sections,
	}
	token, err := app.accessSvc.Token(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func (app *testApp) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
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

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
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
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
