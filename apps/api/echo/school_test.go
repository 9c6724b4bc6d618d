package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	exportsvc "github.com/trezcool/shule/services/export"
	testutil "github.com/trezcool/shule/tests"
)

func initApp(t *testing.T) (Server, *school.Store, *core.Config) {
	t.Helper()

	conf := testutil.NewConfig()
	conf.Debug = false // exercise production error rendering

	validate, translator := testutil.NewValidator()
	store, _ := testutil.NewStore(t)
	srv := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         testutil.NewLogger(),
		Store:          store,
		Sessions:       school.NewSessions(store),
		Reporter:       exportsvc.NewReporter(store),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return srv, store, conf
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func getToken(t *testing.T, conf *core.Config, usr school.User) string {
	t.Helper()

	token, err := GenerateToken(newJWTConfig(conf), GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func doLogin(t *testing.T, app Server, login, password string) (LoginResponse, *httptest.ResponseRecorder) {
	t.Helper()

	req, rec := newAuthRequest(http.MethodPost, "/v1/login", "", marshallObj(t, LoginRequest{Login: login, Password: password}))
	app.ServeHTTP(rec, req)

	var resp LoginResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return resp, rec
}

func Test_home(t *testing.T) {
	app, _, _ := initApp(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Shule API!", rec.Body.String())
}

func Test_login(t *testing.T) {
	app, _, _ := initApp(t)

	t.Run("valid credentials", func(t *testing.T) {
		resp, rec := doLogin(t, app, "ana", "x")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "Ana Souza", resp.Name)
		assert.Equal(t, school.RoleStudent, resp.Role)
		assert.Equal(t, "/v1/student", resp.Home)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, rec := doLogin(t, app, "ana", "nope")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error": "authentication failed"}`, rec.Body.String())
	})

	t.Run("unknown login", func(t *testing.T) {
		_, rec := doLogin(t, app, "ghost", "x")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error": "authentication failed"}`, rec.Body.String())
	})

	t.Run("blank fields", func(t *testing.T) {
		_, rec := doLogin(t, app, "  ", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var fldErrs map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fldErrs))
		assert.Contains(t, fldErrs, "login")
		assert.Contains(t, fldErrs, "senha")
	})
}

func Test_roleGuards(t *testing.T) {
	app, _, conf := initApp(t)

	studentToken := getToken(t, conf, school.User{Login: "ana", Name: "Ana Souza", Role: school.RoleStudent})
	teacherToken := getToken(t, conf, school.User{Login: "carlos", Name: "Carlos Lima", Role: school.RoleTeacher})

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		wantCode int
	}{
		{"anonymous is rejected", http.MethodGet, "/v1/student", "", http.StatusUnauthorized},
		{"anonymous cannot logout", http.MethodPost, "/v1/logout", "", http.StatusUnauthorized},
		{"student cannot reach registrar", http.MethodGet, "/v1/registrar/students", studentToken, http.StatusForbidden},
		{"student cannot reach principal", http.MethodGet, "/v1/principal", studentToken, http.StatusForbidden},
		{"teacher cannot reach student", http.MethodGet, "/v1/student/report-card", teacherToken, http.StatusForbidden},
		{"teacher reaches own dashboard", http.MethodGet, "/v1/teacher", teacherToken, http.StatusOK},
		{"student reaches own dashboard", http.MethodGet, "/v1/student", studentToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func Test_teacherDashboard(t *testing.T) {
	app, store, conf := initApp(t)
	token := getToken(t, conf, school.User{Login: "carlos", Name: "Carlos Lima", Role: school.RoleTeacher})

	t.Run("grade rows resolve names", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/teacher/grades", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var rows []GradeRow
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		require.Len(t, rows, 3)
		assert.Equal(t, GradeRow{Student: "Ana Souza", Subject: "Matemática", Score: 8.5}, rows[0])
	})

	t.Run("sections assigned to the requesting teacher", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/teacher/sections", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var rows []SectionRow
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, SectionRow{ID: "t1", Name: "1A", Subject: "Matemática"}, rows[0])
	})

	t.Run("record lesson fills defaults", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/teacher/lessons", token,
			marshallObj(t, school.NewLesson{Description: "Frações"}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var lesson school.Lesson
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lesson))
		assert.Equal(t, "não informada", lesson.SectionName)
		assert.NotEmpty(t, lesson.Date)
	})

	t.Run("record attendance", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/teacher/attendance", token,
			marshallObj(t, school.NewAttendance{StudentID: "a1", Date: "2024-03-02", Present: true}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Len(t, store.AllAttendance(), 3)
	})

	t.Run("announcement requires a title", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/teacher/announcements", token,
			marshallObj(t, school.NewAnnouncement{Body: "sem título"}))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var fldErrs map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fldErrs))
		assert.Contains(t, fldErrs, "titulo")
	})

	t.Run("post announcement", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/teacher/announcements", token,
			marshallObj(t, school.NewAnnouncement{Title: "Prova na sexta", Body: "Capítulos 1 a 3"}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Len(t, store.Announcements(), 2)
	})
}

func Test_studentDashboard(t *testing.T) {
	app, store, conf := initApp(t)
	token := getToken(t, conf, school.User{Login: "ana", Name: "Ana Souza", Role: school.RoleStudent})

	t.Run("report card", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/student/report-card", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var rows []ReportCardRow
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, ReportCardRow{Subject: "Matemática", Score: 8.5}, rows[0])
		assert.Equal(t, ReportCardRow{Subject: "Português", Score: 7}, rows[1])
	})

	t.Run("attendance history", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/student/attendance", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var atts []school.Attendance
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &atts))
		require.Len(t, atts, 1)
		assert.True(t, atts[0].Present)
	})

	t.Run("submit assignment twice records once", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			req, rec := newAuthRequest(http.MethodPost, "/v1/student/assignments/ta1/submit", token)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusNoContent, rec.Code)
		}
		assignments := store.Assignments()
		require.Len(t, assignments, 1)
		assert.Equal(t, []string{"a1"}, assignments[0].SubmittedBy)
	})

	t.Run("assignments report submission state", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/student/assignments", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var rows []AssignmentRow
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		require.Len(t, rows, 1)
		assert.True(t, rows[0].Submitted)
	})
}

func Test_registrarDashboard(t *testing.T) {
	app, store, conf := initApp(t)
	token := getToken(t, conf, school.User{Login: "sec", Name: "Secretaria", Role: school.RoleRegistrar})

	t.Run("add student generates enrollment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/registrar/students", token,
			marshallObj(t, school.NewStudent{Name: "Novo Aluno"}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var student school.Student
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &student))
		assert.NotEmpty(t, student.ID)
		assert.Regexp(t, `^M-\d+$`, student.Enrollment)
		assert.Len(t, store.Students(), 3)
	})

	t.Run("add student requires a name", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/registrar/students", token,
			marshallObj(t, school.NewStudent{Name: "   "}))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("add teacher provisions a login", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/registrar/teachers", token,
			marshallObj(t, school.NewTeacher{Name: "Paulo Mendes"}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		_, loginRec := doLogin(t, app, "paulo", school.DefaultTeacherPassword)
		assert.Equal(t, http.StatusOK, loginRec.Code)
	})

	t.Run("assign teacher to section", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/registrar/teachers", token,
			marshallObj(t, school.NewTeacher{Name: "Rita Alves"}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		var teacher school.Teacher
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &teacher))

		req, rec = newAuthRequest(http.MethodPut, "/v1/registrar/sections/t1/teacher", token,
			marshallObj(t, AssignTeacherRequest{TeacherID: teacher.ID}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		sections := store.Sections()
		require.Len(t, sections, 1)
		assert.Equal(t, teacher.ID, sections[0].TeacherID)
	})

	t.Run("assign teacher requires professorId", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/registrar/sections/t1/teacher", token,
			marshallObj(t, AssignTeacherRequest{}))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_principalDashboard(t *testing.T) {
	app, _, conf := initApp(t)
	token := getToken(t, conf, school.User{Login: "dir", Name: "Diretor", Role: school.RolePrincipal})

	t.Run("attendance report resolves names", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/principal/reports/attendance", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var rows []AttendanceRow
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, AttendanceRow{Student: "Ana Souza", Date: "2024-03-01", Present: true}, rows[0])
	})

	t.Run("enrollment report", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/principal/reports/enrollment", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var students []school.Student
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
		assert.Len(t, students, 2)
	})

	t.Run("xlsx export", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/principal/reports/export", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			rec.Header().Get(echo.HeaderContentType),
		)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "relatorio.xlsx")
		assert.NotZero(t, rec.Body.Len())
	})
}
