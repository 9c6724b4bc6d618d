package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	exportsvc "github.com/trezcool/shule/services/export"
)

type schoolApi struct {
	conf       *core.Config
	store      *school.Store
	sessions   *school.Sessions
	reporter   *exportsvc.Reporter
	validate   *validator.Validate
	translator ut.Translator
	jwtCfg     middleware.JWTConfig
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, api schoolApi) {
	g.POST("/login", api.login)

	ag := g.Group("", jwt)
	ag.POST("/logout", api.logout)

	tg := ag.Group("/teacher", roleMiddleware(school.RoleTeacher))
	tg.GET("", api.teacherHome)
	tg.GET("/grades", api.gradeRows)
	tg.GET("/sections", api.teacherSections)
	tg.GET("/students", api.listStudents)
	tg.GET("/announcements", api.listAnnouncements)
	tg.POST("/lessons", api.recordLesson)
	tg.POST("/attendance", api.recordAttendance)
	tg.POST("/announcements", api.postAnnouncement)

	sg := ag.Group("/student", roleMiddleware(school.RoleStudent))
	sg.GET("", api.studentHome)
	sg.GET("/report-card", api.reportCard)
	sg.GET("/attendance", api.studentAttendance)
	sg.GET("/assignments", api.listAssignments)
	sg.POST("/assignments/:id/submit", api.submitAssignment)

	rg := ag.Group("/registrar", roleMiddleware(school.RoleRegistrar))
	rg.GET("", api.registrarHome)
	rg.GET("/students", api.listStudents)
	rg.GET("/teachers", api.listTeachers)
	rg.GET("/subjects", api.listSubjects)
	rg.GET("/sections", api.listSections)
	rg.POST("/students", api.addStudent)
	rg.POST("/teachers", api.addTeacher)
	rg.POST("/subjects", api.addSubject)
	rg.POST("/sections", api.addSection)
	rg.PUT("/sections/:id/teacher", api.assignTeacher)

	pg := ag.Group("/principal", roleMiddleware(school.RolePrincipal))
	pg.GET("", api.principalHome)
	pg.GET("/reports/grades", api.gradeRows)
	pg.GET("/reports/attendance", api.attendanceRows)
	pg.GET("/reports/enrollment", api.listStudents)
	pg.GET("/reports/export", api.exportReport)
}

// Auth handlers

func (api *schoolApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.sessions.Login(data.Login, data.Password)
	if err != nil {
		if errors.Cause(err) == school.ErrInvalidCredentials {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "logging in")
	}
	token, err := GenerateToken(api.jwtCfg, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Token: token,
		Name:  usr.Name,
		Role:  usr.Role,
		Home:  RoleHome(usr.Role),
	})
}

func (api *schoolApi) logout(ctx echo.Context) error {
	api.sessions.Logout()
	return ctx.NoContent(http.StatusNoContent)
}

// Teacher dashboard

func (api *schoolApi) teacherHome(ctx echo.Context) error {
	return api.dashboardHome(ctx, "teacher")
}

func (api *schoolApi) gradeRows(ctx echo.Context) error {
	grades := api.store.Grades()
	rows := make([]GradeRow, 0, len(grades))
	for _, g := range grades {
		rows = append(rows, GradeRow{
			Student: api.store.StudentName(g.StudentID),
			Subject: api.store.SubjectName(g.SubjectID),
			Score:   g.Score,
		})
	}
	return ctx.JSON(http.StatusOK, rows)
}

// teacherSections lists the sections assigned to the requesting teacher.
func (api *schoolApi) teacherSections(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	teacher, ok := api.store.TeacherForUser(sessionUser(claims))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no teacher record")
	}

	sections := api.store.SectionsTaughtBy(teacher.ID)
	rows := make([]SectionRow, 0, len(sections))
	for _, sec := range sections {
		rows = append(rows, SectionRow{
			ID:      sec.ID,
			Name:    sec.Name,
			Subject: api.store.SubjectName(sec.SubjectID),
		})
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *schoolApi) recordLesson(ctx echo.Context) error {
	var data school.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	lesson, err := api.store.RecordLesson(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, lesson)
}

func (api *schoolApi) recordAttendance(ctx echo.Context) error {
	var data school.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}
	att, err := api.store.RecordAttendance(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, att)
}

func (api *schoolApi) postAnnouncement(ctx echo.Context) error {
	var data school.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	aviso, err := api.store.PostAnnouncement(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, aviso)
}

func (api *schoolApi) listAnnouncements(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.Announcements())
}

// Student dashboard

func (api *schoolApi) studentHome(ctx echo.Context) error {
	return api.dashboardHome(ctx, "student")
}

func (api *schoolApi) currentStudent(ctx echo.Context) (school.Student, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return school.Student{}, err
	}
	student, ok := api.store.StudentForUser(sessionUser(claims))
	if !ok {
		return school.Student{}, echo.NewHTTPError(http.StatusNotFound, "no student record")
	}
	return student, nil
}

func (api *schoolApi) reportCard(ctx echo.Context) error {
	student, err := api.currentStudent(ctx)
	if err != nil {
		return err
	}

	grades := api.store.GradesForStudent(student.ID)
	rows := make([]ReportCardRow, 0, len(grades))
	for _, g := range grades {
		rows = append(rows, ReportCardRow{Subject: api.store.SubjectName(g.SubjectID), Score: g.Score})
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *schoolApi) studentAttendance(ctx echo.Context) error {
	student, err := api.currentStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.store.AttendanceForStudent(student.ID))
}

func (api *schoolApi) listAssignments(ctx echo.Context) error {
	student, err := api.currentStudent(ctx)
	if err != nil {
		return err
	}

	assignments := api.store.Assignments()
	rows := make([]AssignmentRow, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, AssignmentRow{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Submitted:   a.Submitted(student.ID),
		})
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *schoolApi) submitAssignment(ctx echo.Context) error {
	student, err := api.currentStudent(ctx)
	if err != nil {
		return err
	}
	if err := api.store.SubmitAssignment(ctx.Request().Context(), ctx.Param("id"), student.ID); err != nil {
		return errors.Wrap(err, "submitting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Registrar dashboard

func (api *schoolApi) registrarHome(ctx echo.Context) error {
	return api.dashboardHome(ctx, "registrar")
}

func (api *schoolApi) listStudents(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.Students())
}

func (api *schoolApi) listTeachers(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.Teachers())
}

func (api *schoolApi) listSubjects(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.Subjects())
}

func (api *schoolApi) listSections(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.Sections())
}

func (api *schoolApi) addStudent(ctx echo.Context) error {
	var data school.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	student, err := api.store.AddStudent(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, student)
}

func (api *schoolApi) addTeacher(ctx echo.Context) error {
	var data school.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	teacher, err := api.store.AddTeacher(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, teacher)
}

func (api *schoolApi) addSubject(ctx echo.Context) error {
	var data school.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	subject, err := api.store.AddSubject(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, subject)
}

func (api *schoolApi) addSection(ctx echo.Context) error {
	var data school.NewSection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSection")
	}
	section, err := api.store.AddClassSection(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, section)
}

func (api *schoolApi) assignTeacher(ctx echo.Context) error {
	var data AssignTeacherRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignTeacherRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if err := api.store.AssignTeacher(ctx.Request().Context(), ctx.Param("id"), data.TeacherID); err != nil {
		return errors.Wrap(err, "assigning teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Principal dashboard

func (api *schoolApi) principalHome(ctx echo.Context) error {
	return api.dashboardHome(ctx, "principal")
}

func (api *schoolApi) attendanceRows(ctx echo.Context) error {
	atts := api.store.AllAttendance()
	rows := make([]AttendanceRow, 0, len(atts))
	for _, a := range atts {
		rows = append(rows, AttendanceRow{
			Student: api.store.StudentName(a.StudentID),
			Date:    a.Date,
			Present: a.Present,
		})
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *schoolApi) exportReport(ctx echo.Context) error {
	buf, err := api.reporter.BuildReport()
	if err != nil {
		return errors.Wrap(err, "building report")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="relatorio.xlsx"`)
	return ctx.Blob(
		http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes(),
	)
}

func (api *schoolApi) dashboardHome(ctx echo.Context, dashboard string) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"dashboard": dashboard, "nome": claims.Name, "tipo": claims.Role})
}

// Bindings

type (
	LoginRequest struct {
		Login    string `json:"login" validate:"required"`
		Password string `json:"senha" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
		Name  string `json:"nome"`
		Role  string `json:"tipo"`
		Home  string `json:"home"`
	}

	AssignTeacherRequest struct {
		TeacherID string `json:"professorId" validate:"required"`
	}

	GradeRow struct {
		Student string  `json:"aluno"`
		Subject string  `json:"disciplina"`
		Score   float64 `json:"nota"`
	}

	ReportCardRow struct {
		Subject string  `json:"disciplina"`
		Score   float64 `json:"nota"`
	}

	SectionRow struct {
		ID      string `json:"id"`
		Name    string `json:"nome"`
		Subject string `json:"disciplina"`
	}

	AttendanceRow struct {
		Student string `json:"aluno"`
		Date    string `json:"data"`
		Present bool   `json:"presente"`
	}

	AssignmentRow struct {
		ID          string `json:"id"`
		Title       string `json:"titulo"`
		Description string `json:"descricao"`
		Submitted   bool   `json:"entregue"`
	}
)

func (r *LoginRequest) Validate(validate *validator.Validate) error {
	r.Login = core.CleanString(r.Login)
	r.Password = core.CleanString(r.Password)
	return validate.Struct(r)
}

func (r *AssignTeacherRequest) Validate(validate *validator.Validate) error {
	r.TeacherID = core.CleanString(r.TeacherID)
	return validate.Struct(r)
}
