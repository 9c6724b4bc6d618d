package school

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

// Roles, as serialized in the seed document
const (
	RoleTeacher   = "professor"
	RoleStudent   = "aluno"
	RoleRegistrar = "secretaria"
	RolePrincipal = "diretor"
)

var AllRoles = []string{RoleTeacher, RoleStudent, RoleRegistrar, RolePrincipal}

// User is a login credential; Login is unique within the document.
// Passwords are stored in clear: this is a mock prototype with no real
// authentication.
type User struct {
	Login    string `json:"login"`
	Password string `json:"senha"`
	Role     string `json:"tipo"`
	Name     string `json:"nome"`
}

func (u User) IsTeacher() bool   { return u.Role == RoleTeacher }
func (u User) IsStudent() bool   { return u.Role == RoleStudent }
func (u User) IsRegistrar() bool { return u.Role == RoleRegistrar }
func (u User) IsPrincipal() bool { return u.Role == RolePrincipal }

type Student struct {
	ID         string `json:"id"`
	Name       string `json:"nome"`
	Enrollment string `json:"matricula"`
}

type Teacher struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}

type Subject struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}

// ClassSection links a Subject to a Teacher. Both references are
// best-effort: empty means unset, and a non-empty id may point at a
// record that no longer resolves.
type ClassSection struct {
	ID        string `json:"id"`
	Name      string `json:"nome"`
	SubjectID string `json:"disciplinaId"`
	TeacherID string `json:"professorId"`
}

type Grade struct {
	ID        string  `json:"id"`
	StudentID string  `json:"alunoId"`
	SubjectID string  `json:"disciplinaId"`
	Score     float64 `json:"nota"`
}

type Attendance struct {
	ID        string `json:"id"`
	StudentID string `json:"alunoId"`
	Date      string `json:"data"` // YYYY-MM-DD
	Present   bool   `json:"presente"`
}

// Lesson is a free-text log entry; SectionName is not a foreign key.
type Lesson struct {
	ID          string `json:"id"`
	SectionName string `json:"turmaNome"`
	Date        string `json:"data"` // YYYY-MM-DD
	Description string `json:"descricao"`
}

type Assignment struct {
	ID          string   `json:"id"`
	Title       string   `json:"titulo"`
	Description string   `json:"descricao"`
	SubmittedBy []string `json:"entreguePor"` // student ids, set semantics
}

// Submitted reports whether the given student already handed this assignment in.
func (a Assignment) Submitted(studentID string) bool {
	for _, id := range a.SubmittedBy {
		if id == studentID {
			return true
		}
	}
	return false
}

type Announcement struct {
	ID    string `json:"id"`
	Title string `json:"titulo"`
	Body  string `json:"texto"`
}

// Document is the single aggregate holding every collection; it is the
// unit of persistence and mutates only through Store.Mutate.
type Document struct {
	Users         []User         `json:"usuarios"`
	Students      []Student      `json:"alunos"`
	Teachers      []Teacher      `json:"professores"`
	Subjects      []Subject      `json:"disciplinas"`
	Sections      []ClassSection `json:"turmas"`
	Grades        []Grade        `json:"notas"`
	Attendance    []Attendance   `json:"frequencia"`
	Lessons       []Lesson       `json:"aulas"`
	Assignments   []Assignment   `json:"tarefas"`
	Announcements []Announcement `json:"avisos"`
}

// Normalize defaults every missing collection to an empty one so that
// all top-level keys round-trip through serialization.
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Students == nil {
		d.Students = []Student{}
	}
	if d.Teachers == nil {
		d.Teachers = []Teacher{}
	}
	if d.Subjects == nil {
		d.Subjects = []Subject{}
	}
	if d.Sections == nil {
		d.Sections = []ClassSection{}
	}
	if d.Grades == nil {
		d.Grades = []Grade{}
	}
	if d.Attendance == nil {
		d.Attendance = []Attendance{}
	}
	if d.Lessons == nil {
		d.Lessons = []Lesson{}
	}
	if d.Assignments == nil {
		d.Assignments = []Assignment{}
	}
	if d.Announcements == nil {
		d.Announcements = []Announcement{}
	}
}

// clone returns a deep copy; submission sets are the only nested slices.
func (d *Document) clone() *Document {
	c := &Document{
		Users:         append([]User{}, d.Users...),
		Students:      append([]Student{}, d.Students...),
		Teachers:      append([]Teacher{}, d.Teachers...),
		Subjects:      append([]Subject{}, d.Subjects...),
		Sections:      append([]ClassSection{}, d.Sections...),
		Grades:        append([]Grade{}, d.Grades...),
		Attendance:    append([]Attendance{}, d.Attendance...),
		Lessons:       append([]Lesson{}, d.Lessons...),
		Announcements: append([]Announcement{}, d.Announcements...),
	}
	c.Assignments = make([]Assignment, 0, len(d.Assignments))
	for _, a := range d.Assignments {
		a.SubmittedBy = append([]string{}, a.SubmittedBy...)
		c.Assignments = append(c.Assignments, a)
	}
	return c
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	Name       string `json:"nome" validate:"required"`
	Enrollment string `json:"matricula"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Enrollment = core.CleanString(ns.Enrollment)
	return validate.Struct(ns)
}

// NewTeacher contains information needed to register a new Teacher.
type NewTeacher struct {
	Name string `json:"nome" validate:"required"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	return validate.Struct(nt)
}

type NewSubject struct {
	Name string `json:"nome" validate:"required"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

type NewSection struct {
	Name      string `json:"nome" validate:"required"`
	SubjectID string `json:"disciplinaId"`
}

func (ns *NewSection) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.SubjectID = core.CleanString(ns.SubjectID)
	return validate.Struct(ns)
}

type NewLesson struct {
	SectionName string `json:"turmaNome"`
	Date        string `json:"data"`
	Description string `json:"descricao"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.SectionName = core.CleanString(nl.SectionName)
	nl.Date = core.CleanString(nl.Date)
	return validate.Struct(nl)
}

type NewAttendance struct {
	StudentID string `json:"alunoId" validate:"required"`
	Date      string `json:"data"`
	Present   bool   `json:"presente"`
}

func (na *NewAttendance) Validate(validate *validator.Validate) error {
	na.StudentID = core.CleanString(na.StudentID)
	na.Date = core.CleanString(na.Date)
	return validate.Struct(na)
}

type NewAnnouncement struct {
	Title string `json:"titulo" validate:"required"`
	Body  string `json:"texto"`
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Body = core.CleanString(na.Body)
	return validate.Struct(na)
}
