package school

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// DefaultTeacherPassword is assigned to the login credential provisioned
// alongside every new Teacher.
const DefaultTeacherPassword = "123"

type (
	// Storage persists the serialized document under a fixed namespaced key.
	Storage interface {
		// Get returns the stored document, or ErrDocumentNotFound.
		Get(ctx context.Context) ([]byte, error)
		// Put replaces the stored document.
		Put(ctx context.Context, data []byte) error
	}

	// Store owns the in-memory document and is the only path by which it
	// changes. Every mutation persists the full document before returning,
	// so a subsequent read observes the new state (read-after-write within
	// this process; concurrent processes sharing the storage are
	// last-writer-wins).
	Store struct {
		mu       sync.RWMutex
		doc      *Document
		storage  Storage
		validate *validator.Validate
		logger   core.Logger
		mailSvc  core.EmailService
		conf     *core.Config
	}
)

var ErrDocumentNotFound = errors.New("document not found")

func NewStore(
	doc *Document,
	storage Storage,
	validate *validator.Validate,
	logger core.Logger,
	mailSvc core.EmailService,
	conf *core.Config,
) *Store {
	doc.Normalize()
	return &Store{
		doc:      doc,
		storage:  storage,
		validate: validate,
		logger:   logger,
		mailSvc:  mailSvc,
		conf:     conf,
	}
}

// Mutate applies fn to a copy of the document and synchronously persists
// the whole aggregate. The write lock is held across apply+persist, and
// the copy is installed only once the persist succeeds: a failed write
// leaves the in-memory state untouched, so a retried mutation cannot
// flush a half-applied change.
func (s *Store) Mutate(ctx context.Context, fn func(doc *Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.clone()
	fn(next)
	return s.apply(ctx, next)
}

// apply persists next and installs it as the current document on success.
// Must be called with the write lock held.
func (s *Store) apply(ctx context.Context, next *Document) error {
	data, err := json.Marshal(next)
	if err != nil {
		return errors.Wrap(err, "marshaling document")
	}
	if err := s.storage.Put(ctx, data); err != nil {
		return errors.Wrap(err, "persisting document")
	}
	s.doc = next
	return nil
}

// AddStudent registers a new Student. A blank enrollment number defaults
// to a timestamp-derived one.
func (s *Store) AddStudent(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(s.validate); err != nil {
		return Student{}, err
	}
	if ns.Enrollment == "" {
		ns.Enrollment = fmt.Sprintf("M-%d", NowFunc().UnixMilli())
	}

	student := Student{
		ID:         newID(studentIDPrefix),
		Name:       ns.Name,
		Enrollment: ns.Enrollment,
	}
	err := s.Mutate(ctx, func(doc *Document) {
		doc.Students = append(doc.Students, student)
	})
	if err != nil {
		return Student{}, err
	}
	return student, nil
}

// AddTeacher registers a new Teacher and also provisions a login
// credential for them: login is the lowercased first token of the name,
// password is DefaultTeacherPassword. First-name collisions silently
// shadow the older credential on lookup; known latent defect.
func (s *Store) AddTeacher(ctx context.Context, nt NewTeacher) (Teacher, error) {
	if err := nt.Validate(s.validate); err != nil {
		return Teacher{}, err
	}

	teacher := Teacher{
		ID:   newID(teacherIDPrefix),
		Name: nt.Name,
	}
	credential := User{
		Login:    strings.ToLower(strings.Fields(nt.Name)[0]),
		Password: DefaultTeacherPassword,
		Role:     RoleTeacher,
		Name:     nt.Name,
	}
	err := s.Mutate(ctx, func(doc *Document) {
		doc.Teachers = append(doc.Teachers, teacher)
		doc.Users = append(doc.Users, credential)
	})
	if err != nil {
		return Teacher{}, err
	}
	return teacher, nil
}

func (s *Store) AddSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	if err := ns.Validate(s.validate); err != nil {
		return Subject{}, err
	}

	subject := Subject{
		ID:   newID(subjectIDPrefix),
		Name: ns.Name,
	}
	err := s.Mutate(ctx, func(doc *Document) {
		doc.Subjects = append(doc.Subjects, subject)
	})
	if err != nil {
		return Subject{}, err
	}
	return subject, nil
}

// AddClassSection creates a section with the teacher unset; AssignTeacher
// fills it in later.
func (s *Store) AddClassSection(ctx context.Context, ns NewSection) (ClassSection, error) {
	if err := ns.Validate(s.validate); err != nil {
		return ClassSection{}, err
	}

	section := ClassSection{
		ID:        newID(sectionIDPrefix),
		Name:      ns.Name,
		SubjectID: ns.SubjectID,
	}
	err := s.Mutate(ctx, func(doc *Document) {
		doc.Sections = append(doc.Sections, section)
	})
	if err != nil {
		return ClassSection{}, err
	}
	return section, nil
}

// AssignTeacher sets the teacher on a section. An unknown section id is a
// logged no-op; the document is left untouched.
func (s *Store) AssignTeacher(ctx context.Context, sectionID, teacherID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Sections {
		if s.doc.Sections[i].ID == sectionID {
			next := s.doc.clone()
			next.Sections[i].TeacherID = teacherID
			return s.apply(ctx, next)
		}
	}
	s.logger.Info(fmt.Sprintf("AssignTeacher: unknown section %q; skipping", sectionID))
	return nil
}

// RecordLesson logs a lesson. A blank date defaults to today; a blank
// section name defaults to a placeholder.
func (s *Store) RecordLesson(ctx context.Context, nl NewLesson) (Lesson, error) {
	if err := nl.Validate(s.validate); err != nil {
		return Lesson{}, err
	}
	if nl.SectionName == "" {
		nl.SectionName = "não informada"
	}
	if nl.Date == "" {
		nl.Date = today()
	}

	lesson := Lesson{
		ID:          newID(lessonIDPrefix),
		SectionName: nl.SectionName,
		Date:        nl.Date,
		Description: nl.Description,
	}
	err := s.Mutate(ctx, func(doc *Document) {
		doc.Lessons = append(doc.Lessons, lesson)
	})
	if err != nil {
		return Lesson{}, err
	}
	return lesson, nil
}

// RecordAttendance appends an attendance record; duplicates for the same
// student/date are permitted and all retained.
func (s *Store) RecordAttendance(ctx context.Context, na NewAttendance) (Attendance, error) {
	if err := na.Validate(s.validate); err != nil {
		return Attendance{}, err
	}
	if na.Date == "" {
		na.Date = today()
	}

	att := Attendance{
		ID:        newID(attendanceIDPrefix),
		StudentID: na.StudentID,
		Date:      na.Date,
		Present:   na.Present,
	}
	err := s.Mutate(ctx, func(doc *Document) {
		doc.Attendance = append(doc.Attendance, att)
	})
	if err != nil {
		return Attendance{}, err
	}
	return att, nil
}

// PostAnnouncement appends an announcement and emails a copy to the
// configured recipients (best effort, fired after the persist).
func (s *Store) PostAnnouncement(ctx context.Context, na NewAnnouncement) (Announcement, error) {
	if err := na.Validate(s.validate); err != nil {
		return Announcement{}, err
	}

	aviso := Announcement{
		ID:    newID(announcementIDPrefix),
		Title: na.Title,
		Body:  na.Body,
	}
	err := s.Mutate(ctx, func(doc *Document) {
		doc.Announcements = append(doc.Announcements, aviso)
	})
	if err != nil {
		return Announcement{}, err
	}
	s.broadcastAnnouncement(aviso)
	return aviso, nil
}

func (s *Store) broadcastAnnouncement(aviso Announcement) {
	if s.mailSvc == nil || len(s.conf.AnnouncementEmails) == 0 {
		return
	}
	to := make([]mail.Address, 0, len(s.conf.AnnouncementEmails))
	for _, addr := range s.conf.AnnouncementEmails {
		to = append(to, mail.Address{Address: addr})
	}
	s.mailSvc.SendMessages(&core.EmailMessage{
		To:      to,
		Subject: aviso.Title,
		BodyStr: aviso.Body,
	})
}

// SubmitAssignment marks an assignment as handed in by the student, with
// set semantics: a second submission is a no-op. An unknown assignment id
// is a logged no-op.
func (s *Store) SubmitAssignment(ctx context.Context, assignmentID, studentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Assignments {
		if s.doc.Assignments[i].ID != assignmentID {
			continue
		}
		if s.doc.Assignments[i].Submitted(studentID) {
			return nil
		}
		next := s.doc.clone()
		next.Assignments[i].SubmittedBy = append(next.Assignments[i].SubmittedBy, studentID)
		return s.apply(ctx, next)
	}
	s.logger.Info(fmt.Sprintf("SubmitAssignment: unknown assignment %q; skipping", assignmentID))
	return nil
}

// ResetPassword updates a credential's password; admin CLI only.
func (s *Store) ResetPassword(ctx context.Context, login, password string) error {
	login = core.CleanString(login, true /* lower */)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Users {
		if s.doc.Users[i].Login == login {
			next := s.doc.clone()
			next.Users[i].Password = password
			return s.apply(ctx, next)
		}
	}
	return ErrUserNotFound
}
