package school

// Query helpers are read-only and restartable: each call rescans the
// underlying collection under the read lock and returns a fresh copy, so
// callers always observe the latest persisted state.

func (s *Store) GradesForStudent(studentID string) []Grade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grades := make([]Grade, 0)
	for _, g := range s.doc.Grades {
		if g.StudentID == studentID {
			grades = append(grades, g)
		}
	}
	return grades
}

func (s *Store) AttendanceForStudent(studentID string) []Attendance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	atts := make([]Attendance, 0)
	for _, a := range s.doc.Attendance {
		if a.StudentID == studentID {
			atts = append(atts, a)
		}
	}
	return atts
}

func (s *Store) SectionsTaughtBy(teacherID string) []ClassSection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sections := make([]ClassSection, 0)
	for _, sec := range s.doc.Sections {
		if sec.TeacherID == teacherID {
			sections = append(sections, sec)
		}
	}
	return sections
}

func (s *Store) Students() []Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Student{}, s.doc.Students...)
}

func (s *Store) Teachers() []Teacher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Teacher{}, s.doc.Teachers...)
}

func (s *Store) Subjects() []Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Subject{}, s.doc.Subjects...)
}

func (s *Store) Sections() []ClassSection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ClassSection{}, s.doc.Sections...)
}

func (s *Store) Grades() []Grade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Grade{}, s.doc.Grades...)
}

func (s *Store) AllAttendance() []Attendance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Attendance{}, s.doc.Attendance...)
}

func (s *Store) Announcements() []Announcement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Announcement{}, s.doc.Announcements...)
}

func (s *Store) Assignments() []Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// deep copy: submission sets are mutable
	assignments := make([]Assignment, 0, len(s.doc.Assignments))
	for _, a := range s.doc.Assignments {
		a.SubmittedBy = append([]string{}, a.SubmittedBy...)
		assignments = append(assignments, a)
	}
	return assignments
}

// StudentName resolves a student id to a display name, degrading to the
// raw id when the reference is dangling.
func (s *Store) StudentName(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.doc.Students {
		if st.ID == id {
			return st.Name
		}
	}
	return id
}

// SubjectName resolves a subject id to a display name, degrading to the
// raw id when the reference is dangling.
func (s *Store) SubjectName(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.doc.Subjects {
		if sub.ID == id {
			return sub.Name
		}
	}
	return id
}

// StudentForUser maps a session user to their Student record by display
// name, falling back to the first student when no match exists.
func (s *Store) StudentForUser(u User) (Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.doc.Students {
		if st.Name == u.Name {
			return st, true
		}
	}
	if len(s.doc.Students) > 0 {
		return s.doc.Students[0], true
	}
	return Student{}, false
}

// TeacherForUser maps a session user to their Teacher record by display
// name, falling back to the first teacher when no match exists.
func (s *Store) TeacherForUser(u User) (Teacher, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tc := range s.doc.Teachers {
		if tc.Name == u.Name {
			return tc, true
		}
	}
	if len(s.doc.Teachers) > 0 {
		return s.doc.Teachers[0], true
	}
	return Teacher{}, false
}

func (s *Store) findUser(login, password string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.doc.Users {
		if u.Login == login && u.Password == password {
			return u, true
		}
	}
	return User{}, false
}

// Snapshot returns a deep copy of the current document, for reporting and
// export: consumers iterate a consistent point-in-time view instead of
// re-locking per collection.
func (s *Store) Snapshot() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.doc.clone()
}
