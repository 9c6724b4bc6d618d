package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	logsvc "github.com/trezcool/shule/services/logger"
	inmemdoc "github.com/trezcool/shule/storage/document/inmem"
)

// NewConfig returns a deterministic config for tests.
func NewConfig() *core.Config {
	conf := &core.Config{
		Debug:     true,
		TestMode:  true,
		Env:       "TEST",
		AppName:   "Shule",
		SecretKey: "secret",
	}
	conf.Storage.Key = "db_prototipo_escola_v1"
	conf.Server.JWTExpirationDelta = 10 * time.Minute
	conf.Server.ShutdownTimeout = time.Second
	return conf
}

// NewValidator builds the app validator and translator pair.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	return validate, translator
}

// NewLogger returns a logger that swallows everything.
func NewLogger() core.Logger {
	return logsvc.NewStdLogger(log.New(io.Discard, "", 0))
}

// SeedDocument mirrors the shape of the static seed resource.
func SeedDocument() *school.Document {
	doc := &school.Document{
		Users: []school.User{
			{Login: "ana", Password: "x", Role: school.RoleStudent, Name: "Ana Souza"},
			{Login: "carlos", Password: "x", Role: school.RoleTeacher, Name: "Carlos Lima"},
			{Login: "sec", Password: "x", Role: school.RoleRegistrar, Name: "Secretaria"},
			{Login: "dir", Password: "x", Role: school.RolePrincipal, Name: "Diretor"},
		},
		Students: []school.Student{
			{ID: "a1", Name: "Ana Souza", Enrollment: "001"},
			{ID: "a2", Name: "Bruno Costa", Enrollment: "002"},
		},
		Teachers: []school.Teacher{
			{ID: "p1", Name: "Carlos Lima"},
		},
		Subjects: []school.Subject{
			{ID: "d1", Name: "Matemática"},
			{ID: "d2", Name: "Português"},
		},
		Sections: []school.ClassSection{
			{ID: "t1", Name: "1A", SubjectID: "d1", TeacherID: "p1"},
		},
		Grades: []school.Grade{
			{ID: "n1", StudentID: "a1", SubjectID: "d1", Score: 8.5},
			{ID: "n2", StudentID: "a1", SubjectID: "d2", Score: 7},
			{ID: "n3", StudentID: "a2", SubjectID: "d1", Score: 6},
		},
		Attendance: []school.Attendance{
			{ID: "f1", StudentID: "a1", Date: "2024-03-01", Present: true},
			{ID: "f2", StudentID: "a2", Date: "2024-03-01", Present: false},
		},
		Assignments: []school.Assignment{
			{ID: "ta1", Title: "Lista 1", Description: "Exercícios 1-10", SubmittedBy: []string{}},
		},
		Announcements: []school.Announcement{
			{ID: "av1", Title: "Bem-vindos", Body: "Início das aulas"},
		},
	}
	doc.Normalize()
	return doc
}

// NewStore wires a Store around an in-memory storage backend, pre-seeded
// with SeedDocument.
func NewStore(t *testing.T) (*school.Store, *inmemdoc.Store) {
	t.Helper()

	validate, _ := NewValidator()
	storage := inmemdoc.Open()
	store := school.NewStore(SeedDocument(), storage, validate, NewLogger(), nil, NewConfig())

	// persist the seed so storage round-trips from the start
	if err := store.Mutate(context.Background(), func(*school.Document) {}); err != nil {
		t.Fatalf("NewStore() failed to persist seed: %v", err)
	}
	return store, storage
}
