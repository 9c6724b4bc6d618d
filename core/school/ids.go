package school

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	NowFunc = time.Now       // mockable
	uidFunc = uuid.NewString // mockable
)

// Id prefixes, one per collection, matching the seed document's id scheme.
const (
	studentIDPrefix      = "a"
	teacherIDPrefix      = "p"
	subjectIDPrefix      = "d"
	sectionIDPrefix      = "t"
	lessonIDPrefix       = "au"
	attendanceIDPrefix   = "f"
	announcementIDPrefix = "av"
)

// newID generates a fresh collection-unique identifier.
func newID(prefix string) string {
	return prefix + strings.ReplaceAll(uidFunc(), "-", "")
}

// today returns the current calendar date, the default for blank date fields.
func today() string {
	return NowFunc().Format("2006-01-02")
}
