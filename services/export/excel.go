// Package exportsvc builds the principal's XLSX report: grades,
// attendance and enrollment, one sheet each, dangling references shown as
// raw ids.
package exportsvc

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/shule/core/school"
)

type Reporter struct {
	store *school.Store
}

func NewReporter(store *school.Store) *Reporter {
	return &Reporter{store: store}
}

// BuildReport renders the workbook into a buffer ready to be written to
// disk or an HTTP response. All sheets are built from one snapshot so the
// report is internally consistent even under concurrent writes.
func (r *Reporter) BuildReport() (*bytes.Buffer, error) {
	snap := r.store.Snapshot()

	f := excelize.NewFile()
	defer f.Close()

	if err := writeGrades(f, snap); err != nil {
		return nil, err
	}
	if err := writeAttendance(f, snap); err != nil {
		return nil, err
	}
	if err := writeEnrollment(f, snap); err != nil {
		return nil, err
	}
	// drop the default sheet
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, errors.Wrap(err, "deleting default sheet")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "writing workbook")
	}
	return buf, nil
}

func writeGrades(f *excelize.File, snap school.Document) error {
	if _, err := f.NewSheet("Notas"); err != nil {
		return errors.Wrap(err, "creating Notas sheet")
	}
	if err := writeRow(f, "Notas", 1, "Aluno", "Disciplina", "Nota"); err != nil {
		return err
	}
	for i, g := range snap.Grades {
		err := writeRow(f, "Notas", i+2, studentName(snap, g.StudentID), subjectName(snap, g.SubjectID), g.Score)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeAttendance(f *excelize.File, snap school.Document) error {
	if _, err := f.NewSheet("Frequencia"); err != nil {
		return errors.Wrap(err, "creating Frequencia sheet")
	}
	if err := writeRow(f, "Frequencia", 1, "Aluno", "Data", "Presente"); err != nil {
		return err
	}
	for i, a := range snap.Attendance {
		present := "Não"
		if a.Present {
			present = "Sim"
		}
		err := writeRow(f, "Frequencia", i+2, studentName(snap, a.StudentID), a.Date, present)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeEnrollment(f *excelize.File, snap school.Document) error {
	if _, err := f.NewSheet("Matriculas"); err != nil {
		return errors.Wrap(err, "creating Matriculas sheet")
	}
	if err := writeRow(f, "Matriculas", 1, "Aluno", "Matricula"); err != nil {
		return err
	}
	for i, st := range snap.Students {
		if err := writeRow(f, "Matriculas", i+2, st.Name, st.Enrollment); err != nil {
			return err
		}
	}
	return nil
}

func studentName(snap school.Document, id string) string {
	for _, st := range snap.Students {
		if st.ID == id {
			return st.Name
		}
	}
	return id
}

func subjectName(snap school.Document, id string) string {
	for _, sub := range snap.Subjects {
		if sub.ID == id {
			return sub.Name
		}
	}
	return id
}

func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell := fmt.Sprintf("A%d", row)
	return errors.Wrapf(f.SetSheetRow(sheet, cell, &values), "writing %s!%s", sheet, cell)
}
