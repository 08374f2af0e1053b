package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/models"
)

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "department", "cgpa", "package", "position", "created_at"}).
		AddRow(1, "Rahul Sharma", "rahul.s@example.com", "Computer Science", 8.7, "12 LPA", "Software Engineer", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + studentColumns + " FROM students ORDER BY id ASC")).WillReturnRows(rows)

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, 8.7, students[0].CGPA)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("INSERT INTO students").
		WithArgs("Priya Patel", "priya.p@example.com", "Information Technology", 9.2, "14 LPA", "Frontend Developer", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))

	student := &models.Student{Name: "Priya Patel", Email: "priya.p@example.com", Department: "Information Technology", CGPA: 9.2, Package: "14 LPA", Position: "Frontend Developer"}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.Equal(t, int64(2), student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
