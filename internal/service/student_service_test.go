package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type failingStudentRepo struct{}

func (failingStudentRepo) List(context.Context) ([]models.Student, error) {
	return nil, errors.New("connection reset")
}

func (failingStudentRepo) FindByID(context.Context, int64) (*models.Student, error) {
	return nil, errors.New("connection reset")
}

func (failingStudentRepo) Create(context.Context, *models.Student) error {
	return errors.New("connection reset")
}

func TestStudentServiceCreateValidates(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{})
	ctx := context.Background()

	student, err := f.students.Create(ctx, CreateStudentRequest{Name: "Karan Malhotra", Email: "karan.m@example.com", CGPA: 8.3, Package: "9 LPA"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), student.ID)

	cases := []CreateStudentRequest{
		{Email: "x@example.com"},
		{Name: "X", Email: "not-an-email"},
		{Name: "X", Email: "x@example.com", CGPA: 11},
		{Name: "X", Email: "x@example.com", Package: "negotiable"},
		{Name: "X", Email: "x@example.com", Package: "15 USD"},
	}
	for _, req := range cases {
		_, err := f.students.Create(ctx, req)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), "request %+v", req)
	}
}

func TestStudentServiceCreateAcceptsCrorePackage(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{})

	student, err := f.students.Create(context.Background(), CreateStudentRequest{
		Name: "Ananya Rao", Email: "ananya.r@example.com", CGPA: 9.4, Package: "1.2 Cr",
	})
	require.NoError(t, err)
	assert.Equal(t, "1.2 Cr", student.Package)
	value, ok := models.ParsePackage(student.Package)
	require.True(t, ok)
	assert.InDelta(t, 120, value, 1e-9)
}

func TestStudentServiceListSearch(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{seed: true})
	ctx := context.Background()

	all, err := f.students.List(ctx, models.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 9)

	electronics, err := f.students.List(ctx, models.StudentFilter{Search: "electronics"})
	require.NoError(t, err)
	assert.Len(t, electronics, 2)

	_, err = f.students.Get(ctx, 99)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestStudentServiceRepositoryFailureIsInternal(t *testing.T) {
	svc := NewStudentService(failingStudentRepo{}, nil, nil)

	_, err := svc.List(context.Background(), models.StudentFilter{})
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	_, err = svc.Get(context.Background(), 1)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}
