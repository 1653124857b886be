package letter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGeneratorRender(t *testing.T) {
	g := NewGenerator()
	data, err := g.Render(Fields{
		UniversityName:   "Universitas Contoh",
		SignatoryName:    "Dr. A. Rahman",
		SignatoryTitle:   "Director of Admissions",
		ApplicantName:    "Budi Santoso",
		Reference:        "APP-2025-0001",
		StudentNumber:    "20251001",
		ProgrammeCode:    "CS",
		ProgrammeName:    "Computer Science",
		VerificationCode: "abc123",
		IssuedAt:         time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotEmpty(t, data)
	require.Equal(t, "%PDF", string(data[:4]))
}

func TestGeneratorRequiresApplicantAndNumber(t *testing.T) {
	g := NewGenerator()
	_, err := g.Render(Fields{ApplicantName: "Budi Santoso"})
	require.Error(t, err)
}
