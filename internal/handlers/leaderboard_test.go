package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s/eduPlatform/internal/models"
)

func TestBuildLeaderboardRanking(t *testing.T) {
	h := newTestHandler(t)
	fx := seedAssessment(t, h.DB)

	// Второй студент: записан, но сдал хуже
	slow := models.User{Name: "Второй", Email: "slow@example.com", RoleID: models.RoleUser}
	require.NoError(t, h.DB.Create(&slow).Error)
	require.NoError(t, h.DB.Create(&models.Enrollment{
		UserID: slow.ID, CourseID: fx.courseID, Status: models.EnrollmentApproved,
	}).Error)

	// Первый: закрыл главу на 100%
	answers := map[uint]string{
		fx.questionIDs[0]: "a", fx.questionIDs[1]: "b",
		fx.questionIDs[2]: "c", fx.questionIDs[3]: "d",
	}
	require.True(t, h.SubmitAssessment(fx.userID, fx.courseID, fx.chapterID, fx.assessmentID, answers).Success)

	// Второй: две попытки, лучшая 50%, глава не закрыта
	half := map[uint]string{fx.questionIDs[0]: "a", fx.questionIDs[1]: "b"}
	require.True(t, h.SubmitAssessment(slow.ID, fx.courseID, fx.chapterID, fx.assessmentID, map[uint]string{}).Success)
	require.True(t, h.SubmitAssessment(slow.ID, fx.courseID, fx.chapterID, fx.assessmentID, half).Success)

	entries, err := h.buildLeaderboard(fx.courseID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, fx.userID, entries[0].UserID)
	assert.Equal(t, 1, entries[0].DoneChapters)
	assert.Equal(t, 100, entries[0].AvgBestScore)

	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, slow.ID, entries[1].UserID)
	assert.Equal(t, 0, entries[1].DoneChapters)
	// Лучшая из двух попыток, а не последняя
	assert.Equal(t, 50, entries[1].AvgBestScore)
}

func TestBuildLeaderboardEmptyCourse(t *testing.T) {
	h := newTestHandler(t)

	entries, err := h.buildLeaderboard(42)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
