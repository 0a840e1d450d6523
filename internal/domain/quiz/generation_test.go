package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAnswerRunningAverage(t *testing.T) {
	var q Question

	q.RecordAnswer(true, 10)
	require.NotNil(t, q.AverageTimeToAnswer)
	assert.Equal(t, 10.0, *q.AverageTimeToAnswer)

	q.RecordAnswer(false, 20)
	assert.Equal(t, 15.0, *q.AverageTimeToAnswer)

	q.RecordAnswer(false, 0)
	assert.Equal(t, 15.0, *q.AverageTimeToAnswer)

	assert.Equal(t, 3, q.TimesAttempted)
	assert.Equal(t, 1, q.TimesCorrect)
	assert.Equal(t, 2, q.TimesWrong)
}
