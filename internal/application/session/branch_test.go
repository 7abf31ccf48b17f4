package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taleteller/internal/domain/entity"
	apperrors "taleteller/pkg/errors"
)

var threeChoices = []entity.Choice{
	{ID: 1, Title: "Open it", Description: "Push the door open"},
	{ID: 2, Title: "Run", Description: "Flee down the hall"},
	{ID: 3, Title: "Call out", Description: "Ask who is there"},
}

func TestRequestChoicesOnEmptyStoryMakesNoCall(t *testing.T) {
	s, a, _ := newStarted(t, "horror", "text")

	_, err := s.RequestChoices(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrEmptyStory)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, PhaseIdle, s.Phase())
	a.AssertNotCalled(t, "GenerateChoices", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBranchHappyPath(t *testing.T) {
	s, a, _ := newStarted(t, "horror", "text")
	commit(t, s, "The door creaked.")
	commit(t, s, "Something moved.")

	ctxText := "The door creaked.\n\nSomething moved."
	a.On("GenerateChoices", mock.Anything, ctxText, entity.ModeHorror, "Something moved.").Return(threeChoices, nil)
	a.On("ContinueScene", mock.Anything, ctxText, entity.ModeHorror, "Flee down the hall").Return("You ran.", nil)

	choices, err := s.RequestChoices(context.Background())
	require.NoError(t, err)
	assert.Len(t, choices, 3)
	assert.Equal(t, PhaseChoicesReady, s.Phase())

	sc, err := s.SelectChoice(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "You ran.", sc.Text)
	assert.Equal(t, "Run", sc.OriginChoice)

	v := s.Snapshot()
	assert.Equal(t, PhaseIdle, v.Phase)
	assert.Empty(t, v.Choices)
	assert.Len(t, v.Scenes, 3)
	assert.Equal(t, "You ran.", v.CurrentScene)
	a.AssertExpectations(t)
}

func TestRequestChoicesFailureReturnsToIdle(t *testing.T) {
	s, a, _ := newStarted(t, "horror", "text")
	commit(t, s, "The door creaked.")
	a.On("GenerateChoices", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("timeout"))

	_, err := s.RequestChoices(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrChoicesFailed)
	assert.Equal(t, PhaseIdle, s.Phase())
	assert.Empty(t, s.Snapshot().Choices)
}

func TestRequestChoicesEmptyBatchIsFailure(t *testing.T) {
	s, a, _ := newStarted(t, "horror", "text")
	commit(t, s, "The door creaked.")
	a.On("GenerateChoices", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]entity.Choice{{Title: " ", Description: ""}}, nil)

	_, err := s.RequestChoices(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrChoicesFailed)
	assert.Equal(t, PhaseIdle, s.Phase())
}

func TestSelectChoiceFailureKeepsChoices(t *testing.T) {
	s, a, _ := newStarted(t, "horror", "text")
	commit(t, s, "The door creaked.")
	a.On("GenerateChoices", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(threeChoices, nil)
	a.On("ContinueScene", mock.Anything, mock.Anything, mock.Anything, "Push the door open").
		Return("", errors.New("upstream 500")).Once()

	_, err := s.RequestChoices(context.Background())
	require.NoError(t, err)

	_, err = s.SelectChoice(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrContinuationFailed)

	v := s.Snapshot()
	assert.Equal(t, PhaseChoicesReady, v.Phase)
	assert.Len(t, v.Choices, 3)
	assert.Len(t, v.Scenes, 1)

	a.On("ContinueScene", mock.Anything, mock.Anything, mock.Anything, "Push the door open").Return("It opened.", nil).Once()
	sc, err := s.SelectChoice(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Open it", sc.OriginChoice)
}

func TestSelectChoiceBlankContinuationIsFailure(t *testing.T) {
	s, a, _ := newStarted(t, "horror", "text")
	commit(t, s, "The door creaked.")
	a.On("GenerateChoices", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(threeChoices, nil)
	a.On("ContinueScene", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("   ", nil)

	_, err := s.RequestChoices(context.Background())
	require.NoError(t, err)
	_, err = s.SelectChoice(context.Background(), 3)

	assert.ErrorIs(t, err, apperrors.ErrContinuationFailed)
	assert.Equal(t, PhaseChoicesReady, s.Phase())
	assert.Len(t, s.Snapshot().Scenes, 1)
}

func TestSelectChoiceGuards(t *testing.T) {
	s, a, _ := newStarted(t, "horror", "text")
	commit(t, s, "The door creaked.")

	_, err := s.SelectChoice(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrWrongState)

	a.On("GenerateChoices", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(threeChoices, nil)
	_, err = s.RequestChoices(context.Background())
	require.NoError(t, err)

	_, err = s.SelectChoice(context.Background(), 9)
	assert.ErrorIs(t, err, apperrors.ErrChoiceMissing)
	assert.Equal(t, PhaseChoicesReady, s.Phase())
	a.AssertNotCalled(t, "ContinueScene", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelBranch(t *testing.T) {
	s, a, _ := newStarted(t, "horror", "text")
	commit(t, s, "The door creaked.")
	a.On("GenerateChoices", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(threeChoices, nil)

	_, err := s.RequestChoices(context.Background())
	require.NoError(t, err)

	s.CancelBranch()

	v := s.Snapshot()
	assert.Equal(t, PhaseIdle, v.Phase)
	assert.Empty(t, v.Choices)
	assert.Len(t, v.Scenes, 1)
}

func TestContinuationAfterResetIsDiscarded(t *testing.T) {
	s, a, _ := newStarted(t, "horror", "text")
	commit(t, s, "The door creaked.")
	a.On("GenerateChoices", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(threeChoices, nil)
	_, err := s.RequestChoices(context.Background())
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	a.On("ContinueScene", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return("Too late.", nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.SelectChoice(context.Background(), 1)
		errCh <- err
	}()
	<-started

	_, err = s.RequestChoices(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrBusy)

	require.NoError(t, s.Start("fantasy", "text"))
	close(release)

	assert.ErrorIs(t, <-errCh, apperrors.ErrStaleResponse)
	v := s.Snapshot()
	assert.Equal(t, entity.ModeFantasy, v.Mode)
	assert.Empty(t, v.Scenes)
	assert.Equal(t, PhaseIdle, v.Phase)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "choices_ready", PhaseChoicesReady.String())
	assert.True(t, PhaseRequestingContinuation.Busy())
	assert.False(t, PhaseChoicesReady.Busy())
}
