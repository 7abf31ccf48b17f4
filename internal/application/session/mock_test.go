package session

import (
	"context"

	"github.com/stretchr/testify/mock"

	"taleteller/internal/domain/entity"
)

type mockAssistant struct {
	mock.Mock
}

func (m *mockAssistant) CheckGrammar(ctx context.Context, text string, mode entity.Mode) (*entity.SuggestionSet, error) {
	args := m.Called(ctx, text, mode)
	set, _ := args.Get(0).(*entity.SuggestionSet)
	return set, args.Error(1)
}

func (m *mockAssistant) GenerateChoices(ctx context.Context, storyContext string, mode entity.Mode, currentScene string) ([]entity.Choice, error) {
	args := m.Called(ctx, storyContext, mode, currentScene)
	choices, _ := args.Get(0).([]entity.Choice)
	return choices, args.Error(1)
}

func (m *mockAssistant) ContinueScene(ctx context.Context, storyContext string, mode entity.Mode, selectedChoice string) (string, error) {
	args := m.Called(ctx, storyContext, mode, selectedChoice)
	return args.String(0), args.Error(1)
}

type mockIllustrator struct {
	mock.Mock
}

func (m *mockIllustrator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
