package navigation

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type RootMock struct {
	mock.Mock
}

var _ Root = (*RootMock)(nil)

func (r *RootMock) CanGoBack() bool {
	return r.Called().Bool(0)
}

func (r *RootMock) CanGoForward() bool {
	return r.Called().Bool(0)
}

func (r *RootMock) GoBack(ctx context.Context) error {
	return r.Called(ctx).Error(0)
}

func (r *RootMock) GoForward(ctx context.Context) error {
	return r.Called(ctx).Error(0)
}

func (r *RootMock) Navigate(ctx context.Context, uri string, params map[string]any) error {
	return r.Called(ctx, uri, params).Error(0)
}

func (r *RootMock) CloseMainWindow(ctx context.Context) error {
	return r.Called(ctx).Error(0)
}

type HomeViewModel struct{}

func (*HomeViewModel) Title() string { return "Home" }

type SettingsViewModel struct{}

func (SettingsViewModel) Title() string { return "Settings" }

type NotAViewModel struct{}
