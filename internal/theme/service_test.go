package theme_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/chadcn/registry-catalog/internal/theme"
	"github.com/chadcn/registry-catalog/internal/theme/mocks"
)

func TestService_Init(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(m *mocks.MockStore)
		opts    []theme.ServiceOption
		want    theme.Theme
		wantErr bool
	}{
		{
			name:  "absent defaults to system without writing",
			setup: func(m *mocks.MockStore) { m.EXPECT().Load(gomock.Any()).Return(theme.Theme(""), theme.ErrNoPreference) },
			want:  theme.System,
		},
		{
			name:  "absent uses configured default",
			setup: func(m *mocks.MockStore) { m.EXPECT().Load(gomock.Any()).Return(theme.Theme(""), theme.ErrNoPreference) },
			opts:  []theme.ServiceOption{theme.WithDefault(theme.Dark)},
			want:  theme.Dark,
		},
		{
			name:  "stored value wins",
			setup: func(m *mocks.MockStore) { m.EXPECT().Load(gomock.Any()).Return(theme.Light, nil) },
			want:  theme.Light,
		},
		{
			name: "invalid stored value ignored",
			setup: func(m *mocks.MockStore) {
				m.EXPECT().Load(gomock.Any()).Return(theme.Theme(""), theme.ErrInvalidTheme)
			},
			want: theme.System,
		},
		{
			name: "store failure reported",
			setup: func(m *mocks.MockStore) {
				m.EXPECT().Load(gomock.Any()).Return(theme.Theme(""), errors.New("disk on fire"))
			},
			want:    theme.System,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			store := mocks.NewMockStore(ctrl)
			tt.setup(store)

			svc := theme.NewService(store, tt.opts...)
			got, err := svc.Init(ctx)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, svc.Get())
		})
	}
}

func TestService_Set(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("persists and notifies", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "prefs.json")
		svc := theme.NewService(theme.NewFileStore(path))
		_, err := svc.Init(ctx)
		require.NoError(t, err)

		var seen []theme.Theme
		unsubscribe := svc.Subscribe(func(th theme.Theme) { seen = append(seen, th) })

		require.NoError(t, svc.Set(ctx, theme.Dark))
		require.NoError(t, svc.Set(ctx, "LIGHT"))
		unsubscribe()
		unsubscribe()
		require.NoError(t, svc.Set(ctx, theme.System))

		assert.Equal(t, []theme.Theme{theme.Dark, theme.Light}, seen)

		// a fresh service over the same file sees the last value
		fresh := theme.NewService(theme.NewFileStore(path))
		got, err := fresh.Init(ctx)
		require.NoError(t, err)
		assert.Equal(t, theme.System, got)
	})

	t.Run("rejects invalid theme without saving", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		svc := theme.NewService(store)

		err := svc.Set(ctx, "sepia")
		require.ErrorIs(t, err, theme.ErrInvalidTheme)
		assert.Equal(t, theme.System, svc.Get())
	})

	t.Run("save failure keeps previous value", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		store := mocks.NewMockStore(ctrl)
		store.EXPECT().Save(gomock.Any(), theme.Dark).Return(errors.New("read-only"))

		svc := theme.NewService(store, theme.WithDefault(theme.Light))
		var notified atomic.Bool
		svc.Subscribe(func(theme.Theme) { notified.Store(true) })

		require.ErrorContains(t, svc.Set(ctx, theme.Dark), "read-only")
		assert.Equal(t, theme.Light, svc.Get())
		assert.False(t, notified.Load())
	})

	t.Run("isolated instances", func(t *testing.T) {
		t.Parallel()

		a := theme.NewService(theme.NewMemoryStore())
		b := theme.NewService(theme.NewMemoryStore())
		require.NoError(t, a.Set(ctx, theme.Dark))

		got, err := b.Init(ctx)
		require.NoError(t, err)
		assert.Equal(t, theme.System, got)
	})
}

func TestService_WatchScheme(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	signal := theme.NewSignal(false)
	classes := theme.NewClasses()
	svc := theme.NewService(theme.NewMemoryStore())

	svc.Apply(classes, signal)
	assert.Equal(t, "light", classes.String())

	detach := svc.WatchScheme(signal, classes)
	assert.Equal(t, 1, signal.Watchers())

	signal.Set(true)
	assert.Equal(t, "dark", classes.String(), "system follows the signal")

	require.NoError(t, svc.Set(ctx, theme.Light))
	assert.Equal(t, "light", classes.String(), "explicit choice applied at once")

	signal.Set(false)
	signal.Set(true)
	assert.Equal(t, "light", classes.String(), "explicit choice ignores the signal")

	require.NoError(t, svc.Set(ctx, theme.System))
	assert.Equal(t, "dark", classes.String())

	detach()
	detach()
	assert.Equal(t, 0, signal.Watchers())

	signal.Set(false)
	assert.Equal(t, "dark", classes.String(), "detached listener is gone")
	assert.Equal(t, theme.Light, svc.Effective(signal))
}
