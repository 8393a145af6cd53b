// Package sdk is the public surface of the positioning bridge. One SDK value
// owns the whole pipeline: the native engine connection, the shared state
// store, the event dispatcher and the embedded viewer controller. Nothing in
// here is global; two SDK values are fully independent.
package sdk

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wayfarerhq/mapbridge/config"
	"github.com/wayfarerhq/mapbridge/errors"
	"github.com/wayfarerhq/mapbridge/internal/bridge"
	"github.com/wayfarerhq/mapbridge/internal/delegated"
	"github.com/wayfarerhq/mapbridge/internal/dispatcher"
	"github.com/wayfarerhq/mapbridge/internal/registry"
	"github.com/wayfarerhq/mapbridge/internal/session"
	"github.com/wayfarerhq/mapbridge/internal/store"
	"github.com/wayfarerhq/mapbridge/internal/viewer"
	"github.com/wayfarerhq/mapbridge/logger"
	"github.com/wayfarerhq/mapbridge/types"
)

// SDK is the entry point. Create one with New, call Init, then use the
// positioning, cartography and navigation operations. All methods are safe
// for concurrent use.
type SDK struct {
	cfg    *config.Config
	native bridge.Native
	log    *zap.SugaredLogger

	store      *store.Store
	registry   *registry.Registry
	dispatcher *dispatcher.Dispatcher
	sessions   *session.Manager
	parked     *delegated.Manager
	controller *viewer.Controller

	mu          sync.Mutex
	initialized bool
	positioning bool
	realtime    bool
	hooks       viewer.Hooks
}

// updateHooks mutates one viewer hook and pushes the full set to the
// controller.
func (s *SDK) updateHooks(fn func(*viewer.Hooks)) {
	s.mu.Lock()
	fn(&s.hooks)
	hooks := s.hooks
	s.mu.Unlock()
	s.controller.SetHooks(hooks)
}

// New assembles an SDK around the given engine bridge. Init must be called
// before any operation that talks to the engine.
func New(cfg *config.Config, native bridge.Native) *SDK {
	st := store.New()
	disp := dispatcher.New(st)
	sessions := session.NewManager(native, st, disp)
	parked := delegated.NewManager()
	controller := viewer.NewController(native, st, sessions, parked, cfg.Viewer)

	s := &SDK{
		cfg:        cfg,
		native:     native,
		log:        logger.GetLogger().Named("sdk"),
		store:      st,
		registry:   registry.New(native.Events()),
		dispatcher: disp,
		sessions:   sessions,
		parked:     parked,
		controller: controller,
	}

	disp.SetViewerDelegate(controller.HandleInternalCall)
	disp.SetLocationSink(func(loc types.Location) {
		sessions.UpdateWithLocation(context.Background(), loc)
	})
	return s
}

// Init connects to the engine and installs the event pipeline. Calling it
// again re-registers handlers without duplicating delivery.
func (s *SDK) Init(ctx context.Context) error {
	if err := s.native.Init(ctx); err != nil {
		return err
	}
	s.dispatcher.Attach(s.registry)

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	s.store.Dispatch(store.SetSDKInitialized{Initialized: true})
	if id := s.cfg.Viewer.BuildingIdentifier; id != "" {
		s.store.Dispatch(store.SetBuildingIdentifier{Identifier: id})
	}
	s.log.Infow("SDK initialized")
	return nil
}

func (s *SDK) ensureInitialized() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errors.New(errors.ValidationError, "SDK not initialized", "call Init first")
	}
	return nil
}

// Close tears the pipeline down. Positioning and navigation are stopped
// best-effort before the event handlers are removed.
func (s *SDK) Close(ctx context.Context) error {
	if err := s.StopNavigation(ctx); err != nil {
		s.log.Warnw("Stopping navigation during close", "error", err)
	}
	if err := s.StopPositioning(ctx); err != nil {
		s.log.Warnw("Stopping positioning during close", "error", err)
	}
	s.registry.UnregisterAll()

	s.mu.Lock()
	s.initialized = false
	s.mu.Unlock()

	s.store.Dispatch(store.SetSDKInitialized{Initialized: false})
	return nil
}

// Store exposes the shared state for read-only subscription.
func (s *SDK) Store() *store.Store { return s.store }

// Controller exposes the viewer controller for transport wiring.
func (s *SDK) Controller() *viewer.Controller { return s.controller }

// SetAPIKey authenticates with an email and API key pair.
func (s *SDK) SetAPIKey(ctx context.Context, email, apiKey string) error {
	if err := s.native.SetAPIKey(ctx, email, apiKey); err != nil {
		return err
	}
	s.store.Dispatch(store.SetUser{User: &types.User{Email: email, APIKey: apiKey}})
	return nil
}

// SetUserPass authenticates with an email and password pair.
func (s *SDK) SetUserPass(ctx context.Context, email, password string) error {
	if err := s.native.SetUserPass(ctx, email, password); err != nil {
		return err
	}
	s.store.Dispatch(store.SetUser{User: &types.User{Email: email}})
	return nil
}

// SetDashboardURL points the engine at a non-default platform instance.
func (s *SDK) SetDashboardURL(ctx context.Context, url string) error {
	return s.native.SetDashboardURL(ctx, url)
}

// SetConfiguration applies a batch of engine settings in one call. Nil
// fields are left untouched.
func (s *SDK) SetConfiguration(ctx context.Context, opts types.ConfigurationOptions) error {
	if opts.UseRemoteConfig != nil {
		if err := s.native.SetUseRemoteConfig(ctx, *opts.UseRemoteConfig); err != nil {
			return err
		}
	}
	if opts.CacheMaxAge != nil {
		if err := s.native.SetCacheMaxAge(ctx, *opts.CacheMaxAge); err != nil {
			return err
		}
	}
	return nil
}

// SetCacheMaxAge bounds the age of cached cartography, in seconds.
func (s *SDK) SetCacheMaxAge(ctx context.Context, seconds int) error {
	return s.native.SetCacheMaxAge(ctx, seconds)
}

// InvalidateCache drops all cached cartography.
func (s *SDK) InvalidateCache(ctx context.Context) error {
	return s.native.InvalidateCache(ctx)
}

// DeviceID returns the engine's stable device identifier.
func (s *SDK) DeviceID(ctx context.Context) (string, error) {
	return s.native.DeviceID(ctx)
}

// ValidateMapViewProjectSettings asks the engine to verify that the viewer
// configuration matches the dashboard project.
func (s *SDK) ValidateMapViewProjectSettings(ctx context.Context) error {
	return s.native.ValidateMapViewProjectSettings(ctx)
}

// EnableUserHelper turns the engine's permission assistant on with defaults.
func (s *SDK) EnableUserHelper(ctx context.Context) error {
	return s.native.ConfigureUserHelper(ctx, types.UserHelperOptions{Enabled: true})
}

// DisableUserHelper turns the permission assistant off.
func (s *SDK) DisableUserHelper(ctx context.Context) error {
	return s.native.ConfigureUserHelper(ctx, types.UserHelperOptions{Enabled: false})
}

// ConfigureUserHelper applies a full helper configuration.
func (s *SDK) ConfigureUserHelper(ctx context.Context, opts types.UserHelperOptions) error {
	return s.native.ConfigureUserHelper(ctx, opts)
}

// ViewerURL builds the URL the embedded viewer should load.
func (s *SDK) ViewerURL() (string, error) {
	return viewer.BuildURL(s.cfg.Viewer)
}
