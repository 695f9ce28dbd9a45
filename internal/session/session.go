// Package session orchestrates one generation setup: a model
// registry, a directive configuration and a pair of provider
// factories. A session walks requested types, emits the source
// artifact and loads the closure serializers in one call, and can be
// reversed to produce the inverse serializers of the same setup.
package session

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"xfer-generator/internal/diagnostic"
	"xfer-generator/internal/directive"
	"xfer-generator/internal/emit"
	"xfer-generator/internal/model"
	"xfer-generator/internal/support"
	"xfer-generator/internal/walk"
)

// Session binds one source and one destination representation over a
// shared model registry.
type Session struct {
	id         string
	log        *zap.Logger
	registry   model.Source
	directives directive.Config
	handlers   *support.Handlers
	source     *support.Factory
	dest       *support.Factory
	emitCfg    emit.Config
	cache      *emit.Cache
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithHandlers sets the custom transformation registry.
func WithHandlers(h *support.Handlers) Option {
	return func(s *Session) { s.handlers = h }
}

// WithEmitConfig sets the emitter configuration.
func WithEmitConfig(cfg emit.Config) Option {
	return func(s *Session) { s.emitCfg = cfg }
}

// WithCache sets the content-addressed artifact cache.
func WithCache(c *emit.Cache) Option {
	return func(s *Session) { s.cache = c }
}

// New creates a session. The directive configuration is validated
// against the registry up front, so malformed directives fail here
// rather than mid-walk.
func New(
	registry model.Source,
	source, dest *support.Factory,
	directives directive.Config,
	opts ...Option,
) (*Session, error) {
	s := &Session{
		id:         uuid.NewString(),
		log:        zap.NewNop(),
		registry:   registry,
		directives: directives,
		handlers:   support.NewHandlers(),
		source:     source,
		dest:       dest,
		emitCfg:    emit.DefaultConfig(),
		cache:      emit.NewCache(""),
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := directives.Validate(registry); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Handlers returns the session's custom transformation registry.
func (s *Session) Handlers() *support.Handlers { return s.handlers }

// Reverse returns a new session with the representation ends swapped.
// It shares the registry, directives and handlers, so generating the
// same types yields the inverse serializers.
func (s *Session) Reverse() *Session {
	return &Session{
		id:         uuid.NewString(),
		log:        s.log,
		registry:   s.registry,
		directives: s.directives,
		handlers:   s.handlers,
		source:     s.dest,
		dest:       s.source,
		emitCfg:    s.emitCfg,
		cache:      s.cache,
	}
}

// Result is the product of one generation run.
type Result struct {
	// File is the emitted source artifact.
	File *emit.GeneratedFile
	// Serializers are the loaded closures, keyed by triple.
	Serializers *emit.Set
	// Digest is the content hash of the walked blueprints.
	Digest string
	// Diagnostics collects the walk notices.
	Diagnostics *diagnostic.Diagnostics
}

// Generate walks the named types and every type reachable from them,
// emits the source artifact and loads the serializer set. An
// unchanged model hits the artifact cache and skips re-rendering.
func (s *Session) Generate(typeNames ...string) (*Result, error) {
	w := walk.NewWalker(s.registry, s.source, s.dest, s.directives, s.handlers, s.log)

	for _, name := range typeNames {
		if _, err := w.Walk(name); err != nil {
			return nil, err
		}
	}

	blueprints := w.Blueprints()
	digest := s.emitCfg.Fingerprint(emit.Digest(blueprints))

	file, err := s.render(blueprints, digest)
	if err != nil {
		return nil, err
	}

	set, err := emit.NewLoader(s.handlers).Load(blueprints)
	if err != nil {
		return nil, err
	}

	s.log.Info("generation complete",
		zap.String("session", s.id),
		zap.String("digest", digest),
		zap.Int("routines", len(blueprints)))

	return &Result{
		File:        file,
		Serializers: set,
		Digest:      digest,
		Diagnostics: w.Diagnostics(),
	}, nil
}

func (s *Session) render(blueprints []*walk.Blueprint, digest string) (*emit.GeneratedFile, error) {
	if content, ok := s.cache.Get(digest); ok {
		s.log.Debug("artifact cache hit", zap.String("digest", digest))

		return &emit.GeneratedFile{Filename: s.emitCfg.Filename, Content: content}, nil
	}

	file, err := emit.NewEmitter(s.emitCfg).Emit(blueprints)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Put(digest, file.Content); err != nil {
		s.log.Warn("artifact cache write failed", zap.Error(err))
	}

	return file, nil
}
