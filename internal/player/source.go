package player

import "context"

// Listener receives signals from an [AudioSource]. Callbacks may run on any goroutine.
type Listener struct {
	OnTime  func(positionMS, durationMS int)
	OnEnded func()
}

// AudioSource is one locally decoded preview clip.
//
// After Stop returns the source makes no sound and invokes no listener callbacks.
type AudioSource interface {
	Start() error
	Pause()
	Resume()
	Stop()
	SetVolume(percent int)
	Seek(positionMS int) error
}

// SourceFactory opens preview sources.
type SourceFactory interface {
	Open(ctx context.Context, url string, l Listener) (AudioSource, error)
}

// SourceFactoryFunc adapts a function to [SourceFactory].
type SourceFactoryFunc func(ctx context.Context, url string, l Listener) (AudioSource, error)

// Open implements [SourceFactory].
func (f SourceFactoryFunc) Open(ctx context.Context, url string, l Listener) (AudioSource, error) {
	return f(ctx, url, l)
}
